package viewmodels

import (
	"time"

	"github.com/iota-uz/hrflow/modules/core/domain/aggregates/hruser"
)

type HRUser struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func HRUserFromEntity(entity hruser.HRUser) *HRUser {
	return &HRUser{
		ID:        entity.ID(),
		FirstName: entity.FirstName(),
		LastName:  entity.LastName(),
		Username:  entity.Username(),
		Email:     entity.Email(),
		Role:      entity.Role(),
		CreatedAt: entity.CreatedAt(),
	}
}
