package hruser

import (
	"strings"

	"github.com/iota-uz/hrflow/pkg/constants"
)

type CreateDTO struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

func (d *CreateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Username = strings.TrimSpace(d.Username)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
}

func (d *CreateDTO) Validate() error {
	d.Normalize()
	return constants.Validate.Struct(d)
}

func (d *CreateDTO) ToEntity(passwordHash, role string) HRUser {
	return New(d.FirstName, d.LastName, d.Username, d.Email, passwordHash, role)
}
