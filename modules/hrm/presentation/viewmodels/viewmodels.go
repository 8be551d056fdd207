package viewmodels

import (
	"time"

	"github.com/iota-uz/hrflow/modules/hrm/domain/aggregates/employee"
)

// Employee is the API shape of a persisted record. The stored password
// hash never leaves the service.
type Employee struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Position   string    `json:"poste"`
	Department string    `json:"departement"`
	HiredAt    time.Time `json:"dateEmbouche"`
	CreatedAt  time.Time `json:"createdAt"`
}

func EmployeeFromEntity(e employee.Employee) Employee {
	return Employee{
		ID:         e.ID(),
		FirstName:  e.FirstName(),
		LastName:   e.LastName(),
		Username:   e.Username(),
		Email:      e.Email(),
		Role:       e.Role(),
		Position:   e.Position(),
		Department: e.Department(),
		HiredAt:    e.HiredAt(),
		CreatedAt:  e.CreatedAt(),
	}
}

func EmployeesFromEntities(entities []employee.Employee) []Employee {
	out := make([]Employee, 0, len(entities))
	for _, e := range entities {
		out = append(out, EmployeeFromEntity(e))
	}
	return out
}
