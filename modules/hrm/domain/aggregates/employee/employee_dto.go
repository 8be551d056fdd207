package employee

import (
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/hrflow/pkg/constants"
)

// CreateDTO carries one decoded import row. Field names mirror the upload
// file's header columns.
type CreateDTO struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	RowID      string `json:"id" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Position   string `json:"poste" validate:"required"`
	Department string `json:"departement" validate:"required"`
	HireDate   string `json:"dateEmbouche" validate:"required"`
}

func (d *CreateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.RowID = strings.TrimSpace(d.RowID)
	d.Email = normalizeEmail(d.Email)
	d.Position = strings.TrimSpace(d.Position)
	d.Department = strings.TrimSpace(d.Department)
	d.HireDate = strings.TrimSpace(d.HireDate)
}

func (d *CreateDTO) Validate() error {
	d.Normalize()
	if err := constants.Validate.Struct(d); err != nil {
		return err
	}
	if _, err := d.HiredAt(); err != nil {
		return err
	}
	return nil
}

// Username derives the deterministic login handle for this row. Rows with
// identical name and row id collide; source data is assumed de-duplicated.
func (d *CreateDTO) Username() string {
	return strings.ToLower(d.FirstName + d.LastName + d.RowID)
}

func (d *CreateDTO) HiredAt() (time.Time, error) {
	if t, err := time.Parse("2006-01-02", d.HireDate); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, d.HireDate)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid hire date %q", d.HireDate)
	}
	return t, nil
}

// ToEntity builds the Employee to persist. The username, the hashed initial
// password and the role label come from the import pipeline, not the row.
func (d *CreateDTO) ToEntity(username, passwordHash, role string) (Employee, error) {
	hiredAt, err := d.HiredAt()
	if err != nil {
		return Employee{}, err
	}
	return New(
		d.FirstName,
		d.LastName,
		username,
		d.Email,
		passwordHash,
		role,
		d.Position,
		d.Department,
		hiredAt,
	), nil
}
