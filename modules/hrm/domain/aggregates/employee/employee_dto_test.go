package employee

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validDTO() CreateDTO {
	return CreateDTO{
		FirstName:  "Jane",
		LastName:   "Doe",
		RowID:      "1",
		Email:      "jane@x.com",
		Position:   "Dev",
		Department: "Eng",
		HireDate:   "2024-01-01",
	}
}

func TestCreateDTO_Username(t *testing.T) {
	d := validDTO()
	require.Equal(t, "janedoe1", d.Username())
}

func TestCreateDTO_Validate(t *testing.T) {
	d := validDTO()
	require.NoError(t, d.Validate())

	d = validDTO()
	d.Email = "not-an-email"
	require.Error(t, d.Validate())

	d = validDTO()
	d.FirstName = "   "
	require.Error(t, d.Validate())

	d = validDTO()
	d.HireDate = "01/01/2024"
	require.Error(t, d.Validate())
}

func TestCreateDTO_HiredAt(t *testing.T) {
	d := validDTO()
	hiredAt, err := d.HiredAt()
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), hiredAt)

	d.HireDate = "2024-01-01T09:30:00Z"
	hiredAt, err = d.HiredAt()
	require.NoError(t, err)
	require.Equal(t, 9, hiredAt.Hour())
}

func TestCreateDTO_ToEntity(t *testing.T) {
	d := validDTO()
	d.Email = "Jane@X.com "
	d.Normalize()

	e, err := d.ToEntity("janedoe1", "$2a$hash", "Employee")
	require.NoError(t, err)
	require.Equal(t, "jane@x.com", e.Email())
	require.Equal(t, "janedoe1", e.Username())
	require.Equal(t, "$2a$hash", e.PasswordHash())
	require.Equal(t, "Employee", e.Role())
	require.Equal(t, int64(0), e.ID())
}
