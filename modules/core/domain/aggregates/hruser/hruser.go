package hruser

import (
	"strings"
	"time"
)

// HRUser is an HR operator account: the people allowed to upload bulk
// import files and manage other operators.
type HRUser struct {
	id           int64
	firstName    string
	lastName     string
	username     string
	email        string
	passwordHash string
	role         string
	createdAt    time.Time
}

func New(firstName, lastName, username, email, passwordHash, role string) HRUser {
	return HRUser{
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		username:     strings.TrimSpace(username),
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		role:         role,
	}
}

func Hydrate(id int64, firstName, lastName, username, email, passwordHash, role string, createdAt time.Time) HRUser {
	u := New(firstName, lastName, username, email, passwordHash, role)
	u.id = id
	u.createdAt = createdAt
	return u
}

func (u HRUser) ID() int64            { return u.id }
func (u HRUser) FirstName() string    { return u.firstName }
func (u HRUser) LastName() string     { return u.lastName }
func (u HRUser) Username() string     { return u.username }
func (u HRUser) Email() string        { return u.email }
func (u HRUser) PasswordHash() string { return u.passwordHash }
func (u HRUser) Role() string         { return u.role }
func (u HRUser) CreatedAt() time.Time { return u.createdAt }
func (u HRUser) IsZero() bool         { return u.id == 0 && u.email == "" }
