package employee

import (
	"strings"
	"time"
)

// Employee is a persisted HR record. Instances are immutable once created;
// the import pipeline never updates an employee after the fact.
type Employee struct {
	id           int64
	firstName    string
	lastName     string
	username     string
	email        string
	passwordHash string
	role         string
	position     string
	department   string
	hiredAt      time.Time
	createdAt    time.Time
}

func New(
	firstName, lastName, username, email, passwordHash string,
	role, position, department string,
	hiredAt time.Time,
) Employee {
	return Employee{
		firstName:    strings.TrimSpace(firstName),
		lastName:     strings.TrimSpace(lastName),
		username:     username,
		email:        normalizeEmail(email),
		passwordHash: passwordHash,
		role:         role,
		position:     position,
		department:   department,
		hiredAt:      hiredAt,
	}
}

func Hydrate(
	id int64,
	firstName, lastName, username, email, passwordHash string,
	role, position, department string,
	hiredAt, createdAt time.Time,
) Employee {
	e := New(firstName, lastName, username, email, passwordHash, role, position, department, hiredAt)
	e.id = id
	e.createdAt = createdAt
	return e
}

func (e Employee) ID() int64            { return e.id }
func (e Employee) FirstName() string    { return e.firstName }
func (e Employee) LastName() string     { return e.lastName }
func (e Employee) Username() string     { return e.username }
func (e Employee) Email() string        { return e.email }
func (e Employee) PasswordHash() string { return e.passwordHash }
func (e Employee) Role() string         { return e.role }
func (e Employee) Position() string     { return e.position }
func (e Employee) Department() string   { return e.department }
func (e Employee) HiredAt() time.Time   { return e.hiredAt }
func (e Employee) CreatedAt() time.Time { return e.createdAt }
func (e Employee) IsZero() bool         { return e.id == 0 && e.email == "" }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
