package persistence

import (
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hrflow/modules/hrm/domain/aggregates/employee"
)

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var (
		id                 int64
		firstName          string
		lastName           string
		username           string
		email              string
		passwordHash       string
		role               string
		position           string
		department         string
		hiredAt, createdAt time.Time
	)
	if err := row.Scan(
		&id, &firstName, &lastName, &username, &email,
		&passwordHash, &role, &position, &department,
		&hiredAt, &createdAt,
	); err != nil {
		return employee.Employee{}, err
	}
	return employee.Hydrate(
		id, firstName, lastName, username, email,
		passwordHash, role, position, department,
		hiredAt, createdAt,
	), nil
}

func scanEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	var out []employee.Employee
	for rows.Next() {
		entity, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, rows.Err()
}
