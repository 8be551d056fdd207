package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/hrflow/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/hrflow/pkg/composables"
)

var (
	ErrEmployeeNotFound = gerrors.New("employee not found")
	// ErrEmployeeEmailExists surfaces the unique-index backstop when two
	// concurrent rows with the same email both pass the existence check.
	ErrEmployeeEmailExists = gerrors.New("employee email already exists")
)

const uniqueViolationCode = "23505"

const employeeColumns = `id, first_name, last_name, username, email, password_hash, role, position, department, hired_at, created_at`

type PgEmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &PgEmployeeRepository{}
}

func (r *PgEmployeeRepository) Count(ctx context.Context) (int64, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "failed to count employees")
	}
	return count, nil
}

func (r *PgEmployeeRepository) GetAll(ctx context.Context) ([]employee.Employee, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to list employees")
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *PgEmployeeRepository) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, error) {
	if params == nil {
		params = &employee.FindParams{}
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	db, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY id OFFSET $1 LIMIT $2`,
		offset, limit,
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to list employees")
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *PgEmployeeRepository) GetByID(ctx context.Context, id int64) (employee.Employee, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	row := db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	entity, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}
	return entity, nil
}

func (r *PgEmployeeRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM employees WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, gerrors.Wrap(err, "failed to check employee email")
	}
	return exists, nil
}

func (r *PgEmployeeRepository) Create(ctx context.Context, data employee.Employee) (employee.Employee, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	row := db.QueryRow(ctx, `
		INSERT INTO employees (first_name, last_name, username, email, password_hash, role, position, department, hired_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+employeeColumns,
		data.FirstName(),
		data.LastName(),
		data.Username(),
		data.Email(),
		data.PasswordHash(),
		data.Role(),
		data.Position(),
		data.Department(),
		data.HiredAt(),
	)
	entity, err := scanEmployee(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return employee.Employee{}, gerrors.Wrapf(ErrEmployeeEmailExists, "%s", data.Email())
		}
		return employee.Employee{}, gerrors.Wrap(err, "failed to create employee")
	}
	return entity, nil
}
