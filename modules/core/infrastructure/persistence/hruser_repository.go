package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/hrflow/modules/core/domain/aggregates/hruser"
	"github.com/iota-uz/hrflow/pkg/composables"
)

var (
	ErrHRUserNotFound = gerrors.New("hr user not found")
	ErrHRUserExists   = gerrors.New("hr user already exists")
)

const uniqueViolationCode = "23505"

const hrUserColumns = `id, first_name, last_name, username, email, password_hash, role, created_at`

type PgHRUserRepository struct{}

func NewHRUserRepository() hruser.Repository {
	return &PgHRUserRepository{}
}

func (r *PgHRUserRepository) GetByEmail(ctx context.Context, email string) (hruser.HRUser, error) {
	return r.getBy(ctx, `email`, email)
}

func (r *PgHRUserRepository) GetByUsername(ctx context.Context, username string) (hruser.HRUser, error) {
	return r.getBy(ctx, `username`, username)
}

func (r *PgHRUserRepository) getBy(ctx context.Context, column, value string) (hruser.HRUser, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return hruser.HRUser{}, err
	}
	row := db.QueryRow(ctx, `SELECT `+hrUserColumns+` FROM hr_users WHERE `+column+` = $1`, value)
	entity, err := scanHRUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hruser.HRUser{}, ErrHRUserNotFound
		}
		return hruser.HRUser{}, err
	}
	return entity, nil
}

func (r *PgHRUserRepository) Create(ctx context.Context, data hruser.HRUser) (hruser.HRUser, error) {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return hruser.HRUser{}, err
	}
	row := db.QueryRow(ctx, `
		INSERT INTO hr_users (first_name, last_name, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+hrUserColumns,
		data.FirstName(),
		data.LastName(),
		data.Username(),
		data.Email(),
		data.PasswordHash(),
		data.Role(),
	)
	entity, err := scanHRUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return hruser.HRUser{}, gerrors.Wrapf(ErrHRUserExists, "%s", data.Email())
		}
		return hruser.HRUser{}, gerrors.Wrap(err, "failed to create hr user")
	}
	return entity, nil
}

func (r *PgHRUserRepository) DeleteByEmail(ctx context.Context, email string) error {
	db, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `DELETE FROM hr_users WHERE email = $1`, email)
	if err != nil {
		return gerrors.Wrap(err, "failed to delete hr user")
	}
	if tag.RowsAffected() == 0 {
		return ErrHRUserNotFound
	}
	return nil
}

func scanHRUser(row pgx.Row) (hruser.HRUser, error) {
	var (
		id                                                       int64
		firstName, lastName, username, email, passwordHash, role string
		createdAt                                                time.Time
	)
	if err := row.Scan(&id, &firstName, &lastName, &username, &email, &passwordHash, &role, &createdAt); err != nil {
		return hruser.HRUser{}, err
	}
	return hruser.Hydrate(id, firstName, lastName, username, email, passwordHash, role, createdAt), nil
}
