package hruser

import "context"

type Repository interface {
	GetByEmail(ctx context.Context, email string) (HRUser, error)
	GetByUsername(ctx context.Context, username string) (HRUser, error)
	Create(ctx context.Context, data HRUser) (HRUser, error)
	DeleteByEmail(ctx context.Context, email string) error
}
