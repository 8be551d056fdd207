package employee

import "context"

type FindParams struct {
	Limit  int
	Offset int
	SortBy []string
}

type Repository interface {
	Count(ctx context.Context) (int64, error)
	GetAll(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
	GetPaginated(ctx context.Context, params *FindParams) ([]Employee, error)
	// ExistsByEmail is a point-in-time check. Two concurrent rows carrying
	// the same email can both observe false; the unique index on email is
	// the backstop and the resulting insert error is a row failure.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, data Employee) (Employee, error)
}
