package composables

import (
	"context"

	"github.com/iota-uz/hrflow/pkg/constants"
	"github.com/sirupsen/logrus"
)

// UseLogger returns the request-scoped logger from the context.
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		panic("logger not found")
	}
	return logger.(*logrus.Entry)
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// Principal is the authenticated caller extracted from a verified bearer token.
type Principal struct {
	UserID   string
	Username string
	Roles    []string
}

func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, constants.PrincipalKey, p)
}

// UsePrincipal returns the authenticated caller, if any.
func UsePrincipal(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(constants.PrincipalKey).(*Principal)
	return p, ok
}
