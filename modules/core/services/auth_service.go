package services

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/iota-uz/hrflow/modules/core/domain/aggregates/hruser"
	"github.com/iota-uz/hrflow/modules/core/infrastructure/persistence"
	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/keycloak"
)

var ErrInvalidCredentials = gerrors.New("invalid credentials")

// IdentityProvider is the slice of the identity server the auth service
// needs: account provisioning and the resource-owner password grant.
type IdentityProvider interface {
	Provision(ctx context.Context, account keycloak.Account, roleName string) (string, error)
	PasswordToken(ctx context.Context, username, password string) (*oauth2.Token, error)
}

type AuthService struct {
	repo   hruser.Repository
	idp    IdentityProvider
	hrRole string
}

func NewAuthService(repo hruser.Repository, idp IdentityProvider, hrRole string) *AuthService {
	return &AuthService{
		repo:   repo,
		idp:    idp,
		hrRole: hrRole,
	}
}

// Login exchanges an operator's credentials for a token issued by the
// identity server. The local record is checked first so that deleted
// operators are rejected even while their remote account lingers.
func (s *AuthService) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, persistence.ErrHRUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.idp.PasswordToken(ctx, username, password)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return token, nil
}

// CreateHR registers a new HR operator locally and mirrors the account
// into the identity server under the HR role.
func (s *AuthService) CreateHR(ctx context.Context, data *hruser.CreateDTO) (hruser.HRUser, error) {
	if err := data.Validate(); err != nil {
		return hruser.HRUser{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return hruser.HRUser{}, gerrors.Wrap(err, "hash password")
	}
	created, err := s.repo.Create(ctx, data.ToEntity(string(hash), s.hrRole))
	if err != nil {
		return hruser.HRUser{}, err
	}
	if _, err := s.idp.Provision(ctx, keycloak.Account{
		Username:  created.Username(),
		Email:     created.Email(),
		FirstName: created.FirstName(),
		LastName:  created.LastName(),
		Password:  data.Password,
	}, s.hrRole); err != nil {
		return hruser.HRUser{}, gerrors.Wrap(err, "provision hr account")
	}
	return created, nil
}

func (s *AuthService) DeleteHR(ctx context.Context, email string) error {
	return s.repo.DeleteByEmail(ctx, email)
}
