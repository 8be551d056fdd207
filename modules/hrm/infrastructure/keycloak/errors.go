package keycloak

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Step names the remote call that failed inside one provisioning attempt.
type Step string

const (
	StepToken      Step = "token_acquisition"
	StepCreateUser Step = "user_creation"
	StepRoleLookup Step = "role_lookup"
	StepAssignRole Step = "role_assignment"
)

var ErrRoleNotFound = errors.New("realm role not found")

// ProvisioningError wraps the failure of a single step. Steps already
// completed are not rolled back: a user created before a later step fails
// stays behind in the realm.
type ProvisioningError struct {
	Step Step
	Err  error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, err error) *ProvisioningError {
	return &ProvisioningError{Step: step, Err: err}
}
