package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRealm struct {
	tokenStatus   int
	createStatus  int
	roles         []Role
	roleGets      atomic.Int64
	assignedRoles []Role
	lastAuth      string
	lastUserBody  map[string]any
}

func newFakeRealm() *fakeRealm {
	return &fakeRealm{
		tokenStatus:  http.StatusOK,
		createStatus: http.StatusCreated,
		roles: []Role{
			{ID: "r-1", Name: "HR"},
			{ID: "r-2", Name: "Employee"},
		},
	}
}

func (f *fakeRealm) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /realms/acme/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if f.tokenStatus != http.StatusOK {
			w.WriteHeader(f.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "admin-token",
			"token_type":   "bearer",
			"expires_in":   300,
		})
	})

	mux.HandleFunc("POST /admin/realms/acme/users", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&f.lastUserBody)
		if f.createStatus != http.StatusCreated {
			w.WriteHeader(f.createStatus)
			return
		}
		w.Header().Set("Location", r.Host+"/admin/realms/acme/users/user-123")
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("GET /admin/realms/acme/roles", func(w http.ResponseWriter, r *http.Request) {
		f.roleGets.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.roles)
	})

	mux.HandleFunc("POST /admin/realms/acme/users/user-123/role-mappings/realm", func(w http.ResponseWriter, r *http.Request) {
		var roles []Role
		_ = json.NewDecoder(r.Body).Decode(&roles)
		f.assignedRoles = append(f.assignedRoles, roles...)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		BaseURL:      srv.URL,
		Realm:        "acme",
		ClientID:     "hrflow-admin",
		ClientSecret: "secret",
	})
}

func testAccount() Account {
	return Account{
		Username:  "janedoe1",
		Email:     "jane@x.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Password:  "initial-secret",
	}
}

func TestProvision_HappyPath(t *testing.T) {
	realm := newFakeRealm()
	client := newTestClient(realm.server(t))

	remoteID, err := client.Provision(context.Background(), testAccount(), "Employee")
	require.NoError(t, err)
	require.Equal(t, "user-123", remoteID)

	require.Equal(t, "Bearer admin-token", realm.lastAuth)
	require.Equal(t, "janedoe1", realm.lastUserBody["username"])
	require.Equal(t, true, realm.lastUserBody["enabled"])
	creds := realm.lastUserBody["credentials"].([]any)
	cred := creds[0].(map[string]any)
	require.Equal(t, "password", cred["type"])
	require.Equal(t, "initial-secret", cred["value"])
	require.Equal(t, false, cred["temporary"])

	require.Equal(t, []Role{{ID: "r-2", Name: "Employee"}}, realm.assignedRoles)
}

func TestProvision_TokenEndpointRejects(t *testing.T) {
	realm := newFakeRealm()
	realm.tokenStatus = http.StatusUnauthorized
	client := newTestClient(realm.server(t))

	_, err := client.Provision(context.Background(), testAccount(), "Employee")
	var provErr *ProvisioningError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, StepToken, provErr.Step)
}

func TestProvision_UserCreationConflict(t *testing.T) {
	realm := newFakeRealm()
	realm.createStatus = http.StatusConflict
	client := newTestClient(realm.server(t))

	_, err := client.Provision(context.Background(), testAccount(), "Employee")
	var provErr *ProvisioningError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, StepCreateUser, provErr.Step)
}

func TestProvision_RoleNotFound(t *testing.T) {
	realm := newFakeRealm()
	client := newTestClient(realm.server(t))

	_, err := client.Provision(context.Background(), testAccount(), "Manager")
	require.ErrorIs(t, err, ErrRoleNotFound)

	var provErr *ProvisioningError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, StepRoleLookup, provErr.Step)
}

func TestProvision_RoleCatalogFetchedOncePerClient(t *testing.T) {
	realm := newFakeRealm()
	client := newTestClient(realm.server(t))

	_, err := client.Provision(context.Background(), testAccount(), "Employee")
	require.NoError(t, err)
	_, err = client.Provision(context.Background(), testAccount(), "Employee")
	require.NoError(t, err)

	require.Equal(t, int64(1), realm.roleGets.Load())
}

func TestPasswordToken(t *testing.T) {
	realm := newFakeRealm()
	client := newTestClient(realm.server(t))

	token, err := client.PasswordToken(context.Background(), "hr.admin", "pass")
	require.NoError(t, err)
	require.Equal(t, "admin-token", token.AccessToken)
}

func TestPasswordToken_InvalidCredentials(t *testing.T) {
	realm := newFakeRealm()
	realm.tokenStatus = http.StatusUnauthorized
	client := newTestClient(realm.server(t))

	_, err := client.PasswordToken(context.Background(), "hr.admin", "wrong")
	var provErr *ProvisioningError
	require.ErrorAs(t, err, &provErr)
	require.Equal(t, StepToken, provErr.Step)
}
