package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("KEYCLOAK_CLIENT_ID", "hrflow-admin")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "secret")
	t.Setenv("LOG_PATH", t.TempDir()+"/app.log")

	c := &Configuration{}
	require.NoError(t, c.load(nil))
	t.Cleanup(c.Unload)

	require.Equal(t, "hrflow", c.Database.Name)
	require.Equal(t, "Employee", c.Keycloak.DefaultRole)
	require.Equal(t, "HR", c.Keycloak.HRRole)
	require.Equal(t, 8, c.Import.MaxConcurrency)
	require.Equal(t, 15*time.Second, c.Keycloak.Timeout)
	require.Equal(t, "localhost:3200", c.SocketAddress)
	require.NotNil(t, c.Logger())
}

func TestLoad_InvalidImportConcurrency(t *testing.T) {
	t.Setenv("IMPORT_MAX_CONCURRENCY", "0")

	c := &Configuration{}
	require.Error(t, c.load(nil))
}

func TestKeycloakOptions_IssuerURL(t *testing.T) {
	k := KeycloakOptions{BaseURL: "http://kc:8080", Realm: "acme"}
	require.Equal(t, "http://kc:8080/realms/acme", k.IssuerURL())
}

func TestKeycloakOptions_Validate(t *testing.T) {
	k := KeycloakOptions{ClientID: "id"}
	require.Error(t, k.Validate())
	k.ClientSecret = "secret"
	require.NoError(t, k.Validate())
}
