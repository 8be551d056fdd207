package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

func (c Config) tokenURL() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", strings.TrimRight(c.BaseURL, "/"), c.Realm)
}

func (c Config) adminURL(parts ...string) string {
	segments := append([]string{strings.TrimRight(c.BaseURL, "/"), "admin", "realms", c.Realm}, parts...)
	return strings.Join(segments, "/")
}

// Role is one entry of the realm role catalog.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Account is everything the provider needs to mirror one local record.
type Account struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	// Password is the generated initial secret, set non-temporary.
	Password string
}

// Client talks to a Keycloak realm as an admin service account. The admin
// token comes from a client-credentials grant and is cached and refreshed
// by the underlying token source; resolved roles are cached per client so a
// batch of rows resolves the role catalog once, not once per row.
type Client struct {
	cfg    Config
	http   *http.Client
	source oauth2.TokenSource

	mu    sync.Mutex
	roles map[string]Role
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	grant := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.tokenURL(),
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		source: grant.TokenSource(tokenCtx),
		roles:  make(map[string]Role),
	}
}

// Provision mirrors one local record into the realm: acquire a token,
// create the user, resolve the role by name and assign it. All four calls
// share the same bearer token and none is retried. The returned id is the
// provider's id for the new user.
func (c *Client) Provision(ctx context.Context, account Account, roleName string) (string, error) {
	token, err := c.token()
	if err != nil {
		return "", err
	}

	userID, err := c.createUser(ctx, token, account)
	if err != nil {
		return "", err
	}

	role, err := c.realmRole(ctx, token, roleName)
	if err != nil {
		return "", err
	}

	if err := c.assignRealmRole(ctx, token, userID, role); err != nil {
		return "", err
	}
	return userID, nil
}

// PasswordToken exchanges an operator's credentials for an access token via
// the password grant.
func (c *Client) PasswordToken(ctx context.Context, username, password string) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: c.cfg.tokenURL()},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	token, err := conf.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, stepErr(StepToken, err)
	}
	return token, nil
}

func (c *Client) token() (string, error) {
	token, err := c.source.Token()
	if err != nil {
		return "", stepErr(StepToken, err)
	}
	return token.AccessToken, nil
}

func (c *Client) createUser(ctx context.Context, token string, account Account) (string, error) {
	payload := map[string]any{
		"username":  account.Username,
		"email":     account.Email,
		"firstName": account.FirstName,
		"lastName":  account.LastName,
		"enabled":   true,
		"credentials": []map[string]any{{
			"type":      "password",
			"value":     account.Password,
			"temporary": false,
		}},
	}

	resp, err := c.do(ctx, http.MethodPost, c.cfg.adminURL("users"), token, payload)
	if err != nil {
		return "", stepErr(StepCreateUser, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", stepErr(StepCreateUser, unexpectedStatus(resp))
	}

	// The new user's id is the trailing segment of the Location header.
	location := resp.Header.Get("Location")
	idx := strings.LastIndex(location, "/")
	if idx < 0 || idx == len(location)-1 {
		return "", stepErr(StepCreateUser, errors.Errorf("no user id in location header %q", location))
	}
	return location[idx+1:], nil
}

func (c *Client) realmRole(ctx context.Context, token, name string) (Role, error) {
	c.mu.Lock()
	cached, ok := c.roles[name]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	resp, err := c.do(ctx, http.MethodGet, c.cfg.adminURL("roles"), token, nil)
	if err != nil {
		return Role{}, stepErr(StepRoleLookup, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Role{}, stepErr(StepRoleLookup, unexpectedStatus(resp))
	}

	var catalog []Role
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return Role{}, stepErr(StepRoleLookup, errors.Wrap(err, "failed to decode role catalog"))
	}

	for _, role := range catalog {
		if role.Name == name {
			c.mu.Lock()
			c.roles[name] = role
			c.mu.Unlock()
			return role, nil
		}
	}
	return Role{}, stepErr(StepRoleLookup, errors.Wrapf(ErrRoleNotFound, "%q", name))
}

func (c *Client) assignRealmRole(ctx context.Context, token, userID string, role Role) error {
	url := c.cfg.adminURL("users", userID, "role-mappings", "realm")
	resp, err := c.do(ctx, http.MethodPost, url, token, []Role{role})
	if err != nil {
		return stepErr(StepAssignRole, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return stepErr(StepAssignRole, unexpectedStatus(resp))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func unexpectedStatus(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(detail) == 0 {
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return errors.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
}
