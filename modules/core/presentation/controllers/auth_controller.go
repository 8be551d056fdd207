package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/hrflow/modules/core/domain/aggregates/hruser"
	"github.com/iota-uz/hrflow/modules/core/infrastructure/persistence"
	"github.com/iota-uz/hrflow/modules/core/presentation/viewmodels"
	"github.com/iota-uz/hrflow/modules/core/services"
	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/keycloak"
	"github.com/iota-uz/hrflow/pkg/application"
	"github.com/iota-uz/hrflow/pkg/composables"
	"github.com/iota-uz/hrflow/pkg/configuration"
	"github.com/iota-uz/hrflow/pkg/httpapi"
	"github.com/iota-uz/hrflow/pkg/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthController exposes operator sign-in and HR account management.
// Login is public; account management requires the HR role.
type AuthController struct {
	app         application.Application
	authService *services.AuthService
	verifier    middleware.TokenVerifier
	hrRole      string
	basePath    string
}

func NewAuthController(app application.Application, verifier middleware.TokenVerifier) application.Controller {
	conf := configuration.Use()
	return &AuthController{
		app:         app,
		authService: app.Service(services.AuthService{}).(*services.AuthService),
		verifier:    verifier,
		hrRole:      conf.Keycloak.HRRole,
		basePath:    "/auth",
	}
}

func (c *AuthController) Key() string {
	return c.basePath
}

func (c *AuthController) Register(r *mux.Router) {
	public := r.PathPrefix(c.basePath).Subrouter()
	public.HandleFunc("/login", c.Login).Methods(http.MethodPost)

	gated := r.PathPrefix(c.basePath).Subrouter()
	gated.Use(
		middleware.Authenticate(c.verifier),
		middleware.RequireRoles(c.hrRole),
	)
	gated.HandleFunc("/hr", c.CreateHR).Methods(http.MethodPost)
	gated.HandleFunc("/hr", c.DeleteHR).Methods(http.MethodDelete)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(err, "malformed login payload"), http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, r, errors.New("username and password are required"), http.StatusBadRequest)
		return
	}

	token, err := c.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, r, err, http.StatusUnauthorized)
			return
		}
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (c *AuthController) CreateHR(w http.ResponseWriter, r *http.Request) {
	dto := &hruser.CreateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		writeError(w, r, errors.Wrap(err, "malformed payload"), http.StatusBadRequest)
		return
	}

	created, err := c.authService.CreateHR(r.Context(), dto)
	if err != nil {
		var provErr *keycloak.ProvisioningError
		switch {
		case errors.Is(err, persistence.ErrHRUserExists):
			writeError(w, r, err, http.StatusConflict)
		case errors.As(err, &provErr):
			writeError(w, r, err, http.StatusBadGateway)
		default:
			writeError(w, r, err, http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusCreated, viewmodels.HRUserFromEntity(created))
}

func (c *AuthController) DeleteHR(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, r, errors.New("email query parameter is required"), http.StatusBadRequest)
		return
	}

	if err := c.authService.DeleteHR(r.Context(), email); err != nil {
		if errors.Is(err, persistence.ErrHRUserNotFound) {
			writeError(w, r, err, http.StatusNotFound)
			return
		}
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	_ = httpapi.WriteJSON(w, status, payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	logger := composables.UseLogger(r.Context())
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("request failed")
	} else {
		logger.WithError(err).Warn("request rejected")
	}
	_ = httpapi.WriteError(w, status, err.Error())
}
