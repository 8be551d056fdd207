package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/iota-uz/hrflow/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrflow/modules/hrm/presentation/viewmodels"
	"github.com/iota-uz/hrflow/modules/hrm/services"
	"github.com/iota-uz/hrflow/pkg/application"
	"github.com/iota-uz/hrflow/pkg/composables"
	"github.com/iota-uz/hrflow/pkg/configuration"
	"github.com/iota-uz/hrflow/pkg/httpapi"
	"github.com/iota-uz/hrflow/pkg/middleware"
)

type EmployeeController struct {
	app             application.Application
	employeeService *services.EmployeeService
	importService   *services.ImportService
	verifier        middleware.TokenVerifier
	hrRole          string
	maxUploadSize   int64
	basePath        string
}

func NewEmployeeController(app application.Application, verifier middleware.TokenVerifier) application.Controller {
	conf := configuration.Use()
	return &EmployeeController{
		app:             app,
		employeeService: app.Service(services.EmployeeService{}).(*services.EmployeeService),
		importService:   app.Service(services.ImportService{}).(*services.ImportService),
		verifier:        verifier,
		hrRole:          conf.Keycloak.HRRole,
		maxUploadSize:   conf.Import.MaxUploadSize,
		basePath:        "/hrm/employees",
	}
}

func (c *EmployeeController) Key() string {
	return c.basePath
}

func (c *EmployeeController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.Authenticate(c.verifier),
		middleware.RequireRoles(c.hrRole),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	router.HandleFunc("/import", c.Import).Methods(http.MethodPost)
}

func (c *EmployeeController) List(w http.ResponseWriter, r *http.Request) {
	params := &employee.FindParams{}
	if v := r.URL.Query().Get("limit"); v != "" {
		params.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		params.Offset, _ = strconv.Atoi(v)
	}

	entities, err := c.employeeService.GetPaginated(r.Context(), params)
	if err != nil {
		writeError(w, r, errors.Wrap(err, "failed to list employees"), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.EmployeesFromEntities(entities))
}

func (c *EmployeeController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, err, http.StatusBadRequest)
		return
	}

	entity, err := c.employeeService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, persistence.ErrEmployeeNotFound) {
			writeError(w, r, err, http.StatusNotFound)
			return
		}
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, viewmodels.EmployeeFromEntity(entity))
}

// Import accepts one CSV file as multipart field "file" and runs it as a
// single batch. A file that cannot be decoded is a 400 with no report; a
// decodable file always produces a report.
func (c *EmployeeController) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadSize)
	if err := r.ParseMultipartForm(c.maxUploadSize); err != nil {
		writeError(w, r, errors.Wrap(err, "failed to parse upload"), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, errors.Wrap(err, "missing file field"), http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	report, err := c.importService.ImportCSV(r.Context(), file)
	if err != nil {
		writeError(w, r, errors.Wrap(err, "import failed"), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, report)
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
