package services

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/hrflow/modules/hrm/domain/aggregates/employee"
	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/csvimport"
	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/keycloak"
	"github.com/iota-uz/hrflow/pkg/eventbus"
	"github.com/iota-uz/hrflow/pkg/metrics"
)

// Provisioner mirrors a newly created employee into the identity provider
// and returns the remote account id.
type Provisioner interface {
	Provision(ctx context.Context, account keycloak.Account, roleName string) (string, error)
}

type RowStatus string

const (
	RowAdded   RowStatus = "added"
	RowSkipped RowStatus = "skipped"
	RowFailed  RowStatus = "failed"
)

// RowOutcome is the terminal classification of one input row. Exactly one
// outcome exists per row; a failed row never escapes as an error.
type RowOutcome struct {
	Status     RowStatus
	Line       int
	Email      string
	EmployeeID int64
	Err        error
}

type FailedRow struct {
	Line  int    `json:"line"`
	Email string `json:"email"`
	Cause string `json:"cause"`
}

type ImportReport struct {
	Message      string      `json:"message"`
	AddedCount   int         `json:"addedCount"`
	SkippedCount int         `json:"skippedCount"`
	FailedCount  int         `json:"failedCount"`
	Failed       []FailedRow `json:"failed,omitempty"`
}

var requiredColumns = []string{
	"firstName", "lastName", "id", "email", "poste", "departement", "dateEmbouche",
}

type ImportServiceOptions struct {
	DefaultRole    string
	MaxConcurrency int
	Logger         *logrus.Logger
}

// ImportService runs one bulk import per uploaded file: decode, dedup
// against the store, persist, provision remotely, aggregate outcomes.
type ImportService struct {
	repo           employee.Repository
	provisioner    Provisioner
	publisher      eventbus.EventBus
	defaultRole    string
	maxConcurrency int
	logger         *logrus.Logger
}

func NewImportService(
	repo employee.Repository,
	provisioner Provisioner,
	publisher eventbus.EventBus,
	opts ImportServiceOptions,
) *ImportService {
	if opts.DefaultRole == "" {
		opts.DefaultRole = "Employee"
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 8
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &ImportService{
		repo:           repo,
		provisioner:    provisioner,
		publisher:      publisher,
		defaultRole:    opts.DefaultRole,
		maxConcurrency: opts.MaxConcurrency,
		logger:         opts.Logger,
	}
}

// ImportCSV processes one uploaded file as a single batch. A file that
// cannot be decoded returns an error and no report; once rows decode, the
// batch always joins to completion and returns a best-effort report whose
// counts sum to the number of input rows.
func (s *ImportService) ImportCSV(ctx context.Context, file io.Reader) (*ImportReport, error) {
	decoder, err := csvimport.NewDecoder(file, requiredColumns...)
	if err != nil {
		return nil, err
	}
	rows, err := decoder.DecodeAll()
	if err != nil {
		return nil, err
	}

	// Each worker writes only its own slot, so the join is the only
	// synchronization point.
	outcomes := make([]RowOutcome, len(rows))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, row := range rows {
		g.Go(func() error {
			outcomes[i] = s.processRow(ctx, row)
			return nil
		})
	}
	_ = g.Wait()

	report := &ImportReport{Message: "CSV file imported successfully"}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case RowAdded:
			report.AddedCount++
		case RowSkipped:
			report.SkippedCount++
		case RowFailed:
			report.FailedCount++
			report.Failed = append(report.Failed, FailedRow{
				Line:  outcome.Line,
				Email: outcome.Email,
				Cause: outcome.Err.Error(),
			})
			s.logger.WithError(outcome.Err).
				WithFields(logrus.Fields{"line": outcome.Line, "email": outcome.Email}).
				Warn("import row failed")

			var provErr *keycloak.ProvisioningError
			if errors.As(outcome.Err, &provErr) {
				metrics.ProvisioningFailures.WithLabelValues(string(provErr.Step)).Inc()
			}
		}
		metrics.ImportRows.WithLabelValues(string(outcome.Status)).Inc()
	}
	metrics.ImportRuns.Inc()
	return report, nil
}

// processRow drives one row to its terminal outcome. Errors are folded into
// the outcome; nothing propagates past the row boundary.
func (s *ImportService) processRow(ctx context.Context, row csvimport.Row) RowOutcome {
	dto := employee.CreateDTO{
		FirstName:  row.Get("firstName"),
		LastName:   row.Get("lastName"),
		RowID:      row.Get("id"),
		Email:      row.Get("email"),
		Position:   row.Get("poste"),
		Department: row.Get("departement"),
		HireDate:   row.Get("dateEmbouche"),
	}
	if err := dto.Validate(); err != nil {
		return RowOutcome{Status: RowFailed, Line: row.Line, Email: dto.Email, Err: err}
	}

	exists, err := s.repo.ExistsByEmail(ctx, dto.Email)
	if err != nil {
		return RowOutcome{Status: RowFailed, Line: row.Line, Email: dto.Email, Err: err}
	}
	if exists {
		return RowOutcome{Status: RowSkipped, Line: row.Line, Email: dto.Email}
	}

	password := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return RowOutcome{Status: RowFailed, Line: row.Line, Email: dto.Email, Err: err}
	}

	entity, err := dto.ToEntity(dto.Username(), string(hash), s.defaultRole)
	if err != nil {
		return RowOutcome{Status: RowFailed, Line: row.Line, Email: dto.Email, Err: err}
	}

	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return RowOutcome{Status: RowFailed, Line: row.Line, Email: dto.Email, Err: err}
	}

	remoteID, err := s.provisioner.Provision(ctx, keycloak.Account{
		Username:  created.Username(),
		Email:     created.Email(),
		FirstName: created.FirstName(),
		LastName:  created.LastName(),
		Password:  password,
	}, s.defaultRole)
	if err != nil {
		// The local record stays behind: local and remote state diverge on
		// this path until an operator reconciles them.
		return RowOutcome{Status: RowFailed, Line: row.Line, Email: dto.Email, Err: err}
	}

	s.publisher.Publish(employee.NewCreatedEvent(dto, created, remoteID))
	return RowOutcome{Status: RowAdded, Line: row.Line, Email: dto.Email, EmployeeID: created.ID()}
}
