package hrm

import (
	"context"
	"embed"

	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/keycloak"
	"github.com/iota-uz/hrflow/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrflow/modules/hrm/presentation/controllers"
	"github.com/iota-uz/hrflow/modules/hrm/services"
	"github.com/iota-uz/hrflow/pkg/application"
	"github.com/iota-uz/hrflow/pkg/configuration"
	"github.com/iota-uz/hrflow/pkg/middleware"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()
	if err := conf.Keycloak.Validate(); err != nil {
		return err
	}

	identityClient := keycloak.NewClient(keycloak.Config{
		BaseURL:      conf.Keycloak.BaseURL,
		Realm:        conf.Keycloak.Realm,
		ClientID:     conf.Keycloak.ClientID,
		ClientSecret: conf.Keycloak.ClientSecret,
		Timeout:      conf.Keycloak.Timeout,
	})
	employeeRepo := persistence.NewEmployeeRepository()

	app.Migrations().RegisterSchema(&MigrationFiles)
	app.RegisterServices(
		services.NewEmployeeService(employeeRepo, app.EventPublisher()),
		services.NewImportService(employeeRepo, identityClient, app.EventPublisher(), services.ImportServiceOptions{
			DefaultRole:    conf.Keycloak.DefaultRole,
			MaxConcurrency: conf.Import.MaxConcurrency,
			Logger:         app.Logger(),
		}),
	)

	verifier := middleware.NewOIDCVerifier(context.Background(), conf.Keycloak.IssuerURL())
	app.RegisterControllers(
		controllers.NewEmployeeController(app, verifier),
	)
	return nil
}

func (m *Module) Name() string {
	return "hrm"
}
