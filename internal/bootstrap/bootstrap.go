package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"thermolab/internal/modules/session/domain"
	sessioninadapter "thermolab/internal/modules/session/adapter/in"
	sessionoutadapter "thermolab/internal/modules/session/adapter/out"
	sessionout "thermolab/internal/modules/session/port/out"
	sessionservice "thermolab/internal/modules/session/service"
	sessionusecase "thermolab/internal/modules/session/usecase"
	"thermolab/internal/platform/clock"
	"thermolab/internal/platform/config"
	"thermolab/internal/platform/id"
	"thermolab/internal/platform/logging"
	uiapp "thermolab/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *logging.Logger
	SessionCLI sessioninadapter.CLIHandler
	SessionTUI sessioninadapter.TUIHandler
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}
	clk := clock.System{}

	schemas, err := sessionoutadapter.NewYAMLSchemaStore(cfg.Form.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}

	httpCfg := sessionoutadapter.HTTPConfig{Endpoint: cfg.Submit.Endpoint, Timeout: cfg.Submit.Timeout}
	submitters := map[domain.TransportKind]sessionout.Submitter{
		domain.TransportForm: sessionoutadapter.NewFormSubmitter(httpCfg),
		domain.TransportJSON: sessionoutadapter.NewJSONSubmitter(httpCfg),
	}

	svc := sessionservice.NewSessionService(clk, id.NewTimeSuffix(clk), submitters, sessionoutadapter.NewMarkdownExporter(), logger)
	sessionUC := sessionusecase.NewInteractor(svc, schemas)

	logger.Debug("app wired", "schema", cfg.Form.Schema, "endpoint", cfg.Submit.Endpoint, "timeout", cfg.Submit.Timeout.String())
	return &App{
		Config:     cfg,
		Logger:     logger,
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		SessionTUI: sessioninadapter.NewTUIHandler(sessionUC),
	}, nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.SessionTUI, app.Config.Form.Schema, app.Config.Export.Dir)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
