package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/clients/gmailclient"
	"github.com/jakechorley/call-rota/pkg/clients/sheetsclient"
	"github.com/jakechorley/call-rota/pkg/db"
	"github.com/jakechorley/call-rota/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands. Google clients
// and the database are connected on first use so CSV-only commands need no credentials.
type AppContext struct {
	Env    string
	Cfg    *config.Config
	Logger *zap.Logger
	Ctx    context.Context

	oauthCfg     *config.OAuthClientConfig
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
	database     *postgres.DB
}

// Database connects to postgres and applies pending migrations. It returns nil, nil when no
// databaseURL is configured.
func (app *AppContext) Database() (db.Database, error) {
	if app.database != nil {
		return app.database, nil
	}
	if app.Cfg.DatabaseURL == "" {
		return nil, nil
	}

	app.Logger.Info("Connecting to database")
	database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	applied, err := database.RunMigrations(app.Ctx)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		app.Logger.Info("Applied migrations", zap.Strings("files", applied))
	}
	app.Logger.Debug("Database initialized successfully")

	app.database = database
	return app.database, nil
}

// RequireDatabase is Database for commands that cannot run without one
func (app *AppContext) RequireDatabase() (db.Database, error) {
	database, err := app.Database()
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, errors.New("this command needs databaseURL in the config")
	}
	return database, nil
}

func (app *AppContext) oauthClient() (*config.OAuthClientConfig, error) {
	if app.oauthCfg != nil {
		return app.oauthCfg, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}
	app.oauthCfg = oauthCfg
	return oauthCfg, nil
}

// Sheets returns the Sheets client, running the OAuth flow if needed
func (app *AppContext) Sheets() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	oauthCfg, err := app.oauthClient()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// Gmail returns the Gmail client. It shares the Sheets client's token.
func (app *AppContext) Gmail() (*gmailclient.Client, error) {
	if app.gmailClient != nil {
		return app.gmailClient, nil
	}

	sheets, err := app.Sheets()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, app.oauthCfg, sheets.Token())
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.gmailClient = client
	return client, nil
}

// Close releases the database pool
func (app *AppContext) Close() {
	if app.database != nil {
		app.database.Close()
	}
}

// readFile opens path and decodes it with read. An empty path yields the zero value.
func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	if path == "" {
		return zero, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// writeFile creates path and encodes into it with write
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
