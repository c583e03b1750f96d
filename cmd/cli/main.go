package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/cmd/cli/commands"
	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     *commands.AppContext
	cleanup func()
)

func main() {
	app = &commands.AppContext{}

	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Call Rota CLI - Generate resident on-call schedules",
		Long: `A CLI tool for generating, checking and publishing resident call schedules, block by block
through the academic year.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
			if cleanup != nil {
				cleanup()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (selects config.<env>.yaml and the token file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")

	rootCmd.AddCommand(commands.GenerateCmd(app))
	rootCmd.AddCommand(commands.ValidateCmd(app))
	rootCmd.AddCommand(commands.StatsCmd(app))
	rootCmd.AddCommand(commands.ExportCalendarCmd(app))
	rootCmd.AddCommand(commands.PublishCmd(app))
	rootCmd.AddCommand(commands.FetchLeaveCmd(app))
	rootCmd.AddCommand(commands.BlocksCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up the logger and config. Clients and the database connect on first use.
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	app.Logger, cleanup, err = logging.InitLogger(logging.Options{Env: env, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Debug("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	return nil
}
