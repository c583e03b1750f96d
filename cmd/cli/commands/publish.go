package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/csvio"
)

// PublishCmd creates the publish command
func PublishCmd(app *AppContext) *cobra.Command {
	var schedule, tab string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a schedule CSV to Google Sheets",
		Long: `Publish a schedule to the configured spreadsheet. The tab is created if missing; if it
exists, the Date, Call, Backup, Intern and Supervisor columns are overwritten and any other
columns are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("publish command", zap.String("schedule", schedule), zap.String("tab", tab))

			rows, err := readFile(schedule, csvio.ReadSchedule)
			if err != nil {
				return err
			}

			sheets, err := app.Sheets()
			if err != nil {
				return err
			}

			published, err := services.PublishSchedule(sheets, app.Cfg, rows, tab, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\n✅ Schedule Published Successfully\n\n")
			fmt.Printf("Tab:      %s\n", published)
			fmt.Printf("Days:     %d\n", len(rows))
			fmt.Printf("Sheet ID: %s\n\n", app.Cfg.CalendarSheetID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "generated_schedule.csv", "Schedule CSV")
	cmd.Flags().StringVar(&tab, "tab", "", "Tab title (defaults to scheduleTab, else the date range)")

	return cmd
}
