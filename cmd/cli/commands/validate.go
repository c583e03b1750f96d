package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/csvio"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	var (
		inputs   inputFiles
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schedule CSV against the scheduling rules",
		Long:  "Check a schedule, for example one edited by hand, for spacing, template, leave, cap and supervisor rule breaks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readFile(schedule, csvio.ReadSchedule)
			if err != nil {
				return err
			}
			loaded, err := inputs.load()
			if err != nil {
				return err
			}

			result, err := services.ValidateSchedule(services.ValidateScheduleInput{
				Rows:            rows,
				Residents:       loaded.residents,
				Leave:           loaded.leave,
				SoftConstraints: loaded.soft,
				PreviousTail:    loaded.previousTail,
				PGY4Cap:         app.Cfg.Scheduler.PGY4Cap,
			}, app.Logger)
			if err != nil {
				return err
			}

			fmt.Printf("\nSoft constraints: %d of %d honoured\n\n", result.SoftConstraints.Fulfilled, result.SoftConstraints.Total)
			for _, v := range result.SoftConstraints.Violations {
				fmt.Printf("  %s  %-10s  %s\n", v.Date.Format("2006-01-02"), v.Role, v.Resident)
			}

			if result.Valid() {
				fmt.Printf("\n✅ Schedule is valid (%d days)\n\n", len(rows))
				return nil
			}

			fmt.Printf("\n❌ %d validation errors:\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e)
			}
			fmt.Println()

			return errors.New("schedule failed validation")
		},
	}

	inputs.register(cmd)
	cmd.Flags().StringVarP(&schedule, "schedule", "s", "generated_schedule.csv", "Schedule CSV to check")
	_ = cmd.MarkFlagRequired("residents")

	return cmd
}
