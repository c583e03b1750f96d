package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/csvio"
)

// ExportCalendarCmd creates the export-calendar command
func ExportCalendarCmd(app *AppContext) *cobra.Command {
	var schedule, out string

	cmd := &cobra.Command{
		Use:   "export-calendar",
		Short: "Format a schedule CSV as a month-by-month calendar workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readFile(schedule, csvio.ReadSchedule)
			if err != nil {
				return err
			}

			if err := writeFile(out, func(w io.Writer) error { return services.ExportCalendar(w, rows, app.Logger) }); err != nil {
				return err
			}

			fmt.Printf("\n✅ Calendar saved to %s\n\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "generated_schedule.csv", "Schedule CSV")
	cmd.Flags().StringVarP(&out, "out", "o", "formatted_schedule.xlsx", "Workbook output")

	return cmd
}
