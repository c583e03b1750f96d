package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/csvio"
)

// StatsCmd creates the stats command
func StatsCmd(app *AppContext) *cobra.Command {
	var (
		schedule      string
		residentsPath string
		previousStats []string
		out           string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Recount call statistics for a schedule CSV",
		Long:  "Recount call statistics for a schedule, for example after manual edits, adding earlier blocks' counts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readFile(schedule, csvio.ReadSchedule)
			if err != nil {
				return err
			}
			residents, err := readFile(residentsPath, csvio.ReadResidents)
			if err != nil {
				return err
			}

			previous, err := readStatistics(previousStats)
			if err != nil {
				return err
			}

			stats := services.CallStatistics(rows, residents, previous, app.Logger)
			if len(stats) == 0 {
				fmt.Printf("\n⚠️  %s has no rows\n\n", schedule)
				return nil
			}

			if out != "" {
				if err := writeFile(out, func(w io.Writer) error { return csvio.WriteStatistics(w, stats) }); err != nil {
					return err
				}
			}

			fmt.Println()
			printStatistics(stats)
			if out != "" {
				fmt.Printf("✅ Statistics saved to %s\n\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&schedule, "schedule", "s", "generated_schedule.csv", "Schedule CSV")
	cmd.Flags().StringVar(&residentsPath, "residents", "", "Roster CSV")
	cmd.Flags().StringSliceVar(&previousStats, "previous-stats", nil, "Statistics CSVs of earlier blocks")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Statistics CSV output")
	_ = cmd.MarkFlagRequired("residents")

	return cmd
}
