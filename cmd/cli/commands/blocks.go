package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/db"
)

// BlocksCmd creates the blocks command
func BlocksCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks [year]",
		Short: "List the blocks of an academic year",
		Long:  "List the three blocks of an academic year and, when a database is configured, which of them have been generated.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year := app.Cfg.AcademicYearStart
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid year %q: %w", args[0], err)
				}
				year = y
			}

			generated := make(map[int]db.Block)
			database, err := app.Database()
			if err != nil {
				return err
			}
			if database != nil {
				stored, err := database.GetBlocks(app.Ctx, year)
				if err != nil {
					return fmt.Errorf("failed to fetch blocks: %w", err)
				}
				for _, b := range stored {
					generated[b.Number] = b
				}
			}

			fmt.Printf("\nAcademic year %d-%d\n\n", year, year+1)
			for _, b := range services.BlockDates(year) {
				status := ""
				if s, ok := generated[b.Number]; ok {
					status = fmt.Sprintf("  generated %s (seed %d, trial #%d)", s.GeneratedAt, s.Seed, s.TrialIndex)
				}
				fmt.Printf("  %s  %s%s\n", b.Name(), b.Range(), status)
			}
			fmt.Println()

			return nil
		},
	}

	return cmd
}
