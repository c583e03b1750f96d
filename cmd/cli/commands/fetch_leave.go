package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jakechorley/call-rota/pkg/core/model"
	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/csvio"
	"github.com/jakechorley/call-rota/pkg/db"
)

// FetchLeaveCmd creates the fetch-leave command
func FetchLeaveCmd(app *AppContext) *cobra.Command {
	var (
		residentsPath string
		year          int
		leaveOut      string
		softOut       string
	)

	cmd := &cobra.Command{
		Use:   "fetch-leave",
		Short: "Import leave requests from Gmail",
		Long: `Read leave-request emails under the configured label, match the names to the roster and
write the hard leave and soft preferences as CSV files for generate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			residents, err := readFile(residentsPath, csvio.ReadResidents)
			if err != nil {
				return err
			}
			if len(residents) == 0 {
				if year == 0 {
					year = app.Cfg.AcademicYearStart
				}
				residents, err = storedRoster(app, year)
				if err != nil {
					return err
				}
			}

			gmail, err := app.Gmail()
			if err != nil {
				return err
			}

			result, err := services.FetchLeaveRequests(app.Ctx, gmail, residents, app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			if err := writeFile(leaveOut, func(w io.Writer) error { return csvio.WriteLeave(w, result.Leave) }); err != nil {
				return err
			}
			if err := writeFile(softOut, func(w io.Writer) error { return csvio.WriteSoftConstraints(w, result.SoftConstraints) }); err != nil {
				return err
			}

			fmt.Printf("\n✅ Read %d messages\n\n", result.MessagesRead)
			fmt.Printf("Leave:             %d  (%s)\n", len(result.Leave), leaveOut)
			fmt.Printf("Soft constraints:  %d  (%s)\n\n", len(result.SoftConstraints), softOut)

			if len(result.Unmatched) > 0 {
				fmt.Printf("⚠️  Names not on the roster:\n")
				for _, name := range result.Unmatched {
					fmt.Printf("  %s\n", name)
				}
				fmt.Println()
			}
			if len(result.Skipped) > 0 {
				fmt.Printf("⚠️  Skipped:\n")
				for _, e := range result.Skipped {
					fmt.Printf("  %v\n", e)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&residentsPath, "residents", "", "Roster CSV (defaults to the stored roster)")
	cmd.Flags().IntVar(&year, "year", 0, "Academic year of the stored roster")
	cmd.Flags().StringVar(&leaveOut, "leave-out", "leave.csv", "Leave CSV output")
	cmd.Flags().StringVar(&softOut, "soft-out", "soft_constraints.csv", "Soft constraint CSV output")

	return cmd
}

func storedRoster(app *AppContext, year int) ([]model.Resident, error) {
	database, err := app.Database()
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, errors.New("no --residents file given and no databaseURL configured")
	}

	records, err := database.GetRoster(app.Ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no roster stored for academic year %d", year)
	}
	return db.ResidentsToModel(records)
}
