package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
	"github.com/jakechorley/call-rota/pkg/core/services"
	"github.com/jakechorley/call-rota/pkg/csvio"
)

// inputFiles are the CSV inputs shared by generate and validate
type inputFiles struct {
	residents     string
	leave         string
	soft          string
	holidays      string
	previousTail  string
	previousStats []string
}

func (in *inputFiles) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.residents, "residents", "", "Roster CSV (Resident, PGY, Transition Date, Transition PGY)")
	cmd.Flags().StringVar(&in.leave, "leave", "", "Leave CSV (Resident, Start Date, End Date)")
	cmd.Flags().StringVar(&in.soft, "soft", "", "Soft constraint CSV (Resident, Start Date, End Date)")
	cmd.Flags().StringVar(&in.holidays, "holidays", "", "Holiday CSV (Date, Call, Backup)")
	cmd.Flags().StringVar(&in.previousTail, "previous-tail", "", "Previous block's last days CSV (Date, Call, Backup)")
	cmd.Flags().StringSliceVar(&in.previousStats, "previous-stats", nil, "Statistics CSVs of earlier blocks, summed as carry-in")
}

type loadedInputs struct {
	residents     []model.Resident
	leave         []model.LeaveRequest
	soft          []model.SoftConstraint
	holidays      []model.FixedAssignment
	previousTail  []model.FixedAssignment
	previousStats []callscheduler.ResidentStatistics
}

func (in *inputFiles) load() (*loadedInputs, error) {
	var out loadedInputs
	var err error

	if out.residents, err = readFile(in.residents, csvio.ReadResidents); err != nil {
		return nil, err
	}
	if out.leave, err = readFile(in.leave, csvio.ReadLeave); err != nil {
		return nil, err
	}
	if out.soft, err = readFile(in.soft, csvio.ReadSoftConstraints); err != nil {
		return nil, err
	}
	if out.holidays, err = readFile(in.holidays, csvio.ReadFixedAssignments); err != nil {
		return nil, err
	}
	if out.previousTail, err = readFile(in.previousTail, csvio.ReadFixedAssignments); err != nil {
		return nil, err
	}

	if out.previousStats, err = readStatistics(in.previousStats); err != nil {
		return nil, err
	}

	return &out, nil
}

// readStatistics reads every statistics file in paths. No paths yields nil.
func readStatistics(paths []string) ([]callscheduler.ResidentStatistics, error) {
	var out []callscheduler.ResidentStatistics
	for _, path := range paths {
		stats, err := readFile(path, csvio.ReadStatistics)
		if err != nil {
			return nil, err
		}
		out = append(out, stats...)
	}
	return out, nil
}

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	var (
		inputs      inputFiles
		blockNumber int
		year        int
		scheduleOut string
		statsOut    string
		calendarOut string
		persist     bool
		publish     bool
		seed        uint64
		trials      int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the call schedule for a block",
		Long: `Generate the call schedule for one block of the academic year.

Inputs are read from CSV files. When a database is configured, the roster, the previous
block's last days and the carry-in counts are read from it if not given as files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = app.Cfg.AcademicYearStart
			}
			block, err := model.BlockFor(year, blockNumber)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("seed") {
				app.Cfg.Scheduler.Seed = seed
			}
			if cmd.Flags().Changed("trials") {
				app.Cfg.Scheduler.Trials = trials
			}

			app.Logger.Debug("generate command",
				zap.Int("year", year),
				zap.Int("block", blockNumber),
				zap.Bool("persist", persist))

			loaded, err := inputs.load()
			if err != nil {
				return err
			}

			database, err := app.Database()
			if err != nil {
				return err
			}
			var store services.GenerateScheduleStore
			if database != nil {
				store = database
			}

			result, err := services.GenerateSchedule(app.Ctx, store, services.GenerateScheduleInput{
				Block:           block,
				Residents:       loaded.residents,
				Leave:           loaded.leave,
				SoftConstraints: loaded.soft,
				Holidays:        loaded.holidays,
				PreviousTail:    loaded.previousTail,
				Persist:         persist,

				PreviousStatistics: loaded.previousStats,
			}, app.Cfg, app.Logger)
			if err != nil {
				var infeasible *callscheduler.InfeasibleError
				if errors.As(err, &infeasible) {
					fmt.Printf("\n❌ No feasible schedule after %d trials.\n", infeasible.TrialsAttempted)
					for _, f := range infeasible.FailureDates {
						fmt.Printf("  %s failed %d times\n", f.Date.Format("Mon 2006-01-02"), f.Count)
					}
					fmt.Println()
				}
				return err
			}

			rows := result.Schedule.Rows
			if err := writeFile(scheduleOut, func(w io.Writer) error { return csvio.WriteSchedule(w, rows) }); err != nil {
				return err
			}
			if err := writeFile(statsOut, func(w io.Writer) error { return csvio.WriteStatistics(w, result.RunningTotals) }); err != nil {
				return err
			}
			if calendarOut != "" {
				if err := writeFile(calendarOut, func(w io.Writer) error { return services.ExportCalendar(w, rows, app.Logger) }); err != nil {
					return err
				}
			}

			s := result.Schedule
			fmt.Printf("\n✅ %s generated (%s)\n\n", block.Name(), block.Range())
			fmt.Printf("Seed:              %d\n", s.Seed)
			fmt.Printf("Trials:            %d succeeded of %d attempted\n", s.TrialsSucceeded, s.TrialsAttempted)
			fmt.Printf("Winning trial:     #%d (fairness %.3f, %d soft violations)\n", s.Best.Index, s.Best.Fairness, s.Best.Violations)
			fmt.Printf("Soft constraints:  %d of %d honoured\n", s.SoftConstraints.Fulfilled, s.SoftConstraints.Total)
			fmt.Printf("Schedule:          %s\n", scheduleOut)
			fmt.Printf("Statistics:        %s\n", statsOut)
			if calendarOut != "" {
				fmt.Printf("Calendar:          %s\n", calendarOut)
			}
			if result.BlockID != "" {
				fmt.Printf("Saved as block:    %s\n", result.BlockID)
			}
			fmt.Println()

			if len(s.ValidationErrors) > 0 {
				fmt.Printf("⚠️  %d validation errors:\n", len(s.ValidationErrors))
				for _, e := range s.ValidationErrors {
					fmt.Printf("  %s\n", e)
				}
				fmt.Println()
			}

			printStatistics(result.RunningTotals)

			if publish {
				sheets, err := app.Sheets()
				if err != nil {
					return err
				}
				tab, err := services.PublishSchedule(sheets, app.Cfg, rows, "", app.Logger)
				if err != nil {
					return err
				}
				fmt.Printf("✅ Published to tab %q\n\n", tab)
			}

			return nil
		},
	}

	inputs.register(cmd)
	cmd.Flags().IntVarP(&blockNumber, "block", "b", 0, "Block number (1-3)")
	cmd.Flags().IntVar(&year, "year", 0, "Academic year start (defaults to academicYearStart in the config)")
	cmd.Flags().StringVarP(&scheduleOut, "out", "o", "generated_schedule.csv", "Schedule CSV output")
	cmd.Flags().StringVar(&statsOut, "stats", "call_statistics.csv", "Running statistics CSV output")
	cmd.Flags().StringVar(&calendarOut, "calendar", "", "Also write a calendar workbook (.xlsx)")
	cmd.Flags().BoolVar(&persist, "persist", false, "Save the roster and schedule to the database")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the schedule to Google Sheets")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Override the configured seed")
	cmd.Flags().IntVar(&trials, "trials", 0, "Override the configured number of trials")
	_ = cmd.MarkFlagRequired("block")

	return cmd
}

func printStatistics(stats []callscheduler.ResidentStatistics) {
	fmt.Printf("%-20s  %3s  %7s  %7s  %8s  %6s  %5s\n", "Resident", "PGY", "Weekday", "Fridays", "Saturday", "Sunday", "Total")
	fmt.Println("--------------------  ---  -------  -------  --------  ------  -----")
	for _, s := range stats {
		c := s.Counts
		fmt.Printf("%-20s  %3d  %7d  %7d  %8d  %6d  %5d\n", s.Resident, s.PGY, c.Weekday, c.Fridays, c.Saturday, c.Sunday, c.Total)
	}
	fmt.Println()
}
