package roadchain

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/liftedinit/roadchain/internal/computus"
)

const dateLayout = "2006-01-02"

// now is replaced in tests.
var now = time.Now

var easterCmd = &cobra.Command{
	Use:   "easter [year]",
	Short: "Compute the date of Easter",
	Long: `Compute Western and Orthodox Easter for a year, the current one by default,
and the movable feasts scheduled from it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		today := now()
		year := today.Year()
		if len(args) == 1 {
			y, err := strconv.Atoi(args[0])
			if err != nil || y < 1583 {
				return fmt.Errorf("invalid year: %s. The Gregorian calendar starts in 1583", args[0])
			}
			year = y
		}

		out := cmd.OutOrStdout()
		easter := computus.Gregorian(year)
		julian, orthodox := computus.Julian(year)
		fmt.Fprintf(out, "Easter %d:          %s\n", year, easter.Format("Monday, January 2"))
		fmt.Fprintf(out, "Orthodox Easter %d: %s (Julian %s)\n", year, orthodox.Format("Monday, January 2"), julian.Format("January 2"))
		if year == today.Year() {
			fmt.Fprintf(out, "Days until Easter:  %d\n", computus.DaysUntil(today))
		}

		fmt.Fprintln(out)
		for _, f := range computus.Feasts {
			fmt.Fprintf(out, "  %-16s %s\n", f.Name, computus.FeastDate(f, year).Format(dateLayout))
		}

		if date := viper.GetString("facts"); date != "" {
			t, err := time.Parse(dateLayout, date)
			if err != nil {
				return errors.WithMessage(err, "invalid --facts date")
			}
			printFacts(cmd, computus.FactsFor(t))
		}
		return nil
	},
}

func printFacts(cmd *cobra.Command, f computus.Facts) {
	out := cmd.OutOrStdout()
	when := "after"
	if f.DaysFromEaster < 0 {
		when = "before"
	}
	days := f.DaysFromEaster
	if days < 0 {
		days = -days
	}

	fmt.Fprintf(out, "\n%s\n", f.Date.Format("January 2, 2006"))
	fmt.Fprintf(out, "  Easter:           %s\n", f.Easter.Format("January 2, 2006"))
	fmt.Fprintf(out, "  Days from Easter: %d (%s)\n", days, when)
	fmt.Fprintf(out, "  Day of year:      %d\n", f.DayOfYear)
	fmt.Fprintf(out, "  ISO week:         %d\n", f.ISOWeek)
	fmt.Fprintf(out, "  Golden number:    %d\n", f.GoldenNumber)
	fmt.Fprintf(out, "  Dominical letter: %s\n", f.DominicalLetter)
	fmt.Fprintf(out, "  Epact:            %d\n", f.Epact)
}

func init() {
	easterCmd.Flags().String("facts", "", "Also print the calendar facts of a date (YYYY-MM-DD)")

	if err := viper.BindPFlags(easterCmd.Flags()); err != nil {
		slog.Error("Failed to bind easterCmd flags", "error", err)
	}
}
