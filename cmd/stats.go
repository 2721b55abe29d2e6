package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/normalize"
	"github.com/motorscout/deals-cli/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show top scored deals",
	Long: `Lists scored deals from the store, best first.

Examples:
  # Top 20 deals across all runs
  stats

  # Golden deals only
  stats --class golden

  # Škoda listings with at least 15% discount
  stats --make skoda --min-discount 15`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		class, _ := cmd.Flags().GetString("class")
		carMake, _ := cmd.Flags().GetString("make")
		minDiscount, _ := cmd.Flags().GetFloat64("min-discount")
		runID, _ := cmd.Flags().GetString("run")
		limit, _ := cmd.Flags().GetInt("limit")

		scored, err := st.ListScored(ctx, store.ScoredFilter{
			RunID:       runID,
			Class:       model.DealClass(class),
			Make:        normalize.CanonicalMake(carMake),
			MinDiscount: minDiscount,
			Limit:       limit,
		})
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		if len(scored) == 0 {
			fmt.Fprintln(os.Stderr, "No scored listings found.")
			return nil
		}

		formatScoredList(os.Stdout, scored)
		return nil
	},
}

func formatScoredList(w io.Writer, scored []model.ScoredListing) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tSCORE\tDISCOUNT\tPRICE\tFAIR\tRISK\tTITLE")
	for i := range scored {
		s := &scored[i]
		fmt.Fprintf(tw, "%s\t%.0f\t%.1f%%\t%.0f\t%.0f\t%s\t%s\n",
			s.Class, s.Score, s.Discount,
			s.Listing.Price, s.FairValue,
			s.Risk.Band, truncate(s.Listing.Title, 48))
	}
	tw.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	f := statsCmd.Flags()
	f.String("class", "", "filter by deal class (golden, good, fair, overpriced)")
	f.String("make", "", "filter by normalized make")
	f.Float64("min-discount", 0, "minimum discount percent")
	f.String("run", "", "restrict to a single run ID")
	f.Int("limit", 20, "maximum rows")

	rootCmd.AddCommand(statsCmd)
}
