package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/alert"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/pipeline"
	"github.com/motorscout/deals-cli/internal/store"
	"github.com/motorscout/deals-cli/pkg/inspector"
	"github.com/motorscout/deals-cli/pkg/telegram"
)

var (
	scoreInputPath string
	scoreLimit     int
	scoreNoAlert   bool
	scoreNoInspect bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run a scoring batch over the stored corpus",
	Long: `Runs the full two-phase batch: normalization, deduplication, market
segmentation, fair-value correction, and deal classification.

Listings come from the store by default; --input scores a JSON file
instead (the file still gets the stored price history for trends).

Examples:
  # Score everything in the store
  score

  # Score a scraper dump without importing it first
  score --input dump.json

  # Score quietly: no Telegram alerts, no AI inspection
  score --no-alert --no-inspect`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.StringVar(&scoreInputPath, "input", "", "score a JSON listings file instead of the store")
	f.IntVar(&scoreLimit, "limit", 0, "maximum listings to load from the store (0=all)")
	f.BoolVar(&scoreNoAlert, "no-alert", false, "skip Telegram alerts for golden deals")
	f.BoolVar(&scoreNoInspect, "no-inspect", false, "skip LLM inspection of top deals")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	listings, err := loadCorpus(ctx, st)
	if err != nil {
		return err
	}

	history, err := st.ListPricePoints(ctx)
	if err != nil {
		return eris.Wrap(err, "score: load price history")
	}

	run, err := st.CreateRun(ctx)
	if err != nil {
		return eris.Wrap(err, "score: create run")
	}
	if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusScoring); err != nil {
		return eris.Wrap(err, "score: mark run scoring")
	}

	engine := pipeline.New(cfg, loadMarket())
	out, err := engine.Score(ctx, pipeline.Input{Listings: listings, History: history})
	if err != nil {
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
		return eris.Wrap(err, "score: run batch")
	}

	if err := st.SaveScored(ctx, run.ID, out.Scored); err != nil {
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
		return eris.Wrap(err, "score: persist results")
	}
	if err := st.AppendPricePoints(ctx, medianPoints(out.Scored)); err != nil {
		return eris.Wrap(err, "score: append price history")
	}
	if err := st.CompleteRun(ctx, run.ID, &out.Summary); err != nil {
		return eris.Wrap(err, "score: complete run")
	}

	printSummary(run.ID, out)

	if cfg.Alert.Enabled && !scoreNoAlert {
		if err := sendAlerts(ctx, st, out.Scored); err != nil {
			zap.L().Warn("score: alerts incomplete", zap.Error(err))
		}
	}

	if cfg.Inspector.Enabled && !scoreNoInspect {
		if err := inspectTopDeals(ctx, st, out.Scored); err != nil {
			zap.L().Warn("score: inspection incomplete", zap.Error(err))
		}
	}

	return nil
}

func loadCorpus(ctx context.Context, st store.Store) ([]model.Listing, error) {
	if scoreInputPath != "" {
		return readListingsFile(scoreInputPath)
	}

	limit := scoreLimit
	if limit <= 0 {
		limit = 1_000_000
	}
	listings, err := st.ListListings(ctx, limit, 0)
	if err != nil {
		return nil, eris.Wrap(err, "score: load listings")
	}
	if len(listings) == 0 {
		return nil, eris.New("score: store has no listings, run import first")
	}
	return listings, nil
}

// medianPoints extracts one price-history observation per make/model/year
// cohort seen in this run.
func medianPoints(scored []model.ScoredListing) []model.PricePoint {
	now := time.Now().UTC()
	seen := make(map[string]bool)
	var points []model.PricePoint
	for i := range scored {
		s := &scored[i]
		if s.BaseMedian <= 0 || s.Listing.Make == "" || s.Listing.Model == "" {
			continue
		}
		key := fmt.Sprintf("%s|%s|%d", s.Listing.Make, s.Listing.Model, s.Listing.Year)
		if seen[key] {
			continue
		}
		seen[key] = true
		points = append(points, model.PricePoint{
			Make:       s.Listing.Make,
			Model:      s.Listing.Model,
			Year:       s.Listing.Year,
			Median:     s.BaseMedian,
			ObservedAt: now,
		})
	}
	return points
}

func sendAlerts(ctx context.Context, st store.Store, scored []model.ScoredListing) error {
	if cfg.Alert.TelegramToken == "" || cfg.Alert.TelegramChat == "" {
		return eris.New("alerts enabled but telegram token or chat is missing")
	}

	client := telegram.NewClient(cfg.Alert.TelegramToken)
	sent, err := alert.New(st, client, cfg.Alert.TelegramChat).Notify(ctx, scored)
	if sent > 0 {
		fmt.Printf("Sent %d golden deal alert(s).\n", sent)
	}
	return err
}

// inspectTopDeals sends the best-scoring deals to the LLM inspector and
// attaches the verdicts to the stored results.
func inspectTopDeals(ctx context.Context, st store.Store, scored []model.ScoredListing) error {
	if cfg.Inspector.APIKey == "" {
		return eris.New("inspector enabled but api key is missing")
	}

	insp := inspector.New(
		inspector.NewClient(cfg.Inspector.APIKey),
		cfg.Inspector.Model,
		cfg.Inspector.MaxDeals,
	)

	deals := make([]*model.ScoredListing, 0, len(scored))
	for i := range scored {
		if scored[i].IsDeal() {
			deals = append(deals, &scored[i])
		}
	}
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].Score != deals[j].Score {
			return deals[i].Score > deals[j].Score
		}
		return deals[i].Discount > deals[j].Discount
	})
	if len(deals) > insp.MaxDeals() {
		deals = deals[:insp.MaxDeals()]
	}

	var firstErr error
	for _, d := range deals {
		result, err := insp.Inspect(ctx, d)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		verdict, err := json.Marshal(result)
		if err != nil {
			continue
		}
		if err := st.SetAIVerdict(ctx, d.Listing.ID, string(verdict)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func printSummary(runID string, out *pipeline.Output) {
	s := out.Summary
	fmt.Fprintf(os.Stdout, "Run %s complete in %dms\n", runID, s.DurationMs)
	fmt.Fprintf(os.Stdout, "  listings in:  %d (%d duplicates merged)\n", s.ListingsIn, s.Deduplicated)
	fmt.Fprintf(os.Stdout, "  scored:       %d (%d skipped)\n", s.Scored, s.Skipped)
	fmt.Fprintf(os.Stdout, "  segments:     %d\n", s.Segments)
	fmt.Fprintf(os.Stdout, "  golden:       %d\n", s.Golden)
	fmt.Fprintf(os.Stdout, "  good:         %d\n", s.Good)
	fmt.Fprintf(os.Stdout, "  disqualified: %d\n", s.Disqualified)
}
