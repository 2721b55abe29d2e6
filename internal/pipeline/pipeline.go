// Package pipeline orchestrates a scoring run: a sequential full-corpus
// phase that builds market statistics, then a parallel per-listing phase
// that values and classifies against them.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/motorscout/deals-cli/internal/config"
	"github.com/motorscout/deals-cli/internal/dealscore"
	"github.com/motorscout/deals-cli/internal/dedupe"
	"github.com/motorscout/deals-cli/internal/history"
	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/normalize"
	"github.com/motorscout/deals-cli/internal/segment"
	"github.com/motorscout/deals-cli/internal/valuation"
)

// defaultWorkers bounds phase-2 parallelism when the config leaves it unset.
const defaultWorkers = 8

// Input is one corpus snapshot plus optional median-price history.
type Input struct {
	Listings []model.Listing
	History  []model.PricePoint
}

// Output is the terminal result of a run.
type Output struct {
	Scored  []model.ScoredListing
	Summary model.RunSummary
}

// Engine runs the two-phase batch computation. It performs no I/O; the
// caller supplies the corpus and persists the result.
type Engine struct {
	cfg    *config.Config
	market *config.MarketData
}

func New(cfg *config.Config, market *config.MarketData) *Engine {
	return &Engine{cfg: cfg, market: market}
}

// Score runs both phases. Phase 1 (normalize, dedupe, segment) is a
// synchronization barrier: no listing is corrected until the statistics are
// complete and read-only. Phase 2 is a pure function per listing and runs
// across a bounded worker pool. Output order follows input order, and the
// whole run is deterministic for a given corpus and configuration, so a
// failed run can simply be retried.
func (e *Engine) Score(ctx context.Context, in Input) (*Output, error) {
	start := time.Now()

	normalized := normalize.Batch(in.Listings)
	records := dedupe.Resolve(normalized)

	corpus := make([]model.Listing, len(records))
	for i, rec := range records {
		corpus[i] = rec.Listing
	}

	idx := segment.Build(corpus, e.cfg.Segment)
	if idx.Empty() {
		return nil, eris.New("pipeline: no usable market statistics in corpus")
	}

	trends := history.NewAnnotator(in.History)
	corrector := valuation.New(e.cfg.Valuation, e.market)
	expert := valuation.NewExpert(e.market, idx.ReferenceYear())
	classifier := dealscore.New(e.cfg.Deal, e.cfg.Liquidity, e.cfg.Risk, e.market)

	zap.L().Info("pipeline: phase 1 complete",
		zap.Int("listings", len(in.Listings)),
		zap.Int("canonical", len(records)),
		zap.Int("segments", idx.Segments()),
		zap.Duration("elapsed", time.Since(start)),
	)

	scoredAt := time.Now().UTC()
	scored := make([]model.ScoredListing, len(records))

	workers := e.cfg.Batch.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scored[i] = e.scoreOne(records[i], idx, trends, corrector, expert, classifier, scoredAt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: phase 2")
	}

	out := &Output{Scored: scored}
	out.Summary = summarize(in, records, idx, scored, start)

	zap.L().Info("pipeline: run complete",
		zap.Int("scored", out.Summary.Scored),
		zap.Int("skipped", out.Summary.Skipped),
		zap.Int("golden", out.Summary.Golden),
		zap.Int("good", out.Summary.Good),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// scoreOne values and classifies a single canonical record. Pure: it reads
// the shared statistics and writes nothing outside its own result.
func (e *Engine) scoreOne(
	rec dedupe.Record,
	idx *segment.Index,
	trends *history.Annotator,
	corrector *valuation.Corrector,
	expert *valuation.Expert,
	classifier *dealscore.Classifier,
	scoredAt time.Time,
) model.ScoredListing {
	l := rec.Listing
	key := segment.KeyFor(&l)
	features, equipLevel := normalize.ExtractEquipment(normalize.Fold(l.Text()))

	s := model.ScoredListing{
		Listing:      l,
		Fingerprint:  rec.Fingerprint,
		CrossRefs:    rec.CrossRefs,
		Tier:         key.Tier,
		EngineBucket: key.Engine,
		Equipment:    equipLevel,
		Features:     features,
		ScoredAt:     scoredAt,
	}

	if l.Price <= 0 || l.Year == 0 {
		s.Class = model.DealUnrated
		s.MatchAccuracy = model.MatchNone
		s.Flags = append(s.Flags, "malformed_input")
		return s
	}

	res, ok := corrector.Correct(&l, key, idx)
	s.MatchAccuracy = res.Accuracy
	if !ok {
		s.Class = model.DealUnrated
		s.Flags = append(s.Flags, "no_segment_data")
		return s
	}

	s.BaseMedian = res.BaseMedian
	s.FairValue = res.FairValue
	s.ExpertValue = expert.Estimate(&l)
	if res.ScamSuspect {
		s.Flags = append(s.Flags, "scam_suspect")
	}

	verdict := classifier.Classify(&l, key.Tier, res.FairValue)
	s.Discount = verdict.Discount
	s.Class = verdict.Class
	s.Score = verdict.Score
	s.Disqualified = verdict.Disqualified

	age := idx.ReferenceYear() - l.Year
	s.Liquidity = classifier.Liquidity(&l, verdict.Discount, age)
	s.Risk = classifier.Risk(&l, res.FairValue, age)
	s.Trend = trends.Trend(l.Make, l.Model, l.Year)

	return s
}

func summarize(in Input, records []dedupe.Record, idx *segment.Index, scored []model.ScoredListing, start time.Time) model.RunSummary {
	sum := model.RunSummary{
		ListingsIn:   len(in.Listings),
		Deduplicated: len(in.Listings) - len(records),
		Segments:     idx.Segments(),
		DurationMs:   time.Since(start).Milliseconds(),
	}
	for i := range scored {
		switch scored[i].Class {
		case model.DealUnrated:
			sum.Skipped++
			continue
		case model.DealGolden:
			sum.Golden++
		case model.DealGood:
			sum.Good++
		case model.DealDisqualified:
			sum.Disqualified++
		}
		sum.Scored++
	}
	return sum
}
