package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/model"
	"github.com/motorscout/deals-cli/internal/store"
)

var (
	exportOutPath string
	exportRunID   string
	exportClass   string
	exportLimit   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scored listings to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		scored, err := st.ListScored(ctx, store.ScoredFilter{
			RunID: exportRunID,
			Class: model.DealClass(exportClass),
			Limit: exportLimit,
		})
		if err != nil {
			return eris.Wrap(err, "export: load scored")
		}
		if len(scored) == 0 {
			return eris.New("export: no scored listings match the filter")
		}

		if err := writeWorkbook(exportOutPath, scored); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.Int("rows", len(scored)),
			zap.String("file", exportOutPath),
		)
		return nil
	},
}

func writeWorkbook(path string, scored []model.ScoredListing) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Deals")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{
		"Class", "Score", "Discount %", "Price", "Fair Value", "Expert Value",
		"Make", "Model", "Year", "Mileage", "Fuel", "Tier",
		"Risk", "Risk Signals", "Liquidity", "Trend", "Source", "URL", "Title",
	} {
		header.AddCell().Value = h
	}

	for i := range scored {
		s := &scored[i]
		row := sheet.AddRow()
		row.AddCell().Value = string(s.Class)
		row.AddCell().SetFloat(s.Score)
		row.AddCell().SetFloat(s.Discount)
		row.AddCell().SetFloat(s.Listing.Price)
		row.AddCell().SetFloat(s.FairValue)
		row.AddCell().SetFloat(s.ExpertValue)
		row.AddCell().Value = s.Listing.Make
		row.AddCell().Value = s.Listing.Model
		row.AddCell().SetInt(s.Listing.Year)
		row.AddCell().SetInt(s.Listing.Mileage)
		row.AddCell().Value = string(s.Listing.Fuel)
		row.AddCell().Value = string(s.Tier)
		row.AddCell().Value = string(s.Risk.Band)
		row.AddCell().Value = strings.Join(s.Risk.Signals, ", ")
		row.AddCell().Value = s.Liquidity.Label
		row.AddCell().Value = string(s.Trend)
		row.AddCell().Value = s.Listing.Source
		row.AddCell().Value = s.Listing.URL
		row.AddCell().Value = s.Listing.Title
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportOutPath, "output", "deals.xlsx", "output file path")
	f.StringVar(&exportRunID, "run", "", "restrict to a single run ID")
	f.StringVar(&exportClass, "class", "", "filter by deal class")
	f.IntVar(&exportLimit, "limit", 0, "maximum rows (0=store default)")

	rootCmd.AddCommand(exportCmd)
}
