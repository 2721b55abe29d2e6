package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/model"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON listings dump into the store",
	Long:  "Reads a JSON array of listing snapshots (the scraper export format) and upserts them keyed by listing ID.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		listings, err := readListingsFile(importFilePath)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertListings(ctx, listings)
		if err != nil {
			return eris.Wrap(err, "import listings")
		}

		zap.L().Info("import complete",
			zap.Int("read", len(listings)),
			zap.Int("upserted", n),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func readListingsFile(path string) ([]model.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read listings file %s", path)
	}

	var listings []model.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, eris.Wrapf(err, "decode listings file %s", path)
	}
	if len(listings) == 0 {
		return nil, eris.Errorf("listings file %s is empty", path)
	}
	return listings, nil
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to JSON listings file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
