package dedupe

import (
	"go.uber.org/zap"

	"github.com/motorscout/deals-cli/internal/model"
)

// Record is a canonical listing with its identity key and any cross-source
// duplicates folded into it.
type Record struct {
	Listing     model.Listing
	Fingerprint string
	CrossRefs   []model.CrossRef
}

// Resolve deduplicates a corpus. When two listings share a fingerprint the
// cheaper one stays canonical and the other is attached as a cross-reference;
// ties keep the first seen. Listings that cannot be fingerprinted are kept
// under an identity of their own, since merging unknowns risks collapsing
// unrelated vehicles. Input order determines output order, so the result is
// deterministic for a given corpus.
func Resolve(listings []model.Listing) []Record {
	index := make(map[string]int)
	var records []Record
	duplicates := 0

	for _, l := range listings {
		fp := Fingerprint(&l)
		if fp == "" {
			records = append(records, Record{Listing: l, Fingerprint: "raw:" + l.ID})
			continue
		}

		at, seen := index[fp]
		if !seen {
			index[fp] = len(records)
			records = append(records, Record{Listing: l, Fingerprint: fp})
			continue
		}

		duplicates++
		existing := &records[at]
		if l.Price < existing.Listing.Price {
			existing.CrossRefs = append(existing.CrossRefs, model.CrossRef{
				Source: existing.Listing.Source,
				URL:    existing.Listing.URL,
				Price:  existing.Listing.Price,
			})
			existing.Listing = l
		} else {
			existing.CrossRefs = append(existing.CrossRefs, model.CrossRef{
				Source: l.Source,
				URL:    l.URL,
				Price:  l.Price,
			})
		}
	}

	zap.L().Info("dedupe: corpus resolved",
		zap.Int("listings", len(listings)),
		zap.Int("canonical", len(records)),
		zap.Int("duplicates", duplicates),
	)
	return records
}
