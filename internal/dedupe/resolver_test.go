package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motorscout/deals-cli/internal/model"
)

func listing(id, vin string, price float64) model.Listing {
	return model.Listing{
		ID:       id,
		Source:   "src-" + id,
		URL:      "https://example.com/" + id,
		Make:     "Škoda",
		Model:    "Octavia",
		Year:     2018,
		Mileage:  150000,
		Price:    price,
		VIN:      vin,
		Location: "Bratislava, Staré Mesto",
	}
}

func TestFingerprint_VINAuthoritative(t *testing.T) {
	a := listing("a", "tmbJG7ne0j0123456", 9000)
	b := listing("b", "TMBJG7NE0J0123456", 9200)
	// Different prices, same VIN: identical case-normalized fingerprint.
	assert.Equal(t, Fingerprint(&a), Fingerprint(&b))
	assert.Equal(t, "vin:TMBJG7NE0J0123456", Fingerprint(&a))
}

func TestFingerprint_FuzzyTolerance(t *testing.T) {
	a := listing("a", "", 9010)
	b := listing("b", "", 8990)
	b.Mileage = 150400
	b.Location = "Bratislava"
	assert.Equal(t, Fingerprint(&a), Fingerprint(&b))

	c := listing("c", "", 9600)
	assert.NotEqual(t, Fingerprint(&a), Fingerprint(&c))
}

func TestFingerprint_UnknownsNeverMerge(t *testing.T) {
	a := model.Listing{ID: "a", Title: "Predám auto", Price: 5000}
	b := model.Listing{ID: "b", Title: "Predám auto", Price: 5000}
	assert.Empty(t, Fingerprint(&a))

	records := Resolve([]model.Listing{a, b})
	assert.Len(t, records, 2)
	assert.Equal(t, "raw:a", records[0].Fingerprint)
	assert.Equal(t, "raw:b", records[1].Fingerprint)
}

func TestResolve_CheaperWinsWithCrossRef(t *testing.T) {
	a := listing("a", "TMBJG7NE0J0123456", 9200)
	b := listing("b", "TMBJG7NE0J0123456", 9000)

	records := Resolve([]model.Listing{a, b})
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "b", rec.Listing.ID)
	require.Len(t, rec.CrossRefs, 1)
	assert.Equal(t, "src-a", rec.CrossRefs[0].Source)
	assert.Equal(t, 9200.0, rec.CrossRefs[0].Price)
}

func TestResolve_TieKeepsFirstSeen(t *testing.T) {
	a := listing("a", "TMBJG7NE0J0123456", 9000)
	b := listing("b", "TMBJG7NE0J0123456", 9000)

	records := Resolve([]model.Listing{a, b})
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Listing.ID)
	require.Len(t, records[0].CrossRefs, 1)
	assert.Equal(t, "src-b", records[0].CrossRefs[0].Source)
}
