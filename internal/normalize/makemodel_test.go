package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/motorscout/deals-cli/internal/model"
)

func TestExtractMakeModel(t *testing.T) {
	tests := []struct {
		title     string
		wantMake  string
		wantModel string
	}{
		{"Škoda Octavia 2.0 TDI DSG", "Škoda", "Octavia"},
		{"skoda superb 2019", "Škoda", "Superb"},
		{"VW Golf 7 1.5 TSI", "Volkswagen", "Golf"},
		{"VW Golf GTI Performance", "Volkswagen", "Golf GTI"},
		{"Škoda Octavia RS 245", "Škoda", "Octavia RS"},
		{"BMW rad 5 530d xDrive", "BMW", "Rad 5"},
		{"BMW X5 3.0d", "BMW", "X5"},
		{"Tesla Model 3 Long Range", "Tesla", "Model 3"},
		{"Hyundai Santa Fe 2.2 CRDi", "Hyundai", "Santa Fe"},
		{"Seat Leon Cupra 2.0 TSI", "Seat", "Leon Cupra"},
		{"Predám pekné auto", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			gotMake, gotModel := ExtractMakeModel(tt.title)
			assert.Equal(t, tt.wantMake, gotMake)
			assert.Equal(t, tt.wantModel, gotModel)
		})
	}
}

func TestExtractEquipment(t *testing.T) {
	folded := Fold("Full LED, navigácia, koža, panoráma, ťažné zariadenie")
	features, level := ExtractEquipment(folded)
	assert.Equal(t, model.EquipFull, level)
	assert.Len(t, features, 5)
	assert.Contains(t, features, "leather")

	_, level = ExtractEquipment(Fold("navigácia, kamera"))
	assert.Equal(t, model.EquipMedium, level)

	_, level = ExtractEquipment(Fold("pekné auto bez výbavy"))
	assert.Equal(t, model.EquipBasic, level)
}

func TestEngineBucket(t *testing.T) {
	assert.Equal(t, model.EngineUnknown, EngineBucket(0))
	assert.Equal(t, model.EngineBase, EngineBucket(66))
	assert.Equal(t, model.EngineMid, EngineBucket(110))
	assert.Equal(t, model.EngineMidHigh, EngineBucket(140))
	assert.Equal(t, model.EngineHigh, EngineBucket(180))
	assert.Equal(t, model.EngineExtreme, EngineBucket(250))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "skoda poskodene", Fold("Škoda Poškodené"))
}

func TestCanonicalMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"skoda", "Škoda"},
		{"SKODA", "Škoda"},
		{"Škoda", "Škoda"},
		{"vw", "Volkswagen"},
		{"mercedes", "Mercedes-Benz"},
		{"citroën", "Citroën"},
		{" bmw ", "BMW"},
		{"wartburg", "wartburg"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalMake(tt.in), tt.in)
	}
}
