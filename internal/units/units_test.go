package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isahbella007/whatsapp-first-erp/internal/apperr"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"Bottles", Bottle},
		{"  piece ", Piece},
		{"KGs", Kg},
		{"boxes", Box},
		{"crates", Crate},
		{"units", Each},
		{"ml", Ml},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Normalize("glasses")
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestInferBaseUnitOrder(t *testing.T) {
	tests := []struct {
		name string
		in   Inference
		want Unit
	}{
		{"explicit wins", Inference{Explicit: "Pieces", Conversion: &Conversion{Unit1: "crate", Unit1Quantity: 1, Unit2: "bottle", Unit2Quantity: 12}}, Piece},
		{"conversion second unit", Inference{Conversion: &Conversion{Unit1: "crate", Unit1Quantity: 1, Unit2: "bottles", Unit2Quantity: 12}, PriceUnit: "kg"}, Bottle},
		{"price unit", Inference{PriceUnit: "bottle", QuantityUnit: "pack"}, Bottle},
		{"bulk price falls through to quantity", Inference{PriceUnit: "crate", QuantityUnit: "pieces"}, Piece},
		{"unrecognized price falls through", Inference{PriceUnit: "glass", QuantityUnit: "bag"}, Bag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferBaseUnit("Zobo", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInferBaseUnitNeedsClarification(t *testing.T) {
	_, err := InferBaseUnit("Zobo", Inference{PriceUnit: "crate", QuantityUnit: "carton"})
	req, ok := clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.BaseUnitDefinitionRequired, req.Type)
	assert.Contains(t, req.Prompt, "crate")

	_, err = InferBaseUnit("Zobo", Inference{Explicit: "glass"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func product(base string) *models.Product {
	p := &models.Product{Name: "Zobo Delight"}
	if base != "" {
		p.SetBaseUnit(base)
	}
	return p
}

func TestApplyConversionIsIdempotent(t *testing.T) {
	p := product("piece")
	c := Conversion{Unit1: "crate", Unit1Quantity: 1, Unit2: "pieces", Unit2Quantity: 12}

	require.NoError(t, ApplyConversion(p, c))
	require.NoError(t, ApplyConversion(p, c))
	require.Len(t, p.AlternativeUnits, 1)
	assert.Equal(t, "crate", p.AlternativeUnits[0].UnitName)
	assert.Equal(t, 12.0, p.AlternativeUnits[0].ConversionFactorToBase)

	// base on the left side, replacing the factor
	require.NoError(t, ApplyConversion(p, Conversion{Unit1: "piece", Unit1Quantity: 20, Unit2: "crate", Unit2Quantity: 1}))
	require.Len(t, p.AlternativeUnits, 1)
	assert.Equal(t, 20.0, p.AlternativeUnits[0].ConversionFactorToBase)
}

func TestApplyConversionRejects(t *testing.T) {
	p := product("piece")

	err := ApplyConversion(p, Conversion{Unit1: "crate", Unit1Quantity: 1, Unit2: "carton", Unit2Quantity: 2})
	req, ok := clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.UnitConversionRequired, req.Type)

	assert.ErrorIs(t, ApplyConversion(p, Conversion{Unit1: "crate", Unit1Quantity: 0, Unit2: "piece", Unit2Quantity: 12}), apperr.ErrValidation)
	assert.ErrorIs(t, ApplyConversion(p, Conversion{Unit1: "piece", Unit1Quantity: 1, Unit2: "pieces", Unit2Quantity: 1}), apperr.ErrValidation)

	err = ApplyConversion(product(""), Conversion{Unit1: "crate", Unit1Quantity: 1, Unit2: "piece", Unit2Quantity: 12})
	req, ok = clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.BaseUnitDefinitionRequired, req.Type)
}

func TestCrateOfTwelvePieces(t *testing.T) {
	p := product("piece")
	require.NoError(t, ApplyConversion(p, Conversion{Unit1: "crate", Unit1Quantity: 1, Unit2: "piece", Unit2Quantity: 12}))

	added, err := QuantityToBase(p, 5, "crates")
	require.NoError(t, err)
	assert.Equal(t, 60.0, added)

	added, err = QuantityToBase(p, 2, "crate")
	require.NoError(t, err)
	assert.Equal(t, 24.0, added)
}

func TestQuantityRoundTrip(t *testing.T) {
	p := product("bottle")
	p.UpsertAlternativeUnit("crate", 12)
	p.UpsertAlternativeUnit("pack", 6)

	for _, unit := range []string{"bottle", "crate", "pack", ""} {
		for _, qty := range []float64{1, 2.5, 7, 0.25} {
			base, err := QuantityToBase(p, qty, unit)
			require.NoError(t, err)
			back, err := QuantityFromBase(p, base, unit)
			require.NoError(t, err)
			assert.InDelta(t, qty, back, 1e-9, "%v %s", qty, unit)
		}
	}
}

func TestQuantityToBaseBlocks(t *testing.T) {
	_, err := QuantityToBase(product(""), 10, "bottles")
	req, ok := clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.StockUpdateDeferred, req.Type)
	require.NotNil(t, req.DataNeeded.OriginalQuantity)
	assert.Equal(t, 10.0, *req.DataNeeded.OriginalQuantity)

	_, err = QuantityToBase(product("bottle"), 2, "crate")
	req, ok = clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.UnitConversionRequired, req.Type)
	assert.Equal(t, "bottle", req.DataNeeded.TargetUnit)

	_, err = QuantityToBase(product("bottle"), 2, "glass")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPriceToBase(t *testing.T) {
	p := product("bottle")
	p.UpsertAlternativeUnit("crate", 12)

	price, err := SellingPriceToBase(p, 1000, "bottle")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, price)

	price, err = SellingPriceToBase(p, 12000, "crate")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, price)

	_, err = SellingPriceToBase(product(""), 1000, "bottle")
	req, ok := clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.SellingPriceRequired, req.Type)

	_, err = CostPriceToBase(product(""), 800, "bottle")
	req, ok = clarify.FromError(err)
	require.True(t, ok)
	assert.Equal(t, clarify.PurchasePriceRequired, req.Type)

	_, err = SellingPriceToBase(p, -1, "bottle")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
