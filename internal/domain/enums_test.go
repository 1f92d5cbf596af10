package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumTables_CoverEveryValue(t *testing.T) {
	for _, c := range Categories() {
		assert.NotEmpty(t, c.String())
		assert.NotEmpty(t, c.Label())
	}
	for _, o := range Occasions() {
		assert.NotEmpty(t, o.String())
		assert.NotEmpty(t, o.Label())
	}
	for _, r := range RecipientTypes() {
		assert.NotEmpty(t, r.String())
		assert.NotEmpty(t, r.Label())
	}
	for _, s := range Sizes() {
		assert.NotEmpty(t, s.String())
		assert.NotEmpty(t, s.Label())
		assert.True(t, s.Multiplier().IsPositive(), "size %s", s)
	}
}

func TestSizeMultipliers(t *testing.T) {
	tests := []struct {
		size Size
		want string
	}{
		{SizeSmall, "1"},
		{SizeMedium, "1.4"},
		{SizeLarge, "1.8"},
		{SizeExtraLarge, "2.2"},
	}
	for _, tt := range tests {
		t.Run(tt.size.String(), func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(tt.size.Multiplier()))
		})
	}
}

func TestSize_InvalidHasZeroMultiplier(t *testing.T) {
	assert.True(t, Size(99).Multiplier().IsZero())
	assert.Equal(t, "", Size(99).Label())
	assert.False(t, Size(99).Valid())
}

func TestParse_RoundTripsCodes(t *testing.T) {
	for _, o := range Occasions() {
		got, ok := ParseOccasion(o.String())
		require.True(t, ok)
		assert.Equal(t, o, got)
	}
	for _, s := range Sizes() {
		got, ok := ParseSize(s.String())
		require.True(t, ok)
		assert.Equal(t, s, got)
	}

	_, ok := ParseCategory("pastry")
	assert.False(t, ok)
	_, ok = ParseRecipientType("")
	assert.False(t, ok)
}

func TestParse_WireCodes(t *testing.T) {
	o, ok := ParseOccasion("baby-shower")
	require.True(t, ok)
	assert.Equal(t, OccasionBabyShower, o)
	assert.Equal(t, "Baby Shower", o.Label())

	s, ok := ParseSize("xl")
	require.True(t, ok)
	assert.Equal(t, SizeExtraLarge, s)
	assert.Equal(t, `12" (24-30 servings)`, s.Label())
}

func TestEnums_JSON(t *testing.T) {
	type payload struct {
		Category  Category      `json:"category"`
		Occasion  Occasion      `json:"occasion"`
		Recipient RecipientType `json:"recipient"`
		Size      Size          `json:"size"`
	}

	data, err := json.Marshal(payload{CategoryKids, OccasionValentines, RecipientFamily, SizeLarge})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"kids","occasion":"valentines","recipient":"family","size":"large"}`, string(data))

	var got payload
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, SizeLarge, got.Size)
	assert.Equal(t, RecipientFamily, got.Recipient)

	err = json.Unmarshal([]byte(`{"size":"huge"}`), &got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown size "huge"`)
}
