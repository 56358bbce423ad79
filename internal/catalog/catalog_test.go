package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astro-readings/internal/apperr"
)

func TestPriceForValidPairs(t *testing.T) {
	cat := New()

	cases := []struct {
		reading string
		mode    string
		want    string
	}{
		{"natal", "pdf", "90"},
		{"natal", "video", "140"},
		{"synastry", "pdf", "110"},
		{"synastry", "video", "160"},
		{"solar-return", "pdf", "70"},
		{"solar-return", "video", "120"},
		{"career", "pdf", "85"},
		{"career", "video", "130"},
	}

	for _, tc := range cases {
		p, err := cat.PriceFor(tc.reading, tc.mode)
		require.NoError(t, err, "%s/%s", tc.reading, tc.mode)
		assert.Equal(t, tc.want, p.String())
		assert.True(t, p.IsPositive())
	}
}

func TestPriceForInvalid(t *testing.T) {
	cat := New()

	_, err := cat.PriceFor("tarot", "pdf")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = cat.PriceFor("natal", "hologram")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = cat.PriceFor("", "")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "EUR", New().Currency())
}
