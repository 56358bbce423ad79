package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"astro-readings/internal/apperr"
	"astro-readings/internal/model"
)

// Reading is one product definition: a display name plus a price per
// delivery mode. All prices are EUR.
type Reading struct {
	Key    string
	Name   string
	Prices map[string]decimal.Decimal
}

// Catalog is built once at startup and never mutated afterwards.
type Catalog struct {
	readings map[string]Reading
	currency string
}

func price(euros int64) decimal.Decimal {
	return decimal.NewFromInt(euros)
}

func New() *Catalog {
	readings := []Reading{
		{Key: "natal", Name: "Natal Chart Reading", Prices: map[string]decimal.Decimal{
			model.ModePDF: price(90), model.ModeVideo: price(140),
		}},
		{Key: "synastry", Name: "Synastry / Compatibility Reading", Prices: map[string]decimal.Decimal{
			model.ModePDF: price(110), model.ModeVideo: price(160),
		}},
		{Key: "solar-return", Name: "Solar Return Reading", Prices: map[string]decimal.Decimal{
			model.ModePDF: price(70), model.ModeVideo: price(120),
		}},
		{Key: "career", Name: "Career & Vocation Reading", Prices: map[string]decimal.Decimal{
			model.ModePDF: price(85), model.ModeVideo: price(130),
		}},
	}

	m := make(map[string]Reading, len(readings))
	for _, r := range readings {
		m[r.Key] = r
	}

	return &Catalog{readings: m, currency: "EUR"}
}

func (c *Catalog) Currency() string { return c.currency }

func (c *Catalog) Get(key string) (Reading, bool) {
	r, ok := c.readings[key]
	return r, ok
}

// PriceFor returns the price for a (reading, mode) pair. An unknown reading
// key or a mode outside {pdf, video} is a validation error.
func (c *Catalog) PriceFor(key, mode string) (decimal.Decimal, error) {
	r, ok := c.readings[key]
	if !ok {
		return decimal.Zero, apperr.ValidationErr(fmt.Sprintf("unknown reading %q", key))
	}
	p, ok := r.Prices[mode]
	if !ok {
		return decimal.Zero, apperr.ValidationErr(fmt.Sprintf("invalid mode %q", mode))
	}
	return p, nil
}

// Keys returns the catalog keys in no particular order, for page rendering.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.readings))
	for k := range c.readings {
		keys = append(keys, k)
	}
	return keys
}
