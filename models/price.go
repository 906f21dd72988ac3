package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Unavailable is the sentinel written to the persisted documents whenever a
// value could not be obtained. It is deliberately distinct from a genuine
// zero: a free game serializes as 0, a failed parse as "Indisponível".
const Unavailable = "Indisponível"

// Price is a monetary value (or discount fraction) that may be explicitly
// unavailable. The zero value is an unavailable price.
type Price struct {
	Value     decimal.Decimal
	Available bool
}

// NewPrice returns an available price with the given value.
func NewPrice(v decimal.Decimal) Price {
	return Price{Value: v, Available: true}
}

// ZeroPrice returns an available price of exactly zero (a free game, not a
// parse failure).
func ZeroPrice() Price {
	return Price{Value: decimal.Zero, Available: true}
}

// UnavailablePrice returns the unavailable sentinel.
func UnavailablePrice() Price {
	return Price{}
}

// Equal reports whether two prices have the same availability and value.
func (p Price) Equal(o Price) bool {
	if p.Available != o.Available {
		return false
	}
	if !p.Available {
		return true
	}
	return p.Value.Equal(o.Value)
}

func (p Price) String() string {
	if !p.Available {
		return Unavailable
	}
	return p.Value.String()
}

// MarshalJSON writes the numeric value, or the sentinel string when the
// price is unavailable.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Available {
		return json.Marshal(Unavailable)
	}
	return []byte(p.Value.String()), nil
}

// UnmarshalJSON accepts a number, a quoted number, or the sentinel string.
func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == Unavailable {
			*p = Price{}
			return nil
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("price: parse %q: %w", s, err)
		}
		*p = NewPrice(v)
		return nil
	}

	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("price: parse %s: %w", data, err)
	}
	*p = NewPrice(v)
	return nil
}

// PriceTriple is the canonical (initial, discount, final) pricing of an
// offer. Discount is a fraction in [0,1], not a percentage.
type PriceTriple struct {
	Initial  Price `json:"initial_price"`
	Discount Price `json:"discount"`
	Final    Price `json:"final_price"`
}

// NewPriceTriple builds an available triple from the three values.
func NewPriceTriple(initial, discount, final decimal.Decimal) PriceTriple {
	return PriceTriple{
		Initial:  NewPrice(initial),
		Discount: NewPrice(discount),
		Final:    NewPrice(final),
	}
}

// ZeroTriple is the all-zero triple: a legitimately free offer.
func ZeroTriple() PriceTriple {
	return PriceTriple{Initial: ZeroPrice(), Discount: ZeroPrice(), Final: ZeroPrice()}
}

// UnavailableTriple marks pricing that could not be determined at all.
func UnavailableTriple() PriceTriple {
	return PriceTriple{}
}

// Equal reports field-wise equality of two triples.
func (t PriceTriple) Equal(o PriceTriple) bool {
	return t.Initial.Equal(o.Initial) && t.Discount.Equal(o.Discount) && t.Final.Equal(o.Final)
}
