package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lborgatow/games-scraping/models"
)

func triple(initial, discount, final string) models.PriceTriple {
	return models.NewPriceTriple(
		decimal.RequireFromString(initial),
		decimal.RequireFromString(discount),
		decimal.RequireFromString(final),
	)
}

func TestParseTriple(t *testing.T) {
	tests := []struct {
		name        string
		rawPrice    string
		rawDiscount string
		want        models.PriceTriple
	}{
		{"plain price", "R$19,99", "", triple("19.99", "0", "19.99")},
		{"discounted price", "R$9,99", "-50%", triple("19.98", "0.5", "9.99")},
		{"thousands separator", "R$1.019,99", "", triple("1019.99", "0", "1019.99")},
		{"free marker", "Grátis", "", models.ZeroTriple()},
		{"free marker english", "FREE", "", models.ZeroTriple()},
		{"unparseable", "em breve", "", models.UnavailableTriple()},
		{"empty", "", "", models.UnavailableTriple()},
		{"unavailable sentinel", models.Unavailable, "", models.UnavailableTriple()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTriple(tt.rawPrice, tt.rawDiscount)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTriple(%q, %q) = %v/%v/%v; want %v/%v/%v",
					tt.rawPrice, tt.rawDiscount,
					got.Initial, got.Discount, got.Final,
					tt.want.Initial, tt.want.Discount, tt.want.Final)
			}
		})
	}
}

func TestParseTripleRecomputesInitial(t *testing.T) {
	// round(9.99 / 0.5, 2) = 19.98
	got := ParseTriple("R$9,99", "-50%")
	want := decimal.RequireFromString("19.98")
	if !got.Initial.Available || !got.Initial.Value.Equal(want) {
		t.Errorf("initial = %v; want %v", got.Initial, want)
	}
}

func TestParseTripleWithInitial(t *testing.T) {
	tests := []struct {
		name                          string
		rawInitial, rawDiscount, rawFinal string
		want                          models.PriceTriple
	}{
		{"full card", "R$59,99", "-67%", "R$19,79", triple("59.99", "0.67", "19.79")},
		{"no full price", "", "", "R$29,99", triple("29.99", "0", "29.99")},
		{"free", "", "", "FREE", models.ZeroTriple()},
		{"garbage final", "R$10,00", "", "n/a", models.UnavailableTriple()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTripleWithInitial(tt.rawInitial, tt.rawDiscount, tt.rawFinal)
			if !got.Equal(tt.want) {
				t.Errorf("got %v/%v/%v; want %v/%v/%v",
					got.Initial, got.Discount, got.Final,
					tt.want.Initial, tt.want.Discount, tt.want.Final)
			}
		})
	}
}

func TestParseCompound(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.PriceTriple
	}{
		{"discount tile", "-50% R$19.99 R$9.99", triple("19.99", "0.5", "9.99")},
		{"plain tile", "R$49,99", triple("49.99", "0", "49.99")},
		{"free tile", "FREE", models.ZeroTriple()},
		{"broken tile", "-50% R$", models.UnavailableTriple()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCompound(tt.raw)
			if !got.Equal(tt.want) {
				t.Errorf("ParseCompound(%q) = %v/%v/%v; want %v/%v/%v",
					tt.raw,
					got.Initial, got.Discount, got.Final,
					tt.want.Initial, tt.want.Discount, tt.want.Final)
			}
		})
	}
}

func TestFromCents(t *testing.T) {
	got := FromCents(1999, 999, 50)
	want := triple("19.99", "0.5", "9.99")
	if !got.Equal(want) {
		t.Errorf("FromCents = %v/%v/%v; want 19.99/0.5/9.99",
			got.Initial, got.Discount, got.Final)
	}
}

func TestFreeIsNotUnavailable(t *testing.T) {
	free := ParseTriple("FREE", "")
	failed := ParseTriple("???", "")

	if !free.Final.Available {
		t.Error("free game final price should be available")
	}
	if failed.Final.Available {
		t.Error("failed parse final price should be unavailable")
	}
	if free.Equal(failed) {
		t.Error("free triple must be distinct from unavailable triple")
	}
}
