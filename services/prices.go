package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lborgatow/games-scraping/models"
)

var (
	// digitsRegexp captures the digit runs of a price token; currency symbol,
	// thousands separator and decimal comma are all discarded and the last
	// two digits are the cents ("R$1.019,99" -> 101999 -> 1019.99).
	digitsRegexp = regexp.MustCompile(`\d`)
	// compoundRegexp splits a combined discount+prices token as rendered by
	// stores that put everything in one element ("-50% R$19.99 R$9.99").
	compoundRegexp = regexp.MustCompile(`(-?\d*\.?\d+%|R\$\s?\d+[.,]\d+)`)
	// freeRegexp matches the markers stores use for no-cost games.
	freeRegexp = regexp.MustCompile(`(?i)^(free|gr[áa]tis)$`)
)

var oneHundred = decimal.NewFromInt(100)

// ParseMoney parses a raw price token into a 2-decimal monetary value.
func ParseMoney(raw string) (decimal.Decimal, error) {
	digits := strings.Join(digitsRegexp.FindAllString(raw, -1), "")
	if digits == "" {
		return decimal.Zero, fmt.Errorf("prices: no digits in %q", raw)
	}
	cents, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("prices: parse %q: %w", raw, err)
	}
	return cents.Shift(-2), nil
}

// ParseDiscount parses a raw discount token ("-50%", "ECONOMIZE 50%") into a
// fraction. An empty or digit-free token means no discount.
func ParseDiscount(raw string) decimal.Decimal {
	digits := strings.Join(digitsRegexp.FindAllString(raw, -1), "")
	if digits == "" {
		return decimal.Zero
	}
	pct, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero
	}
	return pct.Div(oneHundred)
}

// ParseTriple turns a raw price token and an optional adjacent discount token
// into the canonical triple.
//
// When only a final price is known the initial price equals it; when a
// discount is known the initial price is recomputed as final/(1-discount)
// rounded to 2 decimal places. A free marker yields the genuine zero triple;
// a token that cannot be parsed yields the unavailable triple, never a fake
// zero.
func ParseTriple(rawPrice, rawDiscount string) models.PriceTriple {
	trimmed := strings.TrimSpace(rawPrice)
	if trimmed == "" || trimmed == models.Unavailable {
		return models.UnavailableTriple()
	}
	if freeRegexp.MatchString(trimmed) {
		return models.ZeroTriple()
	}

	final, err := ParseMoney(trimmed)
	if err != nil {
		return models.UnavailableTriple()
	}

	discount := ParseDiscount(rawDiscount)
	initial := final
	if discount.IsPositive() && discount.LessThan(decimal.NewFromInt(1)) {
		initial = final.Div(decimal.NewFromInt(1).Sub(discount)).Round(2)
	}

	return models.NewPriceTriple(initial, discount, final)
}

// ParseTripleWithInitial handles stores that render the pre-discount price as
// its own element. An absent initial token falls back to the final price.
func ParseTripleWithInitial(rawInitial, rawDiscount, rawFinal string) models.PriceTriple {
	trimmed := strings.TrimSpace(rawFinal)
	if trimmed == "" || trimmed == models.Unavailable {
		return models.UnavailableTriple()
	}
	if freeRegexp.MatchString(trimmed) {
		return models.ZeroTriple()
	}

	final, err := ParseMoney(trimmed)
	if err != nil {
		return models.UnavailableTriple()
	}

	discount := ParseDiscount(rawDiscount)

	if strings.TrimSpace(rawInitial) == "" {
		return models.NewPriceTriple(final, discount, final)
	}
	initial, err := ParseMoney(rawInitial)
	if err != nil {
		return models.UnavailableTriple()
	}

	return models.NewPriceTriple(initial, discount, final)
}

// ParseCompound handles a single token carrying discount, initial and final
// price at once ("-50% R$19.99 R$9.99"). Tokens without a percent sign are
// treated as a plain final price.
func ParseCompound(raw string) models.PriceTriple {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "%") {
		return ParseTriple(trimmed, "")
	}

	parts := compoundRegexp.FindAllString(trimmed, -1)
	if len(parts) < 3 {
		return models.UnavailableTriple()
	}

	discount := ParseDiscount(parts[0])
	initial, errI := ParseMoney(parts[1])
	final, errF := ParseMoney(parts[2])
	if errI != nil || errF != nil {
		return models.UnavailableTriple()
	}

	return models.NewPriceTriple(initial, discount, final)
}

// FromCents builds the triple from integer cent values as returned by the
// Steam price API.
func FromCents(initial, final int64, discountPercent int64) models.PriceTriple {
	return models.NewPriceTriple(
		decimal.NewFromInt(initial).Shift(-2),
		decimal.NewFromInt(discountPercent).Div(oneHundred),
		decimal.NewFromInt(final).Shift(-2),
	)
}
