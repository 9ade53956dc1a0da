package view

import (
	"strconv"
	"strings"

	"github.com/jafarshop/larek/internal/domain"
)

const (
	currency     = "синапсов"
	pricelessTxt = "Бесценно"
)

// FormatNumber groups the integer part in threes separated by spaces: 12500 -> "12 500"
func FormatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// Synapses renders an amount in the shop currency
func Synapses(v float64) string {
	return FormatNumber(v) + " " + currency
}

// PriceText renders a card price; products without a price are "Бесценно"
func PriceText(price *float64) string {
	if price == nil {
		return pricelessTxt
	}
	return Synapses(*price)
}

// CategoryClass returns the badge modifier class for a category
func CategoryClass(category string) string {
	if m := domain.Category(category).Modifier(); m != "" {
		return "card__category_" + m
	}
	return ""
}
