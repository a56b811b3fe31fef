package engine

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount as dollars with thousands grouping.
func FormatMoney(amount float64) string {
	if amount < 0 {
		return moneyPrinter.Sprintf("-$%.2f", -amount)
	}
	return moneyPrinter.Sprintf("$%.2f", amount)
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(pct float64) string {
	return moneyPrinter.Sprintf("%.1f%%", pct)
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// roundMoney rounds to whole cents, half away from zero.
func roundMoney(v float64) float64 {
	return toFloat(dec(v).Round(2))
}

func roundPct(v float64) float64 {
	return toFloat(dec(v).Round(2))
}

func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
