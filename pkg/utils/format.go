// Package utils provides common formatting and sanitizing helpers for
// propfolio.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney renders an amount as whole yen with 3-digit grouping,
// ¥12,345,678. Prices, rents and derived figures are whole-yen
// quantities everywhere they are displayed.
func FormatMoney(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + "¥" + groupThousands(int64(math.Round(math.Abs(amount))))
}

// moneyScales are the compact-notation steps, largest first. The scale
// letters match the ones share codes use for prices and rents.
var moneyScales = []struct {
	floor  float64
	suffix string
}{
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatMoneyCompact renders an amount in compact notation:
// 50000000 → "¥50M", 215000 → "¥215K".
func FormatMoneyCompact(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	abs := math.Abs(amount)
	for _, s := range moneyScales {
		if abs >= s.floor {
			return sign + "¥" + trimDecimals(abs/s.floor) + s.suffix
		}
	}
	return fmt.Sprintf("%s¥%.0f", sign, abs)
}

// FormatPct renders a percentage with an explicit sign: +2.45%, -1.23%.
func FormatPct(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

// Share codes carry prices in millions and rents in thousands; these
// helpers convert between raw yen and those scales.

func ToMillions(amount float64) float64 { return amount / 1e6 }

func FromMillions(millions float64) float64 { return millions * 1e6 }

func ToThousands(amount float64) float64 { return amount / 1e3 }

func FromThousands(thousands float64) float64 { return thousands * 1e3 }

// groupThousands inserts a comma every three digits, front to back.
func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	var b strings.Builder
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// trimDecimals renders up to two decimal places without trailing zeros.
func trimDecimals(n float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", n), "0"), ".")
}
