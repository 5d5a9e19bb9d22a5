package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/beesaferoot/imobipro/internal/period"
	"github.com/beesaferoot/imobipro/models"
)

var dateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2-1-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var monthLayouts = []string{
	"1/2006",
	"2006-1",
}

// ParseDate normalizes a source date to YYYY-MM-DD. Besides the textual
// layouts it accepts Excel serial day numbers, which is how raw workbook
// cells carry dates. ok is false when s is empty or unparsable.
func ParseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(period.ISO), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 2958466 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(period.ISO), true
		}
	}
	return "", false
}

// ParseMonth returns the first day of the month s refers to. Full dates
// and the MM/YYYY and YYYY-MM shorthands are accepted.
func ParseMonth(s string) (string, bool) {
	if d, ok := ParseDate(s); ok {
		t, _ := time.Parse(period.ISO, d)
		return period.FirstOfMonth(t), true
	}
	s = strings.TrimSpace(s)
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return period.FirstOfMonth(t), true
		}
	}
	return "", false
}

// ParseInt reads an integer through a float so that "3", "3.0" and "3,0"
// are all 3. NaN, infinities and values outside the int32 range are rejected.
func ParseInt(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseDecimal reads a money amount. Plain numbers use a dot as decimal
// separator; text with a comma is read in Brazilian notation, so
// "R$ 1.200,50" is 1200.50. A dot after the last comma ("1,200.50") is
// not Brazilian notation and is rejected.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	if comma := strings.LastIndex(s, ","); comma >= 0 {
		if strings.LastIndex(s, ".") > comma {
			return decimal.Zero, false
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseBool reads yes/no style flags in English or Portuguese.
func ParseBool(s string) (bool, bool) {
	switch models.Fold(s) {
	case "1", "true", "yes", "y", "sim", "s", "x":
		return true, true
	case "0", "false", "no", "n", "nao":
		return false, true
	}
	return false, false
}
