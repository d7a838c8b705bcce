package stock

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Missing is rendered in place of an unknown value.
const Missing = "N/A"

var printer = message.NewPrinter(language.English)

// Format renders a value of the given kind. A nil value renders as Missing.
func Format(kind Kind, v *float64) string {
	if v == nil {
		return Missing
	}
	switch kind {
	case KindCurrency:
		return printer.Sprint(number.Decimal(*v, number.MaxFractionDigits(2)))
	case KindPercent:
		return strconv.FormatFloat(*v, 'f', 2, 64) + "%"
	default:
		return strconv.FormatFloat(*v, 'f', 2, 64)
	}
}

// Cell renders one field of r for display.
func (r Record) Cell(f Field) string {
	return Format(f.Kind(), r.Ptr(f))
}

// Row renders the record as display cells: the name followed by every
// field in Fields order.
func (r Record) Row() []string {
	row := make([]string, 0, len(Fields)+1)
	row = append(row, r.Name)
	for _, f := range Fields {
		row = append(row, r.Cell(f))
	}
	return row
}
