// Package stock defines the stock snapshot record shared by the screener
// client and the reference service.
package stock

import "strings"

// Kind controls how a metric is displayed.
type Kind int

const (
	KindCurrency Kind = iota // grouped digits, no unit
	KindRatio                // two decimals
	KindPercent              // two decimals with a trailing %
)

// Field identifies one numeric metric of a Record.
type Field int

const (
	MarketCap Field = iota
	PERatio
	ROE
	DebtEquity
	DividendYield
	RevenueGrowth
	EPSGrowth
	CurrentRatio
	GrossMargin
)

// NameKey is the wire name of the only required field.
const NameKey = "Stock Name"

// Fields lists every numeric field in column order.
var Fields = []Field{
	MarketCap, PERatio, ROE, DebtEquity, DividendYield,
	RevenueGrowth, EPSGrowth, CurrentRatio, GrossMargin,
}

type fieldInfo struct {
	name  string // wire name, also accepted in filter queries
	short string // column header
	kind  Kind
}

var fieldInfos = [...]fieldInfo{
	MarketCap:     {"Market Capitalization", "Market Cap", KindCurrency},
	PERatio:       {"P/E Ratio", "P/E", KindRatio},
	ROE:           {"ROE", "ROE", KindPercent},
	DebtEquity:    {"Debt/Equity Ratio", "Debt/Equity", KindRatio},
	DividendYield: {"Dividend Yield", "Div Yield", KindPercent},
	RevenueGrowth: {"Revenue Growth", "Rev Growth", KindPercent},
	EPSGrowth:     {"EPS Growth", "EPS Growth", KindPercent},
	CurrentRatio:  {"Current Ratio", "Curr Ratio", KindRatio},
	GrossMargin:   {"Gross Margin", "Gross Margin", KindPercent},
}

// Name returns the wire name, e.g. "Market Capitalization".
func (f Field) Name() string { return fieldInfos[f].name }

// Short returns the column header label.
func (f Field) Short() string { return fieldInfos[f].short }

// Kind returns the display kind of the field.
func (f Field) Kind() Kind { return fieldInfos[f].kind }

func (f Field) String() string { return f.Name() }

// FieldByName resolves a wire name case-insensitively, ignoring
// surrounding whitespace.
func FieldByName(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Fields {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return 0, false
}

// Record is one company's latest snapshot.
//
// Numeric fields are pointers: nil means the value is unknown, which is
// distinct from a reported zero. Nil fields are omitted when encoding, so a
// decode/encode round trip keeps exactly the fields the source carried.
type Record struct {
	Name          string   `json:"Stock Name"`
	MarketCap     *float64 `json:"Market Capitalization,omitempty"`
	PERatio       *float64 `json:"P/E Ratio,omitempty"`
	ROE           *float64 `json:"ROE,omitempty"`
	DebtEquity    *float64 `json:"Debt/Equity Ratio,omitempty"`
	DividendYield *float64 `json:"Dividend Yield,omitempty"`
	RevenueGrowth *float64 `json:"Revenue Growth,omitempty"`
	EPSGrowth     *float64 `json:"EPS Growth,omitempty"`
	CurrentRatio  *float64 `json:"Current Ratio,omitempty"`
	GrossMargin   *float64 `json:"Gross Margin,omitempty"`
}

func (r *Record) slot(f Field) **float64 {
	switch f {
	case MarketCap:
		return &r.MarketCap
	case PERatio:
		return &r.PERatio
	case ROE:
		return &r.ROE
	case DebtEquity:
		return &r.DebtEquity
	case DividendYield:
		return &r.DividendYield
	case RevenueGrowth:
		return &r.RevenueGrowth
	case EPSGrowth:
		return &r.EPSGrowth
	case CurrentRatio:
		return &r.CurrentRatio
	case GrossMargin:
		return &r.GrossMargin
	}
	panic("stock: unknown field")
}

// Value returns the field value and whether it is known.
func (r Record) Value(f Field) (float64, bool) {
	p := *r.slot(f)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Ptr returns the raw field pointer (nil when unknown).
func (r Record) Ptr(f Field) *float64 {
	return *r.slot(f)
}

// Set stores a known value for f.
func (r *Record) Set(f Field, v float64) {
	*r.slot(f) = &v
}

// Clear marks f as unknown.
func (r *Record) Clear(f Field) {
	*r.slot(f) = nil
}

// Float is a helper for building records in literals.
func Float(v float64) *float64 { return &v }
