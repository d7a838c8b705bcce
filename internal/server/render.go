package server

import (
	"embed"
	"html/template"

	"github.com/abelbrown/screener/internal/stock"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	Query   string
	Headers []string
	Stocks  []stock.Record
}

var templateFuncs = template.FuncMap{
	"fields": func() []stock.Field { return stock.Fields },
	"cell":   func(r stock.Record, f stock.Field) string { return r.Cell(f) },
}

func headers() []string {
	out := []string{stock.NameKey}
	for _, f := range stock.Fields {
		out = append(out, f.Name())
	}
	return out
}
