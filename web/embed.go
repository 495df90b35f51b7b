package web

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/scanview/frontend/internal/chart"
)

// Templates holds the page, results, chart and report templates. They are
// compiled into the binary.
//
//go:embed templates/*.tmpl
var Templates embed.FS

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"num":   chart.Num,
		"lower": lower,
	}
}

func lower(v any) string {
	return strings.ToLower(fmt.Sprint(v))
}

// Parse compiles every embedded template into one set. Named entry points:
// "page" and "report".
func Parse() (*template.Template, error) {
	t, err := template.New("scanview").Funcs(FuncMap()).ParseFS(Templates, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return t, nil
}
