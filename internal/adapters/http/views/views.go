// Package views holds the HTML templates shared by the server and the static
// site build.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/jsamuelsen/hourly-quotes/internal/domain"
)

// Template names.
const (
	HomeTemplate    = "home.html"
	HistoryTemplate = "history.html"
)

// NoQuotesText is shown on the home page before the first generation.
const NoQuotesText = "No quotes generated yet"

//go:embed templates/*.html
var templateFS embed.FS

// Links are the navigation targets a page renders. The server and the
// static build address the same pages differently.
type Links struct {
	Home    string
	History string
}

var (
	// ServerLinks address the routes served by the HTTP adapter.
	ServerLinks = Links{Home: "/", History: "/history"}

	// StaticLinks address the files written by the site builder.
	StaticLinks = Links{Home: "index.html", History: "history.html"}
)

// HomePage is the data for HomeTemplate. Latest is nil until a quote exists.
type HomePage struct {
	Title  string
	Links  Links
	Latest *domain.QuoteRecord
}

// HistoryPage is the data for HistoryTemplate.
type HistoryPage struct {
	Title string
	Links Links
	Today []domain.QuoteRecord
	Days  []domain.DayQuotes
}

// quoteItem is the data of the shared "quote" block.
type quoteItem struct {
	Record   domain.QuoteRecord
	ShowHour bool
}

// Parse loads the embedded templates. Timestamps are rendered in loc;
// nil means time.Local.
func Parse(loc *time.Location) (*template.Template, error) {
	if loc == nil {
		loc = time.Local
	}

	funcs := template.FuncMap{
		"generatedAt": func(t time.Time) string {
			return t.In(loc).Format("Jan 2, 2006 3:04 PM MST")
		},
		"clock": func(t time.Time) string {
			return t.In(loc).Format("3:04 PM")
		},
		"quoteCount": func(n int) string {
			if n == 1 {
				return "1 quote"
			}

			return fmt.Sprintf("%d quotes", n)
		},
		"noQuotes": func() string { return NoQuotesText },
		"withHour": func(rec domain.QuoteRecord) quoteItem {
			return quoteItem{Record: rec, ShowHour: true}
		},
	}

	tmpl, err := template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing view templates: %w", err)
	}

	return tmpl, nil
}

// Render executes the named template into w.
func Render(w io.Writer, tmpl *template.Template, name string, data any) error {
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	return nil
}
