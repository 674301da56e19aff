package report

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"
)

// Options controls HTML rendering.
type Options struct {
	// Title is the page heading. Empty renders "Report".
	Title string

	// GeneratedAt, when non-zero, is printed under the heading. Left zero
	// the stamp is omitted, which keeps output reproducible for tests.
	GeneratedAt time.Time
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Verdana, Arial, sans-serif; margin: 2em; }
h1 { font-size: 1.4em; }
p.stamp { color: #666; font-size: 0.8em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; font-size: 0.85em; text-align: left; }
th { background: #2f5a8b; color: #fff; }
tr:nth-child(even) { background: #f2f6fa; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Stamp}}<p class="stamp">Generated {{.Stamp}}</p>{{end}}
<table>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
</body>
</html>
`

var page = template.Must(template.New("report").Parse(pageTemplate))

// WriteHTML renders the table as a standalone HTML page. Cell values are
// escaped by html/template.
func (t *Table) WriteHTML(w io.Writer, opts Options) error {
	title := opts.Title
	if title == "" {
		title = "Report"
	}
	stamp := ""
	if !opts.GeneratedAt.IsZero() {
		stamp = opts.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	data := struct {
		Title   string
		Stamp   string
		Columns []string
		Rows    [][]string
	}{title, stamp, t.Columns, t.Rows}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteHTMLFile renders the table to a file.
func (t *Table) WriteHTMLFile(path string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := t.WriteHTML(f, opts); err != nil {
		return err
	}
	return f.Close()
}
