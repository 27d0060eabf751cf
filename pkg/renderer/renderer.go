package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/lirany1/pickles-explorer/pkg/config"
	"github.com/lirany1/pickles-explorer/pkg/report"
)

// Renderer handles HTML template rendering
type Renderer struct {
	config *config.Config
	tmpl   *template.Template
}

// page is what the dashboard template receives
type page struct {
	Title  string
	View   *report.View
	JSON   string
	Live   bool
	Search string
}

// NewRenderer creates a new renderer
func NewRenderer(cfg *config.Config) *Renderer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Renderer{
		config: cfg,
		tmpl:   template.Must(template.New("index").Funcs(funcMap()).Parse(indexTemplate)),
	}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"percent": func(p *float64) string {
			if p == nil {
				return "-"
			}
			return fmt.Sprintf("%.0f%%", *p)
		},
		"barWidth": func(p *float64) string {
			if p == nil {
				return "0"
			}
			w := *p
			if w > 100 {
				w = 100
			}
			return fmt.Sprintf("%.0f", w)
		},
		"intPercent": func(p *int) string {
			if p == nil {
				return "-"
			}
			return fmt.Sprintf("%d%%", *p)
		},
		"intBarWidth": func(p *int) int {
			if p == nil {
				return 0
			}
			if *p > 100 {
				return 100
			}
			return *p
		},
		"join": strings.Join,
	}
}

// Render writes the dashboard for view. live pages carry a search form that
// submits back to the server.
func (r *Renderer) Render(w io.Writer, view *report.View, live bool) error {
	data, err := report.PrettyJSON(view.Document)
	if err != nil {
		return err
	}

	return r.tmpl.Execute(w, page{
		Title:  r.config.ProjectName,
		View:   view,
		JSON:   string(data),
		Live:   live,
		Search: view.Query.Search,
	})
}

// RenderIndex renders the static dashboard to outputPath
func (r *Renderer) RenderIndex(view *report.View, outputPath string) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, view, false); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return os.WriteFile(outputPath, buf.Bytes(), 0644)
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Feature Explorer</title>
    <link rel="stylesheet" href="css/main.css">
    <style>
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; color: #222; }
        .cards { background: #ececec; padding: 30px; display: flex; gap: 16px; }
        .card { background: #fff; padding: 16px; flex: 1; }
        .card.tags { max-height: 197px; overflow-y: scroll; flex: 1.5; }
        .bar { background: #f5f5f5; height: 8px; border-radius: 4px; }
        .bar > span { display: block; height: 8px; border-radius: 4px; background: #1890ff; }
        .tag { display: inline-block; border: 1px solid #d9d9d9; background: #fafafa; padding: 0 6px; margin: 1px; font-size: 12px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #e8e8e8; vertical-align: top; }
        code.folder { color: #ccc; }
        section { padding: 0 30px; }
    </style>
</head>
<body>
{{- $summary := .View.Summary}}
{{- $agg := $summary.Aggregates}}
<div class="cards">
    <div class="card">
        <h3>Stats</h3>
        <div class="bar"><span style="width: {{intBarWidth $summary.Coverage.Percent}}%"></span></div>
        <p><b>{{$summary.Coverage.Count}}</b> of <b>{{$summary.Coverage.Scenarios}}</b> scenarios {{$summary.Coverage.Tag}} ({{intPercent $summary.Coverage.Percent}})</p>
        <p><b>{{$agg.FeatureCount}}</b> features and <b>{{$agg.StepCount}}</b> steps</p>
    </div>
    <div class="card tags">
        <h3>Tags</h3>
        {{- range $summary.Tags}}
        <div>{{.Tag}} - <code>{{.Count}}</code> {{percent .Percent}}
            <div class="bar"><span style="width: {{barWidth .Percent}}%"></span></div>
        </div>
        {{- else}}
        <p>No tags</p>
        {{- end}}
    </div>
</div>

<section>
<details open>
    <summary><h2 style="display:inline">Scenarios ({{len .View.Scenarios}})</h2></summary>
    {{- if .Live}}
    <form method="get" action="/">
        <input type="search" name="search" placeholder="Search features" value="{{.Search}}">
    </form>
    {{- end}}
    <table>
        <thead><tr><th>Parent</th><th>Name</th><th>Tags</th><th>Steps</th></tr></thead>
        <tbody>
        {{- range .View.Scenarios}}
        <tr>
            <td>{{.Parent.Feature.Name}}<br><code class="folder">{{.Parent.RelativeFolder}}</code></td>
            <td>
                <details>
                    <summary>{{.Name}}</summary>
                    {{- if .Examples}}{{with index .Examples 0}}
                    <h4>Examples</h4>
                    <table>
                        <thead><tr>{{range .TableArgument.HeaderRow}}<th>{{.}}</th>{{end}}</tr></thead>
                        <tbody>{{range .TableArgument.DataRows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
                    </table>
                    <p>Perform this test with each of the above entries</p>
                    {{- end}}{{end}}
                    <ul>{{range .Steps}}<li>{{.Keyword}} {{.Name}}</li>{{end}}</ul>
                </details>
            </td>
            <td>
                {{range .Tags}}<span class="tag">{{.}}</span>{{end}}<br>
                Inherited: {{range .InheritedTags}}<span class="tag">{{.}}</span>{{end}}
            </td>
            <td>{{len .Steps}}</td>
        </tr>
        {{- end}}
        </tbody>
    </table>
</details>

<details>
    <summary><h2 style="display:inline">Features ({{len .View.Features}})</h2></summary>
    <table>
        <thead><tr><th>Name</th><th>Tags</th><th>File</th><th>Scenarios</th><th>Steps</th></tr></thead>
        <tbody>
        {{- range .View.Features}}
        <tr>
            <td>{{.Name}}</td>
            <td>{{join .Feature.Tags ", "}}</td>
            <td><code>{{.RelativeFolder}}</code></td>
            <td>{{len .Children}}</td>
            <td>{{.Steps}}</td>
        </tr>
        {{- end}}
        </tbody>
    </table>
</details>

<details>
    <summary><h2 style="display:inline">JSON</h2></summary>
    <pre>{{.JSON}}</pre>
</details>
</section>
</body>
</html>
`
