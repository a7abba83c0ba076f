// Package report renders the HTML digest.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	"PaperDigest/internal/domain"
	"PaperDigest/internal/ports"
)

// DefaultOutputPath is used when the caller passes an empty output path.
const DefaultOutputPath = "finalSummary.html"

const (
	dailyTitle  = "ArXiv AI Papers Daily Summary"
	folderTitle = "Local Folder Summary"
)

var digestTemplate = template.Must(template.New("digest").Parse(`<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 20px auto; }
        .article { margin-bottom: 30px; border-bottom: 1px solid #ccc; padding-bottom: 20px; }
        .title { color: #2c5282; font-size: 18px; font-weight: bold; }
        .links { margin: 10px 0; }
        .links a { color: #4299e1; text-decoration: none; margin-right: 15px; }
        .summary { line-height: 1.6; }
    </style>
</head>
<body>
    <h1>{{.Heading}}</h1>
    <p>Generated on: {{.Generated}}</p>
{{- range .Articles}}
    <div class="article">
        <div class="title">{{.Title}}</div>
        <div class="links">
            {{- if .PDFLink}}
            <a href="{{.PDFLink}}">PDF</a>
            {{- end}}
            {{- if .AbstractLink}}
            <a href="{{.AbstractLink}}">Abstract</a>
            {{- end}}
        </div>
        <div class="summary">
            <p>{{.Summary}}</p>
        </div>
    </div>
{{- end}}
</body>
</html>
`))

// Renderer writes the digest as a standalone HTML file.
type Renderer struct {
	now func() time.Time
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer uses now for the "Generated on" stamp; nil means time.Now.
func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{now: now}
}

type digestView struct {
	Heading   string
	Generated string
	Articles  []articleView
}

// Links come from our own sources (listing templates or file:// paths),
// so they are passed as trusted URLs to keep the file scheme intact.
type articleView struct {
	Title        string
	PDFLink      template.URL
	AbstractLink template.URL
	Summary      string
}

// Render keeps input order, overwrites outputPath and returns the HTML.
// A non-empty sourceFolder switches the heading to the folder digest.
func (r *Renderer) Render(articles []domain.Article, sourceFolder, outputPath string) (string, error) {
	view := digestView{
		Heading:   dailyTitle,
		Generated: r.now().Format("2006-01-02 15:04"),
		Articles:  make([]articleView, 0, len(articles)),
	}
	for _, a := range articles {
		view.Articles = append(view.Articles, articleView{
			Title:        a.Title,
			PDFLink:      template.URL(a.PDFLink),
			AbstractLink: template.URL(a.AbstractLink),
			Summary:      a.Summary,
		})
	}
	if sourceFolder != "" {
		view.Heading = fmt.Sprintf("%s: %s", folderTitle, sourceFolder)
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}

	if outputPath == "" {
		outputPath = DefaultOutputPath
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write digest %s: %w", outputPath, err)
	}

	return buf.String(), nil
}
