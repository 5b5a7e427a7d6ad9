package deck

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/infinityseifer/eda-auto/domain/core"
	"github.com/infinityseifer/eda-auto/domain/narrative"
	"github.com/infinityseifer/eda-auto/internal/errors"
	"github.com/infinityseifer/eda-auto/ports"
)

// Theme names; anything unrecognized falls back to light
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultAccent is the accent used when no color is supplied
const DefaultAccent = "#1f77b4"

// Renderer serializes a narrative plus chart artifacts into a themed
// HTML slide deck under outDir
type Renderer struct {
	outDir string
}

// NewRenderer creates a deck renderer writing into outDir
func NewRenderer(outDir string) *Renderer {
	return &Renderer{outDir: outDir}
}

var _ ports.DeckRenderer = (*Renderer)(nil)

type palette struct {
	Background string
	Text       string
	Accent     string
}

// resolvePalette maps theme and accent into concrete colors.
// Unrecognized themes fall back to light.
func resolvePalette(theme, accent string) palette {
	pal := palette{Background: "#ffffff", Text: "#111111"}
	if strings.ToLower(theme) == ThemeDark {
		pal = palette{Background: "#111111", Text: "#ffffff"}
	}
	pal.Accent = normalizeHex(accent)
	return pal
}

// normalizeHex accepts #RRGGBB or #RGB and is lenient with partial
// input: 3-digit shorthand is expanded, anything else is truncated or
// zero-padded to 6 hex digits rather than rejected.
func normalizeHex(accent string) string {
	s := strings.TrimSpace(accent)
	if s == "" {
		s = DefaultAccent
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		var b strings.Builder
		for _, ch := range s {
			b.WriteRune(ch)
			b.WriteRune(ch)
		}
		s = b.String()
	}
	if len(s) > 6 {
		s = s[:6]
	}
	for len(s) < 6 {
		s += "0"
	}
	out := make([]byte, 6)
	for i := 0; i < 6; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f':
			out[i] = c
		case c >= 'A' && c <= 'F':
			out[i] = c + ('a' - 'A')
		default:
			out[i] = '0'
		}
	}
	return "#" + string(out)
}

// DeckFilename is the deterministic output name for a dataset/theme
// pair, so repeated runs overwrite and listings stay discoverable.
func DeckFilename(datasetID core.DatasetID, theme string) string {
	if strings.ToLower(theme) != ThemeDark {
		theme = ThemeLight
	}
	return fmt.Sprintf("report_%s_%s.html", datasetID, strings.ToLower(theme))
}

type slide struct {
	Heading string
	Body    template.HTML
	Image   template.URL
}

type deckData struct {
	Title    string
	Subtitle string
	Palette  palette
	Slides   []slide
}

// Render lays out the narrative sections and chart images as ordered
// slides and writes the deck atomically. Chart images are embedded as
// data URIs so the deck stays self-contained wherever it is
// downloaded; a chart whose file cannot be read is skipped, not
// fatal. Returns the filename only, so the download handler stays
// consistent.
func (r *Renderer) Render(n narrative.Narrative, charts map[string]string, order []string, datasetID core.DatasetID, theme, accentColor string) (string, error) {
	pal := resolvePalette(theme, accentColor)

	slides := []slide{
		{Heading: "Executive Summary", Body: renderMarkdown(n.ExecutiveSummary)},
		{Heading: "Data Overview", Body: renderMarkdown(n.DataOverview)},
		{Heading: "Key Drivers", Body: renderBullets(n.KeyDrivers)},
		{Heading: "Anomalies & Caveats", Body: renderBullets(n.Anomalies)},
		{Heading: "Recommendations", Body: renderBullets(n.Recommendations)},
	}
	for _, title := range order {
		path, ok := charts[title]
		if !ok {
			continue
		}
		img, err := embedImage(path)
		if err != nil {
			log.Printf("[DeckRenderer] chart %q skipped: %v", title, err)
			continue
		}
		slides = append(slides, slide{Heading: title, Image: img})
	}

	data := deckData{
		Title:    "Auto EDA & Storytelling",
		Subtitle: fmt.Sprintf("Dataset: %s", datasetID),
		Palette:  pal,
		Slides:   slides,
	}

	name := DeckFilename(datasetID, theme)
	if err := r.writeAtomic(name, data); err != nil {
		return "", errors.RenderError("deck render failed", err)
	}
	return name, nil
}

// writeAtomic renders to a temp file and renames it into place so a
// failed render never leaves a partial deck
func (r *Renderer) writeAtomic(name string, data deckData) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(r.outDir, name+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := deckTemplate.Execute(tmp, data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(r.outDir, name))
}

// embedImage inlines a chart file as a base64 data URI
func embedImage(path string) (template.URL, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)), nil
}

// renderMarkdown converts one narrative section to slide HTML
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.ToHTML([]byte(md), p, renderer)
	return template.HTML(out)
}

// renderBullets converts a list of sentences to a Markdown bullet
// list, then to HTML
func renderBullets(lines []string) template.HTML {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return renderMarkdown(b.String())
}

var deckTemplate = template.Must(template.New("deck").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: Helvetica, Arial, sans-serif; background: {{.Palette.Background}}; color: {{.Palette.Text}}; }
  section.slide { min-height: 100vh; padding: 3rem 4rem; box-sizing: border-box; page-break-after: always; }
  h1 { font-size: 2.8rem; margin-bottom: 0.5rem; }
  h2 { font-size: 1.8rem; }
  .rule { width: 10rem; height: 0.4rem; background: {{.Palette.Accent}}; margin-bottom: 1.5rem; }
  .subtitle { font-size: 1.2rem; }
  img.chart { max-width: 85%; background: #ffffff; padding: 0.5rem; }
  ul { font-size: 1.1rem; line-height: 1.7; }
</style>
</head>
<body>
<section class="slide">
  <h1>{{.Title}}</h1>
  <div class="rule"></div>
  <p class="subtitle">{{.Subtitle}}</p>
</section>
{{range .Slides}}
<section class="slide">
  <h2>{{.Heading}}</h2>
  <div class="rule"></div>
  {{if .Image}}<img class="chart" src="{{.Image}}" alt="{{.Heading}}">{{else}}{{.Body}}{{end}}
</section>
{{end}}
</body>
</html>
`))
