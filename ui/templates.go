package ui

import (
	"bytes"
	"html/template"
	"log"
	"strconv"

	"finsight/domain/view"
	"finsight/internal/chart"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"markdown": renderMarkdown,
		"chart":    renderChart,
		"add":      func(a, b int) int { return a + b },
		"fmtNum":   func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
	}
}

// renderMarkdown converts a message to HTML. Raw HTML is dropped and only safe link
// schemes are rendered as links.
func renderMarkdown(text string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML | html.Safelink})
	return template.HTML(markdown.ToHTML([]byte(text), p, renderer))
}

// renderChart inlines a chart as SVG, or a short notice when it cannot be drawn
func renderChart(c view.Chart) template.HTML {
	svg, err := chart.SVG(c)
	if err != nil {
		log.Printf("[Chart] %s: %v", c.Title, err)
		return template.HTML(`<p class="chart-error">` + template.HTMLEscapeString(c.Title) + ` could not be drawn.</p>`)
	}
	// drop the XML prolog so the document can be inlined
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		svg = svg[i:]
	}
	return template.HTML(svg)
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("[Template] Error for %s: %v", templateName, err)
		c.String(500, "Template rendering failed")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("[Template] Error writing response: %v", err)
	}
}
