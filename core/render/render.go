// Package render produces the printable 4x6 inch preview of a label, as an
// HTML page or as Markdown for terminals.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/shipshape/core/label"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("label").
		Funcs(template.FuncMap{
			"serviceCode": serviceCode,
			"upper":       func(s label.ServiceType) string { return strings.ToUpper(string(s)) },
		}).
		ParseFS(templateFS, "templates/*.html.tmpl"),
)

// serviceCode is the large single letter printed in the service banner.
func serviceCode(s label.ServiceType) string {
	switch s {
	case label.ServicePriority:
		return "P"
	case label.ServiceExpress:
		return "E"
	default:
		return "G"
	}
}

// HTML writes a standalone, print-ready HTML page for data.
func HTML(w io.Writer, data label.LabelData) error {
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Fragment writes the label markup only, without page chrome.
func Fragment(w io.Writer, data label.LabelData) error {
	if err := templates.ExecuteTemplate(w, "label", data); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Markdown returns the label as Markdown.
func Markdown(data label.LabelData) (string, error) {
	var buf bytes.Buffer
	if err := Fragment(&buf, data); err != nil {
		return "", err
	}

	markdown, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("render: failed to convert label to markdown: %w", err)
	}
	return strings.TrimSpace(markdown) + "\n", nil
}
