package server

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"seo_enricher/dataset"
)

var previewMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// renderPreview builds the Email / SEO Description table as markdown and
// converts it to HTML. Raw HTML in cells is escaped, never passed through.
func renderPreview(rows []dataset.Row) (template.HTML, error) {
	if len(rows) == 0 {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString("| Email | SEO Description |\n")
	sb.WriteString("| --- | --- |\n")
	for _, r := range rows {
		fmt.Fprintf(&sb, "| %s | %s |\n", escapeCell(r[dataset.EmailColumn]), escapeCell(r[dataset.SEOColumn]))
	}

	var buf bytes.Buffer
	if err := previewMarkdown.Convert([]byte(sb.String()), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// escapeCell keeps a value on one line and backslash-escapes ASCII
// punctuation so it renders as literal text.
func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
