package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// Render serializes entries as a sitemap.org urlset document.
func Render(entries []Entry) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	buf.WriteString("\n")

	for _, entry := range entries {
		buf.WriteString("  <url>\n")
		writeElement(&buf, "loc", entry.Loc, 4)
		writeElement(&buf, "lastmod", entry.LastMod, 4)
		writeElement(&buf, "changefreq", entry.ChangeFreq, 4)
		writeElement(&buf, "priority", entry.Priority, 4)
		buf.WriteString("  </url>\n")
	}

	buf.WriteString("</urlset>\n")

	return buf.String()
}

// WriteFile renders entries and writes the document, creating the target
// directory lazily.
func WriteFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(Render(entries)), 0o644); err != nil {
		return fmt.Errorf("failed to write sitemap: %w", err)
	}

	return nil
}

func writeElement(buf *bytes.Buffer, name, value string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteString("<" + name + ">")
	xml.EscapeText(buf, []byte(value))
	buf.WriteString("</" + name + ">\n")
}
