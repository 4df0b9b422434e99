package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrUnsupportedFormat = errors.New("unsupported document format")

// Document is one source file reduced to plain text.
type Document struct {
	Source string
	Text   string
}

// Supported reports whether name has an extension the loader can read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".html", ".htm":
		return true
	}
	return false
}

// LoadFile reads path and names the document after its base file name.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), data)
}

// Parse converts raw bytes to a Document based on the extension of name.
func Parse(name string, data []byte) (*Document, error) {
	var text string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		text = string(data)
	case ".html", ".htm":
		t, err := htmlText(data)
		if err != nil {
			return nil, fmt.Errorf("parse html %s: %w", name, err)
		}
		text = t
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return &Document{Source: name, Text: normalizeNewlines(text)}, nil
}

// LoadDir walks dir and loads every supported file, skipping the rest.
func LoadDir(dir string) ([]*Document, error) {
	var docs []*Document
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}
		doc, err := LoadFile(path)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	return docs, err
}

// htmlText keeps block structure as blank lines so the splitter can still
// cut on paragraph boundaries.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	var blocks []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote, td").Each(func(_ int, sel *goquery.Selection) {
		if sel.Find("p, li").Length() > 0 {
			return
		}
		if t := strings.Join(strings.Fields(sel.Text()), " "); t != "" {
			blocks = append(blocks, t)
		}
	})
	if len(blocks) == 0 {
		return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
	}
	return strings.Join(blocks, "\n\n"), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
