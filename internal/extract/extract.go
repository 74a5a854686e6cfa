// Package extract reads requirement documents into plain text for case
// extraction. Supported inputs are .txt files, .docx archives and .doc
// files that are really HTML exports (a common "Save as .doc" habit).
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrUnsupportedFormat is returned for file types the extractor
	// cannot read, including legacy binary .doc files.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrCorruptFile is returned when a file has a supported extension
	// but its content cannot be decoded.
	ErrCorruptFile = errors.New("document is corrupt or unreadable")
)

// FromFile reads the document at path and returns its plain text.
func FromFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	case ".docx":
		return fromDocx(path)
	case ".doc":
		return fromDoc(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// fromDocx pulls the text runs out of word/document.xml. Paragraph
// boundaries become newlines.
func fromDocx(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a valid docx archive", ErrCorruptFile, filepath.Base(path))
	}
	defer r.Close()

	var doc *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: %s has no word/document.xml", ErrCorruptFile, filepath.Base(path))
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	text, err := docxText(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return text, nil
}

// docxText walks the WordprocessingML token stream collecting the character
// data inside <w:t> elements.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// fromDoc handles .doc files that are actually HTML or MHTML exports.
// True binary .doc files are not supported.
func fromDoc(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !looksLikeHTML(data) {
		return "", fmt.Errorf("%w: binary .doc, convert to .docx first", ErrUnsupportedFormat)
	}
	text, err := htmlText(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	return text, nil
}

func looksLikeHTML(data []byte) bool {
	head := strings.ToLower(string(data[:min(len(data), 2048)]))
	return strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "content-type: text/html")
}

// htmlText strips markup, skipping non-content subtrees.
func htmlText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head", "meta", "link", "title":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if b.Len() > 0 {
					b.WriteString("\n")
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.TrimSpace(b.String()), nil
}
