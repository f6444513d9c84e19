// Package ingest turns contract files into cleaned plain text.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxFileBytes caps how much of a file is read
const MaxFileBytes = 10 << 20

// ErrUnsupported is returned for file types without a text extractor
var ErrUnsupported = errors.New("unsupported file type")

// Supported reports whether path has an extension ReadFile can extract
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", ".html", ".htm", "":
		return true
	}
	return false
}

// ReadFile reads a .txt, .md, .html or .htm file and returns cleaned text
func ReadFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return "", fmt.Errorf("read %s: %w (%s)", path, ErrUnsupported, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return Read(f, ext)
}

// Read extracts text from r. ext selects HTML parsing for ".html" and ".htm".
func Read(r io.Reader, ext string) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxFileBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if !utf8.Valid(body) {
		body = []byte(strings.ToValidUTF8(string(body), "�"))
	}

	text := string(body)
	if ext == ".html" || ext == ".htm" {
		text, err = HTMLText(text)
		if err != nil {
			return "", err
		}
	}
	return Clean(text), nil
}

// HTMLText returns the visible text of an HTML document. Block elements
// become paragraph breaks.
func HTMLText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return extractVisibleText(doc), nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "section": true,
	"article": true, "blockquote": true, "pre": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ol": true, "ul": true, "header": true, "footer": true,
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			case "br":
				buf.WriteString("\n")
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n\n")
		}
	}

	walk(n)
	return buf.String()
}

var (
	spaceRun      = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)
	pageNumber    = regexp.MustCompile(`(?i)^(?:page\s+)?\d+(?:\s+of\s+\d+)?$`)
	standaloneDay = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)
	dotRun        = regexp.MustCompile(`\.{4,}`)
	dashRun       = regexp.MustCompile(`-{3,}`)
	underscoreRun = regexp.MustCompile(`_{3,}`)
)

// Clean normalizes whitespace, drops page numbers and standalone dates
// and collapses runs of filler punctuation.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
		if pageNumber.MatchString(line) || standaloneDay.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = dotRun.ReplaceAllString(text, "...")
	text = dashRun.ReplaceAllString(text, "--")
	text = underscoreRun.ReplaceAllString(text, "__")
	text = blankLines.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Title picks a display title: the first short line of the text, or the
// file name without its extension.
func Title(text, filename string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if n := utf8.RuneCountInString(line); n >= 3 && n <= 100 && !strings.HasSuffix(line, ".") {
			return line
		}
		break
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
