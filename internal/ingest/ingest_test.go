package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	raw := "SERVICES AGREEMENT\r\n\r\n\r\n\r\n1.  Payment   terms apply.\nPage 2 of 10\n03/15/2024\n2. Signature: ______________\nSee annex........"

	got := Clean(raw)

	if strings.Contains(got, "\r") {
		t.Error("Expected carriage returns removed")
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("Expected blank line runs collapsed")
	}
	if strings.Contains(got, "Page 2 of 10") || strings.Contains(got, "03/15/2024") {
		t.Errorf("Expected page numbers and standalone dates dropped, got %q", got)
	}
	if !strings.Contains(got, "1. Payment terms apply.") {
		t.Errorf("Expected inner spaces collapsed, got %q", got)
	}
	if !strings.Contains(got, "Signature: __") || strings.Contains(got, "___") {
		t.Errorf("Expected underscore run collapsed, got %q", got)
	}
	if !strings.HasSuffix(got, "annex...") {
		t.Errorf("Expected dot run collapsed, got %q", got)
	}
}

func TestHTMLText(t *testing.T) {
	content := `<html><head><title>ignored</title><style>p{}</style></head>
	<body>
		<h1>Consulting Agreement</h1>
		<p>1. The Consultant shall deliver the report.</p>
		<script>var x = 1;</script>
		<p>2. The Client shall pay<br>within 30 days.</p>
	</body></html>`

	text, err := HTMLText(content)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got := Clean(text)

	if strings.Contains(got, "ignored") || strings.Contains(got, "var x") {
		t.Errorf("Expected head and scripts skipped, got %q", got)
	}
	if !strings.Contains(got, "Consulting Agreement\n\n1. The Consultant shall deliver the report.\n\n2.") {
		t.Errorf("Expected block elements separated by blank lines, got %q", got)
	}
	if !strings.Contains(got, "pay\nwithin 30 days.") {
		t.Errorf("Expected <br> as a line break, got %q", got)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "nda.txt")
	if err := os.WriteFile(txt, []byte("  Mutual NDA  \n\nThe parties agree.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(txt)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "Mutual NDA\n\nThe parties agree." {
		t.Errorf("Unexpected text %q", got)
	}

	htmlPath := filepath.Join(dir, "msa.HTML")
	if err := os.WriteFile(htmlPath, []byte("<p>Hello</p><p>World</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "Hello\n\nWorld" {
		t.Errorf("Unexpected html text %q", got)
	}
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	pdf := filepath.Join(dir, "contract.pdf")
	_ = os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644)
	if _, err := ReadFile(pdf); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestTitle(t *testing.T) {
	if got := Title("EMPLOYMENT AGREEMENT\n\n1. Duties.", "x.txt"); got != "EMPLOYMENT AGREEMENT" {
		t.Errorf("Expected heading title, got %q", got)
	}
	if got := Title("This agreement is made between the parties.", "/tmp/acme-msa.txt"); got != "acme-msa" {
		t.Errorf("Expected filename title, got %q", got)
	}
	if got := Title("", "lease.md"); got != "lease" {
		t.Errorf("Expected filename title, got %q", got)
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.txt":      true,
		"b.MD":       true,
		"c.html":     true,
		"README":     true,
		"d.pdf":      false,
		"e.docx":     false,
		"dir/f.htm":  true,
		"g.markdown": true,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
