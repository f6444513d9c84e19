package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/summary"
)

// Format selects how results are rendered
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "markdown", "md" and "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %q (supported: markdown, json)", s)
	}
}

// Renderer writes results in one format
type Renderer struct {
	format Format
}

// NewRenderer creates a renderer
func NewRenderer(format Format) *Renderer {
	return &Renderer{format: format}
}

// Contract renders an analysed contract
func (r *Renderer) Contract(w io.Writer, c *model.Contract) error {
	if r.format == FormatJSON {
		return writeJSON(w, c)
	}
	_, err := io.WriteString(w, ContractMarkdown(c))
	return err
}

// Report renders an analysed contract followed by its summary, when given
func (r *Renderer) Report(w io.Writer, c *model.Contract, s *model.Summary) error {
	if s == nil {
		return r.Contract(w, c)
	}
	if r.format == FormatJSON {
		return writeJSON(w, struct {
			Contract *model.Contract `json:"contract"`
			Summary  *model.Summary  `json:"summary"`
		}{c, s})
	}
	_, err := io.WriteString(w, ContractMarkdown(c)+"\n"+summary.Markdown(*s))
	return err
}

// Extension returns the file extension for the output format
func (r *Renderer) Extension() string {
	if r.format == FormatJSON {
		return ".json"
	}
	return ".md"
}

// Answer renders a question answer
func (r *Renderer) Answer(w io.Writer, a model.AnswerResult) error {
	if r.format == FormatJSON {
		return writeJSON(w, a)
	}
	_, err := io.WriteString(w, AnswerMarkdown(a))
	return err
}

// Summary renders a contract summary
func (r *Renderer) Summary(w io.Writer, s model.Summary) error {
	if r.format == FormatJSON {
		return writeJSON(w, s)
	}
	_, err := io.WriteString(w, summary.Markdown(s))
	return err
}

// List renders stored contracts
func (r *Renderer) List(w io.Writer, infos []model.ContractInfo) error {
	if r.format == FormatJSON {
		return writeJSON(w, infos)
	}
	_, err := io.WriteString(w, ListMarkdown(infos))
	return err
}

// WriteFile renders to path through fn, creating parent directories
func WriteFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ContractMarkdown renders contract metadata and every clause in order
func ContractMarkdown(c *model.Contract) string {
	var b strings.Builder

	title := c.Title
	if title == "" {
		title = c.Filename
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **ID**: `%s`\n", c.ID)
	fmt.Fprintf(&b, "- **File**: %s\n", c.Filename)
	fmt.Fprintf(&b, "- **Analysed**: %s\n", c.UploadedAt.Format("2006-01-02 15:04 MST"))
	if len(c.Parties) > 0 {
		fmt.Fprintf(&b, "- **Parties**: %s\n", strings.Join(c.Parties, ", "))
	}
	counts := model.RiskCounts(c.Clauses)
	fmt.Fprintf(&b, "- **Clauses**: %d (%s %d high, %s %d medium, %s %d low)\n",
		len(c.Clauses),
		model.RiskHigh.Badge(), counts[model.RiskHigh],
		model.RiskMedium.Badge(), counts[model.RiskMedium],
		model.RiskLow.Badge(), counts[model.RiskLow])

	writeKeyTerms(&b, c.KeyTerms)

	if len(c.Clauses) == 0 {
		b.WriteString("\nNo clauses were found in this contract.\n")
		return b.String()
	}

	b.WriteString("\n## Clauses\n")
	for _, cl := range c.Clauses {
		fmt.Fprintf(&b, "\n### %d. %s %s (%s, %.2f)\n\n", cl.Index+1, cl.RiskLevel.Badge(), cl.Category.Label(), cl.RiskLevel, cl.RiskScore)
		b.WriteString(quote(cl.Text))
		for _, reason := range cl.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
	}
	return b.String()
}

func writeKeyTerms(b *strings.Builder, k model.KeyTerms) {
	if k.Empty() {
		return
	}
	b.WriteString("\n## Key Terms\n\n")
	for _, d := range k.DefinedTerms {
		if d.Frequent {
			fmt.Fprintf(b, "- **%s** (used often)\n", d.Term)
			continue
		}
		fmt.Fprintf(b, "- **%s**: %s\n", d.Term, d.Definition)
	}
	if len(k.Amounts) > 0 {
		values := make([]string, len(k.Amounts))
		for i, a := range k.Amounts {
			values[i] = a.Value
			if a.Context != "" {
				values[i] += " (" + a.Context + ")"
			}
		}
		fmt.Fprintf(b, "- **Amounts**: %s\n", strings.Join(values, ", "))
	}
	if len(k.Entities) > 0 {
		fmt.Fprintf(b, "- **Entities**: %s\n", strings.Join(k.Entities, ", "))
	}
	if len(k.Periods) > 0 {
		values := make([]string, len(k.Periods))
		for i, p := range k.Periods {
			values[i] = p.Text
		}
		fmt.Fprintf(b, "- **Time periods**: %s\n", strings.Join(values, ", "))
	}
	if len(k.Concepts) > 0 {
		values := make([]string, len(k.Concepts))
		for i, c := range k.Concepts {
			values[i] = fmt.Sprintf("%s (%dx)", c.Name, c.Count)
		}
		fmt.Fprintf(b, "- **Concepts**: %s\n", strings.Join(values, ", "))
	}
}

// AnswerMarkdown renders an answer with its provenance
func AnswerMarkdown(a model.AnswerResult) string {
	var b strings.Builder
	b.WriteString(a.AnswerText)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "_Intent: %s · %s_\n", a.Intent, a.Note)
	return b.String()
}

// ListMarkdown renders the stored contracts as a table
func ListMarkdown(infos []model.ContractInfo) string {
	if len(infos) == 0 {
		return "No contracts stored yet.\n"
	}
	var b strings.Builder
	b.WriteString("| ID | Title | Analysed | Clauses | High | Medium | Low |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, info := range infos {
		title := info.Title
		if title == "" {
			title = info.Filename
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d | %d |\n",
			info.ID, strings.ReplaceAll(title, "|", "\\|"), info.UploadedAt.Format("2006-01-02"),
			info.ClauseCount, info.RiskCounts[model.RiskHigh], info.RiskCounts[model.RiskMedium], info.RiskCounts[model.RiskLow])
	}
	return b.String()
}

func quote(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}
