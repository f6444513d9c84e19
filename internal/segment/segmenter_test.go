package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const numberedContract = `SERVICES AGREEMENT

1. Services. The Contractor shall provide software development services as described in Exhibit A.
2. Payment. The Client shall pay the Contractor $5,000 per month within thirty days of invoice.
3. Termination. Either party may terminate this Agreement upon thirty (30) days written notice.
4. Confidentiality. Each party shall keep the other party's confidential information secret.`

func TestSplit_NumberedSections(t *testing.T) {
	s := New(DefaultOptions())

	res := s.SplitDetailed(numberedContract)

	assert.Equal(t, HeuristicNumbered, res.Heuristic)
	require.Len(t, res.Segments, 4)
	// The short title is folded into the first section
	assert.True(t, strings.HasPrefix(res.Segments[0], "SERVICES AGREEMENT"))
	assert.Contains(t, res.Segments[0], "1. Services.")
	assert.True(t, strings.HasPrefix(res.Segments[3], "4. Confidentiality."))
}

func TestSplit_SectionKeywords(t *testing.T) {
	text := `Section 1: The Licensor grants the Licensee a non-exclusive license to use the Software.
Section 2: The Licensee shall pay an annual fee of $1,200 due on the first day of each year.
Section 3: This license terminates automatically if the Licensee breaches any of its terms.`

	res := New(DefaultOptions()).SplitDetailed(text)

	assert.Equal(t, HeuristicNumbered, res.Heuristic)
	assert.Len(t, res.Segments, 3)
}

func TestSplit_ParagraphsMergeHeadings(t *testing.T) {
	text := `MASTER SERVICES AGREEMENT

This Agreement is entered into between Acme Corp and Beta LLC for consulting services.

The Consultant shall deliver monthly reports describing all work performed for the Client.

Either party may terminate this Agreement with sixty days written notice to the other party.`

	res := New(DefaultOptions()).SplitDetailed(text)

	assert.Equal(t, HeuristicParagraph, res.Heuristic)
	require.Len(t, res.Segments, 3)
	assert.True(t, strings.HasPrefix(res.Segments[0], "MASTER SERVICES AGREEMENT\n\nThis Agreement"))
}

const lineSeparatedSentences = `The Supplier shall deliver all goods to the Buyer's warehouse on schedule.
The Buyer shall pay each invoice within thirty days of receipt of goods.
Either party may terminate this Agreement for material breach by notice.`

func TestSplit_LineBreaksWithoutStructureIsOneClause(t *testing.T) {
	res := New(DefaultOptions()).SplitDetailed(lineSeparatedSentences)

	assert.Equal(t, HeuristicWhole, res.Heuristic)
	assert.Equal(t, []string{lineSeparatedSentences}, res.Segments)
}

func TestSplit_SentenceFallback(t *testing.T) {
	opts := DefaultOptions()
	opts.SentenceFallback = true

	res := New(opts).SplitDetailed(lineSeparatedSentences)

	assert.Equal(t, HeuristicSentence, res.Heuristic)
	require.Len(t, res.Segments, 3)
	assert.True(t, strings.HasPrefix(res.Segments[1], "The Buyer shall pay"))

	res = New(opts).SplitDetailed(strings.ReplaceAll(lineSeparatedSentences, "\n", " "))
	assert.Equal(t, HeuristicSentence, res.Heuristic)
	assert.Len(t, res.Segments, 3)
}

func TestSplit_RunOnParagraphIsOneClause(t *testing.T) {
	text := "The Supplier shall deliver goods on time. The Buyer shall pay within thirty days. " +
		"Either party may terminate for material breach. This Agreement is governed by the laws of Delaware."

	segments := New(DefaultOptions()).Split(text)

	require.Len(t, segments, 1)
	assert.Equal(t, text, segments[0])
}

func TestSplit_EmptyInput(t *testing.T) {
	s := New(DefaultOptions())

	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\t  "))
}

func TestSplit_ShortDocumentIsWholeClause(t *testing.T) {
	res := New(DefaultOptions()).SplitDetailed("  Short note.  ")

	assert.Equal(t, HeuristicWhole, res.Heuristic)
	assert.Equal(t, []string{"Short note."}, res.Segments)
}

func TestSplit_RoundTrip(t *testing.T) {
	inputs := []string{
		numberedContract,
		"Preamble text that explains the purpose of this agreement between the parties.\n\n" + numberedContract,
		"A single clause without any structure at all, written as one run-on sentence",
		"First paragraph is long enough to stand on its own as a clause.\n\nShort.\n\nThird paragraph is also long enough to be a clause on its own.\n\nFourth paragraph closes the document with a final statement.",
	}

	s := New(DefaultOptions())
	for _, in := range inputs {
		segments := s.Split(in)
		for _, seg := range segments {
			assert.NotEmpty(t, strings.TrimSpace(seg))
			assert.Equal(t, strings.TrimSpace(seg), seg)
		}
		assert.Equal(t, normalize(in), normalize(strings.Join(segments, "\n\n")))
	}
}

func TestNew_DefaultsForInvalidOptions(t *testing.T) {
	s := New(Options{})

	assert.Equal(t, DefaultOptions().MinSegments, s.opts.MinSegments)
	assert.Equal(t, DefaultOptions().MinAvgLength, s.opts.MinAvgLength)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
