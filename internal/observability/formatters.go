// Package observability provides formatted terminal output for analysis results.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jonathan/writing-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxBoxWidth caps boxes on wide terminals
	maxBoxWidth = 100
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
	// barWidth is the widest sentence-length bar
	barWidth = 40
)

// Printer renders analysis results for a terminal or a plain writer.
type Printer struct {
	out      io.Writer
	width    int
	color    bool
	renderer *lipgloss.Renderer
}

// PrinterOption customizes a Printer
type PrinterOption func(*Printer)

// WithWidth fixes the box width instead of probing the terminal.
func WithWidth(width int) PrinterOption {
	return func(p *Printer) {
		if width >= 20 {
			p.width = width
		}
	}
}

// WithColor forces colour output on or off.
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.color = enabled
	}
}

// NewPrinter creates a new Printer that writes to the given writer. Colour is
// enabled only for terminals and never when NO_COLOR is set.
func NewPrinter(out io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		out:   out,
		width: terminalWidth(out),
		color: shouldUseColor(out),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.renderer = lipgloss.NewRenderer(out)
	if p.color {
		p.renderer.SetColorProfile(termenv.TrueColor)
	} else {
		p.renderer.SetColorProfile(termenv.Ascii)
	}
	return p
}

// Color reports whether the printer emits ANSI colour.
func (p *Printer) Color() bool {
	return p.color
}

func terminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return boxWidth
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return boxWidth
	}
	return min(width, maxBoxWidth)
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func (p *Printer) style() lipgloss.Style {
	return p.renderer.NewStyle()
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := p.width - 4
	border := strings.Repeat("─", p.width-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(p.style().Bold(true).Render(title), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if lipgloss.Width(line) > inner {
			line = runewidth.Truncate(stripANSI(line), inner, "...")
		}
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-fills s to width visible cells, ignoring ANSI sequences.
func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// chip renders a word in its highlight colour, or bracketed when colour is off.
func (p *Printer) chip(text, color string) string {
	if !p.color {
		return "[" + text + "]"
	}
	return p.style().Foreground(lipgloss.Color(color)).Bold(true).Render(text)
}

// PrintReport outputs every section of an analysis report.
func (p *Printer) PrintReport(report *types.AnalysisReport) {
	if report == nil {
		return
	}
	p.PrintFeedback(report.Feedback, report.Style, report.Target)
	p.PrintReadability(report.Readability)
	if report.Frequency != nil {
		p.PrintOverused(report.Frequency.Overused)
		p.PrintSentences(report.Frequency.SentenceLengths, report.Sentences)
	}
	if report.Session != nil {
		p.PrintSessionEntry(*report.Session)
	}
}

// PrintFeedback outputs the AI clarity score, tone and suggestions.
func (p *Printer) PrintFeedback(result *types.AnalysisResult, style types.WritingStyle, target int) {
	if result == nil {
		return
	}

	var sb strings.Builder
	score := fmt.Sprintf("%d/100", result.ClarityScore)
	if result.ClarityScore >= target {
		score = p.chip(score, "#34d399")
		sb.WriteString(fmt.Sprintf("Clarity:  %s (target %d, met)\n", score, target))
	} else {
		score = p.chip(score, "#f87171")
		sb.WriteString(fmt.Sprintf("Clarity:  %s (target %d, %d below)\n", score, target, target-result.ClarityScore))
	}
	sb.WriteString(fmt.Sprintf("Tone:     %s\n", result.Tone))
	sb.WriteString(fmt.Sprintf("Style:    %s\n", style))

	if len(result.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for i, s := range result.Suggestions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
		}
	}

	p.printBox("AI FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReadability outputs the locally computed readability statistics.
func (p *Printer) PrintReadability(m *types.ReadabilityMetrics) {
	if m == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Grade level:        %.1f\n", m.GradeLevel))
	sb.WriteString(fmt.Sprintf("Reading ease:       %.1f (%s)\n", m.ReadingEase, m.EaseLabel))
	sb.WriteString(fmt.Sprintf("SMOG index:         %.1f\n", m.SMOGIndex))
	sb.WriteString(fmt.Sprintf("ARI:                %.1f\n", m.ARI))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Words:              %d\n", m.WordCount))
	sb.WriteString(fmt.Sprintf("Sentences:          %d\n", m.SentenceCount))
	sb.WriteString(fmt.Sprintf("Words per sentence: %.1f\n", m.AvgSentenceLength))
	sb.WriteString(fmt.Sprintf("Syllables per word: %.2f", m.AvgSyllablesPerWord))

	p.printBox("READABILITY", sb.String())
}

// PrintOverused outputs the ranked overused words in their highlight colours.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOverused(words []types.OverusedWord) {
	if len(words) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", p.width-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("No repeated words found", p.width-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", p.width-2))
		return
	}

	var sb strings.Builder
	count := min(len(words), maxItemsToShow)
	for i := 0; i < count; i++ {
		w := words[i]
		sb.WriteString(fmt.Sprintf("%2d. %s  x%d\n", w.Rank, p.chip(w.Word, w.Color), w.Count))
	}
	if len(words) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(words)-maxItemsToShow))
	}

	p.printBox("OVERUSED WORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSentences outputs one bar per sentence scaled to the longest sentence.
func (p *Printer) PrintSentences(lengths types.SentenceLengths, stats types.SentenceStats) {
	if len(lengths) == 0 {
		return
	}

	longest := 0
	for _, n := range lengths {
		longest = max(longest, n)
	}
	width := min(barWidth, p.width-16)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Min %d, max %d, mean %.1f words: %s\n\n", stats.Min, stats.Max, stats.Mean, stats.Verdict))
	for i, n := range lengths {
		bar := 0
		if longest > 0 {
			bar = n * width / longest
		}
		if n > 0 && bar == 0 {
			bar = 1
		}
		sb.WriteString(fmt.Sprintf("S%-3d %s %d\n", i+1, strings.Repeat("█", bar), n))
	}

	p.printBox("SENTENCE LENGTHS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSessionEntry outputs the history row recorded for the latest analysis.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSessionEntry(entry types.SessionEntry) {
	fmt.Fprintf(p.out, "Recorded analysis #%d for %s at %s\n",
		entry.SequenceIndex, entry.DocumentID, entry.RecordedAt.Format("15:04:05"))
}

// PrintHistory outputs the session history as a table with a trend line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(history []types.SessionEntry, summary types.SessionSummary) {
	if len(history) == 0 {
		fmt.Fprintln(p.out, "No analyses recorded in this session.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-4s %-24s %-9s %7s %6s\n", "#", "Document", "Time", "Clarity", "Grade"))
	for _, e := range history {
		doc := runewidth.Truncate(e.DocumentID, 24, "...")
		sb.WriteString(fmt.Sprintf("%-4d %s %-9s %7d %6.1f\n",
			e.SequenceIndex, runewidth.FillRight(doc, 24), e.RecordedAt.Format("15:04:05"), e.ClarityScore, e.GradeLevel))
	}
	if summary.Entries > 1 {
		sb.WriteString(fmt.Sprintf("\nClarity change: %+d   Grade change: %+.2f", summary.ClarityDelta, summary.GradeDelta))
	}

	p.printBox("SESSION HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHighlighted writes the text with overused words coloured, wrapped to the
// printer width.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHighlighted(tokens []types.AnnotatedToken) {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.Highlighted() {
			sb.WriteString(p.chip(tok.Text, tok.Color))
			continue
		}
		sb.WriteString(tok.Text)
	}
	fmt.Fprintln(p.out, p.style().Width(p.width).Render(sb.String()))
}

// PrintStyles lists the writing style profiles.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStyles(styles []types.WritingStyle, current types.WritingStyle) {
	for _, s := range styles {
		marker := " "
		if s == current {
			marker = "*"
		}
		fmt.Fprintf(p.out, "%s %s\n", marker, s)
	}
}
