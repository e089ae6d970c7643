package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/ingestion"
	"github.com/jonathan/writing-optimizer/internal/observability"
	"github.com/jonathan/writing-optimizer/internal/wordfreq"
)

var (
	highlightFile string
	highlightText string
	highlightTopN int
	highlightJSON bool
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Highlight overused words locally, without calling a language model",
	RunE:  runHighlight,
}

func init() {
	rootCmd.AddCommand(highlightCmd)

	highlightCmd.Flags().StringVarP(&highlightFile, "file", "f", "", "Path to a txt, md, pdf or docx file (default: stdin)")
	highlightCmd.Flags().StringVar(&highlightText, "text", "", "Text to highlight")
	highlightCmd.Flags().IntVar(&highlightTopN, "top-n", 0, "Number of overused words to highlight (default from config)")
	highlightCmd.Flags().BoolVar(&highlightJSON, "json", false, "Print the frequency report and tokens as JSON")
}

func runHighlight(cmd *cobra.Command, _ []string) error {
	if highlightFile != "" && highlightText != "" {
		return fmt.Errorf("only one of --file or --text may be specified")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if highlightTopN > 0 {
		cfg.TopN = highlightTopN
	}
	opts, err := cfg.WordFreqOptions()
	if err != nil {
		return err
	}

	text, err := readTextInput(cmd, highlightFile, highlightText)
	if err != nil {
		return err
	}

	report, err := wordfreq.Annotate(text, opts)
	if err != nil {
		return err
	}
	tokens, err := wordfreq.Highlight(text, report.Overused, opts.Language)
	if err != nil {
		return err
	}

	if highlightJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"frequency": report, "tokens": tokens})
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintOverused(report.Overused)
	printer.PrintHighlighted(tokens)
	return nil
}

// readTextInput returns the cleaned text of a file, an inline value or stdin.
func readTextInput(cmd *cobra.Command, path, inline string) (string, error) {
	switch {
	case path != "":
		text, _, err := ingestion.IngestFromFile(path)
		return text, err
	case inline != "":
		return ingestion.CleanText(inline), nil
	}
	if cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
		return "", fmt.Errorf("no input: pass --file, --text or pipe text on stdin")
	}
	text, _, err := ingestion.IngestFromReader(cmd.InOrStdin())
	return text, err
}
