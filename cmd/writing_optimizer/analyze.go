package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/fetch"
	"github.com/jonathan/writing-optimizer/internal/ingestion"
	"github.com/jonathan/writing-optimizer/internal/metrics"
	"github.com/jonathan/writing-optimizer/internal/observability"
	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/session"
	"github.com/jonathan/writing-optimizer/internal/types"
)

var (
	analyzeDocs      []string
	analyzeFiles     []string
	analyzeURLs      []string
	analyzeText      string
	analyzeStyle     string
	analyzeTarget    int
	analyzeTopN      int
	analyzeJSON      bool
	analyzeHighlight bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score clarity, readability and word usage of one or more texts",
	Long: `Analyze runs AI feedback, readability metrics and word-frequency statistics.

Inputs are Google Docs (--doc), local files (--file: txt, md, pdf, docx), web pages (--url)
or --text. With no input flags the text is read from stdin. Every input is recorded in the
same session, and a history table is printed when more than one was analyzed.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringArrayVar(&analyzeDocs, "doc", nil, "Google Doc ID or URL (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeFiles, "file", nil, "Path to a txt, md, pdf or docx file (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&analyzeURLs, "url", nil, "Web page URL (repeatable)")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Text to analyze")
	analyzeCmd.Flags().StringVarP(&analyzeStyle, "style", "s", "", "Writing style: General, Academic, Business, Creative, Technical, Casual")
	analyzeCmd.Flags().IntVarP(&analyzeTarget, "target", "t", -1, "Target clarity score 0-100 (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 0, "Number of overused words to report (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print reports as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeHighlight, "highlight", false, "Also print the text with overused words highlighted")
}

// analyzeInput is one text to analyze and the id it is recorded under.
type analyzeInput struct {
	documentID string
	text       string
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if analyzeStyle != "" {
		cfg.Style = analyzeStyle
	}
	if analyzeTarget >= 0 {
		if err := types.ValidateClarityTarget(analyzeTarget); err != nil {
			return err
		}
		cfg.TargetClarity = &analyzeTarget
	}
	if analyzeTopN > 0 {
		cfg.TopN = analyzeTopN
	}

	style, err := types.ParseStyle(cfg.Style)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cfg)
	defer cancel()

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	m := metrics.New()
	var docs pipeline.DocumentGateway
	if len(analyzeDocs) > 0 {
		gw, err := newGateway(ctx, cfg, cmd.ErrOrStderr(), false, m)
		if err != nil {
			return err
		}
		docs = gw
	}

	tracker := session.NewTracker()
	assistant, err := newAssistant(cfg, docs, newFeedbackClient(client, cfg, m), tracker)
	if err != nil {
		return err
	}

	inputs, err := collectInputs(ctx, cmd, assistant)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	var reports []*types.AnalysisReport
	for _, in := range inputs {
		target := cfg.Target()
		req := &types.AnalyzeRequest{
			DocumentID:    in.documentID,
			Text:          in.text,
			Style:         string(style),
			TargetClarity: &target,
			TopN:          cfg.TopN,
		}
		report, err := assistant.Analyze(ctx, req, logProgress)
		m.ObserveAnalysis(style, tracker.Len(), err)
		if err != nil {
			if in.documentID != "" {
				return fmt.Errorf("analysis of %s failed: %w", in.documentID, err)
			}
			return fmt.Errorf("analysis failed: %w", err)
		}
		reports = append(reports, report)

		if analyzeJSON {
			continue
		}
		printer.PrintReport(report)
		if analyzeHighlight {
			_, tokens, err := assistant.Highlight(in.text, cfg.TopN)
			if err != nil {
				return err
			}
			printer.PrintHighlighted(tokens)
		}
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	}
	if tracker.Len() > 1 {
		printer.PrintHistory(tracker.History(), tracker.Summary())
	}
	return nil
}

// collectInputs gathers every text named by the flags. Documents are fetched up
// front so the text is available for highlighting.
func collectInputs(ctx context.Context, cmd *cobra.Command, assistant *pipeline.Assistant) ([]analyzeInput, error) {
	var inputs []analyzeInput

	for _, id := range analyzeDocs {
		doc, err := assistant.Fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}
		inputs = append(inputs, analyzeInput{documentID: doc.ID, text: doc.Text})
	}
	for _, path := range analyzeFiles {
		text, meta, err := ingestion.IngestFromFile(path)
		if err != nil {
			return nil, err
		}
		slog.Debug("ingested file", "path", path, "format", meta.Format, "words", meta.Words)
		inputs = append(inputs, analyzeInput{documentID: path, text: text})
	}
	for _, u := range analyzeURLs {
		text, meta, err := ingestion.IngestFromURL(ctx, u, fetch.DefaultOptions())
		if err != nil {
			return nil, err
		}
		slog.Debug("ingested URL", "url", u, "format", meta.Format, "words", meta.Words)
		inputs = append(inputs, analyzeInput{documentID: u, text: text})
	}
	if analyzeText != "" {
		inputs = append(inputs, analyzeInput{text: analyzeText})
	}

	if len(inputs) == 0 {
		if cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
			return nil, fmt.Errorf("no input: pass --doc, --file, --url, --text or pipe text on stdin")
		}
		text, _, err := ingestion.IngestFromReader(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, analyzeInput{text: text})
	}
	return inputs, nil
}

func logProgress(event pipeline.ProgressEvent) {
	slog.Info(event.Message, "step", event.Step, "category", event.Category)
}
