package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/types"
)

var (
	saveDoc  string
	saveFile string
	saveText string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Replace the whole body of a Google Doc with new text",
	Long: `Save overwrites the document body with the given text in one batch update.
The text comes from --file, --text or stdin. Empty text is refused before contacting Google.`,
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)

	saveCmd.Flags().StringVarP(&saveDoc, "doc", "d", "", "Google Doc ID or URL (required)")
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "Path to the replacement text")
	saveCmd.Flags().StringVar(&saveText, "text", "", "Replacement text")

	if err := saveCmd.MarkFlagRequired("doc"); err != nil {
		panic(fmt.Sprintf("failed to mark doc flag as required: %v", err))
	}
}

func runSave(cmd *cobra.Command, _ []string) error {
	if saveFile != "" && saveText != "" {
		return fmt.Errorf("only one of --file or --text may be specified")
	}

	text, err := readTextInput(cmd, saveFile, saveText)
	if err != nil {
		return err
	}
	if err := types.RequireText("text", text); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd, cfg)
	defer cancel()

	gw, err := newGateway(ctx, cfg, cmd.ErrOrStderr(), false, nil)
	if err != nil {
		return err
	}
	if err := gw.Save(ctx, saveDoc, text); err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %d characters to %s\n", len([]rune(text)), saveDoc)
	return err
}
