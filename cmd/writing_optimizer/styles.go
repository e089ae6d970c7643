package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/observability"
	"github.com/jonathan/writing-optimizer/internal/types"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List writing style profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		current, err := types.ParseStyle(cfg.Style)
		if err != nil {
			return err
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintStyles(types.AllStyles(), current)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}
