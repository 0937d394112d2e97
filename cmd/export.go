package cmd

import (
	"github.com/fatih/color"
	"github.com/itish2003/studysense/services"
	"github.com/spf13/cobra"
)

var (
	exportDir       string
	exportOverwrite bool
)

var exportCmd = &cobra.Command{
	Use:   "export <subject>",
	Short: "Write a subject's flashcards to a markdown deck",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		exporter, err := services.NewExportService(a.flashcards, exportDir)
		if err != nil {
			return err
		}
		path, err := exporter.ExportFlashcards(cmd.Context(), args[0], exportOverwrite)
		if err != nil {
			return err
		}
		color.Green("Flashcards written to %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportDir, "dir", "decks", "directory to write decks into")
	exportCmd.Flags().BoolVar(&exportOverwrite, "overwrite", false, "replace an existing deck")
}
