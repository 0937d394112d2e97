package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/itish2003/studysense/services"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import note files into their subjects",
	Long: `Import every .txt, .docx and .pdf file under path. The first directory
below path names the subject, so notes/Data Structures/week1/trees.pdf
lands in "Data Structures". Files already imported with identical
content are skipped.

Examples:
  studysense import ./notes`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", root)
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	files, err := a.imports.Discover(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No note files found under %s\n", root)
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Importing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	result := a.imports.ImportAll(cmd.Context(), files, func(f services.ImportFile) {
		_ = bar.Add(1)
	})

	fmt.Printf("\nImport complete:\n")
	color.Green("  Imported: %d", result.Imported)
	fmt.Printf("  Skipped:  %d (unchanged)\n", result.Skipped)
	if len(result.Failed) > 0 {
		color.Red("  Failed:   %d", len(result.Failed))
		for path, err := range result.Failed {
			fmt.Printf("    - %s: %v\n", path, err)
		}
	}
	return nil
}
