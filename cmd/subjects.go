package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/itish2003/studysense/services"
	"github.com/spf13/cobra"
)

var subjectsJSON bool

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "Manage subjects",
}

var subjectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects that have notes or flashcards",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		subjects, err := a.subjects.List(cmd.Context())
		if err != nil {
			return err
		}

		if subjectsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(subjects)
		}
		if len(subjects) == 0 {
			color.Yellow("No subjects yet. Create one with: studysense subjects create <name>")
			return nil
		}
		for _, s := range subjects {
			fmt.Printf("%s %s\n", color.CyanString("•"), s)
		}
		return nil
	},
}

var subjectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		key, err := a.subjects.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		color.Green("Subject '%s' created", services.DisplayName(key))
		return nil
	},
}

var subjectsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a subject with all of its notes and flashcards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.subjects.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("Subject '%s' deleted", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subjectsCmd)
	subjectsCmd.AddCommand(subjectsListCmd, subjectsCreateCmd, subjectsDeleteCmd)
	subjectsListCmd.Flags().BoolVar(&subjectsJSON, "json", false, "Output in JSON format")
}
