package main

import (
	"fmt"

	"github.com/phrazzld/lessondeck/internal/deck"
	"github.com/spf13/cobra"
)

func newPromptCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the content and game-idea prompts for a lesson",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}

			content, err := deck.BuildContentPrompt(in)
			if err != nil {
				return err
			}
			game, err := deck.BuildGameIdeaPrompt(in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== content ===")
			fmt.Fprintln(out, content)
			fmt.Fprintln(out, "=== game idea ===")
			fmt.Fprintln(out, game)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "lesson JSON file, or - for stdin")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
