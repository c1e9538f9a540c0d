package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Long: `Resolves one question end to end and prints the answer rendered as
markdown. If the question is incomplete the follow-up request is printed
instead.

Example:
  graphrag ask "How many rooms are on floor 2?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		p := buildPipeline(cfg, logger)
		proc := p.newProcessor(logger)

		_, reply := proc.Process(cmd.Context(), question)

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			fmt.Println(reply)
			return nil
		}
		rendered, err := renderer.Render(reply)
		if err != nil {
			fmt.Println(reply)
			return nil
		}
		fmt.Print(rendered)
		return nil
	},
}
