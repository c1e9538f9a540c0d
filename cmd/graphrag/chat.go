package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/processor"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive question-answering session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

// runChat reads questions from stdin until EOF or /exit. Answers stream to
// the terminal chunk by chunk; clarification requests print in full.
func runChat(ctx context.Context) error {
	p := buildPipeline(cfg, logger)
	proc := p.newProcessor(logger)

	fmt.Println(promptStyle.Render("graphrag chat"))
	fmt.Println(faintStyle.Render("Ask about rooms, devices, and measurements. /exit to quit."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/exit" || line == "/quit" {
			break
		}

		status, reply, chunks := proc.ProcessStream(ctx, line)
		if chunks == nil {
			style := answerStyle
			if status == processor.StatusContinue {
				style = noticeStyle
			}
			fmt.Println(style.Render(reply))
			fmt.Println()
			continue
		}

		for chunk := range chunks {
			fmt.Print(answerStyle.Render(chunk))
		}
		fmt.Println()
		fmt.Println()
	}
	return scanner.Err()
}
