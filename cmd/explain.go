package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	capgains "github.com/mjbr/capgains"
	"github.com/mjbr/capgains/renderer"
	"google.golang.org/genai"
)

const explainModel = "gemini-2.5-pro"

const explainInstruction = `
You are a careful tax accountant. The user gives you a capital gains
report in markdown. Explain it in plain language: the overall result,
the short/long-term split, and any data quality issue worth fixing.
Do not give legal or tax advice, point the user to a professional for
decisions. Be concise.
`

// explainCmd holds the flags for the 'explain' subcommand.
type explainCmd struct {
	year         int
	accurateFill string
}

func (*explainCmd) Name() string     { return "explain" }
func (*explainCmd) Synopsis() string { return "AI explanation of the annual report" }
func (*explainCmd) Usage() string {
	return `cgt explain [-year <year>] [question...]

  Generates the annual report and asks Gemini to explain it in plain
  language. An optional question focuses the explanation.
`
}

func (c *explainCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", capgains.Today().Year(), "Tax year to explain")
	f.StringVar(&c.accurateFill, "accurate-fill", "", "Comma-separated institutions whose recorded unit prices are trusted for transfer cost inheritance")
}

func (c *explainCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, records, _, _, err := replay(c.accurateFill)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	report := capgains.GenerateReport(records, ledger.Quality(), capgains.ReportOptions{Year: c.year})
	md := renderer.TaxReportMarkdown(report)

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: explainInstruction}}},
	}
	chat, err := client.Chats.Create(ctx, explainModel, config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting chat:", err)
		return subcommands.ExitFailure
	}

	prompt := md
	if f.NArg() > 0 {
		prompt += "\n\nQuestion: " + strings.Join(f.Args(), " ")
	}
	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error asking Gemini:", err)
		return subcommands.ExitFailure
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		fmt.Fprintln(os.Stderr, "No response from Gemini.")
		return subcommands.ExitFailure
	}
	printMarkdown(resp.Candidates[0].Content.Parts[0].Text)
	return subcommands.ExitSuccess
}
