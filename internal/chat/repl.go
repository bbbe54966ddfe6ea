package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
	"github.com/paperchat-ai/paperchat/internal/registry"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// REPL is the interactive front end: it reads queries from the input
// stream, hands each one to a fresh orchestrator run, and prints the final
// answer. Resource and prompt commands bypass the model entirely.
type REPL struct {
	orchestrator *Orchestrator
	registry     *registry.Registry
	in           io.Reader
	out          io.Writer
}

// NewREPL creates a REPL over the given streams.
func NewREPL(orchestrator *Orchestrator, reg *registry.Registry, in io.Reader, out io.Writer) *REPL {
	return &REPL{
		orchestrator: orchestrator,
		registry:     reg,
		in:           in,
		out:          out,
	}
}

// Run reads queries until "quit" or end of input.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, bannerStyle.Render("Hello! I'm here to help you search for academic papers on arXiv or extract information about specific papers."))
	fmt.Fprintln(r.out, hintStyle.Render("(Write 'quit' to exit.)"))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, hintStyle.Render("Use: @papers to see available paper topics."))
	fmt.Fprintln(r.out, hintStyle.Render("Use: @<topic> to see papers in that topic."))
	fmt.Fprintln(r.out, hintStyle.Render("Use: /prompts to list available prompts."))
	fmt.Fprintln(r.out, hintStyle.Render("Use: /prompt <name> <arg1=value1> to execute a prompt."))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, "\nSend a message: ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		switch {
		case query == "":
			continue
		case strings.EqualFold(query, "quit"):
			return nil
		case strings.HasPrefix(query, "@"):
			r.showResource(ctx, query[1:])
		case strings.HasPrefix(query, "/"):
			r.runCommand(ctx, query)
		default:
			r.runQuery(ctx, query)
		}
	}
}

func (r *REPL) runQuery(ctx context.Context, query string) {
	answer, err := r.orchestrator.Run(ctx, NewConversation(), query)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(apperrors.FormatUserMessage(err)))
		return
	}
	fmt.Fprintln(r.out, answer)
}

func (r *REPL) showResource(ctx context.Context, topic string) {
	uri := "papers://" + topic
	if topic == "papers" {
		uri = "papers://folders"
	}

	text, err := r.registry.ReadResource(ctx, uri)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(apperrors.FormatUserMessage(err)))
		return
	}
	fmt.Fprintf(r.out, "\nResource: %s\n%s\n", uri, text)
}

func (r *REPL) runCommand(ctx context.Context, query string) {
	parts := strings.Fields(query)
	switch strings.ToLower(parts[0]) {
	case "/prompts":
		r.listPrompts()
	case "/prompt":
		if len(parts) < 2 {
			fmt.Fprintln(r.out, "Usage: /prompt <name> <arg1=value1> <arg2=value2>")
			return
		}
		args := make(map[string]string)
		for _, arg := range parts[2:] {
			if key, value, ok := strings.Cut(arg, "="); ok {
				args[key] = value
			}
		}
		r.runPrompt(ctx, parts[1], args)
	default:
		fmt.Fprintf(r.out, "Unknown command: %s\n", parts[0])
	}
}

func (r *REPL) listPrompts() {
	prompts := r.registry.Prompts()
	if len(prompts) == 0 {
		fmt.Fprintln(r.out, "No prompts available.")
		return
	}

	fmt.Fprintln(r.out, "\nAvailable prompts:")
	for _, prompt := range prompts {
		fmt.Fprintf(r.out, "- %s: %s\n", prompt.Name, prompt.Description)
		if len(prompt.Arguments) > 0 {
			fmt.Fprintln(r.out, "  Arguments:")
			for _, arg := range prompt.Arguments {
				fmt.Fprintf(r.out, "    - %s\n", arg.Name)
			}
		}
	}
}

func (r *REPL) runPrompt(ctx context.Context, name string, args map[string]string) {
	text, err := r.registry.GetPrompt(ctx, name, args)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(apperrors.FormatUserMessage(err)))
		return
	}

	fmt.Fprintf(r.out, "\nExecuting prompt %q...\n", name)
	r.runQuery(ctx, text)
}
