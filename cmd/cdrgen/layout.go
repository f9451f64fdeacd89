package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/cdr-streamer/codec"
	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/internal/align"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	runtimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	staticStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD580"))

	sizeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))
)

// isTerminal reports whether w is a terminal, so plain text goes to pipes and files.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout <input>",
		Short: "Print field offsets, padding and sizes of every struct",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runLayout,
	}
	cmd.Flags().Uint32("start", 0, "Start offset of the struct in the buffer")
	cmd.Flags().String("struct", "", "Only show this fully scoped struct")
	return cmd
}

func (a *app) runLayout(cmd *cobra.Command, args []string) error {
	tree, _, err := a.loadTree(args[0])
	if err != nil {
		return err
	}
	set, err := codec.Compile(tree, codec.Options{Policy: a.policy()})
	if err != nil {
		return err
	}

	start, _ := cmd.Flags().GetUint32("start")
	only, _ := cmd.Flags().GetString("struct")

	names := set.Names()
	if only != "" {
		if _, ok := set.Plan(only); !ok {
			return errors.NotFound(errors.PhaseConfig, "struct", only)
		}
		names = []string{only}
	}

	out := cmd.OutOrStdout()
	styled := isTerminal(out)
	for _, name := range names {
		if err := writeLayout(out, set, name, start, styled); err != nil {
			return err
		}
	}
	return nil
}

func writeLayout(w io.Writer, set *codec.Set, name string, start uint32, styled bool) error {
	slots, end, err := set.Layout(name, start)
	if err != nil {
		return err
	}

	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	fmt.Fprintln(w, render(headingStyle, name))
	fmt.Fprintf(w, "  %-6s %-5s %-3s %-8s %s\n", "offset", "width", "pad", "align", "field")
	for _, sl := range slots {
		mode := sl.Mode.String()
		switch sl.Mode {
		case align.ModeRuntime:
			mode = render(runtimeStyle, fmt.Sprintf("%-8s", mode))
		case align.ModeStatic:
			mode = render(staticStyle, fmt.Sprintf("%-8s", mode))
		default:
			mode = fmt.Sprintf("%-8s", mode)
		}
		fmt.Fprintf(w, "  %-6d %-5d %-3d %s %s (%s)\n", sl.Offset, sl.Width, sl.Pad, mode, sl.Path, sl.Kind)
	}
	fmt.Fprintln(w, render(sizeStyle, fmt.Sprintf("  size %d (end %d)", end-start, end)))
	fmt.Fprintln(w)
	return nil
}

func (a *app) treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <input>",
		Short: "Print the indented type tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, diags, err := a.loadTree(args[0])
			if err != nil {
				return err
			}
			printDiagnostics(cmd.ErrOrStderr(), diags)
			return idl.Dump(cmd.OutOrStdout(), tree)
		},
	}
}
