package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/cdr-streamer/errors"
	"github.com/wippyai/cdr-streamer/idl"
	"github.com/wippyai/cdr-streamer/streamer"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <input>",
		Short: "Browse structs and their generated procedures interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, _, err := a.loadTree(args[0])
			if err != nil {
				return err
			}
			m, err := newBrowseModel(args[0], tree, streamer.New(streamer.Options{Policy: a.policy()}))
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

type browseState int

const (
	stateSelectStruct browseState = iota
	stateShowCode
)

type browseModel struct {
	err      error
	tree     *idl.Tree
	gen      *streamer.Generator
	viewport viewport.Model
	filename string
	names    []string
	selected int
	width    int
	height   int
	state    browseState
}

// newBrowseModel rejects trees that generation rejects before listing structs.
func newBrowseModel(filename string, tree *idl.Tree, gen *streamer.Generator) (*browseModel, error) {
	if _, err := gen.Generate(tree, io.Discard, io.Discard); err != nil {
		return nil, err
	}
	idx, err := idl.NewIndex(tree)
	if err != nil {
		return nil, err
	}
	return &browseModel{
		tree:     tree,
		gen:      gen,
		viewport: viewport.New(80, 20),
		filename: filename,
		names:    idx.Structs(tree),
		width:    80,
		height:   24,
		state:    stateSelectStruct,
	}, nil
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 1)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectStruct && m.selected > 0 {
				m.selected--
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectStruct && m.selected < len(m.names)-1 {
				m.selected++
				return m, nil
			}

		case "enter":
			if m.state == stateSelectStruct && len(m.names) > 0 {
				code, err := m.render(m.names[m.selected])
				m.err = err
				m.viewport.SetContent(code)
				m.viewport.GotoTop()
				m.state = stateShowCode
				return m, nil
			}

		case "esc", "backspace":
			if m.state == stateShowCode {
				m.state = stateSelectStruct
				m.err = nil
				return m, nil
			}
		}
	}

	if m.state == stateShowCode {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// render generates the procedures of one struct, keeping its enclosing modules.
func (m *browseModel) render(name string) (string, error) {
	var header, source bytes.Buffer
	report, err := m.gen.Generate(structTree(m.tree, name), &header, &source)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("// " + name + ".h\n")
	b.WriteString(header.String())
	b.WriteString("// " + name + ".cpp\n")
	b.WriteString(source.String())
	for _, d := range report.Diagnostics {
		if d.Err.Kind == errors.KindNotFound {
			continue
		}
		b.WriteString("// warning: " + d.String() + "\n")
	}
	return b.String(), nil
}

// structTree extracts the struct with the given scoped name and its module chain.
func structTree(tree *idl.Tree, full string) *idl.Tree {
	parts, _ := idl.SplitScoped(full)
	if len(parts) == 0 {
		return idl.NewTree()
	}

	var find func(nodes []*idl.Node, depth int) *idl.Node
	find = func(nodes []*idl.Node, depth int) *idl.Node {
		last := depth == len(parts)-1
		for _, n := range nodes {
			if n == nil || n.Name != parts[depth] {
				continue
			}
			if last && n.Kind == idl.KindStruct {
				return n
			}
			if !last && n.Kind == idl.KindModule {
				if found := find(n.Children, depth+1); found != nil {
					return idl.Module(n.Name, found)
				}
			}
		}
		return nil
	}

	if n := find(tree.Definitions, 0); n != nil {
		return idl.NewTree(n)
	}
	return idl.NewTree()
}

func (m *browseModel) View() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("CDR Streamer"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectStruct:
		if len(m.names) == 0 {
			b.WriteString("No structs in this tree.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			return b.String()
		}
		b.WriteString("Select a struct:\n\n")
		for i, name := range m.names {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + name)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter show code • q quit"))

	case stateShowCode:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		} else {
			b.WriteString(m.viewport.View())
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}
	return b.String()
}
