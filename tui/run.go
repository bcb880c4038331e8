package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/phanxgames/eraconsole"
)

// Options configures Run.
type Options struct {
	// Inline keeps the output in the normal screen buffer instead of the
	// alternate screen.
	Inline bool

	// Start is called with the program before it runs, so producers can
	// capture it and Send console work from other goroutines.
	Start func(p *tea.Program)
}

// Run drives c in the terminal until Ctrl+C.
func Run(c *eraconsole.Console, opts Options) error {
	programOptions := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !opts.Inline {
		programOptions = append(programOptions, tea.WithAltScreen())
	}
	program := tea.NewProgram(New(c), programOptions...)
	if opts.Start != nil {
		opts.Start(program)
	}
	m, err := program.Run()
	if err != nil {
		return err
	}
	if _, ok := m.(*Model); !ok {
		return errors.New("tui: unexpected model")
	}
	return nil
}
