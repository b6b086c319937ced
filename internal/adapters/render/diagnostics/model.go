package diagnostics

import (
	"errors"
	"io"

	"github.com/bnema/arcprompt/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	records []domain.FallbackRecord
	stats   domain.FallbackStats
	opts    RenderOptions
	styles  styles
	output  string
}

func newModel(records []domain.FallbackRecord, stats domain.FallbackStats, opts RenderOptions) model {
	return model{
		records: records,
		stats:   stats,
		opts:    opts,
		styles:  newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.records, m.stats, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render draws the fallback diagnostics report as a string.
func Render(records []domain.FallbackRecord, stats domain.FallbackStats, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(records, stats, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
