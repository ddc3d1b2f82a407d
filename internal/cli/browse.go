package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/quake-report/internal/domain"
	"github.com/couchcryptid/quake-report/internal/pipeline"
	"github.com/couchcryptid/quake-report/internal/presenter"
)

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse recent earthquakes; Enter opens the event page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBrowse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) runBrowse(ctx context.Context, in io.Reader, out io.Writer) error {
	loader := a.newLoader(a.newMetrics(), nil)
	task, err := loader.Start(ctx)
	if err != nil {
		return err
	}

	m := newBrowseModel(ctx, loader, presenter.New(a.cfg.Location), newNavigator(a.startProcess, a.logger), task)
	return a.runProgram(ctx, m, in, out)
}

func runProgram(ctx context.Context, m browseModel, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Messages delivered to the model's update loop when a load finishes.
type (
	loadedMsg     struct{ result domain.Result }
	loadFailedMsg struct{ err error }
)

// waitForTask turns a pending load into a bubbletea command.
func waitForTask(ctx context.Context, task *pipeline.Task) tea.Cmd {
	return func() tea.Msg {
		result, err := task.Wait(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{result: result}
	}
}

// browseModel is the bubbletea model for the interactive earthquake list.
// Rows are recycled across loads.
type browseModel struct {
	ctx       context.Context
	loader    *pipeline.Loader
	presenter *presenter.Presenter
	navigator navigator
	pending   *pipeline.Task

	result  domain.Result
	rows    []presenter.Row
	loading bool
	loaded  bool
	err     error

	cursor int
	offset int
	height int
}

func newBrowseModel(ctx context.Context, loader *pipeline.Loader, p *presenter.Presenter, nav navigator, task *pipeline.Task) browseModel {
	return browseModel{
		ctx:       ctx,
		loader:    loader,
		presenter: p,
		navigator: nav,
		pending:   task,
		loading:   task != nil,
		height:    15,
	}
}

func (m browseModel) Init() tea.Cmd {
	if m.pending == nil {
		return nil
	}
	return waitForTask(m.ctx, m.pending)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.loaded = true
		m.pending = nil
		m.err = nil
		m.result = msg.result
		m.rows = m.presenter.FormatRows(msg.result.Earthquakes, m.rows)
		m.cursor, m.offset = 0, 0
	case loadFailedMsg:
		m.loading = false
		m.pending = nil
		m.err = msg.err
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if m.cursor < len(m.rows) {
				m.navigator.Navigate(m.rows[m.cursor].URL)
			}
		case "r":
			if m.loading {
				return m, nil
			}
			task, err := m.loader.Start(m.ctx)
			if err != nil {
				return m, nil
			}
			m.loading = true
			m.pending = task
			return m, waitForTask(m.ctx, task)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-7, 2)
		if m.cursor >= m.offset+m.height {
			m.offset = m.cursor - m.height + 1
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Recent Earthquakes"))
	b.WriteString("\n")
	b.WriteString(styleDim.Render("↑/↓ navigate  ⏎ open  r refresh  q quit"))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styleWarning.Render(fmt.Sprintf("%s %v", iconWarning, m.err)))
	case !m.loaded:
		b.WriteString(styleDim.Render("Loading earthquakes..."))
	case len(m.rows) == 0:
		b.WriteString(styleWarning.Render(m.result.EmptyState()))
	default:
		end := min(m.offset+m.height, len(m.rows))
		b.WriteString(renderTable(m.rows[m.offset:end], m.cursor-m.offset))
		b.WriteString("\n\n")
		status := fmt.Sprintf("  [%d/%d]  fetched %s", m.cursor+1, len(m.rows),
			m.presenter.FormatTime(m.result.FetchedAt.UnixMilli()))
		if m.loading {
			status += "  refreshing..."
		}
		b.WriteString(styleDim.Render(status))
	}
	b.WriteString("\n")
	return b.String()
}
