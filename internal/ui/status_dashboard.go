package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"syncbench/internal/controlplane"
)

const statusRefreshInterval = 2 * time.Second

// StatusCallbacks supplies the dashboard's data. Keeping the fetch behind a
// callback lets the command wire any control plane backend in.
type StatusCallbacks struct {
	GetWorkloads func() ([]controlplane.Status, error)
}

type statusTickMsg time.Time
type statusRefreshedMsg []controlplane.Status
type statusErrMsg struct{ err error }

// StatusDashboardModel is a live view of the benchmark workloads, refreshed
// on a fixed tick.
type StatusDashboardModel struct {
	table      table.Model
	callbacks  StatusCallbacks
	workloads  []controlplane.Status
	lastUpdate time.Time
	err        error
	width      int
	height     int
}

// NewStatusDashboardModel builds the dashboard model.
func NewStatusDashboardModel(callbacks StatusCallbacks) StatusDashboardModel {
	columns := []table.Column{
		{Title: "NAME", Width: 28},
		{Title: "PHASE", Width: 12},
		{Title: "HEALTHY", Width: 8},
		{Title: "MESSAGE", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return StatusDashboardModel{table: t, callbacks: callbacks}
}

func (m StatusDashboardModel) Init() tea.Cmd {
	return tea.Batch(
		refreshWorkloadsCmd(m.callbacks.GetWorkloads),
		tea.Tick(statusRefreshInterval, func(t time.Time) tea.Msg {
			return statusTickMsg(t)
		}),
	)
}

func (m StatusDashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(m.width)
		m.table.SetHeight(m.height - 6)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, refreshWorkloadsCmd(m.callbacks.GetWorkloads)
		}

	case statusTickMsg:
		return m, tea.Batch(
			refreshWorkloadsCmd(m.callbacks.GetWorkloads),
			tea.Tick(statusRefreshInterval, func(t time.Time) tea.Msg {
				return statusTickMsg(t)
			}),
		)

	case statusRefreshedMsg:
		m.workloads = msg
		m.lastUpdate = time.Now()
		m.err = nil
		m.table.SetRows(workloadRows(m.workloads))
		return m, nil

	case statusErrMsg:
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m StatusDashboardModel) View() string {
	view := titleStyle.Render("syncbench workloads") + "\n\n"
	if m.err != nil {
		view += errorStyle.Render(fmt.Sprintf("refresh failed: %v", m.err)) + "\n\n"
	}
	view += m.table.View() + "\n"
	if !m.lastUpdate.IsZero() {
		view += helpStyle.Render(fmt.Sprintf("updated %s  •  q quit, r refresh", m.lastUpdate.Format("15:04:05")))
	} else {
		view += helpStyle.Render("loading...  •  q quit, r refresh")
	}
	return view
}

func refreshWorkloadsCmd(fetch func() ([]controlplane.Status, error)) tea.Cmd {
	return func() tea.Msg {
		statuses, err := fetch()
		if err != nil {
			return statusErrMsg{err: err}
		}
		return statusRefreshedMsg(statuses)
	}
}

func workloadRows(statuses []controlplane.Status) []table.Row {
	rows := make([]table.Row, 0, len(statuses))
	for _, st := range statuses {
		healthy := "no"
		if st.Healthy {
			healthy = "yes"
		}
		rows = append(rows, table.Row{st.Name, string(st.Phase), healthy, st.Message})
	}
	return rows
}

// RenderStatusTable is the non-interactive rendering used when stdout is
// not a terminal or --watch is off.
func RenderStatusTable(statuses []controlplane.Status) string {
	out := fmt.Sprintf("%-28s %-12s %-8s %s\n", "NAME", "PHASE", "HEALTHY", "MESSAGE")
	for _, st := range statuses {
		healthy := "no"
		if st.Healthy {
			healthy = "yes"
		}
		out += fmt.Sprintf("%-28s %-12s %-8s %s\n", st.Name, st.Phase, healthy, st.Message)
	}
	return out
}
