// Package tui provides a read-only live view of the asset manifest.
//
// The view subscribes to manifest snapshots, so entries written by a
// concurrent resolve or relock run appear as they land.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shadowgov/artfetch/internal/core/domain"
	"github.com/shadowgov/artfetch/internal/core/ports/driven"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)
)

// snapshotMsg carries a manifest snapshot into the update loop.
type snapshotMsg []domain.ManifestEntry

// App is the bubbletea model for the manifest viewer.
type App struct {
	manifest driven.ManifestStore
	table    table.Model
	entries  []domain.ManifestEntry

	snapshots   chan []domain.ManifestEntry
	unsubscribe func()

	width  int
	height int
}

// NewApp creates the manifest viewer over a manifest store.
func NewApp(manifest driven.ManifestStore) (*App, error) {
	if manifest == nil {
		return nil, fmt.Errorf("tui: manifest store is required")
	}

	columns := []table.Column{
		{Title: "Key", Width: 32},
		{Title: "Provider", Width: 12},
		{Title: "Source", Width: 10},
		{Title: "Locked", Width: 6},
		{Title: "Credit", Width: 28},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(16),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	app := &App{
		manifest:  manifest,
		table:     t,
		snapshots: make(chan []domain.ManifestEntry, 8),
	}

	// The subscription replays the current snapshot immediately, so the
	// first waitForSnapshot command resolves right away.
	app.unsubscribe = manifest.Subscribe(func(entries []domain.ManifestEntry) {
		select {
		case app.snapshots <- entries:
		default:
			// Drop when the UI lags; the next snapshot supersedes it.
		}
	})

	return app, nil
}

// Init starts listening for manifest snapshots.
func (a *App) Init() tea.Cmd {
	return a.waitForSnapshot()
}

func (a *App) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		entries, ok := <-a.snapshots
		if !ok {
			return nil
		}
		return snapshotMsg(entries)
	}
}

// Update handles key presses and incoming snapshots.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			a.unsubscribe()
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetHeight(max(4, msg.Height-8))
	case snapshotMsg:
		a.entries = msg
		a.table.SetRows(rowsFor(msg))
		return a, a.waitForSnapshot()
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// View renders the table with the selected entry's URL underneath.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("artfetch manifest"))
	b.WriteString(fmt.Sprintf("  %d entries\n", len(a.entries)))
	b.WriteString(baseStyle.Render(a.table.View()))
	b.WriteString("\n")

	if cursor := a.table.Cursor(); cursor >= 0 && cursor < len(a.entries) {
		entry := a.entries[cursor]
		b.WriteString(detailStyle.Render("URL: " + entry.URL))
		b.WriteString("\n")
		if entry.License != "" {
			b.WriteString(detailStyle.Render("License: " + entry.License))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("↑/↓ navigate · q quit"))
	return b.String()
}

func rowsFor(entries []domain.ManifestEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		locked := ""
		if e.Locked {
			locked = "yes"
		}
		rows = append(rows, table.Row{e.Key, e.Provider, string(e.Source), locked, e.Credit})
	}
	return rows
}
