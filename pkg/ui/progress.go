package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// TransferMsg reports how many bytes of a transfer have been sent
type TransferMsg struct {
	Sent  int64
	Total int64
}

type transferDoneMsg struct{}

type transferModel struct {
	label string
	bar   progress.Model
	sent  int64
	total int64
}

func newTransferModel(label string) transferModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40
	return transferModel{label: label, bar: bar}
}

func (m transferModel) Init() tea.Cmd {
	return nil
}

func (m transferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TransferMsg:
		m.sent, m.total = msg.Sent, msg.Total
		return m, nil
	case transferDoneMsg:
		return m, tea.Quit
	case tea.WindowSizeMsg:
		width := msg.Width - 30
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil
	}
	return m, nil
}

func (m transferModel) View() string {
	return fmt.Sprintf("%s\n%s %s / %s\n",
		StyleInfo.Render(m.label),
		m.bar.ViewAs(m.percent()),
		FormatBytes(m.sent),
		FormatBytes(m.total),
	)
}

func (m transferModel) percent() float64 {
	if m.total <= 0 {
		return 0
	}
	p := float64(m.sent) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// TransferProgress draws a progress bar while a transfer runs
type TransferProgress struct {
	program *tea.Program
}

// NewTransferProgress creates a progress display writing to out
func NewTransferProgress(label string, out io.Writer) *TransferProgress {
	return &TransferProgress{
		program: tea.NewProgram(newTransferModel(label), tea.WithOutput(out), tea.WithInput(nil)),
	}
}

// Report updates the bar. Safe to call from the transfer goroutine.
func (t *TransferProgress) Report(sent, total int64) {
	t.program.Send(TransferMsg{Sent: sent, Total: total})
}

// Run executes work while the bar is displayed and returns work's error
func (t *TransferProgress) Run(work func() error) error {
	var workErr error
	go func() {
		workErr = work()
		t.program.Send(transferDoneMsg{})
	}()

	if _, err := t.program.Run(); err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}
	return workErr
}
