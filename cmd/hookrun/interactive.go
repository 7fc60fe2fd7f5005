package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eatozee/xrpld-hooks/host"
	"github.com/eatozee/xrpld-hooks/ledger"
	"github.com/eatozee/xrpld-hooks/sha512h"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2B6CB0")).
			Padding(0, 1)

	acceptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	rollbackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// logBuffer collects hook trace lines emitted during a run.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) Sync() error { return nil }

func (b *logBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := strings.TrimSpace(b.buf.String())
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func (b *logBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type interactiveModel struct {
	filename string
	wasm     []byte
	store    *ledger.Store
	logs     *logBuffer

	outgoing bool
	result   *host.Result
	err      error

	trace viewport.Model
}

type runDoneMsg struct {
	res host.Result
	err error
}

func newInteractiveModel(filename string) (*interactiveModel, error) {
	wasm, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read hook: %w", err)
	}

	logs := &logBuffer{}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		logs,
		zap.DebugLevel,
	)
	host.SetLogger(zap.New(core))

	return &interactiveModel{
		filename: filename,
		wasm:     wasm,
		store:    ledger.NewMemStore(),
		logs:     logs,
		trace:    viewport.New(80, 16),
	}, nil
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.runHook
}

func (m *interactiveModel) runHook() tea.Msg {
	m.logs.Reset()

	account := ledger.AccountID{0xA0, 0x01}
	counterparty := ledger.AccountID{0xB0, 0x02}
	fees := ledger.Fees{Base: 10, ReserveBase: 10_000_000, ReserveIncrement: 2_000_000}

	if err := seedFixture(m.store, 10, fees, account, m.wasm); err != nil {
		return runDoneMsg{err: err}
	}

	from, to := counterparty, account
	if m.outgoing {
		from, to = account, counterparty
	}

	view := ledger.NewApplyView(m.store, 10, fees)
	res, err := host.Apply(context.Background(), view, host.Invocation{
		Account:  account,
		HookHash: sha512h.Half(m.wasm),
		Hook:     m.wasm,
		OtxnBlob: syntheticPayment(from, to),
	}, nil)
	return runDoneMsg{res: res, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.result = nil
			return m, m.runHook
		case "d":
			m.outgoing = !m.outgoing
			m.result = nil
			return m, m.runHook
		}
		var cmd tea.Cmd
		m.trace, cmd = m.trace.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.trace.Width = msg.Width - 2
		m.trace.Height = msg.Height - 12
		return m, nil

	case runDoneMsg:
		m.err = msg.err
		if msg.err == nil {
			res := msg.res
			m.result = &res
		}
		m.trace.SetContent(traceStyle.Render(strings.Join(m.logs.Lines(), "\n")))
		m.trace.GotoBottom()
		return m, nil
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hookrun · " + m.filename))
	b.WriteString("\n\n")

	direction := "incoming payment"
	if m.outgoing {
		direction = "outgoing payment"
	}
	b.WriteString("Trigger: " + direction + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(rollbackStyle.Render("Error: "+m.err.Error()) + "\n")
	case m.result == nil:
		b.WriteString("Running...\n")
	default:
		res := m.result
		style := rollbackStyle
		if res.ExitType.String() == "ACCEPT" {
			style = acceptStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s  code=%d  reason=%q",
			res.ExitType, res.ExitCode, res.ExitReason)) + "\n")
		b.WriteString(fmt.Sprintf("host calls: %d   state writes: %d   emitted: %d   commit: %s\n",
			res.InstructionCount, res.StateChangeCount, res.EmitCount, res.CommitResult))
	}

	b.WriteString("\nTrace:\n")
	b.WriteString(m.trace.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r: rerun · d: flip direction · ↑/↓: scroll · q: quit"))
	return b.String()
}

func runInteractive(filename string) error {
	model, err := newInteractiveModel(filename)
	if err != nil {
		return err
	}
	defer model.store.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
