// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/internal/service"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const (
	historyLimit    = 50
	noDatasetNotice = "No data yet. Create a profile: profile <name> <height> <weight> <calories>"
	openingNotice   = "Loading your data..."
	hotKeys         = "enter: run · ↑/↓: history · esc: clear · help: commands"
)

// appModel is the main screen: a dashboard of the session dataset above a
// command line.
type appModel struct {
	ctx       context.Context
	session   service.DatasetSession
	datasets  service.ClientDatasetService
	transfer  service.ClientTransferService
	clock     clock.Clock
	location  *time.Location
	buildInfo models.AppBuildInfo
	logger    *logger.Logger

	readFile  func(name string) ([]byte, error)
	writeFile func(name string, data []byte) error
	copyText  func(text string) error

	input   textinput.Model
	history []string
	histPos int

	dataset       models.Dataset
	hasDataset    bool
	status        models.SyncStatus
	notice        string
	errMsg        string
	warning       string
	pending       *importPreviewMsg
	showBuildInfo bool
	opening       bool
}

func newAppModel(
	ctx context.Context,
	session service.DatasetSession,
	datasets service.ClientDatasetService,
	transfer service.ClientTransferService,
	clk clock.Clock,
	buildInfo models.AppBuildInfo,
	logger *logger.Logger,
) appModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "type a command, help lists them"
	in.CharLimit = 512
	in.Focus()

	m := appModel{
		ctx:       ctx,
		session:   session,
		datasets:  datasets,
		transfer:  transfer,
		clock:     clk,
		location:  time.Local,
		buildInfo: buildInfo,
		logger:    logger,
		readFile:  os.ReadFile,
		writeFile: func(name string, data []byte) error {
			return os.WriteFile(name, data, 0o600)
		},
		copyText: clipboard.WriteAll,
		input:    in,
		opening:  true,
	}
	m.dataset, m.hasDataset = session.Dataset()
	m.status = session.Status()

	return m
}

// withOpenResult ends the loading state and sets the first notice from the
// initialization outcome.
func (m appModel) withOpenResult(res service.OpenResult) appModel {
	m.opening = false
	switch res.Source {
	case service.SourceNone:
		m.notice = noDatasetNotice
	case service.SourceRemote:
		m.notice = "Loaded from server"
	}
	if res.RemoteErr != nil {
		m.warning = "Working offline: " + humanizeError(res.RemoteErr)
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionEventMsg:
		return m.applyEvent(msg.event), nil

	case openResultMsg:
		return m.withOpenResult(msg.result), nil

	case commandDoneMsg:
		if msg.err != nil {
			m.logger.Warn().Err(msg.err).Str("func", "appModel.Update").Msg("command failed")
			m.errMsg = humanizeError(msg.err)
			m.notice = ""
			return m, nil
		}
		m.errMsg = ""
		m.notice = msg.notice
		return m, nil

	case importPreviewMsg:
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.pending = &msg
		m.errMsg = ""
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	if m.showBuildInfo {
		if key.Matches(msg, keys.esc) {
			m.showBuildInfo = false
		}
		return m, nil
	}

	if m.pending != nil {
		return m.updateImportConfirm(msg)
	}

	switch {
	case key.Matches(msg, keys.enter):
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if line == "" {
			return m, nil
		}
		m.pushHistory(line)
		return m.execute(line)

	case key.Matches(msg, keys.esc):
		m.input.Reset()
		m.errMsg, m.notice, m.warning = "", "", ""
		return m, nil

	case key.Matches(msg, keys.up):
		m.recall(-1)
		return m, nil

	case key.Matches(msg, keys.down):
		m.recall(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateImportConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		data := m.pending.data
		m.pending = nil
		return m, m.confirmImport(data)

	case key.Matches(msg, keys.no):
		m.pending = nil
		m.notice = "Import cancelled"
	}
	return m, nil
}

// execute runs one command line.
func (m appModel) execute(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "exit" {
		name = "quit"
	}

	m.errMsg, m.notice = "", ""

	c, ok := commands[name]
	if !ok {
		m.errMsg = humanizeError(fmt.Errorf("%s: %w", name, errUnknownCommand))
		return m, nil
	}

	cmd, err := c.run(&m, args)
	if err != nil {
		m.errMsg = humanizeError(err)
		return m, nil
	}
	return m, cmd
}

func (m appModel) applyEvent(e service.Event) appModel {
	switch e.Kind {
	case service.EventDataset:
		m.dataset = e.Dataset
		m.hasDataset = true
		if m.notice == noDatasetNotice {
			m.notice = ""
		}
	case service.EventStatus:
		m.status = e.Status
	case service.EventNoDataset:
		m.dataset = models.Dataset{}
		m.hasDataset = false
		m.opening = false
		m.notice = noDatasetNotice
	case service.EventLocalWarning:
		m.warning = "Not saved to device: " + humanizeError(e.Err)
	}
	return m
}

func (m *appModel) pushHistory(line string) {
	m.history = append(m.history, line)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
	m.histPos = len(m.history)
}

// recall moves through the command history; past the newest entry the
// line is cleared.
func (m *appModel) recall(step int) {
	pos := m.histPos + step
	if pos < 0 || pos > len(m.history) {
		return
	}
	m.histPos = pos

	if pos == len(m.history) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[pos])
	m.input.CursorEnd()
}

func (m appModel) today() string {
	return clock.Today(m.clock.Now(), m.location)
}

func (m appModel) View() string {
	if m.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(m.buildInfo))
	}

	body := noDatasetNotice
	switch {
	case m.hasDataset && m.dataset.Profile != nil:
		body = renderDashboard(m.dataset, m.today())
	case m.opening:
		body = openingNotice
	}

	var b strings.Builder
	b.WriteString(renderPage(titleStyle.Render("NutriLife")+"  "+statusBadge(m.status), body, hotKeys))
	b.WriteString("\n\n")

	if m.warning != "" {
		b.WriteString(warningStyle.Render(m.warning))
		b.WriteString("\n")
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	}
	if m.notice != "" && m.notice != body {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	if m.pending != nil {
		b.WriteString(m.renderImportConfirm(*m.pending))
	} else {
		b.WriteString(m.input.View())
	}

	return appStyle.Render(b.String())
}

func (m appModel) renderImportConfirm(p importPreviewMsg) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Replace all data with %s?\n", p.path)
	if p.doc.User != "" {
		fmt.Fprintf(&b, "  user: %s\n", p.doc.User)
	}
	if p.doc.Timestamp > 0 {
		fmt.Fprintf(&b, "  exported: %s\n", time.UnixMilli(p.doc.Timestamp).In(m.location).Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "  %d logs, %d weight samples, %d presets\n",
		len(p.doc.Logs), len(p.doc.WeightHistory), len(p.doc.PresetFoods))
	b.WriteString(helpStyle.Render("y: replace · n: cancel"))

	return overlayBoxStyle.Render(b.String())
}
