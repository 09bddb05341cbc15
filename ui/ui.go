// Package ui provides the terminal interface for reading documents aloud.
package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/dgnsrekt/readaloud/internal/session"
	"github.com/dgnsrekt/readaloud/internal/watch"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
	keyEsc               = "esc"
)

// documentExtensions are the files the picker offers.
var documentExtensions = []string{".pdf", ".txt", ".docx"}

// Reader is the document session the UI drives.
type Reader interface {
	OpenFile(ctx context.Context, path string) error
	NextChunk() (string, error)
	ReadAll() (string, error)
	Stop()
	Snapshot() session.Snapshot
	OnChange(fn func(session.Snapshot))
}

// Speech exposes the speaking rate.
type Speech interface {
	Rate() float64
	FasterRate() float64
	SlowerRate() float64
	EngineName() string
}

// NewProgram returns a new Tea program. Session changes are delivered to
// the program as messages.
func NewProgram(cfg Config, reader Reader, speech Speech, logger *log.Logger) *tea.Program {
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("Starting readaloud", "path", cfg.Path, "watch", cfg.Watch, "engine", speech.EngineName())

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(newModel(cfg, reader, speech, logger), opts...)
	reader.OnChange(func(s session.Snapshot) {
		p.Send(snapshotMsg(s))
	})
	return p
}

type (
	snapshotMsg session.Snapshot

	openedMsg struct {
		path string
		size int64
		err  error
	}

	spokeMsg struct {
		text string
		err  error
	}

	fileChangedMsg struct{ path string }

	statusMessageTimeoutMsg struct{}
)

// state is the top-level application state.
type state int

const (
	stateShowPicker state = iota
	stateShowDocument
)

func (s state) String() string {
	return map[state]string{
		stateShowPicker:   "showing file picker",
		stateShowDocument: "showing document",
	}[s]
}

// Common stuff we'll need to access in all views.
type commonModel struct {
	cfg    Config
	cwd    string
	width  int
	height int
}

type model struct {
	common   *commonModel
	state    state
	fatalErr error
	logger   *log.Logger

	reader Reader
	speech Speech

	picker   filepicker.Model
	spinner  spinner.Model
	spinning bool

	snap    session.Snapshot
	path    string // document being read
	size    int64
	opening bool

	watcher *watch.Watcher

	showHelp           bool
	statusMessage      string
	statusIsError      bool
	statusMessageTimer *time.Timer
}

func newModel(cfg Config, reader Reader, speech Speech, logger *log.Logger) model {
	cwd, _ := os.Getwd()
	common := &commonModel{cfg: cfg, cwd: cwd}

	fp := filepicker.New()
	fp.AllowedTypes = documentExtensions
	fp.CurrentDirectory = cwd
	fp.ShowHidden = cfg.ShowHidden
	fp.AutoHeight = true

	m := model{
		common:  common,
		state:   stateShowPicker,
		logger:  logger,
		reader:  reader,
		speech:  speech,
		picker:  fp,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(speakingStyle)),
		snap:    reader.Snapshot(),
	}

	if cfg.Path == "" {
		return m
	}
	info, err := os.Stat(cfg.Path)
	if err != nil {
		logger.Error("unable to stat file", "file", cfg.Path, "error", err)
		m.fatalErr = err
		return m
	}
	if info.IsDir() {
		m.picker.CurrentDirectory = cfg.Path
		return m
	}
	m.state = stateShowDocument
	m.path = cfg.Path
	m.opening = true
	return m
}

func (m model) Init() tea.Cmd {
	m.logger.Debug("Init() called", "state", m.state)
	cmds := []tea.Cmd{m.picker.Init()}
	if m.state == stateShowDocument && m.opening {
		cmds = append(cmds, openFileCmd(m.reader, m.path), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			return m, m.quit()

		case "ctrl+z":
			return m, tea.Suspend

		case "q":
			return m, m.quit()
		}

		if m.state == stateShowDocument {
			return m.updateDocument(msg)
		}
		if msg.String() == keyEsc && m.path != "" {
			m.state = stateShowDocument
			return m, nil
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height

	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		if cmd := m.startSpinner(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case openedMsg:
		m.opening = false
		m.snap = m.reader.Snapshot()
		if msg.err != nil {
			if errors.Is(msg.err, session.ErrClosed) {
				return m, nil
			}
			m.logger.Error("unable to open document", "file", msg.path, "error", msg.err)
			return m, m.showStatusMessage(fmt.Sprintf("Could not open %s", filepath.Base(msg.path)), true)
		}
		m.size = msg.size
		if m.common.cfg.Watch {
			if cmd := m.watchDocument(msg.path); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case spokeMsg:
		if msg.err != nil {
			m.logger.Error("speech failed", "error", msg.err)
			return m, m.showStatusMessage("Speech failed: "+msg.err.Error(), true)
		}
		m.snap = m.reader.Snapshot()
		return m, nil

	case fileChangedMsg:
		if msg.path != m.watchedPath() {
			return m, nil
		}
		m.logger.Debug("document changed on disk", "file", msg.path)
		m.opening = true
		return m, tea.Batch(
			openFileCmd(m.reader, m.path),
			watchFileCmd(m.watcher),
			m.showStatusMessage("Reloaded", false),
			m.startSpinner(),
		)

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		m.statusIsError = false
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateShowPicker {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)

		if ok, path := m.picker.DidSelectFile(msg); ok {
			cmds = append(cmds, m.openDocument(path)...)
		} else if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
			cmds = append(cmds, m.showStatusMessage(
				fmt.Sprintf("%s is not a PDF, text or DOCX file", filepath.Base(path)), true))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateDocument(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ", "n", "right":
		return m, nextChunkCmd(m.reader)

	case "a":
		return m, readAllCmd(m.reader)

	case "s":
		return m, stopCmd(m.reader)

	case "+", "=":
		return m, m.showStatusMessage(fmt.Sprintf("Rate %.2fx", m.speech.FasterRate()), false)

	case "-", "_":
		return m, m.showStatusMessage(fmt.Sprintf("Rate %.2fx", m.speech.SlowerRate()), false)

	case "c":
		if m.snap.Preview == "" {
			return m, nil
		}
		// Copy using OSC 52
		termenv.Copy(m.snap.Preview)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(m.snap.Preview)
		return m, m.showStatusMessage("Copied preview", false)

	case "o", keyEsc:
		m.state = stateShowPicker
		if m.path != "" {
			m.picker.CurrentDirectory = filepath.Dir(m.path)
		}
		return m, m.picker.Init()

	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *model) openDocument(path string) []tea.Cmd {
	m.state = stateShowDocument
	m.path = path
	m.size = 0
	m.opening = true
	m.logger.Info("opening document", "file", path)
	return []tea.Cmd{openFileCmd(m.reader, path), m.startSpinner()}
}

// watchDocument makes sure the watcher follows path.
func (m *model) watchDocument(path string) tea.Cmd {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	if m.watcher != nil {
		if m.watcher.Path() == abs {
			return nil
		}
		_ = m.watcher.Close()
		m.watcher = nil
	}
	w, err := watch.New(abs, 0, m.logger)
	if err != nil {
		m.logger.Error("unable to watch document", "file", abs, "error", err)
		return nil
	}
	m.watcher = w
	return watchFileCmd(w)
}

func (m model) watchedPath() string {
	if m.watcher == nil {
		return ""
	}
	return m.watcher.Path()
}

func (m model) loading() bool {
	if m.opening {
		return true
	}
	switch m.snap.State {
	case session.StateOpeningFile, session.StateExtractingFast, session.StateExtractingBackground:
		return true
	}
	return m.snap.Speaking
}

func (m *model) startSpinner() tea.Cmd {
	if m.spinning || !m.loading() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m *model) showStatusMessage(msg string, isError bool) tea.Cmd {
	m.statusMessage = msg
	m.statusIsError = isError
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m model) quit() tea.Cmd {
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	return tea.Sequence(stopCmd(m.reader), tea.Quit)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}

	switch m.state { //nolint:exhaustive
	case stateShowDocument:
		return m.documentView()
	default:
		return m.pickerView()
	}
}

func errorView(err error, fatal bool) string {
	exitMsg := "press any key to "
	if fatal {
		exitMsg += "exit"
	} else {
		exitMsg += "return"
	}
	s := fmt.Sprintf("%s\n\n%v\n\n%s",
		errorTitleStyle.Render("ERROR"),
		err,
		subtleStyle.Render(exitMsg),
	)
	return "\n" + indent(s, 3)
}

// COMMANDS

func openFileCmd(r Reader, path string) tea.Cmd {
	return func() tea.Msg {
		info, err := os.Stat(path)
		if err != nil {
			return openedMsg{path: path, err: err}
		}
		err = r.OpenFile(context.Background(), path)
		return openedMsg{path: path, size: info.Size(), err: err}
	}
}

func nextChunkCmd(r Reader) tea.Cmd {
	return func() tea.Msg {
		text, err := r.NextChunk()
		return spokeMsg{text: text, err: err}
	}
}

func readAllCmd(r Reader) tea.Cmd {
	return func() tea.Msg {
		text, err := r.ReadAll()
		return spokeMsg{text: text, err: err}
	}
}

func stopCmd(r Reader) tea.Cmd {
	return func() tea.Msg {
		r.Stop()
		return nil
	}
}

func watchFileCmd(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-w.Changes():
			return fileChangedMsg{path: w.Path()}
		case <-w.Done():
			return nil
		}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// ETC

func stripAbsolutePath(fullPath, cwd string) string {
	fp, _ := filepath.EvalSymlinks(fullPath)
	cp, _ := filepath.EvalSymlinks(cwd)
	if fp == "" || cp == "" {
		return fullPath
	}
	return strings.ReplaceAll(fp, cp+string(os.PathSeparator), "")
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
