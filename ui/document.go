package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dgnsrekt/readaloud/internal/session"
)

const statusBarHeight = 1

func (m model) documentView() string {
	var b strings.Builder

	title := titleStyle.Render(m.documentName())
	if m.size > 0 {
		title += subtleStyle.Render(" · " + humanize.Bytes(uint64(m.size))) //nolint:gosec
	}
	fmt.Fprintln(&b, title)

	status := m.snap.Status
	if m.opening && m.snap.State == session.StateIdle {
		status = "Opening " + m.documentName()
	}
	if m.extracting() {
		status = m.spinner.View() + " " + status
	}
	fmt.Fprintln(&b, status)
	if m.snap.Progress != "" {
		fmt.Fprintln(&b, progressStyle.Render(m.snap.Progress))
	}
	if m.snap.Err != nil && m.snap.State != session.StateFailed {
		fmt.Fprintln(&b, statusBarErrorStyle(" "+m.snap.Err.Error()+" "))
	}
	if m.snap.SpeechErr != nil {
		fmt.Fprintln(&b, statusBarErrorStyle(" Speech: "+m.snap.SpeechErr.Error()+" "))
	}
	fmt.Fprintln(&b)

	if m.snap.Preview != "" {
		fmt.Fprintln(&b, previewStyle.Render(wordwrap.String(m.snap.Preview, m.previewWidth())))
	} else {
		fmt.Fprintln(&b, subtleStyle.Render("Press space to hear the next words."))
	}
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, m.speakingView())

	body := indent(b.String(), 2)

	help := ""
	if m.showHelp {
		help = "\n" + m.helpView()
	}

	// Push the status bar to the bottom.
	used := strings.Count(body, "\n") + statusBarHeight + strings.Count(help, "\n")
	if pad := m.common.height - used; pad > 0 {
		body += strings.Repeat("\n", pad)
	}

	var out strings.Builder
	out.WriteString(body)
	m.statusBarView(&out)
	out.WriteString(help)
	return out.String()
}

func (m model) pickerView() string {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("Pick a document"))
	fmt.Fprintln(&b, subtleStyle.Render(stripAbsolutePath(m.picker.CurrentDirectory, m.common.cwd)))
	fmt.Fprintln(&b)
	b.WriteString(m.picker.View())

	s := indent(b.String(), 2)
	if m.statusMessage != "" {
		s += "\n" + m.statusMessageView(m.statusMessage)
	}
	return s
}

func (m model) speakingView() string {
	var s string
	if m.snap.Speaking {
		s = speakingStyle.Render("● Speaking")
	} else {
		s = silentStyle.Render("○ Silent")
	}
	if m.snap.Words > 0 {
		pos := fmt.Sprintf("  word %s of %s",
			humanize.Comma(int64(m.snap.Cursor)+1), humanize.Comma(int64(m.snap.Words)))
		if !m.snap.Complete {
			pos += "+"
		}
		s += subtleStyle.Render(pos)
	}
	return s
}

func (m model) statusBarView(b *strings.Builder) {
	logo := logoStyle.Render(" readaloud ")

	rate := statusBarRateStyle(fmt.Sprintf(" %.2fx %s ", m.speech.Rate(), m.speech.EngineName()))
	helpNote := statusBarHelpStyle(" ? Help ")

	note := m.snap.Status
	if m.statusMessage != "" {
		note = m.statusMessage
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(rate)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	style := statusBarNoteStyle
	if m.statusMessage != "" {
		style = statusBarMessageStyle
		if m.statusIsError {
			style = statusBarErrorStyle
		}
	}
	note = style(note)

	// Empty space
	padding := max(0,
		m.common.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(rate)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := style(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		rate,
		helpNote,
	)
}

func (m model) statusMessageView(msg string) string {
	if m.statusIsError {
		return statusBarErrorStyle(" " + msg + " ")
	}
	return statusBarMessageStyle(" " + msg + " ")
}

func (m model) helpView() (s string) {
	col1 := []string{
		"space/n  next words",
		"a        read everything",
		"s        stop",
		"c        copy preview",
	}
	col2 := []string{
		"+/-    faster/slower",
		"o/esc  open another file",
		"?      close help",
		"q      quit",
	}

	s += "\n"
	for i := range col1 {
		s += col1[i] + strings.Repeat(" ", max(0, 24-runewidth.StringWidth(col1[i]))) + col2[i] + "\n"
	}
	s = indent(strings.TrimSuffix(s, "\n"), 2)

	// Fill up empty cells with spaces for background coloring
	if m.common.width > 0 {
		lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
		for i := 0; i < len(lines); i++ {
			l := runewidth.StringWidth(lines[i])
			n := max(m.common.width-l, 0)
			lines[i] += strings.Repeat(" ", n)
		}

		s = strings.Join(lines, "\n")
	}

	return helpViewStyle(s)
}

func (m model) documentName() string {
	if m.snap.Name != "" {
		return m.snap.Name
	}
	return filepath.Base(m.path)
}

func (m model) extracting() bool {
	switch m.snap.State {
	case session.StateOpeningFile, session.StateExtractingFast, session.StateExtractingBackground:
		return true
	}
	return m.opening
}

func (m model) previewWidth() int {
	w := int(m.common.cfg.PreviewWidth) //nolint:gosec
	if avail := m.common.width - 6; avail > 0 && (w == 0 || w > avail) {
		w = avail
	}
	if w <= 0 {
		w = 72
	}
	return w
}
