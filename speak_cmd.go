package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/readaloud/internal/session"
	"github.com/dgnsrekt/readaloud/tts"
)

var chunked bool

var speakCmd = &cobra.Command{
	Use:   "speak FILE",
	Short: "Read a document aloud without the TUI",
	Long: paragraph(fmt.Sprintf("\n%s a document from start to end and exit. With --chunks the text is spoken ten words at a time and each chunk is printed as it is read.",
		keyword("Speak"))),
	Example: paragraph("readaloud speak report.pdf\nreadaloud speak --chunks --engine gtts notes.txt"),
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sess, ctrl, closer, err := newReader(speechConfig)
		if err != nil {
			return err
		}
		defer closer()

		if err := sess.OpenFile(ctx, args[0]); err != nil {
			return err
		}
		// Playback starts once every page is in.
		parsed := make(chan struct{})
		go func() {
			sess.Wait()
			close(parsed)
		}()
		select {
		case <-parsed:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := sess.Snapshot().Err; err != nil {
			log.Warn("Document only partly read", "err", err)
		}

		out := cmd.OutOrStdout()
		if chunked {
			return speakChunks(ctx, sess, ctrl, out)
		}
		return speakAll(ctx, sess, ctrl, out)
	},
}

func init() {
	speakCmd.Flags().BoolVarP(&chunked, "chunks", "c", false, "speak ten words at a time, printing each chunk")
}

// reader is the part of the session headless playback needs.
type reader interface {
	NextChunk() (string, error)
	ReadAll() (string, error)
	Snapshot() session.Snapshot
}

// speaker is the part of the controller headless playback needs.
type speaker interface {
	Done() <-chan struct{}
	Stop()
}

// speakChunks speaks the document one chunk at a time until the cursor
// wraps back to the first word.
func speakChunks(ctx context.Context, r reader, s speaker, w io.Writer) error {
	total := r.Snapshot().Words
	tty := isTerminal(w)

	for {
		text, err := r.NextChunk()
		if err != nil {
			return err
		}

		snap := r.Snapshot()
		if tty {
			read := snap.Cursor
			if read == 0 {
				read = total
			}
			fmt.Fprintf(w, "%s %s\n", keyword(fmt.Sprintf("[%d/%d]", read, total)), text)
		} else {
			fmt.Fprintln(w, text)
		}

		if err := waitSpoken(ctx, r, s); err != nil {
			return err
		}
		if snap.Cursor == 0 {
			return nil
		}
	}
}

// speakAll speaks the whole document as one utterance.
func speakAll(ctx context.Context, r reader, s speaker, w io.Writer) error {
	text, err := r.ReadAll()
	if err != nil {
		return err
	}
	if isTerminal(w) {
		fmt.Fprintln(w, keyword(fmt.Sprintf("Reading %d words…", r.Snapshot().Words)))
	} else {
		fmt.Fprintln(w, text)
	}
	return waitSpoken(ctx, r, s)
}

func waitSpoken(ctx context.Context, r reader, s speaker) error {
	select {
	case <-s.Done():
	case <-ctx.Done():
		s.Stop()
		return ctx.Err()
	}
	if err := r.Snapshot().SpeechErr; err != nil {
		if errors.Is(err, tts.ErrEngineNotAvailable) {
			return fmt.Errorf("no speech engine: %w", err)
		}
		return err
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec
}
