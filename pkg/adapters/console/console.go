// Package console drives the scene machine from a terminal. Views are
// printed as rendered markdown followed by numbered buttons; typing "#n"
// presses button n and any other line is sent as a text message.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/cthstore/storefront/internal/presentation/tui"
	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/domain"
)

// Renderer prints views to a writer and remembers the last keyboard.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	markdown func(string) (string, error)
	buttons  []domain.Button
	message  int
}

// NewRenderer creates a renderer writing to out. Markdown is rendered with
// glamour only when styled is set.
func NewRenderer(out io.Writer, styled bool) *Renderer {
	r := &Renderer{out: out}
	if styled {
		r.markdown = tui.NewRenderer()
	}
	return r
}

// Render prints the view. Every view counts as a new message.
func (r *Renderer) Render(ctx context.Context, target domain.Target, view domain.View) (domain.MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	text := view.Text
	if r.markdown != nil {
		if rendered, err := r.markdown(text); err == nil {
			text = rendered
		}
	}
	if view.Image != "" {
		text = "[image: " + view.Image + "]\n" + text
	}
	if _, err := fmt.Fprintln(r.out, strings.TrimRight(text, "\n")); err != nil {
		return domain.MessageRef{}, err
	}

	r.buttons = view.Keyboard.Buttons()
	n := 1
	for _, row := range view.Keyboard {
		cells := make([]string, 0, len(row))
		for _, b := range row {
			if r.markdown != nil {
				cells = append(cells, tui.Button(n, b.Label))
			} else {
				cells = append(cells, fmt.Sprintf("[#%d] %s", n, b.Label))
			}
			n++
		}
		fmt.Fprintln(r.out, "  "+strings.Join(cells, "   "))
	}

	r.message++
	return domain.MessageRef{ChatID: target.ChatID, MessageID: r.message}, nil
}

// Notify prints a notice line.
func (r *Renderer) Notify(ctx context.Context, target domain.Target, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markdown != nil {
		text = tui.Notice(text)
	} else {
		text = ">>> " + text
	}
	_, err := fmt.Fprintln(r.out, text)
	return err
}

// button returns the n-th button (1-based) of the last view.
func (r *Renderer) button(n int) (domain.Button, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 1 || n > len(r.buttons) {
		return domain.Button{}, 0, false
	}
	return r.buttons[n-1], r.message, true
}

// Session is one console conversation.
type Session struct {
	Machine  *scene.Machine
	Renderer *Renderer
	User     domain.User
	Version  string
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Run reads lines from in until EOF, "q", "quit", "exit" or ctx is done.
func (s *Session) Run(ctx context.Context, in io.Reader, interactive bool) error {
	if interactive {
		tui.PrintBanner(s.Renderer.out, s.Version)
	}
	base := domain.Target{ChatID: s.User.ID, UserID: s.User.ID}
	if err := s.Machine.Start(ctx, base, s.User); err != nil {
		return err
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		if interactive {
			fmt.Fprint(s.Renderer.out, "> ")
		}
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return err
		case line := <-lines:
			line = strings.TrimSpace(line)
			switch line {
			case "":
				continue
			case "q", "quit", "exit":
				return nil
			}
			if err := s.handle(ctx, base, line); err != nil {
				return err
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, base domain.Target, line string) error {
	if rest, ok := strings.CutPrefix(line, "#"); ok {
		n, err := strconv.Atoi(rest)
		b, msg, found := s.Renderer.button(n)
		if err != nil || !found {
			return s.Renderer.Notify(ctx, base, "No such button.")
		}
		t := base
		t.MessageID = msg
		return s.Machine.HandleCallback(ctx, t, b.Action.Encode())
	}
	return s.Machine.HandleText(ctx, base, line)
}
