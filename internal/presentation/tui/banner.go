package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the storefront banner and version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   ___ _____ _  _   ___ _                ", "#34d399"},
		{"  / __|_   _| || | / __| |_ ___ _ _ ___  ", "#2dd4bf"},
		{" | (__  | | | __ | \\__ \\  _/ _ \\ '_/ -_) ", "#22d3ee"},
		{"  \\___| |_| |_||_| |___/\\__\\___/_| \\___| ", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  "+version).Faint())
	fmt.Fprintln(w)
}

// Button styles a keyboard button caption with its shortcut number.
func Button(n int, label string) string {
	p := termenv.ColorProfile()
	return fmt.Sprintf("%s %s",
		termenv.String(fmt.Sprintf("[#%d]", n)).Foreground(p.Color("#818cf8")).Bold(),
		label,
	)
}

// Notice styles a short system notice.
func Notice(text string) string {
	p := termenv.ColorProfile()
	return termenv.String(">>> " + text).Foreground(p.Color("#fbbf24")).String()
}
