package scene

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a text message in bytes.
const DefaultMaxInputSize = 4096

// Notices for messages rejected by sanitizeInput.
const (
	NoticeTooLong    = "Your message is too long."
	NoticeUnreadable = "Sorry, this message could not be read."
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// sanitizeInput rejects oversized or malformed text and strips control
// characters other than newline, tab and carriage return.
func sanitizeInput(input string, limit int) (string, error) {
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func inputNotice(err error) string {
	if errors.Is(err, ErrInputTooLarge) {
		return NoticeTooLong
	}
	return NoticeUnreadable
}
