package telegram

import (
	"fmt"
	"strings"

	gte "github.com/igor-pavlenko/goldmark-telegram/extension"
	gteast "github.com/igor-pavlenko/goldmark-telegram/extension/ast"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	tele "gopkg.in/telebot.v4"
)

var markdown = goldmark.New(goldmark.WithExtensions(gte.GTE))

// toEntities converts view markdown into plain text plus Telegram message
// entities, so no parse mode escaping is needed.
func toEntities(src string) (string, tele.Entities) {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	w := &entityWriter{source: source}
	w.walk(doc)

	out := strings.TrimRight(w.buf.String(), "\n")
	if len(w.entities) == 0 {
		return out, nil
	}
	return out, w.entities
}

type entityWriter struct {
	source   []byte
	buf      strings.Builder
	entities tele.Entities
	offset   int // UTF-16 code units written so far
	ordinal  int // next ordered list number, 0 inside unordered lists
}

func (w *entityWriter) write(s string) {
	w.buf.WriteString(s)
	w.offset += utf16Len(s)
}

// separate starts a new block after a blank line.
func (w *entityWriter) separate() {
	s := w.buf.String()
	switch {
	case s == "", strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		w.write("\n")
	default:
		w.write("\n\n")
	}
}

func (w *entityWriter) newline() {
	if s := w.buf.String(); s != "" && !strings.HasSuffix(s, "\n") {
		w.write("\n")
	}
}

// span walks n's children and marks what they wrote with an entity.
func (w *entityWriter) span(n ast.Node, typ tele.EntityType, url string) {
	start := w.offset
	w.children(n)
	if length := w.offset - start; length > 0 {
		w.entities = append(w.entities, tele.MessageEntity{
			Type:   typ,
			Offset: start,
			Length: length,
			URL:    url,
		})
	}
}

func (w *entityWriter) lines(n ast.Node) {
	start := w.offset
	lines := n.Lines()
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.source))
	}
	w.write(strings.TrimSuffix(b.String(), "\n"))
	if length := w.offset - start; length > 0 {
		w.entities = append(w.entities, tele.MessageEntity{
			Type:   tele.EntityCodeBlock,
			Offset: start,
			Length: length,
		})
	}
}

func (w *entityWriter) walk(node ast.Node) {
	switch n := node.(type) {
	case *ast.Document, *ast.TextBlock:
		w.children(n)

	case *ast.Paragraph:
		w.separate()
		w.children(n)

	case *ast.Heading:
		w.separate()
		w.span(n, tele.EntityBold, "")

	case *ast.Blockquote:
		w.separate()
		w.span(n, tele.EntityBlockquote, "")

	case *ast.List:
		w.newline()
		saved := w.ordinal
		w.ordinal = 0
		if n.IsOrdered() {
			w.ordinal = max(n.Start, 1)
		}
		w.children(n)
		w.ordinal = saved

	case *ast.ListItem:
		w.newline()
		if w.ordinal > 0 {
			w.write(fmt.Sprintf("%d. ", w.ordinal))
			w.ordinal++
		} else {
			w.write("• ")
		}
		w.children(n)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.separate()
		w.lines(n)

	case *ast.Emphasis:
		typ := tele.EntityItalic
		if n.Level == 2 {
			typ = tele.EntityBold
		}
		w.span(n, typ, "")

	case *ast.CodeSpan:
		start := w.offset
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				w.write(string(t.Segment.Value(w.source)))
			}
		}
		if length := w.offset - start; length > 0 {
			w.entities = append(w.entities, tele.MessageEntity{Type: tele.EntityCode, Offset: start, Length: length})
		}

	case *ast.Link:
		w.span(n, tele.EntityTextLink, string(n.Destination))

	case *ast.AutoLink:
		w.write(string(n.URL(w.source)))

	case *ast.Text:
		w.write(string(n.Segment.Value(w.source)))
		if n.HardLineBreak() || n.SoftLineBreak() {
			w.write("\n")
		}

	case *ast.String:
		w.write(string(n.Value))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			w.write(string(seg.Value(w.source)))
		}

	default:
		switch node.Kind() {
		case east.KindStrikethrough:
			w.span(node, tele.EntityStrikethrough, "")
		case gteast.KindUnderline:
			w.span(node, tele.EntityUnderline, "")
		default:
			w.children(node)
		}
	}
}

func (w *entityWriter) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.walk(c)
	}
}

// utf16Len is the length of s in UTF-16 code units, the unit of entity offsets.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
