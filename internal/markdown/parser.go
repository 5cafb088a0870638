package markdown

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

var ErrNoSubject = errors.New("document has no subject")

// Document is a rendered message: the frontmatter subject and the HTML body.
type Document struct {
	Subject string
	HTML    string
}

type documentMeta struct {
	Subject string `yaml:"subject"`
}

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&frontmatter.Extender{},
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)

	return &Parser{
		md: md,
	}
}

func (p *Parser) Parse(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render converts a Markdown document whose frontmatter carries a subject.
func (p *Parser) Render(source []byte) (*Document, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer

	err := p.md.Convert(source, &buf, parser.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var meta documentMeta
	if data := frontmatter.Get(ctx); data != nil {
		err = data.Decode(&meta)
		if err != nil {
			return nil, err
		}
	}
	meta.Subject = strings.TrimSpace(meta.Subject)
	if meta.Subject == "" {
		return nil, ErrNoSubject
	}

	return &Document{Subject: meta.Subject, HTML: buf.String()}, nil
}

var escaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`, `{`, `\{`, `}`, `\}`,
	`[`, `\[`, `]`, `\]`, `<`, `\<`, `>`, `\>`, `(`, `\(`, `)`, `\)`,
	`#`, `\#`, `+`, `\+`, `-`, `\-`, `.`, `\.`, `!`, `\!`, `|`, `\|`,
	"\n", " ", "\r", " ",
)

// Escape makes user text render literally inside Markdown, including
// inside table cells.
func Escape(s string) string {
	return escaper.Replace(s)
}
