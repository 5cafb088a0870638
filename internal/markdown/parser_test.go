package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := NewParser()

	doc, err := p.Render([]byte("---\nsubject: \"Hello\"\n---\n# Title\n\nBody"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Subject)
	assert.Contains(t, doc.HTML, "<h1>Title</h1>")
	assert.NotContains(t, doc.HTML, "subject")
}

func TestRenderRequiresSubject(t *testing.T) {
	p := NewParser()

	_, err := p.Render([]byte("# No frontmatter"))
	assert.ErrorIs(t, err, ErrNoSubject)

	_, err = p.Render([]byte("---\nsubject: \"  \"\n---\nBody"))
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestEscapeRendersLiterally(t *testing.T) {
	p := NewParser()

	html, err := p.Parse([]byte("Name: " + Escape("*bold* [x](javascript:alert(1)) <b>")))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<em>")
	assert.NotContains(t, string(html), "<a ")
	assert.NotContains(t, string(html), "<b>")
	assert.Contains(t, string(html), "*bold*")
}
