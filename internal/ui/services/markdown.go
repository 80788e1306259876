package services

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for a terminal of the given width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders with glamour, caching one renderer per width.
type GlamourRenderer struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewGlamourRenderer uses the dark style; pass "auto" style through
// NewGlamourRendererWithStyle to detect the terminal background.
func NewGlamourRenderer() *GlamourRenderer {
	return NewGlamourRendererWithStyle("dark")
}

func NewGlamourRendererWithStyle(style string) *GlamourRenderer {
	return &GlamourRenderer{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	r, err := g.renderer(width)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

func (g *GlamourRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.renderers[width]; ok {
		return r, nil
	}
	style := glamour.WithStandardStyle(g.style)
	if g.style == "auto" {
		style = glamour.WithAutoStyle()
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	g.renderers[width] = r
	return r, nil
}

// RenderMarkdown renders content, falling back to the raw text when width
// is unknown or no renderer is set.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) (string, error) {
	if renderer == nil || width <= 0 {
		return content, nil
	}
	return renderer.Render(content, width)
}
