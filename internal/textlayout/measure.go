// Package textlayout measures and wraps label text so bound labels can be
// re-flowed inside their container after a resize.
package textlayout

import (
	"log/slog"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultLineHeight is the line height multiplier used when a text element has none.
const DefaultLineHeight = 1.25

// maxCachedFaces bounds the face cache; drags produce many distinct sizes.
const maxCachedFaces = 64

// Measurer measures text with the Go regular font.
type Measurer struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewMeasurer parses the embedded font. If parsing fails it falls back to
// the fixed 7x13 bitmap metrics scaled to the requested size.
func NewMeasurer() *Measurer {
	m := &Measurer{faces: make(map[float64]font.Face)}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		slog.Warn("parse label font, using bitmap metrics", "error", err)
		return m
	}
	m.font = f
	return m
}

// face returns the cached face for size. m.mu must be held: opentype faces
// keep scratch buffers and are not safe for concurrent use.
func (m *Measurer) face(size float64) (font.Face, bool) {
	if m.font == nil {
		return basicfont.Face7x13, false
	}

	key := math.Round(size*100) / 100
	if f, ok := m.faces[key]; ok {
		return f, true
	}
	f, err := opentype.NewFace(m.font, &opentype.FaceOptions{
		Size:    key,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		slog.Warn("create label face", "error", err, "size", key)
		return basicfont.Face7x13, false
	}
	if len(m.faces) >= maxCachedFaces {
		m.evictLocked()
	}
	m.faces[key] = f
	return f, true
}

func (m *Measurer) evictLocked() {
	for size, f := range m.faces {
		if err := f.Close(); err != nil {
			slog.Warn("close label face", "error", err, "size", size)
		}
	}
	clear(m.faces)
}

// LineWidth returns the advance width of a single line at fontSize.
func (m *Measurer) LineWidth(line string, fontSize float64) float64 {
	if fontSize <= 0 || line == "" {
		return 0
	}
	m.mu.Lock()
	face, scalable := m.face(fontSize)
	w := float64(font.MeasureString(face, line)) / 64
	m.mu.Unlock()
	if !scalable {
		w *= fontSize / float64(basicfont.Face7x13.Height)
	}
	return w
}

// Measure returns the width of the widest line and the total height.
func (m *Measurer) Measure(text string, fontSize, lineHeight float64) (float64, float64) {
	if lineHeight <= 0 {
		lineHeight = DefaultLineHeight
	}
	lines := strings.Split(text, "\n")
	var width float64
	for _, line := range lines {
		width = max(width, m.LineWidth(line, fontSize))
	}
	return width, float64(len(lines)) * fontSize * lineHeight
}

// Wrap breaks text so no line is wider than maxWidth. Existing line breaks
// are kept. Words wider than maxWidth are split between runes.
func (m *Measurer) Wrap(text string, fontSize, maxWidth float64) string {
	if maxWidth <= 0 || fontSize <= 0 {
		return text
	}

	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		out = append(out, m.wrapParagraph(paragraph, fontSize, maxWidth)...)
	}
	return strings.Join(out, "\n")
}

func (m *Measurer) wrapParagraph(paragraph string, fontSize, maxWidth float64) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.LineWidth(candidate, fontSize) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if m.LineWidth(word, fontSize) <= maxWidth {
			current = word
			continue
		}
		pieces := m.breakWord(word, fontSize, maxWidth)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	return append(lines, current)
}

func (m *Measurer) breakWord(word string, fontSize, maxWidth float64) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		next := i + size
		// always keep at least one rune per piece
		if i > start && m.LineWidth(word[start:next], fontSize) > maxWidth {
			pieces = append(pieces, word[start:i])
			start = i
		}
		i = next
	}
	return append(pieces, word[start:])
}
