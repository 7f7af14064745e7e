// Package crest renders deterministic SVG crests for fantasy teams.
// The same team name always produces the same crest, so results are
// safe to cache indefinitely.
package crest

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

// palette pairs a shield fill with a readable trim color.
var palette = [][2]string{
	{"#0f2d5c", "#dce9ff"},
	{"#0b5730", "#e7f7eb"},
	{"#6d1a36", "#ffe3ec"},
	{"#4a2c70", "#ece3ff"},
	{"#8a4b08", "#ffeccc"},
	{"#143d3d", "#d8f3f0"},
	{"#333333", "#f0f0f0"},
	{"#1b4f72", "#d6eaf8"},
}

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(_ context.Context, teamName string) (string, error) {
	name := strings.TrimSpace(teamName)
	if name == "" {
		return "", fmt.Errorf("team name must not be empty")
	}

	hash := fnv.New32a()
	_, _ = hash.Write([]byte(strings.ToLower(name)))
	seed := hash.Sum32()

	colors := palette[seed%uint32(len(palette))]
	initials := teamInitials(name)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(`<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 256 256'>`)
	_, _ = fmt.Fprintf(buf, `<path d='M128 16 224 48 v96 q0 64 -96 96 q-96 -32 -96 -96 V48 Z' fill='%s'/>`, colors[0])
	_, _ = fmt.Fprintf(buf, `<path d='M128 36 204 62 v82 q0 50 -76 76 q-76 -26 -76 -76 V62 Z' fill='none' stroke='%s' stroke-width='6'/>`, colors[1])
	_, _ = fmt.Fprintf(buf,
		`<text x='128' y='152' text-anchor='middle' fill='white' font-family='Arial, sans-serif' font-size='72' font-weight='700'>%s</text>`,
		initials,
	)
	_, _ = buf.WriteString(`</svg>`)

	return buf.String(), nil
}

func teamInitials(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "FC"
	}
	if len(parts) == 1 {
		up := strings.ToUpper(parts[0])
		if len(up) <= 2 {
			return up
		}
		return up[:2]
	}

	return strings.ToUpper(parts[0][:1] + parts[1][:1])
}
