// Package captions turns timed transcript words into an ffmpeg drawtext
// filtergraph that burns one word at a time onto the video.
package captions

import (
	"fmt"
	"strconv"
	"strings"

	"caption/internal/transcript"
)

// Style selects how caption text is set off from the video underneath.
type Style string

const (
	// StyleBox draws each word over a semi-transparent black box.
	StyleBox Style = "box"
	// StyleShadow offsets a dark drop shadow behind each word instead.
	StyleShadow Style = "shadow"
)

// ParseStyle validates a configured style name.
func ParseStyle(value string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(value))) {
	case StyleBox:
		return StyleBox, nil
	case StyleShadow:
		return StyleShadow, nil
	default:
		return "", fmt.Errorf("unknown caption style %q", value)
	}
}

// Cue is one word scheduled for display over its spoken interval.
type Cue struct {
	Text    string
	StartMS uint64
	EndMS   uint64
}

// Program is a compiled caption track ready for filtergraph serialization.
type Program struct {
	Cues  []Cue
	Style Style
}

// Sanitize normalizes display text: uppercase, with commas, periods, and
// quote characters stripped. Applying it twice yields the same result.
func Sanitize(text string) string {
	upper := strings.ToUpper(text)
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '\'', '"':
			return -1
		}
		return r
	}, upper)
}

// Compile builds a caption program from transcript words. Words whose
// timestamps do not form a positive interval are skipped, as are words whose
// text sanitizes to nothing.
func Compile(words []transcript.Word, style Style) Program {
	program := Program{Style: style}
	for _, word := range words {
		if !word.Valid() {
			continue
		}
		text := Sanitize(word.Text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		program.Cues = append(program.Cues, Cue{
			Text:    text,
			StartMS: word.StartMS,
			EndMS:   word.EndMS,
		})
	}
	return program
}

// Empty reports whether the program has no cues to render.
func (p Program) Empty() bool {
	return len(p.Cues) == 0
}

// EndMS returns the end of the final cue, which bounds the caption track.
func (p Program) EndMS() uint64 {
	if len(p.Cues) == 0 {
		return 0
	}
	return p.Cues[len(p.Cues)-1].EndMS
}

// FilterGraph serializes the program into a comma-joined chain of drawtext
// filters. Colon escaping happens here, once, so cue text stays printable.
func (p Program) FilterGraph() string {
	if len(p.Cues) == 0 {
		return ""
	}
	var b strings.Builder
	for i, cue := range p.Cues {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("drawtext=text='")
		b.WriteString(escapeFilterText(cue.Text))
		b.WriteString("':fontsize=h/25:fontcolor=white")
		b.WriteString(":x=(w-text_w)/2:y=(h-text_h)/2")
		b.WriteString(":enable='between(t,")
		b.WriteString(formatSeconds(cue.StartMS))
		b.WriteByte(',')
		b.WriteString(formatSeconds(cue.EndMS))
		b.WriteString(")'")
		b.WriteString(styleClause(p.Style))
	}
	return b.String()
}

func styleClause(style Style) string {
	if style == StyleShadow {
		return ":shadowcolor=black@0.8:shadowx=2:shadowy=2"
	}
	return ":box=1:boxcolor=black@0.5:boxborderw=5"
}

// escapeFilterText escapes colons so sanitized text cannot terminate the
// drawtext option early or smuggle in additional filter options.
func escapeFilterText(text string) string {
	return strings.ReplaceAll(text, ":", `\:`)
}

func formatSeconds(ms uint64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', -1, 64)
}
