// Package speech narrates story text and returns audio as data URIs.
package speech

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrSpeechGeneration marks any failure to produce narration audio.
var ErrSpeechGeneration = errors.New("audio generation failed")

// ErrEmptyNarration is returned when nothing speakable is left after cleaning.
var ErrEmptyNarration = errors.New("nothing to narrate")

// Synthesizer turns narrative text into an audio data URI.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

var (
	markdownMarks   = regexp.MustCompile(`[*#_]`)
	stageDirections = regexp.MustCompile(`\[.*?\]`)
	sectionLabels   = regexp.MustCompile(`(?im)^[ \t]*(Introduction|Conclusion|Summary|Title|Concept|Titre|Résumé)\s*:`)
)

// CleanNarration strips markdown emphasis, bracketed directions and leading
// section labels so they are not read aloud.
func CleanNarration(text string) string {
	text = markdownMarks.ReplaceAllString(text, "")
	text = stageDirections.ReplaceAllString(text, "")
	text = sectionLabels.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
