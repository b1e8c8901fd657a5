// Package transcript defines the word timing value type shared by the
// transcription client and the caption overlay compiler.
package transcript

// Word is a single transcript token with its millisecond timing bounds.
// Words are immutable once produced; StartMS < EndMS holds for every valid word.
type Word struct {
	Text    string
	StartMS uint64
	EndMS   uint64
}

// Valid reports whether the word has a non-degenerate visibility window.
func (w Word) Valid() bool {
	return w.StartMS < w.EndMS
}

// FilterValid returns the words whose timing windows are well formed,
// preserving input order. The input slice is not modified.
func FilterValid(words []Word) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		if w.Valid() {
			out = append(out, w)
		}
	}
	return out
}
