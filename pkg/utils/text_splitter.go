package utils

import (
	"strings"
	"unicode/utf8"
)

// DefaultSeparators splits on paragraphs, then lines, then words, then characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveSplitter cuts text into chunks of at most ChunkSize characters,
// trying each separator in turn and recursing into pieces that are still
// too long. Neighbouring chunks share up to ChunkOverlap characters.
// Separators stay attached to the start of the piece that follows them and
// every chunk is whitespace-trimmed.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   []string
}

func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &RecursiveSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separators:   DefaultSeparators,
	}
}

// SplitText splits text with the default separators.
func SplitText(text string, chunkSize int, overlap int) []string {
	return NewRecursiveSplitter(chunkSize, overlap).Split(text)
}

func (s *RecursiveSplitter) Split(text string) []string {
	return s.split(text, s.Separators)
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	separator := ""
	var next []string
	if len(separators) > 0 {
		separator = separators[len(separators)-1]
	}
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			next = separators[i+1:]
			break
		}
	}

	var chunks, good []string
	for _, piece := range splitKeepingSeparator(text, separator) {
		if runeLen(piece) < s.ChunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			chunks = append(chunks, s.merge(good)...)
			good = nil
		}
		if len(next) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, s.split(piece, next)...)
		}
	}
	if len(good) > 0 {
		chunks = append(chunks, s.merge(good)...)
	}
	return chunks
}

// merge packs small pieces into chunks, carrying a tail of up to ChunkOverlap
// characters into the next chunk. Pieces already carry their separator.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var out, current []string
	total := 0
	for _, p := range pieces {
		n := runeLen(p)
		if total+n > s.ChunkSize && len(current) > 0 {
			if doc := join(current); doc != "" {
				out = append(out, doc)
			}
			for total > s.ChunkOverlap || (total+n > s.ChunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
	}
	if doc := join(current); doc != "" {
		out = append(out, doc)
	}
	return out
}

func splitKeepingSeparator(text, separator string) []string {
	var parts []string
	if separator == "" {
		parts = make([]string, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
		return parts
	}
	raw := strings.Split(text, separator)
	parts = make([]string, 0, len(raw))
	if raw[0] != "" {
		parts = append(parts, raw[0])
	}
	for _, r := range raw[1:] {
		parts = append(parts, separator+r)
	}
	return parts
}

func join(pieces []string) string {
	return strings.TrimSpace(strings.Join(pieces, ""))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
