package chunker

import (
	"strings"
	"unicode/utf8"
)

type Chunker interface {
	Chunk(text string, opts ChunkOptions) []TextChunk
}

type ChunkOptions struct {
	ChunkSize    int    // maximum chunk length in characters
	ChunkOverlap int    // characters shared between consecutive chunks
	Strategy     string // "recursive" or "fixed"
}

type TextChunk struct {
	Content string
	Index   int
}

// DefaultSeparators are tried in order, coarsest first. The empty separator
// splits between characters and always applies.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

func DefaultOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize:    1000,
		ChunkOverlap: 200,
		Strategy:     "recursive",
	}
}

type defaultChunker struct{}

func New() Chunker {
	return &defaultChunker{}
}

func (c *defaultChunker) Chunk(text string, opts ChunkOptions) []TextChunk {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		opts.ChunkOverlap = 0
	}

	var parts []string
	switch opts.Strategy {
	case "fixed":
		parts = splitFixed(text, opts)
	default:
		s := &recursiveSplitter{size: opts.ChunkSize, overlap: opts.ChunkOverlap}
		parts = s.split(text, DefaultSeparators)
	}

	chunks := make([]TextChunk, 0, len(parts))
	for _, p := range parts {
		chunks = append(chunks, TextChunk{Content: p, Index: len(chunks)})
	}
	return chunks
}

func splitFixed(text string, opts ChunkOptions) []string {
	var out []string
	runes := []rune(text)
	step := opts.ChunkSize - opts.ChunkOverlap

	for start := 0; start < len(runes); start += step {
		end := min(start+opts.ChunkSize, len(runes))
		if content := strings.TrimSpace(string(runes[start:end])); content != "" {
			out = append(out, content)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

type recursiveSplitter struct {
	size    int
	overlap int
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// split breaks text on the first separator it contains, recursing into pieces
// that are still too long with the finer separators.
func (s *recursiveSplitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = ""
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var final, good []string
	for _, piece := range splitKeepSeparator(text, sep) {
		if runeLen(piece) < s.size {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good)...)
			good = nil
		}
		if len(rest) == 0 {
			if t := strings.TrimSpace(piece); t != "" {
				final = append(final, t)
			}
			continue
		}
		final = append(final, s.split(piece, rest)...)
	}
	if len(good) > 0 {
		final = append(final, s.merge(good)...)
	}
	return final
}

// merge packs small splits into chunks of at most size characters, carrying
// up to overlap characters from the tail of one chunk into the next.
func (s *recursiveSplitter) merge(splits []string) []string {
	var (
		docs    []string
		current []string
		total   int
	)
	for _, d := range splits {
		n := runeLen(d)
		if total+n > s.size && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total+n > s.size && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, d)
		total += n
	}
	if doc := strings.TrimSpace(strings.Join(current, "")); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

// splitKeepSeparator splits on sep and re-attaches it to the front of every
// piece after the first, so no characters are lost.
func splitKeepSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	parts := strings.Split(text, sep)
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = sep + p
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
