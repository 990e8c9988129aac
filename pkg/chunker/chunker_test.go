package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(w, " ")
}

func TestChunk_ShortTextIsSingleChunk(t *testing.T) {
	chunks := New().Chunk("  hello world  ", DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunk_EmptyText(t *testing.T) {
	assert.Empty(t, New().Chunk("", DefaultOptions()))
	assert.Empty(t, New().Chunk(" \n\n ", DefaultOptions()))
}

func TestChunk_RecursiveRespectsSizeAndOverlap(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 50, ChunkOverlap: 20, Strategy: "recursive"}
	chunks := New().Chunk(words(100), opts)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 50)
	}
	for i := 0; i+1 < len(chunks); i++ {
		first := strings.Fields(chunks[i+1].Content)[0]
		assert.Contains(t, chunks[i].Content, first, "chunk %d should overlap chunk %d", i+1, i)
	}

	last := strings.Fields(chunks[len(chunks)-1].Content)
	assert.Equal(t, "w0099", last[len(last)-1])
}

func TestChunk_PrefersParagraphBoundaries(t *testing.T) {
	a := "aaaa aaaa aaaa aaaa aaaa"
	b := "bbbb bbbb bbbb bbbb bbbb"
	opts := ChunkOptions{ChunkSize: 30, ChunkOverlap: 0}

	chunks := New().Chunk(a+"\n\n"+b, opts)
	require.Len(t, chunks, 2)
	assert.Equal(t, a, chunks[0].Content)
	assert.Equal(t, b, chunks[1].Content)
}

func TestChunk_FallsBackToCharacters(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 100, ChunkOverlap: 0}
	chunks := New().Chunk(strings.Repeat("x", 250), opts)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Content, 100)
	assert.Len(t, chunks[1].Content, 100)
	assert.Len(t, chunks[2].Content, 50)
}

func TestChunk_MultibyteCountedAsCharacters(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 10, ChunkOverlap: 0}
	chunks := New().Chunk(strings.Repeat("é", 25), opts)
	require.Len(t, chunks, 3)
	assert.Equal(t, 10, utf8.RuneCountInString(chunks[0].Content))
}

func TestChunk_Fixed(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 4, ChunkOverlap: 1, Strategy: "fixed"}
	chunks := New().Chunk("abcdefghij", opts)
	require.Len(t, chunks, 3)
	assert.Equal(t, "abcd", chunks[0].Content)
	assert.Equal(t, "defg", chunks[1].Content)
	assert.Equal(t, "ghij", chunks[2].Content)
}

func TestChunk_OverlapNotSmallerThanSizeIsIgnored(t *testing.T) {
	opts := ChunkOptions{ChunkSize: 4, ChunkOverlap: 10, Strategy: "fixed"}
	chunks := New().Chunk("abcdefgh", opts)
	require.Len(t, chunks, 2)
	assert.Equal(t, "efgh", chunks[1].Content)
}
