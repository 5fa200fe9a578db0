package handlers

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEntries_FitsInOne(t *testing.T) {
	chunks := chunkEntries("Title", []string{"a", "b"}, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Title\na\nb", chunks[0])
}

func TestChunkEntries_NeverSplitsEntries(t *testing.T) {
	entry := strings.Repeat("x", 30)
	entries := []string{entry, entry, entry, entry}

	chunks := chunkEntries("T", entries, 70)

	require.Len(t, chunks, 2)
	assert.Equal(t, "T\n"+entry+"\n"+entry, chunks[0])
	assert.Equal(t, entry+"\n"+entry, chunks[1])
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 70)
	}
}

func TestChunkEntries_HardSplitsOversizedEntry(t *testing.T) {
	long := strings.Repeat("ü", 25)

	chunks := chunkEntries("", []string{"head", long, "tail"}, 10)

	assert.Equal(t, []string{"head", strings.Repeat("ü", 10), strings.Repeat("ü", 10), strings.Repeat("ü", 5), "tail"}, chunks)
}

func TestChunkEntries_Empty(t *testing.T) {
	assert.Empty(t, chunkEntries("", nil, 10))
}

// endsInsideEntity reports whether s ends in an unterminated HTML entity.
func endsInsideEntity(s string) bool {
	amp := strings.LastIndex(s, "&")
	return amp >= 0 && !strings.Contains(s[amp:], ";")
}

func TestChunkEntries_DoesNotCutEscapedEntities(t *testing.T) {
	for pad := 0; pad < 16; pad++ {
		entry := escape(strings.Repeat("x", pad) + strings.Repeat("o'zbek tili ", 400))
		require.Greater(t, utf8.RuneCountInString(entry), maxChunkLen)

		chunks := chunkEntries("", []string{entry}, maxChunkLen)

		require.Greater(t, len(chunks), 1, "pad %d", pad)
		for i, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), maxChunkLen, "pad %d chunk %d", pad, i)
			assert.False(t, endsInsideEntity(c), "pad %d chunk %d", pad, i)
			assert.False(t, strings.HasPrefix(c, "#") || strings.HasPrefix(c, "39;"), "pad %d chunk %d", pad, i)
		}
		assert.Equal(t, entry, strings.Join(chunks, ""), "pad %d", pad)
	}
}

func TestChunkEntries_DoesNotCutTags(t *testing.T) {
	entry := strings.Repeat("a", 8) + "<code>1</code>" + strings.Repeat("b", 8)

	chunks := chunkEntries("", []string{entry}, 10)

	for _, c := range chunks {
		assert.Equal(t, strings.Count(c, "<"), strings.Count(c, ">"), "chunk %q", c)
	}
	assert.Equal(t, entry, strings.Join(chunks, ""))
}
