package handlers

import (
	"context"
	"strings"
	"unicode/utf8"
)

// maxChunkLen keeps listing messages under Telegram's 4096 character limit.
const maxChunkLen = 4000

// chunkEntries packs title and entries into messages of at most limit
// characters. An entry is never split unless it alone exceeds the limit.
func chunkEntries(title string, entries []string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}
	add := func(part string) {
		n := utf8.RuneCountInString(part)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > limit {
			flush()
			sep = 0
		}
		if n > limit {
			chunks = append(chunks, splitRunes(part, limit)...)
			return
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(part)
		curLen += sep + n
	}

	if title != "" {
		add(title)
	}
	for _, e := range entries {
		add(e)
	}
	flush()
	return chunks
}

// splitRunes cuts s into pieces of at most limit runes. A cut never lands
// inside an HTML entity or tag.
func splitRunes(s string, limit int) []string {
	var out []string
	runes := []rune(s)
	for len(runes) > limit {
		cut := markupSafeCut(runes[:limit])
		out = append(out, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// markupSafeCut returns how many runes of piece can be sent without ending
// in an unterminated "&...;" entity or "<...>" tag.
func markupSafeCut(piece []rune) int {
	for i := len(piece) - 1; i > 0; i-- {
		switch piece[i] {
		case ';', '>':
			return len(piece)
		case '&', '<':
			return i
		}
	}
	return len(piece)
}

// sendListing sends the chunks in order and stops at the first failure.
func (h *MessageHandler) sendListing(ctx context.Context, req *request, title string, entries []string) error {
	for _, chunk := range chunkEntries(title, entries, maxChunkLen) {
		if err := h.reply(ctx, req.chatID, chunk, nil); err != nil {
			return err
		}
	}
	return nil
}
