package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	sentenceSeparator  = " "
	paragraphSeparator = "\n\n"
)

// packByLength greedily packs units into chunks of at most size characters.
//
// Each buffered unit counts its own length plus one separator, so a
// chunk's trimmed text never exceeds size unless it holds a single
// oversized unit.
func packByLength(units []string, sep string, size int) []string {
	var chunks []string
	var buf []string
	bufLen := 0
	sepLen := utf8.RuneCountInString(sep)

	for _, unit := range units {
		unit = strings.TrimSpace(unit)
		if unit == "" {
			continue
		}
		n := utf8.RuneCountInString(unit)
		if len(buf) > 0 && bufLen+n > size {
			chunks = append(chunks, strings.Join(buf, sep))
			buf, bufLen = nil, 0
		}
		buf = append(buf, unit)
		bufLen += n + sepLen
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, sep))
	}
	return chunks
}

// packByCount greedily packs units so the summed counts of a chunk stay
// within size. Units are joined with a single space.
func packByCount(units []string, counts []int, size int) []string {
	var chunks []string
	var buf []string
	total := 0

	for i, unit := range units {
		unit = strings.TrimSpace(unit)
		if unit == "" {
			continue
		}
		if len(buf) > 0 && total+counts[i] > size {
			chunks = append(chunks, strings.Join(buf, sentenceSeparator))
			buf, total = nil, 0
		}
		buf = append(buf, unit)
		total += counts[i]
	}
	if len(buf) > 0 {
		chunks = append(chunks, strings.Join(buf, sentenceSeparator))
	}
	return chunks
}

// splitParagraphs splits text on blank-line boundaries.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, paragraphSeparator)
}
