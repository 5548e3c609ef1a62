// Package textseg splits raw input text for synthesis: first into
// paragraph-grouped chunks (the persisted unit of claim/retry), then into
// shorter segments sized for a single synthesis call.
package textseg

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxParagraphsPerChunk bounds how many paragraphs a chunk groups.
	DefaultMaxParagraphsPerChunk = 10

	// ShortTextLineLimit and ShortTextCharLimit gate the segment split: text
	// at or below either threshold is synthesized as a single segment.
	ShortTextLineLimit = 5
	ShortTextCharLimit = 500

	// MinSegmentChars merges adjacent segments whose combined length stays
	// below it, avoiding degenerate tiny synthesis calls.
	MinSegmentChars = 200
)

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n+`)
	segmentBreak   = regexp.MustCompile(`\n\n+|\n\s*\n+|[.!?]\s`)
)

// GroupIntoChunks splits text into chunks of up to maxParagraphs paragraphs
// each, preserving original order. Blank paragraphs are dropped. Text with no
// paragraph breaks becomes a single chunk.
func GroupIntoChunks(text string, maxParagraphs int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxParagraphs <= 0 {
		maxParagraphs = DefaultMaxParagraphsPerChunk
	}

	normalized := normalizeNewlines(text)
	var paragraphs []string
	for _, p := range paragraphBreak.Split(normalized, -1) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	if len(paragraphs) == 0 {
		return []string{strings.TrimSpace(normalized)}
	}

	var (
		chunks  []string
		current []string
	)
	for i, para := range paragraphs {
		current = append(current, para)
		if len(current) >= maxParagraphs || i+1 == len(paragraphs) {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
		}
	}
	return chunks
}

// SmartSplit splits a chunk's text into synthesis-sized segments. Short input
// (at or below ShortTextLineLimit non-blank lines, or ShortTextCharLimit
// characters) is returned whole; otherwise the text is split on paragraph
// breaks and sentence punctuation, with runs of short segments merged until
// they reach MinSegmentChars.
func SmartSplit(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lineCount := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lineCount++
		}
	}
	if lineCount <= ShortTextLineLimit || len(text) <= ShortTextCharLimit {
		return []string{strings.TrimSpace(text)}
	}

	var cleaned []string
	for _, part := range segmentBreak.Split(normalizeNewlines(text), -1) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return []string{strings.TrimSpace(text)}
	}

	var (
		merged  []string
		current string
	)
	for _, part := range cleaned {
		if len(current)+len(part) < MinSegmentChars {
			if current == "" {
				current = part
			} else {
				current += " " + part
			}
			continue
		}
		if current != "" {
			merged = append(merged, current)
		}
		current = part
	}
	if current != "" {
		merged = append(merged, current)
	}
	return merged
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
