package render

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// BlockKind is how a text block is displayed.
type BlockKind string

// Block kinds
const (
	BlockBullet    BlockKind = "bullet-point"
	BlockParagraph BlockKind = "paragraph"
)

// LongSegmentRunes is the length above which a segment is always a bullet.
const LongSegmentRunes = 60

// Block is one formatted piece of slide text.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

var (
	segmentSep = regexp.MustCompile(`[\n,;]`)

	enumerationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d+\s*[.)/:-]\s*`),
		regexp.MustCompile(`^[a-zA-Z][.)]\s+`),
		regexp.MustCompile(`^[-–•*+]\s*`),
		regexp.MustCompile(`(?i)^(bài|câu|bước|phần)\s*\d+`),
		regexp.MustCompile(`(?i)(lớn hơn|bé hơn|nhỏ hơn|bằng nhau|so sánh|greater than|less than|equal to)`),
		regexp.MustCompile(`\d\s*[<>=≤≥]\s*\d`),
	}

	bulletGlyph = regexp.MustCompile(`^[-–•*+]\s*`)
)

// FormatText splits text on newlines, commas and semicolons and decides for
// every trimmed, non-empty segment whether it is a bullet point or a paragraph.
//
// A single short segment without a newline is one paragraph. Otherwise a
// segment is a bullet when it matches an enumeration pattern, is longer than
// LongSegmentRunes, or has more than two siblings.
func FormatText(text string) []Block {
	var segments []string
	for _, s := range segmentSep.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return nil
	}

	if len(segments) == 1 && !strings.Contains(text, "\n") &&
		utf8.RuneCountInString(segments[0]) <= LongSegmentRunes {
		return []Block{{Kind: BlockParagraph, Text: segments[0]}}
	}

	manySiblings := len(segments) > 2
	blocks := make([]Block, 0, len(segments))
	for _, s := range segments {
		if manySiblings || isEnumeration(s) || utf8.RuneCountInString(s) > LongSegmentRunes {
			blocks = append(blocks, Block{Kind: BlockBullet, Text: bulletGlyph.ReplaceAllString(s, "")})
			continue
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: s})
	}
	return blocks
}

func isEnumeration(s string) bool {
	for _, re := range enumerationPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
