package deck

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/phrazzld/lessondeck/internal/domain"
)

// ErrUnparseableReply is returned when a content reply carries none of the
// section markers.
var ErrUnparseableReply = errors.New("reply contains no section markers")

// Section markers as they appear in model replies.
const (
	MarkerLessonTitle = "LessonTitle"
	MarkerStartUp     = "StartUp"
	MarkerPractice    = "Practice"
	MarkerApplication = "Application"
)

var markerKeys = map[string]domain.SlideKey{
	MarkerLessonTitle: domain.SlideKeyLesson,
	MarkerStartUp:     domain.SlideKeyStartUp,
	MarkerPractice:    domain.SlideKeyPractice,
	MarkerApplication: domain.SlideKeyApplication,
}

// parsedKeys are the keys filled by ParseSections, in slide order.
var parsedKeys = []domain.SlideKey{
	domain.SlideKeyLesson,
	domain.SlideKeyStartUp,
	domain.SlideKeyPractice,
	domain.SlideKeyApplication,
}

var (
	// A label, optionally wrapped in markdown bold or list punctuation, either
	// followed by a colon or standing alone on its line ("## Practice", "[StartUp]").
	markerRe = regexp.MustCompile(
		`(?m)[*#\-\[\s]*\b(LessonTitle|StartUp|Practice|Application)\b[*\]\s]*:[*\s]*` +
			`|^[ \t]*(?:#{1,6}[ \t]*)?[*\[]*(LessonTitle|StartUp|Practice|Application)[*\]]*[ \t]*(?:\n|$)`,
	)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
	ruleLine      = regexp.MustCompile(`^(?:[-*_][ \t]*){3,}$`)
	listGlyph     = regexp.MustCompile(`^[-*+•][ \t]+`)
)

// wrapperPairs enclose a whole section; only a matched outer pair is removed.
var wrapperPairs = [][2]string{
	{"**", "**"},
	{"__", "__"},
	{"*", "*"},
	{"`", "`"},
	{"[", "]"},
	{"\"", "\""},
	{"'", "'"},
	{"“", "”"},
	{"‘", "’"},
}

// ParseResult holds the sections extracted from a content reply.
type ParseResult struct {
	// Sections has an entry for lesson, startUp, practice and application.
	Sections map[domain.SlideKey]string

	// Missing lists the sections whose marker was absent, in slide order.
	Missing []domain.SlideKey
}

type markerHit struct {
	key        domain.SlideKey
	start, end int
}

// ParseSections splits a content reply on the four section markers. Markers may
// appear in any order; each section runs from its marker to the next marker or
// the end of the reply. Only the first occurrence of a marker counts.
//
// A missing lesson title falls back to the input title and any other missing
// section to "". When no marker is found at all the fallbacks are returned
// together with ErrUnparseableReply.
func ParseSections(reply string, in domain.LessonInput) (ParseResult, error) {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")

	var (
		hits []markerHit
		seen = make(map[domain.SlideKey]bool, len(markerKeys))
	)
	for _, m := range markerRe.FindAllStringSubmatchIndex(reply, -1) {
		label := m[2:4]
		if label[0] < 0 {
			label = m[4:6]
		}
		key := markerKeys[reply[label[0]:label[1]]]
		hits = append(hits, markerHit{key: key, start: m[0], end: m[1]})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	res := ParseResult{Sections: make(map[domain.SlideKey]string, len(parsedKeys))}
	for i, h := range hits {
		if seen[h.key] {
			continue
		}
		seen[h.key] = true

		end := len(reply)
		if i+1 < len(hits) {
			end = hits[i+1].start
		}
		res.Sections[h.key] = cleanSection(reply[h.end:end])
	}

	for _, k := range parsedKeys {
		if seen[k] {
			continue
		}
		res.Missing = append(res.Missing, k)
		if k == domain.SlideKeyLesson {
			res.Sections[k] = strings.TrimSpace(in.Lesson)
		} else {
			res.Sections[k] = ""
		}
	}

	if len(seen) == 0 {
		return res, ErrUnparseableReply
	}
	return res, nil
}

// ParseGameIdea returns the game-idea reply trimmed. No marker splitting is done.
func ParseGameIdea(reply string) string {
	return strings.TrimSpace(reply)
}

func cleanSection(s string) string {
	s = trimRuleLines(strings.TrimSpace(s))
	if !strings.Contains(s, "\n") {
		s = listGlyph.ReplaceAllString(s, "")
	}
	for {
		inner, ok := unwrapPair(s)
		if !ok {
			break
		}
		s = inner
	}
	return extraNewlines.ReplaceAllString(s, "\n\n")
}

// trimRuleLines drops markdown horizontal rules ("---", "***") at either end.
func trimRuleLines(s string) string {
	lines := strings.Split(s, "\n")
	for len(lines) > 0 && ruleLine.MatchString(strings.TrimSpace(lines[0])) {
		lines = lines[1:]
	}
	for len(lines) > 0 && ruleLine.MatchString(strings.TrimSpace(lines[len(lines)-1])) {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// unwrapPair removes one pair of delimiters enclosing all of s. The pair must
// not reappear inside, so `"a" and "b"` keeps its quotes.
func unwrapPair(s string) (string, bool) {
	for _, p := range wrapperPairs {
		open, closing := p[0], p[1]
		if len(s) < len(open)+len(closing) || !strings.HasPrefix(s, open) || !strings.HasSuffix(s, closing) {
			continue
		}
		inner := s[len(open) : len(s)-len(closing)]
		if strings.Contains(inner, open) || strings.Contains(inner, closing) {
			continue
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			continue
		}
		return inner, true
	}
	return s, false
}
