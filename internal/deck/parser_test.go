package deck

import (
	"strings"
	"testing"

	"github.com/phrazzld/lessondeck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleInput = domain.LessonInput{
	Lesson:   "Số 85000",
	StartUp:  "Trò chơi đếm số",
	Practice: "Bài 1, Bài 2",
	Apply:    "Đi chợ",
}

func TestParseSectionsAnyOrder(t *testing.T) {
	t.Parallel()
	sections := map[string]string{
		MarkerLessonTitle: "Số 85000 - đọc và viết số",
		MarkerStartUp:     "Đếm nhanh từ 84990 đến 85000",
		MarkerPractice:    "1. Đọc số 85000\n2. Viết số 85001",
		MarkerApplication: "Mẹ mua đồ hết 85000 đồng",
	}
	orders := [][]string{
		{MarkerLessonTitle, MarkerStartUp, MarkerPractice, MarkerApplication},
		{MarkerApplication, MarkerPractice, MarkerStartUp, MarkerLessonTitle},
		{MarkerPractice, MarkerLessonTitle, MarkerApplication, MarkerStartUp},
	}

	for _, order := range orders {
		var b strings.Builder
		for _, m := range order {
			b.WriteString(m + ": " + sections[m] + "\n")
		}

		res, err := ParseSections(b.String(), sampleInput)

		require.NoError(t, err, order)
		assert.Empty(t, res.Missing)
		for m, want := range sections {
			got := res.Sections[markerKeys[m]]
			assert.Equal(t, want, got, "order %v marker %s", order, m)
			for other := range sections {
				assert.NotContains(t, got, other+":", "sections must not overlap")
			}
		}
	}
}

func TestParseSectionsMissingMarker(t *testing.T) {
	t.Parallel()
	reply := "StartUp: Hát một bài\nPractice: Làm bài 1\nApplication: Giải toán"

	res, err := ParseSections(reply, sampleInput)

	require.NoError(t, err)
	assert.Equal(t, []domain.SlideKey{domain.SlideKeyLesson}, res.Missing)
	assert.Equal(t, "Số 85000", res.Sections[domain.SlideKeyLesson], "title falls back to input")
	assert.Equal(t, "Hát một bài", res.Sections[domain.SlideKeyStartUp])
	assert.Equal(t, "Làm bài 1", res.Sections[domain.SlideKeyPractice])
	assert.Equal(t, "Giải toán", res.Sections[domain.SlideKeyApplication])

	res, err = ParseSections("LessonTitle: A\nApplication: B", sampleInput)
	require.NoError(t, err)
	assert.Equal(t, []domain.SlideKey{domain.SlideKeyStartUp, domain.SlideKeyPractice}, res.Missing)
	assert.Equal(t, "", res.Sections[domain.SlideKeyStartUp])
	assert.Equal(t, "A", res.Sections[domain.SlideKeyLesson])
	assert.Equal(t, "B", res.Sections[domain.SlideKeyApplication])
}

func TestParseSectionsStripsWrappers(t *testing.T) {
	t.Parallel()
	reply := "**LessonTitle:** \"[Số 85000]\"\n\n" +
		"- **StartUp**: *Đếm số*\n" +
		"Practice: [Bài 1\n\n\n\n\nBài 2]\n" +
		"### Application: 'Đi chợ'"

	res, err := ParseSections(reply, sampleInput)

	require.NoError(t, err)
	assert.Equal(t, "Số 85000", res.Sections[domain.SlideKeyLesson])
	assert.Equal(t, "Đếm số", res.Sections[domain.SlideKeyStartUp])
	assert.Equal(t, "Bài 1\n\nBài 2", res.Sections[domain.SlideKeyPractice], "3+ newlines collapse to 2")
	assert.Equal(t, "Đi chợ", res.Sections[domain.SlideKeyApplication])
}

func TestParseSectionsFirstOccurrenceWins(t *testing.T) {
	t.Parallel()
	reply := "LessonTitle: first\nStartUp: warm\nLessonTitle: second"

	res, err := ParseSections(reply, sampleInput)

	require.NoError(t, err)
	assert.Equal(t, "first", res.Sections[domain.SlideKeyLesson])
	assert.Equal(t, "warm", res.Sections[domain.SlideKeyStartUp])
}

func TestParseSectionsNoMarkers(t *testing.T) {
	t.Parallel()
	for _, reply := range []string{"", "I cannot help with that.", "Title - StartUp Practice"} {
		res, err := ParseSections(reply, sampleInput)

		assert.ErrorIs(t, err, ErrUnparseableReply, reply)
		assert.Len(t, res.Missing, 4)
		assert.Equal(t, "Số 85000", res.Sections[domain.SlideKeyLesson])
	}
}

func TestParseGameIdea(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Trò chơi: Ai nhanh hơn", ParseGameIdea("\n  Trò chơi: Ai nhanh hơn \n"))
}

func TestParseSectionsKeepsInnerPunctuation(t *testing.T) {
	t.Parallel()
	reply := "LessonTitle: \"Số 85000\" và \"Số 85001\"\n" +
		"StartUp: Trò chơi \"Ai nhanh hơn\"\n" +
		"Practice: **Bài 1:** Đọc số 85000\n" +
		"Application: Mua 'bút' hết 85000 đồng -"

	res, err := ParseSections(reply, sampleInput)

	require.NoError(t, err)
	assert.Equal(t, "\"Số 85000\" và \"Số 85001\"", res.Sections[domain.SlideKeyLesson])
	assert.Equal(t, "Trò chơi \"Ai nhanh hơn\"", res.Sections[domain.SlideKeyStartUp])
	assert.Equal(t, "**Bài 1:** Đọc số 85000", res.Sections[domain.SlideKeyPractice])
	assert.Equal(t, "Mua 'bút' hết 85000 đồng -", res.Sections[domain.SlideKeyApplication])
}

func TestParseSectionsDropsRulesAndListGlyph(t *testing.T) {
	t.Parallel()
	reply := "LessonTitle: - Số 85000\n___\n" +
		"StartUp: - Hát\n- Đếm số\n***\n" +
		"Practice: **Bài 1**\n" +
		"Application: “Đi chợ”"

	res, err := ParseSections(reply, sampleInput)

	require.NoError(t, err)
	assert.Equal(t, "Số 85000", res.Sections[domain.SlideKeyLesson])
	assert.Equal(t, "- Hát\n- Đếm số", res.Sections[domain.SlideKeyStartUp], "multi-line lists keep their glyphs")
	assert.Equal(t, "Bài 1", res.Sections[domain.SlideKeyPractice])
	assert.Equal(t, "Đi chợ", res.Sections[domain.SlideKeyApplication])
}

func TestParseSectionsStandaloneMarkers(t *testing.T) {
	t.Parallel()
	reply := "## LessonTitle\nSố 85000\n\n" +
		"[StartUp]\nĐếm nhanh\n\n" +
		"**Practice**\nBài 1: đọc số\n\n" +
		"### Application\nĐi chợ"

	res, err := ParseSections(reply, sampleInput)

	require.NoError(t, err)
	assert.Empty(t, res.Missing)
	assert.Equal(t, "Số 85000", res.Sections[domain.SlideKeyLesson])
	assert.Equal(t, "Đếm nhanh", res.Sections[domain.SlideKeyStartUp])
	assert.Equal(t, "Bài 1: đọc số", res.Sections[domain.SlideKeyPractice])
	assert.Equal(t, "Đi chợ", res.Sections[domain.SlideKeyApplication])
}
