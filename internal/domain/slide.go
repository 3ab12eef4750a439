package domain

import "strings"

// SlideKey names one section of a generated presentation.
type SlideKey string

// The fixed slide keys, in presentation order.
const (
	SlideKeyLesson      SlideKey = "lesson"
	SlideKeyStartUp     SlideKey = "startUp"
	SlideKeyPractice    SlideKey = "practice"
	SlideKeyApplication SlideKey = "application"
	SlideKeyGameIdea    SlideKey = "gameIdea"
	SlideKeyClosing     SlideKey = "closing"
)

// SlideKeys returns the fixed key set in presentation order. A new slice is
// returned on every call.
func SlideKeys() []SlideKey {
	return []SlideKey{
		SlideKeyLesson,
		SlideKeyStartUp,
		SlideKeyPractice,
		SlideKeyApplication,
		SlideKeyGameIdea,
		SlideKeyClosing,
	}
}

// Valid reports whether k is one of the fixed slide keys.
func (k SlideKey) Valid() bool {
	switch k {
	case SlideKeyLesson, SlideKeyStartUp, SlideKeyPractice,
		SlideKeyApplication, SlideKeyGameIdea, SlideKeyClosing:
		return true
	default:
		return false
	}
}

// ContentErrorPlaceholder replaces every analyzed section when the content
// request fails for good.
const ContentErrorPlaceholder = "Không thể tạo nội dung cho phần này. Vui lòng thử lại sau."

// AnalyzedContent maps every slide key to its extracted text.
type AnalyzedContent map[SlideKey]string

// NewAnalyzedContent returns content with an empty entry for every slide key.
func NewAnalyzedContent() AnalyzedContent {
	c := make(AnalyzedContent, 6)
	for _, k := range SlideKeys() {
		c[k] = ""
	}
	return c
}

// ErrorContent returns content where every entry is the error placeholder.
func ErrorContent() AnalyzedContent {
	c := make(AnalyzedContent, 6)
	for _, k := range SlideKeys() {
		c[k] = ContentErrorPlaceholder
	}
	return c
}

// Usable reports whether the entry for k may be sent to image generation.
func (c AnalyzedContent) Usable(k SlideKey) bool {
	text := strings.TrimSpace(c[k])
	return text != "" && text != ContentErrorPlaceholder
}

// IsError reports whether the entry for k is the error placeholder.
func (c AnalyzedContent) IsError(k SlideKey) bool {
	return c[k] == ContentErrorPlaceholder
}

// ImageErrorMarker marks a slide whose image generation failed.
const ImageErrorMarker = "error"

// ImageState describes the state of a slide image.
type ImageState string

// Image states
const (
	ImageStateAbsent ImageState = "absent"
	ImageStateError  ImageState = "error"
	ImageStateReady  ImageState = "ready"
)

// ImageMap maps every slide key to a data URI, ImageErrorMarker, or "" when the
// image is absent (not generated yet or skipped).
type ImageMap map[SlideKey]string

// NewImageMap returns a map with an absent entry for every slide key.
func NewImageMap() ImageMap {
	m := make(ImageMap, 6)
	for _, k := range SlideKeys() {
		m[k] = ""
	}
	return m
}

// State returns the state of the image stored for k.
func (m ImageMap) State(k SlideKey) ImageState {
	switch v := m[k]; {
	case v == "":
		return ImageStateAbsent
	case v == ImageErrorMarker:
		return ImageStateError
	default:
		return ImageStateReady
	}
}

// Slide is one entry of the fixed presentation sequence.
type Slide struct {
	// Key references the AnalyzedContent entry shown on the slide.
	Key SlideKey `json:"key"`

	// Title is the fixed heading. Empty for the cover slide, whose title comes
	// from the analyzed lesson title.
	Title string `json:"title"`

	// ImageExpected is set when the slide shows a generated background image.
	ImageExpected bool `json:"image_expected"`
}

// TitleFromContent reports whether the slide takes its title from the content.
func (s Slide) TitleFromContent() bool {
	return s.Title == ""
}

// SlideCount is the fixed number of slides in a deck.
const SlideCount = 6

var slideSequence = [SlideCount]Slide{
	{Key: SlideKeyLesson, ImageExpected: true},
	{Key: SlideKeyStartUp, Title: "Khởi động", ImageExpected: true},
	{Key: SlideKeyPractice, Title: "Luyện tập", ImageExpected: true},
	{Key: SlideKeyApplication, Title: "Vận dụng", ImageExpected: true},
	{Key: SlideKeyGameIdea, Title: "Trò chơi", ImageExpected: true},
	{Key: SlideKeyClosing, Title: "Tổng kết", ImageExpected: true},
}

// Slides returns the fixed slide sequence.
func Slides() []Slide {
	out := make([]Slide, SlideCount)
	copy(out, slideSequence[:])
	return out
}

// SlideAt returns the slide at index i.
func SlideAt(i int) (Slide, error) {
	if i < 0 || i >= SlideCount {
		return Slide{}, ErrSlideIndexOutOfRange
	}
	return slideSequence[i], nil
}
