// Package render composes slide view-models from a deck: the title, the state
// of the background image and the formatted body of each slide.
package render

import (
	"strings"

	"github.com/phrazzld/lessondeck/internal/domain"
)

// LoadingLabel is shown in place of a title that is not available yet.
const LoadingLabel = "Đang tải..."

// ImageView states
const (
	ImageLoading = "loading"
	ImageError   = "error"
	ImageReady   = "ready"
	ImageNone    = "none"
)

// ImageErrorMessage is shown when a slide image failed.
const ImageErrorMessage = "Không thể tạo hình ảnh cho slide này."

// ImageView describes a slide's background image.
type ImageView struct {
	State   string `json:"state"`
	URI     string `json:"uri,omitempty"`
	Message string `json:"message,omitempty"`
}

// SlideView is everything needed to display one slide.
type SlideView struct {
	Index int             `json:"index"`
	Key   domain.SlideKey `json:"key"`
	Title string          `json:"title"`
	Image ImageView       `json:"image"`
	Body  []Block         `json:"body"`
	Text  string          `json:"text"`
	Nav   NavState        `json:"nav"`
}

// ComposeSlide builds the view for slide index of the given content and images.
// generating selects the loading state for absent images and disables
// navigation.
func ComposeSlide(
	content domain.AnalyzedContent,
	images domain.ImageMap,
	index int,
	generating bool,
) (SlideView, error) {
	slide, err := domain.SlideAt(index)
	if err != nil {
		return SlideView{}, err
	}

	text := strings.TrimSpace(content[slide.Key])
	view := SlideView{
		Index: index,
		Key:   slide.Key,
		Title: slideTitle(slide, content),
		Image: imageView(slide, images, generating),
		Body:  FormatText(text),
		Text:  text,
		Nav:   NewNavigator(index, generating).State(),
	}
	return view, nil
}

// ComposeDeck builds the view of every slide of d.
func ComposeDeck(d *domain.Deck) []SlideView {
	views := make([]SlideView, 0, domain.SlideCount)
	for i := range domain.SlideCount {
		v, _ := ComposeSlide(d.Content, d.Images, i, d.Generating())
		views = append(views, v)
	}
	return views
}

func slideTitle(slide domain.Slide, content domain.AnalyzedContent) string {
	if !slide.TitleFromContent() {
		return slide.Title
	}
	title := strings.TrimSpace(content[domain.SlideKeyLesson])
	if title == "" || title == domain.ContentErrorPlaceholder {
		return LoadingLabel
	}
	// The cover only shows the first line of the lesson section.
	if first, _, found := strings.Cut(title, "\n"); found {
		title = strings.TrimSpace(first)
	}
	return title
}

func imageView(slide domain.Slide, images domain.ImageMap, generating bool) ImageView {
	if !slide.ImageExpected {
		return ImageView{State: ImageNone}
	}
	switch images.State(slide.Key) {
	case domain.ImageStateReady:
		return ImageView{State: ImageReady, URI: images[slide.Key]}
	case domain.ImageStateError:
		return ImageView{State: ImageError, Message: ImageErrorMessage}
	default:
		if generating {
			return ImageView{State: ImageLoading}
		}
		return ImageView{State: ImageNone}
	}
}
