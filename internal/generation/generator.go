package generation

import (
	"context"
	"encoding/base64"
	"strings"
)

// TextGenerator answers a single text prompt.
type TextGenerator interface {
	// GenerateText returns the concatenated text parts of the first candidate.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator turns a prompt into one or more inline images.
type ImageGenerator interface {
	// GenerateImages returns every inline image part of the first candidate,
	// in response order. ErrNoImage is returned when there is none.
	GenerateImages(ctx context.Context, prompt string) ([]Image, error)
}

// Image is one inline image returned by the model.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the image as data:<mime>;base64,<payload>.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	var b strings.Builder
	b.Grow(len(mime) + 13 + base64.StdEncoding.EncodedLen(len(i.Data)))
	b.WriteString("data:")
	b.WriteString(mime)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(i.Data))
	return b.String()
}

// DecodeDataURI is the inverse of Image.DataURI. ok is false when uri is not a
// base64 data URI.
func DecodeDataURI(uri string) (img Image, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return Image{}, false
	}
	mime, payload, found := strings.Cut(rest, ";base64,")
	if !found {
		return Image{}, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, false
	}
	return Image{MIMEType: mime, Data: data}, true
}
