package deck

import (
	"context"
	"strings"
	"sync"

	"github.com/phrazzld/lessondeck/internal/generation"
)

const fullReply = `LessonTitle: Số 85000
StartUp: Trò chơi "Ai nhanh hơn": đếm từ 84995 đến 85000
Practice: 1. Đọc số 85000
2. Viết số 85000 thành tổng
Application: Mẹ mua một chiếc áo giá 85000 đồng`

// fakeText answers by prompt kind. Errors are returned for the first N calls
// of a kind when configured.
type fakeText struct {
	mu sync.Mutex

	contentReply string
	contentErrs  []error
	gameReply    string
	gameErrs     []error
	visualErr    error
	onContent    func(call int)

	contentCalls int
	gameCalls    int
	visualCalls  int
}

func (f *fakeText) GenerateText(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(prompt, "Reply with exactly these four sections"):
		f.contentCalls++
		if f.onContent != nil {
			f.onContent(f.contentCalls)
		}
		if n := f.contentCalls - 1; n < len(f.contentErrs) {
			return "", f.contentErrs[n]
		}
		return f.contentReply, nil
	case strings.Contains(prompt, "Suggest one classroom game"):
		f.gameCalls++
		if n := f.gameCalls - 1; n < len(f.gameErrs) {
			return "", f.gameErrs[n]
		}
		return f.gameReply, nil
	default:
		f.visualCalls++
		if f.visualErr != nil {
			return "", f.visualErr
		}
		idx := strings.Index(prompt, "Slide text:\n")
		return "scene of " + strings.TrimSpace(prompt[idx+len("Slide text:\n"):]), nil
	}
}

// fakeImages returns one PNG per call unless the prompt matches failOn.
type fakeImages struct {
	mu       sync.Mutex
	prompts  []string
	failOn   string
	err      error
	perCall  int
	inFlight int
	maxSeen  int
	block    chan struct{}
}

func (f *fakeImages) GenerateImages(_ context.Context, prompt string) ([]generation.Image, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--

	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != "" && strings.Contains(prompt, f.failOn) {
		return nil, generation.ErrNoImage
	}
	n := f.perCall
	if n == 0 {
		n = 1
	}
	out := make([]generation.Image, n)
	for i := range out {
		out[i] = generation.Image{MIMEType: "image/png", Data: []byte{byte(len(f.prompts)), byte(i)}}
	}
	return out, nil
}

func (f *fakeImages) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string]generation.Image
	gets  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string]generation.Image)}
}

func (c *memoryCache) Get(_ context.Context, key string) (generation.Image, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	img, ok := c.items[key]
	return img, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, img generation.Image) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = img
	return nil
}
