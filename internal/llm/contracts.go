package llm

import "context"

// TextCompleter is the text-analysis service contract: prompt in, free text out.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// VisionCompleter is the image-analysis service contract. The image is sent
// alongside the prompt; the response is still free text.
type VisionCompleter interface {
	CompleteWithImage(ctx context.Context, prompt string, image []byte, mediaType string) (string, error)
}

// Strategies holds the remote strategies decided once at startup.
// A nil field is a typed absence: the router falls back instead of erroring.
type Strategies struct {
	Text   TextCompleter
	Vision VisionCompleter
}

func (s Strategies) TextAvailable() bool   { return s.Text != nil }
func (s Strategies) VisionAvailable() bool { return s.Vision != nil }
