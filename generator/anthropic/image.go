package anthropic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultImageBaseURL is the pollinations text-to-image endpoint.
const DefaultImageBaseURL = "https://image.pollinations.ai"

const imagePromptIntro = "Show the outfit you generate on a manikin and only the manikin should be in the picture. The outfit consists of:\n"

// ImageFetcher retrieves an illustrative image for an outfit description.
type ImageFetcher struct {
	baseURL    string
	httpClient *http.Client
}

// ImageOption configures the fetcher.
type ImageOption func(*ImageFetcher)

// WithImageBaseURL overrides the image endpoint.
func WithImageBaseURL(base string) ImageOption {
	return func(f *ImageFetcher) {
		f.baseURL = base
	}
}

// WithImageHTTPClient overrides the HTTP client.
func WithImageHTTPClient(hc *http.Client) ImageOption {
	return func(f *ImageFetcher) {
		f.httpClient = hc
	}
}

// NewImageFetcher creates an artifact fetcher.
func NewImageFetcher(opts ...ImageOption) *ImageFetcher {
	f := &ImageFetcher{
		baseURL:    DefaultImageBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the rendered image bytes for an outfit description.
func (f *ImageFetcher) Fetch(ctx context.Context, description string) ([]byte, error) {
	prompt := url.PathEscape(imagePromptIntro + description)
	endpoint := fmt.Sprintf("%s/prompt/%s?width=512&height=512&model=flux", f.baseURL, prompt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("image endpoint returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
