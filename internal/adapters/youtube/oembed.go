package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"churchadmin/internal/domain"
)

// DefaultEndpoint is YouTube's public oEmbed endpoint.
const DefaultEndpoint = "https://www.youtube.com/oembed"

type oembedFetcher struct {
	client   *http.Client
	endpoint string
}

// NewOEmbedFetcher returns a fetcher that resolves video titles and thumbnails
// through an oEmbed endpoint. An empty endpoint uses DefaultEndpoint.
func NewOEmbedFetcher(client *http.Client, endpoint string) domain.VideoMetadataFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &oembedFetcher{client: client, endpoint: endpoint}
}

func (f *oembedFetcher) Fetch(ctx context.Context, videoURL string) (*domain.VideoMetadata, error) {
	q := url.Values{}
	q.Set("url", videoURL)
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oembed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed endpoint returned status: %d", resp.StatusCode)
	}

	var data domain.VideoMetadata
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode oembed response: %w", err)
	}
	return &data, nil
}
