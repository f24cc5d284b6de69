package imagesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
)

const googleSearchURL = "https://www.googleapis.com/customsearch/v1"

// GoogleProvider queries the Google Custom Search API in image mode. It is
// the primary structured provider, so the query is normalized before use.
type GoogleProvider struct {
	apiKey         string
	searchEngineID string
	client         *http.Client
}

func NewGoogleProvider(apiKey, searchEngineID string, client *http.Client) *GoogleProvider {
	return &GoogleProvider{
		apiKey:         apiKey,
		searchEngineID: searchEngineID,
		client:         client,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) Configured() bool {
	return p.apiKey != "" && p.searchEngineID != ""
}

type googleSearchResponse struct {
	Items []struct {
		Link    string `json:"link"`
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Image   struct {
			ThumbnailLink string `json:"thumbnailLink"`
		} `json:"image"`
		DisplayLink string `json:"displayLink"`
	} `json:"items"`
}

func (p *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]model.ImageResult, error) {
	optimized := NormalizeQuery(query)
	logutil.GetLogger(ctx).Debug("google image search",
		zap.String("query", query),
		zap.String("optimized", optimized),
	)
	if limit > 10 {
		limit = 10
	}
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("cx", p.searchEngineID)
	params.Set("q", optimized)
	params.Set("searchType", "image")
	params.Set("num", strconv.Itoa(limit))
	params.Set("safe", "active")
	params.Set("imgSize", "medium")
	params.Set("fileType", "jpg,png")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google search failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out googleSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	images := make([]model.ImageResult, 0, len(out.Items))
	for _, item := range out.Items {
		source := item.DisplayLink
		if source == "" {
			source = "Google"
		}
		images = append(images, model.ImageResult{
			URL:       item.Link,
			Title:     item.Title,
			Thumbnail: item.Image.ThumbnailLink,
			Source:    source,
			Context:   item.Snippet,
		})
	}
	return images, nil
}
