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

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
)

const pexelsSearchURL = "https://api.pexels.com/v1/search"

// PexelsProvider queries the Pexels stock-photo API.
type PexelsProvider struct {
	apiKey string
	client *http.Client
}

func NewPexelsProvider(apiKey string, client *http.Client) *PexelsProvider {
	return &PexelsProvider{apiKey: apiKey, client: client}
}

func (p *PexelsProvider) Name() string {
	return "pexels"
}

func (p *PexelsProvider) Configured() bool {
	return p.apiKey != ""
}

type pexelsSearchResponse struct {
	Photos []struct {
		Alt          string `json:"alt"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large  string `json:"large"`
			Medium string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *PexelsProvider) Search(ctx context.Context, query string, limit int) ([]model.ImageResult, error) {
	if limit > 15 {
		limit = 15
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pexelsSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.apiKey)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pexels search failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out pexelsSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	images := make([]model.ImageResult, 0, len(out.Photos))
	for _, photo := range out.Photos {
		title := photo.Alt
		if title == "" {
			title = "Photo from Pexels"
		}
		photographer := photo.Photographer
		if photographer == "" {
			photographer = "Unknown"
		}
		images = append(images, model.ImageResult{
			URL:       photo.Src.Large,
			Title:     title,
			Thumbnail: photo.Src.Medium,
			Source:    "Pexels.com",
			Context:   "Photo by " + photographer,
		})
	}
	return images, nil
}
