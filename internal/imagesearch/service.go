package imagesearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
	appErr "github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errors"
)

const (
	// MaxResults caps how many images any caller may request.
	MaxResults = 10

	defaultResults = 5
)

// Service resolves image queries through an ordered provider cascade. The
// first provider returning a non-empty result set wins; if every provider is
// unconfigured, fails or comes back empty, a fixed fallback set is returned,
// so Search never yields an empty sequence.
type Service struct {
	providers []Provider
}

func NewService(providers ...Provider) *Service {
	return &Service{providers: providers}
}

func (s *Service) Search(ctx context.Context, query string, limit int) ([]model.ImageResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", appErr.ErrInvalid)
	}
	if limit <= 0 {
		limit = defaultResults
	}
	if limit > MaxResults {
		limit = MaxResults
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))
	for _, provider := range s.providers {
		if !provider.Configured() {
			continue
		}
		images, err := provider.Search(ctx, query, limit)
		if err != nil {
			logger.Warn("image provider failed, trying next",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			continue
		}
		if len(images) > 0 {
			return images, nil
		}
	}
	logger.Info("no image provider available, returning fallback set")
	return fallbackImages(), nil
}

// SearchHistorical biases the query toward historical photographs before
// delegating to the regular cascade.
func (s *Service) SearchHistorical(ctx context.Context, topic string) ([]model.ImageResult, error) {
	return s.Search(ctx, topic+" lịch sử historical", 6)
}

// NormalizeQuery rewrites a Vietnamese image query for the structured search
// provider: canonical English names first (so later replacements cannot split
// them), then place and time phrases, then filler words. When the canonical
// subject is present, qualifying keywords are appended to bias results.
func NormalizeQuery(query string) string {
	q := strings.ToLower(query)

	q = strings.ReplaceAll(q, "chủ tịch hồ chí minh", "Ho Chi Minh")
	q = strings.ReplaceAll(q, "hồ chí minh", "Ho Chi Minh")
	q = strings.ReplaceAll(q, "bác hồ", "Ho Chi Minh")
	q = strings.ReplaceAll(q, "chủ tịch", "president")

	q = strings.ReplaceAll(q, "ở pháp", "in France")
	q = strings.ReplaceAll(q, "tại pháp", "in France")
	q = strings.ReplaceAll(q, "pháp", "France")
	q = strings.ReplaceAll(q, "hồi còn", "")
	q = strings.ReplaceAll(q, "hồi", "")
	q = strings.ReplaceAll(q, "ngài", "")
	q = strings.ReplaceAll(q, "còn", "")
	q = strings.ReplaceAll(q, "thời", "period")

	fillers := []string{"cho tôi", "tìm", "xem", "ảnh", "hình", "hình ảnh", "của", "về", "đi", "nào", "giúp", "với"}
	for _, filler := range fillers {
		q = strings.ReplaceAll(q, filler, " ")
	}

	normalized := strings.Join(strings.Fields(q), " ")
	if strings.Contains(normalized, "Ho Chi Minh") {
		normalized += " president Vietnam historical photo"
	}
	return normalized
}

// fallbackImages is the hard-coded always-available result set used when the
// whole cascade comes up empty.
func fallbackImages() []model.ImageResult {
	return []model.ImageResult{
		{
			URL:       "https://images.pexels.com/photos/1134166/pexels-photo-1134166.jpeg",
			Title:     "Hồ Chí Minh - Anh hùng dân tộc",
			Thumbnail: "https://images.pexels.com/photos/1134166/pexels-photo-1134166.jpeg?auto=compress&cs=tinysrgb&w=300",
			Source:    "Sample Image",
			Context:   "Để xem ảnh thật về Hồ Chí Minh, vui lòng cấu hình Google Custom Search API hoặc Pexels API",
		},
		{
			URL:       "https://images.pexels.com/photos/1612461/pexels-photo-1612461.jpeg",
			Title:     "Vietnam - Historical Photos",
			Thumbnail: "https://images.pexels.com/photos/1612461/pexels-photo-1612461.jpeg?auto=compress&cs=tinysrgb&w=300",
			Source:    "Sample Image",
			Context:   "API chưa được cấu hình - đây là ảnh mẫu",
		},
	}
}
