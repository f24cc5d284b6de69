package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Dixeliare/hochiminh-chatbot/internal/ai"
	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
	appErr "github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errors"
)

const (
	// maxCitations bounds prompt size and cost regardless of retrieval limit.
	maxCitations = 3

	// degradedConfidence signals an answer generated without retrieved
	// context.
	degradedConfidence = 75

	generateTimeout = 10 * time.Second

	noInfoAnswer = "Xin lỗi, tôi không tìm thấy thông tin liên quan trong cơ sở tri thức về tư tưởng Hồ Chí Minh."

	degradedCitationLabel = "Kiến thức chung về tư tưởng Hồ Chí Minh"
)

// DocumentStore is the corpus the synthesizer retrieves from and the
// knowledge-base refresh writes to.
type DocumentStore interface {
	Search(ctx context.Context, query string, limit int) ([]model.ScoredDocument, error)
	ReplaceDocuments(ctx context.Context, texts []string, metadatas []model.DocumentMetadata) error
	Count() int
}

// ChatResult is the synthesized answer with its provenance.
type ChatResult struct {
	Answer      string           `json:"answer"`
	Sources     []model.Citation `json:"sources"`
	Confidence  int              `json:"confidence"`
	LastUpdated string           `json:"last_updated"`
}

// Stats describes the knowledge-base state for health reporting.
type Stats struct {
	DocumentCount int    `json:"document_count"`
	LastUpdate    string `json:"last_update"`
	Status        string `json:"status"`
}

// RAGService answers questions by retrieving corpus passages, assembling
// citations and prompting the generation backend, with a context-free
// degraded retry when grounded generation fails.
type RAGService struct {
	store     DocumentStore
	generator ai.IGenerator

	mu         sync.RWMutex
	lastUpdate time.Time
}

func NewRAGService(store DocumentStore, generator ai.IGenerator) *RAGService {
	return &RAGService{
		store:     store,
		generator: generator,
	}
}

// Ask runs the full retrieve-cite-generate pipeline for one question.
func (s *RAGService) Ask(ctx context.Context, question string) (*ChatResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", appErr.ErrInvalid)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("question", question))

	results, err := s.store.Search(ctx, question, maxCitations)
	if err != nil {
		logger.Error("corpus search failed", zap.Error(err))
		return nil, err
	}
	if len(results) == 0 {
		// Normal terminal outcome, not a failure.
		return &ChatResult{
			Answer:      noInfoAnswer,
			Sources:     []model.Citation{},
			Confidence:  0,
			LastUpdated: s.lastUpdated(),
		}, nil
	}

	contextBlock, citations, confidence := assembleCitations(results)
	answer, err := s.generate(ctx, groundedPrompt(contextBlock, question))
	if err == nil {
		return &ChatResult{
			Answer:      answer,
			Sources:     citations,
			Confidence:  confidence,
			LastUpdated: s.lastUpdated(),
		}, nil
	}
	logger.Warn("grounded generation failed, retrying without context", zap.Error(err))

	answer, degradedErr := s.generate(ctx, degradedPrompt(question))
	if degradedErr != nil {
		logger.Error("degraded generation failed", zap.Error(degradedErr))
		return nil, fmt.Errorf("%w: grounded: %v; degraded: %v", appErr.ErrExhausted, err, degradedErr)
	}
	return &ChatResult{
		Answer: answer,
		Sources: []model.Citation{{
			Source:      degradedCitationLabel,
			Credibility: degradedConfidence,
			Type:        model.SourceTypeDerived,
		}},
		Confidence:  degradedConfidence,
		LastUpdated: s.lastUpdated(),
	}, nil
}

// RefreshKnowledgeBase loads the built-in corpus into the store. Without
// force, a non-empty store is left as is.
func (s *RAGService) RefreshKnowledgeBase(ctx context.Context, force bool) error {
	if !force && s.store.Count() > 0 {
		logutil.GetLogger(ctx).Info("knowledge base already loaded, skipping refresh")
		return nil
	}
	texts, metadatas := builtinCorpus()
	if err := s.store.ReplaceDocuments(ctx, texts, metadatas); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastUpdate = time.Now()
	s.mu.Unlock()
	logutil.GetLogger(ctx).Info("knowledge base refreshed", zap.Int("documents", s.store.Count()))
	return nil
}

func (s *RAGService) Stats() Stats {
	return Stats{
		DocumentCount: s.store.Count(),
		LastUpdate:    s.lastUpdated(),
		Status:        "ready",
	}
}

func (s *RAGService) lastUpdated() string {
	s.mu.RLock()
	last := s.lastUpdate
	s.mu.RUnlock()
	if last.IsZero() {
		return ""
	}
	return last.Format(time.RFC3339)
}

func (s *RAGService) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}

// assembleCitations builds the prompt context block and the parallel citation
// list from the top-ranked passages, capped at maxCitations. The confidence
// is the floored mean of the citations' credibility scores.
func assembleCitations(results []model.ScoredDocument) (string, []model.Citation, int) {
	if len(results) > maxCitations {
		results = results[:maxCitations]
	}
	var contextBlock strings.Builder
	citations := make([]model.Citation, 0, len(results))
	total := 0
	for i, result := range results {
		meta := result.Document.Metadata
		label := citationLabel(meta)
		fmt.Fprintf(&contextBlock, "[Nguồn %d - %s]: %s\n", i+1, label, result.Document.Text)

		sourceType := meta.SourceType
		if sourceType == "" {
			sourceType = model.SourceTypeOfficial
		}
		citations = append(citations, model.Citation{
			Source:      label,
			Document:    meta.DocumentTitle,
			Credibility: meta.CredibilityScore,
			Type:        sourceType,
			URL:         meta.URL,
		})
		total += meta.CredibilityScore
	}
	confidence := 0
	if len(citations) > 0 {
		confidence = total / len(citations)
	}
	return contextBlock.String(), citations, confidence
}

// citationLabel composes source, title and page, skipping fragments already
// present so labels never repeat themselves.
func citationLabel(meta model.DocumentMetadata) string {
	label := meta.Source
	if meta.DocumentTitle != "" && !strings.Contains(label, meta.DocumentTitle) {
		label += " - " + meta.DocumentTitle
	}
	if meta.Page != "" && !strings.Contains(label, meta.Page) {
		label += ", " + meta.Page
	}
	return label
}

func groundedPrompt(contextBlock, question string) string {
	return fmt.Sprintf(`Bạn là chuyên gia về tư tưởng Hồ Chí Minh với kiến thức sâu về triết học. Hãy phân tích:

TÀI LIỆU THAM KHẢO:
%s

CÂU HỎI: %s

YÊU CẦU:
- Phân tích sâu sắc dựa trên tài liệu
- Trích dẫn chính xác "[Nguồn X - tên tài liệu]"
- Phân tích mối quan hệ biện chứng
- Giải thích bối cảnh lịch sử và triết học
- Kết luận có chiều sâu học thuật
- Tối đa 4 đoạn văn

TRẢ LỜI:`, contextBlock, question)
}

func degradedPrompt(question string) string {
	return fmt.Sprintf(`Câu hỏi về tư tưởng Hồ Chí Minh: %s

Hãy trả lời dựa trên kiến thức về tư tưởng Hồ Chí Minh, bao gồm:
- Độc lập dân tộc
- Chủ nghĩa xã hội
- Đạo đức cách mạng
- Dân chủ
- Đoàn kết dân tộc`, question)
}
