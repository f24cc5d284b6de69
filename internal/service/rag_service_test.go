package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
	appErr "github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errors"
)

type fakeStore struct {
	results    []model.ScoredDocument
	searchErr  error
	searched   int
	replaced   int
	replaceErr error
	count      int
}

func (f *fakeStore) Search(ctx context.Context, query string, limit int) ([]model.ScoredDocument, error) {
	f.searched++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeStore) ReplaceDocuments(ctx context.Context, texts []string, metadatas []model.DocumentMetadata) error {
	f.replaced++
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.count = len(texts)
	return nil
}

func (f *fakeStore) Count() int {
	return f.count
}

type fakeGenerator struct {
	answers []string
	errs    []error
	prompts []string
	callIdx int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	idx := f.callIdx
	f.callIdx++
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return "", err
	}
	if idx < len(f.answers) {
		return f.answers[idx], nil
	}
	return "câu trả lời", nil
}

func scoredDoc(text string, meta model.DocumentMetadata, score float64) model.ScoredDocument {
	return model.ScoredDocument{
		Document: model.Document{Text: text, Metadata: meta},
		Score:    score,
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{}
	rag := NewRAGService(store, gen)

	_, err := rag.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Zero(t, store.searched, "no retrieval on invalid question")
	require.Zero(t, gen.callIdx, "no provider call on invalid question")
}

func TestAskEmptyRetrievalIsNormalOutcome(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{}
	rag := NewRAGService(store, gen)

	result, err := rag.Ask(context.Background(), "câu hỏi lạ")
	require.NoError(t, err)
	require.Equal(t, noInfoAnswer, result.Answer)
	require.Empty(t, result.Sources)
	require.Zero(t, result.Confidence)
	require.Zero(t, gen.callIdx, "no generation without context")
}

func TestAskGroundedAnswer(t *testing.T) {
	store := &fakeStore{results: []model.ScoredDocument{
		scoredDoc("Độc lập là quyền thiêng liêng", model.DocumentMetadata{
			Source:           "Tuyên ngôn độc lập",
			DocumentTitle:    "Tuyên ngôn độc lập",
			CredibilityScore: 100,
			SourceType:       model.SourceTypePrimary,
		}, 0.9),
	}}
	gen := &fakeGenerator{answers: []string{"Độc lập là nền tảng [Nguồn 1 - Tuyên ngôn độc lập]"}}
	rag := NewRAGService(store, gen)

	result, err := rag.Ask(context.Background(), "độc lập là gì")
	require.NoError(t, err)
	require.Equal(t, 100, result.Confidence)
	require.Len(t, result.Sources, 1)
	require.Equal(t, "Tuyên ngôn độc lập", result.Sources[0].Source)
	require.Contains(t, gen.prompts[0], "[Nguồn 1 - Tuyên ngôn độc lập]: Độc lập là quyền thiêng liêng")
	require.Contains(t, gen.prompts[0], "độc lập là gì")
}

func TestAskCapsCitationsAtThree(t *testing.T) {
	var results []model.ScoredDocument
	for i := 0; i < 5; i++ {
		results = append(results, scoredDoc("đoạn văn", model.DocumentMetadata{
			Source:           "nguồn",
			CredibilityScore: 80,
		}, 1.0-float64(i)*0.1))
	}
	store := &fakeStore{results: results}
	rag := NewRAGService(store, &fakeGenerator{})

	result, err := rag.Ask(context.Background(), "câu hỏi")
	require.NoError(t, err)
	require.LessOrEqual(t, len(result.Sources), 3)
	require.Equal(t, 80, result.Confidence)
}

func TestAskDegradedOnGenerationFailure(t *testing.T) {
	store := &fakeStore{results: []model.ScoredDocument{
		scoredDoc("đoạn văn", model.DocumentMetadata{Source: "nguồn", CredibilityScore: 100}, 0.8),
	}}
	gen := &fakeGenerator{
		errs:    []error{errors.New("quota exceeded"), nil},
		answers: []string{"", "trả lời chung"},
	}
	rag := NewRAGService(store, gen)

	result, err := rag.Ask(context.Background(), "câu hỏi X")
	require.NoError(t, err)
	require.Equal(t, degradedConfidence, result.Confidence)
	require.Len(t, result.Sources, 1)
	require.Equal(t, degradedCitationLabel, result.Sources[0].Source)
	require.Equal(t, "trả lời chung", result.Answer)
	require.Equal(t, 2, gen.callIdx)
	require.NotContains(t, gen.prompts[1], "đoạn văn", "degraded prompt carries no retrieved context")
}

func TestAskExhaustedWhenBothTiersFail(t *testing.T) {
	store := &fakeStore{results: []model.ScoredDocument{
		scoredDoc("đoạn văn", model.DocumentMetadata{Source: "nguồn", CredibilityScore: 100}, 0.8),
	}}
	gen := &fakeGenerator{errs: []error{errors.New("quota"), errors.New("quota")}}
	rag := NewRAGService(store, gen)

	_, err := rag.Ask(context.Background(), "câu hỏi")
	require.ErrorIs(t, err, appErr.ErrExhausted)
}

func TestCitationLabelDeduplicates(t *testing.T) {
	label := citationLabel(model.DocumentMetadata{
		Source:        "Toàn tập Hồ Chí Minh, tập 5, tr.234-236",
		DocumentTitle: "Sửa đổi lối làm việc (1947)",
		Page:          "tr.234-236",
	})
	require.Equal(t, "Toàn tập Hồ Chí Minh, tập 5, tr.234-236 - Sửa đổi lối làm việc (1947)", label)
	require.Equal(t, 1, strings.Count(label, "tr.234-236"))
}

func TestCitationLabelIncludesMissingParts(t *testing.T) {
	label := citationLabel(model.DocumentMetadata{
		Source:        "Toàn tập Hồ Chí Minh",
		DocumentTitle: "Về giáo dục (1946)",
		Page:          "tr.89-92",
	})
	require.Equal(t, "Toàn tập Hồ Chí Minh - Về giáo dục (1946), tr.89-92", label)
}

func TestAssembleCitationsConfidenceFlooredMean(t *testing.T) {
	results := []model.ScoredDocument{
		scoredDoc("a", model.DocumentMetadata{Source: "s1", CredibilityScore: 100}, 0.9),
		scoredDoc("b", model.DocumentMetadata{Source: "s2", CredibilityScore: 90}, 0.8),
		scoredDoc("c", model.DocumentMetadata{Source: "s3", CredibilityScore: 90}, 0.7),
	}
	_, citations, confidence := assembleCitations(results)
	require.Len(t, citations, 3)
	require.Equal(t, 93, confidence)
}

func TestRefreshKnowledgeBaseSkipsWhenLoaded(t *testing.T) {
	store := &fakeStore{count: 8}
	rag := NewRAGService(store, &fakeGenerator{})

	require.NoError(t, rag.RefreshKnowledgeBase(context.Background(), false))
	require.Zero(t, store.replaced)

	require.NoError(t, rag.RefreshKnowledgeBase(context.Background(), true))
	require.Equal(t, 1, store.replaced)
	require.NotEmpty(t, rag.Stats().LastUpdate)
}

func TestStats(t *testing.T) {
	store := &fakeStore{count: 8}
	rag := NewRAGService(store, &fakeGenerator{})

	stats := rag.Stats()
	require.Equal(t, 8, stats.DocumentCount)
	require.Equal(t, "ready", stats.Status)
	require.Empty(t, stats.LastUpdate)
}
