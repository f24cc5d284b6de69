package vectorstore

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Dixeliare/hochiminh-chatbot/internal/ai"
	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
	appErr "github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errors"
	"github.com/Dixeliare/hochiminh-chatbot/internal/snapshot"
)

const (
	// EmbeddingDim is the fixed dimension every stored vector must have,
	// real or placeholder.
	EmbeddingDim = 768

	// MaxSearchLimit caps the top-K any caller may request.
	MaxSearchLimit = 10

	defaultSearchLimit = 5

	embedTimeout = 10 * time.Second
)

// Store holds the corpus: three positionally aligned sequences of document
// texts, metadata and embeddings, persisted as one wholesale snapshot.
// Reads may run concurrently; writes go through bulkUpdate one at a time.
type Store struct {
	// writeMu serializes bulk updates end to end, including persistence.
	writeMu sync.Mutex

	mu        sync.RWMutex
	documents []model.Document
	vectors   [][]float32

	embedder  ai.IEmbedder
	snapshots snapshot.Store
}

type snapshotData struct {
	Documents  []string                 `json:"documents"`
	Metadatas  []model.DocumentMetadata `json:"metadatas"`
	Embeddings [][]float32              `json:"embeddings"`
}

func New(embedder ai.IEmbedder, snapshots snapshot.Store) *Store {
	return &Store{
		embedder:  embedder,
		snapshots: snapshots,
	}
}

// Load reads the persisted snapshot wholesale. A missing or corrupt snapshot
// leaves the corpus empty: the knowledge base can always be rebuilt through
// AddDocuments.
func (s *Store) Load(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	raw, err := s.snapshots.Load(ctx)
	if err != nil {
		logger.Warn("no corpus snapshot loaded, starting empty", zap.Error(err))
		return nil
	}
	var data snapshotData
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("corpus snapshot corrupt, starting empty", zap.Error(err))
		return nil
	}
	if len(data.Documents) != len(data.Metadatas) || len(data.Documents) != len(data.Embeddings) {
		logger.Warn("corpus snapshot misaligned, starting empty",
			zap.Int("documents", len(data.Documents)),
			zap.Int("metadatas", len(data.Metadatas)),
			zap.Int("embeddings", len(data.Embeddings)),
		)
		return nil
	}
	docs := make([]model.Document, 0, len(data.Documents))
	for i, text := range data.Documents {
		docs = append(docs, model.Document{
			ID:       fmt.Sprintf("doc_%d", i),
			Text:     text,
			Metadata: data.Metadatas[i],
		})
	}
	s.mu.Lock()
	s.documents = docs
	s.vectors = data.Embeddings
	s.mu.Unlock()
	logger.Info("corpus snapshot loaded", zap.Int("documents", len(docs)))
	return nil
}

// AddDocuments embeds and appends the given passages, then persists the full
// snapshot. If persistence fails the in-memory corpus stays ahead of durable
// state and ErrPersistence is returned so the bulk update can be retried.
func (s *Store) AddDocuments(ctx context.Context, texts []string, metadatas []model.DocumentMetadata) error {
	return s.bulkUpdate(ctx, texts, metadatas, false)
}

// ReplaceDocuments swaps the whole corpus for the given passages in one bulk
// update, used by a full knowledge-base refresh. Same persistence semantics
// as AddDocuments.
func (s *Store) ReplaceDocuments(ctx context.Context, texts []string, metadatas []model.DocumentMetadata) error {
	return s.bulkUpdate(ctx, texts, metadatas, true)
}

func (s *Store) bulkUpdate(ctx context.Context, texts []string, metadatas []model.DocumentMetadata, replace bool) error {
	if len(texts) != len(metadatas) {
		return fmt.Errorf("%w: texts and metadatas length mismatch", appErr.ErrInvalid)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	logger := logutil.GetLogger(ctx)
	entries := make([]model.Document, 0, len(texts))
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: document text must not be empty", appErr.ErrInvalid)
		}
		meta := metadatas[i]
		if meta.CredibilityScore == 0 {
			meta.CredibilityScore = 100
		}
		if meta.CredibilityScore < 0 || meta.CredibilityScore > 100 {
			return fmt.Errorf("%w: credibility_score out of range: %d", appErr.ErrInvalid, meta.CredibilityScore)
		}
		vector := s.embedDocument(ctx, text)
		entries = append(entries, model.Document{Text: text, Metadata: meta})
		vectors = append(vectors, vector)
	}

	s.mu.Lock()
	if replace {
		s.documents = nil
		s.vectors = nil
	}
	base := len(s.documents)
	for i := range entries {
		entries[i].ID = fmt.Sprintf("doc_%d", base+i)
	}
	s.documents = append(s.documents, entries...)
	s.vectors = append(s.vectors, vectors...)
	data := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.persist(ctx, data); err != nil {
		logger.Error("persist corpus snapshot failed", zap.Error(err))
		return fmt.Errorf("%w: %v", appErr.ErrPersistence, err)
	}
	logger.Info("documents added", zap.Int("added", len(entries)), zap.Int("total", base+len(entries)))
	return nil
}

// Search ranks every stored document against the query and returns the top
// limit by descending score. Exact score ties rank earlier-inserted documents
// first, so identical inputs always produce identical output.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]model.ScoredDocument, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", appErr.ErrInvalid)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	s.mu.RLock()
	documents := s.documents
	vectors := s.vectors
	s.mu.RUnlock()

	if len(documents) == 0 {
		return nil, nil
	}

	scores := s.scoreAll(ctx, query, documents, vectors)
	order := make([]int, len(documents))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})
	if limit > len(order) {
		limit = len(order)
	}
	results := make([]model.ScoredDocument, 0, limit)
	for _, idx := range order[:limit] {
		results = append(results, model.ScoredDocument{
			Document: documents[idx],
			Score:    scores[idx],
		})
	}
	return results, nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// scoreAll picks the scoring strategy from what is available: cosine
// similarity over real embeddings, falling back to lexical word overlap when
// every stored vector is a placeholder or the query embedding fails.
func (s *Store) scoreAll(ctx context.Context, query string, documents []model.Document, vectors [][]float32) []float64 {
	logger := logutil.GetLogger(ctx)
	scores := make([]float64, len(documents))

	if allPlaceholder(vectors) {
		logger.Debug("corpus embeddings degenerate, using lexical overlap scoring")
		for i, doc := range documents {
			scores[i] = lexicalOverlap(query, doc.Text)
		}
		return scores
	}

	queryVector, err := s.embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil || len(queryVector) == 0 {
		logger.Warn("query embedding failed, using lexical overlap scoring", zap.Error(err))
		for i, doc := range documents {
			scores[i] = lexicalOverlap(query, doc.Text)
		}
		return scores
	}
	for i := range documents {
		scores[i] = cosineSimilarity(queryVector, vectors[i])
	}
	return scores
}

func (s *Store) embedDocument(ctx context.Context, text string) []float32 {
	vector, err := s.embed(ctx, text, "RETRIEVAL_DOCUMENT")
	if err != nil || len(vector) == 0 {
		logutil.GetLogger(ctx).Warn("embedding failed, using placeholder vector", zap.Error(err))
		return placeholderVector(text)
	}
	return vector
}

func (s *Store) embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	return s.embedder.Embed(ctx, text, taskType)
}

func (s *Store) snapshotLocked() *snapshotData {
	data := &snapshotData{
		Documents:  make([]string, 0, len(s.documents)),
		Metadatas:  make([]model.DocumentMetadata, 0, len(s.documents)),
		Embeddings: s.vectors,
	}
	for _, doc := range s.documents {
		data.Documents = append(data.Documents, doc.Text)
		data.Metadatas = append(data.Metadatas, doc.Metadata)
	}
	return data
}

func (s *Store) persist(ctx context.Context, data *snapshotData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.snapshots.Save(ctx, raw)
}

// placeholderVector derives a deterministic constant vector from the text's
// hash. It keeps the fixed-dimension invariant when the embedding provider is
// down, at the cost of ranking quality.
func placeholderVector(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	value := float32(binary.BigEndian.Uint64(sum[:8])%1000) / 1000.0
	vector := make([]float32, EmbeddingDim)
	for i := range vector {
		vector[i] = value
	}
	return vector
}

// allPlaceholder reports whether every stored vector is degenerate (all
// components equal), which is exactly the shape placeholderVector produces.
func allPlaceholder(vectors [][]float32) bool {
	if len(vectors) == 0 {
		return false
	}
	for _, vector := range vectors {
		if len(vector) == 0 {
			continue
		}
		first := vector[0]
		for _, v := range vector[1:] {
			if v != first {
				return false
			}
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// lexicalOverlap scores by the share of distinct query tokens present in the
// document, in [0, 1].
func lexicalOverlap(query, doc string) float64 {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	docTokens := tokenize(doc)
	common := 0
	for token := range queryTokens {
		if _, ok := docTokens[token]; ok {
			common++
		}
	}
	return float64(common) / float64(len(queryTokens))
}

func tokenize(text string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, field := range strings.Fields(strings.ToLower(text)) {
		tokens[field] = struct{}{}
	}
	return tokens
}
