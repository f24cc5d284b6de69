package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dixeliare/hochiminh-chatbot/internal/model"
	appErr "github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errors"
	"github.com/Dixeliare/hochiminh-chatbot/internal/snapshot"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embedding"
}

type memorySnapshots struct {
	data    []byte
	failPut bool
}

func (m *memorySnapshots) Load(ctx context.Context) ([]byte, error) {
	if m.data == nil {
		return nil, errors.New("no snapshot")
	}
	return m.data, nil
}

func (m *memorySnapshots) Save(ctx context.Context, data []byte) error {
	if m.failPut {
		return errors.New("disk full")
	}
	m.data = data
	return nil
}

func newLocalSnapshots(t *testing.T) snapshot.Store {
	t.Helper()
	store, err := snapshot.New("local", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestSearchEmptyCorpus(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := New(embedder, &memorySnapshots{})

	results, err := store.Search(context.Background(), "độc lập", 5)
	require.NoError(t, err)
	require.Empty(t, results)
	require.Zero(t, embedder.calls, "empty corpus must not invoke the embedding provider")
}

func TestAddDocumentsAndCount(t *testing.T) {
	store := New(&fakeEmbedder{}, &memorySnapshots{})

	err := store.AddDocuments(context.Background(), []string{"a", "b"}, []model.DocumentMetadata{
		{Source: "s1"},
		{Source: "s2"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, store.Count())
}

func TestAddDocumentsRejectsEmptyText(t *testing.T) {
	store := New(&fakeEmbedder{}, &memorySnapshots{})

	err := store.AddDocuments(context.Background(), []string{"  "}, []model.DocumentMetadata{{Source: "s"}})
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.Zero(t, store.Count())
}

func TestAddDocumentsDefaultsCredibility(t *testing.T) {
	snapshots := &memorySnapshots{}
	store := New(&fakeEmbedder{}, snapshots)

	require.NoError(t, store.AddDocuments(context.Background(), []string{"text"}, []model.DocumentMetadata{{Source: "s"}}))
	results, err := store.Search(context.Background(), "text", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 100, results[0].Document.Metadata.CredibilityScore)
}

func TestSearchDeterministicOrdering(t *testing.T) {
	embedder := &fakeEmbedder{fail: true}
	store := New(embedder, &memorySnapshots{})

	// All placeholders, so lexical overlap decides; identical texts tie and
	// must keep insertion order.
	texts := []string{"độc lập tự do", "độc lập tự do", "hạnh phúc"}
	metas := []model.DocumentMetadata{{Source: "a"}, {Source: "b"}, {Source: "c"}}
	require.NoError(t, store.AddDocuments(context.Background(), texts, metas))

	first, err := store.Search(context.Background(), "độc lập", 3)
	require.NoError(t, err)
	second, err := store.Search(context.Background(), "độc lập", 3)
	require.NoError(t, err)
	require.Equal(t, first, second)

	require.Equal(t, "a", first[0].Document.Metadata.Source)
	require.Equal(t, "b", first[1].Document.Metadata.Source)
	require.Equal(t, "c", first[2].Document.Metadata.Source)
}

func TestSearchLimitClamped(t *testing.T) {
	store := New(&fakeEmbedder{fail: true}, &memorySnapshots{})

	texts := make([]string, 0, 12)
	metas := make([]model.DocumentMetadata, 0, 12)
	for i := 0; i < 12; i++ {
		texts = append(texts, "passage")
		metas = append(metas, model.DocumentMetadata{Source: "s"})
	}
	require.NoError(t, store.AddDocuments(context.Background(), texts, metas))

	results, err := store.Search(context.Background(), "passage", 50)
	require.NoError(t, err)
	require.Len(t, results, MaxSearchLimit)
}

func TestSearchEmbeddingSimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"cat": {1, 0, 0},
		"dog": {0, 1, 0},
		"cat food": {0.9, 0.1, 0},
	}}
	store := New(embedder, &memorySnapshots{})
	require.NoError(t, store.AddDocuments(context.Background(),
		[]string{"cat", "dog"},
		[]model.DocumentMetadata{{Source: "cat"}, {Source: "dog"}},
	))

	results, err := store.Search(context.Background(), "cat food", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "cat", results[0].Document.Metadata.Source)
}

func TestLexicalScenarioVietnamese(t *testing.T) {
	// Embedding provider is down for the whole test: every stored vector is
	// a placeholder and scoring falls back to word overlap. Known degraded
	// ranking mode, not a bug.
	store := New(&fakeEmbedder{fail: true}, &memorySnapshots{})
	require.NoError(t, store.AddDocuments(context.Background(),
		[]string{"Độc lập là quyền thiêng liêng bất khả xâm phạm của mọi dân tộc"},
		[]model.DocumentMetadata{{Source: "Tuyên ngôn độc lập", CredibilityScore: 100}},
	))

	results, err := store.Search(context.Background(), "độc lập là gì", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Tuyên ngôn độc lập", results[0].Document.Metadata.Source)
	require.Greater(t, results[0].Score, 0.0)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snapshots := newLocalSnapshots(t)
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"văn bản một": {1, 2, 3},
		"văn bản hai": {4, 5, 6},
	}}
	store := New(embedder, snapshots)
	require.NoError(t, store.AddDocuments(context.Background(),
		[]string{"văn bản một", "văn bản hai"},
		[]model.DocumentMetadata{
			{Source: "s1", DocumentTitle: "d1", Page: "tr.1", CredibilityScore: 90, SourceType: model.SourceTypeOfficial},
			{Source: "s2", DocumentTitle: "d2", CredibilityScore: 80, SourceType: model.SourceTypeDerived},
		},
	))

	reloaded := New(embedder, snapshots)
	require.NoError(t, reloaded.Load(context.Background()))
	require.Equal(t, 2, reloaded.Count())

	results, err := reloaded.Search(context.Background(), "văn bản một", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "s1", results[0].Document.Metadata.Source)
	require.Equal(t, "d1", results[0].Document.Metadata.DocumentTitle)
	require.Equal(t, 90, results[0].Document.Metadata.CredibilityScore)
}

func TestLoadMissingSnapshotLeavesCorpusEmpty(t *testing.T) {
	store := New(&fakeEmbedder{}, newLocalSnapshots(t))
	require.NoError(t, store.Load(context.Background()))
	require.Zero(t, store.Count())
}

func TestLoadCorruptSnapshotLeavesCorpusEmpty(t *testing.T) {
	snapshots := &memorySnapshots{data: []byte("{not json")}
	store := New(&fakeEmbedder{}, snapshots)
	require.NoError(t, store.Load(context.Background()))
	require.Zero(t, store.Count())
}

func TestPersistFailureKeepsMemoryAhead(t *testing.T) {
	snapshots := &memorySnapshots{failPut: true}
	store := New(&fakeEmbedder{}, snapshots)

	err := store.AddDocuments(context.Background(), []string{"text"}, []model.DocumentMetadata{{Source: "s"}})
	require.ErrorIs(t, err, appErr.ErrPersistence)
	require.Equal(t, 1, store.Count(), "in-memory state stays ahead of durable state until retried")

	snapshots.failPut = false
	require.NoError(t, store.AddDocuments(context.Background(), []string{"more"}, []model.DocumentMetadata{{Source: "s2"}}))
	require.Equal(t, 2, store.Count())
}

func TestReplaceDocuments(t *testing.T) {
	store := New(&fakeEmbedder{}, &memorySnapshots{})
	require.NoError(t, store.AddDocuments(context.Background(), []string{"old"}, []model.DocumentMetadata{{Source: "old"}}))

	require.NoError(t, store.ReplaceDocuments(context.Background(),
		[]string{"new one", "new two"},
		[]model.DocumentMetadata{{Source: "n1"}, {Source: "n2"}},
	))
	require.Equal(t, 2, store.Count())

	results, err := store.Search(context.Background(), "new", 5)
	require.NoError(t, err)
	for _, result := range results {
		require.NotEqual(t, "old", result.Document.Metadata.Source)
	}
}

func TestPlaceholderVectorDeterministic(t *testing.T) {
	a := placeholderVector("cùng một văn bản")
	b := placeholderVector("cùng một văn bản")
	require.Equal(t, a, b)
	require.Len(t, a, EmbeddingDim)

	c := placeholderVector("văn bản khác")
	require.Len(t, c, EmbeddingDim)
}
