package job

import (
	"context"

	"github.com/Dixeliare/hochiminh-chatbot/internal/service"
)

// KBRefreshJob periodically rebuilds the knowledge base so a corpus that was
// loaded with placeholder embeddings gets real ones once the provider is back.
type KBRefreshJob struct {
	rag *service.RAGService
}

func NewKBRefreshJob(rag *service.RAGService) *KBRefreshJob {
	return &KBRefreshJob{rag: rag}
}

func (j *KBRefreshJob) Name() string {
	return "kb_refresh"
}

func (j *KBRefreshJob) Run(ctx context.Context) error {
	if j.rag == nil {
		return nil
	}
	return j.rag.RefreshKnowledgeBase(ctx, true)
}
