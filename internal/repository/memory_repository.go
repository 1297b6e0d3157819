package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hyperingenious/fold-backend/internal/domain"
)

// MemoryRepository persists the journal domain entities. Only the seeder
// writes these today; the read side is kept minimal.
type MemoryRepository interface {
	CreateMemory(ctx context.Context, memory *domain.Memory) error
	CreateStory(ctx context.Context, story *domain.Story) error
	CreateStoryPage(ctx context.Context, page *domain.StoryPage) error
	CreateBadge(ctx context.Context, badge *domain.Badge) error

	// CountByUser returns the number of memories a user has recorded
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}
