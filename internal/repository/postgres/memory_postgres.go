package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
)

type memoryRepository struct {
	db *sqlx.DB
}

// NewMemoryRepository creates a new PostgreSQL memory repository
func NewMemoryRepository(db *sqlx.DB) repository.MemoryRepository {
	return &memoryRepository{db: db}
}

// mediaColumns flattens the tagged variant into its two columns. Both are
// NULL when no media is attached; a CHECK constraint keeps them in sync.
func mediaColumns(media *domain.Media) (kind, url interface{}) {
	if media == nil {
		return nil, nil
	}
	return string(media.Kind), media.URL
}

// CreateMemory inserts a new memory into the database
func (r *memoryRepository) CreateMemory(ctx context.Context, memory *domain.Memory) error {
	kind, url := mediaColumns(memory.Media)

	query := `
		INSERT INTO memories (
			id, user_id, mood, text_content, visibility, media_kind, media_url,
			location_name, latitude, longitude, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		memory.ID, memory.UserID, memory.Mood, memory.TextContent,
		memory.Visibility, kind, url,
		memory.LocationName, memory.Latitude, memory.Longitude, memory.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create memory: %w", err)
	}

	return nil
}

// CreateStory inserts a new story into the database
func (r *memoryRepository) CreateStory(ctx context.Context, story *domain.Story) error {
	query := `
		INSERT INTO stories (id, user_id, title, visibility, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query,
		story.ID, story.UserID, story.Title, story.Visibility, story.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}

	return nil
}

// CreateStoryPage inserts a new story page into the database
func (r *memoryRepository) CreateStoryPage(ctx context.Context, page *domain.StoryPage) error {
	kind, url := mediaColumns(page.Media)

	query := `
		INSERT INTO story_pages (id, story_id, page_number, page_text, media_kind, media_url)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		page.ID, page.StoryID, page.PageNumber, page.PageText, kind, url,
	)
	if err != nil {
		return fmt.Errorf("failed to create story page: %w", err)
	}

	return nil
}

// CreateBadge inserts a new badge into the database
func (r *memoryRepository) CreateBadge(ctx context.Context, badge *domain.Badge) error {
	query := `
		INSERT INTO badges (id, user_id, name, slug, description, icon_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		badge.ID, badge.UserID, badge.Name, badge.Slug,
		badge.Description, badge.IconURL, badge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// CountByUser returns the number of memories a user has recorded
func (r *memoryRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM memories WHERE user_id = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}

	return count, nil
}
