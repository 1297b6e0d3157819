// Command seed populates the database with a demo user and a batch of
// journal data for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/hyperingenious/fold-backend/internal/config"
	"github.com/hyperingenious/fold-backend/internal/database"
	"github.com/hyperingenious/fold-backend/internal/domain"
	"github.com/hyperingenious/fold-backend/internal/repository"
	"github.com/hyperingenious/fold-backend/internal/repository/postgres"
	"github.com/hyperingenious/fold-backend/pkg/hash"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "Password123!"
	memoryCount  = 50
	storyCount   = 15
)

var videos = []string{
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/videoplayback%20%283%29.mp4",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/videoplayback%20%284%29.mp4",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/bablesh-bNrGuCB1VLBnkjOwTYsxg86va3uTws.mp4",
}

var images = []string{
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/1-llBttGXF2kvot7YHz0XLt5yFCldbUx.png",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/10-2HFRv4Pzg7t3dAwdUfexHU91MWl7xk.png",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/100-S3PlR1pscjVqKKYqZwjizC8VOFMb0c.png",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/12-0afFeP9R1Tk41dK5wvBJnONR18u0yr.png",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/14-Uh3S3l0RkwHkWIGHXf47SauHsZOSlT.png",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/15-rvfuQ9s2BN25V0Cq8uHXTxD1XCCOH9.png",
}

var audios = []string{
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/Adri%C3%A1n%20Berenguer%20-%20Premiere.mp3",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/BalloonPlanet%20-%20Iron%20Caravan.mp3",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/Roie%20Shpigler%20-%20Until%20We%E2%80%99re%20Gone.mp3",
	"https://viqwjhprxs3j5sad.public.blob.vercel-storage.com/cat-images/Yehezkel%20Raz%20-%20Ballerina.mp3",
}

var moods = []int{-2, -1, 0, 1, 2}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.MigrateUp(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	if err := run(ctx, db); err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	log.Println("✅ Seed completed successfully!")
}

func run(ctx context.Context, db *sqlx.DB) error {
	users := postgres.NewUserRepository(db)
	accounts := postgres.NewAccountRepository(db)
	memories := postgres.NewMemoryRepository(db)

	log.Println("🌱 Starting seed...")

	user, err := ensureDemoUser(ctx, users, accounts)
	if err != nil {
		return err
	}

	if err := seedMemories(ctx, memories, user.ID); err != nil {
		return err
	}
	if err := seedStories(ctx, memories, user.ID); err != nil {
		return err
	}
	if err := seedBadges(ctx, memories, user.ID); err != nil {
		return err
	}

	count, err := memories.CountByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	log.Printf("User %s now has %d memories", user.Email, count)

	return nil
}

func ensureDemoUser(ctx context.Context, users repository.UserRepository, accounts repository.AccountRepository) (*domain.User, error) {
	user, err := users.GetByEmail(ctx, demoEmail)
	if err == nil {
		log.Printf("User already exists: %s", user.ID)
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	log.Println("Creating demo user...")

	passwordHash, err := hash.Password(demoPassword)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user = &domain.User{
		ID:        uuid.New(),
		Name:      "Demo User",
		Email:     demoEmail,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:           uuid.New(),
		AccountID:    user.ID.String(),
		ProviderID:   domain.ProviderCredential,
		UserID:       user.ID,
		PasswordHash: &passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	log.Printf("User created: %s (%s / %s)", user.ID, demoEmail, demoPassword)
	return user, nil
}

func seedMemories(ctx context.Context, memories repository.MemoryRepository, userID uuid.UUID) error {
	log.Printf("Creating %d memories...", memoryCount)

	for i := 0; i < memoryCount; i++ {
		media := randomMedia(0.7)
		mood := moods[rand.Intn(len(moods))]

		note := "Just thoughts."
		if media != nil {
			note = "Attached some media."
		}

		memory := &domain.Memory{
			ID:          uuid.New(),
			UserID:      userID,
			Mood:        mood,
			TextContent: fmt.Sprintf("Memory #%d: Feeling %d today. %s", i+1, mood, note),
			Visibility:  "private",
			Media:       media,
			CreatedAt:   randomDate(),
		}

		if rand.Float64() > 0.8 {
			name := "San Francisco, CA"
			lat, lng := 37.7749, -122.4194
			memory.LocationName = &name
			memory.Latitude = &lat
			memory.Longitude = &lng
		}

		if err := memories.CreateMemory(ctx, memory); err != nil {
			return err
		}
	}

	log.Println("Memories created.")
	return nil
}

func seedStories(ctx context.Context, memories repository.MemoryRepository, userID uuid.UUID) error {
	log.Printf("Creating %d stories...", storyCount)

	for i := 0; i < storyCount; i++ {
		story := &domain.Story{
			ID:         uuid.New(),
			UserID:     userID,
			Title:      fmt.Sprintf("My Adventures - Chapter %d", i+1),
			Visibility: "private",
			CreatedAt:  randomDate(),
		}
		if err := memories.CreateStory(ctx, story); err != nil {
			return err
		}

		numPages := rand.Intn(5) + 1
		for p := 1; p <= numPages; p++ {
			page := &domain.StoryPage{
				ID:         uuid.New(),
				StoryID:    story.ID,
				PageNumber: p,
				PageText:   fmt.Sprintf("Page %d: Exploring the world.", p),
				Media:      randomMedia(0.6),
			}
			if err := memories.CreateStoryPage(ctx, page); err != nil {
				return err
			}
		}
	}

	log.Println("Stories created.")
	return nil
}

func seedBadges(ctx context.Context, memories repository.MemoryRepository, userID uuid.UUID) error {
	log.Println("Creating badges...")

	names := []struct {
		name string
		slug string
	}{
		{"First Post", "first-post"},
		{"Memory Maker", "memory-maker"},
		{"Storyteller", "story-teller"},
		{"Vlogger", "vlogger"},
		{"Photographer", "photographer"},
	}

	for _, b := range names {
		badge := &domain.Badge{
			ID:          uuid.New(),
			UserID:      userID,
			Name:        b.name,
			Slug:        fmt.Sprintf("%s-%d-%d", b.slug, time.Now().UnixMilli(), rand.Intn(1000)),
			Description: fmt.Sprintf("Awarded for being a great %s", b.name),
			IconURL:     images[rand.Intn(len(images))],
			CreatedAt:   time.Now(),
		}
		if err := memories.CreateBadge(ctx, badge); err != nil {
			return err
		}
	}

	log.Println("Badges created.")
	return nil
}

// randomMedia picks zero or one attachment, with the given probability of
// having one at all.
func randomMedia(chance float64) *domain.Media {
	if rand.Float64() > chance {
		return nil
	}

	var kind domain.MediaKind
	var url string
	switch r := rand.Float64(); {
	case r < 0.33:
		kind, url = domain.MediaVideo, videos[rand.Intn(len(videos))]
	case r < 0.66:
		kind, url = domain.MediaImage, images[rand.Intn(len(images))]
	default:
		kind, url = domain.MediaAudio, audios[rand.Intn(len(audios))]
	}

	media, err := domain.NewMedia(kind, url)
	if err != nil {
		return nil
	}
	return media
}

func randomDate() time.Time {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	span := time.Since(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(rand.Int63n(int64(span))))
}
