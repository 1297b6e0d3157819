package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MediaKind discriminates the single media attachment a memory or story
// page may carry.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "image"
	MediaAudio MediaKind = "audio"
)

var ErrInvalidMediaKind = errors.New("invalid media kind")

// Media is a tagged variant: exactly one kind and one URL. Modelling the
// attachment this way makes the one-media-per-item rule structural instead
// of a convention spread across three nullable columns.
type Media struct {
	Kind MediaKind `json:"kind" db:"media_kind"`
	URL  string    `json:"url" db:"media_url"`
}

// NewMedia validates the kind and returns a Media value.
func NewMedia(kind MediaKind, url string) (*Media, error) {
	switch kind {
	case MediaVideo, MediaImage, MediaAudio:
		return &Media{Kind: kind, URL: url}, nil
	default:
		return nil, ErrInvalidMediaKind
	}
}

// Memory is a mood-tagged journal entry with an optional media attachment
// and optional location.
type Memory struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Mood         int       `json:"mood" db:"mood"`
	TextContent  string    `json:"textContent" db:"text_content"`
	Visibility   string    `json:"visibility" db:"visibility"`
	Media        *Media    `json:"media,omitempty"`
	LocationName *string   `json:"locationName,omitempty" db:"location_name"`
	Latitude     *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Story is an ordered collection of pages.
type Story struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Title      string    `json:"title" db:"title"`
	Visibility string    `json:"visibility" db:"visibility"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type StoryPage struct {
	ID         uuid.UUID `json:"id" db:"id"`
	StoryID    uuid.UUID `json:"storyId" db:"story_id"`
	PageNumber int       `json:"pageNumber" db:"page_number"`
	PageText   string    `json:"pageText" db:"page_text"`
	Media      *Media    `json:"media,omitempty"`
}

// Badge is an achievement record tied to a user.
type Badge struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	IconURL     string    `json:"iconUrl" db:"icon_url"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
