package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidState = errors.New("invalid or expired oauth state")

const (
	oauthStatePrefix = "oauth:state:"
	oauthStateTTL    = 10 * time.Minute
)

// OAuthStateStore keeps single-use CSRF state tokens for the OAuth flow
// in Redis, mapping each state to the callback URL the client asked for.
type OAuthStateStore struct {
	redis *redis.Client
}

func NewOAuthStateStore(client *redis.Client) *OAuthStateStore {
	return &OAuthStateStore{redis: client}
}

// Create mints a random state token bound to callbackURL.
func (s *OAuthStateStore) Create(ctx context.Context, callbackURL string) (string, error) {
	state, err := generateToken(sessionTokenLength)
	if err != nil {
		return "", err
	}

	if err := s.redis.Set(ctx, oauthStatePrefix+state, callbackURL, oauthStateTTL).Err(); err != nil {
		return "", err
	}

	return state, nil
}

// Consume redeems a state token, returning its callback URL. Each state
// is valid exactly once.
func (s *OAuthStateStore) Consume(ctx context.Context, state string) (string, error) {
	callbackURL, err := s.redis.GetDel(ctx, oauthStatePrefix+state).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidState
		}
		return "", err
	}
	return callbackURL, nil
}
