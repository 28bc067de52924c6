// Package scoring implements the score computation and interest lookup at
// the heart of the service.
package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hw-score/scoring-api/internal/metrics"
	"github.com/hw-score/scoring-api/internal/store"
)

// scoreTTL is how long a computed score stays cached.
const scoreTTL = 60 * time.Minute

// Profile carries the client attributes that contribute to a score. Pointer
// fields distinguish "absent" from zero values; gender 0 (unknown) is a
// valid, present value.
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Birthday  *time.Time
	Gender    *int
}

// Service computes scores and resolves client interests against a Store.
type Service struct {
	store   store.Store
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewService creates a scoring service. The metrics recorder may be nil.
func NewService(st store.Store, logger *slog.Logger, rec *metrics.Recorder) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   st,
		logger:  logger.With(slog.String("component", "scoring")),
		metrics: rec,
	}
}

// Score returns the score for the profile, consulting the cache first.
// Cache failures degrade to a recompute; Score itself cannot fail.
func (s *Service) Score(ctx context.Context, p Profile) float64 {
	key := cacheKey(p)

	if cached, ok := s.store.CacheGet(ctx, key); ok {
		if score, err := strconv.ParseFloat(cached, 64); err == nil {
			if s.metrics != nil {
				s.metrics.ScoreCacheHits.Inc()
			}
			return score
		}
		s.logger.Warn("discarding malformed cached score",
			slog.String("key", key),
			slog.String("value", cached))
	}
	if s.metrics != nil {
		s.metrics.ScoreCacheMiss.Inc()
	}

	score := compute(p)
	s.store.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), scoreTTL)
	return score
}

// Interests returns the stored interest list for a client. A client with no
// stored interests gets an empty list; store failures propagate.
func (s *Service) Interests(ctx context.Context, clientID int) ([]string, error) {
	raw, err := s.store.Get(ctx, fmt.Sprintf("i:%d", clientID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []string{}, nil
		}
		if s.metrics != nil {
			s.metrics.StoreErrors.Inc()
		}
		return nil, fmt.Errorf("interests for client %d: %w", clientID, err)
	}

	var interests []string
	if err := json.Unmarshal([]byte(raw), &interests); err != nil {
		return nil, fmt.Errorf("interests for client %d: malformed record: %w", clientID, err)
	}
	return interests, nil
}

func compute(p Profile) float64 {
	score := 0.0
	if p.Phone != "" {
		score += 1.5
	}
	if p.Email != "" {
		score += 1.5
	}
	if p.Birthday != nil && p.Gender != nil {
		score += 1.5
	}
	if p.FirstName != "" && p.LastName != "" {
		score += 0.5
	}
	return score
}

func cacheKey(p Profile) string {
	birthday := ""
	if p.Birthday != nil {
		birthday = p.Birthday.Format("20060102")
	}
	sum := md5.Sum([]byte(p.FirstName + p.LastName + p.Phone + birthday))
	return "uid:" + hex.EncodeToString(sum[:])
}
