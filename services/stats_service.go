package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/anjiri1684/tutor_hunt/repository"
)

const (
	StatsCacheKey  = "stats:summary"
	publishTimeout = 10 * time.Second
)

// Cache is the fail-safe key/value store the stats are kept in.
type Cache interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Publisher pushes snapshots to live dashboards.
type Publisher interface {
	Publish(stats models.Stats)
	ClientCount() int
}

type StatsService struct {
	store     repository.Store
	cache     Cache
	publisher Publisher
	ttl       time.Duration
}

func NewStatsService(store repository.Store, cache Cache, publisher Publisher, ttl time.Duration) *StatsService {
	return &StatsService{store: store, cache: cache, publisher: publisher, ttl: ttl}
}

// Compute returns the dashboard totals, served from cache when fresh.
func (s *StatsService) Compute(ctx context.Context) (models.Stats, error) {
	if s.cache != nil {
		if raw := s.cache.Get(ctx, StatsCacheKey); raw != nil {
			var cached models.Stats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	stats, err := s.aggregate(ctx)
	if err != nil {
		return models.Stats{}, err
	}

	if s.cache != nil && s.ttl > 0 {
		if raw, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, StatsCacheKey, raw, s.ttl)
		}
	}
	return stats, nil
}

func (s *StatsService) aggregate(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	var err error

	tutors := s.store.Tutors()
	if stats.TotalTutors, err = tutors.Count(ctx); err != nil {
		return stats, err
	}
	if stats.TotalLanguages, err = tutors.CountLanguages(ctx); err != nil {
		return stats, err
	}
	if stats.TotalReviews, err = tutors.SumReviews(ctx); err != nil {
		return stats, err
	}
	if stats.TotalUsers, err = s.store.Bookings().CountUsers(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

// Changed drops the cached totals after a write and, when dashboards are
// listening, pushes a fresh snapshot in the background.
func (s *StatsService) Changed(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, StatsCacheKey)
	}
	if s.publisher == nil || s.publisher.ClientCount() == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		stats, err := s.Compute(ctx)
		if err != nil {
			log.Printf("stats publish: %v", err)
			return
		}
		s.publisher.Publish(stats)
	}()
}
