package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/anjiri1684/tutor_hunt/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyBooking(ctx context.Context, tutor models.Tutor, booking models.Booking) error {
	return m.Called(tutor, booking).Error(0)
}

type countingListener struct {
	mu    sync.Mutex
	calls int
}

func (l *countingListener) Changed(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
}

func (l *countingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key]
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

func (c *mapCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

type chanPublisher struct {
	clients int
	sent    chan models.Stats
}

func (p *chanPublisher) Publish(stats models.Stats) { p.sent <- stats }
func (p *chanPublisher) ClientCount() int { return p.clients }

// faultyStore wraps a MemoryStore to reproduce the failure modes of a shared database.
type faultyStore struct {
	*repository.MemoryStore
	// skipLookup makes the existence pre-check miss, as a concurrent writer would.
	skipLookup    bool
	failIncrement bool
}

func (s *faultyStore) Tutors() repository.TutorRepository {
	return &faultyTutors{TutorRepository: s.MemoryStore.Tutors(), s: s}
}

func (s *faultyStore) Bookings() repository.BookingRepository {
	return &faultyBookings{BookingRepository: s.MemoryStore.Bookings(), s: s}
}

func (s *faultyStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return s.MemoryStore.WithTransaction(ctx, func(ctx context.Context, _ repository.Store) error {
		return fn(ctx, s)
	})
}

type faultyTutors struct {
	repository.TutorRepository
	s *faultyStore
}

func (r *faultyTutors) IncrementReview(ctx context.Context, id string) error {
	if r.s.failIncrement {
		return apperrors.ErrUpdateFailed
	}
	return r.TutorRepository.IncrementReview(ctx, id)
}

type faultyBookings struct {
	repository.BookingRepository
	s *faultyStore
}

func (r *faultyBookings) FindByTutorAndUser(ctx context.Context, tutorID, userEmail string) (*models.Booking, error) {
	if r.s.skipLookup {
		return nil, nil
	}
	return r.BookingRepository.FindByTutorAndUser(ctx, tutorID, userEmail)
}

func createTutor(t *testing.T, store repository.Store, owner, language string) models.Tutor {
	t.Helper()
	tutor := models.Tutor{Email: owner, Name: "Tutor " + language, Language: language, Price: 20}
	require.NoError(t, store.Tutors().Create(context.Background(), &tutor))
	return tutor
}
