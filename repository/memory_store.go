package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/tutor_hunt/apperrors"
	"github.com/anjiri1684/tutor_hunt/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps everything in process memory. It backs STORE_DRIVER=memory
// for local runs and the package tests of the layers above.
//
// Transactions are serialized and restore a snapshot when fn fails; writes made
// outside a transaction while one is running can be lost on rollback.
type MemoryStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	tutors   map[string]models.Tutor
	bookings map[string]models.Booking
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tutors:   make(map[string]models.Tutor),
		bookings: make(map[string]models.Booking),
	}
}

func (s *MemoryStore) Tutors() TutorRepository {
	return &memoryTutorRepository{s: s}
}

func (s *MemoryStore) Bookings() BookingRepository {
	return &memoryBookingRepository{s: s}
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	tutors := copyMap(s.tutors)
	bookings := copyMap(s.bookings)
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.tutors = tutors
		s.bookings = bookings
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// sortedByID returns values ordered by id, which for ObjectID hex is creation order.
func sortedByID[V any](m map[string]V, keep func(V) bool) []V {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []V{}
	for _, id := range ids {
		if v := m[id]; keep(v) {
			out = append(out, v)
		}
	}
	return out
}

type memoryTutorRepository struct {
	s *MemoryStore
}

func (r *memoryTutorRepository) matching(filter models.TutorFilter) []models.Tutor {
	language := strings.ToLower(filter.Language)
	return sortedByID(r.s.tutors, func(t models.Tutor) bool {
		if filter.OwnerEmail != "" && t.Email != filter.OwnerEmail {
			return false
		}
		return language == "" || strings.Contains(strings.ToLower(t.Language), language)
	})
}

func (r *memoryTutorRepository) List(ctx context.Context, filter models.TutorFilter, page, pageSize int) (*models.TutorPage, error) {
	page, pageSize = ClampPage(page, pageSize)

	r.s.mu.Lock()
	all := r.matching(filter)
	r.s.mu.Unlock()

	total := int64(len(all))
	start := Offset(page, pageSize)
	items := []models.Tutor{}
	if start < len(all) {
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		items = all[start:end]
	}

	return &models.TutorPage{
		Items:      items,
		Page:       page,
		TotalPages: TotalPages(total, pageSize),
		TotalItems: total,
	}, nil
}

func (r *memoryTutorRepository) GetByID(ctx context.Context, id string) (*models.Tutor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tutor, ok := r.s.tutors[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &tutor, nil
}

func (r *memoryTutorRepository) ListByCategory(ctx context.Context, category string) ([]models.Tutor, error) {
	language := NormalizeCategory(category)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.tutors, func(t models.Tutor) bool { return t.Language == language }), nil
}

func (r *memoryTutorRepository) Create(ctx context.Context, tutor *models.Tutor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if tutor.ID == "" {
		tutor.ID = primitive.NewObjectID().Hex()
	}
	if _, exists := r.s.tutors[tutor.ID]; exists {
		return apperrors.ErrConflict
	}
	now := time.Now()
	tutor.Review = 0
	tutor.CreatedAt, tutor.UpdatedAt = now, now
	r.s.tutors[tutor.ID] = *tutor
	return nil
}

func (r *memoryTutorRepository) Update(ctx context.Context, id string, update models.TutorUpdate) (*models.Tutor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tutor, ok := r.s.tutors[id]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("tutor not found")
	}
	if update.Image != nil {
		tutor.Image = *update.Image
	}
	if update.Language != nil {
		tutor.Language = *update.Language
	}
	if update.Price != nil {
		tutor.Price = *update.Price
	}
	if update.Description != nil {
		tutor.Description = *update.Description
	}
	tutor.UpdatedAt = time.Now()
	r.s.tutors[id] = tutor
	return &tutor, nil
}

func (r *memoryTutorRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tutors[id]; !ok {
		return apperrors.ErrNotFound.WithMessage("tutor not found")
	}
	delete(r.s.tutors, id)
	return nil
}

func (r *memoryTutorRepository) IncrementReview(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tutor, ok := r.s.tutors[id]
	if !ok {
		return apperrors.ErrUpdateFailed
	}
	tutor.Review++
	r.s.tutors[id] = tutor
	return nil
}

func (r *memoryTutorRepository) RaiseReviewCount(ctx context.Context, id string, from, to int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tutor, ok := r.s.tutors[id]
	if !ok || tutor.Review != from || to <= from {
		return false, nil
	}
	tutor.Review = to
	r.s.tutors[id] = tutor
	return true, nil
}

func (r *memoryTutorRepository) ReviewCounts(ctx context.Context) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[string]int, len(r.s.tutors))
	for id, t := range r.s.tutors {
		counts[id] = t.Review
	}
	return counts, nil
}

func (r *memoryTutorRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.tutors)), nil
}

func (r *memoryTutorRepository) CountLanguages(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	languages := make(map[string]struct{})
	for _, t := range r.s.tutors {
		languages[t.Language] = struct{}{}
	}
	return int64(len(languages)), nil
}

func (r *memoryTutorRepository) SumReviews(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var total int64
	for _, t := range r.s.tutors {
		total += int64(t.Review)
	}
	return total, nil
}

type memoryBookingRepository struct {
	s *MemoryStore
}

func (r *memoryBookingRepository) find(tutorID, userEmail string) (models.Booking, bool) {
	for _, b := range r.s.bookings {
		if b.TutorID == tutorID && b.UserEmail == userEmail {
			return b, true
		}
	}
	return models.Booking{}, false
}

func (r *memoryBookingRepository) FindByTutorAndUser(ctx context.Context, tutorID, userEmail string) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.find(tutorID, userEmail)
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (r *memoryBookingRepository) ListByUser(ctx context.Context, userEmail string) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sortedByID(r.s.bookings, func(b models.Booking) bool { return b.UserEmail == userEmail }), nil
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.find(booking.TutorID, booking.UserEmail); exists {
		return apperrors.ErrConflict
	}
	if booking.ID == "" {
		booking.ID = primitive.NewObjectID().Hex()
	}
	booking.HasReviewed = false
	booking.CreatedAt = time.Now()
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *memoryBookingRepository) MarkReviewed(ctx context.Context, tutorID, userEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.find(tutorID, userEmail)
	if !ok || booking.HasReviewed {
		return false, nil
	}
	booking.HasReviewed = true
	r.s.bookings[booking.ID] = booking
	return true, nil
}

func (r *memoryBookingRepository) CountReviewedByTutor(ctx context.Context) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[string]int)
	for _, b := range r.s.bookings {
		if b.HasReviewed {
			counts[b.TutorID]++
		}
	}
	return counts, nil
}

func (r *memoryBookingRepository) CountUsers(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make(map[string]struct{})
	for _, b := range r.s.bookings {
		users[b.UserEmail] = struct{}{}
	}
	return int64(len(users)), nil
}
