package jobs

import (
	"context"
	"log"
	"time"

	"github.com/anjiri1684/tutor_hunt/repository"
	"github.com/anjiri1684/tutor_hunt/services"
	"github.com/robfig/cron/v3"
)

// ReviewReconciler raises every tutor's review counter that lags behind the
// number of its bookings carrying a review. Counters are never lowered, so
// tutors with reviews that predate booking flags keep their count.
type ReviewReconciler struct {
	store    repository.Store
	listener services.ChangeListener
	timeout  time.Duration
}

func NewReviewReconciler(store repository.Store, listener services.ChangeListener, timeout time.Duration) *ReviewReconciler {
	return &ReviewReconciler{store: store, listener: listener, timeout: timeout}
}

// Schedule registers the reconciler on c under spec.
func (r *ReviewReconciler) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, r.Run)
}

func (r *ReviewReconciler) Run() {
	log.Println("Running job: ReconcileReviewCounts...")

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	fixed, err := r.RunOnce(ctx)
	if err != nil {
		log.Printf("Error reconciling review counts: %v", err)
		return
	}
	if fixed == 0 {
		log.Println("Review counts are consistent.")
		return
	}
	log.Printf("Corrected the review count of %d tutor(s).", fixed)
}

// RunOnce returns how many tutors had a lagging counter raised.
func (r *ReviewReconciler) RunOnce(ctx context.Context) (int, error) {
	stored, err := r.store.Tutors().ReviewCounts(ctx)
	if err != nil {
		return 0, err
	}
	reviewed, err := r.store.Bookings().CountReviewedByTutor(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for tutorID, current := range stored {
		want := reviewed[tutorID]
		if want <= current {
			continue
		}

		var raised bool
		err := r.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
			var err error
			// A review or delete committed since ReviewCounts leaves raised false.
			raised, err = tx.Tutors().RaiseReviewCount(ctx, tutorID, current, want)
			return err
		})
		if err != nil {
			log.Printf("Error raising review count of tutor %s: %v", tutorID, err)
			continue
		}
		if raised {
			fixed++
		}
	}

	if fixed > 0 && r.listener != nil {
		r.listener.Changed(ctx)
	}
	return fixed, nil
}
