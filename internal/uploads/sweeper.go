package uploads

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ImageReferences lists the image filenames still referenced by a user
// record. Implemented by the users repository.
type ImageReferences interface {
	ReferencedImages() (map[string]bool, error)
}

// Sweeper periodically deletes orphaned upload files on a cron schedule.
// Sweeping is best-effort: failures are logged and the next run tries
// again.
type Sweeper struct {
	store  *Store
	refs   ImageReferences
	minAge time.Duration
	cron   *cron.Cron
}

// NewSweeper schedules periodic orphan sweeps. minAge keeps the sweeper
// from racing an in-flight signup whose file exists before its record.
func NewSweeper(store *Store, refs ImageReferences, schedule string, minAge time.Duration) (*Sweeper, error) {
	s := &Sweeper{
		store:  store,
		refs:   refs,
		minAge: minAge,
		cron:   cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running sweeps in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish, up to
// the context deadline.
func (s *Sweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *Sweeper) run() {
	inUse, err := s.refs.ReferencedImages()
	if err != nil {
		log.Printf("uploads: sweep skipped, could not list referenced images: %v", err)
		return
	}
	removed, err := s.store.Sweep(s.minAge, inUse)
	if err != nil {
		log.Printf("uploads: sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("uploads: sweep removed %d orphaned file(s)", removed)
	}
}
