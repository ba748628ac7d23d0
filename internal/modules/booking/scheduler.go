package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// NewExpiryScheduler runs ExpirePending every interval.
func NewExpiryScheduler(svc *Service, interval, ttl time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) {
			n, err := svc.ExpirePending(ctx, ttl)
			if err != nil {
				log.Printf("booking_expiry_failed error=%q", err.Error())
				return
			}
			if n > 0 {
				log.Printf("booking_expiry cancelled=%d ttl=%s", n, ttl)
			}
		}),
		gocron.WithName("expire-pending-bookings"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule expiry job: %w", err)
	}
	return sched, nil
}
