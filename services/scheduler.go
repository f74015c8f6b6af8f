// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpiryScheduler closes overdue bounties once a minute.
func (s *BountyService) StartExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			closed, err := s.ExpireOverdue(time.Now().UTC())
			if err != nil {
				log.Printf("[Expiry] DB error: %v", err)
				return
			}
			if closed > 0 {
				log.Printf("✅ Closed %d expired bounty(ies)", closed)
			}
		}),
	)
}
