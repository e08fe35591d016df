package utils

import (
	"context"
	"log"
	"time"
)

// StartCleanupJob runs fn once immediately and then every interval until
// ctx is cancelled.
func StartCleanupJob(ctx context.Context, name string, every time.Duration, fn func()) {
	log.Printf("Running %s cleanup for the first time...", name)
	fn()

	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Printf("%s cleanup job stopped", name)
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	log.Printf("%s cleanup job started (every %s)", name, every)
}
