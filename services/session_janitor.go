package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/akinalp/scribe/repository"
)

// SessionJanitor periodically deletes expired refresh sessions.
type SessionJanitor interface {
	Start()
	Stop()
}

type sessionJanitor struct {
	sessionRepo repository.SessionRepository
	interval    time.Duration

	// stopCh is closed by Stop; stopOnce makes repeated Stop calls harmless.
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSessionJanitor(sessionRepo repository.SessionRepository, interval time.Duration) SessionJanitor {
	return &sessionJanitor{
		sessionRepo: sessionRepo,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start sweeps once right away, then every interval until Stop.
func (j *sessionJanitor) Start() {
	log.Printf("[session-janitor] starting (interval=%s)", j.interval)

	go func() {
		j.sweep()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.sweep()
			case <-j.stopCh:
				log.Println("[session-janitor] stopped")
				return
			}
		}
	}()
}

func (j *sessionJanitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopCh) })
}

// sweep uses its own bounded context: it runs on the janitor goroutine, not
// on behalf of any request.
func (j *sessionJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := j.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("[session-janitor] sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[session-janitor] removed %d expired sessions", n)
	}
}
