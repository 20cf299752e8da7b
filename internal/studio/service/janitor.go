package service

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor prunes idle editor sessions on a cron schedule so abandoned
// documents do not hold their history logs in memory forever.
type Janitor struct {
	cron     *cron.Cron
	sessions *SessionManager
	schedule string
	maxAge   time.Duration
}

// NewJanitor creates a Janitor. The schedule uses standard five-field cron
// syntax, e.g. "*/5 * * * *".
func NewJanitor(sessions *SessionManager, schedule string, maxAge time.Duration) *Janitor {
	return &Janitor{
		cron:     cron.New(),
		sessions: sessions,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

// Start registers the prune job and starts the scheduler.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if pruned := j.sessions.PruneIdle(j.maxAge); pruned > 0 {
			log.Printf("Pruned %d idle editor session(s)", pruned)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	log.Printf("Session janitor started (schedule %q, max idle %s)", j.schedule, j.maxAge)
	return nil
}

// Stop halts the scheduler; running jobs finish.
func (j *Janitor) Stop() {
	j.cron.Stop()
}
