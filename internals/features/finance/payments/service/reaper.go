package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	"csesociety_backend/internals/features/finance/payments/model"
)

// Reaper drops pending transactions whose gateway session has long expired.
// No payment record is ever written for them.
type Reaper struct {
	db       *gorm.DB
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

func NewReaper(db *gorm.DB, cfg configs.PaymentConfig) *Reaper {
	ttl := cfg.PendingTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Reaper{db: db, ttl: ttl, schedule: cfg.ReaperSchedule, now: time.Now}
}

// Sweep deletes every pending row older than the TTL and reports how many went.
func (r *Reaper) Sweep(ctx context.Context) (int64, error) {
	cutoff := r.now().Add(-r.ttl)
	res := r.db.WithContext(ctx).
		Where("pending_transaction_created_at < ?", cutoff).
		Delete(&model.PendingTransaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("sweep pending transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Reaper) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		n, err := r.Sweep(ctx)
		if err != nil {
			log.Printf("[REAPER] %v", err)
			return
		}
		if n > 0 {
			log.Printf("[REAPER] removed %d stale pending transactions", n)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reaper %q: %w", r.schedule, err)
	}
	r.cron = c
	c.Start()
	log.Printf("[REAPER] started schedule=%q ttl=%s", r.schedule, r.ttl)
	return nil
}

// Stop waits for a running sweep to finish.
func (r *Reaper) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
