package section

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/platform/notify"
)

// StatsSource reads the summary counts.
type StatsSource interface {
	Stats(ctx context.Context) (clinicapi.Stats, error)
}

// Dashboard holds the summary counts shown on the landing screen.
type Dashboard struct {
	src      StatsSource
	notifier notify.Notifier
	logger   zerolog.Logger

	life   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	loaded bool
	stats  clinicapi.Stats
}

func NewDashboard(src StatsSource, notifier notify.Notifier, logger zerolog.Logger) *Dashboard {
	if notifier == nil {
		notifier = notify.Discard
	}
	life, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		src:      src,
		notifier: notifier,
		logger:   logger.With().Str("section", "dashboard").Logger(),
		life:     life,
		cancel:   cancel,
	}
}

// Refresh reloads the counts. On failure the previous counts are kept.
func (d *Dashboard) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(d.life, cancel)
	defer stop()

	stats, err := d.src.Stats(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if err != nil {
		d.logger.Warn().Err(err).Msg("refresh failed")
		d.notifier.Notify("Failed to load data", notify.KindError)
		return err
	}
	d.stats = stats
	d.loaded = true
	return nil
}

// Summary returns the last loaded counts and whether any load succeeded.
func (d *Dashboard) Summary() (clinicapi.Stats, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats, d.loaded
}

func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()
}
