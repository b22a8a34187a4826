package journalrelay

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/godeposit/internal/domain"
	"github.com/iho/godeposit/internal/usecase"
)

// Relay drains the journal outbox: bridge deltas queued by commands are
// handed to the Poster and marked posted. Commands never wait on the
// accounting service; the relay retries on the next tick.
type Relay struct {
	outbox    usecase.JournalOutboxRepository
	poster    Poster
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
}

// Poster delivers one queued bridge delta to the accounting service.
type Poster interface {
	Post(ctx context.Context, entry *domain.JournalOutboxEntry) error
}

// Config for Relay.
type Config struct {
	Outbox    usecase.JournalOutboxRepository
	Poster    Poster
	Logger    zerolog.Logger
	BatchSize int           // Number of entries to fetch per batch
	Interval  time.Duration // Polling interval
}

// NewRelay creates a new Relay.
func NewRelay(cfg Config) *Relay {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}

	return &Relay{
		outbox:    cfg.Outbox,
		poster:    cfg.Poster,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Start begins the relay worker. It runs continuously until the context
// is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	r.logger.Info().
		Int("batch_size", r.batchSize).
		Dur("interval", r.interval).
		Msg("journal relay started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Process immediately on start
	if err := r.processEntries(ctx); err != nil {
		r.logger.Error().Err(err).Msg("error draining journal outbox on start")
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("journal relay shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := r.processEntries(ctx); err != nil {
				r.logger.Error().Err(err).Msg("error draining journal outbox")
			}
		}
	}
}

// processEntries fetches and posts a batch of unposted entries.
func (r *Relay) processEntries(ctx context.Context) error {
	entries, err := r.outbox.GetUnposted(ctx, r.batchSize)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	r.logger.Info().Int("count", len(entries)).Msg("posting journal entries")

	for _, entry := range entries {
		if err := r.poster.Post(ctx, entry); err != nil {
			r.logger.Error().
				Err(err).
				Int64("entry_id", entry.ID).
				Str("account_id", entry.AccountID).
				Msg("failed to post journal entry")
			// Continue processing other entries even if one fails
			continue
		}

		if err := r.outbox.MarkPosted(ctx, entry.ID, time.Now()); err != nil {
			r.logger.Error().
				Err(err).
				Int64("entry_id", entry.ID).
				Msg("failed to mark journal entry as posted")
			// Don't continue - we don't want to re-post this entry
		}
	}

	return nil
}

// LogPoster is a poster that only logs entries, for environments without
// an accounting service.
type LogPoster struct {
	logger zerolog.Logger
}

// NewLogPoster creates a new LogPoster.
func NewLogPoster(logger zerolog.Logger) *LogPoster {
	return &LogPoster{logger: logger}
}

// Post logs the entry.
func (p *LogPoster) Post(_ context.Context, entry *domain.JournalOutboxEntry) error {
	p.logger.Info().
		Int64("entry_id", entry.ID).
		Str("account_id", entry.AccountID).
		Str("office_id", entry.OfficeID).
		Int("new_transactions", len(entry.Bridge.NewTransactionIDs)).
		Int("reversals", len(entry.Bridge.NewlyReversedTransactionIDs)).
		Msg("JOURNAL POSTED")

	return nil
}
