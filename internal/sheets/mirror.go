package sheets

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/farellandr/thm-registration/internal/models"
)

const (
	DefaultWorkers   = 2
	DefaultQueueSize = 256
	DefaultTimeout   = 15 * time.Second

	isoMillis = "2006-01-02T15:04:05.000Z"
)

// Header is the column order of every mirrored row.
var Header = []interface{}{
	"Ticket ID",
	"Short Ticket ID",
	"Full Name",
	"Email",
	"Phone",
	"College",
	"Branch",
	"Year",
	"Gender",
	"Accommodation",
	"Food Preference",
	"IEEE Status",
	"IEEE Membership ID",
	"Ticket Type",
	"Transaction Screenshot URL",
	"Status",
	"Created At",
}

// Appender writes one row to the external sheet.
type Appender interface {
	AppendRow(ctx context.Context, row []interface{}) error
}

type Options struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// Mirror replicates persisted records to a sheet in the background. It never
// blocks the caller and never reports failures beyond the log.
type Mirror struct {
	appender Appender
	log      zerolog.Logger
	timeout  time.Duration
	workers  int

	jobs      chan models.TicketRecord
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	startOnce sync.Once
}

// NewMirror returns a mirror writing through appender. A nil appender yields
// a mirror whose Mirror calls do nothing.
func NewMirror(appender Appender, log zerolog.Logger, opts Options) *Mirror {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Mirror{
		appender: appender,
		log:      log.With().Str("component", "sheet_mirror").Logger(),
		timeout:  opts.Timeout,
		workers:  opts.Workers,
		jobs:     make(chan models.TicketRecord, opts.QueueSize),
	}
}

func (m *Mirror) Enabled() bool {
	return m.appender != nil
}

func (m *Mirror) Start() {
	if !m.Enabled() {
		m.log.Info().Msg("sheet mirror not configured, rows will not be mirrored")
		return
	}
	m.startOnce.Do(func() {
		for i := 0; i < m.workers; i++ {
			m.wg.Add(1)
			go m.run()
		}
		m.log.Info().Int("workers", m.workers).Msg("sheet mirror started")
	})
}

// Mirror schedules record for appending and returns immediately.
func (m *Mirror) Mirror(record models.TicketRecord) {
	if !m.Enabled() {
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		m.log.Warn().Str("ticket_id", record.TicketID).Msg("sheet mirror closed, row dropped")
		return
	}

	select {
	case m.jobs <- record:
	default:
		m.log.Warn().Str("ticket_id", record.TicketID).Msg("sheet mirror queue full, row dropped")
	}
}

// Close stops accepting rows and waits for queued rows until ctx expires.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.jobs)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) run() {
	defer m.wg.Done()
	for record := range m.jobs {
		m.append(record)
	}
}

func (m *Mirror) append(record models.TicketRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			m.log.Error().Interface("panic", rec).Str("ticket_id", record.TicketID).Msg("sheet append panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	if err := m.appender.AppendRow(ctx, Row(record)); err != nil {
		m.log.Error().Err(err).Str("ticket_id", record.TicketID).Msg("failed to mirror registration to sheet")
		return
	}
	m.log.Debug().Str("ticket_id", record.TicketID).Msg("registration mirrored to sheet")
}

// Row flattens a record into the fixed 17-column layout of Header.
func Row(r models.TicketRecord) []interface{} {
	membershipID := ""
	if r.IEEEMembershipID != nil {
		membershipID = *r.IEEEMembershipID
	}
	return []interface{}{
		r.TicketID,
		r.ShortTicketID,
		r.FullName,
		r.Email,
		r.Phone,
		r.College,
		r.Branch,
		r.Year,
		r.Gender,
		r.Accommodation,
		r.FoodPreference,
		r.IEEEStatus,
		membershipID,
		r.TicketType,
		r.TransactionScreenshotURL,
		r.Status,
		r.CreatedAt.UTC().Format(isoMillis),
	}
}
