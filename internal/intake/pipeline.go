package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/farellandr/thm-registration/internal/imagestore"
	"github.com/farellandr/thm-registration/internal/models"
	"github.com/farellandr/thm-registration/internal/store"
	"github.com/farellandr/thm-registration/internal/ticketid"
	"github.com/farellandr/thm-registration/internal/validation"
)

const (
	DefaultStoreTimeout = 10 * time.Second

	// MaxIDAttempts bounds insert attempts when a generated id collides.
	MaxIDAttempts = 3
)

type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.TicketRecord, error)
	FindByEitherID(ctx context.Context, id string) (*models.TicketRecord, error)
	Insert(ctx context.Context, record *models.TicketRecord) error
}

type ImageUploader interface {
	Upload(ctx context.Context, data []byte, name string) (*imagestore.Result, error)
}

type IDGenerator interface {
	Generate() (ticketid.Pair, error)
}

// RecordMirror receives each persisted record. Implementations must return
// without waiting on the sink.
type RecordMirror interface {
	Mirror(record models.TicketRecord)
}

type Result struct {
	TicketID      string `json:"ticketId"`
	ShortTicketID string `json:"shortTicketId"`
	Email         string `json:"email"`
}

type Pipeline struct {
	store        Store
	images       ImageUploader
	ids          IDGenerator
	mirror       RecordMirror
	log          zerolog.Logger
	storeTimeout time.Duration
	now          func() time.Time
}

type Option func(*Pipeline)

func WithStoreTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.storeTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(s Store, images ImageUploader, ids IDGenerator, mirror RecordMirror, log zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:        s,
		images:       images,
		ids:          ids,
		mirror:       mirror,
		log:          log.With().Str("component", "intake").Logger(),
		storeTimeout: DefaultStoreTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register runs one submission through validation, the duplicate check, id
// generation, image upload and persistence, in that order. The sheet mirror
// is scheduled after a successful insert and not awaited.
func (p *Pipeline) Register(ctx context.Context, form models.RegistrationForm, att *models.Attachment) (*Result, error) {
	if violations := validation.Validate(form, att); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	email := normalizeEmail(form.Email)
	log := p.log.With().Str("email", email).Logger()
	log.Debug().Msg("submission validated")

	existing, err := p.findByEmail(ctx, email)
	if err != nil {
		return nil, &StorageError{Op: "lookup", Err: err}
	}
	if existing != nil {
		log.Info().Msg("duplicate registration rejected")
		return nil, &DuplicateEmailError{Email: email}
	}

	ids, err := p.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate ticket id: %w", err)
	}
	log.Debug().Str("ticket_id", ids.TicketID).Msg("ticket id generated")

	// The asset keeps this name even if insert regenerates the ids.
	uploaded, err := p.images.Upload(ctx, att.Data, ids.ShortTicketID)
	if err != nil {
		log.Error().Err(err).Msg("screenshot upload failed")
		var upErr *imagestore.UploadError
		if errors.As(err, &upErr) {
			return nil, upErr
		}
		return nil, &imagestore.UploadError{Message: err.Error()}
	}
	log.Debug().Str("ticket_id", ids.TicketID).Msg("screenshot uploaded")

	record := buildRecord(form, ids, uploaded)
	if err := p.insert(ctx, record, log); err != nil {
		return nil, err
	}
	log.Info().Str("ticket_id", record.TicketID).Str("short_ticket_id", record.ShortTicketID).Msg("registration persisted")

	if p.mirror != nil {
		p.mirror.Mirror(*record)
	}

	return &Result{
		TicketID:      record.TicketID,
		ShortTicketID: record.ShortTicketID,
		Email:         record.Email,
	}, nil
}

// Lookup returns the record matching a ticket id or short ticket id, or nil
// when none exists.
func (p *Pipeline) Lookup(ctx context.Context, id string) (*models.TicketRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	record, err := p.store.FindByEitherID(ctx, id)
	if err != nil {
		return nil, &StorageError{Op: "lookup", Err: err}
	}
	return record, nil
}

func (p *Pipeline) findByEmail(ctx context.Context, email string) (*models.TicketRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()
	return p.store.FindByEmail(ctx, email)
}

// insert persists the record, regenerating ids when the generated pair
// collides with an existing ticket. Email collisions are returned as-is.
func (p *Pipeline) insert(ctx context.Context, record *models.TicketRecord, log zerolog.Logger) error {
	for attempt := 1; ; attempt++ {
		err := p.insertOnce(ctx, record)
		if err == nil {
			return nil
		}

		var dupErr *store.DuplicateKeyError
		if !errors.As(err, &dupErr) {
			log.Error().Err(err).Msg("failed to persist registration")
			return &StorageError{Op: "insert", Err: err}
		}
		if dupErr.Field == store.FieldEmail || attempt >= MaxIDAttempts {
			log.Warn().Str("field", dupErr.Field).Int("attempt", attempt).Msg("insert rejected by unique index")
			return dupErr
		}

		ids, genErr := p.ids.Generate()
		if genErr != nil {
			return fmt.Errorf("generate ticket id: %w", genErr)
		}
		log.Warn().Str("field", dupErr.Field).Str("ticket_id", ids.TicketID).Msg("ticket id collision, retrying with a new id")
		record.TicketID = ids.TicketID
		record.ShortTicketID = ids.ShortTicketID
	}
}

func (p *Pipeline) insertOnce(ctx context.Context, record *models.TicketRecord) error {
	ctx, cancel := context.WithTimeout(ctx, p.storeTimeout)
	defer cancel()

	now := p.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	return p.store.Insert(ctx, record)
}

func buildRecord(form models.RegistrationForm, ids ticketid.Pair, uploaded *imagestore.Result) *models.TicketRecord {
	record := &models.TicketRecord{
		TicketID:                       ids.TicketID,
		ShortTicketID:                  ids.ShortTicketID,
		FullName:                       strings.TrimSpace(form.FullName),
		Email:                          normalizeEmail(form.Email),
		Phone:                          strings.TrimSpace(form.Phone),
		College:                        strings.TrimSpace(form.College),
		Branch:                         strings.TrimSpace(form.Branch),
		Year:                           form.Year,
		Gender:                         strings.ToLower(form.Gender),
		Accommodation:                  form.Accommodation,
		FoodPreference:                 form.FoodPreference,
		IEEEStatus:                     form.IEEEStatus,
		TicketType:                     form.TicketType,
		TransactionScreenshotURL:       uploaded.URL,
		TransactionScreenshotDeleteURL: uploaded.DeleteURL,
		Status:                         models.StatusPending,
	}
	if form.IEEEStatus == models.IEEEMember {
		membershipID := strings.TrimSpace(form.IEEEMembershipID)
		record.IEEEMembershipID = &membershipID
	}
	return record
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
