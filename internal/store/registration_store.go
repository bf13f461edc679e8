package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/farellandr/thm-registration/internal/models"
)

const (
	FieldEmail         = "email"
	FieldTicketID      = "ticketId"
	FieldShortTicketID = "shortTicketId"

	pgUniqueViolation = "23505"
)

// DuplicateKeyError reports a unique-index violation on insert. Field is the
// JSON name of the offending column.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

type RegistrationStore struct {
	db *gorm.DB
}

func NewRegistrationStore(db *gorm.DB) *RegistrationStore {
	return &RegistrationStore{db: db}
}

// AutoMigrate creates ticket_records together with its three unique indexes.
func (s *RegistrationStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.TicketRecord{})
}

func (s *RegistrationStore) FindByEmail(ctx context.Context, email string) (*models.TicketRecord, error) {
	var record models.TicketRecord
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find by email: %w", err)
	}
	return &record, nil
}

func (s *RegistrationStore) FindByEitherID(ctx context.Context, id string) (*models.TicketRecord, error) {
	var record models.TicketRecord
	err := s.db.WithContext(ctx).
		Where("ticket_id = ? OR short_ticket_id = ?", id, id).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return &record, nil
}

func (s *RegistrationStore) Insert(ctx context.Context, record *models.TicketRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if field, ok := duplicateField(err); ok {
			return &DuplicateKeyError{Field: field}
		}
		return fmt.Errorf("insert ticket record: %w", err)
	}
	return nil
}

func (s *RegistrationStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *RegistrationStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Unique index names as declared on models.TicketRecord.
var pgConstraintFields = map[string]string{
	"idx_ticket_records_email":           FieldEmail,
	"idx_ticket_records_ticket_id":       FieldTicketID,
	"idx_ticket_records_short_ticket_id": FieldShortTicketID,
}

// sqlite names the violated column as table.column after this prefix.
const sqliteUniquePrefix = "UNIQUE constraint failed: "

var sqliteColumnFields = map[string]string{
	"ticket_records.email":           FieldEmail,
	"ticket_records.ticket_id":       FieldTicketID,
	"ticket_records.short_ticket_id": FieldShortTicketID,
}

// duplicateField inspects a driver error for a unique violation and names the
// column. Only the constraint or column name is consulted; the offending value
// never is.
func duplicateField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		if field, ok := pgConstraintFields[pgErr.ConstraintName]; ok {
			return field, true
		}
		return "unknown", true
	}

	msg := err.Error()
	if i := strings.Index(msg, sqliteUniquePrefix); i >= 0 {
		column := msg[i+len(sqliteUniquePrefix):]
		if j := strings.IndexAny(column, " ,"); j >= 0 {
			column = column[:j]
		}
		if field, ok := sqliteColumnFields[column]; ok {
			return field, true
		}
		return "unknown", true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "unknown", true
	}
	return "", false
}
