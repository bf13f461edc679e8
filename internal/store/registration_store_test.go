package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/farellandr/thm-registration/internal/models"
	"github.com/farellandr/thm-registration/internal/store"
	"github.com/farellandr/thm-registration/internal/store/storetest"
)

func newRecord(ticketID, shortID, email string) *models.TicketRecord {
	return &models.TicketRecord{
		TicketID:                       ticketID,
		ShortTicketID:                  shortID,
		FullName:                       "Jane Doe",
		Email:                          email,
		Phone:                          "+919876543210",
		College:                        "ABC",
		Branch:                         "CS",
		Year:                           "2",
		Gender:                         "female",
		Accommodation:                  "no",
		FoodPreference:                 "veg",
		IEEEStatus:                     models.IEEENonMember,
		TicketType:                     "non-ieee",
		TransactionScreenshotURL:       "https://i.ibb.co/x/proof.jpg",
		TransactionScreenshotDeleteURL: "https://ibb.co/x/del",
		Status:                         models.StatusPending,
	}
}

func TestInsertAndFind(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	rec := newRecord("11111111-aaaa-4bbb-8ccc-dddddddddddd", "THM-11111111", "jane@x.com")
	if err := s.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	byEmail, err := s.FindByEmail(ctx, "jane@x.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail == nil || byEmail.TicketID != rec.TicketID {
		t.Fatalf("unexpected record %+v", byEmail)
	}

	byID, err := s.FindByEitherID(ctx, rec.TicketID)
	if err != nil {
		t.Fatalf("find by ticket id: %v", err)
	}
	byShort, err := s.FindByEitherID(ctx, rec.ShortTicketID)
	if err != nil {
		t.Fatalf("find by short id: %v", err)
	}
	if byID == nil || byShort == nil || byID.ID != byShort.ID {
		t.Fatalf("expected the same record, got %+v and %+v", byID, byShort)
	}
	if byShort.TransactionScreenshotDeleteURL != "https://ibb.co/x/del" {
		t.Fatalf("delete url not persisted: %q", byShort.TransactionScreenshotDeleteURL)
	}
	if byShort.Status != models.StatusPending {
		t.Fatalf("unexpected status %q", byShort.Status)
	}
}

func TestFindMissingReturnsNil(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	rec, err := s.FindByEmail(ctx, "nobody@x.com")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", rec, err)
	}
	rec, err = s.FindByEitherID(ctx, "THM-00000000")
	if err != nil || rec != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", rec, err)
	}
}

func TestInsertDuplicateKeys(t *testing.T) {
	tests := []struct {
		name      string
		second    *models.TicketRecord
		wantField string
	}{
		{"email", newRecord("22222222-aaaa-4bbb-8ccc-dddddddddddd", "THM-22222222", "jane@x.com"), store.FieldEmail},
		{"ticket id", newRecord("11111111-aaaa-4bbb-8ccc-dddddddddddd", "THM-99999999", "other@x.com"), store.FieldTicketID},
		{"short ticket id", newRecord("11111111-ffff-4bbb-8ccc-dddddddddddd", "THM-11111111", "other@x.com"), store.FieldShortTicketID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storetest.New(t)
			ctx := context.Background()

			if err := s.Insert(ctx, newRecord("11111111-aaaa-4bbb-8ccc-dddddddddddd", "THM-11111111", "jane@x.com")); err != nil {
				t.Fatalf("insert first: %v", err)
			}

			err := s.Insert(ctx, tt.second)
			var dupErr *store.DuplicateKeyError
			if !errors.As(err, &dupErr) {
				t.Fatalf("expected DuplicateKeyError, got %v", err)
			}
			if dupErr.Field != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, dupErr.Field)
			}
		})
	}
}

func TestMembershipIDNullable(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	id := "98765432"
	member := newRecord("33333333-aaaa-4bbb-8ccc-dddddddddddd", "THM-33333333", "member@x.com")
	member.IEEEStatus = models.IEEEMember
	member.IEEEMembershipID = &id

	if err := s.Insert(ctx, member); err != nil {
		t.Fatalf("insert member: %v", err)
	}
	if err := s.Insert(ctx, newRecord("44444444-aaaa-4bbb-8ccc-dddddddddddd", "THM-44444444", "plain@x.com")); err != nil {
		t.Fatalf("insert non-member: %v", err)
	}

	got, _ := s.FindByEmail(ctx, "member@x.com")
	if got.IEEEMembershipID == nil || *got.IEEEMembershipID != id {
		t.Fatalf("unexpected membership id %v", got.IEEEMembershipID)
	}
	got, _ = s.FindByEmail(ctx, "plain@x.com")
	if got.IEEEMembershipID != nil {
		t.Fatalf("expected nil membership id, got %q", *got.IEEEMembershipID)
	}
}

func TestPing(t *testing.T) {
	if err := storetest.New(t).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
