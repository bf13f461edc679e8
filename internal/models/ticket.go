package models

import (
	"time"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	IEEEMember    = "member"
	IEEENonMember = "non-member"
)

// TicketRecord is one registrant's persisted submission. The delete URL is a
// capability for removing the hosted screenshot and is never serialized.
type TicketRecord struct {
	ID                             uint      `gorm:"primaryKey" json:"-"`
	TicketID                       string    `gorm:"size:36;not null;uniqueIndex:idx_ticket_records_ticket_id" json:"ticketId"`
	ShortTicketID                  string    `gorm:"size:16;not null;uniqueIndex:idx_ticket_records_short_ticket_id" json:"shortTicketId"`
	FullName                       string    `gorm:"not null" json:"fullName"`
	Email                          string    `gorm:"not null;uniqueIndex:idx_ticket_records_email" json:"email"`
	Phone                          string    `gorm:"not null" json:"phone"`
	College                        string    `gorm:"not null" json:"college"`
	Branch                         string    `gorm:"not null" json:"branch"`
	Year                           string    `gorm:"size:1;not null" json:"year"`
	Gender                         string    `gorm:"not null" json:"gender"`
	Accommodation                  string    `gorm:"not null" json:"accommodation"`
	FoodPreference                 string    `gorm:"not null" json:"foodPreference"`
	IEEEStatus                     string    `gorm:"column:ieee_status;not null" json:"ieeeStatus"`
	IEEEMembershipID               *string   `gorm:"column:ieee_membership_id" json:"ieeeMembershipId"`
	TicketType                     string    `gorm:"not null" json:"ticketType"`
	TransactionScreenshotURL       string    `gorm:"column:transaction_screenshot_url;not null" json:"transactionScreenshotUrl"`
	TransactionScreenshotDeleteURL string    `gorm:"column:transaction_screenshot_delete_url;not null" json:"-"`
	Status                         string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt                      time.Time `json:"createdAt"`
	UpdatedAt                      time.Time `json:"updatedAt"`
}

func (TicketRecord) TableName() string {
	return "ticket_records"
}
