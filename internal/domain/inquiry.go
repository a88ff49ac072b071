package domain

import (
	"context"
	"time"
)

// InquiryStatus tracks whether the owner has responded.
type InquiryStatus string

const (
	InquiryNew       InquiryStatus = "new"
	InquiryResponded InquiryStatus = "responded"
)

// Inquiry is a message from an interested user to a property owner.
type Inquiry struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"propertyId"`
	FromUserID string        `json:"fromUserId"`
	ToUserID   string        `json:"toUserId"`
	Message    string        `json:"message"`
	Status     InquiryStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// InquiryRepository defines data access for inquiries
type InquiryRepository interface {
	Create(ctx context.Context, inq *Inquiry) error
	ListByRecipient(ctx context.Context, toUserID string) ([]*Inquiry, error)
	MarkResponded(ctx context.Context, id string) error
}
