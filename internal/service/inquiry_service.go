package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estately/estately/internal/domain"
	"github.com/estately/estately/internal/notification"
)

// InquiryService handles messages from interested users to property owners
type InquiryService struct {
	inquiryRepo  domain.InquiryRepository
	propertyRepo domain.PropertyRepository
	userRepo     domain.UserRepository
	mailer       *notification.Mailer
	logger       *slog.Logger
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(
	inquiryRepo domain.InquiryRepository,
	propertyRepo domain.PropertyRepository,
	userRepo domain.UserRepository,
	mailer *notification.Mailer,
	logger *slog.Logger,
) *InquiryService {
	if logger == nil {
		logger = slog.Default()
	}

	return &InquiryService{
		inquiryRepo:  inquiryRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		mailer:       mailer,
		logger:       logger,
	}
}

// Create stores an inquiry and notifies the property owner. The owner email
// is best-effort; the inquiry stands even when the send fails.
func (s *InquiryService) Create(ctx context.Context, fromUserID, propertyID, message string) (*domain.Inquiry, error) {
	if message == "" {
		return nil, fmt.Errorf("message is required: %w", domain.ErrInvalid)
	}

	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnerID == fromUserID {
		return nil, fmt.Errorf("cannot inquire about your own listing: %w", domain.ErrInvalid)
	}

	inq := &domain.Inquiry{
		PropertyID: propertyID,
		FromUserID: fromUserID,
		ToUserID:   property.OwnerID,
		Message:    message,
	}
	if err := s.inquiryRepo.Create(ctx, inq); err != nil {
		return nil, err
	}

	if owner, err := s.userRepo.GetByID(ctx, property.OwnerID); err == nil {
		s.mailer.SendInquiryNotice(owner.Email, property.Title, message)
	}

	s.logger.Info("inquiry created",
		slog.String("inquiry_id", inq.ID),
		slog.String("property_id", propertyID),
	)
	return inq, nil
}

// ListReceived lists inquiries addressed to the actor
func (s *InquiryService) ListReceived(ctx context.Context, userID string) ([]*domain.Inquiry, error) {
	return s.inquiryRepo.ListByRecipient(ctx, userID)
}

// MarkResponded flips an inquiry the actor received to responded
func (s *InquiryService) MarkResponded(ctx context.Context, actor *domain.User, inquiryID string) error {
	inquiries, err := s.inquiryRepo.ListByRecipient(ctx, actor.ID)
	if err != nil {
		return err
	}
	for _, inq := range inquiries {
		if inq.ID == inquiryID {
			return s.inquiryRepo.MarkResponded(ctx, inquiryID)
		}
	}
	return fmt.Errorf("inquiry %s: %w", inquiryID, domain.ErrNotFound)
}
