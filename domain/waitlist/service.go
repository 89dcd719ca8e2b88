package waitlist

import (
	"context"
	"strings"

	"github.com/Nathankoth/waitlist-main-second/internal/log"
	apperrors "github.com/Nathankoth/waitlist-main-second/pkg/errors"
	"github.com/Nathankoth/waitlist-main-second/pkg/notify"
)

// SignupDispatcher fans a successful signup out to the notification sinks.
// Implementations must return immediately; see notify.Dispatcher.
type SignupDispatcher interface {
	Dispatch(signup *notify.Signup)
}

type WaitlistService interface {
	// JoinWaitlist validates, normalizes and persists one submission, then
	// triggers the best-effort notification sinks. A duplicate email is a
	// conflict-typed error, not a generic failure.
	JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest) (*WaitlistEntryResponse, error)

	// FindEntryByID retrieves a single entry. Admin surface.
	FindEntryByID(ctx context.Context, id string) (*WaitlistEntryResponse, error)

	// ListEntries returns all entries plus the total count. Admin surface.
	ListEntries(ctx context.Context) ([]WaitlistEntryResponse, int64, error)
}

type waitlistService struct {
	logger     *log.Logger
	rules      Rules
	repository WaitlistRepository
	dispatcher SignupDispatcher
}

// NewWaitlistService wires the service. dispatcher may be nil when no sinks
// are configured.
func NewWaitlistService(logger *log.Logger, rules Rules, repository WaitlistRepository, dispatcher SignupDispatcher) WaitlistService {
	return &waitlistService{
		logger:     logger,
		rules:      rules,
		repository: repository,
		dispatcher: dispatcher,
	}
}

func (s *waitlistService) JoinWaitlist(ctx context.Context, req *JoinWaitlistRequest) (*WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("JoinWaitlist received empty request")
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	if errs := s.rules.Validate(req); len(errs) > 0 {
		logger.Info("Waitlist submission rejected", "reasons", errs)
		return nil, apperrors.NewInvalidRequestError(strings.Join(errs, ", "), nil)
	}

	entry, err := s.repository.CreateEntry(ctx, ToWaitlistEntryModel(req))
	if err != nil {
		if apperrors.GetErrorType(err) == apperrors.ErrorTypeConflict {
			logger.Info("Waitlist submission for already registered email")
		} else {
			logger.Error("Failed to create waitlist entry", "error", err)
		}
		return nil, err
	}

	logger.Info("Waitlist entry created", "id", entry.ID)

	// Fire-and-forget: the outcome above is final regardless of what the
	// sinks do with it.
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(&notify.Signup{
			Email:           entry.Email,
			Role:            entry.Role,
			FullName:        entry.FullName,
			Company:         entry.Company,
			MonthlyListings: entry.MonthlyListings,
			YearsExperience: entry.YearsExperience,
			HowHeard:        entry.HowHeard,
			CreatedAt:       entry.CreatedAt,
		})
	}

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}

func (s *waitlistService) FindEntryByID(ctx context.Context, id string) (*WaitlistEntryResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if strings.TrimSpace(id) == "" {
		logger.Error("FindEntryByID received empty ID")
		return nil, apperrors.NewInvalidRequestError("invalid entry ID", nil)
	}

	entry, err := s.repository.FindEntryByID(ctx, id)
	if err != nil {
		logger.Error("Failed to find waitlist entry", "id", id, "error", err)
		return nil, err
	}

	response := ToWaitlistEntryResponse(entry)
	return &response, nil
}

func (s *waitlistService) ListEntries(ctx context.Context) ([]WaitlistEntryResponse, int64, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.GetAllEntries(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "error", err)
		return nil, 0, err
	}

	count, err := s.repository.CountEntries(ctx)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "error", err)
		return nil, 0, err
	}

	responses := make([]WaitlistEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, ToWaitlistEntryResponse(entry))
	}

	return responses, count, nil
}
