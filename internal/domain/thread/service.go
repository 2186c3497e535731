package thread

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"agri-api/internal/domain"
	"agri-api/internal/utils/platformerrors"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
	maxTitleLength      = 255
)

// Service implements thread management on behalf of a verified principal.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

// NewService wires dependencies.
func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "thread-service").Logger(),
	}
}

// List returns the caller's threads, most recently active first.
func (s *Service) List(ctx context.Context, principal domain.Principal) ([]*Thread, error) {
	threads, err := s.repo.ListThreads(ctx, principal.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list threads")
	}
	return threads, nil
}

// Create opens a new thread for the caller.
func (s *Service) Create(ctx context.Context, principal domain.Principal, params CreateParams) (*Thread, error) {
	if err := validateTitle(ctx, params.Title); err != nil {
		return nil, err
	}
	t := &Thread{
		UserID:   principal.ID,
		Title:    trimmed(params.Title),
		FarmID:   params.FarmID,
		Metadata: params.Metadata,
	}
	if t.Metadata == nil {
		t.Metadata = map[string]any{}
	}
	if err := s.repo.CreateThread(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create thread")
	}
	s.log.Debug().Str("thread_id", t.ID).Str("user_id", principal.ID).Msg("thread created")
	return t, nil
}

// Get loads a thread the caller owns. Threads owned by someone else are
// reported as missing.
func (s *Service) Get(ctx context.Context, principal domain.Principal, id string) (*Thread, error) {
	t, err := s.repo.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.OwnedBy(principal.ID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "thread not found", ErrNotFound, "thread-not-found")
	}
	count, err := s.repo.CountMessages(ctx, t.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "count messages")
	}
	t.MessageCount = count
	return t, nil
}

// Update applies a partial update to a thread the caller owns.
func (s *Service) Update(ctx context.Context, principal domain.Principal, id string, params UpdateParams) (*Thread, error) {
	if err := validateTitle(ctx, params.Title); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if params.Title != nil {
		t.Title = trimmed(params.Title)
	}
	if params.IsPinned != nil {
		t.IsPinned = *params.IsPinned
	}
	if params.FarmID != nil {
		if strings.TrimSpace(*params.FarmID) == "" {
			t.FarmID = nil
		} else {
			t.FarmID = params.FarmID
		}
	}
	if params.Metadata != nil {
		t.Metadata = params.Metadata
	}
	if err := s.repo.UpdateThread(ctx, t); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update thread")
	}
	return t, nil
}

// Delete removes a thread the caller owns along with its messages and runs.
func (s *Service) Delete(ctx context.Context, principal domain.Principal, id string) error {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	if err := s.repo.DeleteThread(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete thread")
	}
	return nil
}

// Messages returns the persisted messages of a thread in position order.
func (s *Service) Messages(ctx context.Context, principal domain.Principal, id string, limit int) ([]*Message, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, id, ClampLimit(limit, DefaultMessageLimit, MaxMessageLimit))
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list messages")
	}
	return messages, nil
}

// ClampLimit applies a default for non-positive limits and caps at max.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func validateTitle(ctx context.Context, title *string) error {
	if title != nil && len(strings.TrimSpace(*title)) > maxTitleLength {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title must be at most 255 characters", nil, "thread-title-too-long")
	}
	return nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
