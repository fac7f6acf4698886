package watermark

import (
	"context"
	"fmt"
	"time"

	"github.com/ayase/tomodachi/internal/entities"
	"github.com/ayase/tomodachi/internal/repositories"
	"github.com/ayase/tomodachi/pkg/apperrors"
)

// ServiceInterface defines per-user watermark operations
type ServiceInterface interface {
	Get(ctx context.Context, userID string) (*entities.Watermark, error)
	Advance(ctx context.Context, userID string, channel entities.Channel, ts time.Time) error
}

// Service manages per-user "last checked" timestamps for the notifications
// and messages channels
type Service struct {
	watermarkRepo repositories.WatermarkRepository
	now           func() time.Time
}

// NewService creates a new watermark Service
func NewService(watermarkRepo repositories.WatermarkRepository) *Service {
	return &Service{
		watermarkRepo: watermarkRepo,
		now:           time.Now,
	}
}

// Get returns the user's watermarks, lazily creating the row with both
// channels at the Unix epoch on first access. Initialization is idempotent
// under concurrent callers: the repository upserts keyed by user ID.
func (s *Service) Get(ctx context.Context, userID string) (*entities.Watermark, error) {
	if userID == "" {
		return nil, apperrors.InvalidArgument("user ID is required")
	}

	return s.watermarkRepo.GetOrInit(ctx, userID)
}

// Advance moves the named channel's watermark forward to ts, or to the
// current time when ts is zero. Advancing is monotonic: a timestamp behind
// the stored value is a no-op, so a slow request racing a fast one cannot
// resurrect already-dismissed notifications.
func (s *Service) Advance(ctx context.Context, userID string, channel entities.Channel, ts time.Time) error {
	if userID == "" {
		return apperrors.InvalidArgument("user ID is required")
	}
	if !channel.Valid() {
		return apperrors.InvalidArgument(fmt.Sprintf("unknown channel: %s", channel))
	}
	if ts.IsZero() {
		ts = s.now()
	}

	return s.watermarkRepo.Advance(ctx, userID, channel, ts)
}
