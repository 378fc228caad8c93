package activity

import (
	"context"
	"log/slog"

	"github.com/milletflow/milletflow/internal/shared"
)

const (
	locationFeedLimit = 50
	adminFeedLimit    = 100
)

// Service records and reads activity entries. Record is designed to be called
// best-effort after a command commits; callers discard its error.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record appends an entry. Failures are logged and returned, but callers on
// the command path treat them as non-fatal.
func (s *Service) Record(ctx context.Context, source, description string) error {
	if source == "" || description == "" {
		return shared.Invalid("activity source and description are required")
	}
	if err := s.repo.Insert(ctx, source, description); err != nil {
		s.logger.Warn("activity record failed", "source", source, "error", err)
		return err
	}
	return nil
}

// RecentForLocation returns the newest entries for one location, any actor.
func (s *Service) RecentForLocation(ctx context.Context, location string) ([]Entry, error) {
	if location == "" {
		return nil, shared.Invalid("location is required")
	}
	return s.repo.RecentForLocation(ctx, location, locationFeedLimit)
}

// Recent returns the newest entries across all locations.
func (s *Service) Recent(ctx context.Context) ([]Entry, error) {
	return s.repo.Recent(ctx, adminFeedLimit)
}
