package orders

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/omidvar1986/smartoffice/internal/domain"
)

type OrderLister interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// Service presents one order list regardless of where the authoritative copy
// lives: backend data when the call succeeds with results, otherwise the
// local mirror. The two lists are alternatives, not merged.
type Service struct {
	backend OrderLister
	history *HistoryRepository
	logger  zerolog.Logger
}

func NewService(backend OrderLister, history *HistoryRepository, logger zerolog.Logger) *Service {
	return &Service{backend: backend, history: history, logger: logger}
}

func (s *Service) List(ctx context.Context) []domain.Order {
	remote, err := s.backend.ListOrders(ctx)
	if err == nil && len(remote) > 0 {
		return remote
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("backend order listing failed, serving local history")
	}
	return s.history.List(ctx)
}
