package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultReservationDays is used when neither the request nor the
	// configuration sets a duration
	DefaultReservationDays = 7

	// sweepBatchSize bounds the reservations expired in one sweep
	sweepBatchSize = 500
)

// ReservationService handles temporary holds on stock
type ReservationService struct {
	ledgerService
	defaultDays int
}

// NewReservationService creates a new ReservationService. defaultDays is the
// hold duration used when a request does not set one.
func NewReservationService(deps ServiceDeps, defaultDays int) *ReservationService {
	if defaultDays <= 0 {
		defaultDays = DefaultReservationDays
	}
	return &ReservationService{ledgerService: newLedgerService(deps), defaultDays: defaultDays}
}

// Reserve places a hold that lapses after the requested number of days. The
// item row is locked while availability is checked.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (*ReservationResponse, error) {
	days := req.DurationDays
	if days <= 0 {
		days = s.defaultDays
	}
	now := s.clock.Now()

	var r *inventory.Reservation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := s.ledger.LoadItem(ctx, repos, req.StockItemID, true)
		if err != nil {
			return err
		}
		if err := item.CheckHoldable(req.Quantity); err != nil {
			return err
		}
		r, err = inventory.NewReservation(inventory.NewReservationInput{
			StockItemID:     item.ID,
			Quantity:        req.Quantity,
			Type:            inventory.ReservationType(req.ReservationType),
			ExpiresAt:       now.AddDate(0, 0, days),
			Customer:        req.Customer.toDomain(),
			ReferenceNumber: req.ReferenceNumber,
			Reason:          req.Reason,
			ReservedBy:      req.Actor,
		}, now)
		if err != nil {
			return err
		}
		return repos.Reservations().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock reserved",
		zap.String("reservation_id", r.ID.String()),
		zap.String("stock_item_id", r.StockItemID.String()),
		zap.Int64("quantity", r.Quantity),
		zap.Time("expires_at", r.ExpiresAt),
	)
	resp := ToReservationResponse(r, now)
	return &resp, nil
}

// Fulfil closes a reservation whose stored status is active. No stock moves.
func (s *ReservationService) Fulfil(ctx context.Context, id uuid.UUID, actor string) (*ReservationResponse, error) {
	return s.close(ctx, id, func(r *inventory.Reservation, now time.Time) error {
		return r.Fulfill(actor, now)
	})
}

// Cancel closes an active or expired reservation
func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID, actor string) (*ReservationResponse, error) {
	return s.close(ctx, id, func(r *inventory.Reservation, now time.Time) error {
		return r.Cancel(actor, now)
	})
}

func (s *ReservationService) close(ctx context.Context, id uuid.UUID, apply func(*inventory.Reservation, time.Time) error) (*ReservationResponse, error) {
	now := s.clock.Now()
	var r *inventory.Reservation
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		r, err = repos.Reservations().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(r, now); err != nil {
			return err
		}
		return repos.Reservations().Save(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	resp := ToReservationResponse(r, now)
	return &resp, nil
}

// Get returns one reservation with its status derived at read time
func (s *ReservationService) Get(ctx context.Context, id uuid.UUID) (*ReservationResponse, error) {
	r, err := s.repos.Reservations().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToReservationResponse(r, s.clock.Now())
	return &resp, nil
}

// ListActive lists reservations still holding stock
func (s *ReservationService) ListActive(ctx context.Context, f ReservationFilter) ([]ReservationResponse, int64, error) {
	now := s.clock.Now()
	list, total, err := s.repos.Reservations().FindActive(ctx, now, reservationFilter(f))
	if err != nil {
		return nil, 0, err
	}
	return toReservationResponses(list, now), total, nil
}

// ListExpired sweeps lapsed reservations to expired and lists every expired one
func (s *ReservationService) ListExpired(ctx context.Context, f ReservationFilter) ([]ReservationResponse, int64, error) {
	if _, err := s.ExpireLapsed(ctx); err != nil {
		return nil, 0, err
	}
	now := s.clock.Now()
	list, total, err := s.repos.Reservations().FindByStatus(ctx, inventory.ReservationExpired, reservationFilter(f))
	if err != nil {
		return nil, 0, err
	}
	return toReservationResponses(list, now), total, nil
}

// ExpireLapsed stores the expired status on active reservations past their
// expiry. Reads already treat them as expired; the sweep only makes the
// stored status agree.
func (s *ReservationService) ExpireLapsed(ctx context.Context) (*ExpiryStats, error) {
	now := s.clock.Now()
	stats := &ExpiryStats{ProcessedAt: now}

	lapsed, err := s.repos.Reservations().FindLapsed(ctx, now, sweepBatchSize)
	if err != nil {
		s.logger.Error("Failed to find lapsed reservations", zap.Error(err))
		return nil, err
	}
	stats.TotalExpired = len(lapsed)
	if stats.TotalExpired == 0 {
		s.logger.Debug("No lapsed reservations found")
		return stats, nil
	}

	events := &pendingEvents{}
	for i := range lapsed {
		id := lapsed[i].ID
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			r, err := repos.Reservations().FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if err := r.Expire(now); err != nil {
				return err
			}
			if err := repos.Reservations().Save(ctx, r); err != nil {
				return err
			}
			events.events = append(events.events, inventory.NewReservationExpiredEvent(r, now))
			return nil
		})
		if err != nil {
			s.logger.Warn("Failed to expire reservation",
				zap.String("reservation_id", id.String()),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}
		stats.Expired++
	}
	s.publish(ctx, events)

	s.logger.Info("Completed reservation expiry sweep",
		zap.Int("total", stats.TotalExpired),
		zap.Int("expired", stats.Expired),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

func reservationFilter(f ReservationFilter) shared.Filter {
	filter := shared.Filter{Page: f.Page, PageSize: f.PageSize, OrderBy: "expires_at", OrderDir: "asc", Filters: map[string]interface{}{}}
	if f.StockItemID != nil {
		filter.Filters["stock_item_id"] = *f.StockItemID
	}
	if f.ReservationType != "" {
		filter.Filters["reservation_type"] = f.ReservationType
	}
	return filter.Normalize()
}

func toReservationResponses(list []inventory.Reservation, now time.Time) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for i := range list {
		out = append(out, ToReservationResponse(&list[i], now))
	}
	return out
}
