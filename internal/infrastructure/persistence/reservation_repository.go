package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReservationRepository implements ReservationRepository using GORM
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID finds a reservation by ID
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	var res inventory.Reservation
	if err := firstOrNotFound(r.db.WithContext(ctx).Where("id = ?", id), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByIDForUpdate finds and locks a reservation
func (r *GormReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Reservation, error) {
	var res inventory.Reservation
	query := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	if err := firstOrNotFound(query, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FindAll lists reservations by stored status
func (r *GormReservationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Reservation, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Reservation{}), filter)
	if v, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", v)
	}
	return findPage[inventory.Reservation](query, filter, ReservationSortFields, "created_at")
}

// FindActive lists reservations that still hold stock at now
func (r *GormReservationRepository) FindActive(ctx context.Context, now time.Time, filter shared.Filter) ([]inventory.Reservation, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Reservation{}), filter).
		Where("status = ? AND expires_at > ?", inventory.ReservationActive, now.UTC())
	return findPage[inventory.Reservation](query, filter, ReservationSortFields, "expires_at")
}

// FindLapsed lists stored-active reservations whose expiry has passed, oldest first
func (r *GormReservationRepository) FindLapsed(ctx context.Context, now time.Time, limit int) ([]inventory.Reservation, error) {
	var rows []inventory.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", inventory.ReservationActive, now.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByStatus lists reservations with a stored status
func (r *GormReservationRepository) FindByStatus(ctx context.Context, status inventory.ReservationStatus, filter shared.Filter) ([]inventory.Reservation, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&inventory.Reservation{}), filter).
		Where("status = ?", status)
	return findPage[inventory.Reservation](query, filter, ReservationSortFields, "expires_at")
}

// Save creates or updates a reservation
func (r *GormReservationRepository) Save(ctx context.Context, res *inventory.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// SumActive sums quantities of reservations holding stock at now
func (r *GormReservationRepository) SumActive(ctx context.Context, stockItemID uuid.UUID, now time.Time) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&inventory.Reservation{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("stock_item_id = ? AND status = ? AND expires_at > ?", stockItemID, inventory.ReservationActive, now.UTC()).
		Scan(&sum).Error
	return sum, err
}

func (r *GormReservationRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := stringFilter(filter, "stock_item_id"); ok {
		query = query.Where("stock_item_id = ?", v)
	}
	if v, ok := stringFilter(filter, "reservation_type"); ok {
		query = query.Where("reservation_type = ?", v)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("customer_name LIKE ? OR reference_number LIKE ?", like, like)
	}
	return query
}

var _ inventory.ReservationRepository = (*GormReservationRepository)(nil)
