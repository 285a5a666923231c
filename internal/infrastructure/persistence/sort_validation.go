package persistence

import (
	"strings"

	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StoreSortFields contains allowed sort fields for stores
var StoreSortFields = map[string]bool{
	"created_at":  true,
	"name":        true,
	"code":        true,
	"designation": true,
}

// StockItemSortFields contains allowed sort fields for stock items
var StockItemSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"item_name":  true,
	"sku":        true,
	"category":   true,
	"quantity":   true,
	"re_order":   true,
}

// HistorySortFields contains allowed sort fields for history entries
var HistorySortFields = map[string]bool{
	"timestamp": true,
	"item_name": true,
	"kind":      true,
}

// CommitmentSortFields contains allowed sort fields for commitments
var CommitmentSortFields = map[string]bool{
	"created_at": true,
	"quantity":   true,
}

// ReservationSortFields contains allowed sort fields for reservations
var ReservationSortFields = map[string]bool{
	"created_at": true,
	"expires_at": true,
	"quantity":   true,
}

// TransferSortFields contains allowed sort fields for transfers
var TransferSortFields = map[string]bool{
	"created_at": true,
	"status":     true,
	"quantity":   true,
}

// AuditSortFields contains allowed sort fields for audits and purchase orders
var AuditSortFields = map[string]bool{
	"created_at": true,
	"reference":  true,
	"status":     true,
}

// paginate applies a whitelisted order clause plus limit and offset
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "created_at" && allowed["created_at"] {
		query = query.Order("created_at DESC")
	}
	return query.Limit(filter.PageSize).Offset(filter.Offset())
}

// stringFilter returns a non-empty string value from filter.Filters
func stringFilter(filter shared.Filter, key string) (string, bool) {
	v, ok := filter.Filters[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	case interface{ String() string }:
		str := s.String()
		return str, str != ""
	}
	return "", false
}
