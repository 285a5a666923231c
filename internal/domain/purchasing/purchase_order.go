package purchasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/shared"
)

// Status is the lifecycle state of a purchase order
type Status string

const (
	StatusDraft             Status = "draft"
	StatusSent              Status = "sent"
	StatusConfirmed         Status = "confirmed"
	StatusPartiallyReceived Status = "partially_received"
	StatusCompleted         Status = "completed"
	StatusCancelled         Status = "cancelled"
)

// CanReceive reports whether goods may be booked in
func (s Status) CanReceive() bool {
	return s == StatusSent || s == StatusConfirmed || s == StatusPartiallyReceived
}

// TaxRates holds the flat GST rate and the factor that turns a GST inclusive
// price into an exclusive one.
type TaxRates struct {
	GSTRate        decimal.Decimal
	PriceExcFactor decimal.Decimal
}

// DefaultTaxRates is 10% GST on prices quoted inclusive
func DefaultTaxRates() TaxRates {
	return TaxRates{
		GSTRate:        decimal.NewFromFloat(0.10),
		PriceExcFactor: decimal.NewFromFloat(0.90),
	}
}

// PurchaseOrder is an order placed with a supplier
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	Reference    string     `gorm:"type:varchar(30);not null;uniqueIndex" json:"reference_number"`
	SupplierName string     `gorm:"type:varchar(200);not null" json:"supplier_name"`
	Status       Status     `gorm:"type:varchar(30);not null;index" json:"status"`
	Notes        string     `gorm:"type:text" json:"notes"`
	History      string     `gorm:"type:text" json:"history"`
	CreatedBy    string     `gorm:"type:varchar(100)" json:"created_by"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
	Items        []Item     `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// Item is one ordered line
type Item struct {
	shared.BaseEntity
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ItemName         string          `gorm:"type:varchar(200);not null" json:"item_name"`
	SKU              string          `gorm:"type:varchar(50)" json:"sku"`
	Quantity         int64           `gorm:"not null" json:"quantity"`
	ReceivedQuantity int64           `gorm:"not null" json:"received_quantity"`
	UnitPriceIncGST  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price_inc"`
	DiscountPercent  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_percent"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "purchase_order_items"
}

// ItemInput describes a line to order
type ItemInput struct {
	ItemName        string
	SKU             string
	Quantity        int64
	UnitPriceIncGST decimal.Decimal
	DiscountPercent decimal.Decimal
}

// Reference formats the nth order reference of a year
func Reference(year, n int) string {
	return fmt.Sprintf("PO-%d-%03d", year, n)
}

// NewPurchaseOrder creates a draft order
func NewPurchaseOrder(reference, supplier, notes, actor string, lines []ItemInput, now time.Time) (*PurchaseOrder, error) {
	if strings.TrimSpace(supplier) == "" {
		return nil, shared.NewValidationError("supplier_name", "is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("items", "at least one item is required")
	}
	po := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(now),
		Reference:         reference,
		SupplierName:      strings.TrimSpace(supplier),
		Status:            StatusDraft,
		Notes:             notes,
		CreatedBy:         actor,
	}
	for i, in := range lines {
		if strings.TrimSpace(in.ItemName) == "" {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].item_name", i), "is required")
		}
		if in.Quantity <= 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "must be greater than zero")
		}
		if in.UnitPriceIncGST.IsNegative() {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].price_inc", i), "must not be negative")
		}
		if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].discount_percent", i), "must be between 0 and 100")
		}
		po.Items = append(po.Items, Item{
			BaseEntity:      shared.NewBaseEntity(now),
			PurchaseOrderID: po.ID,
			ItemName:        strings.TrimSpace(in.ItemName),
			SKU:             in.SKU,
			Quantity:        in.Quantity,
			UnitPriceIncGST: in.UnitPriceIncGST,
			DiscountPercent: in.DiscountPercent,
		})
	}
	return po, nil
}

// Send moves a draft to sent
func (p *PurchaseOrder) Send(now time.Time) error {
	if p.Status != StatusDraft {
		return shared.NewIllegalTransition("purchase order", string(p.Status), "send")
	}
	p.Status = StatusSent
	p.SentAt = &now
	p.touch(now)
	return nil
}

// Approve confirms a sent order
func (p *PurchaseOrder) Approve(now time.Time) error {
	if p.Status != StatusSent {
		return shared.NewIllegalTransition("purchase order", string(p.Status), "approve")
	}
	p.Status = StatusConfirmed
	p.ConfirmedAt = &now
	p.touch(now)
	return nil
}

// Cancel abandons an order that has not finished
func (p *PurchaseOrder) Cancel(now time.Time) error {
	if p.Status == StatusCompleted || p.Status == StatusCancelled {
		return shared.NewIllegalTransition("purchase order", string(p.Status), "cancel")
	}
	p.Status = StatusCancelled
	p.touch(now)
	return nil
}

// Line finds an order line by ID
func (p *PurchaseOrder) Line(id uuid.UUID) *Item {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

// CheckReceivable validates a receipt before any stock moves
func (p *PurchaseOrder) CheckReceivable(received map[uuid.UUID]int64) error {
	if !p.Status.CanReceive() {
		return shared.NewIllegalTransition("purchase order", string(p.Status), "receive")
	}
	if len(received) == 0 {
		return shared.NewValidationError("items", "nothing to receive")
	}
	for id, qty := range received {
		line := p.Line(id)
		if line == nil {
			return shared.NewValidationError("items", fmt.Sprintf("line %s is not on this order", id))
		}
		if qty < 0 {
			return shared.NewValidationError("items", fmt.Sprintf("line %s: quantity must not be negative", id))
		}
		if qty > line.Outstanding() {
			return shared.NewValidationError("items", fmt.Sprintf("%s: cannot receive %d, only %d outstanding", line.ItemName, qty, line.Outstanding()))
		}
	}
	return nil
}

// RecordReceipt books received quantities and settles the status
func (p *PurchaseOrder) RecordReceipt(received map[uuid.UUID]int64, storeName string, now time.Time) error {
	if err := p.CheckReceivable(received); err != nil {
		return err
	}
	for id, qty := range received {
		p.Line(id).ReceivedQuantity += qty
	}
	if p.IsFullyReceived() {
		p.Status = StatusCompleted
	} else {
		p.Status = StatusPartiallyReceived
	}
	p.ReceivedAt = &now
	p.AppendHistory(fmt.Sprintf("Received items at %s", storeName), now)
	p.touch(now)
	return nil
}

// IsFullyReceived reports whether every line has arrived
func (p *PurchaseOrder) IsFullyReceived() bool {
	for i := range p.Items {
		if p.Items[i].Outstanding() > 0 {
			return false
		}
	}
	return true
}

// AppendHistory adds a timestamped note to the order history
func (p *PurchaseOrder) AppendHistory(note string, now time.Time) {
	line := fmt.Sprintf("%s: %s", now.Format("2006-01-02 15:04"), note)
	if p.History == "" {
		p.History = line
		return
	}
	p.History += "\n" + line
}

// Totals is the money summary of an order
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	GST      decimal.Decimal `json:"gst"`
	Total    decimal.Decimal `json:"total"`
}

// Totals sums the line money using rates
func (p *PurchaseOrder) Totals(rates TaxRates) Totals {
	t := Totals{Subtotal: decimal.Zero, Discount: decimal.Zero, GST: decimal.Zero, Total: decimal.Zero}
	for i := range p.Items {
		lt := p.Items[i].Totals(rates)
		t.Subtotal = t.Subtotal.Add(lt.Subtotal)
		t.Discount = t.Discount.Add(lt.Discount)
		t.GST = t.GST.Add(lt.GST)
		t.Total = t.Total.Add(lt.Total)
	}
	return t
}

func (p *PurchaseOrder) touch(now time.Time) {
	p.Touch(now)
	p.IncrementVersion()
}

// Outstanding is the quantity still to arrive
func (i *Item) Outstanding() int64 {
	return i.Quantity - i.ReceivedQuantity
}

// PriceExcGST converts the inclusive unit price
func (i *Item) PriceExcGST(rates TaxRates) decimal.Decimal {
	return i.UnitPriceIncGST.Mul(rates.PriceExcFactor).Round(2)
}

// Totals computes the money for one line
func (i *Item) Totals(rates TaxRates) Totals {
	subtotal := i.PriceExcGST(rates).Mul(decimal.NewFromInt(i.Quantity))
	discount := subtotal.Mul(i.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
	afterDiscount := subtotal.Sub(discount)
	gst := afterDiscount.Mul(rates.GSTRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		GST:      gst,
		Total:    afterDiscount.Add(gst),
	}
}
