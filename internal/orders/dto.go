package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
)

// CreateOrderInput is the intake payload for a new order.
type CreateOrderInput struct {
	TransactionID    string              `json:"transaction_id" validate:"notblank,max=64"`
	CustomerName     string              `json:"customer_name" validate:"notblank,max=200"`
	ClientContact    string              `json:"client_contact" validate:"notblank,max=50"`
	PaintType        string              `json:"paint_type" validate:"notblank,max=200"`
	ColourCode       string              `json:"colour_code" validate:"max=100"`
	Category         string              `json:"category" validate:"notblank,max=50"`
	OrderType        string              `json:"order_type" validate:"max=20"`
	POType           string              `json:"po_type" validate:"required_if=OrderType Paid,omitempty,oneof=Nexa Carvello"`
	PaintQuantity    decimal.NullDecimal `json:"paint_quantity"`
	AssignedEmployee string              `json:"assigned_employee" validate:"max=100"`
	Note             string              `json:"note" validate:"max=1000"`
	EmployeeName     string              `json:"employee_name" validate:"max=100"`
	UserRole         string              `json:"user_role" validate:"max=50"`
}

// UpdateStatusInput drives a status, colour, assignee or note change. Nil
// pointers mean the client did not send the field.
type UpdateStatusInput struct {
	TransactionID    string
	NewStatus        string
	AssignedEmployee string
	ColourCode       *string
	Note             *string
	POType           *string
	UserRole         string
	ActorName        string
	OldStatus        string
}

// CancelInput withdraws an order into the deleted archive.
type CancelInput struct {
	TransactionID string
	Reason        string
	ActorName     string
	ActorRole     string
}

// MarkCompleteInput confirms a Ready order as collected and paid.
type MarkCompleteInput struct {
	TransactionID string
	ActorName     string
	ActorRole     string
}

// ListView selects one of the predefined order listings.
type ListView string

const (
	ListViewActive        ListView = "active"
	ListViewFloor         ListView = "floor"
	ListViewArchived      ListView = "archived"
	ListViewComplete      ListView = "complete"
	ListViewAwaitingAdmin ListView = "admin"
)

// SearchParams carries a free-text search over name, contact and id.
type SearchParams struct {
	Query     string
	SortBy    string
	SortOrder string
	Limit     int
}

// DuplicateQuery names the fields two orders must share to be flagged as a
// likely double entry.
type DuplicateQuery struct {
	CustomerName  string
	ClientContact string
	PaintType     string
	Category      string
}

// DuplicateResult answers a content-based duplicate check.
type DuplicateResult struct {
	Exists  bool  `json:"exists"`
	Matches int64 `json:"matches"`
}

// ActiveCount is the queue depth shown on the dashboard.
type ActiveCount struct {
	ActiveOrders int64 `json:"activeOrders"`
}

// OrderView is the API representation of a live order.
type OrderView struct {
	ID               int64               `json:"id"`
	TransactionID    string              `json:"transaction_id"`
	CustomerName     string              `json:"customer_name"`
	ClientContact    string              `json:"client_contact"`
	PaintType        string              `json:"paint_type"`
	ColourCode       string              `json:"colour_code"`
	Category         string              `json:"category"`
	OrderType        string              `json:"order_type"`
	POType           *string             `json:"po_type"`
	PaintQuantity    decimal.NullDecimal `json:"paint_quantity"`
	AssignedEmployee *string             `json:"assigned_employee"`
	CurrentStatus    string              `json:"current_status"`
	Note             *string             `json:"note"`
	Archived         bool                `json:"archived"`
	Deleted          bool                `json:"deleted"`
	StartTime        time.Time           `json:"start_time"`
	CompletedAt      *time.Time          `json:"completed_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// DeletedOrderView is the API representation of an archived cancellation.
type DeletedOrderView struct {
	TransactionID    string              `json:"transaction_id"`
	CustomerName     string              `json:"customer_name"`
	ClientContact    string              `json:"client_contact"`
	PaintType        string              `json:"paint_type"`
	ColourCode       string              `json:"colour_code"`
	Category         string              `json:"category"`
	OrderType        string              `json:"order_type"`
	POType           *string             `json:"po_type"`
	PaintQuantity    decimal.NullDecimal `json:"paint_quantity"`
	AssignedEmployee *string             `json:"assigned_employee"`
	CurrentStatus    string              `json:"current_status"`
	Note             *string             `json:"note"`
	StartTime        time.Time           `json:"start_time"`
	DeletedAt        time.Time           `json:"deleted_at"`
	DeletedBy        *string             `json:"deleted_by"`
}

// HistoryEntry is one status the order passed through.
type HistoryEntry struct {
	Status    string    `json:"status"`
	EnteredAt time.Time `json:"entered_at"`
}

// ArchiveResult reports the outcome of a stale-order sweep.
type ArchiveResult struct {
	Message    string `json:"message"`
	Archived   int64  `json:"archived"`
	CutoffDays int    `json:"cutoff_days"`
}

func toOrderView(o models.Order) OrderView {
	return OrderView{
		ID:               o.ID,
		TransactionID:    o.TransactionID,
		CustomerName:     o.CustomerName,
		ClientContact:    o.ClientContact,
		PaintType:        o.PaintType,
		ColourCode:       o.ColourCode,
		Category:         o.Category.String(),
		OrderType:        o.OrderType.String(),
		POType:           o.POType,
		PaintQuantity:    o.PaintQuantity,
		AssignedEmployee: o.AssignedEmployee,
		CurrentStatus:    o.CurrentStatus.String(),
		Note:             o.Note,
		Archived:         o.Archived,
		Deleted:          o.Deleted,
		StartTime:        o.StartTime,
		CompletedAt:      o.CompletedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func toOrderViews(rows []models.Order) []OrderView {
	out := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toOrderView(row))
	}
	return out
}

func toDeletedOrderViews(rows []models.DeletedOrder) []DeletedOrderView {
	out := make([]DeletedOrderView, 0, len(rows))
	for _, d := range rows {
		out = append(out, DeletedOrderView{
			TransactionID:    d.TransactionID,
			CustomerName:     d.CustomerName,
			ClientContact:    d.ClientContact,
			PaintType:        d.PaintType,
			ColourCode:       d.ColourCode,
			Category:         d.Category.String(),
			OrderType:        d.OrderType.String(),
			POType:           d.POType,
			PaintQuantity:    d.PaintQuantity,
			AssignedEmployee: d.AssignedEmployee,
			CurrentStatus:    d.CurrentStatus.String(),
			Note:             d.Note,
			StartTime:        d.StartTime,
			DeletedAt:        d.DeletedAt,
			DeletedBy:        d.DeletedBy,
		})
	}
	return out
}

func toHistoryEntries(rows []models.StatusHistory) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryEntry{Status: row.Status.String(), EnteredAt: row.EnteredAt})
	}
	return out
}
