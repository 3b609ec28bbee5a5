package orders

import (
	"context"
	"strings"

	"github.com/paintqueue/paintqueue-backend/pkg/enums"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
)

// activeStatuses are the stages that still need floor work before spraying.
var activeStatuses = []enums.OrderStatus{enums.OrderStatusWaiting, enums.OrderStatusMixing}

// CountActive reports how many unarchived orders are Waiting or Mixing.
func (s *service) CountActive(ctx context.Context) (*ActiveCount, error) {
	notArchived := false
	n, err := s.repo.Count(ctx, ListFilter{Statuses: activeStatuses, Archived: &notArchived})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active orders")
	}
	return &ActiveCount{ActiveOrders: n}, nil
}

// CheckDuplicate flags an intake that repeats an existing order's customer,
// contact, paint type and category. It is advisory; Create does not call it.
func (s *service) CheckDuplicate(ctx context.Context, q DuplicateQuery) (*DuplicateResult, error) {
	q = DuplicateQuery{
		CustomerName:  strings.TrimSpace(q.CustomerName),
		ClientContact: strings.TrimSpace(q.ClientContact),
		PaintType:     strings.TrimSpace(q.PaintType),
		Category:      strings.TrimSpace(q.Category),
	}
	details := map[string]string{}
	for field, value := range map[string]string{
		"customer_name":  q.CustomerName,
		"client_contact": q.ClientContact,
		"paint_type":     q.PaintType,
		"category":       q.Category,
	} {
		if value == "" {
			details[field] = "is required"
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}

	n, err := s.repo.CountContentMatches(ctx, q)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check duplicate order")
	}
	return &DuplicateResult{Exists: n > 0, Matches: n}, nil
}
