package orders

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	"github.com/paintqueue/paintqueue-backend/pkg/enums"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
)

const (
	remarksNoteUpdatedVia = "Note updated via UI"
	archiveSweepName      = "archive_stale"
	adminActionComplete   = "Order Completed"
)

// UpdateStatus applies a status, colour, assignee or note change together with
// its history and audit rows. Input rules are checked before the transaction
// opens; nothing is written when any of them fails.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (view *OrderView, err error) {
	defer s.observe("update_status", &err)

	newStatus, err := enums.ParseOrderStatus(strings.TrimSpace(input.NewStatus))
	if err != nil {
		return nil, invalidStatus(input.NewStatus)
	}
	if newStatus == enums.OrderStatusReady && isBlank(derefString(input.ColourCode)) {
		return nil, missingColourCode()
	}
	if newStatus != enums.OrderStatusWaiting && isBlank(input.AssignedEmployee) {
		return nil, missingAssignee()
	}
	if newStatus == enums.OrderStatusComplete && !enums.IsAdmin(input.UserRole) {
		return nil, forbidden("complete orders")
	}
	if input.POType != nil && !isBlank(*input.POType) {
		if _, perr := enums.ParsePOType(strings.TrimSpace(*input.POType)); perr != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "po_type must be Nexa or Carvello").
				WithDetails(map[string]any{"field": "po_type"})
		}
	}

	var (
		updated       models.Order
		statusChanged bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadLive(ctx, repo, input.TransactionID, true)
		if err != nil {
			return err
		}

		previous := order.CurrentStatus
		if previous.IsTerminal() {
			return invalidTransition(previous.String(), newStatus.String())
		}
		if newStatus == enums.OrderStatusComplete && previous != enums.OrderStatusReady {
			return invalidTransition(previous.String(), newStatus.String())
		}
		if old := strings.TrimSpace(input.OldStatus); old != "" && old != previous.String() {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id":      order.TransactionID,
				"client_status": old,
				"stored_status": previous.String(),
			})
			s.logg.Warn(logCtx, "client status out of date; using stored status")
		}

		now := s.now()
		statusChanged = newStatus != previous
		colourCode := resolveColourCode(input.ColourCode, order.ColourCode)
		note, noteChanged := resolveNote(input.Note, order.Note)

		updates := map[string]any{
			"current_status":    newStatus,
			"colour_code":       colourCode,
			"assigned_employee": optionalString(input.AssignedEmployee),
			"note":              note,
			"updated_at":        now,
		}
		if input.POType != nil && !isBlank(*input.POType) {
			updates["po_type"] = strings.TrimSpace(*input.POType)
		}
		if newStatus == enums.OrderStatusComplete {
			updates["completed_at"] = now
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
		}

		if statusChanged {
			if err := s.history.WithTx(tx).Append(ctx, &models.StatusHistory{
				TransactionID: order.TransactionID,
				Status:        newStatus,
				EnteredAt:     now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
			}
		}

		entry := &models.AuditLog{
			OrderID:      order.TransactionID,
			Action:       enums.AuditActionNoteUpdated,
			FromStatus:   enums.AuditStatusNotApplicable,
			ToStatus:     enums.AuditStatusNotApplicable,
			EmployeeName: optionalString(firstNonBlank(input.ActorName, input.AssignedEmployee)),
			UserRole:     optionalString(input.UserRole),
			ColourCode:   &colourCode,
			Remarks:      optionalString(updateRemarks(statusChanged, noteChanged, strings.TrimSpace(derefString(input.Note)))),
			Timestamp:    now,
		}
		if statusChanged {
			entry.Action = enums.AuditActionStatusChanged
			entry.FromStatus = previous.String()
			entry.ToStatus = newStatus.String()
		}
		if err := s.audit.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}

		reloaded, err := repo.FindByTransactionID(ctx, order.TransactionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		updated = *reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.metrics.IncTransition(updated.CurrentStatus.String())
	}
	out := toOrderView(updated)
	return &out, nil
}

// Cancel moves a not-yet-Ready order into the deleted archive. The live row is
// kept with deleted=true.
func (s *service) Cancel(ctx context.Context, input CancelInput) (view *OrderView, err error) {
	defer s.observe("cancel", &err)

	if !enums.IsAdmin(input.ActorRole) {
		return nil, forbidden("cancel orders")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, missingReason()
	}

	var cancelled models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadLive(ctx, repo, input.TransactionID, true)
		if err != nil {
			return err
		}
		if !order.CurrentStatus.IsCancellable() {
			return invalidStateForDeletion(order.CurrentStatus.String())
		}

		now := s.now()
		deleted := models.NewDeletedOrder(*order, reason, optionalString(input.ActorName), now)
		if err := repo.InsertDeleted(ctx, &deleted); err != nil {
			if db.IsUniqueViolation(err, "") {
				return duplicateTransactionID(order.TransactionID, err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archive deleted order")
		}
		if err := repo.Update(ctx, order.ID, map[string]any{"deleted": true, "updated_at": now}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flag order deleted")
		}

		entry := &models.AuditLog{
			OrderID:      order.TransactionID,
			Action:       enums.AuditActionOrderDeleted,
			FromStatus:   order.CurrentStatus.String(),
			ToStatus:     enums.AuditStatusDeleted,
			EmployeeName: optionalString(input.ActorName),
			UserRole:     optionalString(input.ActorRole),
			ColourCode:   &order.ColourCode,
			Remarks:      &reason,
			Timestamp:    now,
		}
		if err := s.audit.WithTx(tx).Append(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}

		order.Deleted = true
		order.UpdatedAt = now
		cancelled = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancellation()
	out := toOrderView(cancelled)
	return &out, nil
}

// MarkComplete is the admin confirmation of a Ready order.
func (s *service) MarkComplete(ctx context.Context, input MarkCompleteInput) (view *OrderView, err error) {
	defer s.observe("mark_complete", &err)

	if !enums.IsAdmin(input.ActorRole) {
		return nil, forbidden("complete orders")
	}

	var completed models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadLive(ctx, repo, input.TransactionID, true)
		if err != nil {
			return err
		}
		if order.CurrentStatus != enums.OrderStatusReady {
			return invalidTransition(order.CurrentStatus.String(), enums.OrderStatusComplete.String())
		}

		now := s.now()
		if err := repo.Update(ctx, order.ID, map[string]any{
			"current_status": enums.OrderStatusComplete,
			"completed_at":   now,
			"updated_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete order")
		}
		if err := s.history.WithTx(tx).Append(ctx, &models.StatusHistory{
			TransactionID: order.TransactionID,
			Status:        enums.OrderStatusComplete,
			EnteredAt:     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append status history")
		}

		auditRepo := s.audit.WithTx(tx)
		if err := auditRepo.Append(ctx, &models.AuditLog{
			OrderID:      order.TransactionID,
			Action:       enums.AuditActionStatusChanged,
			FromStatus:   enums.OrderStatusReady.String(),
			ToStatus:     enums.OrderStatusComplete.String(),
			EmployeeName: optionalString(input.ActorName),
			UserRole:     optionalString(input.ActorRole),
			ColourCode:   &order.ColourCode,
			Remarks:      optionalString("Marked complete by admin"),
			Timestamp:    now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append audit log")
		}
		if s.adminActionLog {
			if err := auditRepo.AppendAdminAction(ctx, &models.AdminActionLog{
				OrderID:   order.TransactionID,
				Action:    adminActionComplete,
				ActorName: optionalString(input.ActorName),
				ActorRole: strings.TrimSpace(input.ActorRole),
				CreatedAt: now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append admin action log")
			}
		}

		order.CurrentStatus = enums.OrderStatusComplete
		order.CompletedAt = &now
		order.UpdatedAt = now
		completed = *order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(enums.OrderStatusComplete.String())
	out := toOrderView(completed)
	return &out, nil
}

// ArchiveStale flags Waiting orders older than cutoffDays as archived. Running
// it again without newly stale orders changes nothing.
func (s *service) ArchiveStale(ctx context.Context, cutoffDays int) (*ArchiveResult, error) {
	if cutoffDays <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cutoff days must be positive").
			WithDetails(map[string]any{"field": "days"})
	}

	started := s.now()
	cutoff := started.AddDate(0, 0, -cutoffDays)
	affected, err := s.repo.ArchiveWaitingBefore(ctx, cutoff)
	s.sweepMetrics.ObserveDuration(archiveSweepName, s.now().Sub(started))
	if err != nil {
		s.sweepMetrics.IncFailure(archiveSweepName)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archive stale orders")
	}
	s.sweepMetrics.IncSuccess(archiveSweepName, affected)

	logCtx := s.logg.WithFields(ctx, map[string]any{"archived": affected, "cutoff_days": cutoffDays})
	s.logg.Info(logCtx, "stale orders archived")

	return &ArchiveResult{
		Message:    fmt.Sprintf("%d orders archived", affected),
		Archived:   affected,
		CutoffDays: cutoffDays,
	}, nil
}

func (s *service) observe(operation string, errp *error) {
	if errp == nil || *errp == nil {
		return
	}
	s.metrics.IncFailure(operation, string(pkgerrors.CodeOf(*errp)))
}

// resolveColourCode keeps the stored code when none is supplied and falls
// back to the Pending sentinel when nothing was ever recorded.
func resolveColourCode(supplied *string, stored string) string {
	if supplied != nil && !isBlank(*supplied) {
		return strings.TrimSpace(*supplied)
	}
	if !isBlank(stored) {
		return stored
	}
	return enums.ColourCodePending
}

// resolveNote keeps the previous note when none is supplied.
func resolveNote(supplied, previous *string) (*string, bool) {
	if supplied == nil || isBlank(*supplied) {
		return previous, false
	}
	note := strings.TrimSpace(*supplied)
	return &note, previous == nil || *previous != note
}

func updateRemarks(statusChanged, noteChanged bool, note string) string {
	switch {
	case !statusChanged && noteChanged:
		return "Note updated to: " + note
	case statusChanged && note != "":
		return "Status updated with note: " + note
	case statusChanged:
		return "Status updated"
	}
	return remarksNoteUpdatedVia
}
