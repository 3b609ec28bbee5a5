package orders

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/paintqueue/paintqueue-backend/api/middleware"
	"github.com/paintqueue/paintqueue-backend/api/responses"
	"github.com/paintqueue/paintqueue-backend/api/validators"
	internalorders "github.com/paintqueue/paintqueue-backend/internal/orders"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
	"github.com/paintqueue/paintqueue-backend/pkg/pagination"
)

const maxSearchQueryLen = 100

type updateStatusRequest struct {
	CurrentStatus    string  `json:"current_status" validate:"required"`
	AssignedEmployee string  `json:"assigned_employee" validate:"max=100"`
	ColourCode       *string `json:"colour_code" validate:"omitempty,max=100"`
	Note             *string `json:"note" validate:"omitempty,max=1000"`
	POType           *string `json:"po_type"`
	UserRole         string  `json:"user_role"`
	EmployeeName     string  `json:"employee_name"`
	OldStatus        string  `json:"old_status"`
}

type actorRequest struct {
	Reason       string `json:"reason" validate:"max=500"`
	UserRole     string `json:"user_role"`
	EmployeeName string `json:"employee_name"`
}

// List serves one of the predefined order views.
func List(svc internalorders.Service, view internalorders.ListView, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.List(r.Context(), view, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ListDeleted serves the cancellation archive.
func ListDeleted(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListDeleted(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Search(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := internalorders.SearchParams{Limit: limit}
		for _, f := range []struct {
			key  string
			dest *string
			max  int
		}{
			{"q", &params.Query, maxSearchQueryLen},
			{"sortBy", &params.SortBy, 50},
			{"sortOrder", &params.SortOrder, 10},
		} {
			if *f.dest, err = validators.QueryString(r, f.key, f.max); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		rows, err := svc.Search(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// ActiveCount returns the Waiting plus Mixing queue depth.
func ActiveCount(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := svc.CountActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, count)
	}
}

// CheckDuplicate reports whether an order with the same customer, contact,
// paint type and category is already on file.
func CheckDuplicate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q internalorders.DuplicateQuery
		for _, f := range []struct {
			key  string
			dest *string
			max  int
		}{
			{"customer_name", &q.CustomerName, 200},
			{"client_contact", &q.ClientContact, 50},
			{"paint_type", &q.PaintType, 200},
			{"category", &q.Category, 50},
		} {
			v, err := validators.QueryString(r, f.key, f.max)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			*f.dest = v
		}

		result, err := svc.CheckDuplicate(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckID answers 200 when the transaction id is free and 409 when taken.
func CheckID(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckID(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Transaction ID is available")
	}
}

func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func History(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.History(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		name, role := middleware.ActorFromContext(r.Context())
		input.EmployeeName = firstNonBlank(input.EmployeeName, name)
		input.UserRole = firstNonBlank(input.UserRole, role)

		view, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// UpdateStatus applies a status, assignee, colour or note change.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name, role := middleware.ActorFromContext(ctx)
		id := chi.URLParam(r, "id")
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id)
		}

		view, err := svc.UpdateStatus(ctx, internalorders.UpdateStatusInput{
			TransactionID:    id,
			NewStatus:        req.CurrentStatus,
			AssignedEmployee: req.AssignedEmployee,
			ColourCode:       req.ColourCode,
			Note:             req.Note,
			POType:           req.POType,
			UserRole:         firstNonBlank(req.UserRole, role),
			ActorName:        firstNonBlank(req.EmployeeName, name),
			OldStatus:        req.OldStatus,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// Cancel withdraws an order into the deleted archive. Serves both the PUT
// .../cancel and DELETE routes.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, err := decodeActorRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name, role := middleware.ActorFromContext(ctx)
		id := chi.URLParam(r, "id")
		if logg != nil {
			ctx = logg.WithOrderID(ctx, id)
		}

		if _, err := svc.Cancel(ctx, internalorders.CancelInput{
			TransactionID: id,
			Reason:        firstNonBlank(req.Reason, r.URL.Query().Get("reason")),
			ActorName:     firstNonBlank(req.EmployeeName, name),
			ActorRole:     firstNonBlank(req.UserRole, role),
		}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Order cancelled and archived")
	}
}

// MarkComplete is the admin confirmation of a Ready order.
func MarkComplete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, err := decodeActorRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		name, role := middleware.ActorFromContext(ctx)
		view, err := svc.MarkComplete(ctx, internalorders.MarkCompleteInput{
			TransactionID: chi.URLParam(r, "id"),
			ActorName:     firstNonBlank(req.EmployeeName, name),
			ActorRole:     firstNonBlank(req.UserRole, role),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ArchiveOld runs the staleness sweep. days defaults to defaultDays.
func ArchiveOld(svc internalorders.Service, defaultDays int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := validators.ParseQueryInt(r, "days", defaultDays, 1, 3650)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ArchiveStale(r.Context(), days)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// decodeActorRequest accepts an empty body; cancel and mark-paid callers may
// identify themselves through headers alone.
func decodeActorRequest(r *http.Request) (actorRequest, error) {
	var req actorRequest
	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}
	if err := validators.DecodeJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
