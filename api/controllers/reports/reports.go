package reports

import (
	"net/http"

	"github.com/paintqueue/paintqueue-backend/api/responses"
	"github.com/paintqueue/paintqueue-backend/api/validators"
	internalreports "github.com/paintqueue/paintqueue-backend/internal/reports"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

// Dates are passed through unbounded; the service owns their format check.
const (
	maxStatusLen   = 20
	maxCategoryLen = 50
	maxOrderIDLen  = 64
)

func Summary(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q internalreports.SummaryQuery
		if err := readQuery(r, map[string]queryField{
			"start_date": {dest: &q.StartDate},
			"end_date":   {dest: &q.EndDate},
			"status":     {dest: &q.Status, max: maxStatusLen},
			"category":   {dest: &q.Category, max: maxCategoryLen},
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q.IncludeDeleted = validators.ParseQueryBool(r, "include_deleted")

		summary, err := svc.Summary(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func AuditLogs(svc internalreports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q internalreports.AuditLogQuery
		if err := readQuery(r, map[string]queryField{
			"start_date": {dest: &q.StartDate},
			"end_date":   {dest: &q.EndDate},
			"status":     {dest: &q.Status, max: maxStatusLen},
			"order_id":   {dest: &q.OrderID, max: maxOrderIDLen},
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.AuditLogs(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

type queryField struct {
	dest *string
	max  int
}

func readQuery(r *http.Request, fields map[string]queryField) error {
	for key, f := range fields {
		v, err := validators.QueryString(r, key, f.max)
		if err != nil {
			return err
		}
		*f.dest = v
	}
	return nil
}
