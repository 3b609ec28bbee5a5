package staff

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paintqueue/paintqueue-backend/api/responses"
	"github.com/paintqueue/paintqueue-backend/api/validators"
	internalstaff "github.com/paintqueue/paintqueue-backend/internal/staff"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

const maxEmployeeCodeLen = 50

type updateRequest struct {
	EmployeeName string `json:"employee_name" validate:"notblank,max=100"`
	Role         string `json:"role" validate:"notblank,max=50"`
}

func List(svc internalstaff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func Create(svc internalstaff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input internalstaff.EmployeeInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func Update(svc internalstaff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Update(r.Context(), chi.URLParam(r, "code"), internalstaff.EmployeeInput{
			EmployeeName: req.EmployeeName,
			Role:         req.Role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func Delete(svc internalstaff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Employee deleted")
	}
}

// Lookup resolves ?code= to an employee for the floor login prompt.
func Lookup(svc internalstaff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := validators.QueryString(r, "code", maxEmployeeCodeLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "employee code required").
				WithDetails(map[string]any{"field": "code"}))
			return
		}
		view, err := svc.LookupByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
