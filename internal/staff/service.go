package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db"
	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
	pkgerrors "github.com/paintqueue/paintqueue-backend/pkg/errors"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrDuplicateEmployee = errors.New("duplicate employee code")
)

// EmployeeInput is the create/update payload for a staff member.
type EmployeeInput struct {
	EmployeeCode string `json:"employee_code" validate:"notblank,max=50"`
	EmployeeName string `json:"employee_name" validate:"notblank,max=100"`
	Role         string `json:"role" validate:"notblank,max=50"`
}

// EmployeeView is the API representation of a staff member.
type EmployeeView struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	Role         string `json:"role"`
}

// Service manages the staff directory.
type Service interface {
	List(ctx context.Context) ([]EmployeeView, error)
	Create(ctx context.Context, input EmployeeInput) (*EmployeeView, error)
	Update(ctx context.Context, code string, input EmployeeInput) (*EmployeeView, error)
	Delete(ctx context.Context, code string) error
	LookupByCode(ctx context.Context, code string) (*EmployeeView, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the staff service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]EmployeeView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list employees")
	}
	out := make([]EmployeeView, 0, len(rows))
	for _, row := range rows {
		out = append(out, toView(row))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input EmployeeInput) (*EmployeeView, error) {
	input = normalize(input)
	if err := validate(input, true); err != nil {
		return nil, err
	}
	employee := models.Employee{
		EmployeeCode: input.EmployeeCode,
		EmployeeName: input.EmployeeName,
		Role:         input.Role,
	}
	if err := s.repo.Create(ctx, &employee); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrDuplicateEmployee, fmt.Sprintf("employee code %s already exists", input.EmployeeCode))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create employee")
	}

	logCtx := s.logg.WithField(ctx, "employee_code", employee.EmployeeCode)
	s.logg.Info(logCtx, "employee created")

	view := toView(employee)
	return &view, nil
}

// Update rewrites the name and role of an employee. The code itself is the
// lookup key and cannot change.
func (s *service) Update(ctx context.Context, code string, input EmployeeInput) (*EmployeeView, error) {
	code = strings.TrimSpace(code)
	input = normalize(input)
	if err := validate(input, false); err != nil {
		return nil, err
	}
	affected, err := s.repo.UpdateByCode(ctx, code, map[string]any{
		"employee_name": input.EmployeeName,
		"role":          input.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update employee")
	}
	if affected == 0 {
		return nil, notFound(code)
	}
	return s.LookupByCode(ctx, code)
}

func (s *service) Delete(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	affected, err := s.repo.DeleteByCode(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete employee")
	}
	if affected == 0 {
		return notFound(code)
	}
	logCtx := s.logg.WithField(ctx, "employee_code", code)
	s.logg.Info(logCtx, "employee deleted")
	return nil
}

// LookupByCode resolves a badge code to an employee. Matching is exact after
// trimming surrounding whitespace.
func (s *service) LookupByCode(ctx context.Context, code string) (*EmployeeView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "employee code required").
			WithDetails(map[string]any{"field": "code"})
	}
	employee, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(code)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup employee")
	}
	view := toView(*employee)
	return &view, nil
}

func notFound(code string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrEmployeeNotFound, fmt.Sprintf("employee %s not found", code))
}

func normalize(input EmployeeInput) EmployeeInput {
	return EmployeeInput{
		EmployeeCode: strings.TrimSpace(input.EmployeeCode),
		EmployeeName: strings.TrimSpace(input.EmployeeName),
		Role:         strings.TrimSpace(input.Role),
	}
}

func validate(input EmployeeInput, requireCode bool) error {
	details := map[string]string{}
	if requireCode && input.EmployeeCode == "" {
		details["employee_code"] = "is required"
	}
	if input.EmployeeName == "" {
		details["employee_name"] = "is required"
	}
	if input.Role == "" {
		details["role"] = "is required"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func toView(e models.Employee) EmployeeView {
	return EmployeeView{
		EmployeeID:   e.EmployeeID,
		EmployeeCode: e.EmployeeCode,
		EmployeeName: e.EmployeeName,
		Role:         e.Role,
	}
}
