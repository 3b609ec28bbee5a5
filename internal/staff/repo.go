package staff

import (
	"context"

	"gorm.io/gorm"

	"github.com/paintqueue/paintqueue-backend/pkg/db/models"
)

// Repository persists the employees table.
type Repository interface {
	List(ctx context.Context) ([]models.Employee, error)
	FindByCode(ctx context.Context, code string) (*models.Employee, error)
	Create(ctx context.Context, employee *models.Employee) error
	UpdateByCode(ctx context.Context, code string, updates map[string]any) (int64, error)
	DeleteByCode(ctx context.Context, code string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a staff repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]models.Employee, error) {
	var rows []models.Employee
	if err := r.db.WithContext(ctx).Order("employee_name ASC").Order("employee_code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("employee_code = ?", code).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) Create(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repository) UpdateByCode(ctx context.Context, code string, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Employee{}).Where("employee_code = ?", code).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteByCode(ctx context.Context, code string) (int64, error) {
	res := r.db.WithContext(ctx).Where("employee_code = ?", code).Delete(&models.Employee{})
	return res.RowsAffected, res.Error
}
