package models

// Employee is a shop staff member. Role is free text; only "Admin" carries
// elevated rights.
type Employee struct {
	EmployeeID   int64  `gorm:"column:employee_id;primaryKey;autoIncrement"`
	EmployeeCode string `gorm:"column:employee_code;type:text;not null;uniqueIndex:idx_employees_code"`
	EmployeeName string `gorm:"column:employee_name;type:text;not null"`
	Role         string `gorm:"column:role;type:text;not null"`
}

func (Employee) TableName() string { return "employees" }
