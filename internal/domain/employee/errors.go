package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrInvalidSalaryType  = errors.New("salary type must be monthly or hourly")
	ErrEmployeeNotPayable = errors.New("employee is not active or has no current position")
)
