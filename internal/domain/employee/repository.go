package employee

import (
	"context"
	"time"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	// ListPayable returns active employees whose current position started on
	// or before periodEnd, ordered by employee code.
	ListPayable(ctx context.Context, periodEnd time.Time) ([]Employee, error)
}
