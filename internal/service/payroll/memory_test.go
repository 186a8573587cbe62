package payroll

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-service/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/leave"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

// memoryStore backs every repository fake. Writes go through mu; whole
// transactions are serialized through txMu and rolled back from a snapshot.
type memoryStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	periods    map[string]payroll.Period
	payrolls   map[string]payroll.Payroll
	details    map[string][]payroll.PayrollDetail
	concepts   map[payroll.ConceptCode]payroll.Concept
	benefits   map[string][]payroll.Benefit
	employees  []employee.Employee
	attendance map[string][]attendance.Attendance
	leaves     map[string][]leave.LeaveRequest

	failInsertDetails map[string]bool // by employee id
	locked            map[string]bool

	// onListPresent runs before attendance is read, outside the store lock.
	onListPresent func(employeeID string)
}

func newMemoryStore() *memoryStore {
	s := &memoryStore{
		periods:           map[string]payroll.Period{},
		payrolls:          map[string]payroll.Payroll{},
		details:           map[string][]payroll.PayrollDetail{},
		concepts:          map[payroll.ConceptCode]payroll.Concept{},
		benefits:          map[string][]payroll.Benefit{},
		attendance:        map[string][]attendance.Attendance{},
		leaves:            map[string][]leave.LeaveRequest{},
		failInsertDetails: map[string]bool{},
		locked:            map[string]bool{},
	}
	for _, code := range payroll.StandardConcepts {
		conceptType := payroll.ConceptTypeEarning
		switch code {
		case payroll.ConceptHealth, payroll.ConceptPension, payroll.ConceptUnpaidLeave:
			conceptType = payroll.ConceptTypeDeduction
		case payroll.ConceptIncomeTax:
			conceptType = payroll.ConceptTypeTax
		}
		s.concepts[code] = payroll.Concept{ID: uuid.NewString(), Code: code, Name: string(code), Type: conceptType}
	}
	return s
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (s *memoryStore) addPeriod(status payroll.PeriodStatus) payroll.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := payroll.Period{
		ID:        uuid.NewString(),
		Name:      "January 2025",
		StartDate: date(2025, time.January, 1),
		EndDate:   date(2025, time.January, 31),
		Status:    status,
	}
	s.periods[p.ID] = p
	return p
}

func (s *memoryStore) addEmployee(code string, base string, salaryType employee.SalaryType) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	emp := employee.Employee{
		ID:           uuid.NewString(),
		EmployeeCode: code,
		FullName:     "Employee " + code,
		BaseSalary:   dec(base),
		SalaryType:   salaryType,
		Status:       employee.EmploymentStatusActive,
		CurrentPosition: &employee.PositionAssignment{
			PositionID:   uuid.NewString(),
			PositionName: "Analyst",
			StartDate:    date(2024, time.August, 1),
		},
	}
	s.employees = append(s.employees, emp)
	return emp
}

// addWorkDays records n present days from Jan 1 with the given hours each.
func (s *memoryStore) addWorkDays(employeeID string, n int, hours string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := date(2025, time.January, 1).AddDate(0, 0, len(s.attendance[employeeID]))
	for i := 0; i < n; i++ {
		h := dec(hours)
		s.attendance[employeeID] = append(s.attendance[employeeID], attendance.Attendance{
			ID:         uuid.NewString(),
			EmployeeID: employeeID,
			Date:       start.AddDate(0, 0, i),
			TotalHours: &h,
			Status:     attendance.StatusPresent,
		})
	}
}

func (s *memoryStore) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	periods := make(map[string]payroll.Period, len(s.periods))
	for k, v := range s.periods {
		periods[k] = v
	}
	payrolls := make(map[string]payroll.Payroll, len(s.payrolls))
	for k, v := range s.payrolls {
		payrolls[k] = v
	}
	details := make(map[string][]payroll.PayrollDetail, len(s.details))
	for k, v := range s.details {
		details[k] = append([]payroll.PayrollDetail(nil), v...)
	}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.periods = periods
		s.payrolls = payrolls
		s.details = details
	}
}

func (s *memoryStore) payrollOf(employeeID, periodID string) (payroll.Payroll, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payrolls {
		if p.EmployeeID == employeeID && p.PeriodID == periodID {
			return p, true
		}
	}
	return payroll.Payroll{}, false
}

func (s *memoryStore) detailsOf(payrollID string) []payroll.PayrollDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]payroll.PayrollDetail(nil), s.details[payrollID]...)
}

// ========== FAKES ==========

type memoryTransactor struct{ s *memoryStore }

// WithinTransaction refuses to begin on a done context, like pgx Begin.
func (t memoryTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()
	restore := t.s.snapshot()
	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

type memoryLocker struct{ s *memoryStore }

func (l memoryLocker) TryLock(ctx context.Context, periodID string) (func(), error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.locked[periodID] {
		return nil, payroll.ErrPeriodBusy
	}
	l.s.locked[periodID] = true
	return func() {
		l.s.mu.Lock()
		defer l.s.mu.Unlock()
		delete(l.s.locked, periodID)
	}, nil
}

type memoryPeriods struct{ s *memoryStore }

func (r memoryPeriods) GetByID(ctx context.Context, id string) (payroll.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.Period{}, payroll.ErrPeriodNotFound
	}
	return p, nil
}

func (r memoryPeriods) ListDue(ctx context.Context, asOf time.Time) ([]payroll.Period, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var due []payroll.Period
	for _, p := range r.s.periods {
		if p.Status == payroll.PeriodStatusOpen && p.EndDate.Before(asOf) {
			due = append(due, p)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].EndDate.Before(due[j].EndDate) })
	return due, nil
}

func (r memoryPeriods) UpdateStatus(ctx context.Context, id string, status payroll.PeriodStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	p.Status = status
	r.s.periods[id] = p
	return nil
}

func (r memoryPeriods) UpdateTotals(ctx context.Context, id string, totals payroll.PeriodTotals) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	now := time.Now()
	p.TotalEmployees = totals.TotalEmployees
	p.TotalGross = totals.TotalGross
	p.TotalDeductions = totals.TotalDeductions
	p.TotalTaxes = totals.TotalTaxes
	p.TotalNet = totals.TotalNet
	p.ProcessedAt = &now
	r.s.periods[id] = p
	return nil
}

type memoryPayrolls struct{ s *memoryStore }

func (r memoryPayrolls) FindOrCreate(ctx context.Context, employeeID, periodID string) (payroll.Payroll, error) {
	if p, ok := r.s.payrollOf(employeeID, periodID); ok {
		return p, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := payroll.Payroll{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		PeriodID:   periodID,
		Status:     payroll.PayrollStatusDraft,
		CreatedAt:  time.Now(),
	}
	r.s.payrolls[p.ID] = p
	return p, nil
}

func (r memoryPayrolls) GetByID(ctx context.Context, id string) (payroll.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payrolls[id]
	if !ok {
		return payroll.Payroll{}, payroll.ErrPayrollNotFound
	}
	return p, nil
}

func (r memoryPayrolls) ListByPeriod(ctx context.Context, periodID string) ([]payroll.Payroll, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	codes := map[string]string{}
	for _, e := range r.s.employees {
		codes[e.ID] = e.EmployeeCode
	}
	var list []payroll.Payroll
	for _, p := range r.s.payrolls {
		if p.PeriodID == periodID {
			code := codes[p.EmployeeID]
			p.EmployeeCode = &code
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return *list[i].EmployeeCode < *list[j].EmployeeCode })
	return list, nil
}

func (r memoryPayrolls) SaveResult(ctx context.Context, p payroll.Payroll) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payrolls[p.ID]; !ok {
		return payroll.ErrPayrollNotFound
	}
	r.s.payrolls[p.ID] = p
	return nil
}

func (r memoryPayrolls) TransitionByPeriod(ctx context.Context, periodID string, from, to payroll.PayrollStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.payrolls {
		if p.PeriodID == periodID && p.Status == from {
			p.Status = to
			r.s.payrolls[id] = p
			n++
		}
	}
	return n, nil
}

func (r memoryPayrolls) SumByPeriod(ctx context.Context, periodID string) (payroll.PeriodTotals, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var totals payroll.PeriodTotals
	for _, p := range r.s.payrolls {
		if p.PeriodID != periodID || p.Status == payroll.PayrollStatusCancelled {
			continue
		}
		totals.TotalEmployees++
		totals.TotalGross = totals.TotalGross.Add(p.GrossSalary)
		totals.TotalDeductions = totals.TotalDeductions.Add(p.TotalDeductions)
		totals.TotalTaxes = totals.TotalTaxes.Add(p.TotalTaxes)
		totals.TotalNet = totals.TotalNet.Add(p.NetSalary)
	}
	return totals, nil
}

func (r memoryPayrolls) DeleteDetails(ctx context.Context, payrollID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.details, payrollID)
	return nil
}

func (r memoryPayrolls) InsertDetails(ctx context.Context, details []payroll.PayrollDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range details {
		if r.s.failInsertDetails[r.s.payrolls[d.PayrollID].EmployeeID] {
			return errInjected
		}
		d.ID = uuid.NewString()
		r.s.details[d.PayrollID] = append(r.s.details[d.PayrollID], d)
	}
	return nil
}

func (r memoryPayrolls) ListDetails(ctx context.Context, payrollID string) ([]payroll.PayrollDetail, error) {
	return r.s.detailsOf(payrollID), nil
}

type memoryConcepts struct{ s *memoryStore }

func (r memoryConcepts) GetByCode(ctx context.Context, code payroll.ConceptCode) (payroll.Concept, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.concepts[code]
	if !ok {
		return payroll.Concept{}, payroll.ErrConceptNotFound
	}
	return c, nil
}

type memoryBenefits struct{ s *memoryStore }

func (r memoryBenefits) ListActiveByEmployee(ctx context.Context, employeeID string) ([]payroll.Benefit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var active []payroll.Benefit
	for _, b := range r.s.benefits[employeeID] {
		if b.IsActive() {
			active = append(active, b)
		}
	}
	return active, nil
}

type memoryEmployees struct{ s *memoryStore }

func (r memoryEmployees) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r memoryEmployees) ListPayable(ctx context.Context, periodEnd time.Time) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []employee.Employee
	for _, e := range r.s.employees {
		if e.IsPayable(periodEnd) {
			list = append(list, e)
		}
	}
	return list, nil
}

type memoryAttendance struct{ s *memoryStore }

func (r memoryAttendance) ListPresent(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Attendance, error) {
	if r.s.onListPresent != nil {
		r.s.onListPresent(employeeID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []attendance.Attendance
	for _, a := range r.s.attendance[employeeID] {
		if a.Status == attendance.StatusPresent && !a.Date.Before(start) && !a.Date.After(end) {
			list = append(list, a)
		}
	}
	return list, nil
}

// memoryLeaves returns every request of the employee and leaves the
// filtering to the engine.
type memoryLeaves struct{ s *memoryStore }

func (r memoryLeaves) ListUnpaidApproved(ctx context.Context, employeeID string, start, end time.Time) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]leave.LeaveRequest(nil), r.s.leaves[employeeID]...), nil
}

func newTestService(t *testing.T, s *memoryStore, cfg payroll.Config) *PayrollServiceImpl {
	t.Helper()
	svc, err := NewPayrollService(
		cfg,
		memoryTransactor{s},
		memoryLocker{s},
		memoryPeriods{s},
		memoryPayrolls{s},
		memoryConcepts{s},
		memoryBenefits{s},
		memoryEmployees{s},
		memoryAttendance{s},
		memoryLeaves{s},
	)
	require.NoError(t, err)
	return svc
}
