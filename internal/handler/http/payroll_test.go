package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/payroll-service/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-service/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-service/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePayrollService returns canned results and records the ids it was called with.
type fakePayrollService struct {
	err        error
	calls      []string
	registered []payroll.RegisterRow
}

func (f *fakePayrollService) record(op string, ids ...string) {
	f.calls = append(f.calls, op+":"+strings.Join(ids, ","))
}

func (f *fakePayrollService) CalculatePayroll(ctx context.Context, employeeID, periodID string) (payroll.PayrollResponse, error) {
	f.record("calculate", employeeID, periodID)
	return payroll.PayrollResponse{ID: "p1", EmployeeID: employeeID, PeriodID: periodID}, f.err
}

func (f *fakePayrollService) ProcessPeriod(ctx context.Context, periodID string) (payroll.ProcessResult, error) {
	f.record("process", periodID)
	return payroll.ProcessResult{PeriodID: periodID, Processed: 3, Errors: 1}, f.err
}

func (f *fakePayrollService) GetPeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	f.record("get_period", periodID)
	return payroll.PeriodResponse{ID: periodID, Status: "calculated", TotalNet: decimal.RequireFromString("1207540")}, f.err
}

func (f *fakePayrollService) ApprovePeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	f.record("approve", periodID)
	return payroll.PeriodResponse{ID: periodID, Status: "approved"}, f.err
}

func (f *fakePayrollService) ClosePeriod(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	f.record("close", periodID)
	return payroll.PeriodResponse{ID: periodID, Status: "closed"}, f.err
}

func (f *fakePayrollService) ListPeriodPayrolls(ctx context.Context, periodID string) ([]payroll.PayrollResponse, error) {
	f.record("list", periodID)
	return nil, f.err
}

func (f *fakePayrollService) PeriodRegister(ctx context.Context, periodID string) ([]payroll.RegisterRow, error) {
	f.record("register", periodID)
	return f.registered, f.err
}

func (f *fakePayrollService) GetPayroll(ctx context.Context, payrollID string) (payroll.PayrollResponse, error) {
	f.record("get_payroll", payrollID)
	return payroll.PayrollResponse{ID: payrollID}, f.err
}

func newTestRouter(svc payroll.PayrollService) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewRouter(RouterOptions{Logger: logger, AllowedOrigins: []string{"*"}}, NewPayrollHandler(svc))
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestPayrollHandler_Routes(t *testing.T) {
	periodID := uuid.NewString()
	employeeID := uuid.NewString()

	cases := []struct {
		method string
		path   string
		call   string
	}{
		{http.MethodGet, "/api/v1/payroll/periods/" + periodID, "get_period:" + periodID},
		{http.MethodGet, "/api/v1/payroll/periods/" + periodID + "/payrolls", "list:" + periodID},
		{http.MethodPost, "/api/v1/payroll/periods/" + periodID + "/process", "process:" + periodID},
		{http.MethodPost, "/api/v1/payroll/periods/" + periodID + "/employees/" + employeeID + "/calculate", "calculate:" + employeeID + "," + periodID},
		{http.MethodPost, "/api/v1/payroll/periods/" + periodID + "/approve", "approve:" + periodID},
		{http.MethodPost, "/api/v1/payroll/periods/" + periodID + "/close", "close:" + periodID},
		{http.MethodGet, "/api/v1/payroll/payrolls/" + periodID, "get_payroll:" + periodID},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			svc := &fakePayrollService{}
			rec, body := do(t, newTestRouter(svc), tc.method, tc.path)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, body.Success)
			assert.Equal(t, []string{tc.call}, svc.calls)
		})
	}
}

func TestPayrollHandler_ProcessPeriodMessage(t *testing.T) {
	periodID := uuid.NewString()
	_, body := do(t, newTestRouter(&fakePayrollService{}), http.MethodPost, "/api/v1/payroll/periods/"+periodID+"/process")

	assert.Equal(t, "Processed 3 payrolls with 1 errors", body.Message)
	var result payroll.ProcessResult
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, periodID, result.PeriodID)
}

func TestPayrollHandler_EmptyListIsArray(t *testing.T) {
	_, body := do(t, newTestRouter(&fakePayrollService{}), http.MethodGet, "/api/v1/payroll/periods/"+uuid.NewString()+"/payrolls")
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestPayrollHandler_RejectsMalformedIDs(t *testing.T) {
	svc := &fakePayrollService{}
	h := newTestRouter(svc)

	rec, body := do(t, h, http.MethodPost, "/api/v1/payroll/periods/not-a-uuid/process")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "BAD_REQUEST", body.Error.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/payroll/periods/"+uuid.NewString()+"/employees/42/calculate")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.calls)
}

func TestPayrollHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{payroll.ErrPeriodNotFound, http.StatusNotFound, "NOT_FOUND"},
		{payroll.ErrPayrollNotFound, http.StatusNotFound, "NOT_FOUND"},
		{employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{payroll.ErrPeriodLocked, http.StatusConflict, "CONFLICT"},
		{payroll.ErrPeriodBusy, http.StatusConflict, "CONFLICT"},
		{payroll.ErrPayrollLocked, http.StatusConflict, "CONFLICT"},
		{payroll.ErrInvalidStatusTransition, http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("%w: base salary must be positive", payroll.ErrInvalidEmployeeData), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{employee.ErrEmployeeNotPayable, http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{validator.ValidationErrors{{Field: "workers", Message: "must be at least 1"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{fmt.Errorf("resolve concept HORAS_EXTRA: %w", payroll.ErrConceptNotFound), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &fakePayrollService{err: tc.err}
			rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/v1/payroll/periods/"+uuid.NewString())

			assert.Equal(t, tc.status, rec.Code)
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestPayrollHandler_ExportRegister(t *testing.T) {
	periodID := uuid.NewString()
	svc := &fakePayrollService{registered: []payroll.RegisterRow{
		{EmployeeCode: "0001-0001", EmployeeName: "Ana", WorkedDays: 22, NetSalary: "1207540.00", Status: "calculated"},
	}}

	rec, _ := do(t, newTestRouter(svc), http.MethodGet, "/api/v1/payroll/periods/"+periodID+"/register.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), periodID)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "employee_code,employee_name,worked_days"))
	assert.True(t, strings.HasPrefix(lines[1], "0001-0001,Ana,22"))
	assert.Contains(t, lines[1], "1207540.00")
}

func TestPayrollHandler_ExportRegisterNotFound(t *testing.T) {
	svc := &fakePayrollService{err: payroll.ErrPeriodNotFound}
	rec, body := do(t, newTestRouter(svc), http.MethodGet, "/api/v1/payroll/periods/"+uuid.NewString()+"/register.csv")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
