/*
handlers_test.go - Unit tests for API handlers

Tests for:
- Login and session gating
- Attendance validation and bulk marking
- Schedule lookups (working day, remaining employees)
- Transaction creation with the recurring-payment guard
- Unpaid payroll queries
- CSV export
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/econs/opsboard/config"
	"github.com/econs/opsboard/store/sqlite"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

// fixedNow is a Monday (working day) used as "today" in every test.
var fixedNow = time.Date(2025, time.July, 28, 10, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Roster = []config.RosterEntry{
		{Name: "Ameer Hamza", Salary: 39000},
		{Name: "Rafiq", Salary: 47700, Exception: "last_working_day_only"},
		{Name: "Jawad", Salary: 40000, DepartureDate: "2025-06-30"},
		{Name: "Cleaner", Salary: 8000},
	}
	cfg.AttendanceExcluded = []string{"Cleaner"}
	cfg.FixedExpenses = []config.FixedExpense{
		{Name: "Rent", Amount: 35000},
		{Name: "Electricity", Amount: 12000},
	}
	cfg.Users = []config.User{
		{Email: "admin@example.com", PasswordHash: string(hash), Role: "admin"},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h, err := NewHandler(store, testConfig(t))
	require.NoError(t, err)
	h.Now = func() time.Time { return fixedNow }
	return h
}

// newTestServer returns the router plus an authenticated cookie.
func newTestServer(t *testing.T) (*Handler, *httptest.Server, *http.Cookie) {
	t.Helper()
	h := newTestHandler(t)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)

	resp := postJSON(t, srv, "/api/login", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter2",
	}, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == "user_token" {
			return h, srv, c
		}
	}
	t.Fatal("login response missing user_token cookie")
	return nil, nil, nil
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin_WrongPassword(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	resp := postJSON(t, srv, "/api/login", map[string]string{
		"email":    "admin@example.com",
		"password": "wrong",
	}, nil)
	body := decodeBody(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/api/transactions", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/logout", map[string]string{}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/api/transactions", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func TestMarkAttendance_BulkWithDuplicates(t *testing.T) {
	// GIVEN: Ameer Hamza already marked present for 2025-07-28
	// WHEN: A bulk submission re-sends him plus a new record
	// THEN: insertedCount is 1 and both records are visible

	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/attendance", map[string]any{
		"records": []map[string]string{
			{"employee": "Ameer Hamza", "date": "2025-07-28", "status": "present"},
		},
	}, cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["insertedCount"])

	resp = postJSON(t, srv, "/api/attendance", map[string]any{
		"records": []map[string]string{
			{"employee": "Ameer Hamza", "date": "2025-07-28", "status": "absent"},
			{"employee": "Ameer Hamza", "date": "2025-07-24", "status": "present"},
		},
	}, cookie)
	body = decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["insertedCount"])

	resp = doRequest(t, srv, http.MethodGet, "/api/attendance?date=2025-07-28", cookie)
	body = decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["records"], 1)
}

func TestMarkAttendance_RejectsNonWorkingDay(t *testing.T) {
	// 2025-07-27 is a Sunday.
	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/attendance", map[string]any{
		"records": []map[string]string{
			{"employee": "Ameer Hamza", "date": "2025-07-27", "status": "present"},
		},
	}, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestMarkAttendance_RejectsInactiveEmployee(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	cases := []struct {
		name string
		rec  map[string]string
	}{
		{"departed employee past departure", map[string]string{
			"employee": "Jawad", "date": "2025-07-24", "status": "present"}},
		{"excluded role", map[string]string{
			"employee": "Cleaner", "date": "2025-07-28", "status": "present"}},
		{"weekly-cadence employee on a Monday", map[string]string{
			"employee": "Rafiq", "date": "2025-07-28", "status": "present"}},
		{"unknown employee", map[string]string{
			"employee": "Nobody", "date": "2025-07-28", "status": "present"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/api/attendance", map[string]any{
				"records": []map[string]string{tc.rec},
			}, cookie)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestMarkAttendance_RejectsFutureAndPreWindowDates(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	for _, d := range []string{"2025-07-22", "2025-07-29"} {
		resp := postJSON(t, srv, "/api/attendance", map[string]any{
			"records": []map[string]string{
				{"employee": "Ameer Hamza", "date": d, "status": "present"},
			},
		}, cookie)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, d)
	}
}

func TestGetAttendance_ByEmployeeWithMonth(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/attendance", map[string]any{
		"records": []map[string]string{
			{"employee": "Ameer Hamza", "date": "2025-07-24", "status": "present"},
			{"employee": "Ameer Hamza", "date": "2025-07-28", "status": "absent"},
		},
	}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet,
		"/api/attendance?employee=Ameer+Hamza&month=2025-07", cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["records"], 2)
}

// =============================================================================
// SCHEDULE
// =============================================================================

func TestGetSchedule_RemainingShrinksAsMarked(t *testing.T) {
	// GIVEN: Monday 2025-07-28, active = [Ameer Hamza] (Rafiq weekly,
	//        Jawad departed, Cleaner excluded)
	_, srv, cookie := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/api/schedule?date=2025-07-28", cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sched := body["schedule"].(map[string]any)
	assert.Equal(t, true, sched["working_day"])
	assert.Equal(t, "2025-07-29", sched["next_working_day"])
	assert.Equal(t, false, sched["last_working_day_of_week"])
	assert.Equal(t, []any{"Ameer Hamza"}, sched["active_employees"])
	assert.Equal(t, []any{"Ameer Hamza"}, sched["remaining"])

	resp = postJSON(t, srv, "/api/attendance", map[string]any{
		"records": []map[string]string{
			{"employee": "Ameer Hamza", "date": "2025-07-28", "status": "present"},
		},
	}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/api/schedule?date=2025-07-28", cookie)
	body = decodeBody(t, resp)
	sched = body["schedule"].(map[string]any)
	assert.Empty(t, sched["remaining"])
}

func TestGetSchedule_OpenSaturdayIsLastWorkingDay(t *testing.T) {
	// 2025-07-26 is the anchor, an open Saturday, and therefore the week's
	// last working day. Rafiq (weekly cadence) is active on it.
	_, srv, cookie := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/api/schedule?date=2025-07-26", cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sched := body["schedule"].(map[string]any)
	assert.Equal(t, true, sched["working_day"])
	assert.Equal(t, true, sched["last_working_day_of_week"])
	assert.Contains(t, sched["active_employees"], "Rafiq")
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestAddTransaction_SalaryDefaultsAndGuard(t *testing.T) {
	// GIVEN: No transactions
	// WHEN: A July salary for Ameer Hamza is submitted without an amount
	// THEN: The amount defaults to the configured base salary, and a second
	//       July submission is rejected with 409

	_, srv, cookie := newTestServer(t)

	salary := map[string]any{
		"type":     "expense",
		"date":     "2025-07-28",
		"category": "Salary",
		"employee": "Ameer Hamza",
	}
	resp := postJSON(t, srv, "/api/transactions", salary, cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	tx := body["transaction"].(map[string]any)
	amount, err := decimal.NewFromString(fmt.Sprintf("%v", tx["amount"]))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(39000)))

	resp = postJSON(t, srv, "/api/transactions", salary, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Next month opens a fresh bucket.
	salary["date"] = "2025-08-01"
	resp = postJSON(t, srv, "/api/transactions", salary, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAddTransaction_FixedExpenseGuard(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	rent := map[string]any{
		"type":         "expense",
		"date":         "2025-07-03",
		"category":     "Fixed",
		"fixedExpense": "Rent",
	}
	resp := postJSON(t, srv, "/api/transactions", rent, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	rent["date"] = "2025-07-20"
	resp = postJSON(t, srv, "/api/transactions", rent, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Unknown catalog items are rejected outright.
	rent["fixedExpense"] = "Water"
	resp = postJSON(t, srv, "/api/transactions", rent, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddTransaction_Validation(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad type", map[string]any{"type": "transfer", "date": "2025-07-01", "category": "Misc", "amount": "10"}},
		{"missing category", map[string]any{"type": "income", "date": "2025-07-01", "amount": "10"}},
		{"bad date", map[string]any{"type": "income", "date": "July 1", "category": "Misc", "amount": "10"}},
		{"salary without roster employee", map[string]any{"type": "expense", "date": "2025-07-01", "category": "Salary", "employee": "Nobody"}},
		{"zero amount plain entry", map[string]any{"type": "income", "date": "2025-07-01", "category": "Misc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv, "/api/transactions", tc.body, cookie)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/transactions", map[string]any{
		"type": "income", "date": "2025-07-01", "category": "Misc", "amount": "250",
	}, cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["transaction"].(map[string]any)["id"].(string)

	resp = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+id, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodDelete, "/api/transactions/"+id, cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportTransactions_CSV(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/transactions", map[string]any{
		"type": "income", "date": "2025-07-10", "category": "OK Builder", "amount": "90000",
	}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet,
		"/api/transactions/export?mode=month&month=2025-07", cookie)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	csv := buf.String()
	assert.True(t, strings.HasPrefix(csv, "Date,Type,Category,Amount,Description,Employee,Fixed Expense"))
	assert.Contains(t, csv, "2025-07-10,income,OK Builder,90000")
}

func TestExportTransactions_BadMode(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/api/transactions/export?mode=2w", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// SUMMARY AND PAYROLL
// =============================================================================

func TestGetSummary(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	for _, tx := range []map[string]any{
		{"type": "income", "date": "2025-07-10", "category": "Misc", "amount": "90000"},
		{"type": "expense", "date": "2025-07-12", "category": "Petrol", "amount": "1500"},
	} {
		resp := postJSON(t, srv, "/api/transactions", tx, cookie)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := doRequest(t, srv, http.MethodGet, "/api/summary", cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	months := body["months"].([]any)
	require.Len(t, months, 1)
	july := months[0].(map[string]any)
	assert.Equal(t, "2025-07", july["month"])

	profit, err := decimal.NewFromString(fmt.Sprintf("%v", july["profit"]))
	require.NoError(t, err)
	assert.True(t, profit.Equal(decimal.NewFromInt(88500)))
}

func TestGetUnpaid_SalaryMonthProgression(t *testing.T) {
	// GIVEN: July salaries due for everyone except Jawad (departed June 30)
	// WHEN: Ameer Hamza's salary is recorded
	// THEN: He moves from unpaid to paid; the excluded Cleaner is still owed

	_, srv, cookie := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/api/payroll/unpaid?kind=salary&month=2025-07", cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]any)
	assert.Equal(t, []any{"Ameer Hamza", "Rafiq", "Cleaner"}, result["unpaid"])

	resp = postJSON(t, srv, "/api/transactions", map[string]any{
		"type": "expense", "date": "2025-07-28", "category": "Salary", "employee": "Ameer Hamza",
	}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/api/payroll/unpaid?kind=salary&month=2025-07", cookie)
	body = decodeBody(t, resp)
	result = body["result"].(map[string]any)
	assert.Equal(t, []any{"Rafiq", "Cleaner"}, result["unpaid"])
	assert.Equal(t, []any{"Ameer Hamza"}, result["paid"])

	// June still includes Jawad (departure month).
	resp = doRequest(t, srv, http.MethodGet, "/api/payroll/unpaid?kind=salary&month=2025-06", cookie)
	body = decodeBody(t, resp)
	result = body["result"].(map[string]any)
	assert.Contains(t, result["unpaid"], "Jawad")
}

func TestGetUnpaid_FixedExpenses(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := postJSON(t, srv, "/api/transactions", map[string]any{
		"type": "expense", "date": "2025-07-03", "category": "Fixed", "fixedExpense": "Rent",
	}, cookie)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, srv, http.MethodGet, "/api/payroll/unpaid?kind=fixed_expense&month=2025-07", cookie)
	body := decodeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := body["result"].(map[string]any)
	assert.Equal(t, []any{"Electricity"}, result["unpaid"])
	assert.Equal(t, []any{"Rent"}, result["paid"])
}

func TestGetUnpaid_BadKind(t *testing.T) {
	_, srv, cookie := newTestServer(t)

	resp := doRequest(t, srv, http.MethodGet, "/api/payroll/unpaid?kind=loans", cookie)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
