/*
api_test.go - HTTP tests for the router and handlers

Tests for:
- Bill CRUD and error status mapping
- Pay cycle settings, projections, preview and rollover
- Billing periods and transactions
- Export download and import round trip
*/
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
	"github.com/Fezbot3000/Interestfree-tracker/store/memory"
)

// =============================================================================
// HELPERS
// =============================================================================

type testServer struct {
	*httptest.Server
	store *memory.Store
}

func newTestServer(t *testing.T, today string) *testServer {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	now := func() calendar.TimePoint { return calendar.MustParseDate(today) }
	store := memory.New()

	ps := planner.NewService(store, planner.Options{CycleCount: 3, Logger: log})
	ps.Now = now
	fs := interestfree.NewService(store, interestfree.Options{Logger: log})
	fs.Now = now

	h := NewHandler(ps, fs, factory.NewTransfer(store, store), log)
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var r io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// =============================================================================
// BILLS
// =============================================================================

func TestBills_CRUD(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	// GIVEN: A new bill posted with a client-side ID
	resp := srv.do(t, http.MethodPost, "/api/bills", `{
		"id": "client-id", "name": "Rent", "amount": 1200,
		"date": "2024-01-31", "frequency": "Monthly", "group": "Housing"
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[factory.BillJSON](t, resp)

	// THEN: The server assigns its own ID and the category
	assert.NotEqual(t, "client-id", created.ID)
	assert.Equal(t, "day31", created.DateCategory)

	// WHEN: Updating the amount
	created.Amount = created.Amount.Add(created.Amount)
	resp = srv.do(t, http.MethodPut, "/api/bills/"+created.ID, created)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/bills/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2400.00", decode[factory.BillJSON](t, resp).Amount.String())

	// WHEN: Deleting it
	resp = srv.do(t, http.MethodDelete, "/api/bills/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/bills", nil)
	assert.Empty(t, decode[[]factory.BillJSON](t, resp))
}

func TestBills_ErrorStatus(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed body", http.MethodPost, "/api/bills", `{"name":`, http.StatusBadRequest},
		{"negative amount", http.MethodPost, "/api/bills", `{"name":"X","amount":-5,"date":"2024-01-01","frequency":"Monthly"}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/bills", `{"name":"X","amount":5,"date":"soon","frequency":"Monthly"}`, http.StatusBadRequest},
		{"missing bill", http.MethodGet, "/api/bills/nope", nil, http.StatusNotFound},
		{"delete missing", http.MethodDelete, "/api/bills/nope", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
			errResp := decode[ErrorResponse](t, resp)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

// =============================================================================
// PAY CYCLE AND PROJECTION
// =============================================================================

func TestPayCycle_DefaultsThenSave(t *testing.T) {
	srv := newTestServer(t, "2024-03-10")

	// GIVEN: Nothing stored
	resp := srv.do(t, http.MethodGet, "/api/pay-cycle", nil)
	pc := decode[factory.PayCycleJSON](t, resp)

	// THEN: Defaults are today and Fortnightly
	assert.Equal(t, "2024-03-10", pc.Start)
	assert.Equal(t, "Fortnightly", pc.Frequency)

	// WHEN: Saving an unsupported frequency
	resp = srv.do(t, http.MethodPut, "/api/pay-cycle", `{"start":"2024-01-01","frequency":"Weekly","income":100}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// WHEN: Saving a valid one
	resp = srv.do(t, http.MethodPut, "/api/pay-cycle", `{"start":"2024-01-01","frequency":"Monthly","income":3000}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/pay-cycle", nil)
	pc = decode[factory.PayCycleJSON](t, resp)
	assert.Equal(t, "Monthly", pc.Frequency)
	assert.Equal(t, "3000.00", pc.Income.String())
}

func TestCycles_ProjectStoredBills(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	// GIVEN: Monthly pay from Jan 1 and rent on the 31st
	srv.do(t, http.MethodPut, "/api/pay-cycle", `{"start":"2024-01-01","frequency":"Monthly","income":3000}`)
	srv.do(t, http.MethodPost, "/api/bills", `{"name":"Rent","amount":1200,"date":"2024-01-31","frequency":"Monthly","group":"Housing"}`)

	// WHEN: Projecting three cycles
	resp := srv.do(t, http.MethodGet, "/api/cycles?count=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	proj := decode[factory.ProjectionJSON](t, resp)

	// THEN: Rent clamps to the end of February
	require.Len(t, proj.Cycles, 3)
	dates := []string{}
	for _, c := range proj.Cycles {
		require.Len(t, c.Bills, 1)
		dates = append(dates, c.Bills[0].Date)
	}
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31"}, dates)
	assert.Equal(t, 31, proj.Cycles[1].Bills[0].OriginalDay)
	assert.Equal(t, "1800.00", proj.Cycles[1].Balance.String())
	assert.Empty(t, proj.Issues)
}

func TestCycles_InvalidCount(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	for _, q := range []string{"0", "-1", "abc", "1000"} {
		resp := srv.do(t, http.MethodGet, "/api/cycles?count="+q, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestCycles_PreviewRejectsCountOutOfRange(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	for _, count := range []string{"-1", "521", "4000000000000"} {
		// GIVEN: A preview asking for an out-of-range number of cycles
		body := `{
			"payCycle": {"start": "2024-01-01", "frequency": "Monthly", "income": 1000},
			"count": ` + count + `,
			"bills": [{"name": "Rent", "amount": 500, "date": "2024-01-01", "frequency": "Monthly", "group": "Housing"}]
		}`

		// WHEN: Previewing
		resp := srv.do(t, http.MethodPost, "/api/cycles/preview", body)

		// THEN: The request is refused before projecting
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, count)
	}

	// AND: The upper bound itself is accepted
	body := `{"payCycle": {"start": "2024-01-01", "frequency": "Monthly", "income": 1000}, "count": 520, "bills": []}`
	resp := srv.do(t, http.MethodPost, "/api/cycles/preview", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[factory.ProjectionJSON](t, resp).Cycles, 520)
}

func TestCycles_PreviewReportsIssues(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	// GIVEN: A posted list with one unknown frequency
	body := `{
		"payCycle": {"start": "2024-01-01", "frequency": "Fortnightly", "income": 1500},
		"count": 2,
		"bills": [
			{"name": "Gym", "amount": 20, "date": "2024-01-03", "frequency": "Fortnightly"},
			{"name": "Mystery", "amount": 5, "date": "2024-01-05", "frequency": "Quarterly"}
		]
	}`

	// WHEN: Previewing
	resp := srv.do(t, http.MethodPost, "/api/cycles/preview", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	proj := decode[factory.ProjectionJSON](t, resp)

	// THEN: Mystery shows on its anchor, then stops and is reported once
	require.Len(t, proj.Cycles, 2)
	assert.Len(t, proj.Cycles[0].Bills, 2)
	require.Len(t, proj.Cycles[1].Bills, 1)
	assert.Equal(t, "Gym", proj.Cycles[1].Bills[0].Name)
	assert.Equal(t, "2024-01-17", proj.Cycles[1].Bills[0].Date)
	require.Len(t, proj.Issues, 1)
	assert.Equal(t, "Mystery", proj.Issues[0].BillName)

	resp = srv.do(t, http.MethodGet, "/api/bills", nil)
	assert.Empty(t, decode[[]factory.BillJSON](t, resp))
}

func TestRollover_MovesStart(t *testing.T) {
	srv := newTestServer(t, "2024-02-20")

	// GIVEN: A fortnightly cycle that started on Jan 1
	srv.do(t, http.MethodPut, "/api/pay-cycle", `{"start":"2024-01-01","frequency":"Fortnightly","income":1500}`)

	// WHEN: Triggering rollover
	resp := srv.do(t, http.MethodPost, "/api/admin/rollover", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[RolloverResponse](t, resp)

	// THEN: Start is the cycle containing today
	assert.True(t, result.Moved)
	assert.Equal(t, "2024-02-12", result.PayCycle.Start)

	// WHEN: Triggering again
	resp = srv.do(t, http.MethodPost, "/api/admin/rollover", nil)
	assert.False(t, decode[RolloverResponse](t, resp).Moved)
}

// =============================================================================
// INTEREST-FREE
// =============================================================================

func TestPeriods_Lifecycle(t *testing.T) {
	srv := newTestServer(t, "2025-01-11")

	// GIVEN: A period created without a day count
	resp := srv.do(t, http.MethodPost, "/api/periods", PeriodRequest{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	view := decode[factory.PeriodViewJSON](t, resp)

	// THEN: Defaults apply
	assert.Equal(t, 55, view.InterestFreePeriodDays)
	assert.Equal(t, "2025-02-24", view.InterestFreeEndDate)
	assert.Equal(t, 45, view.RemainingDays)
	assert.Equal(t, "Active", view.Status)
	id := string(view.ID)

	// WHEN: Adding an expense and a repayment without description
	resp = srv.do(t, http.MethodPost, "/api/periods/"+id+"/transactions", `{"date":"2025-01-05","description":"TV","amount":"500","type":"expense"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = srv.do(t, http.MethodPost, "/api/periods/"+id+"/transactions", `{"date":"2025-01-10","amount":200,"type":"repayment"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	repay := decode[factory.TransactionJSON](t, resp)
	assert.Equal(t, "Payment", repay.Description)

	// THEN: Totals reflect both
	resp = srv.do(t, http.MethodGet, "/api/periods/"+id, nil)
	view = decode[factory.PeriodViewJSON](t, resp)
	assert.Equal(t, "300.00", view.TotalOwing.String())
	assert.Len(t, view.Transactions, 2)

	// WHEN: Deleting the repayment and then the period
	resp = srv.do(t, http.MethodDelete, "/api/periods/"+id+"/transactions/"+string(repay.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = srv.do(t, http.MethodDelete, "/api/periods/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/periods/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPeriods_Validation(t *testing.T) {
	srv := newTestServer(t, "2025-01-11")

	// GIVEN: Reversed dates
	resp := srv.do(t, http.MethodPost, "/api/periods", PeriodRequest{StartDate: "2025-02-01", EndDate: "2025-01-01"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// GIVEN: A valid period
	resp = srv.do(t, http.MethodPost, "/api/periods", PeriodRequest{StartDate: "2025-01-01", EndDate: "2025-01-31"})
	id := string(decode[factory.PeriodViewJSON](t, resp).ID)

	// WHEN: Adding a transaction outside it
	resp = srv.do(t, http.MethodPost, "/api/periods/"+id+"/transactions", `{"date":"2025-02-01","amount":10,"type":"expense"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// WHEN: Using an unknown type
	resp = srv.do(t, http.MethodPost, "/api/periods/"+id+"/transactions", `{"date":"2025-01-02","amount":10,"type":"refund"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// WHEN: Targeting a missing period
	resp = srv.do(t, http.MethodPost, "/api/periods/nope/transactions", `{"date":"2025-01-02","amount":10,"type":"expense"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// TRANSFER
// =============================================================================

func TestExport_SetsFilename(t *testing.T) {
	srv := newTestServer(t, "2024-05-06")

	tests := map[string]string{
		"":              "finance_tracker_all_2024-05-06.json",
		"interest-free": "interest_free_tracker_2024-05-06.json",
		"bill-planner":  "bill_planner_2024-05-06.json",
	}
	for scope, want := range tests {
		resp := srv.do(t, http.MethodGet, "/api/export?type="+scope, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), want)
	}

	resp := srv.do(t, http.MethodGet, "/api/export?type=everything", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := newTestServer(t, "2024-01-01")

	// GIVEN: Data in one server
	src.do(t, http.MethodPut, "/api/pay-cycle", `{"start":"2024-01-01","frequency":"Monthly","income":3000}`)
	src.do(t, http.MethodPost, "/api/bills", `{"name":"Rent","amount":1200,"date":"2024-01-31","frequency":"Monthly","group":"Housing"}`)
	src.do(t, http.MethodPost, "/api/periods", PeriodRequest{StartDate: "2024-01-01", EndDate: "2024-01-31"})

	resp := src.do(t, http.MethodGet, "/api/export?type=both", nil)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// WHEN: Importing the file into another server
	dst := newTestServer(t, "2024-01-01")
	resp = dst.do(t, http.MethodPost, "/api/import?type=both", string(data))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[factory.ImportResult](t, resp)

	// THEN: Everything arrives
	assert.Equal(t, 1, result.Bills)
	assert.Equal(t, 1, result.BillingPeriods)
	assert.True(t, result.PayCycleUpdated)

	resp = dst.do(t, http.MethodGet, "/api/bills", nil)
	bills := decode[[]factory.BillJSON](t, resp)
	require.Len(t, bills, 1)
	assert.Equal(t, "Rent", bills[0].Name)

	resp = dst.do(t, http.MethodGet, "/api/pay-cycle", nil)
	assert.Equal(t, "Monthly", decode[factory.PayCycleJSON](t, resp).Frequency)
}

func TestImport_Rejects(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	// Not JSON
	resp := srv.do(t, http.MethodPost, "/api/import", "not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Interest-free scope but the file only has planner data
	resp = srv.do(t, http.MethodPost, "/api/import?type=interest-free", `{"billPlannerData":{"billData":"[]"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")
	resp := srv.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[HealthResponse](t, resp).Status)
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t, "2024-01-01")

	// WHEN: Requesting the root
	resp := srv.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// THEN: The endpoint index is served
	assert.Contains(t, string(body), `href="/api/bills"`)
	assert.NotContains(t, string(body), "npm")

	// AND: Unknown paths are not routed to it
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/app/settings", nil).StatusCode)
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestScenarios_LoadEach(t *testing.T) {
	for _, s := range scenarios {
		t.Run(s.ID, func(t *testing.T) {
			srv := newTestServer(t, "2024-05-15")

			// WHEN: Loading the scenario
			resp := srv.do(t, http.MethodPost, "/api/scenarios/load", map[string]string{"scenario_id": s.ID})
			require.Equal(t, http.StatusOK, resp.StatusCode)

			// THEN: The projection has no issues
			resp = srv.do(t, http.MethodGet, "/api/cycles", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			proj := decode[factory.ProjectionJSON](t, resp)
			assert.Len(t, proj.Cycles, 3)
			assert.Empty(t, proj.Issues)
		})
	}
}

func TestScenarios_CardJuggler(t *testing.T) {
	srv := newTestServer(t, "2024-05-15")

	// GIVEN: Existing data that the scenario replaces
	srv.do(t, http.MethodPost, "/api/periods", PeriodRequest{StartDate: "2023-01-01", EndDate: "2023-01-31"})

	// WHEN: Loading the card scenario
	resp := srv.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"card-juggler"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, decode[factory.ImportResult](t, resp).BillingPeriods)

	// THEN: Periods are listed newest first and the current one is active
	resp = srv.do(t, http.MethodGet, "/api/periods", nil)
	views := decode[[]factory.PeriodViewJSON](t, resp)
	require.Len(t, views, 3)
	assert.Equal(t, "2024-05-01", views[0].StartDate)
	assert.Equal(t, "Active", views[0].Status)
	assert.Equal(t, "2111.40", views[0].TotalOwing.String())
	assert.Equal(t, "Payment", views[1].Transactions[1].Description)
}

func TestScenarios_Unknown(t *testing.T) {
	srv := newTestServer(t, "2024-05-15")
	resp := srv.do(t, http.MethodPost, "/api/scenarios/load", `{"scenario_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/scenarios", nil)
	assert.Len(t, decode[[]ScenarioDTO](t, resp), len(scenarios))
}
