package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/reports"
	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/internal/volunteers"
	"github.com/stretchr/testify/require"
)

func adminToken(t *testing.T, srv *Server) string {
	t.Helper()
	admin, err := srv.Hooks().SeedUser("Root", "root@example.com", "secret1", "admin")
	require.NoError(t, err)
	token, err := srv.Hooks().IssueToken(admin.ID)
	require.NoError(t, err)
	return token
}

func createShift(t *testing.T, ts *httptest.Server, token string, capacity int) shifts.Shift {
	t.Helper()
	status, env := call(t, ts, http.MethodPost, "/api/shifts", token, shifts.Input{
		FoodbankID: "fb-1",
		Title:      "Food Sorting",
		ShiftDate:  time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
		StartTime:  "09:00",
		EndTime:    "12:30",
		Capacity:   capacity,
		Status:     "published",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var shift shifts.Shift
	require.NoError(t, json.Unmarshal(env.Data, &shift))
	return shift
}

func register(t *testing.T, ts *httptest.Server, token string) volunteers.Volunteer {
	t.Helper()
	reg := volunteers.SignupForm{FoodbankID: "fb-1", Skills: []string{"Sorting"}, Availability: []string{"Monday Morning"}}.Registration()
	status, env := call(t, ts, http.MethodPost, "/api/volunteers", token, reg)
	require.Equal(t, http.StatusCreated, status, env.Message)
	var v volunteers.Volunteer
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestShiftWritesRequireAdmin(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	status, env := call(t, ts, http.MethodPost, "/api/shifts", token, shifts.Input{
		FoodbankID: "fb-1", Title: "Sorting", ShiftDate: "2030-01-01", StartTime: "09:00", EndTime: "10:00", Capacity: 1,
	})
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "Admin access required", env.Message)

	shift := createShift(t, ts, adminToken(t, srv), 4)
	require.Equal(t, 3.5, shift.DurationHours)

	status, _ = call(t, ts, http.MethodGet, "/api/shifts/"+shift.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestShiftListings(t *testing.T) {
	srv, ts := testServer(t)
	admin := adminToken(t, srv)
	open := createShift(t, ts, admin, 2)
	draft := createShift(t, ts, admin, 2)
	status, _ := call(t, ts, http.MethodPatch, "/api/shifts/"+draft.ID+"/status", admin, map[string]string{"status": "draft"})
	require.Equal(t, http.StatusOK, status)

	decode := func(env wireEnvelope) []shifts.Shift {
		var out []shifts.Shift
		require.NoError(t, json.Unmarshal(env.Data, &out))
		return out
	}

	_, env := call(t, ts, http.MethodGet, "/api/shifts/upcoming/foodbank/fb-1", admin, nil)
	require.Len(t, decode(env), 2)

	_, env = call(t, ts, http.MethodGet, "/api/shifts/available/foodbank/fb-1", admin, nil)
	avail := decode(env)
	require.Len(t, avail, 1)
	require.Equal(t, open.ID, avail[0].ID)

	_, env = call(t, ts, http.MethodGet, "/api/shifts/foodbank/fb-1?status=draft", admin, nil)
	require.Len(t, decode(env), 1)

	status, _ = call(t, ts, http.MethodGet, "/api/shifts/foodbank/fb-1/date-range?start_date=2030-01-01", admin, nil)
	require.Equal(t, http.StatusBadRequest, status)

	day := open.ShiftDate.Format("2006-01-02")
	_, env = call(t, ts, http.MethodGet, "/api/shifts/foodbank/fb-1/date-range?start_date="+day+"&end_date="+day, admin, nil)
	require.Len(t, decode(env), 2)
}

func TestVolunteerRegistrationIsPendingAndUnique(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	v := register(t, ts, token)
	require.Equal(t, "pending", v.Status)
	require.NotEmpty(t, v.UserID)

	reg := volunteers.Registration{FoodbankID: "fb-1"}
	status, env := call(t, ts, http.MethodPost, "/api/volunteers", token, reg)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Volunteer already registered at this food bank", env.Message)

	status, _ = call(t, ts, http.MethodPatch, "/api/volunteers/"+v.ID+"/status", token, map[string]string{"status": "active"})
	require.Equal(t, http.StatusForbidden, status)
}

func TestAvailableVolunteersNeedActiveStatus(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)
	admin := adminToken(t, srv)
	v := register(t, ts, token)

	path := "/api/volunteers/available?foodbank_id=fb-1&day_of_week=monday&shift_time=morning"
	_, env := call(t, ts, http.MethodGet, path, token, nil)
	require.JSONEq(t, `[]`, string(env.Data))

	status, _ := call(t, ts, http.MethodPatch, "/api/volunteers/"+v.ID+"/status", admin, map[string]string{"status": "active"})
	require.Equal(t, http.StatusOK, status)

	_, env = call(t, ts, http.MethodGet, path, token, nil)
	var out []volunteers.Volunteer
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.Len(t, out, 1)

	_, env = call(t, ts, http.MethodGet, "/api/volunteers/stats/foodbank/fb-1", admin, nil)
	var stats volunteers.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, 1, stats.Active)
	require.Equal(t, 1, stats.BySkill["sorting"])
}

func TestAssignmentLifecycle(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)
	admin := adminToken(t, srv)
	shift := createShift(t, ts, admin, 1)
	v := register(t, ts, token)

	status, env := call(t, ts, http.MethodPost, "/api/volunteer-shifts", token, shifts.AssignmentInput{VolunteerID: v.ID, ShiftID: shift.ID})
	require.Equal(t, http.StatusCreated, status, env.Message)
	var a shifts.Assignment
	require.NoError(t, json.Unmarshal(env.Data, &a))
	require.Equal(t, "assigned", a.Status)
	require.Equal(t, "fb-1", a.FoodbankID)
	require.Equal(t, shift.ShiftDate.Format("2006-01-02"), a.WorkDate)

	status, env = call(t, ts, http.MethodPost, "/api/volunteer-shifts", token, shifts.AssignmentInput{VolunteerID: v.ID, ShiftID: shift.ID})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Shift is full", env.Message)

	status, _ = call(t, ts, http.MethodPatch, "/api/volunteer-shifts/"+a.ID+"/check-out", token, map[string]string{"check_out_time": "12:00"})
	require.Equal(t, http.StatusConflict, status)

	status, _ = call(t, ts, http.MethodPatch, "/api/volunteer-shifts/"+a.ID+"/check-in", token, map[string]string{"check_in_time": "09:15"})
	require.Equal(t, http.StatusOK, status)
	status, env = call(t, ts, http.MethodPatch, "/api/volunteer-shifts/"+a.ID+"/check-out", token, map[string]string{"check_out_time": "12:15"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &a))
	require.Equal(t, 3.0, a.HoursWorked)

	status, _ = call(t, ts, http.MethodPatch, "/api/volunteer-shifts/"+a.ID+"/complete", admin, map[string]any{"feedback": map[string]any{"rating": 5}})
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, ts, http.MethodPatch, "/api/volunteer-shifts/"+a.ID+"/cancel", token, map[string]string{"cancelled_reason": "late"})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "Volunteer shift is already completed", env.Message)

	_, env = call(t, ts, http.MethodGet, "/api/volunteer-shifts/volunteer/"+v.ID+"/hours", token, nil)
	var hours shifts.Hours
	require.NoError(t, json.Unmarshal(env.Data, &hours))
	require.Equal(t, 3.0, hours.TotalHours)
	require.Equal(t, 1, hours.CompletedShifts)

	_, env = call(t, ts, http.MethodGet, "/api/volunteers/"+v.ID, token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.Equal(t, 3.0, v.TotalHours)
}

func TestCancelReleasesSpot(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)
	admin := adminToken(t, srv)
	shift := createShift(t, ts, admin, 1)
	v := register(t, ts, token)

	_, env := call(t, ts, http.MethodPost, "/api/volunteer-shifts", token, shifts.AssignmentInput{VolunteerID: v.ID, ShiftID: shift.ID})
	var a shifts.Assignment
	require.NoError(t, json.Unmarshal(env.Data, &a))

	status, env := call(t, ts, http.MethodPatch, "/api/volunteer-shifts/"+a.ID+"/cancel", token, map[string]string{"cancelled_reason": "sick"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &a))
	require.Equal(t, "cancelled", a.Status)
	require.NotEmpty(t, a.CancelledBy)

	_, env = call(t, ts, http.MethodGet, "/api/shifts/"+shift.ID, token, nil)
	require.NoError(t, json.Unmarshal(env.Data, &shift))
	require.Zero(t, shift.CurrentVolunteers)

	_, env = call(t, ts, http.MethodGet, "/api/volunteer-shifts/user/"+v.UserID, token, nil)
	var mine []shifts.Assignment
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
}

func TestReportsRequireAdmin(t *testing.T) {
	srv, ts := testServer(t)
	token := login(t, srv, ts)

	status, _ := call(t, ts, http.MethodGet, "/api/reports/dashboard", token, nil)
	require.Equal(t, http.StatusForbidden, status)

	admin := adminToken(t, srv)
	status, env := call(t, ts, http.MethodGet, "/api/reports/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var dash reports.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	require.Equal(t, 7, dash.QuickStats.TotalInventoryItems)
	require.Equal(t, 2, dash.QuickStats.LowStockCount)
	require.NotEmpty(t, dash.CategoryData)

	status, env = call(t, ts, http.MethodGet, "/api/reports/users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var users reports.UserReport
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Equal(t, 2, users.TotalUsers)
	require.Equal(t, 1, users.ByRole["admin"])
}

func TestExportReportWritesCSV(t *testing.T) {
	srv, ts := testServer(t)
	admin := adminToken(t, srv)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/reports/export?reportType=inventory", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "inventory_report_")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "id,item_name,category,quantity,unit,low_stock\n")
	require.Contains(t, string(body), "inv-rice,Brown Rice,grains,120,lb,false\n")

	status, env := call(t, ts, http.MethodGet, "/api/reports/export?reportType=payroll", admin, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Unknown report type", env.Message)
}
