package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	requests []apiclient.Request
	data     any
	file     *apiclient.File
	message  string
	err      error
}

func (s *stubTransport) DoInto(_ context.Context, req apiclient.Request, out any) (*types.Envelope, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return &types.Envelope{Message: s.message}, s.err
	}
	env := &types.Envelope{Success: true}
	if s.data != nil {
		raw, _ := json.Marshal(s.data)
		env.Data = raw
		if out != nil {
			_ = json.Unmarshal(raw, out)
		}
	}
	return env, nil
}

func (s *stubTransport) Download(_ context.Context, req apiclient.Request) (*apiclient.File, *types.Envelope, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, &types.Envelope{Message: s.message}, s.err
	}
	return s.file, nil, nil
}

func newTestService(t *testing.T, tr *stubTransport) Service {
	t.Helper()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{Client: tr, Now: func() time.Time { return now }})
	require.NoError(t, err)
	return svc
}

func TestDashboardDecodesSections(t *testing.T) {
	tr := &stubTransport{data: map[string]any{
		"quickStats":     map[string]any{"totalInventoryItems": 12, "lowStockCount": 2, "pendingRequests": 3},
		"requestMetrics": map[string]any{"totalRequests": 10, "fulfilledRequests": 6, "fulfillmentRate": 60},
	}}
	out, err := newTestService(t, tr).Dashboard(context.Background(), Filters{})
	require.NoError(t, err)
	require.Equal(t, 12, out.QuickStats.TotalInventoryItems)
	require.Equal(t, 60, out.RequestMetrics.FulfillmentRate)
	require.NotNil(t, out.CategoryData)
	require.Equal(t, "/reports/dashboard", tr.requests[0].Path)
	require.Empty(t, tr.requests[0].Query)
}

func TestFiltersBecomeQuery(t *testing.T) {
	tr := &stubTransport{data: map[string]any{"totalRequests": 4, "byStatus": map[string]int{"pending": 4}}}
	out, err := newTestService(t, tr).Requests(context.Background(), Filters{StartDate: "2026-10-01", EndDate: "2026-10-31", FoodbankID: "fb-1"})
	require.NoError(t, err)
	require.Equal(t, 4, out.TotalRequests)
	require.Equal(t, 4, out.ByStatus["pending"])

	q := tr.requests[0].Query
	require.Equal(t, "2026-10-01", q.Get("startDate"))
	require.Equal(t, "2026-10-31", q.Get("endDate"))
	require.Equal(t, "fb-1", q.Get("foodbank_id"))
}

func TestFiltersRejectBadDates(t *testing.T) {
	tr := &stubTransport{}
	svc := newTestService(t, tr)

	_, err := svc.Inventory(context.Background(), Filters{StartDate: "10/01/2026"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	_, err = svc.Users(context.Background(), Filters{StartDate: "2026-10-31", EndDate: "2026-10-01"})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Empty(t, tr.requests)
}

func TestReportRemoteFailureKeepsServerMessage(t *testing.T) {
	tr := &stubTransport{
		err:     pkgerrors.New(pkgerrors.CodeRemote, "Forbidden").WithStatus(http.StatusForbidden),
		message: "Admin access required",
	}
	_, err := newTestService(t, tr).Donations(context.Background(), Filters{})
	require.Equal(t, "Admin access required", pkgerrors.UserMessage(err, ""))
	require.Equal(t, http.StatusForbidden, pkgerrors.StatusOf(err))
}

func TestExportNamesUnnamedFile(t *testing.T) {
	tr := &stubTransport{file: &apiclient.File{ContentType: "text/csv", Data: []byte("category,count\n")}}
	file, err := newTestService(t, tr).Export(context.Background(), " Inventory ", Filters{FoodbankID: "fb-1"})
	require.NoError(t, err)
	require.Equal(t, "inventory_report_2026-10-18.csv", file.Name)

	req := tr.requests[0]
	require.Equal(t, "/reports/export", req.Path)
	require.Equal(t, "inventory", req.Query.Get("reportType"))
	require.Equal(t, "fb-1", req.Query.Get("foodbank_id"))
}

func TestExportKeepsServerFilename(t *testing.T) {
	tr := &stubTransport{file: &apiclient.File{Name: "users.csv"}}
	file, err := newTestService(t, tr).Export(context.Background(), "users", Filters{})
	require.NoError(t, err)
	require.Equal(t, "users.csv", file.Name)
}

func TestExportRejectsUnknownType(t *testing.T) {
	tr := &stubTransport{}
	_, err := newTestService(t, tr).Export(context.Background(), "payroll", Filters{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	require.Empty(t, tr.requests)
}

func TestExportNetworkFailureUsesFallback(t *testing.T) {
	tr := &stubTransport{err: pkgerrors.New(pkgerrors.CodeNetwork, "unable to reach the server")}
	_, err := newTestService(t, tr).Export(context.Background(), "donations", Filters{})
	require.True(t, pkgerrors.Is(err, pkgerrors.CodeNetwork))
	require.Equal(t, "Failed to export report", pkgerrors.As(err).Message())
}
