package fakeapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/inventory"
	"github.com/angelmondragon/foodbank-client/internal/reports"
	"github.com/angelmondragon/foodbank-client/internal/requests"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
)

// reportScope is the parsed report filter set. Dates bound request_date inclusively.
type reportScope struct {
	start, end string
	foodbankID string
}

func parseReportScope(r *http.Request) (reportScope, error) {
	q := r.URL.Query()
	scope := reportScope{
		start:      strings.TrimSpace(q.Get("startDate")),
		end:        strings.TrimSpace(q.Get("endDate")),
		foodbankID: strings.TrimSpace(q.Get("foodbank_id")),
	}
	for _, v := range []string{scope.start, scope.end} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return reportScope{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Dates must be YYYY-MM-DD")
		}
	}
	return scope, nil
}

func (sc reportScope) includes(t time.Time) bool {
	day := t.UTC().Format(dateLayout)
	return (sc.start == "" || day >= sc.start) && (sc.end == "" || day <= sc.end)
}

func (s *Server) scopedInventory(sc reportScope) []inventory.Item {
	out := []inventory.Item{}
	for _, item := range s.store.inventorySnapshot() {
		if sc.foodbankID == "" || item.FoodbankID == sc.foodbankID {
			out = append(out, item)
		}
	}
	return out
}

func (s *Server) scopedRequests(sc reportScope) []requests.FoodRequest {
	out := []requests.FoodRequest{}
	for _, req := range s.store.allRequests() {
		if sc.includes(req.RequestDate) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.Before(out[j].RequestDate) })
	return out
}

func (s *Server) handleDashboardReport(w http.ResponseWriter, r *http.Request) {
	sc, err := parseReportScope(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	items := s.scopedInventory(sc)
	reqs := s.scopedRequests(sc)
	metrics := requestMetrics(reqs)
	today := s.now().UTC().Format(dateLayout)

	out := reports.Dashboard{
		QuickStats: reports.QuickStats{
			TotalInventoryItems: len(items),
			PendingRequests:     metrics.PendingRequests,
		},
		RequestMetrics: metrics,
		CategoryData:   categoryCounts(items, func(inventory.Item) int { return 1 }),
	}
	for _, item := range items {
		if lowStock(item) {
			out.QuickStats.LowStockCount++
		}
	}
	for _, req := range reqs {
		if req.RequestDate.UTC().Format(dateLayout) == today {
			out.QuickStats.TodayRequests++
		}
	}
	writeSuccess(w, out)
}

func (s *Server) handleInventoryReport(w http.ResponseWriter, r *http.Request) {
	sc, err := parseReportScope(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccess(w, s.inventoryReport(sc))
}

func (s *Server) inventoryReport(sc reportScope) reports.InventoryReport {
	items := s.scopedInventory(sc)
	now := s.now()
	out := reports.InventoryReport{ByCategory: categoryCounts(items, func(inventory.Item) int { return 1 })}
	for _, item := range items {
		out.TotalItems++
		out.TotalQuantity += item.Quantity
		if lowStock(item) {
			out.LowStockCount++
		}
		if expiresWithin(item, now, inventory.DefaultExpiringDays) {
			out.ExpiringSoonCount++
		}
	}
	return out
}

func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	sc, err := parseReportScope(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccess(w, s.requestReport(sc))
}

func (s *Server) requestReport(sc reportScope) reports.RequestReport {
	reqs := s.scopedRequests(sc)
	out := reports.RequestReport{RequestMetrics: requestMetrics(reqs), ByStatus: map[string]int{}}
	for _, req := range reqs {
		out.ByStatus[string(req.Status)]++
	}
	return out
}

// handleDonationReport counts stocked inventory. The fake backend has no separate
// donation records.
func (s *Server) handleDonationReport(w http.ResponseWriter, r *http.Request) {
	sc, err := parseReportScope(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccess(w, s.donationReport(sc))
}

func (s *Server) donationReport(sc reportScope) reports.DonationReport {
	items := s.scopedInventory(sc)
	out := reports.DonationReport{ByCategory: categoryCounts(items, func(item inventory.Item) int { return item.Quantity })}
	for _, item := range items {
		out.TotalDonations++
		out.TotalQuantity += item.Quantity
	}
	return out
}

func (s *Server) handleUserReport(w http.ResponseWriter, r *http.Request) {
	sc, err := parseReportScope(r)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeSuccess(w, s.userReport(sc))
}

func (s *Server) userReport(sc reportScope) reports.UserReport {
	out := reports.UserReport{ByRole: map[string]int{}}
	for _, u := range s.store.usersSnapshot() {
		if u.CreatedAt != nil && !sc.includes(*u.CreatedAt) {
			continue
		}
		out.TotalUsers++
		out.ByRole[u.Role]++
		if u.IsVerified {
			out.VerifiedUsers++
		}
	}
	return out
}

// handleExportReport writes the requested report as a CSV attachment.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sc, err := parseReportScope(r)
	if err != nil {
		writeError(ctx, s.logg, w, err)
		return
	}
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("reportType")))

	var rows [][]string
	switch kind {
	case reports.TypeInventory:
		rows = [][]string{{"id", "item_name", "category", "quantity", "unit", "low_stock"}}
		for _, item := range s.scopedInventory(sc) {
			rows = append(rows, []string{item.ID, item.ItemName, item.Category,
				strconv.Itoa(item.Quantity), item.Unit, strconv.FormatBool(lowStock(item))})
		}
	case reports.TypeRequests:
		rows = [][]string{{"id", "status", "items", "pickup_date", "request_date"}}
		for _, req := range s.scopedRequests(sc) {
			rows = append(rows, []string{req.ID, string(req.Status), strconv.Itoa(len(req.Items)),
				req.PickupDate, req.RequestDate.UTC().Format(time.RFC3339)})
		}
	case reports.TypeDonations:
		rows = [][]string{{"category", "count", "percentage"}}
		for _, c := range s.donationReport(sc).ByCategory {
			rows = append(rows, []string{c.Category, strconv.Itoa(c.Count), strconv.Itoa(c.Percentage)})
		}
	case reports.TypeUsers:
		rows = [][]string{{"role", "count"}}
		byRole := s.userReport(sc).ByRole
		roles := make([]string, 0, len(byRole))
		for role := range byRole {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		for _, role := range roles {
			rows = append(rows, []string{role, strconv.Itoa(byRole[role])})
		}
	default:
		writeError(ctx, s.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Unknown report type"))
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		writeError(ctx, s.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing csv"))
		return
	}
	name := fmt.Sprintf("%s_report_%s.csv", kind, s.now().UTC().Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// requestMetrics treats cancelled requests as rejected. Rates are whole percentages.
func requestMetrics(reqs []requests.FoodRequest) reports.RequestMetrics {
	var m reports.RequestMetrics
	approved := 0
	for _, req := range reqs {
		m.TotalRequests++
		switch req.Status {
		case requests.StatusPending:
			m.PendingRequests++
		case requests.StatusApproved:
			approved++
		case requests.StatusFulfilled:
			m.FulfilledRequests++
			approved++
		case requests.StatusCancelled:
			m.RejectedRequests++
		}
	}
	m.FulfillmentRate = percent(m.FulfilledRequests, m.TotalRequests)
	m.ApprovalRate = percent(approved, m.TotalRequests)
	return m
}

// categoryCounts groups items by category, largest first.
func categoryCounts(items []inventory.Item, weight func(inventory.Item) int) []reports.CategoryCount {
	counts := map[string]int{}
	total := 0
	for _, item := range items {
		n := weight(item)
		counts[item.Category] += n
		total += n
	}
	out := make([]reports.CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, reports.CategoryCount{Category: category, Count: n, Percentage: percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
