package reports

import (
	"net/url"
	"strings"
)

// Report types accepted by Export.
const (
	TypeInventory = "inventory"
	TypeRequests  = "requests"
	TypeDonations = "donations"
	TypeUsers     = "users"
)

// Filters narrow every report. Dates are YYYY-MM-DD; zero values are omitted.
type Filters struct {
	StartDate  string `validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `validate:"omitempty,datetime=2006-01-02"`
	FoodbankID string
}

func (f Filters) query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if v := strings.TrimSpace(value); v != "" {
			q.Set(key, v)
		}
	}
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	set("foodbank_id", f.FoodbankID)
	return q
}

// Dashboard is the administrative overview.
type Dashboard struct {
	QuickStats     QuickStats      `json:"quickStats"`
	RequestMetrics RequestMetrics  `json:"requestMetrics"`
	CategoryData   []CategoryCount `json:"categoryData"`
}

// QuickStats are the headline counters on the dashboard.
type QuickStats struct {
	TotalInventoryItems int `json:"totalInventoryItems"`
	LowStockCount       int `json:"lowStockCount"`
	TodayRequests       int `json:"todayRequests"`
	TodayDonations      int `json:"todayDonations"`
	PendingRequests     int `json:"pendingRequests"`
}

// RequestMetrics summarize food request outcomes. Rates are whole percentages.
type RequestMetrics struct {
	TotalRequests     int `json:"totalRequests"`
	FulfilledRequests int `json:"fulfilledRequests"`
	PendingRequests   int `json:"pendingRequests"`
	RejectedRequests  int `json:"rejectedRequests"`
	FulfillmentRate   int `json:"fulfillmentRate"`
	ApprovalRate      int `json:"approvalRate"`
}

// CategoryCount is one slice of a category breakdown.
type CategoryCount struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// InventoryReport covers stock levels.
type InventoryReport struct {
	TotalItems        int             `json:"totalItems"`
	TotalQuantity     int             `json:"totalQuantity"`
	LowStockCount     int             `json:"lowStockCount"`
	ExpiringSoonCount int             `json:"expiringSoonCount"`
	ByCategory        []CategoryCount `json:"byCategory"`
}

// RequestReport covers food requests.
type RequestReport struct {
	RequestMetrics
	ByStatus map[string]int `json:"byStatus"`
}

// DonationReport covers incoming stock.
type DonationReport struct {
	TotalDonations int             `json:"totalDonations"`
	TotalQuantity  int             `json:"totalQuantity"`
	ByCategory     []CategoryCount `json:"byCategory"`
}

// UserReport covers accounts.
type UserReport struct {
	TotalUsers    int            `json:"totalUsers"`
	VerifiedUsers int            `json:"verifiedUsers"`
	ByRole        map[string]int `json:"byRole"`
}
