// Package reports reads administrative summaries and downloads CSV exports.
package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
	Download(ctx context.Context, req apiclient.Request) (*apiclient.File, *types.Envelope, error)
}

// ServiceParams groups dependencies for the reports service.
type ServiceParams struct {
	Client transport
	Logger *logger.Logger
	Now    func() time.Time
}

// Service reads reports.
type Service interface {
	Dashboard(ctx context.Context, filters Filters) (*Dashboard, error)
	Inventory(ctx context.Context, filters Filters) (*InventoryReport, error)
	Requests(ctx context.Context, filters Filters) (*RequestReport, error)
	Donations(ctx context.Context, filters Filters) (*DonationReport, error)
	Users(ctx context.Context, filters Filters) (*UserReport, error)
	Export(ctx context.Context, reportType string, filters Filters) (*apiclient.File, error)
}

type service struct {
	client transport
	logg   *logger.Logger
	now    func() time.Time
}

// NewService builds a reports service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{client: params.Client, logg: logg, now: now}, nil
}

func (s *service) Dashboard(ctx context.Context, filters Filters) (*Dashboard, error) {
	var out Dashboard
	if err := s.fetch(ctx, "dashboard", filters, &out, "Failed to fetch dashboard"); err != nil {
		return nil, err
	}
	if out.CategoryData == nil {
		out.CategoryData = []CategoryCount{}
	}
	return &out, nil
}

func (s *service) Inventory(ctx context.Context, filters Filters) (*InventoryReport, error) {
	var out InventoryReport
	if err := s.fetch(ctx, TypeInventory, filters, &out, "Failed to fetch inventory report"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Requests(ctx context.Context, filters Filters) (*RequestReport, error) {
	var out RequestReport
	if err := s.fetch(ctx, TypeRequests, filters, &out, "Failed to fetch request report"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Donations(ctx context.Context, filters Filters) (*DonationReport, error) {
	var out DonationReport
	if err := s.fetch(ctx, TypeDonations, filters, &out, "Failed to fetch donation report"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) Users(ctx context.Context, filters Filters) (*UserReport, error) {
	var out UserReport
	if err := s.fetch(ctx, TypeUsers, filters, &out, "Failed to fetch user report"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads a report as CSV. The file is named after the report and today's
// date when the server does not name it.
func (s *service) Export(ctx context.Context, reportType string, filters Filters) (*apiclient.File, error) {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	if err := validate.Var("reportType", reportType, "required,oneof=inventory requests donations users"); err != nil {
		return nil, err
	}
	if err := checkFilters(filters); err != nil {
		return nil, err
	}
	q := filters.query()
	q.Set("reportType", reportType)
	file, env, err := s.client.Download(ctx, apiclient.Request{
		Op:    "reports.export",
		Path:  "/reports/export",
		Query: q,
		Auth:  true,
	})
	if err != nil {
		return nil, apiclient.Failure(env, err, "Failed to export report")
	}
	if file.Name == "" {
		file.Name = fmt.Sprintf("%s_report_%s.csv", reportType, s.now().Format("2006-01-02"))
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"report": reportType, "bytes": len(file.Data)}), "reports.export.downloaded")
	return file, nil
}

func (s *service) fetch(ctx context.Context, name string, filters Filters, out any, fallback string) error {
	if err := checkFilters(filters); err != nil {
		return err
	}
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:    "reports." + name,
		Path:  "/reports/" + name,
		Query: filters.query(),
		Auth:  true,
	}, out)
	if err != nil {
		return apiclient.Failure(env, err, fallback)
	}
	return nil
}

func checkFilters(f Filters) error {
	if err := validate.Struct(f); err != nil {
		return err
	}
	if f.StartDate != "" && f.EndDate != "" && f.EndDate < f.StartDate {
		return pkgerrors.New(pkgerrors.CodeValidation, "end date must not be before start date")
	}
	return nil
}
