// Package inventory browses the food bank's stock.
package inventory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

// DefaultExpiringDays is the look-ahead window used when none is given.
const DefaultExpiringDays = 7

// DefaultDietaryCategories is served when the API cannot provide the list.
var DefaultDietaryCategories = []string{"vegetarian", "vegan", "gluten_free", "dairy_free", "nut_free", "low_sodium"}

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

// ServiceParams groups dependencies for the inventory service.
type ServiceParams struct {
	Client transport
	Logger *logger.Logger
}

// Service reads inventory listings and metadata.
type Service interface {
	List(ctx context.Context, filters Filters) (*Page, error)
	Get(ctx context.Context, id string) (*Item, error)
	LowStock(ctx context.Context) ([]Item, error)
	Expiring(ctx context.Context, days int) ([]Item, error)
	Stats(ctx context.Context) (*Stats, error)
	Categories(ctx context.Context) []string
	DietaryCategories(ctx context.Context) []string
}

type service struct {
	client transport
	logg   *logger.Logger
}

// NewService builds an inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{client: params.Client, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters Filters) (*Page, error) {
	if err := validate.Var("limit", filters.Limit, "gte=0,max=100"); err != nil {
		return nil, err
	}
	var items []Item
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:    "inventory.list",
		Path:  "/inventory",
		Query: filters.query(),
		Auth:  true,
	}, &items)
	if err != nil {
		return nil, apiclient.Failure(env, err, "Failed to fetch inventory")
	}

	page := &Page{Items: items}
	if page.Items == nil {
		page.Items = []Item{}
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id string) (*Item, error) {
	id = strings.TrimSpace(id)
	if err := validate.Var("id", id, "required"); err != nil {
		return nil, err
	}
	var item Item
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:   "inventory.get",
		Path: "/inventory/" + url.PathEscape(id),
		Auth: true,
	}, &item)
	if err != nil {
		return nil, apiclient.Failure(env, err, "Failed to fetch inventory item")
	}
	return &item, nil
}

func (s *service) LowStock(ctx context.Context) ([]Item, error) {
	return s.listAt(ctx, "inventory.low_stock", "/inventory/alerts/low-stock", nil, "Failed to fetch low stock alerts")
}

// Expiring lists items expiring within days. Non-positive days use DefaultExpiringDays.
func (s *service) Expiring(ctx context.Context, days int) ([]Item, error) {
	if days <= 0 {
		days = DefaultExpiringDays
	}
	q := url.Values{"days": {strconv.Itoa(days)}}
	return s.listAt(ctx, "inventory.expiring", "/inventory/alerts/expiring", q, "Failed to fetch expiring alerts")
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:   "inventory.stats",
		Path: "/inventory/stats",
		Auth: true,
	}, &stats)
	if err != nil {
		return nil, apiclient.Failure(env, err, "Failed to fetch inventory statistics")
	}
	return &stats, nil
}

// Categories never fails; an unreachable API yields an empty list.
func (s *service) Categories(ctx context.Context) []string {
	out, err := s.stringsAt(ctx, "inventory.categories", "/inventory/meta/categories")
	if err != nil {
		return []string{}
	}
	return out
}

// DietaryCategories never fails; an unreachable API yields DefaultDietaryCategories.
func (s *service) DietaryCategories(ctx context.Context) []string {
	out, err := s.stringsAt(ctx, "inventory.dietary_categories", "/inventory/meta/dietary-categories")
	if err != nil || len(out) == 0 {
		return append([]string(nil), DefaultDietaryCategories...)
	}
	return out
}

func (s *service) listAt(ctx context.Context, op, path string, q url.Values, fallback string) ([]Item, error) {
	var items []Item
	env, err := s.client.DoInto(ctx, apiclient.Request{Op: op, Path: path, Query: q, Auth: true}, &items)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (s *service) stringsAt(ctx context.Context, op, path string) ([]string, error) {
	var out []string
	if _, err := s.client.DoInto(ctx, apiclient.Request{Op: op, Path: path, Auth: true}, &out); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), op+".fallback")
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
