// Package volunteers registers volunteers and reads a food bank's roster.
package volunteers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

// ServiceParams groups dependencies for the volunteer service.
type ServiceParams struct {
	Client transport
	Logger *logger.Logger
}

// Service manages volunteer registrations.
type Service interface {
	Create(ctx context.Context, reg Registration) (*Volunteer, error)
	List(ctx context.Context, foodbankID string, filters ListFilters) ([]Volunteer, error)
	Get(ctx context.Context, id string) (*Volunteer, error)
	Update(ctx context.Context, id string, reg Registration) (*Volunteer, error)
	SetStatus(ctx context.Context, id string, status enums.VolunteerStatus) (*Volunteer, error)
	Delete(ctx context.Context, id string) error
	Available(ctx context.Context, foodbankID, dayOfWeek, shiftTime string) ([]Volunteer, error)
	Stats(ctx context.Context, foodbankID string) (*Stats, error)
}

type service struct {
	client transport
	logg   *logger.Logger
}

// NewService builds a volunteer service.
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

func (s *service) Create(ctx context.Context, reg Registration) (*Volunteer, error) {
	if err := validate.Struct(reg); err != nil {
		return nil, err
	}
	return s.volunteerAt(ctx, apiclient.Request{
		Op:     "volunteers.create",
		Method: http.MethodPost,
		Path:   "/volunteers",
		Body:   reg,
		Auth:   true,
	}, "Failed to register volunteer")
}

func (s *service) List(ctx context.Context, foodbankID string, filters ListFilters) ([]Volunteer, error) {
	foodbankID, err := required("foodbank_id", foodbankID)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	if v := strings.TrimSpace(filters.Status); v != "" {
		q.Set("status", v)
	}
	if v := strings.TrimSpace(filters.Skill); v != "" {
		q.Set("skill", v)
	}
	return s.listAt(ctx, "volunteers.list", "/volunteers/foodbank/"+url.PathEscape(foodbankID), q, "Failed to fetch volunteers")
}

func (s *service) Get(ctx context.Context, id string) (*Volunteer, error) {
	id, err := required("id", id)
	if err != nil {
		return nil, err
	}
	return s.volunteerAt(ctx, apiclient.Request{
		Op:   "volunteers.get",
		Path: "/volunteers/" + url.PathEscape(id),
		Auth: true,
	}, "Failed to fetch volunteer")
}

func (s *service) Update(ctx context.Context, id string, reg Registration) (*Volunteer, error) {
	id, err := required("id", id)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(reg); err != nil {
		return nil, err
	}
	return s.volunteerAt(ctx, apiclient.Request{
		Op:     "volunteers.update",
		Method: http.MethodPut,
		Path:   "/volunteers/" + url.PathEscape(id),
		Body:   reg,
		Auth:   true,
	}, "Failed to update volunteer")
}

func (s *service) SetStatus(ctx context.Context, id string, status enums.VolunteerStatus) (*Volunteer, error) {
	id, err := required("id", id)
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid volunteer status %q", status))
	}
	return s.volunteerAt(ctx, apiclient.Request{
		Op:     "volunteers.status",
		Method: http.MethodPatch,
		Path:   "/volunteers/" + url.PathEscape(id) + "/status",
		Body:   map[string]string{"status": status.String()},
		Auth:   true,
	}, "Failed to update volunteer status")
}

func (s *service) Delete(ctx context.Context, id string) error {
	id, err := required("id", id)
	if err != nil {
		return err
	}
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:     "volunteers.delete",
		Method: http.MethodDelete,
		Path:   "/volunteers/" + url.PathEscape(id),
		Auth:   true,
	}, nil)
	if err != nil {
		return apiclient.Failure(env, err, "Failed to delete volunteer")
	}
	return nil
}

// Available lists active volunteers who can work dayOfWeek during shiftTime.
func (s *service) Available(ctx context.Context, foodbankID, dayOfWeek, shiftTime string) ([]Volunteer, error) {
	foodbankID, err := required("foodbank_id", foodbankID)
	if err != nil {
		return nil, err
	}
	dayOfWeek = strings.ToLower(strings.TrimSpace(dayOfWeek))
	shiftTime = strings.ToLower(strings.TrimSpace(shiftTime))
	if err := validate.Var("day_of_week", dayOfWeek, "required,oneof=monday tuesday wednesday thursday friday saturday sunday"); err != nil {
		return nil, err
	}
	if err := validate.Var("shift_time", shiftTime, "required,oneof=morning afternoon evening"); err != nil {
		return nil, err
	}
	q := url.Values{
		"foodbank_id": {foodbankID},
		"day_of_week": {dayOfWeek},
		"shift_time":  {shiftTime},
	}
	return s.listAt(ctx, "volunteers.available", "/volunteers/available", q, "Failed to fetch available volunteers")
}

func (s *service) Stats(ctx context.Context, foodbankID string) (*Stats, error) {
	foodbankID, err := required("foodbank_id", foodbankID)
	if err != nil {
		return nil, err
	}
	var stats Stats
	env, err := s.client.DoInto(ctx, apiclient.Request{
		Op:   "volunteers.stats",
		Path: "/volunteers/stats/foodbank/" + url.PathEscape(foodbankID),
		Auth: true,
	}, &stats)
	if err != nil {
		return nil, apiclient.Failure(env, err, "Failed to fetch volunteer statistics")
	}
	return &stats, nil
}

func (s *service) volunteerAt(ctx context.Context, req apiclient.Request, fallback string) (*Volunteer, error) {
	var out Volunteer
	env, err := s.client.DoInto(ctx, req, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	return &out, nil
}

func (s *service) listAt(ctx context.Context, op, path string, q url.Values, fallback string) ([]Volunteer, error) {
	var out []Volunteer
	env, err := s.client.DoInto(ctx, apiclient.Request{Op: op, Path: path, Query: q, Auth: true}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	if out == nil {
		out = []Volunteer{}
	}
	return out, nil
}

func required(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if err := validate.Var(field, value, "required"); err != nil {
		return "", err
	}
	return value, nil
}
