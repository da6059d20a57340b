// Package shifts schedules volunteer shifts and books volunteers onto them.
package shifts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	pkgerrors "github.com/angelmondragon/foodbank-client/pkg/errors"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/types"
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

const clockLayout = "15:04"

type transport interface {
	DoInto(ctx context.Context, req apiclient.Request, out any) (*types.Envelope, error)
}

// ServiceParams groups dependencies for the shift and assignment services.
type ServiceParams struct {
	Client transport
	Logger *logger.Logger
}

// Service manages a food bank's shift calendar.
type Service interface {
	List(ctx context.Context, foodbankID string, filters ListFilters) ([]Shift, error)
	Upcoming(ctx context.Context, foodbankID string) ([]Shift, error)
	Available(ctx context.Context, foodbankID string) ([]Shift, error)
	InRange(ctx context.Context, foodbankID string, dates DateRange) ([]Shift, error)
	Get(ctx context.Context, id string) (*Shift, error)
	Create(ctx context.Context, in Input) (*Shift, error)
	Update(ctx context.Context, id string, in Input) (*Shift, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status enums.ShiftStatus) (*Shift, error)
}

type service struct {
	client transport
	logg   *logger.Logger
}

// NewService builds a shift service.
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

func (s *service) List(ctx context.Context, foodbankID string, filters ListFilters) ([]Shift, error) {
	path, err := foodbankPath("/shifts/foodbank/", foodbankID, "")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "shifts.list", path, filters.query(), "Failed to fetch shifts")
}

func (s *service) Upcoming(ctx context.Context, foodbankID string) ([]Shift, error) {
	path, err := foodbankPath("/shifts/upcoming/foodbank/", foodbankID, "")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "shifts.upcoming", path, nil, "Failed to fetch upcoming shifts")
}

// Available lists published shifts that still have open spots.
func (s *service) Available(ctx context.Context, foodbankID string) ([]Shift, error) {
	path, err := foodbankPath("/shifts/available/foodbank/", foodbankID, "")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "shifts.available", path, nil, "Failed to fetch available shifts")
}

func (s *service) InRange(ctx context.Context, foodbankID string, dates DateRange) ([]Shift, error) {
	if dates.Start == "" || dates.End == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if err := dates.validate(); err != nil {
		return nil, err
	}
	path, err := foodbankPath("/shifts/foodbank/", foodbankID, "/date-range")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "shifts.date_range", path, dates.query(), "Failed to fetch shifts")
}

func (s *service) Get(ctx context.Context, id string) (*Shift, error) {
	path, err := idPath("/shifts/", id, "")
	if err != nil {
		return nil, err
	}
	return s.shiftAt(ctx, apiclient.Request{Op: "shifts.get", Path: path, Auth: true}, "Failed to fetch shift")
}

func (s *service) Create(ctx context.Context, in Input) (*Shift, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkTimes(in); err != nil {
		return nil, err
	}
	return s.shiftAt(ctx, apiclient.Request{
		Op:     "shifts.create",
		Method: http.MethodPost,
		Path:   "/shifts",
		Body:   in,
		Auth:   true,
	}, "Failed to create shift")
}

func (s *service) Update(ctx context.Context, id string, in Input) (*Shift, error) {
	path, err := idPath("/shifts/", id, "")
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := checkTimes(in); err != nil {
		return nil, err
	}
	return s.shiftAt(ctx, apiclient.Request{
		Op:     "shifts.update",
		Method: http.MethodPut,
		Path:   path,
		Body:   in,
		Auth:   true,
	}, "Failed to update shift")
}

func (s *service) Delete(ctx context.Context, id string) error {
	path, err := idPath("/shifts/", id, "")
	if err != nil {
		return err
	}
	env, err := s.client.DoInto(ctx, apiclient.Request{Op: "shifts.delete", Method: http.MethodDelete, Path: path, Auth: true}, nil)
	if err != nil {
		return apiclient.Failure(env, err, "Failed to delete shift")
	}
	return nil
}

func (s *service) SetStatus(ctx context.Context, id string, status enums.ShiftStatus) (*Shift, error) {
	path, err := idPath("/shifts/", id, "/status")
	if err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid shift status %q", status))
	}
	return s.shiftAt(ctx, apiclient.Request{
		Op:     "shifts.status",
		Method: http.MethodPatch,
		Path:   path,
		Body:   map[string]string{"status": status.String()},
		Auth:   true,
	}, "Failed to update shift status")
}

func (s *service) listAt(ctx context.Context, op, path string, q url.Values, fallback string) ([]Shift, error) {
	var out []Shift
	env, err := s.client.DoInto(ctx, apiclient.Request{Op: op, Path: path, Query: q, Auth: true}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	if out == nil {
		out = []Shift{}
	}
	return out, nil
}

func (s *service) shiftAt(ctx context.Context, req apiclient.Request, fallback string) (*Shift, error) {
	var shift Shift
	env, err := s.client.DoInto(ctx, req, &shift)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	return &shift, nil
}

// checkTimes rejects shifts that do not end after they start. Shifts never span
// midnight.
func checkTimes(in Input) error {
	start, err := time.Parse(clockLayout, in.StartTime)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "start_time must be HH:MM")
	}
	end, err := time.Parse(clockLayout, in.EndTime)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "end_time must be HH:MM")
	}
	if !end.After(start) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end time must be after start time")
	}
	return nil
}

func foodbankPath(prefix, foodbankID, suffix string) (string, error) {
	foodbankID = strings.TrimSpace(foodbankID)
	if err := validate.Var("foodbank_id", foodbankID, "required"); err != nil {
		return "", err
	}
	return prefix + url.PathEscape(foodbankID) + suffix, nil
}

func idPath(prefix, id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if err := validate.Var("id", id, "required"); err != nil {
		return "", err
	}
	return prefix + url.PathEscape(id) + suffix, nil
}
