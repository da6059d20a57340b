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
	"github.com/angelmondragon/foodbank-client/pkg/validate"
)

// AssignmentParams groups dependencies for the assignment service. Now stamps
// check-in and check-out when the caller gives no time.
type AssignmentParams struct {
	Client transport
	Logger *logger.Logger
	Now    func() time.Time
}

// AssignmentService books volunteers onto shifts and tracks attendance.
type AssignmentService interface {
	Assign(ctx context.Context, in AssignmentInput) (*Assignment, error)
	ForVolunteer(ctx context.Context, volunteerID string, dates DateRange) ([]Assignment, error)
	ForShift(ctx context.Context, shiftID string) ([]Assignment, error)
	ForUser(ctx context.Context, userID string, dates DateRange) ([]Assignment, error)
	SetStatus(ctx context.Context, id string, status enums.AssignmentStatus) (*Assignment, error)
	Cancel(ctx context.Context, id, reason, cancelledBy string) (*Assignment, error)
	CheckIn(ctx context.Context, id, at string) (*Assignment, error)
	CheckOut(ctx context.Context, id, at string) (*Assignment, error)
	Complete(ctx context.Context, id string, feedback Feedback) (*Assignment, error)
	VolunteerHours(ctx context.Context, volunteerID string, dates DateRange) (*Hours, error)
	FoodbankHours(ctx context.Context, foodbankID string, dates DateRange) (*Hours, error)
}

type assignmentService struct {
	client transport
	logg   *logger.Logger
	now    func() time.Time
}

// NewAssignmentService builds an assignment service.
func NewAssignmentService(params AssignmentParams) (AssignmentService, error) {
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
	return &assignmentService{client: params.Client, logg: logg, now: now}, nil
}

func (s *assignmentService) Assign(ctx context.Context, in AssignmentInput) (*Assignment, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	return s.assignmentAt(ctx, apiclient.Request{
		Op:     "assignments.create",
		Method: http.MethodPost,
		Path:   "/volunteer-shifts",
		Body:   in,
		Auth:   true,
	}, "Failed to assign volunteer to shift")
}

func (s *assignmentService) ForVolunteer(ctx context.Context, volunteerID string, dates DateRange) ([]Assignment, error) {
	if err := dates.validate(); err != nil {
		return nil, err
	}
	path, err := idPath("/volunteer-shifts/volunteer/", volunteerID, "")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "assignments.volunteer", path, dates.query(), "Failed to fetch volunteer shifts")
}

func (s *assignmentService) ForShift(ctx context.Context, shiftID string) ([]Assignment, error) {
	path, err := idPath("/volunteer-shifts/shift/", shiftID, "")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "assignments.shift", path, nil, "Failed to fetch shift volunteers")
}

func (s *assignmentService) ForUser(ctx context.Context, userID string, dates DateRange) ([]Assignment, error) {
	if err := dates.validate(); err != nil {
		return nil, err
	}
	path, err := idPath("/volunteer-shifts/user/", userID, "")
	if err != nil {
		return nil, err
	}
	return s.listAt(ctx, "assignments.user", path, dates.query(), "Failed to fetch your shifts")
}

func (s *assignmentService) SetStatus(ctx context.Context, id string, status enums.AssignmentStatus) (*Assignment, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid assignment status %q", status))
	}
	return s.patch(ctx, "assignments.status", id, "/status", map[string]string{"status": status.String()}, "Failed to update volunteer shift")
}

func (s *assignmentService) Cancel(ctx context.Context, id, reason, cancelledBy string) (*Assignment, error) {
	body := map[string]string{
		"cancelled_reason": strings.TrimSpace(reason),
		"cancelled_by":     strings.TrimSpace(cancelledBy),
	}
	return s.patch(ctx, "assignments.cancel", id, "/cancel", body, "Failed to cancel volunteer shift")
}

// CheckIn records arrival at HH:MM. An empty at uses the current local time.
func (s *assignmentService) CheckIn(ctx context.Context, id, at string) (*Assignment, error) {
	at, err := s.clock(at, "check_in_time")
	if err != nil {
		return nil, err
	}
	return s.patch(ctx, "assignments.check_in", id, "/check-in", map[string]string{"check_in_time": at}, "Failed to check in")
}

// CheckOut records departure at HH:MM. An empty at uses the current local time.
func (s *assignmentService) CheckOut(ctx context.Context, id, at string) (*Assignment, error) {
	at, err := s.clock(at, "check_out_time")
	if err != nil {
		return nil, err
	}
	return s.patch(ctx, "assignments.check_out", id, "/check-out", map[string]string{"check_out_time": at}, "Failed to check out")
}

func (s *assignmentService) Complete(ctx context.Context, id string, feedback Feedback) (*Assignment, error) {
	if err := validate.Struct(feedback); err != nil {
		return nil, err
	}
	return s.patch(ctx, "assignments.complete", id, "/complete", map[string]Feedback{"feedback": feedback}, "Failed to complete volunteer shift")
}

func (s *assignmentService) VolunteerHours(ctx context.Context, volunteerID string, dates DateRange) (*Hours, error) {
	if err := dates.validate(); err != nil {
		return nil, err
	}
	path, err := idPath("/volunteer-shifts/volunteer/", volunteerID, "/hours")
	if err != nil {
		return nil, err
	}
	return s.hoursAt(ctx, "assignments.volunteer_hours", path, dates.query())
}

func (s *assignmentService) FoodbankHours(ctx context.Context, foodbankID string, dates DateRange) (*Hours, error) {
	if err := dates.validate(); err != nil {
		return nil, err
	}
	path, err := foodbankPath("/volunteer-shifts/foodbank/", foodbankID, "/hours")
	if err != nil {
		return nil, err
	}
	return s.hoursAt(ctx, "assignments.foodbank_hours", path, dates.query())
}

func (s *assignmentService) clock(at, field string) (string, error) {
	at = strings.TrimSpace(at)
	if at == "" {
		return s.now().Format(clockLayout), nil
	}
	if err := validate.Var(field, at, "datetime="+clockLayout); err != nil {
		return "", err
	}
	return at, nil
}

func (s *assignmentService) patch(ctx context.Context, op, id, suffix string, body any, fallback string) (*Assignment, error) {
	path, err := idPath("/volunteer-shifts/", id, suffix)
	if err != nil {
		return nil, err
	}
	return s.assignmentAt(ctx, apiclient.Request{
		Op:     op,
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
		Auth:   true,
	}, fallback)
}

func (s *assignmentService) assignmentAt(ctx context.Context, req apiclient.Request, fallback string) (*Assignment, error) {
	var out Assignment
	env, err := s.client.DoInto(ctx, req, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	return &out, nil
}

func (s *assignmentService) listAt(ctx context.Context, op, path string, q url.Values, fallback string) ([]Assignment, error) {
	var out []Assignment
	env, err := s.client.DoInto(ctx, apiclient.Request{Op: op, Path: path, Query: q, Auth: true}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, fallback)
	}
	if out == nil {
		out = []Assignment{}
	}
	return out, nil
}

func (s *assignmentService) hoursAt(ctx context.Context, op, path string, q url.Values) (*Hours, error) {
	var out Hours
	env, err := s.client.DoInto(ctx, apiclient.Request{Op: op, Path: path, Query: q, Auth: true}, &out)
	if err != nil {
		return nil, apiclient.Failure(env, err, "Failed to fetch volunteer hours")
	}
	return &out, nil
}
