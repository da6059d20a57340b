package main

import (
	"context"
	"fmt"
	"os"

	"github.com/angelmondragon/foodbank-client/internal/reports"
	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/internal/volunteers"
	"github.com/angelmondragon/foodbank-client/pkg/enums"
	"github.com/spf13/pflag"
)

func runShifts(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list", "upcoming", "available", "range":
		fs := newFlagSet("shifts " + sub)
		foodbank := fs.String("foodbank", "", "food bank id")
		var f shifts.ListFilters
		fs.StringVar(&f.Status, "status", "", "shift status")
		fs.StringVar(&f.ActivityCategory, "category", "", "activity category")
		var dates shifts.DateRange
		fs.StringVar(&dates.Start, "start", "", "first date (YYYY-MM-DD)")
		fs.StringVar(&dates.End, "end", "", "last date (YYYY-MM-DD)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var (
			out []shifts.Shift
			err error
		)
		switch sub {
		case "list":
			out, err = a.shifts.List(ctx, *foodbank, f)
		case "upcoming":
			out, err = a.shifts.Upcoming(ctx, *foodbank)
		case "available":
			out, err = a.shifts.Available(ctx, *foodbank)
		default:
			out, err = a.shifts.InRange(ctx, *foodbank, dates)
		}
		if err != nil {
			return err
		}
		return a.print(out)
	case "get":
		shift, err := a.shifts.Get(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		return a.print(shift)
	case "create", "update":
		id := ""
		if sub == "update" {
			id, rest = firstArg(rest), rest[min(1, len(rest)):]
		}
		fs := newFlagSet("shifts " + sub)
		in := shiftFlags(fs)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var (
			shift *shifts.Shift
			err   error
		)
		if sub == "create" {
			shift, err = a.shifts.Create(ctx, *in)
		} else {
			shift, err = a.shifts.Update(ctx, id, *in)
		}
		if err != nil {
			return err
		}
		return a.print(shift)
	case "delete":
		if err := a.shifts.Delete(ctx, firstArg(rest)); err != nil {
			return err
		}
		return a.print(map[string]string{"message": "Shift deleted"})
	case "status":
		if len(rest) != 2 {
			return fmt.Errorf("usage: shifts status ID STATUS")
		}
		status, err := enums.ParseShiftStatus(rest[1])
		if err != nil {
			return err
		}
		shift, err := a.shifts.SetStatus(ctx, rest[0], status)
		if err != nil {
			return err
		}
		return a.print(shift)
	}
	return fmt.Errorf("unknown shifts command %q", sub)
}

func shiftFlags(fs *pflag.FlagSet) *shifts.Input {
	in := &shifts.Input{}
	fs.StringVar(&in.FoodbankID, "foodbank", "", "food bank id")
	fs.StringVar(&in.Title, "title", "", "shift title")
	fs.StringVar(&in.Description, "description", "", "description")
	fs.StringVar(&in.ActivityCategory, "category", "", "activity category")
	fs.StringVar(&in.Location, "location", "", "location")
	fs.StringVar(&in.ShiftDate, "date", "", "shift date (YYYY-MM-DD)")
	fs.StringVar(&in.StartTime, "start", "", "start time (HH:MM)")
	fs.StringVar(&in.EndTime, "end", "", "end time (HH:MM)")
	fs.IntVar(&in.Capacity, "capacity", 0, "volunteer capacity")
	fs.StringVar(&in.Status, "status", "", "initial status")
	return in
}

func runVolunteers(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "signup", "update":
		id := ""
		if sub == "update" {
			id, rest = firstArg(rest), rest[min(1, len(rest)):]
		}
		fs := newFlagSet("volunteers " + sub)
		var form volunteers.SignupForm
		fs.StringVar(&form.FoodbankID, "foodbank", "", "food bank id")
		fs.StringSliceVar(&form.Skills, "skill", nil, "skill; repeat or comma separate")
		fs.StringArrayVar(&form.Availability, "slot", nil, `availability such as "Monday Morning"; repeatable`)
		fs.StringVar(&form.EmergencyContact, "contact", "", "emergency contact name")
		fs.StringVar(&form.EmergencyPhone, "phone", "", "emergency contact phone")
		fs.StringVar(&form.Experience, "experience", "", "prior experience")
		fs.StringVar(&form.Motivation, "motivation", "", "why you want to volunteer")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var (
			v   *volunteers.Volunteer
			err error
		)
		if sub == "signup" {
			v, err = a.volunteers.Create(ctx, form.Registration())
		} else {
			v, err = a.volunteers.Update(ctx, id, form.Registration())
		}
		if err != nil {
			return err
		}
		return a.print(v)
	case "list":
		fs := newFlagSet("volunteers list")
		foodbank := fs.String("foodbank", "", "food bank id")
		var f volunteers.ListFilters
		fs.StringVar(&f.Status, "status", "", "volunteer status")
		fs.StringVar(&f.Skill, "skill", "", "skill name")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		out, err := a.volunteers.List(ctx, *foodbank, f)
		if err != nil {
			return err
		}
		return a.print(out)
	case "get":
		v, err := a.volunteers.Get(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		return a.print(v)
	case "status":
		if len(rest) != 2 {
			return fmt.Errorf("usage: volunteers status ID STATUS")
		}
		status, err := enums.ParseVolunteerStatus(rest[1])
		if err != nil {
			return err
		}
		v, err := a.volunteers.SetStatus(ctx, rest[0], status)
		if err != nil {
			return err
		}
		return a.print(v)
	case "delete":
		if err := a.volunteers.Delete(ctx, firstArg(rest)); err != nil {
			return err
		}
		return a.print(map[string]string{"message": "Volunteer deleted"})
	case "available":
		fs := newFlagSet("volunteers available")
		foodbank := fs.String("foodbank", "", "food bank id")
		day := fs.String("day", "", "day of week")
		slot := fs.String("time", "", "morning, afternoon or evening")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		out, err := a.volunteers.Available(ctx, *foodbank, *day, *slot)
		if err != nil {
			return err
		}
		return a.print(out)
	case "stats":
		fs := newFlagSet("volunteers stats")
		foodbank := fs.String("foodbank", "", "food bank id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		stats, err := a.volunteers.Stats(ctx, *foodbank)
		if err != nil {
			return err
		}
		return a.print(stats)
	}
	return fmt.Errorf("unknown volunteers command %q", sub)
}

func runAssignments(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "")
	id, rest := firstArg(rest), rest[min(1, len(rest)):]
	fs := newFlagSet("assignments " + sub)
	var dates shifts.DateRange
	fs.StringVar(&dates.Start, "start", "", "first work date (YYYY-MM-DD)")
	fs.StringVar(&dates.End, "end", "", "last work date (YYYY-MM-DD)")

	var (
		out any
		err error
	)
	switch sub {
	case "assign":
		in := shifts.AssignmentInput{VolunteerID: id}
		fs.StringVar(&in.ShiftID, "shift", "", "shift id")
		fs.StringVar(&in.WorkDate, "date", "", "work date (YYYY-MM-DD)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		out, err = a.assignments.Assign(ctx, in)
	case "volunteer", "user":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if sub == "volunteer" {
			out, err = a.assignments.ForVolunteer(ctx, id, dates)
		} else {
			out, err = a.assignments.ForUser(ctx, id, dates)
		}
	case "shift":
		out, err = a.assignments.ForShift(ctx, id)
	case "status":
		status, perr := enums.ParseAssignmentStatus(firstArg(rest))
		if perr != nil {
			return perr
		}
		out, err = a.assignments.SetStatus(ctx, id, status)
	case "cancel":
		reason := fs.String("reason", "", "why the booking is cancelled")
		by := fs.String("by", "", "who cancelled")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		out, err = a.assignments.Cancel(ctx, id, *reason, *by)
	case "check-in", "check-out":
		at := fs.String("at", "", "time (HH:MM); defaults to now")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if sub == "check-in" {
			out, err = a.assignments.CheckIn(ctx, id, *at)
		} else {
			out, err = a.assignments.CheckOut(ctx, id, *at)
		}
	case "complete":
		var fb shifts.Feedback
		fs.IntVar(&fb.Rating, "rating", 0, "rating from 1 to 5")
		fs.StringVar(&fb.Comments, "comments", "", "comments")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		out, err = a.assignments.Complete(ctx, id, fb)
	case "hours", "foodbank-hours":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if sub == "hours" {
			out, err = a.assignments.VolunteerHours(ctx, id, dates)
		} else {
			out, err = a.assignments.FoodbankHours(ctx, id, dates)
		}
	default:
		return fmt.Errorf("unknown assignments command %q", sub)
	}
	if err != nil {
		return err
	}
	return a.print(out)
}

// runReports prints a report as JSON. export writes CSV to --out, or to stdout
// when no path is given.
func runReports(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "dashboard")
	kind := ""
	if sub == "export" {
		kind, rest = firstArg(rest), rest[min(1, len(rest)):]
	}
	fs := newFlagSet("reports " + sub)
	var f reports.Filters
	fs.StringVar(&f.StartDate, "start", "", "first date (YYYY-MM-DD)")
	fs.StringVar(&f.EndDate, "end", "", "last date (YYYY-MM-DD)")
	fs.StringVar(&f.FoodbankID, "foodbank", "", "food bank id")
	path := fs.String("out", "", "export destination file")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var (
		out any
		err error
	)
	switch sub {
	case "dashboard":
		out, err = a.reports.Dashboard(ctx, f)
	case reports.TypeInventory:
		out, err = a.reports.Inventory(ctx, f)
	case reports.TypeRequests:
		out, err = a.reports.Requests(ctx, f)
	case reports.TypeDonations:
		out, err = a.reports.Donations(ctx, f)
	case reports.TypeUsers:
		out, err = a.reports.Users(ctx, f)
	case "export":
		file, err := a.reports.Export(ctx, kind, f)
		if err != nil {
			return err
		}
		if *path == "" {
			_, err = a.out.Write(file.Data)
			return err
		}
		if err := os.WriteFile(*path, file.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", *path, err)
		}
		return a.print(map[string]any{"file": *path, "name": file.Name, "bytes": len(file.Data)})
	default:
		return fmt.Errorf("unknown reports command %q", sub)
	}
	if err != nil {
		return err
	}
	return a.print(out)
}
