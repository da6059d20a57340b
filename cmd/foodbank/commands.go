package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/angelmondragon/foodbank-client/internal/auth"
	"github.com/angelmondragon/foodbank-client/internal/inventory"
	"github.com/angelmondragon/foodbank-client/internal/requests"
	"github.com/spf13/pflag"
)

const usage = `usage: foodbank [--metrics] <command> [args]

commands:
  login --email E --password P       sign in and hydrate the cart
  logout                             sign out (always succeeds locally)
  whoami                             show the signed-in profile
  register --name --email --password --role [--confirm]
  verify-email --token T
  resend-verification --email E
  cart [show|add ID [--qty N]|update LINE QTY|remove LINE|clear|save-wishlist --name N]
  wishlists [list|create --name N|load ID|delete ID]
  inventory [list|get ID|low-stock|expiring [--days N]|stats|categories|dietary-categories]
  requests [submit --date YYYY-MM-DD|mine|get ID]
  shifts [list|upcoming|available|range --start D --end D] --foodbank ID
  shifts [get ID|create FLAGS|update ID FLAGS|delete ID|status ID STATUS]
  volunteers [signup|update ID] --foodbank ID [--skill S] [--slot "Monday Morning"]
  volunteers [list --foodbank ID|get ID|status ID STATUS|delete ID|stats --foodbank ID]
  volunteers available --foodbank ID --day DAY --time SLOT
  assignments [assign VOLUNTEER --shift ID|volunteer ID|user ID|shift ID|hours ID|foodbank-hours ID]
  assignments [status ID STATUS|cancel ID [--reason R]|check-in ID|check-out ID|complete ID [--rating N]]
  reports [dashboard|inventory|requests|donations|users|export TYPE [--out FILE]] [--start D --end D]
`

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":               runLogin,
	"logout":              runLogout,
	"whoami":              runWhoami,
	"register":            runRegister,
	"verify-email":        runVerifyEmail,
	"resend-verification": runResendVerification,
	"cart":                runCart,
	"wishlists":           runWishlists,
	"inventory":           runInventory,
	"requests":            runRequests,
	"shifts":              runShifts,
	"volunteers":          runVolunteers,
	"assignments":         runAssignments,
	"reports":             runReports,
}

// sessionCommands read the signed-in user or the cart, so the session is booted from
// the persisted token first. Every other command goes straight to the API.
var sessionCommands = map[string]bool{
	"whoami":    true,
	"cart":      true,
	"wishlists": true,
	"requests":  true,
}

// dispatch runs one command, booting the session first when the command needs it.
func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if sessionCommands[args[0]] {
		a.session.Boot(ctx)
	}
	return cmd(ctx, a, args[1:])
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, sess, err := a.session.Login(ctx, auth.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	return a.print(map[string]any{"message": res.Message, "user": sess.User, "cart": a.cart.Snapshot().Cart})
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	return a.print(a.session.Logout(ctx))
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	sess := a.session.Current()
	if !sess.Authenticated {
		return a.print(map[string]any{"authenticated": false})
	}
	return a.print(map[string]any{"authenticated": true, "user": sess.User})
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	var req auth.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "password (min 6 characters)")
	fs.StringVar(&req.ConfirmPassword, "confirm", "", "password confirmation")
	fs.StringVar(&req.Role, "role", "recipient", "donor, volunteer or recipient")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.auth.Register(ctx, req)
	if err != nil {
		return err
	}
	return a.print(res)
}

func runVerifyEmail(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("verify-email")
	token := fs.String("token", "", "verification token from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.VerifyEmail(ctx, *token); err != nil {
		return err
	}
	return a.print(map[string]string{"message": "Email verified"})
}

func runResendVerification(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("resend-verification")
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.auth.ResendVerification(ctx, *email); err != nil {
		return err
	}
	return a.print(map[string]string{"message": "Verification email sent"})
}

func runCart(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "show")
	switch sub {
	case "show":
		return a.print(a.cart.Snapshot())
	case "add":
		fs := newFlagSet("cart add")
		qty := fs.Int("qty", 1, "quantity")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		res, err := a.cart.AddItem(ctx, fs.Arg(0), *qty)
		if err != nil {
			return err
		}
		return a.print(res)
	case "update":
		if len(rest) != 2 {
			return fmt.Errorf("usage: cart update LINE QTY")
		}
		qty, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", rest[1])
		}
		res, err := a.cart.UpdateItem(ctx, rest[0], qty)
		if err != nil {
			return err
		}
		return a.print(res)
	case "remove":
		res, err := a.cart.RemoveItem(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		return a.print(res)
	case "clear":
		res, err := a.cart.Clear(ctx)
		if err != nil {
			return err
		}
		return a.print(res)
	case "save-wishlist":
		fs := newFlagSet("cart save-wishlist")
		name := fs.String("name", "", "wishlist name")
		desc := fs.String("description", "", "wishlist description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		list, err := a.cart.SaveAsWishlist(ctx, *name, *desc)
		if err != nil {
			return err
		}
		return a.print(list)
	}
	return fmt.Errorf("unknown cart command %q", sub)
}

func runWishlists(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		lists, err := a.wishlists.List(ctx)
		if err != nil {
			return err
		}
		return a.print(lists)
	case "create":
		fs := newFlagSet("wishlists create")
		name := fs.String("name", "", "wishlist name")
		desc := fs.String("description", "", "wishlist description")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		list, err := a.wishlists.Create(ctx, *name, *desc, a.cart.Snapshot().Cart.Items)
		if err != nil {
			return err
		}
		return a.print(list)
	case "load":
		res, err := a.wishlists.LoadToCart(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		return a.print(map[string]any{"result": res, "cart": a.cart.Snapshot().Cart})
	case "delete":
		if err := a.wishlists.Delete(ctx, firstArg(rest)); err != nil {
			return err
		}
		return a.print(map[string]string{"message": "Wishlist deleted"})
	}
	return fmt.Errorf("unknown wishlists command %q", sub)
}

func runInventory(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "list")
	switch sub {
	case "list":
		fs := newFlagSet("inventory list")
		var f inventory.Filters
		fs.StringVar(&f.Search, "search", "", "free text search")
		fs.StringVar(&f.Category, "category", "", "category")
		fs.StringVar(&f.DietaryCategory, "dietary", "", "dietary category")
		fs.StringVar(&f.FoodbankID, "foodbank", "", "food bank id")
		fs.StringVar(&f.Sort, "sort", "", "name, quantity or expiration_date; prefix - to reverse")
		fs.BoolVar(&f.LowStock, "low-stock", false, "only low stock items")
		fs.IntVar(&f.Page, "page", 0, "page number")
		fs.IntVar(&f.Limit, "limit", 0, "page size")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		page, err := a.inventory.List(ctx, f)
		if err != nil {
			return err
		}
		return a.print(page)
	case "get":
		item, err := a.inventory.Get(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		return a.print(item)
	case "low-stock":
		items, err := a.inventory.LowStock(ctx)
		if err != nil {
			return err
		}
		return a.print(items)
	case "expiring":
		fs := newFlagSet("inventory expiring")
		days := fs.Int("days", inventory.DefaultExpiringDays, "look-ahead window in days")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		items, err := a.inventory.Expiring(ctx, *days)
		if err != nil {
			return err
		}
		return a.print(items)
	case "stats":
		stats, err := a.inventory.Stats(ctx)
		if err != nil {
			return err
		}
		return a.print(stats)
	case "categories":
		return a.print(a.inventory.Categories(ctx))
	case "dietary-categories":
		return a.print(a.inventory.DietaryCategories(ctx))
	}
	return fmt.Errorf("unknown inventory command %q", sub)
}

func runRequests(ctx context.Context, a *app, args []string) error {
	sub, rest := subcommand(args, "mine")
	switch sub {
	case "submit":
		fs := newFlagSet("requests submit")
		var d requests.Details
		fs.StringVar(&d.PreferredPickupDate, "date", "", "preferred pickup date (YYYY-MM-DD)")
		fs.StringVar(&d.PreferredPickupTime, "time", "", "preferred pickup time")
		fs.StringVar(&d.SpecialInstructions, "instructions", "", "special instructions")
		fs.StringVar(&d.DietaryRestrictions, "dietary", "", "dietary restrictions")
		fs.StringVar(&d.Allergies, "allergies", "", "allergies")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		req, err := a.requests.SubmitFromCart(ctx, d)
		if err != nil {
			return err
		}
		return a.print(req)
	case "mine":
		out, err := a.requests.Mine(ctx)
		if err != nil {
			return err
		}
		return a.print(out)
	case "get":
		req, err := a.requests.Get(ctx, firstArg(rest))
		if err != nil {
			return err
		}
		return a.print(req)
	}
	return fmt.Errorf("unknown requests command %q", sub)
}

func subcommand(args []string, fallback string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return fallback, args
	}
	return args[0], args[1:]
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
