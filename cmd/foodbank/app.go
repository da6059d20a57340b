package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/angelmondragon/foodbank-client/internal/apiclient"
	"github.com/angelmondragon/foodbank-client/internal/auth"
	"github.com/angelmondragon/foodbank-client/internal/cart"
	"github.com/angelmondragon/foodbank-client/internal/inventory"
	"github.com/angelmondragon/foodbank-client/internal/reports"
	"github.com/angelmondragon/foodbank-client/internal/requests"
	"github.com/angelmondragon/foodbank-client/internal/session"
	"github.com/angelmondragon/foodbank-client/internal/shifts"
	"github.com/angelmondragon/foodbank-client/internal/volunteers"
	"github.com/angelmondragon/foodbank-client/internal/wishlist"
	"github.com/angelmondragon/foodbank-client/pkg/config"
	"github.com/angelmondragon/foodbank-client/pkg/logger"
	"github.com/angelmondragon/foodbank-client/pkg/metrics"
	"github.com/angelmondragon/foodbank-client/pkg/tokenstore"
	"github.com/prometheus/client_golang/prometheus"
)

// app wires every client component around one token store and one cart store.
type app struct {
	logg      *logger.Logger
	out       io.Writer
	registry  *prometheus.Registry
	tokens    *tokenstore.Store
	auth      auth.Service
	cart      *cart.Store
	wishlists wishlist.Service
	inventory inventory.Service
	requests  requests.Service
	session   *session.Bootstrapper
	closer    io.Closer

	shifts      shifts.Service
	assignments shifts.AssignmentService
	volunteers  volunteers.Service
	reports     reports.Service
}

type appParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Out        io.Writer
	HTTPClient *http.Client
	// Tokens overrides the configured backend.
	Tokens *tokenstore.Store
}

func newApp(ctx context.Context, p appParams) (*app, error) {
	cfg := p.Config
	logg := p.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	tokens, closer := p.Tokens, io.Closer(nil)
	if tokens == nil {
		var err error
		tokens, closer, err = tokenstore.Open(ctx, cfg, logg)
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	client, err := apiclient.New(apiclient.Params{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: p.HTTPClient,
		Tokens:     tokens,
		Logger:     logg,
		Metrics:    metrics.NewRequestMetrics(registry, "client"),
		Timeout:    cfg.API.Timeout,
		Tracing:    cfg.Telemetry.TracingEnabled,
	})
	if err != nil {
		return nil, err
	}

	a := &app{logg: logg, out: p.Out, registry: registry, tokens: tokens, closer: closer}
	if a.auth, err = auth.NewService(auth.ServiceParams{Client: client, Tokens: tokens, Logger: logg}); err != nil {
		return nil, err
	}
	remote, err := cart.NewRemote(client)
	if err != nil {
		return nil, err
	}
	if a.cart, err = cart.NewStore(cart.StoreParams{Remote: remote, Tokens: tokens, Logger: logg}); err != nil {
		return nil, err
	}
	if a.wishlists, err = wishlist.NewService(wishlist.ServiceParams{Client: client, Cart: a.cart, Logger: logg}); err != nil {
		return nil, err
	}
	if a.inventory, err = inventory.NewService(inventory.ServiceParams{Client: client, Logger: logg}); err != nil {
		return nil, err
	}
	if a.requests, err = requests.NewService(requests.ServiceParams{Client: client, Cart: a.cart, Logger: logg}); err != nil {
		return nil, err
	}
	if a.shifts, err = shifts.NewService(shifts.ServiceParams{Client: client, Logger: logg}); err != nil {
		return nil, err
	}
	if a.assignments, err = shifts.NewAssignmentService(shifts.AssignmentParams{Client: client, Logger: logg}); err != nil {
		return nil, err
	}
	if a.volunteers, err = volunteers.NewService(volunteers.ServiceParams{Client: client, Logger: logg}); err != nil {
		return nil, err
	}
	if a.reports, err = reports.NewService(reports.ServiceParams{Client: client, Logger: logg}); err != nil {
		return nil, err
	}
	if a.session, err = session.New(session.Params{Gateway: a.auth, Cart: a.cart, Tokens: tokens, Logger: logg}); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) Close() error {
	a.cart.Close()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMetrics writes one line per gathered metric family.
func (a *app) printMetrics(w io.Writer) error {
	families, err := metrics.Summarize(a.registry)
	if err != nil {
		return err
	}
	for _, f := range families {
		fmt.Fprintf(w, "%s %d\n", f.Name, f.Samples)
	}
	return nil
}
