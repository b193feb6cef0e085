package commands

import (
	"context"
	"fmt"

	"github.com/clarkmarket/marketctl/internal/api"
	"github.com/clarkmarket/marketctl/internal/session"
)

type ProductsCmd struct {
	Renewals RenewalsCmd `cmd:"" help:"List products whose promotion needs renewal"`
}

type RenewalsCmd struct {
	clientFlags
	CacheDir string `help:"HTTP cache directory for listing responses" env:"MARKETCTL_CACHE_DIR"`
}

func (r *RenewalsCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := r.resolve()
	if err != nil {
		return err
	}
	if r.CacheDir != "" {
		cfg.CacheDir = r.CacheDir
	}

	// Listings are cacheable, route them through the caching transport.
	client := api.New(api.Config{
		ServerURL:  cfg.ServerURL,
		HTTPClient: api.NewCachingHTTPClient(cfg.CacheDir, cfg.Timeout),
	})

	store, err := session.NewStore(cfg.SessionDir)
	if err != nil {
		return err
	}
	manager := session.NewManager(client, store)

	if err := manager.Hydrate(ctx); err != nil {
		return err
	}
	if !manager.Authenticated() {
		return session.ErrNotAuthenticated
	}

	var products []api.Product
	err = manager.WithAuth(ctx, func(ctx context.Context, token string) error {
		listed, err := client.ProductsNeedingRenewal(ctx, token)
		if err != nil {
			return err
		}
		products = listed
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to list products needing renewal: %w", err)
	}

	if len(products) == 0 {
		fmt.Println("No products need renewal")
		return nil
	}

	for _, product := range products {
		plan := "-"
		if product.PromotionPlan != nil {
			plan = product.PromotionPlan.Plan
		}
		fmt.Printf("%s  %-30s  %10.2f  %s\n", product.ID, product.Name, product.Price, plan)
	}

	return nil
}
