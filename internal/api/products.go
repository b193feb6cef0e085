package api

import (
	"context"
	"net/http"
)

// ProductsNeedingRenewal lists products whose promotion is due for
// renewal. Products on a hidden promotion plan are filtered out.
func (c *Client) ProductsNeedingRenewal(ctx context.Context, token string) ([]Product, error) {
	var resp productsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/products/needs-renewal", token, nil, &resp); err != nil {
		return nil, err
	}

	visible := make([]Product, 0, len(resp.Data.Products))
	for _, product := range resp.Data.Products {
		if product.PromotionPlan != nil && product.PromotionPlan.IsHidden {
			continue
		}
		visible = append(visible, product)
	}

	return visible, nil
}
