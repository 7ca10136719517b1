package printful

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
)

// CreateProduct creates a sync product with its initial variant set and
// returns the remote product id.
func (c *Client) CreateProduct(ctx context.Context, payload ProductPayload) (int64, error) {
	result, err := c.Do(ctx, http.MethodPost, "/store/products", payload)
	if err != nil {
		return 0, err
	}

	// Older and newer API revisions disagree on the response shape: the
	// id is either at the result root or nested under sync_product.
	var created struct {
		ID          int64 `json:"id"`
		SyncProduct struct {
			ID int64 `json:"id"`
		} `json:"sync_product"`
	}
	if err := json.Unmarshal(result, &created); err != nil {
		return 0, errors.Wrap(err, "decode create result")
	}

	id := created.ID
	if id == 0 {
		id = created.SyncProduct.ID
	}
	if id == 0 {
		return 0, errors.New("create response carries no product id")
	}
	return id, nil
}

// UpdateProduct replaces the product's variant set with exactly the
// entries in the payload. Callers must include references to every
// variant that should survive the call.
func (c *Client) UpdateProduct(ctx context.Context, productID int64, payload ProductPayload) error {
	_, err := c.Do(ctx, http.MethodPut, fmt.Sprintf("/store/products/%d", productID), payload)
	return err
}

// GetProduct reads the current remote state of a sync product.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	result, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/store/products/%d", productID), nil)
	if err != nil {
		return nil, err
	}

	var p Product
	if err := json.Unmarshal(result, &p); err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	return &p, nil
}

// DeleteProduct removes a sync product and all its variants.
func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	_, err := c.Do(ctx, http.MethodDelete, fmt.Sprintf("/store/products/%d", productID), nil)
	return err
}

// GetStore fetches the store record, used to validate credentials
// before batch operations.
func (c *Client) GetStore(ctx context.Context) (*StoreInfo, error) {
	result, err := c.Do(ctx, http.MethodGet, "/store", nil)
	if err != nil {
		return nil, err
	}

	var info StoreInfo
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, errors.Wrap(err, "decode store info")
	}
	return &info, nil
}
