package larekapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jafarshop/larek/internal/domain"
	"github.com/jafarshop/larek/internal/metrics"
	"github.com/jafarshop/larek/pkg/errors"
)

const (
	opGetProducts = "get products"
	opPostOrder   = "post order"
)

// ListResponse is the envelope of collection endpoints
type ListResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

// orderResponse accepts both {id, total} and {id}
type orderResponse struct {
	ID    string   `json:"id"`
	Total *float64 `json:"total"`
}

// GetProductList fetches the catalog and resolves image paths against the CDN
func (c *Client) GetProductList(ctx context.Context) ([]domain.Product, error) {
	data, err := c.do(ctx, opGetProducts, http.MethodGet, "/product", nil)
	if err != nil {
		return nil, err
	}

	var list ListResponse[domain.Product]
	if err := json.Unmarshal(data, &list); err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(opGetProducts, "decode_error").Inc()
		return nil, &errors.DecodeError{Op: opGetProducts, Err: err}
	}
	if list.Items == nil {
		metrics.RemoteRequestsTotal.WithLabelValues(opGetProducts, "decode_error").Inc()
		return nil, &errors.DecodeError{Op: opGetProducts, Err: fmt.Errorf("missing items")}
	}

	products := make([]domain.Product, 0, len(list.Items))
	for _, item := range list.Items {
		if item.ID == "" {
			metrics.RemoteRequestsTotal.WithLabelValues(opGetProducts, "decode_error").Inc()
			return nil, &errors.DecodeError{Op: opGetProducts, Err: fmt.Errorf("product without id")}
		}
		item.Image = c.cdnURL + item.Image
		products = append(products, item)
	}

	metrics.RemoteRequestsTotal.WithLabelValues(opGetProducts, "ok").Inc()
	c.logger.Debug("Fetched product list", zap.Int("count", len(products)))
	return products, nil
}

// PostOrder submits the order. The API may omit the total, in which case the
// submitted total is reported back.
func (c *Client) PostOrder(ctx context.Context, order domain.Order) (*domain.OrderResult, error) {
	data, err := c.do(ctx, opPostOrder, http.MethodPost, "/order", order)
	if err != nil {
		return nil, err
	}

	var resp orderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(opPostOrder, "decode_error").Inc()
		return nil, &errors.DecodeError{Op: opPostOrder, Err: err}
	}
	if resp.ID == "" {
		metrics.RemoteRequestsTotal.WithLabelValues(opPostOrder, "decode_error").Inc()
		return nil, &errors.DecodeError{Op: opPostOrder, Err: fmt.Errorf("missing order id")}
	}

	result := &domain.OrderResult{ID: resp.ID, Total: order.Total}
	if resp.Total != nil {
		result.Total = *resp.Total
	}

	metrics.RemoteRequestsTotal.WithLabelValues(opPostOrder, "ok").Inc()
	c.logger.Info("Order submitted",
		zap.String("order_id", result.ID),
		zap.Float64("total", result.Total),
		zap.Int("items", len(order.Items)),
	)
	return result, nil
}
