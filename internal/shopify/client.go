package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rookgm/shopreport/internal/filter"
	"github.com/rookgm/shopreport/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	maxPageSize    = 250
)

// Client talks to the store admin REST API
type Client struct {
	client   *http.Client
	baseURL  string
	token    string
	strategy CursorStrategy
	delay    time.Duration
}

// NewClient creates new Client instance. delay is an optional fixed pause
// between page requests used to stay under upstream rate limits.
func NewClient(baseURL, token string, strategy CursorStrategy, delay time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:  baseURL,
		token:    token,
		strategy: strategy,
		delay:    delay,
	}
}

// StoreBaseURL builds the admin API base URL for a store
func StoreBaseURL(store, apiVersion string) string {
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s", store, apiVersion)
}

// OrderQuery describes one order listing request
type OrderQuery struct {
	// Status is the upstream status filter, e.g. "any"
	Status string
	// PageSize is records per page, capped at the api maximum
	PageSize int
	// SortField and SortDesc form the sort specification
	SortField string
	SortDesc  bool
	// Cap limits the total number of fetched records, 0 is unlimited
	Cap int
	// Cutoff stops pagination at the first record at-or-before this
	// instant. It relies on the endpoint returning records in descending
	// SortField order and is rejected otherwise.
	Cutoff *time.Time
}

type ordersResponse struct {
	Orders []models.Order `json:"orders"`
}

type refundsResponse struct {
	Refunds []models.Refund `json:"refunds"`
}

// FetchOrders walks the paginated orders endpoint and returns the full
// record sequence. Pagination ends on an empty batch, a missing or
// malformed cursor, a reached cap, or a reached cutoff.
func (c *Client) FetchOrders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	if q.Cutoff != nil && !q.SortDesc {
		return nil, models.ErrCutoffNeedsDesc
	}

	base, err := url.Parse(c.baseURL + "/orders.json")
	if err != nil {
		return nil, err
	}

	sortField := q.SortField
	if sortField == "" {
		sortField = filter.AnchorCreatedAt
	}
	limit := q.PageSize
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	params := url.Values{}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	params.Set("limit", strconv.Itoa(limit))
	dir := "asc"
	if q.SortDesc {
		dir = "desc"
	}
	params.Set("order", sortField+" "+dir)
	base.RawQuery = params.Encode()

	orders := []models.Order{}
	next := base

	for {
		batch, header, err := c.fetchOrdersPage(ctx, next)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		stop := false
		if q.Cutoff != nil {
			batch, stop = newerThan(batch, sortField, *q.Cutoff)
		}
		orders = append(orders, batch...)

		// the cap bounds the result even when the cutoff fires on the
		// same page
		if q.Cap > 0 && len(orders) >= q.Cap {
			orders = orders[:q.Cap]
			break
		}
		if stop {
			break
		}

		cursor, ok := c.strategy.Next(header)
		if !ok {
			break
		}
		u, err := c.strategy.Apply(base, cursor)
		if err != nil {
			// unparseable cursor, treat as end of pages
			break
		}
		next = u

		if c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}
	}

	return orders, nil
}

// FetchOrderRefunds returns refunds of an order for payloads where they are
// not embedded
func (c *Client) FetchOrderRefunds(ctx context.Context, orderID uint64) ([]models.Refund, error) {
	u, err := url.Parse(fmt.Sprintf("%s/orders/%d/refunds.json", c.baseURL, orderID))
	if err != nil {
		return nil, err
	}

	body, _, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	refundsResp := refundsResponse{}
	if err := json.NewDecoder(body).Decode(&refundsResp); err != nil {
		return nil, err
	}
	return refundsResp.Refunds, nil
}

func (c *Client) fetchOrdersPage(ctx context.Context, u *url.URL) ([]models.Order, http.Header, error) {
	body, header, err := c.get(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	pageResp := ordersResponse{}
	if err := json.NewDecoder(body).Decode(&pageResp); err != nil {
		return nil, nil, err
	}
	return pageResp.Orders, header, nil
}

func (c *Client) get(ctx context.Context, u *url.URL) (io.ReadCloser, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, nil, models.NewUpstreamError(resp.StatusCode)
	}
	return resp.Body, resp.Header, nil
}

// newerThan keeps the prefix of batch strictly newer than cutoff and reports
// whether the cutoff was reached. Records without the sort timestamp are
// treated as reaching it.
func newerThan(batch []models.Order, sortField string, cutoff time.Time) ([]models.Order, bool) {
	for i := range batch {
		ts := filter.Anchor(&batch[i], sortField)
		if ts == nil || !ts.After(cutoff) {
			return batch[:i], true
		}
	}
	return batch, false
}
