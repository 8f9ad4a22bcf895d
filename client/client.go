// Package client implements the HTTP client for the ShopFlow REST backend.
// It owns the mapping from transport and HTTP failures to the client error
// taxonomy; screen services above it never look at raw status codes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shopflow/shopflow-client/config"
	apperrors "github.com/shopflow/shopflow-client/errors"
	"github.com/shopflow/shopflow-client/logger"
	"github.com/shopflow/shopflow-client/types"
)

// TokenSource supplies the current bearer token, or "" when the visitor has
// none. Reading it per request means a token stored after login is picked up
// without rebuilding the client.
type TokenSource func(ctx context.Context) (string, error)

// Client talks to the ShopFlow backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *zap.SugaredLogger
}

// New returns a Client for the configured backend.
func New(cfg config.APIConfig, tokens TokenSource) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        logger.GetLogger(),
	}
}

// errorBody decodes both message shapes the backend emits on failure.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b *errorBody) message() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}

// do executes one request and decodes a 2xx response into out (when non-nil).
// extraHeaders are applied after the defaults, so callers can add endpoint
// quirks like the legacy x-auth-token header.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}, extraHeaders map[string]string) error {
	endpoint := method + " " + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ValidationError, "failed to encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, apperrors.TransportError, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		requestCount.WithLabelValues(endpoint, outcomeTransport).Inc()
		c.log.Warnw("Backend request failed before a response arrived",
			"endpoint", endpoint, "error", err)
		return apperrors.Transport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		requestCount.WithLabelValues(endpoint, outcomeTransport).Inc()
		return apperrors.Transport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		requestCount.WithLabelValues(endpoint, outcomeHTTPError).Inc()
		var decoded errorBody
		_ = json.Unmarshal(payload, &decoded)
		c.log.Debugw("Backend returned an error response",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"message", decoded.message(),
		)
		return apperrors.FromStatus(resp.StatusCode, decoded.message())
	}

	requestCount.WithLabelValues(endpoint, outcomeOK).Inc()
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return apperrors.Wrap(err, apperrors.ServerError, "failed to decode response")
	}
	return nil
}

// ===== auth =====

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, nil); err != nil {
		return nil, err
	}
	c.log.Infow("Login succeeded", "email", logger.MaskEmail(req.Email))
	return &resp, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error) {
	var resp types.SignupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the authenticated profile, the authoritative source for the shop
// category and its completeness flag.
func (c *Client) Me(ctx context.Context) (*types.UserProfile, error) {
	var profile types.UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &profile, nil); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateCategory persists the shop category on the account. The backend
// expects the token both as a Bearer header and the legacy x-auth-token.
func (c *Client) UpdateCategory(ctx context.Context, shopCategory string) error {
	token, err := c.tokens(ctx)
	if err != nil {
		return err
	}
	headers := map[string]string{"x-auth-token": token}
	return c.do(ctx, http.MethodPut, "/auth/update-category",
		types.UpdateCategoryRequest{ShopCategory: shopCategory}, nil, headers)
}

// OAuthRedirectURL returns the browser redirect target for a provider login.
func (c *Client) OAuthRedirectURL(provider string) string {
	return fmt.Sprintf("%s/auth/%s", c.baseURL, provider)
}

// CompleteSocialEmail finishes a social sign-in whose provider withheld an
// email. The pending token rides in the body, not the Authorization header.
func (c *Client) CompleteSocialEmail(ctx context.Context, req types.CompleteSocialEmailRequest) (*types.CompleteSocialEmailResponse, error) {
	var resp types.CompleteSocialEmailResponse
	if err := c.do(ctx, http.MethodPost, "/auth/social/complete-email", req, &resp, nil); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ===== products =====

// productsEnvelope tolerates the backend's two list shapes: a bare array or
// an object wrapping it.
type productsEnvelope struct {
	Products []types.Product `json:"products"`
}

func decodeProductList(payload json.RawMessage) []types.Product {
	trimmed := bytes.TrimLeft(payload, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []types.Product
		if err := json.Unmarshal(trimmed, &list); err == nil {
			return list
		}
		return nil
	}
	var envelope productsEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil {
		return envelope.Products
	}
	return nil
}

// ListProducts returns the caller's inventory.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products", nil, &raw, nil); err != nil {
		return nil, err
	}
	return decodeProductList(raw), nil
}

// CreateProduct adds a product to the inventory.
func (c *Client) CreateProduct(ctx context.Context, product types.Product) (*types.Product, error) {
	var created types.Product
	if err := c.do(ctx, http.MethodPost, "/products", product, &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces the product with the given id.
func (c *Client) UpdateProduct(ctx context.Context, id string, product types.Product) (*types.Product, error) {
	var updated types.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+id, product, &updated, nil); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes the product with the given id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil, nil)
}

// ProductHistory returns the inventory audit trail.
func (c *Client) ProductHistory(ctx context.Context) ([]types.ProductHistoryEntry, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/history", nil, &raw, nil); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []types.ProductHistoryEntry
		if err := json.Unmarshal(trimmed, &list); err == nil {
			return list, nil
		}
		return nil, nil
	}
	var envelope struct {
		History []types.ProductHistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		return envelope.History, nil
	}
	return nil, nil
}

// LowStockProducts returns products at or below their stock threshold.
func (c *Client) LowStockProducts(ctx context.Context) ([]types.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products/low-stock", nil, &raw, nil); err != nil {
		return nil, err
	}
	return decodeProductList(raw), nil
}

// ===== sales =====

// ListSales returns the caller's sales.
func (c *Client) ListSales(ctx context.Context) ([]types.Sale, error) {
	var sales []types.Sale
	if err := c.do(ctx, http.MethodGet, "/sales", nil, &sales, nil); err != nil {
		return nil, err
	}
	return sales, nil
}

// CreateSale records a sale without touching inventory.
func (c *Client) CreateSale(ctx context.Context, sale types.Sale) (*types.Sale, error) {
	var created types.Sale
	if err := c.do(ctx, http.MethodPost, "/sales", sale, &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

// AddSale records a sale and decrements inventory atomically on the backend.
func (c *Client) AddSale(ctx context.Context, sale types.Sale) (*types.Sale, error) {
	var created types.Sale
	if err := c.do(ctx, http.MethodPost, "/sales/add", sale, &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteSale removes the sale with the given id.
func (c *Client) DeleteSale(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sales/"+id, nil, nil, nil)
}

// ===== expenses =====

// ListExpenses returns the caller's expenses.
func (c *Client) ListExpenses(ctx context.Context) ([]types.Expense, error) {
	var expenses []types.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", nil, &expenses, nil); err != nil {
		return nil, err
	}
	return expenses, nil
}

// CreateExpense records an expense.
func (c *Client) CreateExpense(ctx context.Context, expense types.Expense) (*types.Expense, error) {
	var created types.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", expense, &created, nil); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateExpense replaces the expense with the given id.
func (c *Client) UpdateExpense(ctx context.Context, id string, expense types.Expense) (*types.Expense, error) {
	var updated types.Expense
	if err := c.do(ctx, http.MethodPut, "/expenses/"+id, expense, &updated, nil); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteExpense removes the expense with the given id.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+id, nil, nil, nil)
}

// ===== dashboard =====

// DashboardStats returns the aggregate counters for the dashboard header.
func (c *Client) DashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	var stats types.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats, nil); err != nil {
		return nil, err
	}
	return &stats, nil
}
