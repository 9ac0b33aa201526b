package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spec-kit/bookstore-service/internal/config"
)

// ProductFields carries the catalog attributes registered with the processor.
type ProductFields struct {
	Title       string
	Description string
	Category    string
	PriceCents  int64
}

// Client registers catalog products with the payment processor. CreateProduct
// must be idempotent under repeated calls with the same correlation key: the
// processor returns the existing external id instead of creating a duplicate.
type Client interface {
	CreateProduct(ctx context.Context, fields ProductFields, correlationKey string) (string, error)
}

type httpClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

// NewHTTPClient builds a client for the processor's form-encoded product API.
func NewHTTPClient(cfg config.PaymentConfig) Client {
	return &httpClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

type productResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *httpClient) CreateProduct(ctx context.Context, fields ProductFields, correlationKey string) (string, error) {
	form := url.Values{}
	form.Set("name", fields.Title)
	form.Set("description", fields.Description)
	form.Set("default_price_data[currency]", "usd")
	form.Set("default_price_data[unit_amount]", strconv.FormatInt(fields.PriceCents, 10))
	form.Set("metadata[category]", fields.Category)
	form.Set("metadata[catalog_id]", correlationKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/products", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	// The processor deduplicates on this key, making retries safe.
	req.Header.Set("Idempotency-Key", correlationKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("processor request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("processor response: %w", err)
	}

	var parsed productResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("processor response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("processor rejected product: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("processor rejected product: status %d", resp.StatusCode)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("processor response missing product id")
	}
	return parsed.ID, nil
}
