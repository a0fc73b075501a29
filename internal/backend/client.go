package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/omidvar1986/smartoffice/internal/domain"
)

const maxResponseSize = 1 << 20 // 1MB

// ErrUnavailable marks transport failures, 5xx responses and an open circuit
// breaker. Callers may fall back to local state on it.
var ErrUnavailable = errors.New("shop backend unavailable")

// RejectedError is an explicit refusal from the backend (4xx). It is a real
// answer, callers must surface it instead of falling back.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("shop backend rejected request: status %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Django shop backend over REST.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name: "shop-backend",
		IsSuccessful: func(err error) bool {
			// A rejection is a valid answer, only unreachability trips the breaker.
			var rejected *RejectedError
			return err == nil || errors.As(err, &rejected)
		},
	})

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger,
	}
}

type CreateOrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItem `json:"items"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	CustomerAddress string            `json:"customer_address"`
	CustomerNotes   string            `json:"customer_notes,omitempty"`
}

type CreateOrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// CreateOrder submits the order. The idempotency key lets the backend
// de-duplicate a retried checkout that actually succeeded the first time.
func (c *Client) CreateOrder(ctx context.Context, order *CreateOrderRequest, idempotencyKey string) (*CreateOrderResponse, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/shop/api/create-order/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp CreateOrderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("malformed create-order response: %w", err)
	}
	return &resp, nil
}

type ReceiptUpload struct {
	File       io.Reader
	Filename   string
	AmountPaid float64
	Notes      string
}

// UploadReceipt attaches a payment receipt to one order. Single-shot: a
// failed upload must be retried from scratch by the caller.
func (c *Client) UploadReceipt(ctx context.Context, orderID int64, upload *ReceiptUpload) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("receipt_image", upload.Filename)
	if err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, upload.File); err != nil {
		return fmt.Errorf("failed to read receipt file: %w", err)
	}
	if err := mw.WriteField("amount_paid", strconv.FormatFloat(upload.AmountPaid, 'f', -1, 64)); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}
	if upload.Notes != "" {
		if err := mw.WriteField("payment_notes", upload.Notes); err != nil {
			return fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to build multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/shop/api/orders/%d/payment-receipts/", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, err = c.do(req)
	return err
}

type listOrdersResponse struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/shop/api/orders/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	data, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp listOrdersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("malformed orders response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("orders listing not successful")
	}
	return resp.Orders, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
		}

		switch {
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		case resp.StatusCode >= 400:
			return nil, &RejectedError{
				StatusCode: resp.StatusCode,
				Message:    strings.TrimSpace(string(body)),
			}
		}
		return body, nil
	})
	if err != nil {
		var rejected *RejectedError
		if errors.As(err, &rejected) || errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		// Breaker open or half-open limit reached.
		c.logger.Warn().Err(err).Str("url", req.URL.Path).Msg("circuit breaker refused request")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}
