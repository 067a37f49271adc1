// Package generator is the outbound client for the invoice generation
// endpoint. The endpoint does the heavy lifting (PDF, email, logging); this
// side only delivers the structured payload and classifies the outcome.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rayypan/invoicegeneration/internal/domain/enum"
)

// ItemPayload is one invoice line on the wire.
type ItemPayload struct {
	Name         string            `json:"name"`
	Price        float64           `json:"price"`
	Quantity     int               `json:"quantity"`
	Discount     float64           `json:"discount"`
	DiscountType enum.DiscountType `json:"discountType"`
}

// InvoicePayload matches the generation endpoint's request DTO field for
// field.
type InvoicePayload struct {
	CustomerName    string `json:"customerName"`
	CustomerPhone   string `json:"customerPhone"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerAddress string `json:"customerAddress"`

	InvoiceStatus enum.InvoiceStatus `json:"invoiceStatus"`
	OwnerMessage  string             `json:"ownerMessage"`
	InvoiceDate   string             `json:"invoiceDate"`

	Items []ItemPayload `json:"items"`

	ApplyOverallDiscount bool              `json:"applyOverallDiscount"`
	OverallDiscount      float64           `json:"overallDiscount"`
	OverallDiscountType  enum.DiscountType `json:"overallDiscountType"`

	AdjustmentAmount     float64           `json:"adjustmentAmount"`
	AdjustmentAmountType enum.DiscountType `json:"adjustmentAmountType"`

	PaymentMethod  enum.PaymentMethod `json:"paymentMethod"`
	PaymentDetails string             `json:"paymentDetails"`

	IssuedBy      string `json:"issuedBy"`
	EnableLogging bool   `json:"enableLogging"`
}

// RejectedError is a non-2xx response from the generation endpoint. The body
// is the server's human-readable message.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("invoice generation rejected (status %d): %s", e.StatusCode, e.Body)
}

// TransportError is a network-level failure: the request never produced a
// response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("invoice generation unreachable: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client posts invoice payloads to the generation endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// Config holds configuration for the generator client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a new generation endpoint client.
func NewClient(cfg *Config, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Generate delivers the payload and returns the server's success message.
// Failures are classified: *TransportError when the endpoint was unreachable,
// *RejectedError for any non-2xx response.
func (c *Client) Generate(ctx context.Context, payload *InvoicePayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal invoice payload: %w", err)
	}

	url := fmt.Sprintf("%s/invoice/generate", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).Warn("invoice generation request failed")
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"latency": time.Since(start),
	}).Info("invoice generation response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RejectedError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return string(respBody), nil
}
