package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/valog/shopbot/internal/domain/errors"
	"github.com/valog/shopbot/internal/domain/model"
)

// Client exposes operations against the payment provider. Both calls
// are idempotent from the provider's perspective: payment creation
// carries the order id as the Idempotence-Key, so a retried create
// returns the original intent instead of charging twice.
type Client interface {
	CreatePayment(ctx context.Context, order *model.Order, description, returnURL string) (*model.PaymentIntent, error)
	QueryStatus(ctx context.Context, providerRef string) (model.ProviderStatus, error)
}

// HTTPClient implements Client via the provider's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	shopID     string
	secretKey  string
	httpClient *http.Client
	logger     *slog.Logger
}

type amountPayload struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmationPayload struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type createRequest struct {
	Amount       amountPayload       `json:"amount"`
	Capture      bool                `json:"capture"`
	Confirmation confirmationPayload `json:"confirmation"`
	Description  string              `json:"description,omitempty"`
	Metadata     map[string]string   `json:"metadata,omitempty"`
}

type paymentResponse struct {
	ID           string               `json:"id"`
	Status       string               `json:"status"`
	Confirmation *confirmationPayload `json:"confirmation,omitempty"`
}

type errorResponse struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NewHTTPClient creates the provider client with default timeout.
func NewHTTPClient(baseURL, shopID, secretKey string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL:   parsed,
		shopID:    shopID,
		secretKey: secretKey,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// CreatePayment registers a payment intent for the order.
func (c *HTTPClient) CreatePayment(ctx context.Context, order *model.Order, description, returnURL string) (*model.PaymentIntent, error) {
	payload := createRequest{
		Amount: amountPayload{
			Value:    strconv.FormatFloat(order.Amount, 'f', 2, 64),
			Currency: order.Currency,
		},
		Capture: true,
		Confirmation: confirmationPayload{
			Type:      "redirect",
			ReturnURL: returnURL,
		},
		Description: description,
		Metadata:    map[string]string{"order_id": order.ID.String()},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v3/payments")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", order.ID.String())
	req.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := c.decodePayment(resp)
	if err != nil {
		return nil, err
	}

	status, err := mapStatus(data.Status)
	if err != nil {
		return nil, err
	}

	intent := &model.PaymentIntent{ProviderRef: data.ID, Status: status}
	if data.Confirmation != nil {
		intent.ConfirmationURL = data.Confirmation.ConfirmationURL
	}
	return intent, nil
}

// QueryStatus fetches the current payment status from the provider.
func (c *HTTPClient) QueryStatus(ctx context.Context, providerRef string) (model.ProviderStatus, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v3/payments/", providerRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.shopID, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := c.decodePayment(resp)
	if err != nil {
		return "", err
	}
	return mapStatus(data.Status)
}

func (c *HTTPClient) decodePayment(resp *http.Response) (*paymentResponse, error) {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainErrors.ErrGatewayUnavailable, err)
		}
		var data paymentResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, err
		}
		return &data, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, domainErrors.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn("gateway unavailable", slog.Int("status", resp.StatusCode))
		return nil, domainErrors.ErrGatewayUnavailable
	default:
		body, _ := io.ReadAll(resp.Body)
		var data errorResponse
		_ = json.Unmarshal(body, &data)
		c.logger.Error("gateway rejected request", slog.Int("status", resp.StatusCode), slog.String("code", data.Code))
		return nil, domainErrors.GatewayRejectedError{Code: data.Code, Description: data.Description}
	}
}

func mapStatus(status string) (model.ProviderStatus, error) {
	switch status {
	case "pending", "waiting_for_capture":
		return model.ProviderStatusPending, nil
	case "succeeded":
		return model.ProviderStatusSucceeded, nil
	case "canceled":
		return model.ProviderStatusCanceled, nil
	case "failed":
		return model.ProviderStatusFailed, nil
	default:
		return "", fmt.Errorf("unknown provider status %q", status)
	}
}
