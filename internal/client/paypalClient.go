package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"astro-readings/internal/apperr"
	"astro-readings/internal/config"
	"astro-readings/internal/model"
)

type PaypalClient interface {
	// CreateOrder creates a remote payment intent carrying orderRef as the
	// custom_id, so webhooks can be routed back to the local order.
	CreateOrder(ctx context.Context, orderRef string, amount decimal.Decimal, currency, returnBaseURL string) (*CreateOrderResponse, error)

	// CaptureOrder captures an approved paypal order. A remote status other
	// than COMPLETED is a gateway error, never a settlement.
	CaptureOrder(ctx context.Context, paypalOrderID string) (*CaptureResult, error)

	// VerifyWebhookSignature forwards the transmission headers plus the raw
	// event body to paypal's verification endpoint and fails unless the
	// result is explicitly SUCCESS.
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	webhookID          string
}

type CreateOrderResponse struct {
	PaypalOrderID string
	ApproveURL    string
}

type CaptureResult struct {
	Status     string
	Amount     decimal.NullDecimal
	Currency   string
	PayerName  *string
	PayerEmail *string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		webhookID:          paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("empty access token (status %d)", resp.StatusCode)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, orderRef string, amount decimal.Decimal, currency, returnBaseURL string) (*CreateOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, apperr.GatewayErr(fmt.Errorf("get paypal access token: %w", err))
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"custom_id": orderRef,
				"amount": map[string]string{
					"currency_code": currency,
					"value":         amount.StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": fmt.Sprintf("%s/api/paypal/success", returnBaseURL),
			"cancel_url": fmt.Sprintf("%s/booking", returnBaseURL),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.GatewayErr(fmt.Errorf("paypal create order request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, apperr.GatewayErr(fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b)))
	}

	var result model.PaypalOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &CreateOrderResponse{
		PaypalOrderID: result.ID,
		ApproveURL:    extractApproveURL(result.Links),
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, paypalOrderID string) (*CaptureResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, apperr.GatewayErr(fmt.Errorf("get paypal access token: %w", err))
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, paypalOrderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.GatewayErr(fmt.Errorf("paypal capture request failed: %w", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.GatewayErr(fmt.Errorf("paypal capture failed: status=%d body=%s", resp.StatusCode, string(body)))
	}

	var result model.PaypalOrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	// An ambiguous (non-terminal) status must not be treated as settlement.
	if result.Status != "COMPLETED" {
		return nil, apperr.GatewayErr(fmt.Errorf("paypal capture not completed: status=%s", result.Status))
	}

	return captureResultFrom(&result), nil
}

func captureResultFrom(result *model.PaypalOrderResult) *CaptureResult {
	out := &CaptureResult{Status: result.Status}

	if len(result.PurchaseUnits) > 0 {
		captures := result.PurchaseUnits[0].Payments.Captures
		if len(captures) > 0 {
			amt := captures[0].Amount
			if d, err := decimal.NewFromString(amt.Value); err == nil {
				out.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
			}
			out.Currency = amt.Currency
		}
	}

	if name := result.Payer.Name.Full(); name != "" {
		out.PayerName = &name
	}
	if result.Payer.Email != "" {
		email := result.Payer.Email
		out.PayerEmail = &email
	}

	return out
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return apperr.GatewayErr(fmt.Errorf("get paypal access token: %w", err))
	}

	payload := map[string]interface{}{
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.GatewayErr(fmt.Errorf("paypal verify request: %w", err))
	}
	defer resp.Body.Close()

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode verification response: %w", err)
	}

	if result.VerificationStatus != "SUCCESS" {
		return apperr.SignatureErr(fmt.Errorf("paypal webhook verification: %s", result.VerificationStatus))
	}

	return nil
}

func extractApproveURL(links []model.PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
