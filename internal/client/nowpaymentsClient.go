package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"astro-readings/internal/apperr"
	"astro-readings/internal/config"
)

type NowpaymentsClient interface {
	// CreateInvoice posts an invoice request and returns the hosted payment
	// page URL to redirect the customer to. Settlement never comes back
	// synchronously; it arrives later via the signed IPN callback.
	CreateInvoice(ctx context.Context, orderRef string, amount decimal.Decimal, currency, returnBaseURL string) (*InvoiceResponse, error)

	// VerifyIPNSignature checks the HMAC-SHA512 of the exact raw request
	// body against the signature header, in constant time.
	VerifyIPNSignature(body []byte, sigHeader string) error
}

type nowpaymentsClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
	ipnSecret  string
}

type InvoiceResponse struct {
	InvoiceID  string
	InvoiceURL string
}

func NewNowpaymentsClient(cfg *config.Nowpayments) NowpaymentsClient {
	return &nowpaymentsClientImpl{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseApiURL: cfg.BaseApiURL,
		apiKey:     cfg.ApiKey,
		ipnSecret:  cfg.IPNSecret,
	}
}

func (c *nowpaymentsClientImpl) CreateInvoice(ctx context.Context, orderRef string, amount decimal.Decimal, currency, returnBaseURL string) (*InvoiceResponse, error) {
	payload := map[string]interface{}{
		"price_amount":   amount.InexactFloat64(),
		"price_currency": currency,
		"order_id":       orderRef,
		"success_url":    fmt.Sprintf("%s/thankyou", returnBaseURL),
		"cancel_url":     fmt.Sprintf("%s/booking", returnBaseURL),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal invoice payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/invoice", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.GatewayErr(fmt.Errorf("nowpayments invoice request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, apperr.GatewayErr(fmt.Errorf("nowpayments error %d: %s", resp.StatusCode, string(b)))
	}

	var result struct {
		ID         string `json:"id"`
		InvoiceURL string `json:"invoice_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode invoice response: %w", err)
	}
	if result.InvoiceURL == "" {
		return nil, apperr.GatewayErr(fmt.Errorf("nowpayments invoice response missing invoice_url"))
	}

	return &InvoiceResponse{
		InvoiceID:  result.ID,
		InvoiceURL: result.InvoiceURL,
	}, nil
}

func (c *nowpaymentsClientImpl) VerifyIPNSignature(body []byte, sigHeader string) error {
	if sigHeader == "" {
		return apperr.SignatureErr(fmt.Errorf("missing ipn signature header"))
	}

	mac := hmac.New(sha512.New, []byte(c.ipnSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(sigHeader)) != 1 {
		return apperr.SignatureErr(fmt.Errorf("ipn signature mismatch"))
	}

	return nil
}
