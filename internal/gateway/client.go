package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// datetimeLayout is the timestamp format the gateway requires in signed
// payment-method requests.
const datetimeLayout = "2006-01-02 15:04:05"

// UnavailableError marks transport failures and non-2xx gateway responses.
// Services translate it to the GATEWAY_UNAVAILABLE app error.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("gateway: %s unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Client talks to the payment gateway API. All requests are signed via the
// signature table and bounded by the configured HTTP timeout.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	merchantCode string
	apiKey       string
	callbackURL  string
	returnURL    string
	expiryMins   int

	// now is swappable in tests; the datetime feeds the signature.
	now func() time.Time
}

type ClientConfig struct {
	BaseURL      string
	MerchantCode string
	APIKey       string
	CallbackURL  string
	ReturnURL    string
	Timeout      time.Duration
	ExpiryMins   int
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	expiry := cfg.ExpiryMins
	if expiry <= 0 {
		expiry = 60
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      cfg.BaseURL,
		merchantCode: cfg.MerchantCode,
		apiKey:       cfg.APIKey,
		callbackURL:  cfg.CallbackURL,
		returnURL:    cfg.ReturnURL,
		expiryMins:   expiry,
		now:          time.Now,
	}
}

// MerchantCode exposes the configured merchant code for callback validation.
func (c *Client) MerchantCode() string { return c.merchantCode }

// APIKey exposes the shared secret for callback validation.
func (c *Client) APIKey() string { return c.apiKey }

// ListPaymentMethods returns the payment channels available for the given
// amount. Read-only: the caller may retry freely.
func (c *Client) ListPaymentMethods(ctx context.Context, amount int64) ([]PaymentMethod, error) {
	datetime := c.now().Format(datetimeLayout)
	signature, err := Sign(OpPaymentMethods, SignatureFields{
		MerchantCode: c.merchantCode,
		Amount:       strconv.FormatInt(amount, 10),
		Datetime:     datetime,
	}, c.apiKey)
	if err != nil {
		return nil, err
	}

	reqBody := paymentMethodRequest{
		MerchantCode: c.merchantCode,
		Amount:       amount,
		Datetime:     datetime,
		Signature:    signature,
	}

	var resp paymentMethodResponse
	if err := c.post(ctx, "listPaymentMethods", "/merchant/paymentmethod/getpaymentmethod", reqBody, &resp); err != nil {
		return nil, err
	}

	if resp.ResponseCode != StatusSuccess {
		return nil, &UnavailableError{Op: "listPaymentMethods", Err: fmt.Errorf("response code %s: %s", resp.ResponseCode, resp.ResponseMessage)}
	}

	methods := make([]PaymentMethod, 0, len(resp.PaymentFee))
	for _, entry := range resp.PaymentFee {
		fee, _ := strconv.ParseInt(entry.TotalFee, 10, 64)
		methods = append(methods, PaymentMethod{
			Code: entry.PaymentMethod,
			Name: entry.PaymentName,
			Fee:  fee,
		})
	}
	return methods, nil
}

// CreateTransaction registers a transaction at the gateway. Mutating and not
// known to be idempotent: the client never retries, and the caller must reuse
// the same merchant order id if it retries at its own layer.
func (c *Client) CreateTransaction(ctx context.Context, order TransactionOrder) (*TransactionResult, error) {
	signature, err := Sign(OpCreateTransaction, SignatureFields{
		MerchantCode:    c.merchantCode,
		MerchantOrderID: order.MerchantOrderID,
		Amount:          strconv.FormatInt(order.Amount, 10),
	}, c.apiKey)
	if err != nil {
		return nil, err
	}

	reqBody := createTransactionRequest{
		MerchantCode:    c.merchantCode,
		PaymentAmount:   order.Amount,
		PaymentMethod:   order.PaymentMethod,
		MerchantOrderID: order.MerchantOrderID,
		ProductDetails:  order.ProductDetails,
		CustomerVaName:  order.CustomerName,
		Email:           order.CustomerEmail,
		CallbackURL:     c.callbackURL,
		ReturnURL:       c.returnURL,
		ExpiryPeriod:    c.expiryMins,
		Signature:       signature,
	}

	var resp createTransactionResponse
	if err := c.post(ctx, "createTransaction", "/merchant/v2/inquiry", reqBody, &resp); err != nil {
		return nil, err
	}

	if resp.StatusCode != StatusSuccess {
		return nil, &UnavailableError{Op: "createTransaction", Err: fmt.Errorf("status code %s: %s", resp.StatusCode, resp.StatusMessage)}
	}

	return &TransactionResult{
		Reference:  resp.Reference,
		PaymentURL: resp.PaymentURL,
		VANumber:   resp.VANumber,
		QRString:   resp.QRString,
		StatusCode: resp.StatusCode,
	}, nil
}

// QueryStatus asks the gateway for the authoritative transaction state.
// Read-only safety net for lost callbacks.
func (c *Client) QueryStatus(ctx context.Context, merchantOrderID string) (*StatusResult, error) {
	signature, err := Sign(OpQueryStatus, SignatureFields{
		MerchantCode:    c.merchantCode,
		MerchantOrderID: merchantOrderID,
	}, c.apiKey)
	if err != nil {
		return nil, err
	}

	reqBody := queryStatusRequest{
		MerchantCode:    c.merchantCode,
		MerchantOrderID: merchantOrderID,
		Signature:       signature,
	}

	var resp queryStatusResponse
	if err := c.post(ctx, "queryStatus", "/merchant/transactionStatus", reqBody, &resp); err != nil {
		return nil, err
	}

	amount, _ := strconv.ParseInt(resp.Amount, 10, 64)
	return &StatusResult{
		Reference:     resp.Reference,
		StatusCode:    resp.StatusCode,
		StatusMessage: resp.StatusMessage,
		Amount:        amount,
	}, nil
}

func (c *Client) post(ctx context.Context, op, endpoint string, reqBody, respBody interface{}) error {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("gateway: failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(bodyBytes))
	if err != nil {
		return fmt.Errorf("gateway: failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &UnavailableError{Op: op, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return &UnavailableError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
