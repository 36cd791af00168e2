package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	c := NewClient(ClientConfig{
		BaseURL:      baseURL,
		MerchantCode: "DS24219",
		APIKey:       testAPIKey,
		CallbackURL:  "https://api.test/callback",
		ReturnURL:    "https://app.test/finish",
		Timeout:      2 * time.Second,
		ExpiryMins:   30,
	})
	c.now = func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return c
}

func TestListPaymentMethods(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant/paymentmethod/getpaymentmethod", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "DS24219", req["merchantcode"])
		assert.Equal(t, "2024-01-01 00:00:00", req["datetime"])
		// SHA256(merchantCode + amount + datetime + apiKey) with the frozen clock.
		assert.Equal(t, "599882384130a1114becc0fe0fa27d5e58dc8e0e2378972de85455f0b5c74137", req["signature"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"responseCode":    "00",
			"responseMessage": "SUCCESS",
			"paymentFee": []map[string]string{
				{"paymentMethod": "VC", "paymentName": "Credit Card", "totalFee": "2500"},
				{"paymentMethod": "BT", "paymentName": "Bank Transfer", "totalFee": "4000"},
			},
		})
	}))
	defer srv.Close()

	methods, err := newTestClient(srv.URL).ListPaymentMethods(context.Background(), 299000)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, PaymentMethod{Code: "VC", Name: "Credit Card", Fee: 2500}, methods[0])
	assert.Equal(t, int64(4000), methods[1].Fee)
}

func TestCreateTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant/v2/inquiry", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "DS24219", req["merchantCode"])
		assert.Equal(t, "EDU20240101ABCD1234", req["merchantOrderId"])
		assert.Equal(t, float64(299000), req["paymentAmount"])
		assert.Equal(t, "https://api.test/callback", req["callbackUrl"])
		assert.Equal(t, "https://app.test/finish", req["returnUrl"])
		assert.Equal(t, float64(30), req["expiryPeriod"])
		// MD5(merchantCode + merchantOrderId + paymentAmount + apiKey)
		assert.Equal(t, "e30bba3bfb5f88ab7755ab097ecfe4f5", req["signature"])

		json.NewEncoder(w).Encode(map[string]string{
			"merchantCode": "DS24219",
			"reference":    "DS242191234567890",
			"paymentUrl":   "https://pay.test/xyz",
			"vaNumber":     "8808001234567890",
			"statusCode":   "00",
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CreateTransaction(context.Background(), TransactionOrder{
		MerchantOrderID: "EDU20240101ABCD1234",
		Amount:          299000,
		PaymentMethod:   "VC",
		ProductDetails:  "Go Backend Course",
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@test.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "DS242191234567890", result.Reference)
	assert.Equal(t, "https://pay.test/xyz", result.PaymentURL)
	assert.Equal(t, "8808001234567890", result.VANumber)
}

func TestCreateTransaction_GatewayRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"statusCode":    "02",
			"statusMessage": "payment method unavailable",
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateTransaction(context.Background(), TransactionOrder{
		MerchantOrderID: "X", Amount: 100,
	})
	require.Error(t, err)
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestQueryStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant/transactionStatus", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ea81becdaec24dacc5e5951867db63ff", req["signature"])

		json.NewEncoder(w).Encode(map[string]string{
			"merchantOrderId": "EDU20240101ABCD1234",
			"reference":       "DS242191234567890",
			"amount":          "299000",
			"statusCode":      "01",
			"statusMessage":   "PENDING",
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).QueryStatus(context.Background(), "EDU20240101ABCD1234")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, result.StatusCode)
	assert.Equal(t, int64(299000), result.Amount)
}

func TestPost_Non2xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).QueryStatus(context.Background(), "EDU20240101ABCD1234")
	require.Error(t, err)
	var unavailable *UnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestPost_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).QueryStatus(ctx, "EDU20240101ABCD1234")
	assert.Error(t, err)
}
