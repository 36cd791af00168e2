package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPProvider calls the identity service over its REST API.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountResponse struct {
	AccountID string `json:"account_id"`
}

func (p *HTTPProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	bodyBytes, err := json.Marshal(createAccountRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("identity: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/accounts", bytes.NewBuffer(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("identity: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("identity: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var accResp createAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&accResp); err != nil {
		return "", fmt.Errorf("identity: failed to decode response: %w", err)
	}
	if accResp.AccountID == "" {
		return "", fmt.Errorf("identity: empty account id in response")
	}
	return accResp.AccountID, nil
}

func (p *HTTPProvider) DeleteAccount(ctx context.Context, accountID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.baseURL+"/accounts/"+accountID, nil)
	if err != nil {
		return fmt.Errorf("identity: failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity: failed to perform delete request: %w", err)
	}
	defer resp.Body.Close()

	// 404 means the account is already gone; the compensation goal is met.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("identity: unexpected status %d on delete: %s", resp.StatusCode, string(body))
	}
	return nil
}
