package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaVerifier checks a client-supplied bot-mitigation token
// against an external verification service
type CaptchaVerifier struct {
	verifyURL string
	secret    string
	client    *http.Client
}

// NewCaptchaVerifier creates a verifier; returns nil when no verify
// URL is configured, which disables the check
func NewCaptchaVerifier(verifyURL, secret string) *CaptchaVerifier {
	if verifyURL == "" {
		return nil
	}
	return &CaptchaVerifier{
		verifyURL: verifyURL,
		secret:    secret,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify submits the token and reports whether the service accepted it
func (v *CaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("verification service returned status %d", resp.StatusCode)
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode verification response: %w", err)
	}
	return result.Success, nil
}
