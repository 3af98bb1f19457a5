package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// FetchAppToken acquires an app access token via the OAuth2
// client-credentials grant and installs it as the dispatcher's bearer
// token. This is a one-shot call outside the rate-limit gating; the
// token endpoint lives on a different host with its own quotas.
func (d *Dispatcher) FetchAppToken(ctx context.Context, clientSecret string) (string, error) {
	params := url.Values{
		"client_id":     {d.config.ClientID},
		"client_secret": {clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.config.AuthURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute token request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := readPayload(resp)
	if err != nil {
		return "", err
	}
	if payload.Status < 200 || payload.Status >= 300 {
		return "", &APIError{Status: payload.Status, Body: payload.Body, IsJSON: payload.IsJSON}
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(payload.Body, &body); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if strings.TrimSpace(body.AccessToken) == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	d.SetToken(body.AccessToken)
	return body.AccessToken, nil
}
