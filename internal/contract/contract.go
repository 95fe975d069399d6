package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/verdala/va-client/internal/cloud"
	"github.com/verdala/va-client/internal/messages"
)

// API routes on the contract service.
const (
	autoAttachTokenRoute = "/v1/clouds/%s/token"
	machineTokenRoute    = "/v1/context/machines/token"
)

const requestTimeout = 30 * time.Second

// APIError is a non-2xx response from the contract service.
type APIError struct {
	Code int
	URL  string
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(messages.ContractStatusFmt, http.StatusText(e.Code), e.URL)
}

// Directives tell the client how to configure a service's apt repository.
type Directives struct {
	AptURL             string   `json:"aptURL"`
	Suites             []string `json:"suites"`
	Token              string   `json:"token"`
	AdditionalPackages []string `json:"additionalPackages,omitempty"`
}

// ServiceEntitlement is the contract service's view of one service.
type ServiceEntitlement struct {
	Name       string     `json:"type"`
	Entitled   bool       `json:"entitled"`
	Directives Directives `json:"directives"`
}

// MachineToken is the attach response: the token proving attachment plus
// the entitlement policy for this machine.
type MachineToken struct {
	Token        string               `json:"machineToken"`
	AccountID    string               `json:"accountID"`
	AccountName  string               `json:"accountName"`
	ExpiresAt    time.Time            `json:"expires"`
	Entitlements []ServiceEntitlement `json:"entitlements"`
}

// EntitlementFor returns the policy entry for the named service, if any.
func (t *MachineToken) EntitlementFor(name string) (*ServiceEntitlement, bool) {
	for i := range t.Entitlements {
		if t.Entitlements[i].Name == name {
			return &t.Entitlements[i], true
		}
	}
	return nil, false
}

// Client talks to the remote contract service. Transport-level retries
// (connection errors, 429, 5xx) are handled by retryablehttp; 4xx responses
// surface as APIError without retry.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// NewClient returns a contract client for the given base URL.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = requestTimeout
	rc.Logger = nil
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}
}

// RequestAutoAttachToken exchanges a cloud identity document for a contract
// token.
func (c *Client) RequestAutoAttachToken(ctx context.Context, inst *cloud.Instance) (string, error) {
	url := c.baseURL + fmt.Sprintf(autoAttachTokenRoute, inst.CloudType)
	var payload struct {
		ContractToken string `json:"contractToken"`
	}
	if err := c.post(ctx, url, "", []byte(inst.IdentityDoc), &payload); err != nil {
		return "", err
	}
	if strings.TrimSpace(payload.ContractToken) == "" {
		return "", fmt.Errorf(messages.ContractEmptyToken)
	}
	return payload.ContractToken, nil
}

// RequestMachineToken attaches with a contract token and returns the issued
// machine token and entitlement policy.
func (c *Client) RequestMachineToken(ctx context.Context, contractToken string) (*MachineToken, error) {
	url := c.baseURL + machineTokenRoute
	body, err := json.Marshal(map[string]string{"contractToken": contractToken})
	if err != nil {
		return nil, fmt.Errorf(messages.ContractRequestErrFmt, err)
	}
	var token MachineToken
	if err := c.post(ctx, url, contractToken, body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (c *Client) post(ctx context.Context, url string, bearer string, body []byte, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf(messages.ContractRequestErrFmt, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "va-client")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf(messages.ContractRequestErrFmt, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Code: resp.StatusCode, URL: url, Body: string(data)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf(messages.ContractDecodeErrFmt, err)
	}
	return nil
}
