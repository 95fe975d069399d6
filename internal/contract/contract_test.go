package contract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verdala/va-client/internal/cloud"
)

func testInstance() *cloud.Instance {
	return &cloud.Instance{
		CloudType:   "aws",
		ID:          "i-123",
		IdentityDoc: json.RawMessage(`{"cloud":"aws","serial":"i-123"}`),
	}
}

func newTestClient(url string) *Client {
	c := NewClient(url)
	c.http.RetryMax = 0
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond
	return c
}

func TestRequestAutoAttachToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/clouds/aws/token", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(map[string]string{"contractToken": "c-token"})
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).RequestAutoAttachToken(context.Background(), testInstance())
	require.NoError(t, err)
	require.Equal(t, "c-token", token)
}

func TestRequestAutoAttachToken_EmptyTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"contractToken": " "})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).RequestAutoAttachToken(context.Background(), testInstance())
	require.ErrorContains(t, err, "empty token")
}

func TestRequestAutoAttachToken_ClientErrorSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no contract for image", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).RequestAutoAttachToken(context.Background(), testInstance())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Code)
}

func TestRequestMachineToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/context/machines/token", r.URL.Path)
		require.Equal(t, "Bearer c-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(MachineToken{
			Token:       "m-token",
			AccountID:   "acc-1",
			AccountName: "Test Account",
			Entitlements: []ServiceEntitlement{
				{Name: "esm-infra", Entitled: true, Directives: Directives{AptURL: "https://esm.verdala.com"}},
			},
		})
	}))
	defer srv.Close()

	token, err := newTestClient(srv.URL).RequestMachineToken(context.Background(), "c-token")
	require.NoError(t, err)
	require.Equal(t, "m-token", token.Token)

	ent, ok := token.EntitlementFor("esm-infra")
	require.True(t, ok)
	require.True(t, ent.Entitled)

	_, ok = token.EntitlementFor("missing")
	require.False(t, ok)
}

func TestRequestMachineToken_ServerErrorRetriedThenSurfaced(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.http.RetryMax = 1

	_, err := c.RequestMachineToken(context.Background(), "c-token")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusServiceUnavailable, apiErr.Code)
	require.Equal(t, 2, calls)
}
