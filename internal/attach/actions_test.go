package attach

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verdala/va-client/internal/aptsource"
	"github.com/verdala/va-client/internal/cloud"
	"github.com/verdala/va-client/internal/config"
	"github.com/verdala/va-client/internal/contract"
	"github.com/verdala/va-client/internal/entitlement"
	"github.com/verdala/va-client/internal/status"
)

type fakeProvider struct {
	inst *cloud.Instance
	err  error
}

func (f *fakeProvider) Instance(ctx context.Context) (*cloud.Instance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.inst, nil
}

func awsInstance() *cloud.Instance {
	return &cloud.Instance{CloudType: "aws", ID: "i-123", IdentityDoc: json.RawMessage(`{}`)}
}

// contractServer serves both contract routes with a canned machine token.
func contractServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/clouds/aws/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"contractToken": "c-token"})
	})
	mux.HandleFunc("/v1/context/machines/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(contract.MachineToken{
			Token:       "m-token",
			AccountName: "Test Account",
			Entitlements: []contract.ServiceEntitlement{
				{Name: "esm-infra", Entitled: true, Directives: contract.Directives{
					AptURL: "https://esm.verdala.com/infra", Suites: []string{"vera-infra-security"}, Token: "repo-secret",
				}},
				{Name: "esm-apps", Entitled: true, Directives: contract.Directives{
					AptURL: "https://esm.verdala.com/apps", Suites: []string{"vera-apps-security"}, Token: "apps-secret",
				}},
				{Name: "ros", Entitled: true, Directives: contract.Directives{
					AptURL: "https://esm.verdala.com/ros", Suites: []string{"vera-ros-security"}, Token: "ros-secret",
				}},
			},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestActions(t *testing.T, contractURL string) *Actions {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.ContractURL = contractURL
	cfg.DataDir = filepath.Join(dir, "data")

	apt := aptsource.NewManager(aptsource.RealSystem{}, "vera")
	apt.SourcesDir = filepath.Join(dir, "sources.list.d")
	apt.AuthFile = filepath.Join(dir, "auth.conf.d", "90verdala-advantage")
	apt.PrefsDir = filepath.Join(dir, "preferences.d")

	cache := config.NewCache(config.NewPaths(cfg.DataDir))
	return NewActions(cfg, entitlement.NewRegistry(), contract.NewClient(contractURL), &fakeProvider{inst: awsInstance()}, apt, cache)
}

func attachMachine(t *testing.T, a *Actions) {
	t.Helper()
	_, err := a.CloudInstance(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.AttachWithToken(context.Background(), "c-token", false))
}

func TestCloudInstance_DisabledByConfig(t *testing.T) {
	a := newTestActions(t, "https://contracts.example.com")
	a.Config.Features.DisableAutoAttach = true

	_, err := a.CloudInstance(context.Background())
	var disabled *DisabledByConfigError
	require.ErrorAs(t, err, &disabled)
}

func TestCloudInstance_FactoryErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		factory *cloud.FactoryError
		check   func(t *testing.T, err error)
	}{
		{
			name:    "no cloud",
			factory: &cloud.FactoryError{Kind: cloud.NoCloud},
			check: func(t *testing.T, err error) {
				var unknown *UnknownCloudError
				require.ErrorAs(t, err, &unknown)
			},
		},
		{
			name:    "non viable",
			factory: &cloud.FactoryError{Kind: cloud.NonViable},
			check: func(t *testing.T, err error) {
				var unsupported *UnsupportedCloudError
				require.ErrorAs(t, err, &unsupported)
				require.Empty(t, unsupported.CloudType)
			},
		},
		{
			name:    "unsupported cloud type",
			factory: &cloud.FactoryError{Kind: cloud.UnsupportedCloud, CloudType: "azure"},
			check: func(t *testing.T, err error) {
				var unsupported *UnsupportedCloudError
				require.ErrorAs(t, err, &unsupported)
				require.Equal(t, "azure", unsupported.CloudType)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newTestActions(t, "https://contracts.example.com")
			a.Cloud = &fakeProvider{err: tc.factory}
			_, err := a.CloudInstance(context.Background())
			tc.check(t, err)
		})
	}
}

func TestCloudInstance_AttachedOnUnsupportedImageReportsAlreadyAttached(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	a.Cloud = &fakeProvider{err: &cloud.FactoryError{Kind: cloud.NoCloud}}
	_, err := a.CloudInstance(context.Background())
	var already *AlreadyAttachedError
	require.ErrorAs(t, err, &already)
	require.Equal(t, "i-123", already.InstanceID)
}

func TestDetachBeforeAutoAttach_NotAttachedIsNoop(t *testing.T) {
	a := newTestActions(t, "https://contracts.example.com")
	require.NoError(t, a.DetachBeforeAutoAttach(context.Background(), awsInstance()))
}

func TestDetachBeforeAutoAttach_SameInstanceFails(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	err := a.DetachBeforeAutoAttach(context.Background(), awsInstance())
	var already *AlreadyAttachedError
	require.ErrorAs(t, err, &already)
	require.Equal(t, "i-123", already.InstanceID)
}

func TestDetachBeforeAutoAttach_NewInstanceForcesDetach(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)
	require.True(t, a.Cache.HasMachineToken())

	moved := awsInstance()
	moved.ID = "i-456"
	require.NoError(t, a.DetachBeforeAutoAttach(context.Background(), moved))
	require.False(t, a.Cache.HasMachineToken())
}

func TestAutoAttachToken_ClientErrorMeansUnsupported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no contract", http.StatusBadRequest)
	}))
	defer srv.Close()
	a := newTestActions(t, srv.URL)

	_, err := a.AutoAttachToken(context.Background(), awsInstance())
	var unsupported *UnsupportedCloudError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, "aws", unsupported.CloudType)
}

func TestAutoAttachToken_Success(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)

	token, err := a.AutoAttachToken(context.Background(), awsInstance())
	require.NoError(t, err)
	require.Equal(t, "c-token", token)
}

func TestAttachWithToken_PersistsState(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	require.True(t, a.Cache.HasMachineToken())
	id, err := a.Cache.ReadInstanceID()
	require.NoError(t, err)
	require.Equal(t, "i-123", id)

	var snap status.Snapshot
	require.NoError(t, a.Cache.ReadStatusCache(&snap))
	require.True(t, snap.Attached)
}

func TestAttachWithToken_FailurePersistsStatusSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()
	a := newTestActions(t, srv.URL)

	err := a.AttachWithToken(context.Background(), "bad", false)
	require.Error(t, err)
	require.False(t, a.Cache.HasMachineToken())

	var snap status.Snapshot
	require.NoError(t, a.Cache.ReadStatusCache(&snap))
	require.False(t, snap.Attached)
}

func TestAttachWithToken_DefaultEnablement(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	_, err := a.CloudInstance(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.AttachWithToken(context.Background(), "c-token", true))
	require.True(t, a.Apt.IsEnabled("esm-infra"))
	require.True(t, a.Apt.IsEnabled("esm-apps"))
	require.False(t, a.Apt.IsEnabled("cis"))
}

func TestEnableService_NotAttached(t *testing.T) {
	a := newTestActions(t, "https://contracts.example.com")
	_, _, err := a.EnableService(context.Background(), "esm-infra", EnableOptions{AssumeYes: true})
	require.ErrorContains(t, err, "attach first")
}

func TestEnableService_NotEntitledReason(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	ok, reason, err := a.EnableService(context.Background(), "cis", EnableOptions{AssumeYes: true})
	require.NoError(t, err)
	require.False(t, ok)
	require.NotNil(t, reason)
	require.Equal(t, entitlement.ReasonNotEntitled, reason.Code)
}

func TestEnableService_RequiredServiceMissingReason(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	// ros requires esm-infra and esm-apps, neither enabled yet.
	ok, reason, err := a.EnableService(context.Background(), "ros", EnableOptions{AssumeYes: true, AllowBeta: true})
	require.NoError(t, err)
	require.False(t, ok)
	require.NotNil(t, reason)
	require.Equal(t, entitlement.ReasonRequiredNotEnabled, reason.Code)
}

func TestEnableService_Success(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	ok, reason, err := a.EnableService(context.Background(), "esm-infra", EnableOptions{AssumeYes: true})
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, reason)
	require.True(t, a.Apt.IsEnabled("esm-infra"))
}

func TestEnableService_AliasResolves(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	ok, _, err := a.EnableService(context.Background(), "esm", EnableOptions{AssumeYes: true})
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, a.Apt.IsEnabled("esm-infra"))
}

func TestDisableService_RemovesConfiguration(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	ok, _, err := a.EnableService(context.Background(), "esm-infra", EnableOptions{AssumeYes: true})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.DisableService(context.Background(), "esm-infra"))
	require.False(t, a.Apt.IsEnabled("esm-infra"))
}

func TestDetach_DisablesServicesAndClearsState(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)
	attachMachine(t, a)

	ok, _, err := a.EnableService(context.Background(), "esm-infra", EnableOptions{AssumeYes: true})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, a.Detach(context.Background()))
	require.False(t, a.Cache.HasMachineToken())
	require.False(t, a.Apt.IsEnabled("esm-infra"))

	id, err := a.Cache.ReadInstanceID()
	require.NoError(t, err)
	require.Empty(t, id)
}

func TestStatus_ReflectsAttachmentAndEnablement(t *testing.T) {
	srv := contractServer(t)
	a := newTestActions(t, srv.URL)

	snap := a.Status(false)
	require.False(t, snap.Attached)

	attachMachine(t, a)
	ok, _, err := a.EnableService(context.Background(), "esm-infra", EnableOptions{AssumeYes: true})
	require.NoError(t, err)
	require.True(t, ok)

	snap = a.Status(false)
	require.True(t, snap.Attached)
	for _, svc := range snap.Services {
		if svc.Name == "esm-infra" {
			require.True(t, svc.Enabled)
			require.True(t, svc.Entitled)
		}
	}
}
