package entitlement

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistry_CatalogIsValid(t *testing.T) {
	require.NotPanics(t, func() { NewRegistry() })
}

func TestByName_CanonicalName(t *testing.T) {
	reg := NewRegistry()
	ent, err := reg.ByName("esm-infra")
	require.NoError(t, err)
	require.Equal(t, "esm-infra", ent.Name)
}

func TestByName_Alias(t *testing.T) {
	reg := NewRegistry()

	ent, err := reg.ByName("esm")
	require.NoError(t, err)
	require.Equal(t, "esm-infra", ent.Name)

	ent, err = reg.ByName("usg")
	require.NoError(t, err)
	require.Equal(t, "cis", ent.Name)
}

func TestByName_Unknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ByName("nonexistent")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, []string{"nonexistent"}, notFound.Names)
}

func TestByName_CaseSensitive(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.ByName("ESM-Infra")
	require.Error(t, err)
}

func TestNewRegistryFrom_DuplicateNameRejected(t *testing.T) {
	_, err := NewRegistryFrom([]*Entitlement{
		{Name: "svc"},
		{Name: "other", Aliases: []string{"svc"}},
	})
	require.ErrorContains(t, err, "duplicate entitlement name")
}

func TestNewRegistryFrom_UnknownDependencyRejected(t *testing.T) {
	_, err := NewRegistryFrom([]*Entitlement{
		{Name: "svc", Required: []string{"ghost"}},
	})
	require.ErrorContains(t, err, "unknown service")
}

func TestValidServices_ExcludesBetaByDefault(t *testing.T) {
	reg := NewRegistry()
	names := reg.ValidServices(false, true)
	require.Contains(t, names, "esm-infra")
	require.Contains(t, names, "esm")
	require.NotContains(t, names, "realtime-kernel")
	require.NotContains(t, names, "ros")
}

func TestValidServices_AllowBetaIncludesBeta(t *testing.T) {
	reg := NewRegistry()
	names := reg.ValidServices(true, true)
	require.Contains(t, names, "realtime-kernel")
	require.Contains(t, names, "ros-updates")
}

func TestValidServices_PresentationNames(t *testing.T) {
	reg := NewRegistry()
	names := reg.ValidServices(false, false)
	require.Contains(t, names, "ESM Infra")
	require.NotContains(t, names, "esm-infra")
}
