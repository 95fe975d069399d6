package attach

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/verdala/va-client/internal/aptsource"
	"github.com/verdala/va-client/internal/cloud"
	"github.com/verdala/va-client/internal/config"
	"github.com/verdala/va-client/internal/contract"
	"github.com/verdala/va-client/internal/entitlement"
	"github.com/verdala/va-client/internal/messages"
	"github.com/verdala/va-client/internal/status"
)

// Actions is the production System implementation: it wires the contract
// client, cloud detection, apt configuration, and the local state cache.
type Actions struct {
	Config   *config.Config
	Registry *entitlement.Registry
	Client   *contract.Client
	Cloud    cloud.Provider
	Apt      *aptsource.Manager
	Cache    *config.Cache

	// AptOptions is applied to repository writes (dry-run support).
	AptOptions aptsource.Options

	// instance records the detected identity for persistence at attach
	// time.
	instance *cloud.Instance
}

// NewActions builds the production collaborator set.
func NewActions(cfg *config.Config, registry *entitlement.Registry, client *contract.Client, provider cloud.Provider, apt *aptsource.Manager, cache *config.Cache) *Actions {
	return &Actions{
		Config:   cfg,
		Registry: registry,
		Client:   client,
		Cloud:    provider,
		Apt:      apt,
		Cache:    cache,
	}
}

// CloudInstance detects the cloud identity, mapping detection failures to
// the user-facing error kinds.
func (a *Actions) CloudInstance(ctx context.Context) (*cloud.Instance, error) {
	if a.Config.Features.DisableAutoAttach {
		return nil, &DisabledByConfigError{}
	}
	inst, err := a.Cloud.Instance(ctx)
	if err != nil {
		var factory *cloud.FactoryError
		if errors.As(err, &factory) {
			if a.Cache.HasMachineToken() {
				// Attached on an image without auto-attach support: report
				// the existing attachment rather than a detection failure.
				id, _ := a.Cache.ReadInstanceID()
				return nil, &AlreadyAttachedError{InstanceID: id}
			}
			switch factory.Kind {
			case cloud.NonViable:
				return nil, &UnsupportedCloudError{}
			case cloud.UnsupportedCloud:
				return nil, &UnsupportedCloudError{CloudType: factory.CloudType}
			default:
				return nil, &UnknownCloudError{}
			}
		}
		return nil, err
	}
	a.instance = inst
	return inst, nil
}

// DetachBeforeAutoAttach clears any prior attachment. Identical instance
// identity means the machine is already attached here; a different identity
// means the image moved and the old attachment is forcibly detached.
func (a *Actions) DetachBeforeAutoAttach(ctx context.Context, inst *cloud.Instance) error {
	if !a.Cache.HasMachineToken() {
		return nil
	}
	prev, err := a.Cache.ReadInstanceID()
	if err != nil {
		return err
	}
	if prev == inst.ID {
		return &AlreadyAttachedError{InstanceID: inst.ID}
	}
	if err := a.Detach(ctx); err != nil {
		return &DetachFailedError{Err: err}
	}
	return nil
}

// AutoAttachToken requests a contract token for the cloud identity. A 4xx
// from the contract service means this cloud/image has no auto-attach
// contract and converts to UnsupportedCloudError.
func (a *Actions) AutoAttachToken(ctx context.Context, inst *cloud.Instance) (string, error) {
	token, err := a.Client.RequestAutoAttachToken(ctx, inst)
	if err != nil {
		var apiErr *contract.APIError
		if errors.As(err, &apiErr) && apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError {
			return "", &UnsupportedCloudError{CloudType: inst.CloudType}
		}
		return "", err
	}
	return token, nil
}

// AttachWithToken exchanges the contract token for a machine token and
// persists it. On failure the local status cache is still refreshed so a
// later status read sees a consistent snapshot. With allowEnable the
// contract's entitled default services are enabled as part of the attach.
func (a *Actions) AttachWithToken(ctx context.Context, token string, allowEnable bool) error {
	machineToken, err := a.Client.RequestMachineToken(ctx, token)
	if err != nil {
		a.persistStatus()
		return err
	}
	if err := a.Cache.WriteMachineToken(machineToken); err != nil {
		return err
	}
	if a.instance != nil {
		if err := a.Cache.WriteInstanceID(a.instance.ID); err != nil {
			return err
		}
	}

	if allowEnable {
		if err := a.enableDefaults(ctx, machineToken); err != nil {
			a.persistStatus()
			return err
		}
	}
	a.persistStatus()
	return nil
}

// enableDefaults enables every entitled non-beta service in dependency
// order.
func (a *Actions) enableDefaults(ctx context.Context, machineToken *contract.MachineToken) error {
	order, err := a.Registry.EnableOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		ent, lookupErr := a.Registry.ByName(name)
		if lookupErr != nil {
			return lookupErr
		}
		if ent.Beta && !a.Config.Features.AllowBeta {
			continue
		}
		policy, ok := machineToken.EntitlementFor(name)
		if !ok || !policy.Entitled {
			continue
		}
		if err := a.Apt.EnableService(name, policy.Directives, a.AptOptions); err != nil {
			return err
		}
	}
	return nil
}

// EnableService enables one resolved service. It returns a structured
// reason for deterministic refusals (not entitled, unmet requirement) and
// an error for transient failures.
func (a *Actions) EnableService(ctx context.Context, name string, opts EnableOptions) (bool, *entitlement.CanEnableFailure, error) {
	ent, err := a.Registry.ByName(name)
	if err != nil {
		return false, nil, err
	}
	var machineToken contract.MachineToken
	if err := a.Cache.ReadMachineToken(&machineToken); err != nil {
		if os.IsNotExist(err) {
			return false, nil, fmt.Errorf(messages.MachineTokenMissingErr)
		}
		return false, nil, err
	}

	policy, ok := machineToken.EntitlementFor(ent.Name)
	if !ok || !policy.Entitled {
		return false, &entitlement.CanEnableFailure{
			Code:    entitlement.ReasonNotEntitled,
			Message: fmt.Sprintf("subscription is not entitled to %s", ent.Name),
		}, nil
	}
	for _, required := range ent.Required {
		if !a.Apt.IsEnabled(required) {
			return false, &entitlement.CanEnableFailure{
				Code:    entitlement.ReasonRequiredNotEnabled,
				Message: fmt.Sprintf("%s requires %s to be enabled first", ent.Name, required),
			}, nil
		}
	}

	if err := a.Apt.EnableService(ent.Name, policy.Directives, a.AptOptions); err != nil {
		return false, nil, err
	}
	a.persistStatus()
	return true, nil, nil
}

// DisableService removes one service's local configuration.
func (a *Actions) DisableService(ctx context.Context, name string) error {
	ent, err := a.Registry.ByName(name)
	if err != nil {
		return err
	}
	var directives contract.Directives
	var machineToken contract.MachineToken
	if err := a.Cache.ReadMachineToken(&machineToken); err == nil {
		if policy, ok := machineToken.EntitlementFor(ent.Name); ok {
			directives = policy.Directives
		}
	}
	if err := a.Apt.DisableService(ent.Name, directives, a.AptOptions); err != nil {
		return err
	}
	a.persistStatus()
	return nil
}

// Detach disables every enabled service in dependency order and removes
// the machine state.
func (a *Actions) Detach(ctx context.Context) error {
	order, err := a.Registry.DisableOrder()
	if err != nil {
		return err
	}
	for _, name := range order {
		if !a.Apt.IsEnabled(name) {
			continue
		}
		if err := a.DisableService(ctx, name); err != nil {
			return fmt.Errorf(messages.DetachServiceErrFmt, name, err)
		}
	}
	if err := a.Cache.DeleteMachineToken(); err != nil {
		return err
	}
	if err := a.Cache.DeleteInstanceID(); err != nil {
		return err
	}
	a.persistStatus()
	return nil
}

// Status builds the current snapshot without persisting it.
func (a *Actions) Status(showBeta bool) status.Snapshot {
	var token *contract.MachineToken
	var machineToken contract.MachineToken
	if err := a.Cache.ReadMachineToken(&machineToken); err == nil {
		token = &machineToken
	}
	return status.Build(a.Registry, token, a.Apt.IsEnabled, showBeta)
}

// persistStatus refreshes the status cache, best-effort: callers on error
// paths still want the last consistent snapshot on disk.
func (a *Actions) persistStatus() {
	snap := a.Status(true)
	_ = a.Cache.WriteStatusCache(snap)
}
