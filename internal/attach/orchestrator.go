package attach

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/verdala/va-client/internal/cloud"
	"github.com/verdala/va-client/internal/entitlement"
)

// Defaults for the auto-attach retry loop.
const (
	DefaultRetries       = 3
	DefaultRetryInterval = 2 * time.Second
)

// EnableOptions adjust a single service enablement.
type EnableOptions struct {
	AssumeYes bool
	AllowBeta bool
}

// System is the collaborator surface the orchestrator drives. The real
// implementation is Actions; tests substitute a fake.
type System interface {
	// CloudInstance detects the machine's cloud identity.
	CloudInstance(ctx context.Context) (*cloud.Instance, error)
	// DetachBeforeAutoAttach clears a conflicting prior attachment. Same
	// instance identity fails with AlreadyAttachedError; a different one
	// triggers a forced detach.
	DetachBeforeAutoAttach(ctx context.Context, inst *cloud.Instance) error
	// AutoAttachToken obtains a contract token for the cloud identity.
	AutoAttachToken(ctx context.Context, inst *cloud.Instance) (string, error)
	// AttachWithToken performs the attach handshake. With allowEnable the
	// contract's default services are enabled as part of the attach.
	AttachWithToken(ctx context.Context, token string, allowEnable bool) error
	// EnableService enables one resolved service. A false result with a nil
	// reason is a transient failure; a structured reason is deterministic.
	EnableService(ctx context.Context, name string, opts EnableOptions) (bool, *entitlement.CanEnableFailure, error)
}

// Options are the caller-supplied inputs to FullAutoAttach.
type Options struct {
	// Enable lists non-beta services to enable after attaching.
	Enable []string
	// EnableBeta lists beta services to enable after attaching.
	EnableBeta []string
	// Retries bounds the attempt loop; values <= 0 mean DefaultRetries.
	Retries int
}

// Orchestrator runs the full auto-attach flow: attach once, then retry the
// enable pass until every requested service is enabled or the attempt
// budget runs out.
type Orchestrator struct {
	registry *entitlement.Registry
	sys      System
	// RetryInterval is the fixed sleep between attempts.
	RetryInterval time.Duration
}

// NewOrchestrator returns an orchestrator over the given registry and
// collaborators.
func NewOrchestrator(registry *entitlement.Registry, sys System) *Orchestrator {
	return &Orchestrator{
		registry:      registry,
		sys:           sys,
		RetryInterval: DefaultRetryInterval,
	}
}

// errEnableIncomplete marks an attempt that enabled fewer services than
// requested for no deterministic reason; the loop retries it.
var errEnableIncomplete = errors.New("not all requested services were enabled")

// attachState is the per-call loop state. alreadyAttached latches after the
// first successful attach so the network handshake never reruns on retries.
type attachState struct {
	alreadyAttached bool
	retryable       bool
}

// FullAutoAttach performs the cloud-identity attach and enables the
// requested services. It returns nil on full success or one of the error
// kinds in errors.go. Fail-fast errors (unknown names, beta through the
// non-beta list, structured enable failures, attach-phase errors) abort
// without retrying; only an incomplete enable pass is retried.
func (o *Orchestrator) FullAutoAttach(ctx context.Context, opts Options) error {
	retries := opts.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}

	// Beta services must arrive through EnableBeta, never silently via the
	// plain list. This is a pre-flight check: it fails before any network
	// call is made.
	if len(opts.Enable) > 0 && o.registry.IsAnyBeta(opts.Enable) {
		return &BetaServicesError{Names: o.betaNames(opts.Enable)}
	}

	state := &attachState{}
	operation := func() error {
		return o.attempt(ctx, opts, state)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.RetryInterval), uint64(retries-1)),
		ctx,
	)
	err := backoff.Retry(operation, policy)
	if err == nil {
		return nil
	}
	if state.retryable {
		return &RetryExhaustedError{Attempts: retries, Err: err}
	}
	return err
}

// attempt runs one loop iteration: the attach phase (at most once per
// call), then the enable pass over the resolved request.
func (o *Orchestrator) attempt(ctx context.Context, opts Options, state *attachState) error {
	state.retryable = false

	if !state.alreadyAttached {
		inst, err := o.sys.CloudInstance(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := o.sys.DetachBeforeAutoAttach(ctx, inst); err != nil {
			return backoff.Permanent(err)
		}
		// With nothing to enable explicitly, the attach applies the
		// contract's default enablement and is itself terminal success.
		allowEnable := len(opts.Enable) == 0 && len(opts.EnableBeta) == 0
		token, err := o.sys.AutoAttachToken(ctx, inst)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := o.sys.AttachWithToken(ctx, token, allowEnable); err != nil {
			return backoff.Permanent(err)
		}
		if allowEnable {
			return nil
		}
		state.alreadyAttached = true
	}

	candidates := make([]string, 0, len(opts.Enable)+len(opts.EnableBeta))
	candidates = append(candidates, opts.Enable...)
	candidates = append(candidates, opts.EnableBeta...)

	res, err := o.registry.Resolve(candidates, true)
	if err != nil {
		return backoff.Permanent(err)
	}

	enabled := 0
	for _, name := range res.Found {
		ok, reason, err := o.sys.EnableService(ctx, name, EnableOptions{AssumeYes: true, AllowBeta: true})
		if err != nil {
			state.retryable = true
			return err
		}
		if !ok {
			if reason != nil {
				return backoff.Permanent(&NotEnabledError{
					Service: name,
					Reason:  reason.Message,
					Code:    reason.Code,
				})
			}
			// Transient: counted as not enabled, retried next attempt.
			continue
		}
		enabled++
	}

	// Unknown names cannot start existing on retry.
	if len(res.NotFound) > 0 {
		return backoff.Permanent(&entitlement.NotFoundError{Names: res.NotFound})
	}

	if enabled == len(res.Found) {
		return nil
	}
	state.retryable = true
	return errEnableIncomplete
}

// betaNames filters names down to the ones resolving to beta entitlements.
func (o *Orchestrator) betaNames(names []string) []string {
	var beta []string
	for _, name := range names {
		ent, err := o.registry.ByName(name)
		if err != nil {
			continue
		}
		if ent.Beta {
			beta = append(beta, name)
		}
	}
	return beta
}
