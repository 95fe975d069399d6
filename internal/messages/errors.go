package messages

// Error messages and machine-readable codes shared across packages.
const (
	// EntitlementNotFoundFmt names every requested service that matched no entitlement.
	EntitlementNotFoundFmt = "cannot enable unknown service(s): %s"
	// EntitlementNotFoundHintFmt appends the valid service names to a not-found error.
	EntitlementNotFoundHintFmt = "cannot enable unknown service(s): %s\nTry one of: %s"

	// BetaServiceFoundFmt is raised when a beta service arrives through the non-beta list.
	BetaServiceFoundFmt = "cannot enable beta service(s) %s without --beta"

	// EntitlementNotEnabledFmt wraps a structured can-enable failure.
	EntitlementNotEnabledFmt = "cannot enable %s: %s"

	// AlreadyAttachedFmt reports an attach attempt on an already-attached instance.
	AlreadyAttachedFmt = "this machine is already attached on instance %s"

	// UnsupportedCloud is shown when the platform has no auto-attach support.
	UnsupportedCloud = "auto-attach is not supported on this cloud or image"
	// UnsupportedCloudTypeFmt names the detected but unsupported cloud type.
	UnsupportedCloudTypeFmt = "auto-attach image support is not available for cloud type %q"
	// UnknownCloud is shown when no cloud platform could be determined.
	UnknownCloud = "unable to determine the cloud type of this machine"

	// DetachAutomationFailure reports a failed forced detach during auto-attach.
	DetachAutomationFailure = "unable to detach the machine before re-attaching"

	// AutoAttachExhaustedFmt reports the orchestration retry budget running out.
	AutoAttachExhaustedFmt = "full auto-attach was not successful after %d attempts"

	// ContractRequestErrFmt wraps transport failures against the contract service.
	ContractRequestErrFmt = "contract service request failed: %w"
	ContractDecodeErrFmt  = "decode contract service response: %w"
	ContractStatusFmt     = "contract service returned %s for %s"
	ContractEmptyToken    = "contract service returned an empty token"

	// ConfigReadErrFmt wraps a missing or unreadable config file.
	ConfigReadErrFmt       = "read config %s: %w"
	ConfigParseErrFmt      = "parse config %s: %w"
	ConfigInvalidURLFmt    = "config %s: invalid contract_url %q: %w"
	ConfigDataDirErrFmt    = "resolve data dir: %w"
	CacheReadErrFmt        = "read cache file %s: %w"
	CacheWriteErrFmt       = "write cache file %s: %w"
	CacheDecodeErrFmt      = "decode cache file %s: %w"
	MachineTokenMissingErr = "no machine token is present; attach first"

	// LockHeldFmt reports a concurrent va operation holding the machine lock.
	LockHeldFmt    = "another va operation is in progress (lock %s)"
	LockOpenErrFmt = "open lock %s: %w"

	// AptWriteSourceErrFmt wraps failures writing repository definitions.
	AptWriteSourceErrFmt = "write apt source for %s: %w"
	AptWriteAuthErrFmt   = "update apt auth entries: %w"
	AptRemoveErrFmt      = "remove apt configuration for %s: %w"
	AptNoDirectivesFmt   = "no repository directives for service %s in the machine token"
)

// Machine-readable error codes carried by terminal errors.
const (
	CodeEntitlementNotFound   = "entitlement-not-found"
	CodeBetaServiceFound      = "beta-service-found"
	CodeEntitlementNotEnabled = "entitlement-not-enabled"
	CodeAlreadyAttached       = "already-attached"
	CodeUnsupportedCloud      = "auto-attach-unsupported-cloud"
	CodeUnknownCloud          = "auto-attach-unknown-cloud"
	CodeDetachFailed          = "detach-automation-failure"
	CodeAutoAttachExhausted   = "full-auto-attach-error"
	CodeDependencyCycle       = "entitlement-dependency-cycle"
	CodeAutoAttachDisabled    = "auto-attach-disabled-by-config"
)
