package attach

import (
	"fmt"
	"strings"

	"github.com/verdala/va-client/internal/messages"
)

// AlreadyAttachedError reports an auto-attach on a machine already attached
// to the same instance.
type AlreadyAttachedError struct {
	InstanceID string
}

func (e *AlreadyAttachedError) Error() string {
	return fmt.Sprintf(messages.AlreadyAttachedFmt, e.InstanceID)
}

// MessageCode returns the machine-readable code for this error.
func (e *AlreadyAttachedError) MessageCode() string {
	return messages.CodeAlreadyAttached
}

// UnsupportedCloudError reports a platform or image without auto-attach
// support. CloudType is empty when the platform itself was not viable.
type UnsupportedCloudError struct {
	CloudType string
}

func (e *UnsupportedCloudError) Error() string {
	if e.CloudType != "" {
		return fmt.Sprintf(messages.UnsupportedCloudTypeFmt, e.CloudType)
	}
	return messages.UnsupportedCloud
}

// MessageCode returns the machine-readable code for this error.
func (e *UnsupportedCloudError) MessageCode() string {
	return messages.CodeUnsupportedCloud
}

// UnknownCloudError reports that no cloud platform could be determined.
type UnknownCloudError struct{}

func (e *UnknownCloudError) Error() string {
	return messages.UnknownCloud
}

// MessageCode returns the machine-readable code for this error.
func (e *UnknownCloudError) MessageCode() string {
	return messages.CodeUnknownCloud
}

// DisabledByConfigError reports auto-attach turned off via config.
type DisabledByConfigError struct{}

func (e *DisabledByConfigError) Error() string {
	return messages.AutoAttachDisabledCfg
}

// MessageCode returns the machine-readable code for this error.
func (e *DisabledByConfigError) MessageCode() string {
	return messages.CodeAutoAttachDisabled
}

// DetachFailedError reports a failed forced detach while re-attaching on a
// new instance.
type DetachFailedError struct {
	Err error
}

func (e *DetachFailedError) Error() string {
	return messages.DetachAutomationFailure
}

func (e *DetachFailedError) Unwrap() error {
	return e.Err
}

// MessageCode returns the machine-readable code for this error.
func (e *DetachFailedError) MessageCode() string {
	return messages.CodeDetachFailed
}

// BetaServicesError reports beta services requested through the non-beta
// enable list.
type BetaServicesError struct {
	Names []string
}

func (e *BetaServicesError) Error() string {
	return fmt.Sprintf(messages.BetaServiceFoundFmt, strings.Join(e.Names, ", "))
}

// MessageCode returns the machine-readable code for this error.
func (e *BetaServicesError) MessageCode() string {
	return messages.CodeBetaServiceFound
}

// NotEnabledError wraps a structured can-enable failure for one service.
type NotEnabledError struct {
	Service string
	Reason  string
	Code    string
}

func (e *NotEnabledError) Error() string {
	return fmt.Sprintf(messages.EntitlementNotEnabledFmt, e.Service, e.Reason)
}

// MessageCode returns the machine-readable code for this error.
func (e *NotEnabledError) MessageCode() string {
	return messages.CodeEntitlementNotEnabled
}

// RetryExhaustedError reports the orchestration loop running out of
// attempts without every requested service enabled.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf(messages.AutoAttachExhaustedFmt, e.Attempts)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// MessageCode returns the machine-readable code for this error.
func (e *RetryExhaustedError) MessageCode() string {
	return messages.CodeAutoAttachExhausted
}
