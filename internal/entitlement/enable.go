package entitlement

// CanEnableFailure is a structured reason why a service cannot be enabled
// on this machine (not entitled, unmet requirement, conflicting service).
// It is deterministic: retrying the same operation will fail the same way.
type CanEnableFailure struct {
	Code    string
	Message string
}

// Reason codes for CanEnableFailure.
const (
	ReasonNotEntitled        = "service-not-entitled"
	ReasonRequiredNotEnabled = "required-service-not-enabled"
	ReasonIncompatibleActive = "incompatible-service-enabled"
)
