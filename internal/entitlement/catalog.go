package entitlement

// catalog returns the built-in entitlement declarations. Declaration order
// is significant: it is the tie-breaker for dependency ordering and the
// order services appear in status output.
func catalog() []*Entitlement {
	return []*Entitlement{
		{
			Name:             "cc-eal",
			PresentationName: "CC EAL2",
			Description:      "Common Criteria EAL2 provisioning packages",
		},
		{
			Name:             "cis",
			PresentationName: "CIS Audit",
			Aliases:          []string{"usg"},
			Description:      "Security compliance and audit tooling",
		},
		{
			Name:             "esm-apps",
			PresentationName: "ESM Apps",
			Description:      "Expanded security maintenance for applications",
			Dependents:       []string{"ros", "ros-updates"},
		},
		{
			Name:             "esm-infra",
			PresentationName: "ESM Infra",
			Aliases:          []string{"esm"},
			Description:      "Expanded security maintenance for infrastructure",
			Dependents:       []string{"ros", "ros-updates"},
		},
		{
			Name:             "fips",
			PresentationName: "FIPS",
			Description:      "NIST-certified FIPS crypto modules",
			Dependents:       []string{"fips-updates"},
		},
		{
			Name:             "fips-updates",
			PresentationName: "FIPS Updates",
			Description:      "FIPS compliant crypto with security fixes",
		},
		{
			Name:             "livepatch",
			PresentationName: "Livepatch",
			Description:      "Kernel livepatches for critical and high CVEs",
		},
		{
			Name:             "realtime-kernel",
			PresentationName: "Real-time kernel",
			Description:      "Kernel with PREEMPT_RT patches",
			Beta:             true,
		},
		{
			Name:             "ros",
			PresentationName: "ROS ESM Security Updates",
			Description:      "Security updates for ROS robotics packages",
			Beta:             true,
			Required:         []string{"esm-infra", "esm-apps"},
			Dependents:       []string{"ros-updates"},
		},
		{
			Name:             "ros-updates",
			PresentationName: "ROS ESM All Updates",
			Description:      "All updates for ROS robotics packages",
			Beta:             true,
			Required:         []string{"esm-infra", "esm-apps", "ros"},
		},
	}
}
