package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "va"
	// RootShort is the short description for the root command.
	RootShort       = "Verdala Advantage client"
	RootVersionFlag = "Print version and exit"
	RootFlagConfig  = "Path to the client config file"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// StatusUse is the status command name.
	StatusUse             = "status"
	StatusShort           = "Show attachment and service status"
	StatusFlagFormat      = "Output format: text or json"
	StatusFlagBeta        = "Include beta services in the listing"
	StatusInvalidFmtFmt   = "unsupported format %q (supported: text, json)"
	StatusNotAttached     = "This machine is not attached to a Verdala Advantage subscription."
	StatusAttachedFmt     = "Machine attached (account %s, expires %s)\n"
	StatusServiceLineFmt  = "%-18s %-10s %s\n"
	StatusHeaderService   = "SERVICE"
	StatusHeaderEnabled   = "ENABLED"
	StatusHeaderDesc      = "DESCRIPTION"
	StatusEnabledLabel    = "enabled"
	StatusDisabledLabel   = "disabled"
	StatusNoticeHeaderFmt = "NOTICES\n"

	// AttachUse is the attach command usage.
	AttachUse            = "attach <token>"
	AttachShort          = "Attach this machine with a contract token"
	AttachFlagNoEnable   = "Do not enable the default services after attaching"
	AttachTokenRequired  = "a contract token is required"
	AttachSuccessFmt     = "This machine is now attached (account %s)\n"
	AttachTokenNotValid  = "the provided contract token is not valid"
	AttachEnableSkipped  = "Skipping default service enablement (--no-auto-enable)"
	AttachInProgressNote = "Attaching machine to Verdala Advantage..."
	AttachAlreadyDone    = "this machine is already attached to a subscription"

	// DetachUse is the detach command name.
	DetachUse           = "detach"
	DetachShort         = "Detach this machine from its subscription"
	DetachConfirm       = "Detach this machine and disable all Verdala Advantage services?"
	DetachSuccess       = "This machine is now detached."
	DetachNotAttached   = "this machine is not attached to a subscription"
	DetachDeclined      = "detach cancelled"
	DetachServiceErrFmt = "disable %s during detach: %w"

	// AutoAttachUse is the auto-attach command name.
	AutoAttachUse          = "auto-attach"
	AutoAttachShort        = "Attach using this machine's cloud identity"
	AutoAttachFlagEnable   = "Comma-separated services to enable after attaching"
	AutoAttachFlagBeta     = "Comma-separated beta services to enable after attaching"
	AutoAttachFlagRetries  = "Number of attempts before giving up"
	AutoAttachSuccess      = "This machine is now attached."
	AutoAttachEnabledFmt   = "Enabled %d of %d requested services\n"
	AutoAttachDisabledCfg  = "auto-attach is disabled by the features.disable_auto_attach config"
	AutoAttachReattachNote = "Re-attaching Verdala Advantage subscription on new instance"

	// EnableUse is the enable command usage.
	EnableUse             = "enable <service>..."
	EnableShort           = "Enable a Verdala Advantage service"
	EnableFlagAssumeYes   = "Answer yes to any prompts"
	EnableFlagBeta        = "Allow enabling beta services"
	EnableFlagDryRun      = "Show the repository changes without applying them"
	EnableConfirmFmt      = "Enable %s on this machine?"
	EnableSuccessFmt      = "%s enabled\n"
	EnableDeclinedFmt     = "enable of %s cancelled"
	EnableNothingToDo     = "no services requested"
	EnableOneRequired     = "at least one service name is required"
	EnableValidServiceFmt = "Try one of: %s"
	EnableTransientFmt    = "cannot enable %s right now; try again later"

	// DisableUse is the disable command usage.
	DisableUse         = "disable <service>..."
	DisableShort       = "Disable a Verdala Advantage service"
	DisableConfirmFmt  = "Disable %s on this machine?"
	DisableSuccessFmt  = "%s disabled\n"
	DisableDeclinedFmt = "disable of %s cancelled"

	// PromptRequiresTerminal is returned when a confirm prompt has no TTY.
	PromptRequiresTerminal = "this command prompts for confirmation; re-run with --assume-yes or from an interactive terminal"

	// RootRequired is returned when a mutating command runs without privileges.
	RootRequired = "this command must be run as root (try sudo)"
)
