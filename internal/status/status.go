package status

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/verdala/va-client/internal/contract"
	"github.com/verdala/va-client/internal/entitlement"
	"github.com/verdala/va-client/internal/messages"
)

// Notice codes surfaced alongside status.
const (
	CodeRebootRequired      = "REBOOT_REQUIRED"
	CodeContractExpired     = "CONTRACT_EXPIRED"
	CodeOperationInProgress = "OPERATION_IN_PROGRESS"
)

// Notice severities.
const (
	SeverityInfo     = "info"
	SeverityCritical = "critical"
)

// Notice is a short operator-facing flag attached to the machine status.
type Notice struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity,omitempty"`
}

// ServiceStatus is the per-service view in a snapshot.
type ServiceStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Entitled    bool   `json:"entitled"`
	Enabled     bool   `json:"enabled"`
	Beta        bool   `json:"beta,omitempty"`
}

// Snapshot is the machine status: attachment, per-service state, and
// notices. It is what `va status` renders and what gets persisted to the
// status cache.
type Snapshot struct {
	Attached    bool            `json:"attached"`
	AccountName string          `json:"account,omitempty"`
	Expires     time.Time       `json:"expires,omitempty"`
	Services    []ServiceStatus `json:"services"`
	Notices     []Notice        `json:"notices,omitempty"`
}

// Build assembles a snapshot from the registry and the machine token.
// token may be nil when the machine is detached. enabled reports whether a
// service's local configuration is currently applied. Beta services are
// hidden unless showBeta or the service is entitled.
func Build(reg *entitlement.Registry, token *contract.MachineToken, enabled func(name string) bool, showBeta bool) Snapshot {
	snap := Snapshot{Attached: token != nil}
	if token != nil {
		snap.AccountName = token.AccountName
		snap.Expires = token.ExpiresAt
		if !token.ExpiresAt.IsZero() && token.ExpiresAt.Before(time.Now()) {
			snap.Notices = append(snap.Notices, Notice{
				Code:     CodeContractExpired,
				Message:  "subscription contract has expired",
				Severity: SeverityCritical,
			})
		}
	}

	for _, ent := range reg.All() {
		var entitled bool
		if token != nil {
			if policy, ok := token.EntitlementFor(ent.Name); ok {
				entitled = policy.Entitled
			}
		}
		if ent.Beta && !showBeta && !entitled {
			continue
		}
		snap.Services = append(snap.Services, ServiceStatus{
			Name:        ent.Name,
			Description: ent.Description,
			Entitled:    entitled,
			Enabled:     enabled(ent.Name),
			Beta:        ent.Beta,
		})
	}
	return snap
}

// RenderText writes the human-readable status view.
func RenderText(w io.Writer, snap Snapshot) error {
	if !snap.Attached {
		if _, err := fmt.Fprintln(w, messages.StatusNotAttached); err != nil {
			return err
		}
		return renderNotices(w, snap.Notices)
	}

	expires := "unknown"
	if !snap.Expires.IsZero() {
		expires = snap.Expires.Format("2006-01-02")
	}
	if _, err := fmt.Fprintf(w, messages.StatusAttachedFmt, snap.AccountName, expires); err != nil {
		return err
	}

	fmt.Fprintf(w, messages.StatusServiceLineFmt, messages.StatusHeaderService, messages.StatusHeaderEnabled, messages.StatusHeaderDesc)
	enabledColor := color.New(color.FgGreen)
	disabledColor := color.New(color.FgYellow)
	for _, svc := range snap.Services {
		state := disabledColor.Sprint(messages.StatusDisabledLabel)
		if svc.Enabled {
			state = enabledColor.Sprint(messages.StatusEnabledLabel)
		}
		fmt.Fprintf(w, messages.StatusServiceLineFmt, svc.Name, state, svc.Description)
	}
	return renderNotices(w, snap.Notices)
}

func renderNotices(w io.Writer, notices []Notice) error {
	if len(notices) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n"+messages.StatusNoticeHeaderFmt); err != nil {
		return err
	}
	warnColor := color.New(color.FgRed)
	for _, n := range notices {
		line := fmt.Sprintf("%s: %s", n.Code, n.Message)
		if n.Severity == SeverityCritical {
			line = warnColor.Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON writes the machine-readable status view.
func RenderJSON(w io.Writer, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
