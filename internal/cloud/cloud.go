package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Instance describes the cloud machine identity used for auto-attach.
type Instance struct {
	// CloudType is the detected platform, e.g. "aws", "gce", "azure".
	CloudType string
	// ID is the platform-assigned instance identifier.
	ID string
	// IdentityDoc is the signed identity document presented to the
	// contract service as proof of platform identity.
	IdentityDoc json.RawMessage
}

// Provider yields the current machine's cloud instance descriptor.
type Provider interface {
	Instance(ctx context.Context) (*Instance, error)
}

// FactoryErrorKind classifies why instance detection failed.
type FactoryErrorKind int

const (
	// NoCloud means no cloud platform could be identified at all.
	NoCloud FactoryErrorKind = iota
	// NonViable means a platform was identified but cannot support
	// auto-attach (e.g. no metadata service reachable).
	NonViable
	// UnsupportedCloud means the platform was identified but the client has
	// no auto-attach support for it; CloudType is set.
	UnsupportedCloud
)

// FactoryError reports a failed cloud instance detection.
type FactoryError struct {
	Kind      FactoryErrorKind
	CloudType string
}

func (e *FactoryError) Error() string {
	switch e.Kind {
	case NonViable:
		return "cloud platform is not viable for auto-attach"
	case UnsupportedCloud:
		return fmt.Sprintf("cloud type %q does not support auto-attach", e.CloudType)
	default:
		return "unable to determine cloud type"
	}
}

// supportedClouds maps DMI vendor strings to cloud types with auto-attach
// support.
var supportedClouds = map[string]string{
	"Amazon EC2": "aws",
	"Google":     "gce",
}

// knownClouds covers platforms we can identify but not auto-attach.
var knownClouds = map[string]string{
	"Microsoft Corporation": "azure",
	"DigitalOcean":          "digitalocean",
	"OpenStack Foundation":  "openstack",
}

// DMIProvider detects the cloud platform from SMBIOS/DMI data exposed by
// the kernel. VendorPath and SerialPath exist as fields so tests can point
// at fixtures.
type DMIProvider struct {
	VendorPath string
	SerialPath string
}

// NewDMIProvider returns a provider reading the standard sysfs DMI paths.
func NewDMIProvider() *DMIProvider {
	return &DMIProvider{
		VendorPath: "/sys/class/dmi/id/sys_vendor",
		SerialPath: "/sys/class/dmi/id/product_serial",
	}
}

// Instance identifies the platform and assembles the identity descriptor.
func (p *DMIProvider) Instance(ctx context.Context) (*Instance, error) {
	vendor, err := readTrimmed(p.VendorPath)
	if err != nil || vendor == "" {
		return nil, &FactoryError{Kind: NoCloud}
	}

	cloudType, ok := supportedClouds[vendor]
	if !ok {
		if known, identified := knownClouds[vendor]; identified {
			return nil, &FactoryError{Kind: UnsupportedCloud, CloudType: known}
		}
		return nil, &FactoryError{Kind: NoCloud}
	}

	serial, err := readTrimmed(p.SerialPath)
	if err != nil || serial == "" {
		// Platform identified but no instance identity available.
		return nil, &FactoryError{Kind: NonViable}
	}

	doc, err := json.Marshal(map[string]string{
		"cloud":  cloudType,
		"serial": serial,
	})
	if err != nil {
		return nil, &FactoryError{Kind: NonViable}
	}
	return &Instance{CloudType: cloudType, ID: serial, IdentityDoc: doc}, nil
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
