package aptsource

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/verdala/va-client/internal/contract"
	"github.com/verdala/va-client/internal/messages"
)

// Default apt configuration locations.
const (
	DefaultSourcesDir = "/etc/apt/sources.list.d"
	DefaultAuthFile   = "/etc/apt/auth.conf.d/90verdala-advantage"
	DefaultPrefsDir   = "/etc/apt/preferences.d"
)

const (
	sourceFileMode = os.FileMode(0o644)
	authFileMode   = os.FileMode(0o600)
)

// Options adjusts how repository changes are applied.
type Options struct {
	// DryRun renders the would-be changes as a unified diff to Out instead
	// of writing them.
	DryRun bool
	// Out receives dry-run diffs. Ignored unless DryRun is set.
	Out io.Writer
}

// Manager applies per-service apt repository configuration: a sources file
// per service, bearer credentials in the apt auth file, and optional pin
// preferences. All writes go through the injected System.
type Manager struct {
	sys        System
	series     string
	SourcesDir string
	AuthFile   string
	PrefsDir   string
}

// NewManager returns a manager for the given distro series using the
// standard apt paths.
func NewManager(sys System, series string) *Manager {
	return &Manager{
		sys:        sys,
		series:     series,
		SourcesDir: DefaultSourcesDir,
		AuthFile:   DefaultAuthFile,
		PrefsDir:   DefaultPrefsDir,
	}
}

// sourcePath returns the sources file owned by the named service.
func (m *Manager) sourcePath(name string) string {
	return filepath.Join(m.SourcesDir, "verdala-"+name+".list")
}

func (m *Manager) prefsPath(name string) string {
	return filepath.Join(m.PrefsDir, "verdala-"+name)
}

// EnableService writes the repository definition and credentials for one
// service from its contract directives.
func (m *Manager) EnableService(name string, directives contract.Directives, opts Options) error {
	if apply, ok := applyOverrides[name]; ok {
		return apply(m, name, directives, opts)
	}
	return applyRepo(m, name, directives, opts)
}

// DisableService removes the repository definition, credentials, and pins
// for one service. Missing files are not an error.
func (m *Manager) DisableService(name string, directives contract.Directives, opts Options) error {
	if opts.DryRun {
		existing, err := m.readIfPresent(m.sourcePath(name))
		if err != nil {
			return err
		}
		return writeDiff(opts.Out, m.sourcePath(name), existing, "")
	}
	if err := m.removeIfPresent(m.sourcePath(name)); err != nil {
		return fmt.Errorf(messages.AptRemoveErrFmt, name, err)
	}
	if err := m.removeIfPresent(m.prefsPath(name)); err != nil {
		return fmt.Errorf(messages.AptRemoveErrFmt, name, err)
	}
	if directives.AptURL != "" {
		if err := m.removeAuthEntry(directives.AptURL); err != nil {
			return fmt.Errorf(messages.AptRemoveErrFmt, name, err)
		}
	}
	return nil
}

// IsEnabled reports whether the service's sources file is present.
func (m *Manager) IsEnabled(name string) bool {
	_, err := m.sys.Stat(m.sourcePath(name))
	return err == nil
}

// applyRepo is the default enable strategy: a deb line per suite plus an
// auth entry carrying the repo bearer token.
func applyRepo(m *Manager, name string, directives contract.Directives, opts Options) error {
	if directives.AptURL == "" {
		return fmt.Errorf(messages.AptNoDirectivesFmt, name)
	}
	content := renderSource(directives, m.series)
	path := m.sourcePath(name)

	if opts.DryRun {
		existing, err := m.readIfPresent(path)
		if err != nil {
			return err
		}
		return writeDiff(opts.Out, path, existing, content)
	}

	if err := m.sys.MkdirAll(m.SourcesDir, 0o755); err != nil {
		return fmt.Errorf(messages.AptWriteSourceErrFmt, name, err)
	}
	if err := m.sys.WriteFileAtomic(path, []byte(content), sourceFileMode); err != nil {
		return fmt.Errorf(messages.AptWriteSourceErrFmt, name, err)
	}
	if directives.Token != "" {
		if err := m.addAuthEntry(directives.AptURL, directives.Token); err != nil {
			return fmt.Errorf(messages.AptWriteAuthErrFmt, err)
		}
	}
	return nil
}

// applyNoop covers services that configure no apt repository (kernel-side
// delivery).
func applyNoop(m *Manager, name string, directives contract.Directives, opts Options) error {
	return nil
}

// applyOverrides is the per-service strategy table; everything not listed
// uses applyRepo.
var applyOverrides = map[string]func(*Manager, string, contract.Directives, Options) error{
	"livepatch": applyNoop,
}

// renderSource builds the sources.list content for the directives. Suites
// default to the machine series when the contract names none.
func renderSource(directives contract.Directives, series string) string {
	suites := directives.Suites
	if len(suites) == 0 {
		suites = []string{series}
	}
	var b strings.Builder
	b.WriteString("# Written by va; manual changes will be overwritten.\n")
	for _, suite := range suites {
		fmt.Fprintf(&b, "deb %s %s main\n", directives.AptURL, suite)
	}
	return b.String()
}

// authMachine extracts the auth.conf machine key for a repo URL.
func authMachine(aptURL string) (string, error) {
	u, err := url.Parse(aptURL)
	if err != nil {
		return "", err
	}
	machine := u.Host + u.Path
	return strings.TrimRight(machine, "/") + "/", nil
}

// addAuthEntry inserts or replaces the credentials line for the repo.
func (m *Manager) addAuthEntry(aptURL string, token string) error {
	machine, err := authMachine(aptURL)
	if err != nil {
		return err
	}
	existing, err := m.readIfPresent(m.AuthFile)
	if err != nil {
		return err
	}
	prefix := "machine " + machine + " login bearer"
	var lines []string
	for _, line := range strings.Split(existing, "\n") {
		if line == "" || strings.HasPrefix(line, prefix) {
			continue
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("%s password %s", prefix, token))
	if err := m.sys.MkdirAll(filepath.Dir(m.AuthFile), 0o755); err != nil {
		return err
	}
	return m.sys.WriteFileAtomic(m.AuthFile, []byte(strings.Join(lines, "\n")+"\n"), authFileMode)
}

// removeAuthEntry drops the credentials line for the repo. The auth file is
// removed entirely when no entries remain.
func (m *Manager) removeAuthEntry(aptURL string) error {
	machine, err := authMachine(aptURL)
	if err != nil {
		return err
	}
	existing, err := m.readIfPresent(m.AuthFile)
	if err != nil || existing == "" {
		return err
	}
	prefix := "machine " + machine + " login bearer"
	var lines []string
	for _, line := range strings.Split(existing, "\n") {
		if line == "" || strings.HasPrefix(line, prefix) {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return m.removeIfPresent(m.AuthFile)
	}
	return m.sys.WriteFileAtomic(m.AuthFile, []byte(strings.Join(lines, "\n")+"\n"), authFileMode)
}

func (m *Manager) readIfPresent(path string) (string, error) {
	data, err := m.sys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

func (m *Manager) removeIfPresent(path string) error {
	if err := m.sys.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func writeDiff(out io.Writer, path string, before string, after string) error {
	if out == nil {
		return nil
	}
	diff := udiff.Unified(path, path+" (new)", before, after)
	if diff == "" {
		return nil
	}
	_, err := fmt.Fprint(out, diff)
	return err
}
