package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/aptsource"
	"github.com/verdala/va-client/internal/attach"
	"github.com/verdala/va-client/internal/cloud"
	"github.com/verdala/va-client/internal/config"
	"github.com/verdala/va-client/internal/contract"
	"github.com/verdala/va-client/internal/entitlement"
	"github.com/verdala/va-client/internal/lock"
	"github.com/verdala/va-client/internal/messages"
	"github.com/verdala/va-client/internal/terminal"
)

// Seams for tests: commands build their collaborators through these vars so
// tests can substitute fakes and temp paths.
var (
	geteuid = os.Geteuid

	newCloudProvider = func() cloud.Provider {
		return cloud.NewDMIProvider()
	}

	newAptManager = func() *aptsource.Manager {
		series := aptsource.DetectSeries(aptsource.DefaultOSReleasePath)
		return aptsource.NewManager(aptsource.RealSystem{}, series)
	}
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, messages.RootFlagConfig)

	cmd.AddCommand(newStatusCmd(&configPath))
	cmd.AddCommand(newAttachCmd(&configPath))
	cmd.AddCommand(newDetachCmd(&configPath))
	cmd.AddCommand(newAutoAttachCmd(&configPath))
	cmd.AddCommand(newEnableCmd(&configPath))
	cmd.AddCommand(newDisableCmd(&configPath))

	return cmd
}

// loadActions assembles the production collaborator set from the config at
// configPath.
func loadActions(configPath string) (*attach.Actions, config.Paths, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, config.Paths{}, err
	}
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, config.Paths{}, err
	}
	paths := config.NewPaths(dataDir)
	actions := attach.NewActions(
		cfg,
		entitlement.NewRegistry(),
		contract.NewClient(cfg.ContractURL),
		newCloudProvider(),
		newAptManager(),
		config.NewCache(paths),
	)
	return actions, paths, nil
}

// requireRoot rejects mutating commands run without privileges.
func requireRoot() error {
	if geteuid() != 0 {
		return errors.New(messages.RootRequired)
	}
	return nil
}

// withMachineLock runs fn while holding the machine lock, so at most one
// mutating va operation is in flight.
func withMachineLock(paths config.Paths, fn func() error) error {
	l, err := lock.Acquire(paths.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		_ = l.Release()
	}()
	return fn()
}

// confirm resolves a yes/no decision: assumeYes short-circuits, otherwise an
// interactive prompt is required.
func confirm(assumeYes bool, title string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !terminal.IsInteractive() {
		return false, errors.New(messages.PromptRequiresTerminal)
	}
	return terminal.Confirm(title)
}

// notFoundWithHint decorates a not-found failure with the valid service
// names.
func notFoundWithHint(reg *entitlement.Registry, names []string, allowBeta bool) error {
	valid := reg.ValidServices(allowBeta, false)
	return fmt.Errorf(messages.EntitlementNotFoundHintFmt,
		joinNames(names), joinNames(valid))
}

// joinNames renders a service name list for user-facing messages.
func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
