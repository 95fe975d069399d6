package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/aptsource"
	"github.com/verdala/va-client/internal/messages"
)

func newDisableCmd(configPath *string) *cobra.Command {
	var assumeYes bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   messages.DisableUse,
		Short: messages.DisableShort,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun {
				if err := requireRoot(); err != nil {
					return err
				}
			}
			a, paths, err := loadActions(*configPath)
			if err != nil {
				return err
			}

			// Disabling a beta service is always allowed; the gate exists to
			// stop accidental enablement, not cleanup.
			res, err := a.Registry.Resolve(args, true)
			if err != nil {
				return err
			}
			if len(res.NotFound) > 0 {
				return notFoundWithHint(a.Registry, res.NotFound, true)
			}

			ok, err := confirm(assumeYes || dryRun, fmt.Sprintf(messages.DisableConfirmFmt, joinNames(res.Found)))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf(messages.DisableDeclinedFmt, joinNames(res.Found))
			}

			if dryRun {
				a.AptOptions = aptsource.Options{DryRun: true, Out: cmd.OutOrStdout()}
			}
			return withMachineLock(paths, func() error {
				// Found is in enable order; walk it backwards so dependents
				// go before their prerequisites.
				for i := len(res.Found) - 1; i >= 0; i-- {
					name := res.Found[i]
					if err := a.DisableService(cmd.Context(), name); err != nil {
						return err
					}
					if !dryRun {
						fmt.Fprintf(cmd.OutOrStdout(), messages.DisableSuccessFmt, name)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, messages.EnableFlagAssumeYes)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, messages.EnableFlagDryRun)

	return cmd
}
