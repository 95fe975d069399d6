package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/aptsource"
	"github.com/verdala/va-client/internal/attach"
	"github.com/verdala/va-client/internal/messages"
)

func newEnableCmd(configPath *string) *cobra.Command {
	var assumeYes bool
	var allowBeta bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   messages.EnableUse,
		Short: messages.EnableShort,
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
			withBeta := allowBeta || a.Config.Features.AllowBeta

			res, err := a.Registry.Resolve(args, withBeta)
			if err != nil {
				return err
			}
			if len(res.BetaRejected) > 0 {
				return &attach.BetaServicesError{Names: res.BetaRejected}
			}
			if len(res.NotFound) > 0 {
				return notFoundWithHint(a.Registry, res.NotFound, withBeta)
			}

			ok, err := confirm(assumeYes || dryRun, fmt.Sprintf(messages.EnableConfirmFmt, joinNames(res.Found)))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf(messages.EnableDeclinedFmt, joinNames(res.Found))
			}

			if dryRun {
				a.AptOptions = aptsource.Options{DryRun: true, Out: cmd.OutOrStdout()}
			}
			return withMachineLock(paths, func() error {
				for _, name := range res.Found {
					ok, reason, err := a.EnableService(cmd.Context(), name, attach.EnableOptions{
						AssumeYes: assumeYes,
						AllowBeta: withBeta,
					})
					if err != nil {
						return err
					}
					if !ok {
						if reason != nil {
							return &attach.NotEnabledError{Service: name, Reason: reason.Message, Code: reason.Code}
						}
						return fmt.Errorf(messages.EnableTransientFmt, name)
					}
					if !dryRun {
						fmt.Fprintf(cmd.OutOrStdout(), messages.EnableSuccessFmt, name)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, messages.EnableFlagAssumeYes)
	cmd.Flags().BoolVar(&allowBeta, "beta", false, messages.EnableFlagBeta)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, messages.EnableFlagDryRun)

	return cmd
}
