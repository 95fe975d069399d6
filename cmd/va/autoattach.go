package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/attach"
	"github.com/verdala/va-client/internal/messages"
)

func newAutoAttachCmd(configPath *string) *cobra.Command {
	var enable []string
	var enableBeta []string
	var retries int

	cmd := &cobra.Command{
		Use:   messages.AutoAttachUse,
		Short: messages.AutoAttachShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			a, paths, err := loadActions(*configPath)
			if err != nil {
				return err
			}
			return withMachineLock(paths, func() error {
				o := attach.NewOrchestrator(a.Registry, a)
				err := o.FullAutoAttach(cmd.Context(), attach.Options{
					Enable:     enable,
					EnableBeta: enableBeta,
					Retries:    retries,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), messages.AutoAttachSuccess)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&enable, "enable", nil, messages.AutoAttachFlagEnable)
	cmd.Flags().StringSliceVar(&enableBeta, "enable-beta", nil, messages.AutoAttachFlagBeta)
	cmd.Flags().IntVar(&retries, "retries", attach.DefaultRetries, messages.AutoAttachFlagRetries)

	return cmd
}
