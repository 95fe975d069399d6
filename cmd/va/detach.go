package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/messages"
)

func newDetachCmd(configPath *string) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   messages.DetachUse,
		Short: messages.DetachShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			a, paths, err := loadActions(*configPath)
			if err != nil {
				return err
			}
			if !a.Cache.HasMachineToken() {
				return errors.New(messages.DetachNotAttached)
			}
			ok, err := confirm(assumeYes, messages.DetachConfirm)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New(messages.DetachDeclined)
			}
			return withMachineLock(paths, func() error {
				if err := a.Detach(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), messages.DetachSuccess)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, messages.EnableFlagAssumeYes)

	return cmd
}
