package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/contract"
	"github.com/verdala/va-client/internal/messages"
)

func newAttachCmd(configPath *string) *cobra.Command {
	var noAutoEnable bool

	cmd := &cobra.Command{
		Use:   messages.AttachUse,
		Short: messages.AttachShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireRoot(); err != nil {
				return err
			}
			token := strings.TrimSpace(args[0])
			if token == "" {
				return errors.New(messages.AttachTokenRequired)
			}
			a, paths, err := loadActions(*configPath)
			if err != nil {
				return err
			}
			return withMachineLock(paths, func() error {
				if a.Cache.HasMachineToken() {
					return errors.New(messages.AttachAlreadyDone)
				}
				fmt.Fprintln(cmd.OutOrStdout(), messages.AttachInProgressNote)
				if noAutoEnable {
					fmt.Fprintln(cmd.OutOrStdout(), messages.AttachEnableSkipped)
				}
				if err := a.AttachWithToken(cmd.Context(), token, !noAutoEnable); err != nil {
					var apiErr *contract.APIError
					if errors.As(err, &apiErr) && apiErr.Code >= http.StatusBadRequest && apiErr.Code < http.StatusInternalServerError {
						return errors.New(messages.AttachTokenNotValid)
					}
					return err
				}
				var machineToken contract.MachineToken
				if err := a.Cache.ReadMachineToken(&machineToken); err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), messages.AttachSuccessFmt, machineToken.AccountName)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&noAutoEnable, "no-auto-enable", false, messages.AttachFlagNoEnable)

	return cmd
}
