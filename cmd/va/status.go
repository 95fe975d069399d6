package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdala/va-client/internal/messages"
	"github.com/verdala/va-client/internal/status"
)

func newStatusCmd(configPath *string) *cobra.Command {
	var format string
	var showBeta bool

	cmd := &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := loadActions(*configPath)
			if err != nil {
				return err
			}
			snap := a.Status(showBeta)
			switch format {
			case "json":
				return status.RenderJSON(cmd.OutOrStdout(), snap)
			case "text":
				return status.RenderText(cmd.OutOrStdout(), snap)
			default:
				return fmt.Errorf(messages.StatusInvalidFmtFmt, format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", messages.StatusFlagFormat)
	cmd.Flags().BoolVar(&showBeta, "beta", false, messages.StatusFlagBeta)

	return cmd
}
