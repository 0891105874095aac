package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mhdiwe/Viral/auth"
	"github.com/Mhdiwe/Viral/speech"
)

func newVoicesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List the configured voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := speech.LoadVoiceTable(root.cfg.VoicesFile)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(table.Voices))
			for _, id := range table.IDs() {
				v := table.Voices[id]
				def := ""
				if id == table.Default {
					def = "*"
				}
				rows = append(rows, []string{id, def, v.ReferenceID, v.Description})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Default", "Reference", "Description"}, rows, nil))
			return err
		},
	}
}

func newTokenCommand(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.GenerateJWT(root.cfg.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 7*24*time.Hour, "token lifetime")
	return cmd
}
