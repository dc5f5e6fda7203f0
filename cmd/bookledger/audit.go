package main

import (
	"errors"

	"github.com/spf13/cobra"

	"bookledger/internal/audit"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check ledger and stock invariants once and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			report := audit.NewAuditor(audit.DefaultChecks(st)...).Run(cmd.Context())
			report.Print(cmd.OutOrStdout())
			if !report.Healthy {
				return errors.New("ledger inconsistent")
			}
			return nil
		},
	}
}
