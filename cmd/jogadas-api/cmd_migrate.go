package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the counters table if it does not exist",
		Long:  "Creates the counters table. Counters themselves are provisioned by operators; this command never inserts rows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("migrate: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.EnsureSchema(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("schema ready")
			return nil
		},
	}
}
