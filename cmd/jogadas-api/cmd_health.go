package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the counter store",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newStore(logger)
			if err != nil {
				fmt.Printf("Store (%s): FAIL (%v)\n", cfg.Database.Driver, err)
				return fmt.Errorf("health check failed")
			}
			defer func() { _ = st.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.QueryTimeout)
			defer cancel()
			if err := st.Ping(ctx); err != nil {
				fmt.Printf("Store (%s): FAIL (%v)\n", cfg.Database.Driver, err)
				return fmt.Errorf("health check failed")
			}
			fmt.Printf("Store (%s): OK\n", cfg.Database.Driver)
			return nil
		},
	}
}
