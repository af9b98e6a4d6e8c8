package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/jogadas-api/internal/store"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <nome>",
		Short: "Print the current value of a counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			st, err := newStore(logger)
			if err != nil {
				return fmt.Errorf("get: connecting to store: %w", err)
			}
			defer func() { _ = st.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.QueryTimeout)
			defer cancel()

			c, err := st.Get(ctx, args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("get: counter %q does not exist", args[0])
				}
				return fmt.Errorf("get: %w", err)
			}

			fmt.Printf("%s\t%d\n", c.Name, c.Value)
			return nil
		},
	}
}
