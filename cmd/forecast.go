package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/momentum/internal/forecast"
	"github.com/driftwoodlabs/momentum/internal/gate"
	"github.com/driftwoodlabs/momentum/internal/observability"
	"github.com/driftwoodlabs/momentum/internal/store"
)

var jsonOut = jsoniter.ConfigCompatibleWithStandardLibrary

func newForecastCmd() *cobra.Command {
	var userID string
	var quick bool

	forecastCmd := &cobra.Command{
		Use:   "forecast",
		Short: "Generates an engagement forecast for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			engine, cleanup, err := buildEngine(ctx, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if quick {
				result, err := engine.QuickForecast(ctx, userID)
				if err != nil {
					return fmt.Errorf("quick forecast failed: %w", err)
				}
				if result == nil {
					logger.Warn("insufficient data to forecast", zap.String("user_id", userID))
					return nil
				}
				return printJSON(result)
			}

			result, err := engine.GenerateForecast(ctx, userID)
			if err != nil {
				return fmt.Errorf("forecast failed: %w", err)
			}
			if result == nil {
				logger.Warn("insufficient data to forecast", zap.String("user_id", userID))
				return nil
			}
			return printJSON(result)
		},
	}

	forecastCmd.Flags().StringVarP(&userID, "user", "u", "", "user ID to forecast")
	forecastCmd.Flags().BoolVar(&quick, "quick", false, "print the reduced quick forecast")
	_ = forecastCmd.MarkFlagRequired("user")
	return forecastCmd
}

// buildEngine wires the pgx pool, store, gate, and engine for a command
// invocation. The returned cleanup closes the pool.
func buildEngine(ctx context.Context, logger *zap.Logger) (*forecast.Engine, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	st, err := store.New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	g := gate.New(cfg.Gate, logger)
	return forecast.New(st, g, cfg, logger), pool.Close, nil
}

func printJSON(v any) error {
	enc := jsonOut.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(newForecastCmd())
}
