package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Danielle-Barbieri/seat-scout/internal/api/locations"
)

var forecastDay int

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print the predicted seat availability curve for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := resolveLocation(tzName)
		if err != nil {
			return err
		}
		svc := locations.NewService(nil, nil, nil, nil, logger)
		resp, err := svc.Forecast(cmd.Context(), forecastDay, loc)
		if err != nil {
			return fmt.Errorf("forecast: %w", err)
		}
		renderForecast(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	forecastCmd.Flags().IntVar(&forecastDay, "day", 0, "day offset from today (0-6)")
}
