package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Danielle-Barbieri/seat-scout/internal/api/locations"
	"github.com/Danielle-Barbieri/seat-scout/internal/container"
	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

var nearbyOpts struct {
	lat, lng  float64
	place     string
	kind      string
	day, hour int
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List nearby cafes and libraries",
	Example: `  seatscout nearby --lat 51.5074 --lng -0.1278
  seatscout nearby --place "Kings Cross" --type library --day 1 --hour 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := container.NewContainer(ctx, &cfg, logger)
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		defer c.Close()

		params, err := nearbyParams(ctx, cmd, c.LocationsService)
		if err != nil {
			return err
		}

		views, err := c.LocationsService.Nearby(ctx, params)
		if err != nil {
			return fmt.Errorf("nearby: %w", err)
		}
		renderLocations(cmd.OutOrStdout(), views)
		return nil
	},
}

func init() {
	registerNearbyFlags(nearbyCmd)
}

func registerNearbyFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&nearbyOpts.lat, "lat", 0, "latitude of the query point")
	f.Float64Var(&nearbyOpts.lng, "lng", 0, "longitude of the query point")
	f.StringVar(&nearbyOpts.place, "place", "", "geocode this text instead of --lat/--lng")
	f.StringVar(&nearbyOpts.kind, "type", "all", "cafe, library or all")
	f.IntVar(&nearbyOpts.day, "day", 0, "day offset from today (0-6), used with --hour")
	f.IntVar(&nearbyOpts.hour, "hour", 0, "hour of day (0-23), keeps only venues open then")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsRequiredTogether("day", "hour")
	cmd.MarkFlagsMutuallyExclusive("place", "lat")
}

func nearbyParams(ctx context.Context, cmd *cobra.Command, svc locations.Service) (locations.SearchParams, error) {
	kind, ok := types.ParseKindFilter(nearbyOpts.kind)
	if !ok {
		return locations.SearchParams{}, fmt.Errorf("--type must be cafe, library or all")
	}
	loc, err := resolveLocation(tzName)
	if err != nil {
		return locations.SearchParams{}, err
	}
	params := locations.SearchParams{
		Lat:      nearbyOpts.lat,
		Lng:      nearbyOpts.lng,
		Kind:     kind,
		Origin:   locations.OriginDevice,
		Location: loc,
	}

	switch {
	case nearbyOpts.place != "":
		res, err := svc.Geocode(ctx, nearbyOpts.place)
		if err != nil {
			return params, fmt.Errorf("geocode %q: %w", nearbyOpts.place, err)
		}
		params.Lat, params.Lng = res.Lat, res.Lng
		params.Origin = locations.OriginSearch
	case !cmd.Flags().Changed("lat"):
		return params, errors.New("either --lat/--lng or --place is required")
	}

	if cmd.Flags().Changed("day") {
		day, hour := nearbyOpts.day, nearbyOpts.hour
		params.DayOffset, params.Hour = &day, &hour
	}
	return params, nil
}
