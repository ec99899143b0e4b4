package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appLogger "github.com/Danielle-Barbieri/seat-scout/app/logger"
	"github.com/Danielle-Barbieri/seat-scout/config"
)

var (
	cfg     config.Config
	logger  *slog.Logger
	verbose bool
	tzName  string
)

var rootCmd = &cobra.Command{
	Use:   "seatscout",
	Short: "Find a nearby cafe or library with a free seat",
	Long:  "Queries nearby cafes and public libraries and scores each with a seat availability likelihood.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.InitConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		var w io.Writer = io.Discard
		if verbose {
			w = cmd.ErrOrStderr()
		}
		logger = appLogger.New(os.Getenv("APP_ENV"), w)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().StringVar(&tzName, "tz", "", "IANA time zone for today and hours (default: this machine's zone)")
	rootCmd.AddCommand(nearbyCmd, forecastCmd)
}

// resolveLocation maps --tz to a zone. Empty means nil, the local zone.
func resolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("--tz %q is not an IANA time zone: %w", name, err)
	}
	return loc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
