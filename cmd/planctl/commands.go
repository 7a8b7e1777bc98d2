package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/mapbox"
	"github.com/couchcryptid/upkeep-planner-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/upkeep-planner-service/internal/config"
	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

// homeFile is the input document for plan and match. JSON is accepted too.
type homeFile struct {
	Home       domain.HomeContext `yaml:"home"`
	Appliances []domain.Appliance `yaml:"appliances"`
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:          "planctl",
		Short:        "Appliance lifespan and maintenance planning from the command line",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			slog.SetDefault(sharedobs.NewLogger(logLevel, "text"))
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(planCmd(), predictCmd(), normalizeCmd(), matchCmd(), zoneCmd())
	return cmd
}

func planCmd() *cobra.Command {
	var file, date string

	c := &cobra.Command{
		Use:   "plan",
		Short: "Generate a maintenance plan for the appliances and home in a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readHomeFile(file)
			if err != nil {
				return err
			}
			ref, err := parseDate(date)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), domain.GeneratePlan(in.Appliances, in.Home, ref))
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with home and appliances (required)")
	c.Flags().StringVar(&date, "date", "", "reference date YYYY-MM-DD (default today)")
	_ = c.MarkFlagRequired("file")
	return c
}

func predictCmd() *cobra.Command {
	var (
		applianceType string
		installYear   int
		tempC, rhPct  float64
		budget        float64
		location      string
		timeout       time.Duration
	)

	c := &cobra.Command{
		Use:   "predict",
		Short: "Predict climate-adjusted lifespan from explicit averages or a live lookup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var year *int
			if cmd.Flags().Changed("install-year") {
				year = &installYear
			}
			var budgetUSD *float64
			if cmd.Flags().Changed("budget") {
				budgetUSD = &budget
			}

			if location != "" {
				predictor, err := livePredictor(timeout)
				if err != nil {
					return err
				}
				pred, err := predictor.PredictAt(cmd.Context(), applianceType, year, location, budgetUSD)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), pred)
			}

			if !cmd.Flags().Changed("temp-c") || !cmd.Flags().Changed("rh-pct") {
				return errors.New("either --location or both --temp-c and --rh-pct are required")
			}
			return writeJSON(cmd.OutOrStdout(), domain.ComputeLifespan(domain.LifespanInput{
				ApplianceType: applianceType,
				InstallYear:   year,
				Climate:       domain.ClimateAverages{AvgTempC: tempC, AvgRHPct: rhPct},
				BudgetUSD:     budgetUSD,
				Now:           domain.Now(),
			}))
		},
	}

	c.Flags().StringVar(&applianceType, "type", "", "appliance type, free text (required)")
	c.Flags().IntVar(&installYear, "install-year", 0, "install year")
	c.Flags().Float64Var(&tempC, "temp-c", 0, "average temperature in °C")
	c.Flags().Float64Var(&rhPct, "rh-pct", 0, "average relative humidity in percent")
	c.Flags().Float64Var(&budget, "budget", 0, "replacement budget in USD (default per type)")
	c.Flags().StringVar(&location, "location", "", `look up climate for a place, e.g. "Austin, TX, US"`)
	c.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout for live lookups")
	_ = c.MarkFlagRequired("type")
	return c
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <text>",
		Short: "Print the canonical appliance type for free text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), domain.NormalizeApplianceType(strings.Join(args, " ")))
			return err
		},
	}
}

func matchCmd() *cobra.Command {
	var file, message string

	c := &cobra.Command{
		Use:   "match",
		Short: "Pick the appliance a chat message refers to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := readHomeFile(file)
			if err != nil {
				return err
			}
			picked := domain.PickBestAppliance(message, in.Appliances)
			if picked == nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no match")
				return err
			}
			return writeJSON(cmd.OutOrStdout(), picked)
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file with appliances (required)")
	c.Flags().StringVarP(&message, "message", "m", "", "chat message (required)")
	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("message")
	return c
}

func zoneCmd() *cobra.Command {
	var state string
	var tempC float64

	c := &cobra.Command{
		Use:   "zone",
		Short: "Classify a climate zone from a state code or an average temperature",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var zone domain.ClimateZone
			switch {
			case cmd.Flags().Changed("temp-c"):
				zone = domain.ClassifyTemperature(tempC)
			case state != "":
				zone = domain.ClassifyState(state)
			default:
				return errors.New("one of --state or --temp-c is required")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), zone)
			return err
		},
	}

	c.Flags().StringVar(&state, "state", "", "state or province code, e.g. TX")
	c.Flags().Float64Var(&tempC, "temp-c", 0, "average temperature in °C")
	c.MarkFlagsMutuallyExclusive("state", "temp-c")
	return c
}

// livePredictor builds a predictor on Open-Meteo, or on Mapbox geocoding
// when GEOCODER=mapbox is set in the environment or .env.
func livePredictor(timeout time.Duration) (*domain.LifespanPredictor, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := slog.Default()
	metrics := observability.NewMetrics()
	weather := openmeteo.NewClient(timeout, metrics, logger)

	var geocoder domain.Geocoder = weather
	if cfg.Geocoder == config.GeocoderMapbox {
		geocoder = mapbox.NewClient(cfg.MapboxToken, timeout, metrics, logger)
	}
	return domain.NewLifespanPredictor(geocoder, weather, logger), nil
}

func readHomeFile(path string) (homeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return homeFile{}, fmt.Errorf("read input: %w", err)
	}
	var in homeFile
	if err := yaml.Unmarshal(data, &in); err != nil {
		return homeFile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
