package main

import (
	"context"
	"encoding/json"
	"fmt"
	logger "log"
	"os"
	"time"

	"github.com/OpenRoadTools/haulcast/business/mapping"
	"github.com/OpenRoadTools/haulcast/business/planning"
	"github.com/ardanlabs/conf"
)

var build = "develop"

func main() {
	log := logger.New(os.Stderr, "HOS_PLANNER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		Trip struct {
			Name    string `conf:"default:Planned trip"`
			Current string
			// unset coordinates stay out of range so the address is geocoded
			CurrentLat     float64 `conf:"default:91"`
			CurrentLng     float64 `conf:"default:181"`
			Pickup         string
			PickupLat      float64 `conf:"default:91"`
			PickupLng      float64 `conf:"default:181"`
			Dropoff        string
			DropoffLat     float64 `conf:"default:91"`
			DropoffLng     float64 `conf:"default:181"`
			CycleHoursUsed float64 `conf:"default:0"`
			Start          string
		}
		Mapbox struct {
			AccessToken    string `conf:"noprint"`
			BaseURL        string `conf:"default:https://api.mapbox.com"`
			TimeoutSeconds int    `conf:"default:10"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Plan an hours-of-service compliant trip and print the plan as JSON"
	const prefix = "HOS_PLANNER"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Mapbox.AccessToken == "" {
		return fmt.Errorf("a mapbox access token is required, set %s_MAPBOX_ACCESS_TOKEN", prefix)
	}
	provider := mapping.MakeMapboxProvider(log, cfg.Mapbox.AccessToken, cfg.Mapbox.BaseURL,
		time.Duration(cfg.Mapbox.TimeoutSeconds)*time.Second)
	ctx := context.Background()

	current, err := resolveLocation(ctx, provider, cfg.Trip.Current, cfg.Trip.CurrentLat, cfg.Trip.CurrentLng)
	if err != nil {
		return fmt.Errorf("resolving current location: %w", err)
	}
	pickup, err := resolveLocation(ctx, provider, cfg.Trip.Pickup, cfg.Trip.PickupLat, cfg.Trip.PickupLng)
	if err != nil {
		return fmt.Errorf("resolving pickup location: %w", err)
	}
	dropoff, err := resolveLocation(ctx, provider, cfg.Trip.Dropoff, cfg.Trip.DropoffLat, cfg.Trip.DropoffLng)
	if err != nil {
		return fmt.Errorf("resolving dropoff location: %w", err)
	}

	start := time.Now()
	if cfg.Trip.Start != "" {
		start, err = time.Parse(time.RFC3339, cfg.Trip.Start)
		if err != nil {
			return fmt.Errorf("parsing start time, expected RFC3339: %w", err)
		}
	}

	planner := planning.MakePlanner(log, provider)
	result, err := planner.Plan(ctx, planning.TripInput{
		Name:           cfg.Trip.Name,
		Current:        current,
		Pickup:         pickup,
		Dropoff:        dropoff,
		CycleHoursUsed: cfg.Trip.CycleHoursUsed,
		PlannedStart:   start,
	})
	if err != nil {
		return fmt.Errorf("planning trip: %w", err)
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

// resolveLocation uses explicit coordinates when both were provided on the
// command line, geocoding the address otherwise. Unset coordinate flags keep
// their out-of-range defaults.
func resolveLocation(ctx context.Context, provider mapping.Provider,
	address string, lat float64, lng float64) (mapping.Location, error) {

	coords := mapping.Location{Address: address, Lat: lat, Lng: lng}
	if coords.Valid() {
		return coords, nil
	}
	if address == "" {
		return mapping.Location{}, fmt.Errorf("requires an address or coordinates")
	}
	return provider.Geocode(ctx, address)
}
