package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OpenRoadTools/haulcast/app/hos-api/planapi"
	"github.com/OpenRoadTools/haulcast/business/mapping"
	"github.com/OpenRoadTools/haulcast/foundation/database"
	"github.com/ardanlabs/conf"
	"github.com/nats-io/nats.go"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "HOS_API : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		Web struct {
			HTTPPort int `conf:"default:3000"`
		}
		Mapbox struct {
			AccessToken    string `conf:"noprint"`
			BaseURL        string `conf:"default:https://api.mapbox.com"`
			TimeoutSeconds int    `conf:"default:10"`
		}
		NATS struct {
			Url     string `conf:"default:nats://0.0.0.0:4222"`
			Publish bool   `conf:"default:false"`
			Subject string `conf:"default:plan-results"`
		}
		Plan struct {
			RecordToDatabase bool `conf:"default:true"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Plan hours-of-service compliant trips over HTTP"
	const prefix = "HOS_API"
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

	// =========================================================================
	// App Starting

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Start Database

	log.Println("main: Initializing database support")

	db, err := database.Open(database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Printf("main: Database Stopping : %s", cfg.DB.Host)
		err = db.Close()
		if err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()

	// =========================================================================
	// Connect to NATS when summaries are to be published

	var natsConnection *nats.Conn
	if cfg.NATS.Publish {
		log.Printf("main: Connecting to NATS at %s", cfg.NATS.Url)
		natsConnection, err = nats.Connect(cfg.NATS.Url)
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer natsConnection.Close()
	}

	if cfg.Mapbox.AccessToken == "" {
		return fmt.Errorf("a mapbox access token is required, set %s_MAPBOX_ACCESS_TOKEN", prefix)
	}
	provider := mapping.MakeMapboxProvider(log, cfg.Mapbox.AccessToken, cfg.Mapbox.BaseURL,
		time.Duration(cfg.Mapbox.TimeoutSeconds)*time.Second)

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	planapi.RunWebService(log, db, provider, natsConnection, planapi.Conf{
		HTTPPort:         cfg.Web.HTTPPort,
		RecordToDatabase: cfg.Plan.RecordToDatabase,
		PublishOverNats:  cfg.NATS.Publish,
		PlanSubject:      cfg.NATS.Subject,
	}, shutdown)
	return nil
}
