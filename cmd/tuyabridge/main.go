// Gray Logic Tuya bridge.
//
// Exposes data points of Tuya devices as select entities: the bridge
// discovers which enumerated settings each device supports, publishes their
// state over MQTT, and turns option choices from the API back into device
// commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	_ "github.com/nerrad567/gray-logic-tuya/migrations"

	"github.com/nerrad567/gray-logic-tuya/internal/api"
	tuyabridge "github.com/nerrad567/gray-logic-tuya/internal/bridges/tuya"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	"github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath  = "configs/config.yaml"
	healthCheckTimeout = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// Deferred closers run in reverse start order on return.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting Gray Logic Tuya bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	registryOpts := platform.RegistryOptions{
		Repository: platform.NewSQLiteRepository(db),
		Publisher:  mqttClient,
		StateQoS:   byte(cfg.MQTT.QoS),
		Logger:     log,
	}
	if influxClient != nil {
		registryOpts.History = influxClient
	}
	registry := platform.NewRegistry(registryOpts)
	categories := tuyabridge.NewSelectRegistry()

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:     cfg.API,
			WS:         cfg.WebSocket,
			Logger:     log,
			Selects:    registry,
			Categories: categories,
			Version:    version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		registry.AddStateListener(apiServer.BroadcastState)
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	if cfg.Tuya.Enabled {
		manager, selects, startErr := startTuya(ctx, cfg, categories, registry, mqttClient, influxClient, log)
		if startErr != nil {
			return fmt.Errorf("starting Tuya bridge: %w", startErr)
		}
		defer func() {
			log.Info("stopping Tuya bridge")
			selects.Stop()
			manager.Stop()
		}()
	} else {
		log.Info("Tuya bridge disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient, apiServer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// startTuya wires the device manager to the select platform and starts both.
// The platform subscribes before the manager delivers its first discovery.
func startTuya(
	ctx context.Context,
	cfg *config.Config,
	categories *tuyabridge.SelectRegistry,
	registry *platform.Registry,
	mqttClient *mqtt.Client,
	influxClient *influxdb.Client,
	log *logging.Logger,
) (*tuya.Manager, *tuyabridge.SelectPlatform, error) {
	manager, err := tuya.NewManager(tuya.ManagerOptions{
		MQTT:       mqttClient,
		CommandQoS: byte(cfg.Tuya.CommandQoS),
		Logger:     log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating device manager: %w", err)
	}

	opts := tuyabridge.Options{
		Manager:        manager,
		Host:           registry,
		Registry:       categories,
		BridgeID:       cfg.Tuya.BridgeID,
		Version:        version,
		HealthInterval: cfg.Tuya.GetHealthInterval(),
		Publisher:      mqttClient,
		Logger:         log,
	}
	if influxClient != nil {
		opts.Counts = influxClient
	}
	selects, err := tuyabridge.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating select platform: %w", err)
	}

	if err := selects.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("starting select platform: %w", err)
	}
	if err := manager.Start(ctx); err != nil {
		selects.Stop()
		return nil, nil, fmt.Errorf("starting device manager: %w", err)
	}

	log.Info("Tuya bridge started",
		"bridge_id", cfg.Tuya.BridgeID,
		"categories", len(categories.Categories()),
	)
	return manager, selects, nil
}

// healthCheck verifies every connection concurrently and returns the first
// failure. influxClient and apiServer may be nil when disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, apiServer *api.Server) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := db.HealthCheck(gctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := mqttClient.HealthCheck(gctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		return nil
	})
	if influxClient != nil {
		g.Go(func() error {
			if err := influxClient.HealthCheck(gctx); err != nil {
				return fmt.Errorf("influxdb: %w", err)
			}
			return nil
		})
	}
	if apiServer != nil {
		g.Go(func() error {
			if err := apiServer.HealthCheck(gctx); err != nil {
				return fmt.Errorf("api: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
