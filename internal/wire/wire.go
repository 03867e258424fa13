// Package wire provides dependency injection for the rover
// application. It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"math"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/rover/internal/adapters/sim"
	"github.com/example/rover/internal/adapters/sqlite"
	"github.com/example/rover/internal/app"
	"github.com/example/rover/internal/audio"
	"github.com/example/rover/internal/config"
	"github.com/example/rover/internal/db"
	"github.com/example/rover/internal/ports/primary"
)

// simTargets is how many targets a simulated arena starts with.
const simTargets = 12

// simTimeScale speeds up simulated motion so bench missions finish in
// reasonable wall time.
const simTimeScale = 20.0

var (
	configPath string

	cfg    config.Config
	logger *zap.Logger

	missionService     primary.MissionService
	calibrationService primary.CalibrationService
	reportService      primary.ReportService

	once sync.Once
)

// SetConfigPath selects the configuration file. Must be called before
// the first service accessor; with an empty path the defaults apply.
func SetConfigPath(path string) {
	configPath = path
}

// Config returns the loaded configuration.
func Config() config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// MissionService returns the singleton MissionService instance.
func MissionService() primary.MissionService {
	once.Do(initServices)
	return missionService
}

// CalibrationService returns the singleton CalibrationService
// instance.
func CalibrationService() primary.CalibrationService {
	once.Do(initServices)
	return calibrationService
}

// ReportService returns the singleton ReportService instance.
func ReportService() primary.ReportService {
	once.Do(initServices)
	return reportService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	} else {
		cfg = config.Default()
	}

	logger, err = buildLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Repository adapters (secondary ports).
	attempts := sqlite.NewAttemptRepository(database)
	hotspots := sqlite.NewHotspotRepository(database)
	baselines := sqlite.NewBaselineRepository(database)
	sessions := sqlite.NewSessionRepository(database)
	params := sqlite.NewParameterRepository(database)

	// Simulated hardware. A real deployment swaps these adapters for
	// GPIO and camera drivers behind the same ports.
	seed := time.Now().UnixNano()
	world := sim.NewWorld(seed, cfg.Disposal.X, cfg.Disposal.Y)
	world.Scatter(simTargets, cfg.Area.X, cfg.Area.Y, cfg.Area.Width, cfg.Area.Height)
	actuator := sim.NewActuator(world, logger,
		cfg.Control.ForwardSpeed, cfg.Control.TurnRateDegPerSec*math.Pi/180, simTimeScale)
	vision := sim.NewVision(world)
	source := sim.NewAudioSource(world, cfg.Audio.Channels, seed)

	// Services (primary ports implementation).
	missionService = app.NewMissionService(
		cfg, logger,
		attempts, hotspots, baselines, sessions, params,
		actuator, vision, audio.NewRing(), source,
	)
	calibrationService = app.NewCalibrationService(cfg, logger, source, baselines)
	reportService = app.NewReportService(attempts, hotspots, baselines, sessions, params)
}

func buildLogger() (*zap.Logger, error) {
	if os.Getenv("ROVER_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = nil
	return zcfg.Build()
}
