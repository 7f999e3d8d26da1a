package config

import "github.com/kelseyhightower/envconfig"

// Config is the process-wide configuration record, loaded once at startup
// and passed by reference to every component that needs it.
type Config struct {
	App        App
	Store      Store
	Auth       Auth
	Synthetic  Synthetic
	Prediction Prediction
	Allocation Allocation
	Simulation Simulation
}

// Load reads configuration from the environment, applying defaults for any
// key not set.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// App carries process identity, logging, and HTTP listen knobs.
type App struct {
	Name     string `envconfig:"APP_NAME" default:"roomkeeper"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     int    `envconfig:"APP_PORT" default:"8080"`
}

// Store points at the durable sqlite database file.
type Store struct {
	DatabasePath string `envconfig:"DATABASE_PATH" default:"roomkeeper.db"`
}

// Auth enables the bearer-token guard on the HTTP surface when AdminToken is
// non-empty.
type Auth struct {
	AdminToken string `envconfig:"ADMIN_TOKEN"`
}

// Synthetic configures the idempotent startup seeder.
type Synthetic struct {
	RandomSeed                  int64    `envconfig:"SYNTHETIC_RANDOM_SEED" default:"42"`
	SeedDays                    int      `envconfig:"SYNTHETIC_SEED_DAYS" default:"90"`
	WeekdayOccupiedProbability  float64  `envconfig:"SYNTHETIC_WEEKDAY_OCCUPIED_PROBABILITY" default:"0.65"`
	WeekendOccupiedProbability  float64  `envconfig:"SYNTHETIC_WEEKEND_OCCUPIED_PROBABILITY" default:"0.25"`
	TimeSlots                   []string `envconfig:"SYNTHETIC_TIME_SLOTS" default:"09-11,11-13,13-15,15-17"`
}

// Prediction configures the Predictor.
type Prediction struct {
	TimeSlotRegex              string  `envconfig:"PREDICTION_TIME_SLOT_REGEX" default:"^\\d{2}-\\d{2}$"`
	RollingWindowDays          int     `envconfig:"PREDICTION_ROLLING_WINDOW_DAYS" default:"7"`
	DefaultOccupancyProbability float64 `envconfig:"PREDICTION_DEFAULT_OCCUPANCY_PROBABILITY" default:"0.5"`
	MinTrainingRows            int     `envconfig:"PREDICTION_MIN_TRAINING_ROWS" default:"30"`
	ModelMaxIter                int     `envconfig:"PREDICTION_MODEL_MAX_ITER" default:"200"`
	RandomState                 int64   `envconfig:"PREDICTION_RANDOM_STATE" default:"42"`
	ModelVersion                 string  `envconfig:"PREDICTION_MODEL_VERSION" default:"logreg-v1"`
}

// Allocation configures the Allocator.
type Allocation struct {
	IdleProbabilityThreshold float64 `envconfig:"ALLOCATION_IDLE_PROBABILITY_THRESHOLD" default:"0.5"`
	StakeholderUsageCap      float64 `envconfig:"ALLOCATION_STAKEHOLDER_USAGE_CAP" default:"0.6"`
	SolverMaxTimeSeconds     float64 `envconfig:"ALLOCATION_SOLVER_MAX_TIME_SECONDS" default:"5"`
	SolverRandomSeed         int64   `envconfig:"ALLOCATION_SOLVER_RANDOM_SEED" default:"0"`
	ObjectiveScale           int64   `envconfig:"ALLOCATION_OBJECTIVE_SCALE" default:"1000"`
	CPSATWorkers             int     `envconfig:"ALLOCATION_CP_SAT_WORKERS" default:"4"`
	ForecastHistoryDays      int     `envconfig:"ALLOCATION_FORECAST_HISTORY_DAYS" default:"30"`
}

// Simulation configures the Simulator's independent solver parameters.
type Simulation struct {
	CPSATWorkers     int   `envconfig:"SIMULATION_CP_SAT_WORKERS" default:"4"`
	SolverRandomSeed int64 `envconfig:"SIMULATION_SOLVER_RANDOM_SEED" default:"0"`
}
