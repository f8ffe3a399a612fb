package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"parcel-dispatch-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server   `mapstructure:"server"   validate:"required"`
	Store    Store    `mapstructure:"store"    validate:"required"`
	Redis    Redis    `mapstructure:"redis"`
	Log      Log      `mapstructure:"log"      validate:"required"`
	Scenario Scenario `mapstructure:"scenario" validate:"required"`
}

type Server struct {
	Port              string        `mapstructure:"port"                validate:"required,numeric"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"        validate:"gt=0"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"       validate:"gt=0"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"        validate:"gt=0"`
}

type Store struct {
	Driver   string `mapstructure:"driver"    validate:"required,oneof=sqlite postgres"`
	Path     string `mapstructure:"path"      validate:"required_if=Driver sqlite"`
	URL      string `mapstructure:"url"       validate:"required_if=Driver postgres"`
	SeedPath string `mapstructure:"seed_path"`
}

type Redis struct {
	Addr string        `mapstructure:"addr"`
	TTL  time.Duration `mapstructure:"ttl" validate:"min=0"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

type Scenario struct {
	Hub         string      `mapstructure:"hub"          validate:"required"`
	ServiceDate string      `mapstructure:"service_date" validate:"required,datetime=2006-01-02"`
	ShiftStart  string      `mapstructure:"shift_start"  validate:"required"`
	Fleet       Fleet       `mapstructure:"fleet"        validate:"required"`
	Constraints Constraints `mapstructure:"constraints"`
}

type Fleet struct {
	SpeedMPH               float64   `mapstructure:"speed_mph"                validate:"gt=0"`
	Capacity               int       `mapstructure:"capacity"                 validate:"min=1"`
	Drivers                int       `mapstructure:"drivers"                  validate:"min=1"`
	DeferredDepartureFloor string    `mapstructure:"deferred_departure_floor"`
	Vehicles               []Vehicle `mapstructure:"vehicles"                 validate:"required,min=1,dive"`
}

type Vehicle struct {
	ID       int    `mapstructure:"id"        validate:"min=1"`
	DepartAt string `mapstructure:"depart_at"`
}

type Constraints struct {
	Groups     []Group     `mapstructure:"groups"     validate:"dive"`
	Delayed    []Delayed   `mapstructure:"delayed"    validate:"dive"`
	Correction *Correction `mapstructure:"correction"`
}

type Group struct {
	VehicleID int   `mapstructure:"vehicle_id" validate:"min=0"`
	ParcelIDs []int `mapstructure:"parcel_ids" validate:"required,min=1"`
}

type Delayed struct {
	ParcelIDs []int  `mapstructure:"parcel_ids" validate:"required,min=1"`
	ArrivesAt string `mapstructure:"arrives_at" validate:"required"`
}

type Correction struct {
	ParcelID    int    `mapstructure:"parcel_id"    validate:"min=1"`
	Address     string `mapstructure:"address"      validate:"required"`
	EffectiveAt string `mapstructure:"effective_at" validate:"required"`
}

// Load reads cfgFile (or ./config.yaml when empty), applies DISPATCH_* overrides, and validates.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("DISPATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("data")
		v.SetConfigType("yaml")
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/app.db")
	v.SetDefault("store.url", "")
	v.SetDefault("store.seed_path", "data/seeds/dataset.json")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.ttl", 15*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("scenario.shift_start", "8:00 AM")
	v.SetDefault("scenario.fleet.speed_mph", 18.0)
	v.SetDefault("scenario.fleet.capacity", 16)
	v.SetDefault("scenario.fleet.drivers", 2)

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config read error: %w", err)
		}
		// Not found is ok, use defaults/env
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal error: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("validation failed: %w", err)
	}

	// Surface bad clock strings at startup rather than at dispatch.
	day, err := cfg.Scenario.Day()
	if err != nil {
		return Config{}, err
	}
	if _, err := cfg.Scenario.Vehicles(day); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Scenario.BuildConstraints(day); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Scenario.Shift(day); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Scenario.DeferredFloor(day); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Day is the service date at midnight local time.
func (s Scenario) Day() (time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, s.ServiceDate, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("scenario.service_date: %w", err)
	}
	return day, nil
}

func (s Scenario) Shift(day time.Time) (time.Time, error) {
	at, err := domain.ParseClock(day, s.ShiftStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("scenario.shift_start: %w", err)
	}
	return at, nil
}

// DeferredFloor returns nil when no floor is configured.
func (s Scenario) DeferredFloor(day time.Time) (*time.Time, error) {
	if strings.TrimSpace(s.Fleet.DeferredDepartureFloor) == "" {
		return nil, nil
	}
	at, err := domain.ParseClock(day, s.Fleet.DeferredDepartureFloor)
	if err != nil {
		return nil, fmt.Errorf("scenario.fleet.deferred_departure_floor: %w", err)
	}
	return &at, nil
}

// Vehicles builds the configured fleet at the hub.
func (s Scenario) Vehicles(day time.Time) ([]*domain.Vehicle, error) {
	out := make([]*domain.Vehicle, 0, len(s.Fleet.Vehicles))
	seen := make(map[int]struct{}, len(s.Fleet.Vehicles))

	for _, vc := range s.Fleet.Vehicles {
		if _, dup := seen[vc.ID]; dup {
			return nil, fmt.Errorf("scenario.fleet.vehicles: id %d listed twice", vc.ID)
		}
		seen[vc.ID] = struct{}{}

		var departAt *time.Time
		if strings.TrimSpace(vc.DepartAt) != "" {
			at, err := domain.ParseClock(day, vc.DepartAt)
			if err != nil {
				return nil, fmt.Errorf("scenario.fleet.vehicles[%d].depart_at: %w", vc.ID, err)
			}
			departAt = &at
		}
		out = append(out, domain.NewVehicle(vc.ID, s.Fleet.Capacity, s.Fleet.SpeedMPH, s.Hub, departAt))
	}

	return out, nil
}

// BuildConstraints converts the configured rules onto the service day.
func (s Scenario) BuildConstraints(day time.Time) (domain.Constraints, error) {
	var c domain.Constraints

	for _, g := range s.Constraints.Groups {
		c.Groups = append(c.Groups, domain.HardGroup{VehicleID: g.VehicleID, ParcelIDs: g.ParcelIDs})
	}

	for i, d := range s.Constraints.Delayed {
		at, err := domain.ParseClock(day, d.ArrivesAt)
		if err != nil {
			return domain.Constraints{}, fmt.Errorf("scenario.constraints.delayed[%d]: %w", i, err)
		}
		c.Arrivals = append(c.Arrivals, domain.HubArrival{ParcelIDs: d.ParcelIDs, ArrivesAt: at})
	}

	if cc := s.Constraints.Correction; cc != nil {
		at, err := domain.ParseClock(day, cc.EffectiveAt)
		if err != nil {
			return domain.Constraints{}, fmt.Errorf("scenario.constraints.correction: %w", err)
		}
		c.Correction = &domain.Correction{ParcelID: cc.ParcelID, Address: cc.Address, EffectiveAt: at}
	}

	return c, nil
}
