package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	// BaseDeliveryFee is the fixed cost of one delivery run, shared across
	// the pool. FreeDeliveryThreshold deliberately has no default:
	// deployments have disagreed on the value, so it must be set
	// explicitly or startup fails.
	BaseDeliveryFee       float64 `env:"BASE_DELIVERY_FEE" envDefault:"100"`
	FreeDeliveryThreshold int     `env:"FREE_DELIVERY_THRESHOLD,required"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
