package config

type App struct {
	Port            string `yaml:"port" env:"APP_PORT" default:"8080"`
	DatabaseURL     string `yaml:"database_url" env:"DATABASE_URL,required"`
	JWTSecret       string `yaml:"jwt_secret" env:"JWT_SECRET,required"`
	AccessTTLHours  int    `yaml:"access_ttl_hours" env:"ACCESS_TTL_HOURS" default:"1"`
	RefreshTTLHours int    `yaml:"refresh_ttl_hours" env:"REFRESH_TTL_HOURS" default:"168"`
	Env             string `yaml:"env" env:"APP_ENV" default:"dev"`
}
