// Package config provides environment-based configuration for kayan-roles.
//
// Configuration is loaded from environment variables using Viper, with
// sensible defaults for development. The role hierarchy is read from an
// optional roles.yaml file in the working directory or in $KAYAN_CONFIG_DIR.
//
// # Environment Variables
//
//   - DB_TYPE: Database type (sqlite, postgres, mysql). Default: sqlite
//   - DSN: Database connection string. Default: kayan.db
//   - LOG_LEVEL: Logging level (debug, info, warn, error). Default: info
//   - PORT: HTTP server port. Default: 8080
//   - MASTER_ROLE: Role allowed to grant every role. Default: ROLE_SUPER_ADMIN
//
// # Role Hierarchy
//
// Viper lowercases map keys, so entries are listed rather than keyed by role:
//
//	role_hierarchy:
//	  - role: ROLE_ADMIN
//	    inherits: [ROLE_USER]
//	  - role: ROLE_SUPER_ADMIN
//	    inherits: [ROLE_ADMIN, ROLE_ALLOWED_TO_SWITCH]
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	DBType        string      `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN           string      `mapstructure:"DSN"`
	LogLevel      string      `mapstructure:"LOG_LEVEL"`
	Port          int         `mapstructure:"PORT"`
	MasterRole    string      `mapstructure:"MASTER_ROLE"`
	RoleHierarchy []RoleEntry `mapstructure:"ROLE_HIERARCHY"`
}

type RoleEntry struct {
	Role     string   `mapstructure:"role"`
	Inherits []string `mapstructure:"inherits"`
}

// Hierarchy returns the configured hierarchy keyed by role. Repeated entries
// for the same role are merged.
func (c *Config) Hierarchy() map[string][]string {
	h := make(map[string][]string, len(c.RoleHierarchy))
	for _, e := range c.RoleHierarchy {
		h[e.Role] = append(h[e.Role], e.Inherits...)
	}
	return h
}

func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("DSN", "kayan.db")
	v.SetDefault("MASTER_ROLE", "ROLE_SUPER_ADMIN")

	v.SetConfigName("roles")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := os.Getenv("KAYAN_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
