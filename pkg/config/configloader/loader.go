// Package configloader loads layered service configuration with koanf.
package configloader

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Load reads the configuration for the given service.
// Sources in increasing priority: yaml file, .env file, system environment.
// Environment keys use the <SERVICE>_ prefix and "_" as the path separator,
// e.g. CATALOG_DATABASE_URL -> database.url.
// <SERVICE>_CONFIG_FILE overrides the yaml file location.
func Load[T Validator](serviceName string) (T, error) {
	var cfg T
	k := koanf.New(".")

	envPrefix := fmt.Sprintf("%s_", strings.ToUpper(serviceName))
	configFile := defaultConfigFile
	if override := os.Getenv(envPrefix + "CONFIG_FILE"); override != "" {
		configFile = override
	}

	// 1. yaml file
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: error loading YAML config file '%s': %v", configFile, err)
		}
	}

	// 2. .env file
	envTransformer := keyTransformer(envPrefix)
	if envFileMap, err := godotenv.Read(defaultEnvFile); err == nil {
		envMap := make(map[string]any)
		for key, value := range envFileMap {
			if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
				continue
			}
			envMap[envTransformer(key)] = value
		}
		if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
			log.Printf("WARN: error loading .env config: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. system environment, the highest priority
	if err := k.Load(env.Provider(envPrefix, ".", envTransformer), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// keyTransformer maps an environment variable name to a koanf key path.
func keyTransformer(envPrefix string) func(string) string {
	prefix := strings.ToLower(envPrefix)
	return func(key string) string {
		key = strings.ToLower(key)
		key = strings.TrimPrefix(key, prefix)
		return strings.ReplaceAll(key, "_", ".")
	}
}
