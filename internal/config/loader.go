package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"apprepo/pkg/logging"
)

const (
	userConfigDir  = ".config/apprepo"
	configFileName = "config.yaml"
)

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from configPath on top of the defaults and
// validates the result. A missing file yields the defaults. Relative
// filesystem paths of clusters are resolved against configPath.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return Config{}, err
	}

	// Without an explicit default, the first declared cluster is used.
	config.DefaultCluster = ""
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, parseError(configFilePath, err)
	}
	if config.DefaultCluster == "" && len(config.Clusters) > 0 {
		config.DefaultCluster = config.Clusters[0].Name
	}

	for i := range config.Clusters {
		path := config.Clusters[i].FilesystemPath
		if path != "" && !filepath.IsAbs(path) {
			config.Clusters[i].FilesystemPath = filepath.Join(configPath, path)
		}
	}

	if errs := Validate(config); errs.HasErrors() {
		return Config{}, FormatValidationError("config", configFilePath, errs)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

func parseError(path string, err error) ConfigurationError {
	ce := NewConfigurationError(path, "parse", err.Error())
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		ce.LineNumber, _ = strconv.Atoi(m[1])
	}
	ce.Suggestions = []string{"check the YAML syntax of " + filepath.Base(path)}
	return ce
}
