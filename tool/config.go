package tool

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/moyoez/filemigrate/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	currentConfig types.AppConfig
	configMu      sync.RWMutex
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Port: 53318,
		Destination: types.Destination{
			Kind: types.DestinationTwoPhase,
			URL:  "http://localhost:9000/file/initiate",
		},
		PollInterval: 3,
		StopOnDone:   true,
		HTTPTimeout:  0,
		NotifySocket: "/tmp/filemigrate-notify.sock",
		UseNotify:    false,
		BatchTTL:     60,
	}
}

func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			setCurrentConfig(cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}
	setCurrentConfig(cfg)
	return cfg, nil
}

// ValidateConfig normalizes the destination kind and rejects values the coordinator cannot use.
func ValidateConfig(cfg *types.AppConfig) error {
	kind, err := ParseDestinationKind(string(cfg.Destination.Kind))
	if err != nil {
		return err
	}
	cfg.Destination.Kind = kind
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.BatchTTL <= 0 {
		cfg.BatchTTL = 60
	}
	return nil
}

// ParseDestinationKind accepts presign|two-phase|direct, empty defaults to presign.
func ParseDestinationKind(raw string) (types.DestinationKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "presign", "two-phase", "twophase":
		return types.DestinationTwoPhase, nil
	case "direct":
		return types.DestinationDirect, nil
	default:
		return "", fmt.Errorf("unknown destination kind %q (want presign or direct)", raw)
	}
}

// ApplyFlags merges CLI overrides into the loaded config.
func ApplyFlags(cfg *types.AppConfig, flags types.Config) error {
	if flags.UsePort > 0 {
		cfg.Port = flags.UsePort
	}
	if flags.UseDestination != "" {
		cfg.Destination.URL = flags.UseDestination
	}
	if flags.UseKind != "" {
		kind, err := ParseDestinationKind(flags.UseKind)
		if err != nil {
			return err
		}
		cfg.Destination.Kind = kind
	}
	if flags.UseCSRFToken != "" {
		cfg.Destination.CSRFToken = flags.UseCSRFToken
	}
	if flags.UseStatusURL != "" {
		cfg.StatusURL = flags.UseStatusURL
	}
	if flags.UsePollInterval > 0 {
		cfg.PollInterval = flags.UsePollInterval
	}
	if flags.UseNotifySocket != "" {
		cfg.NotifySocket = flags.UseNotifySocket
		cfg.UseNotify = true
	}
	if flags.SkipNotify {
		cfg.UseNotify = false
	}
	setCurrentConfig(*cfg)
	return nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func setCurrentConfig(cfg types.AppConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	currentConfig = cfg
}

func GetCurrentConfig() types.AppConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig
}
