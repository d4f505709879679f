package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/rollblock/game/engine"
	"github.com/wricardo/rollblock/game/service"
	"github.com/wricardo/rollblock/game/solver"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrUnsolvable     = errors.New("level cannot be solved")
)

var log = logrus.WithField("component", "config")

// Preset file extensions, in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles level preset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a preset by name. The name may carry a file extension.
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	if !validPresetName(name) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}
	name = trimExt(name)

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	configPath, err := m.findPreset(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.DecodeLevelConfig(configPath, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	config.WithDefaults()
	m.configs[name] = config
	return config, nil
}

// findPreset locates the file backing a preset name
func (m *Manager) findPreset(name string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// validate checks structure and, for fixed layouts, solvability
func validate(config *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if config.IsGenerated() {
		return nil
	}

	grid, err := config.Grid()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	res, err := solver.Check(grid, config.Start)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !res.Solvable {
		return fmt.Errorf("%w: %w: %q from %s", ErrInvalidConfig, ErrUnsolvable, config.Name, config.Start)
	}
	return nil
}

// ListConfigs returns information about all available presets
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasPresetExt(entry.Name()) {
			continue
		}

		name := trimExt(entry.Name())
		if seen[name] {
			continue
		}
		seen[name] = true

		config, err := m.LoadConfig(name)
		if err != nil {
			log.WithError(err).WithField("file", entry.Name()).Warn("skipping invalid preset")
			continue
		}

		info := &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    name, // This is the identifier to use for session creation
			Name:        config.Name,
			Description: config.Description,
			Generated:   config.IsGenerated(),
		}
		if config.IsGenerated() {
			info.Width, info.Depth = config.Generate.Width, config.Generate.Depth
		} else {
			info.Width, info.Depth = len(config.Layout[0]), len(config.Layout)
		}
		configs = append(configs, info)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached preset and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default configuration
func (m *Manager) loadDefaultConfig() error {
	// Try classic first, then the first valid preset
	config, err := m.LoadConfig("classic")
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = createMinimalConfig()
		} else if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
			config = createMinimalConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig saves a preset to disk. The format follows the extension of
// name, defaulting to JSON.
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	if !validPresetName(name) {
		return fmt.Errorf("%w: preset name %q must be a plain file name", ErrInvalidConfig, name)
	}
	if err := validate(config); err != nil {
		return err
	}

	filename := name
	if !hasPresetExt(filename) {
		filename = name + ".json"
	}

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[trimExt(name)] = config.WithDefaults()
	m.mu.Unlock()

	return nil
}

// validPresetName reports whether name stays inside the config directory
func validPresetName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}

func hasPresetExt(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func trimExt(name string) string {
	if hasPresetExt(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// createMinimalConfig creates a small solvable level used when no preset exists
func createMinimalConfig() *engine.LevelConfig {
	config := &engine.LevelConfig{
		Name:        "default",
		Description: "Default minimal level",
		Layout: []string{
			"NNNNN",
			"NNNNN",
			"NNNNG",
		},
		Start: engine.Coord{X: 0, Z: 0},
	}
	return config.WithDefaults()
}
