package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	appDirName       = "ReplayConverterGUI"
	settingsFileName = "replay_converter_settings.json"
)

// Documented defaults for the PCD import options. A flag is only passed to the
// converter when its value differs from these.
const (
	DefaultPCDWidth  = "0"
	DefaultPCDHeight = "0"
	DefaultPCDZoom   = "1.0"
)

// Settings holds the persisted converter settings
type Settings struct {
	ConverterPath string `json:"converter_path"`
	PCDWidth      string `json:"pcd_width"`
	PCDHeight     string `json:"pcd_height"`
	PCDSwap       bool   `json:"pcd_swap"`
	PCDZoom       string `json:"pcd_zoom"`
	PCDRemove     bool   `json:"pcd_remove"`
}

// DefaultSettings returns settings with every key at its default value
func DefaultSettings() Settings {
	return Settings{
		PCDWidth:  DefaultPCDWidth,
		PCDHeight: DefaultPCDHeight,
		PCDZoom:   DefaultPCDZoom,
	}
}

// Store loads and saves settings
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
	Path() string
}

// DefaultPath returns the settings file location under the user config directory
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appDirName, settingsFileName), nil
}

// FileStore persists settings as a JSON file
type FileStore struct {
	path   string
	logger *logrus.Logger
}

// NewFileStore creates a store for path. An empty path selects DefaultPath.
func NewFileStore(path string, logger *logrus.Logger) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve settings path: %w", err)
		}
		path = p
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the settings file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the settings file, returning defaults if it is missing or invalid.
// Keys absent from the file keep their default values.
func (s *FileStore) Load() (Settings, error) {
	log := s.logger.WithField("path", s.path)

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug("Settings file not found, using defaults")
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("open settings: %w", err)
	}
	defer file.Close()

	settings := DefaultSettings()
	if err := json.NewDecoder(file).Decode(&settings); err != nil {
		log.WithError(err).Warn("Settings file is not valid JSON, using defaults")
		return DefaultSettings(), nil
	}

	log.Debug("Settings loaded")
	return settings, nil
}

// Save writes the settings file, creating its directory when needed
func (s *FileStore) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create settings directory %s: %w", filepath.Dir(s.path), err)
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(settings); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	s.logger.WithField("path", s.path).Info("Settings saved")
	return nil
}

// MemoryStore keeps settings in memory
type MemoryStore struct {
	mu       sync.Mutex
	settings Settings
	saves    int
}

// NewMemoryStore returns a store seeded with settings
func NewMemoryStore(settings Settings) *MemoryStore {
	return &MemoryStore{settings: settings}
}

func (m *MemoryStore) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *MemoryStore) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	m.saves++
	return nil
}

func (m *MemoryStore) Path() string {
	return "(memory)"
}

// Saves reports how many times Save was called
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
