package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server      ServerConfig      `toml:"server"`      // HTTP server settings
	Logging     LoggingConfig     `toml:"logging"`     // Application logging settings
	Calculators CalculatorsConfig `toml:"calculators"` // Defaults for omitted calculator inputs
	Sites       SitesConfig       `toml:"sites"`       // Dive site database settings
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // Primary HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
	StaticFilesDir     string   `toml:"static_files_dir"`      // Directory to serve the calculator frontend from (optional)
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" (structured) or "console" (human-readable)
}

// CalculatorsConfig holds the values used when a request leaves a field out
type CalculatorsConfig struct {
	MaxPO2          float64 `toml:"max_po2"`            // Working pO2 limit in bar for MOD and best mix
	MaxENDMeters    float64 `toml:"max_end_m"`          // END limit for best mix
	O2PricePerLiter float64 `toml:"o2_price_per_liter"` // Oxygen price for fill costing
	HePricePerLiter float64 `toml:"he_price_per_liter"` // Helium price for fill costing
	RuleOfThirds    bool    `toml:"rule_of_thirds"`     // Gas planning reserve policy
	DefaultSAC      float64 `toml:"default_sac"`        // SAC in l/min for gas planning
}

// SitesConfig points at the dive site database
type SitesConfig struct {
	DBPath string `toml:"db_path"` // CSV with header: id,name,latitude,longitude,elevation_m
	Sites  []Site `toml:"-"`       // Loaded from DBPath
}

// Site is a dive site with the coordinates needed for altitude and compass corrections
type Site struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read the config file
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()

	if config.Sites.DBPath != "" {
		dbPath := config.Sites.DBPath
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(filepath.Dir(path), dbPath)
		}
		sites, err := LoadSites(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load dive sites: %w", err)
		}
		config.Sites.Sites = sites
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations in order of preference.
// With no file anywhere the defaults are returned.
func LoadWithFallback(preferredPath string) (*Config, error) {
	if preferredPath != "" {
		return Load(preferredPath)
	}

	// List of paths to check in order of preference
	searchPaths := []string{
		"configs/config.toml",
		"config.toml",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
			}
			return config, nil
		}
	}

	return Default(), nil
}

// LoadSites parses the dive site CSV database
func LoadSites(path string) ([]Site, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseSites(file)
}

// ParseSites reads dive sites from CSV. The header row is required and
// columns are matched by name.
func ParseSites(r io.Reader) ([]Site, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "name", "latitude", "longitude"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	sites := make([]Site, 0, len(records))
	seen := make(map[string]bool)
	for line, record := range records {
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		site := Site{ID: get("id"), Name: get("name")}
		if site.ID == "" {
			return nil, fmt.Errorf("line %d: empty id", line+2)
		}
		if seen[site.ID] {
			return nil, fmt.Errorf("line %d: duplicate id %s", line+2, site.ID)
		}
		seen[site.ID] = true

		if site.Latitude, err = strconv.ParseFloat(get("latitude"), 64); err != nil {
			return nil, fmt.Errorf("invalid latitude for %s: %w", site.ID, err)
		}
		if site.Longitude, err = strconv.ParseFloat(get("longitude"), 64); err != nil {
			return nil, fmt.Errorf("invalid longitude for %s: %w", site.ID, err)
		}
		if site.Latitude < -90 || site.Latitude > 90 || site.Longitude < -180 || site.Longitude > 180 {
			return nil, fmt.Errorf("coordinates out of range for %s", site.ID)
		}

		// Elevation might be empty; sea level then
		if elev := get("elevation_m"); elev != "" {
			if site.ElevationM, err = strconv.ParseFloat(elev, 64); err != nil {
				return nil, fmt.Errorf("invalid elevation for %s: %w", site.ID, err)
			}
		}

		sites = append(sites, site)
	}

	return sites, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSecs == 0 {
		c.Server.ReadTimeoutSecs = 15
	}
	if c.Server.WriteTimeoutSecs == 0 {
		c.Server.WriteTimeoutSecs = 15
	}
	if c.Server.IdleTimeoutSecs == 0 {
		c.Server.IdleTimeoutSecs = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Calculators.MaxPO2 == 0 {
		c.Calculators.MaxPO2 = 1.4
	}
	if c.Calculators.MaxENDMeters == 0 {
		c.Calculators.MaxENDMeters = 30
	}
	if c.Calculators.DefaultSAC == 0 {
		c.Calculators.DefaultSAC = 20
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSecs < 0 || c.Server.WriteTimeoutSecs < 0 || c.Server.IdleTimeoutSecs < 0 {
		return fmt.Errorf("server timeouts must be >= 0")
	}

	// Validate static files directory exists
	if c.Server.StaticFilesDir != "" {
		if _, err := os.Stat(c.Server.StaticFilesDir); os.IsNotExist(err) {
			return fmt.Errorf("static files directory does not exist: %s", c.Server.StaticFilesDir)
		}
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid log level
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
		// Valid log format
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return c.ValidateCalculators()
}

// ValidateCalculators validates the calculator defaults
func (c *Config) ValidateCalculators() error {
	calc := c.Calculators

	if calc.MaxPO2 <= 0 || calc.MaxPO2 > 2 {
		return fmt.Errorf("invalid max_po2: %g (must be within (0, 2] bar)", calc.MaxPO2)
	}
	if calc.MaxENDMeters < 0 {
		return fmt.Errorf("invalid max_end_m: %g (must be >= 0)", calc.MaxENDMeters)
	}
	if calc.O2PricePerLiter < 0 {
		return fmt.Errorf("invalid o2_price_per_liter: %g (must be >= 0)", calc.O2PricePerLiter)
	}
	if calc.HePricePerLiter < 0 {
		return fmt.Errorf("invalid he_price_per_liter: %g (must be >= 0)", calc.HePricePerLiter)
	}
	if calc.DefaultSAC <= 0 {
		return fmt.Errorf("invalid default_sac: %g (must be > 0)", calc.DefaultSAC)
	}

	return nil
}
