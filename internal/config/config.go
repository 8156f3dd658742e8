// Package config provides XML-based configuration management.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"DocViewBackend"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Content delivery configuration
	Cdn CdnConfig `xml:"Cdn"`

	// Upstream services
	Upstream UpstreamConfig `xml:"Upstream"`

	// Upload pipeline configuration
	Upload UploadConfig `xml:"Upload"`

	// Preview rendering configuration
	Render RenderConfig `xml:"Render"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// CdnConfig contains URL canonicalization settings
type CdnConfig struct {
	Domain     string `xml:"Domain"`
	ViewerHost string `xml:"FallbackViewerHost"`
}

// UpstreamConfig contains addresses of the services this backend fronts
type UpstreamConfig struct {
	CatalogBaseURL string `xml:"CatalogBaseURL"`
	IngestURL      string `xml:"IngestURL"`
}

// UploadConfig contains submission retry settings
type UploadConfig struct {
	MaxAttempts           int `xml:"MaxAttempts"`
	RetryDelayMs          int `xml:"RetryDelayMs"`
	AttemptTimeoutSeconds int `xml:"AttemptTimeoutSeconds"`
}

// RenderConfig contains preview rendering settings
type RenderConfig struct {
	DefaultPageWidth       int     `xml:"DefaultPageWidth"`
	FullscreenBoost        float64 `xml:"FullscreenBoost"`
	MaxFullscreenScale     float64 `xml:"MaxFullscreenScale"`
	SessionTimeoutMinutes  int     `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int     `xml:"CleanupIntervalMinutes"`
	FormatRulesFile        string  `xml:"FormatRulesFile"`
}

// StorageConfig contains scratch storage settings
type StorageConfig struct {
	DataDirectory string `xml:"DataDirectory"`
	TempDirectory string `xml:"TempDirectory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
			BodyLimit:    "16M",
		},
		Cdn: CdnConfig{
			Domain:     "d31rk6l704xpk7.cloudfront.net",
			ViewerHost: "docs.google.com",
		},
		Upstream: UpstreamConfig{
			CatalogBaseURL: "http://localhost:9000/api",
			IngestURL:      "http://localhost:9000/api/upload-document",
		},
		Upload: UploadConfig{
			MaxAttempts:           3,
			RetryDelayMs:          1000,
			AttemptTimeoutSeconds: 30,
		},
		Render: RenderConfig{
			DefaultPageWidth:       800,
			FullscreenBoost:        1.8,
			MaxFullscreenScale:     2.5,
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
			FormatRulesFile:        "",
		},
		Storage: StorageConfig{
			DataDirectory: "./data",
			TempDirectory: "./data/temp",
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- Document Preview Backend Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	// CDN_DOMAIN override
	if domain := os.Getenv("CDN_DOMAIN"); domain != "" {
		c.Cdn.Domain = domain
	}

	// CATALOG_BASE_URL override
	if base := os.Getenv("CATALOG_BASE_URL"); base != "" {
		c.Upstream.CatalogBaseURL = base
	}

	// INGEST_URL override
	if ingest := os.Getenv("INGEST_URL"); ingest != "" {
		c.Upstream.IngestURL = ingest
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.TempDirectory) {
		c.Storage.TempDirectory = filepath.Join(configDir, c.Storage.TempDirectory)
	}
	if c.Render.FormatRulesFile != "" && !filepath.IsAbs(c.Render.FormatRulesFile) {
		c.Render.FormatRulesFile = filepath.Join(configDir, c.Render.FormatRulesFile)
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.TempDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
