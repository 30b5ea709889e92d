package config

import "time"

// Application constants
const (
	AppName    = "gdxtoolbox"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable read by Load
	EnvPrefix = "GDX"

	// Archive formats
	ExtensionGDX  = "gdx"
	ExtensionXLSX = "xlsx"

	// Default file names
	EssentialOutputsFileName = "essential_outputs.txt"
	ConfigFileName           = "config.yaml"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Timeouts
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultImportTimeout = 2 * time.Minute
)
