// Package config provides configuration management for gdxtoolbox.
// It handles loading configuration from multiple sources, validation, and
// resolution of the directories the toolbox reads from and writes to.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML configuration file
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GDX_<SECTION>_<FIELD>:
//
//	GDX_SERVER_PORT=8080
//	GDX_LOGGING_LEVEL=debug
//	GDX_PATHS_RESULTS_DIR=/data/results
//	GDX_IMPORT_GDXDUMP_PATH=/opt/gams/gdxdump
//	GDX_IMPORT_ONLY_ESSENTIAL_OUTPUTS=false
//
// # Path Management
//
// Relative paths are resolved against Paths.BaseDir, which defaults to the
// current working directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	archive := paths.ResultPath("baseline.gdx")
package config
