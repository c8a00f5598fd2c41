// Package config provides configuration management for the Ward Manager.
//
// It utilizes Viper for loading configuration from environment variables
// and a .env file, with defaults declared as struct tags on the partial
// configuration structs owned by each package.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details
//   - Feed: external occupancy feed endpoint, credentials, sync interval
//   - Storage: snapshot archive credentials and bucket settings
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Feed.BaseURL)
package config
