// Package config provides configuration management for krosmoz-scrapper.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each section in 'default' struct tags.
//
// # Configuration Structure
//
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Cache: memory or redis backend for the configuration caches
//   - Remote: DofusDB base URL, language, timeout and retry policy
//   - Scrapping: alias registry location, archive toggle, paging defaults
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
