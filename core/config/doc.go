// Package config provides configuration management for the presentation service.
//
// It uses Viper to read environment variables (optionally from a .env file). Defaults
// come from the `default` struct tags of each section and keys map to variables by
// replacing dots with underscores (server.base_url -> SERVER_BASE_URL).
//
// # Configuration Structure
//
//   - Server: port, API key and public base URL
//   - Database: MySQL or SQLite connection
//   - Storage: S3/MinIO credentials, mirror bucket and staging prefix
//   - Assets: asset-management service endpoint and key
//   - Identity: id length and generation attempts
//   - Log: level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.BaseURL)
package config
