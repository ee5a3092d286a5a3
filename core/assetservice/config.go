package assetservice

// Config holds configuration for the external asset-management service.
type Config struct {
	// Endpoint is the base URL of the asset service API.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:5000"`
	// ApiKey is sent as a bearer token on every call.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds a single HTTP call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
