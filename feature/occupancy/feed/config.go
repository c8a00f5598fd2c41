package feed

// Config holds configuration for the external occupancy feed.
type Config struct {
	// BaseURL is the endpoint of the external dictionary-data service.
	BaseURL string `mapstructure:"base_url" default:""`
	// Key is the installation secret sent in the request body.
	Key string `mapstructure:"key" default:""`
	// AuthHeader is the static Authorization header value (e.g. "Basic ...").
	AuthHeader string `mapstructure:"auth_header" default:""`
	// TimeoutSeconds bounds a single fetch, including retries.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// SyncIntervalSeconds enables the periodic sync scheduler when > 0.
	SyncIntervalSeconds int `mapstructure:"sync_interval_seconds" default:"0"`
}
