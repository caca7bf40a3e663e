package dofusdb

// Config holds configuration for the DofusDB HTTP client.
type Config struct {
	// BaseURL is the API root, without trailing slash.
	BaseURL string `mapstructure:"base_url" default:"https://api.dofusdb.fr"`
	// Lang selects the language of translated fields.
	Lang string `mapstructure:"lang" default:"fr"`
	// TimeoutSeconds bounds one HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
	// Retries is the number of extra attempts for a failed page.
	Retries int `mapstructure:"retries" default:"2"`
	// RetryDelayMs is the base backoff between attempts.
	RetryDelayMs int `mapstructure:"retry_delay_ms" default:"500"`
}
