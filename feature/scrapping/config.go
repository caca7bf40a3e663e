package scrapping

// Config holds the collection run settings.
type Config struct {
	// RegistryPath is the alias registry file used when RegistryObject is empty.
	RegistryPath string `mapstructure:"registry_path" default:"config/collect_aliases.json"`
	// RegistryObject loads the alias registry from the storage bucket instead of disk.
	RegistryObject string `mapstructure:"registry_object" default:""`
	// Archive stores every fetched page in the storage bucket.
	Archive bool `mapstructure:"archive" default:"false"`
	// DefaultPageSize is used when a run does not request one.
	DefaultPageSize int `mapstructure:"default_page_size" default:"50"`
	// FallbackCap bounds entities without a configured cap.
	FallbackCap int `mapstructure:"fallback_cap" default:"1000"`
}
