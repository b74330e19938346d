package config

// Merge returns base with every field that is set in override replacing it.
// A nil slice in override leaves the base slice alone; an empty one clears it.
func Merge(base, override *Config) *Config {
	result := *base

	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Exclude != nil {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if override.Agents != nil {
		result.Agents = append([]string{}, override.Agents...)
	}

	if override.Remote.URL != "" {
		result.Remote.URL = override.Remote.URL
	}
	if override.Remote.Limit != 0 {
		result.Remote.Limit = override.Remote.Limit
	}
	if override.Remote.Timeout != "" {
		result.Remote.Timeout = override.Remote.Timeout
	}
	return &result
}
