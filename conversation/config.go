package conversation

// DefaultStorageKey is the key the conversation list is persisted under.
const DefaultStorageKey = "chatConversations"

// Config holds conversation store parameters.
type Config struct {
	StorageKey  string `json:"storage_key,omitempty" yaml:"storage_key,omitempty" env:"CHATWIDGET_STORAGE_KEY"`
	TitleLength int    `json:"title_length,omitempty" yaml:"title_length,omitempty" env:"CHATWIDGET_TITLE_LENGTH"`
}

// DefaultConfig returns the default conversation store configuration.
func DefaultConfig() Config {
	return Config{
		StorageKey:  DefaultStorageKey,
		TitleLength: DefaultTitleLength,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.StorageKey != "" {
		c.StorageKey = source.StorageKey
	}
	if source.TitleLength > 0 {
		c.TitleLength = source.TitleLength
	}
}
