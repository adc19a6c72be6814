package transport

// Config holds the collaborator endpoints. Paths are joined to BaseURL.
type Config struct {
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty" env:"CHATWIDGET_BASE_URL"`
	ChatPath    string `json:"chat_path,omitempty" yaml:"chat_path,omitempty" env:"CHATWIDGET_CHAT_PATH"`
	UploadPath  string `json:"upload_path,omitempty" yaml:"upload_path,omitempty" env:"CHATWIDGET_UPLOAD_PATH"`
	UploadField string `json:"upload_field,omitempty" yaml:"upload_field,omitempty" env:"CHATWIDGET_UPLOAD_FIELD"` // Multipart field carrying the file.
	UserAgent   string `json:"user_agent,omitempty" yaml:"user_agent,omitempty" env:"CHATWIDGET_USER_AGENT"`
}

// DefaultConfig returns the configuration of the reference reply service.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:5001",
		ChatPath:    "/chat",
		UploadPath:  "/upload",
		UploadField: "file",
		UserAgent:   "chatwidget/1.0",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.ChatPath != "" {
		c.ChatPath = source.ChatPath
	}
	if source.UploadPath != "" {
		c.UploadPath = source.UploadPath
	}
	if source.UploadField != "" {
		c.UploadField = source.UploadField
	}
	if source.UserAgent != "" {
		c.UserAgent = source.UserAgent
	}
}
