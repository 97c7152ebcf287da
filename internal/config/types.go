package config

// Config is the top-level labelkit configuration, corresponding to
// .labelkit.yml.
type Config struct {
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	DataDir string        `yaml:"data_dir" koanf:"data_dir"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
	Printer PrinterConfig `yaml:"printer" koanf:"printer"`
}

// ServerConfig holds the local daemon's listen and CORS settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port int    `yaml:"port" koanf:"port"`
	// AllowAllOrigins disables the origin allow-list (dev mode).
	AllowAllOrigins bool     `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// PrinterConfig selects where print jobs go.
type PrinterConfig struct {
	// Type is "log" (print dialog stand-in) or "network" (raw TCP).
	Type           string `yaml:"type" koanf:"type"`
	Name           string `yaml:"name" koanf:"name"`
	Address        string `yaml:"address" koanf:"address"`
	Port           int    `yaml:"port" koanf:"port"`
	TimeoutSeconds int    `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}
