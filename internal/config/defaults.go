package config

// DefaultPath is the config file read when --config is not given.
const DefaultPath = ".labelkit.yml"

// DefaultAllowedOrigins lets browser extensions and local pages call the
// daemon.
var DefaultAllowedOrigins = []string{
	"chrome-extension://*",
	"moz-extension://*",
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           7311,
			AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
		},
		DataDir: ".labelkit",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Printer: PrinterConfig{
			Type:           "log",
			Name:           "dialog",
			Port:           9100,
			TimeoutSeconds: 10,
		},
	}
}
