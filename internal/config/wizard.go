package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to labelkit! Let's configure the local daemon.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Listen port.
	portPrompt := promptui.Prompt{
		Label:    "Daemon port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	// 3. Printer.
	printerPrompt := promptui.Select{
		Label: "Select printer",
		Items: []string{
			"log     (print dialog stand-in, writes jobs to the log)",
			"network (raw TCP, e.g. port 9100)",
		},
	}
	idx, _, err := printerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("printer selection: %w", err)
	}
	if idx == 1 {
		cfg.Printer.Type = "network"

		addrPrompt := promptui.Prompt{
			Label: "Printer address",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("address is required")
				}
				return nil
			},
		}
		if cfg.Printer.Address, err = addrPrompt.Run(); err != nil {
			return nil, fmt.Errorf("printer address: %w", err)
		}
		cfg.Printer.Name = cfg.Printer.Address

		pPortPrompt := promptui.Prompt{
			Label:    "Printer port",
			Default:  strconv.Itoa(cfg.Printer.Port),
			Validate: validatePort,
		}
		pPort, err := pPortPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("printer port: %w", err)
		}
		cfg.Printer.Port, _ = strconv.Atoi(strings.TrimSpace(pPort))
	}

	// 4. Extra CORS origins.
	originsPrompt := promptui.Prompt{
		Label:   "Extra allowed origins (comma-separated, leave blank for defaults)",
		Default: "",
	}
	originsStr, err := originsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("allowed origins: %w", err)
	}
	cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, splitAndTrim(originsStr)...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("port must be a number between 0 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
