package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .netsentry.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to netsentry! Let's configure your dashboard.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Server port.
	portPrompt := promptui.Prompt{
		Label:    "Dashboard port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 2. Where predictions come from.
	sourcePrompt := promptui.Select{
		Label: "Where does the detector write predictions?",
		Items: []string{
			"a fixed file",
			"the newest file matching a glob",
		},
	}
	sourceIdx, _, err := sourcePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("predictions source: %w", err)
	}
	if sourceIdx == 0 {
		filePrompt := promptui.Prompt{Label: "Predictions file", Default: cfg.Detector.PredictionsFile}
		if cfg.Detector.PredictionsFile, err = filePrompt.Run(); err != nil {
			return nil, fmt.Errorf("predictions file: %w", err)
		}
	} else {
		globPrompt := promptui.Prompt{Label: "Predictions glob", Default: "output/**/predictions*.csv"}
		if cfg.Detector.PredictionsGlob, err = globPrompt.Run(); err != nil {
			return nil, fmt.Errorf("predictions glob: %w", err)
		}
		cfg.Detector.PredictionsFile = ""
	}

	// 3. Pipeline commands.
	capturePrompt := promptui.Prompt{
		Label:   "Capture command (blank to skip)",
		Default: strings.Join(cfg.Detector.CaptureCommand, " "),
	}
	captureStr, err := capturePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("capture command: %w", err)
	}
	cfg.Detector.CaptureCommand = strings.Fields(captureStr)

	predictPrompt := promptui.Prompt{
		Label:   "Predict command (blank to skip)",
		Default: strings.Join(cfg.Detector.PredictCommand, " "),
	}
	predictStr, err := predictPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("predict command: %w", err)
	}
	cfg.Detector.PredictCommand = strings.Fields(predictStr)

	// 4. Optional webhook.
	webhookPrompt := promptui.Prompt{
		Label:   "Anomaly webhook URL (blank to disable)",
		Default: "",
	}
	if cfg.Notify.WebhookURL, err = webhookPrompt.Run(); err != nil {
		return nil, fmt.Errorf("webhook url: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return ErrInvalidPort
	}
	return nil
}
