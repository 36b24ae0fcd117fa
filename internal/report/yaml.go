package report

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlReport pairs the run configuration with its rows, the same shape
// used for evaluation result files.
type yamlReport struct {
	Config Meta  `yaml:"config"`
	Books  []Row `yaml:"books"`
}

func writeYAML(path string, meta Meta, rows []Row) error {
	data, err := yaml.Marshal(yamlReport{Config: meta, Books: rows})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML report: %w", err)
	}

	slog.Info("Saved YAML report", "path", path, "rows", len(rows))
	return nil
}
