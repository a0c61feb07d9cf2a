package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed datasets.yaml
var embeddedDatasets []byte

// Dataset maps a setting name to its input file locations.
type Dataset struct {
	Tests         string `yaml:"tests"`
	GroundTruth   string `yaml:"ground_truth"`
	ScoringPrompt string `yaml:"scoring_prompt"`
}

type datasetRegistry struct {
	Default  string             `yaml:"default"`
	Datasets map[string]Dataset `yaml:"datasets"`
}

// LoadDatasets reads the dataset registry. When externalPath names a file it
// takes precedence over the embedded registry.
func LoadDatasets(externalPath string) (map[string]Dataset, string, error) {
	data := embeddedDatasets
	if externalPath != "" {
		external, err := os.ReadFile(externalPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read dataset registry %s: %w", externalPath, err)
		}
		data = external
	}

	var registry datasetRegistry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, "", fmt.Errorf("failed to parse dataset registry: %w", err)
	}
	return registry.Datasets, registry.Default, nil
}

// ResolveDataset finds a dataset by setting name, defaulting to the
// registry's default entry when the name is empty.
func ResolveDataset(name, externalPath string) (Dataset, error) {
	datasets, defaultName, err := LoadDatasets(externalPath)
	if err != nil {
		return Dataset{}, err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = defaultName
	}
	dataset, ok := datasets[name]
	if !ok {
		names := make([]string, 0, len(datasets))
		for n := range datasets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Dataset{}, fmt.Errorf("unknown dataset %q; available options: %s", name, strings.Join(names, ", "))
	}
	return dataset, nil
}
