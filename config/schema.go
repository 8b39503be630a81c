package config

import (
	"sort"

	"github.com/invopop/jsonschema"
)

// RegisteredSectionSchemas maps each top level config section to the
// JSON Schema of its typed form.
var RegisteredSectionSchemas = map[string]*jsonschema.Schema{
	"model_config":   jsonschema.Reflect(&ModelConfig{}),
	"train_config":   jsonschema.Reflect(&TrainConfig{}),
	"eval_config":    jsonschema.Reflect(&EvalConfig{}),
	"dataset_config": jsonschema.Reflect(&KittiDatasetConfig{}),
}

// SectionNames lists the registered config sections, sorted.
func SectionNames() []string {
	names := make([]string, 0, len(RegisteredSectionSchemas))
	for name := range RegisteredSectionSchemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
