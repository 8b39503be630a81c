package config_test

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"

	"github.com/pointfusion/detconfig/config"
)

func TestSectionNames(t *testing.T) {
	test.That(t, config.SectionNames(), test.ShouldResemble,
		[]string{"dataset_config", "eval_config", "model_config", "train_config"})
}

func TestRegisteredSectionSchemas(t *testing.T) {
	for _, name := range config.SectionNames() {
		schema, ok := config.RegisteredSectionSchemas[name]
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, schema, test.ShouldNotBeNil)

		md, err := json.Marshal(schema)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, string(md), test.ShouldContainSubstring, "$schema")
	}

	md, err := json.Marshal(config.RegisteredSectionSchemas["model_config"])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(md), test.ShouldContainSubstring, "rpn_fusion_method")
	test.That(t, string(md), test.ShouldContainSubstring, "checkpoint_name")

	md, err = json.Marshal(config.RegisteredSectionSchemas["dataset_config"])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(md), test.ShouldContainSubstring, "kitti_utils_config")
}
