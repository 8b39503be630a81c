package config_test

import (
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/pointfusion/detconfig/config"
)

func TestDiffConfigsEqual(t *testing.T) {
	logger := golog.NewTestLogger(t)
	left, err := config.Read(filepath.Join("..", "configs", "cars.config"), logger)
	test.That(t, err, test.ShouldBeNil)
	right, err := config.Read(filepath.Join("..", "configs", "cars.config"), logger)
	test.That(t, err, test.ShouldBeNil)

	diff, err := config.DiffConfigs(left, right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff.Equal, test.ShouldBeTrue)
	test.That(t, diff.ChangedSections, test.ShouldBeEmpty)
}

func TestDiffConfigsChanged(t *testing.T) {
	logger := golog.NewTestLogger(t)
	left, err := config.Read(filepath.Join("..", "configs", "cars.config"), logger)
	test.That(t, err, test.ShouldBeNil)
	right, err := config.Read(filepath.Join("..", "configs", "cyclists.config"), logger)
	test.That(t, err, test.ShouldBeNil)

	diff, err := config.DiffConfigs(left, right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff.Equal, test.ShouldBeFalse)
	test.That(t, diff.ChangedSections, test.ShouldContain, "model_config")
	test.That(t, diff.ChangedSections, test.ShouldContain, "dataset_config")
	test.That(t, diff.PrettyDiff, test.ShouldContainSubstring, "cyclists")
}

func TestDiffConfigsSingleSection(t *testing.T) {
	logger := golog.NewTestLogger(t)
	left, err := config.Read(filepath.Join("..", "configs", "cars.config"), logger)
	test.That(t, err, test.ShouldBeNil)
	right, err := config.Read(filepath.Join("..", "configs", "cars.config"), logger)
	test.That(t, err, test.ShouldBeNil)
	right.Train.MaxIterations = 60000

	diff, err := config.DiffConfigs(left, right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, diff.Equal, test.ShouldBeFalse)
	test.That(t, diff.ChangedSections, test.ShouldResemble, []string{"train_config"})
}
