package config

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// A Diff is the difference between two configs, left and right, where
// left is usually the baseline experiment.
type Diff struct {
	Left, Right *Config

	// ChangedSections lists the top level sections that differ.
	ChangedSections []string
	PrettyDiff      string
	Equal           bool
}

// DiffConfigs returns the difference between the two given configs
// from left to right.
func DiffConfigs(left, right *Config) (*Diff, error) {
	pretty, err := prettyDiff(left, right)
	if err != nil {
		return nil, err
	}
	diff := Diff{Left: left, Right: right, PrettyDiff: pretty}
	for _, section := range []struct {
		name  string
		equal bool
	}{
		{"model_config", cmp.Equal(left.Model, right.Model)},
		{"train_config", cmp.Equal(left.Train, right.Train)},
		{"eval_config", cmp.Equal(left.Eval, right.Eval)},
		{"dataset_config", cmp.Equal(left.Dataset, right.Dataset)},
	} {
		if !section.equal {
			diff.ChangedSections = append(diff.ChangedSections, section.name)
		}
	}
	diff.Equal = len(diff.ChangedSections) == 0
	return &diff, nil
}

func prettyDiff(left, right *Config) (string, error) {
	leftMd, err := json.MarshalIndent(left, "", "  ")
	if err != nil {
		return "", err
	}
	rightMd, err := json.MarshalIndent(right, "", "  ")
	if err != nil {
		return "", err
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(leftMd)+"\n", string(rightMd)+"\n", true)
	return dmp.DiffPrettyText(diffs), nil
}
