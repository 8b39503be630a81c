// Package config defines the typed form of the detection pipeline
// configuration and the machinery to read, validate and compare
// instances of it.
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// A Config is the full configuration of one experiment: the model, its
// training and evaluation settings, and the dataset feeding it.
type Config struct {
	Model   ModelConfig        `json:"model_config"`
	Train   TrainConfig        `json:"train_config"`
	Eval    EvalConfig         `json:"eval_config"`
	Dataset KittiDatasetConfig `json:"dataset_config"`

	// ConfigFilePath is the file this config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// Ensure ensures all parts of the config are valid and consistent with
// each other.
func (config *Config) Ensure() error {
	var err error
	err = multierr.Append(err, config.Model.Validate("model_config"))
	err = multierr.Append(err, config.Train.Validate("train_config"))
	err = multierr.Append(err, config.Eval.Validate("eval_config"))
	err = multierr.Append(err, config.Dataset.Validate("dataset_config"))
	if err != nil {
		return err
	}

	// Cross section checks run only once every section is valid on
	// its own.
	if config.Model.Rcnn.ProposalRoiCropSize > config.Model.Input.PcSamplePts {
		err = multierr.Append(err, utils.NewConfigValidationError("model_config",
			errors.Errorf("rcnn_proposal_roi_crop_size (%d) cannot exceed pc_sample_pts (%d)",
				config.Model.Rcnn.ProposalRoiCropSize, config.Model.Input.PcSamplePts)))
	}
	if config.Model.Rcnn.NmsSize > config.Model.Rpn.TestPostNmsSize {
		err = multierr.Append(err, utils.NewConfigValidationError("model_config",
			errors.Errorf("rcnn_nms_size (%d) cannot exceed rpn_test_post_nms_size (%d)",
				config.Model.Rcnn.NmsSize, config.Model.Rpn.TestPostNmsSize)))
	}
	return err
}
