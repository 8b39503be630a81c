package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// TrainConfig holds the training loop settings.
type TrainConfig struct {
	Optimizer OptimizerConfig `json:"optimizer"`

	BatchSize     int `json:"batch_size"`
	MaxIterations int `json:"max_iterations"`

	CheckpointInterval   int `json:"checkpoint_interval"`
	MaxCheckpointsToKeep int `json:"max_checkpoints_to_keep"`

	SummaryInterval   int  `json:"summary_interval"`
	SummaryHistograms bool `json:"summary_histograms"`
	SummaryImgImages  bool `json:"summary_img_images"`

	AllowGpuMemGrowth bool `json:"allow_gpu_mem_growth"`
}

// Validate ensures all parts of the config are valid.
func (config *TrainConfig) Validate(path string) error {
	if config.BatchSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("batch_size must be positive, got %d", config.BatchSize))
	}
	if config.MaxIterations <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_iterations must be positive, got %d", config.MaxIterations))
	}
	if config.CheckpointInterval <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("checkpoint_interval must be positive, got %d", config.CheckpointInterval))
	}
	if config.CheckpointInterval > config.MaxIterations {
		return utils.NewConfigValidationError(path,
			errors.Errorf("checkpoint_interval (%d) cannot exceed max_iterations (%d)",
				config.CheckpointInterval, config.MaxIterations))
	}
	if config.MaxCheckpointsToKeep <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("max_checkpoints_to_keep must be positive, got %d", config.MaxCheckpointsToKeep))
	}
	if config.SummaryInterval <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("summary_interval must be positive, got %d", config.SummaryInterval))
	}
	return config.Optimizer.Validate(fmt.Sprintf("%s.%s", path, "optimizer"))
}

// OptimizerConfig selects exactly one optimizer.
type OptimizerConfig struct {
	Adam            *AdamOptimizer            `json:"adam_optimizer,omitempty"`
	Momentum        *MomentumOptimizer        `json:"momentum_optimizer,omitempty"`
	GradientDescent *GradientDescentOptimizer `json:"gradient_descent_optimizer,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *OptimizerConfig) Validate(path string) error {
	var set []string
	if config.Adam != nil {
		set = append(set, "adam_optimizer")
	}
	if config.Momentum != nil {
		set = append(set, "momentum_optimizer")
	}
	if config.GradientDescent != nil {
		set = append(set, "gradient_descent_optimizer")
	}
	if len(set) == 0 {
		return utils.NewConfigValidationError(path, errors.New("no optimizer configured"))
	}
	if len(set) > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("only one optimizer may be configured, got %s", strings.Join(set, ", ")))
	}
	switch {
	case config.Adam != nil:
		return config.Adam.LearningRate.Validate(fmt.Sprintf("%s.%s.%s", path, "adam_optimizer", "learning_rate"))
	case config.Momentum != nil:
		if v := config.Momentum.MomentumOptimizerValue; v < 0 || v >= 1 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("momentum_optimizer_value must be in [0, 1), got %v", v))
		}
		return config.Momentum.LearningRate.Validate(fmt.Sprintf("%s.%s.%s", path, "momentum_optimizer", "learning_rate"))
	default:
		return config.GradientDescent.LearningRate.Validate(
			fmt.Sprintf("%s.%s.%s", path, "gradient_descent_optimizer", "learning_rate"))
	}
}

// AdamOptimizer configures Adam.
type AdamOptimizer struct {
	LearningRate LearningRateConfig `json:"learning_rate"`
}

// MomentumOptimizer configures SGD with momentum.
type MomentumOptimizer struct {
	LearningRate           LearningRateConfig `json:"learning_rate"`
	MomentumOptimizerValue float64            `json:"momentum_optimizer_value"`
}

// GradientDescentOptimizer configures plain SGD.
type GradientDescentOptimizer struct {
	LearningRate LearningRateConfig `json:"learning_rate"`
}

// LearningRateConfig selects exactly one learning rate schedule.
type LearningRateConfig struct {
	Constant         *ConstantLearningRate         `json:"constant_learning_rate,omitempty"`
	ExponentialDecay *ExponentialDecayLearningRate `json:"exponential_decay_learning_rate,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *LearningRateConfig) Validate(path string) error {
	if config.Constant != nil && config.ExponentialDecay != nil {
		return utils.NewConfigValidationError(path, errors.New("only one learning rate schedule may be configured"))
	}
	switch {
	case config.Constant != nil:
		if config.Constant.LearningRate <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("learning_rate must be positive, got %v", config.Constant.LearningRate))
		}
	case config.ExponentialDecay != nil:
		decay := config.ExponentialDecay
		if decay.InitialLearningRate <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("initial_learning_rate must be positive, got %v", decay.InitialLearningRate))
		}
		if decay.DecaySteps <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("decay_steps must be positive, got %d", decay.DecaySteps))
		}
		if decay.DecayFactor <= 0 || decay.DecayFactor > 1 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("decay_factor must be in (0, 1], got %v", decay.DecayFactor))
		}
	default:
		return utils.NewConfigValidationError(path, errors.New("no learning rate schedule configured"))
	}
	return nil
}

// ConstantLearningRate keeps the learning rate fixed.
type ConstantLearningRate struct {
	LearningRate float64 `json:"learning_rate"`
}

// ExponentialDecayLearningRate decays the learning rate by
// decay_factor every decay_steps iterations.
type ExponentialDecayLearningRate struct {
	InitialLearningRate float64 `json:"initial_learning_rate"`
	DecaySteps          int     `json:"decay_steps"`
	DecayFactor         float64 `json:"decay_factor"`
	Staircase           bool    `json:"staircase"`
}

// EvalConfig holds the evaluation loop settings.
type EvalConfig struct {
	BatchSize int `json:"batch_size"`

	EvalInterval     int `json:"eval_interval"`
	EvalWaitInterval int `json:"eval_wait_interval"`

	// CkptIndices are explicit checkpoint indices to evaluate. Empty
	// means latest.
	CkptIndices        []int `json:"ckpt_indices"`
	EvaluateRepeatedly bool  `json:"evaluate_repeatedly"`

	KittiScoreThreshold float64 `json:"kitti_score_threshold"`
}

// Validate ensures all parts of the config are valid.
func (config *EvalConfig) Validate(path string) error {
	if config.BatchSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("batch_size must be positive, got %d", config.BatchSize))
	}
	if config.EvalInterval <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("eval_interval must be positive, got %d", config.EvalInterval))
	}
	if config.EvalWaitInterval < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("eval_wait_interval cannot be negative, got %d", config.EvalWaitInterval))
	}
	for _, idx := range config.CkptIndices {
		if idx < 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("ckpt_indices entries cannot be negative, got %d", idx))
		}
	}
	if config.KittiScoreThreshold < 0 || config.KittiScoreThreshold > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("kitti_score_threshold must be in [0, 1], got %v", config.KittiScoreThreshold))
	}
	return nil
}
