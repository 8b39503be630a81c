package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

var (
	validDataSplits = map[string]bool{"train": true, "val": true, "test": true, "trainval": true}
	validPcSources  = map[string]bool{"lidar": true, "depth": true}
	validAugs       = map[string]bool{"flipping": true, "pca_jitter": true}
)

// KittiDatasetConfig describes the dataset location, split and class
// setup of one experiment.
type KittiDatasetConfig struct {
	Name string `json:"name"`

	DatasetDir   string `json:"dataset_dir"`
	DataSplit    string `json:"data_split"`
	DataSplitDir string `json:"data_split_dir"`

	HasLabels    bool   `json:"has_labels"`
	ClusterSplit string `json:"cluster_split"`

	Classes     []string `json:"classes"`
	NumClusters []int    `json:"num_clusters"`

	PcSource string   `json:"pc_source"`
	AugList  []string `json:"aug_list"`

	KittiUtils *KittiUtilsConfig `json:"kitti_utils_config,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *KittiDatasetConfig) Validate(path string) error {
	if config.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if config.DatasetDir == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "dataset_dir")
	}
	if !validDataSplits[config.DataSplit] {
		return utils.NewConfigValidationError(path,
			errors.Errorf("data_split must be one of train, val, test, trainval, got %q", config.DataSplit))
	}
	if config.DataSplitDir == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "data_split_dir")
	}
	if !validDataSplits[config.ClusterSplit] {
		return utils.NewConfigValidationError(path,
			errors.Errorf("cluster_split must be one of train, val, test, trainval, got %q", config.ClusterSplit))
	}
	if len(config.Classes) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "classes")
	}
	if len(config.NumClusters) != len(config.Classes) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("num_clusters has %d entries for %d classes, they are paired per class",
				len(config.NumClusters), len(config.Classes)))
	}
	for _, n := range config.NumClusters {
		if n <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("num_clusters entries must be positive, got %d", n))
		}
	}
	if !validPcSources[config.PcSource] {
		return utils.NewConfigValidationError(path,
			errors.Errorf("pc_source must be lidar or depth, got %q", config.PcSource))
	}
	seen := map[string]bool{}
	for _, aug := range config.AugList {
		if !validAugs[aug] {
			return utils.NewConfigValidationError(path,
				errors.Errorf("unknown augmentation %q, must be flipping or pca_jitter", aug))
		}
		if seen[aug] {
			return utils.NewConfigValidationError(path, errors.Errorf("augmentation %q listed twice", aug))
		}
		seen[aug] = true
	}
	if config.KittiUtils != nil {
		utilsPath := fmt.Sprintf("%s.%s", path, "kitti_utils_config")
		if err := config.KittiUtils.Validate(utilsPath); err != nil {
			return err
		}
		if n := len(config.KittiUtils.AnchorStrides); n != 0 && n != len(config.Classes) {
			return utils.NewConfigValidationError(utilsPath,
				errors.Errorf("anchor_strides has %d entries for %d classes, they are paired per class",
					n, len(config.Classes)))
		}
	}
	return nil
}

// KittiUtilsConfig holds the voxelization, anchor and mini batch
// sampling settings.
type KittiUtilsConfig struct {
	// AreaExtents is [x_min, x_max, y_min, y_max, z_min, z_max] in
	// camera coordinates.
	AreaExtents []float64 `json:"area_extents"`

	VoxelSize float64 `json:"voxel_size"`

	AnchorStrides []float64 `json:"anchor_strides"`

	DensityThreshold float64 `json:"density_threshold"`

	LabelSeg  *LabelSegConfig  `json:"label_seg_config,omitempty"`
	MiniBatch *MiniBatchConfig `json:"mini_batch_config,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *KittiUtilsConfig) Validate(path string) error {
	if len(config.AreaExtents) != 6 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("area_extents must be [x_min, x_max, y_min, y_max, z_min, z_max], got %d entries",
				len(config.AreaExtents)))
	}
	for axis, name := range []string{"x", "y", "z"} {
		lo, hi := config.AreaExtents[2*axis], config.AreaExtents[2*axis+1]
		if lo >= hi {
			return utils.NewConfigValidationError(path,
				errors.Errorf("area_extents %s range [%v, %v] is not increasing", name, lo, hi))
		}
	}
	if config.VoxelSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("voxel_size must be positive, got %v", config.VoxelSize))
	}
	for _, stride := range config.AnchorStrides {
		if stride <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("anchor_strides entries must be positive, got %v", stride))
		}
	}
	if config.DensityThreshold < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("density_threshold cannot be negative, got %v", config.DensityThreshold))
	}
	if config.LabelSeg != nil {
		if err := config.LabelSeg.Validate(fmt.Sprintf("%s.%s", path, "label_seg_config")); err != nil {
			return err
		}
	}
	if config.MiniBatch != nil {
		if err := config.MiniBatch.Validate(fmt.Sprintf("%s.%s", path, "mini_batch_config")); err != nil {
			return err
		}
	}
	return nil
}

// LabelSegConfig configures foreground point labeling.
type LabelSegConfig struct {
	ExpandGtSize float64 `json:"expand_gt_size"`
}

// Validate ensures all parts of the config are valid.
func (config *LabelSegConfig) Validate(path string) error {
	if config.ExpandGtSize < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("expand_gt_size cannot be negative, got %v", config.ExpandGtSize))
	}
	return nil
}

// MiniBatchConfig holds the per stage mini batch samplers.
type MiniBatchConfig struct {
	Rpn  *MiniBatchSampler `json:"rpn_config,omitempty"`
	Rcnn *MiniBatchSampler `json:"rcnn_config,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *MiniBatchConfig) Validate(path string) error {
	if config.Rpn != nil {
		if err := config.Rpn.Validate(fmt.Sprintf("%s.%s", path, "rpn_config")); err != nil {
			return err
		}
	}
	if config.Rcnn != nil {
		if err := config.Rcnn.Validate(fmt.Sprintf("%s.%s", path, "rcnn_config")); err != nil {
			return err
		}
	}
	return nil
}

// MiniBatchSampler selects foreground and background samples by IoU.
// The four bounds are ordered and span [0, 1]: [neg_iou_lo, neg_iou_hi]
// is the background range, [pos_iou_lo, pos_iou_hi] the foreground one.
type MiniBatchSampler struct {
	NegIouLo float64 `json:"neg_iou_lo"`
	NegIouHi float64 `json:"neg_iou_hi"`
	PosIouLo float64 `json:"pos_iou_lo"`
	PosIouHi float64 `json:"pos_iou_hi"`

	MiniBatchSize int     `json:"mini_batch_size"`
	FgRatio       float64 `json:"fg_ratio"`
}

// Validate ensures all parts of the config are valid.
func (config *MiniBatchSampler) Validate(path string) error {
	if config.NegIouLo != 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("neg_iou_lo must be 0 so the IoU ranges cover [0, 1], got %v", config.NegIouLo))
	}
	if config.PosIouHi != 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("pos_iou_hi must be 1 so the IoU ranges cover [0, 1], got %v", config.PosIouHi))
	}
	if config.NegIouLo > config.NegIouHi || config.NegIouHi > config.PosIouLo || config.PosIouLo > config.PosIouHi {
		return utils.NewConfigValidationError(path,
			errors.Errorf("IoU bounds must be ordered neg_iou_lo <= neg_iou_hi <= pos_iou_lo <= pos_iou_hi, got %v <= %v <= %v <= %v",
				config.NegIouLo, config.NegIouHi, config.PosIouLo, config.PosIouHi))
	}
	if config.MiniBatchSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("mini_batch_size must be positive, got %d", config.MiniBatchSize))
	}
	if config.FgRatio <= 0 || config.FgRatio >= 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("fg_ratio must be in (0, 1), got %v", config.FgRatio))
	}
	return nil
}
