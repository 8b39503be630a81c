package config

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Model variants a config may name.
const (
	ModelNameRpn  = "rpn_model"
	ModelNameRcnn = "rcnn_model"
)

// ModelConfig identifies the model variant and carries every
// architecture level knob of the two detection stages.
type ModelConfig struct {
	ModelName      string `json:"model_name"`
	CheckpointName string `json:"checkpoint_name"`

	Input  InputConfig  `json:"input_config"`
	Rpn    RpnConfig    `json:"rpn_config"`
	Rcnn   RcnnConfig   `json:"rcnn_config"`
	Layers LayersConfig `json:"layers_config"`
	Loss   LossConfig   `json:"loss_config"`

	LabelSmoothingEpsilon float64 `json:"label_smoothing_epsilon"`

	// PathDropProbabilities is the probability of keeping each input
	// path during training, [img, pc]. Empty disables path drop.
	PathDropProbabilities []float64 `json:"path_drop_probabilities"`

	TrainOnAllSamples bool `json:"train_on_all_samples"`
	EvalAllSamples    bool `json:"eval_all_samples"`
}

// Validate ensures all parts of the config are valid.
func (config *ModelConfig) Validate(path string) error {
	if config.ModelName == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "model_name")
	}
	if config.ModelName != ModelNameRpn && config.ModelName != ModelNameRcnn {
		return utils.NewConfigValidationError(path,
			errors.Errorf("model_name must be %q or %q, got %q", ModelNameRpn, ModelNameRcnn, config.ModelName))
	}
	if config.CheckpointName == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "checkpoint_name")
	}
	if config.LabelSmoothingEpsilon < 0 || config.LabelSmoothingEpsilon >= 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("label_smoothing_epsilon must be in [0, 1), got %v", config.LabelSmoothingEpsilon))
	}
	if n := len(config.PathDropProbabilities); n != 0 && n != 2 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("path_drop_probabilities must have exactly two entries, [img, pc], got %d", n))
	}
	for _, p := range config.PathDropProbabilities {
		if p < 0 || p > 1 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("path_drop_probabilities entries must be in [0, 1], got %v", p))
		}
	}
	if err := config.Input.Validate(fmt.Sprintf("%s.%s", path, "input_config")); err != nil {
		return err
	}
	if err := config.Rpn.Validate(fmt.Sprintf("%s.%s", path, "rpn_config")); err != nil {
		return err
	}
	if err := config.Rcnn.Validate(fmt.Sprintf("%s.%s", path, "rcnn_config")); err != nil {
		return err
	}
	if err := config.Layers.Validate(fmt.Sprintf("%s.%s", path, "layers_config")); err != nil {
		return err
	}
	return config.Loss.Validate(fmt.Sprintf("%s.%s", path, "loss_config"))
}

// InputConfig describes the shape of the model inputs.
type InputConfig struct {
	PcSamplePts         int     `json:"pc_sample_pts"`
	PcDataDim           int     `json:"pc_data_dim"`
	PcSamplePtsVariance float64 `json:"pc_sample_pts_variance"`
	PcSamplePtsClip     float64 `json:"pc_sample_pts_clip"`

	ImgDimsH int `json:"img_dims_h"`
	ImgDimsW int `json:"img_dims_w"`
	ImgDepth int `json:"img_depth"`
}

// Validate ensures all parts of the config are valid.
func (config *InputConfig) Validate(path string) error {
	if config.PcSamplePts <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("pc_sample_pts must be positive, got %d", config.PcSamplePts))
	}
	if config.PcDataDim < 3 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("pc_data_dim must be at least 3, got %d", config.PcDataDim))
	}
	if config.PcSamplePtsVariance < 0 || config.PcSamplePtsClip < 0 {
		return utils.NewConfigValidationError(path,
			errors.New("point sampling noise parameters cannot be negative"))
	}
	if config.ImgDimsH <= 0 || config.ImgDimsW <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("image dimensions must be positive, got %dx%d", config.ImgDimsH, config.ImgDimsW))
	}
	if config.ImgDepth != 1 && config.ImgDepth != 3 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("img_depth must be 1 or 3, got %d", config.ImgDepth))
	}
	return nil
}

// Fusion methods for combining image and point cloud features.
const (
	FusionMean   = "mean"
	FusionConcat = "concat"
)

// NMS overlap spaces.
const (
	NmsModeBev = "bev"
	NmsMode3d  = "3d"
)

// RpnConfig carries the region proposal stage settings.
type RpnConfig struct {
	FusionMethod string `json:"rpn_fusion_method"`

	TrainPreNmsSize   int     `json:"rpn_train_pre_nms_size"`
	TrainPostNmsSize  int     `json:"rpn_train_post_nms_size"`
	TrainNmsIouThresh float64 `json:"rpn_train_nms_iou_thresh"`

	TestPreNmsSize   int     `json:"rpn_test_pre_nms_size"`
	TestPostNmsSize  int     `json:"rpn_test_post_nms_size"`
	TestNmsIouThresh float64 `json:"rpn_test_nms_iou_thresh"`

	// XzSearchRange holds the half widths of the proposal search
	// space along x and z, paired entry by entry with XzBinNum.
	XzSearchRange []float64 `json:"rpn_xz_search_range"`
	XzBinNum      []int     `json:"rpn_xz_bin_num"`

	ThetaSearchRange float64 `json:"rpn_theta_search_range"`
	ThetaBinNum      int     `json:"rpn_theta_bin_num"`

	UseIntensityFeature bool   `json:"rpn_use_intensity_feature"`
	NmsMode             string `json:"rpn_nms_mode"`
}

// Validate ensures all parts of the config are valid.
func (config *RpnConfig) Validate(path string) error {
	if config.FusionMethod != FusionMean && config.FusionMethod != FusionConcat {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rpn_fusion_method must be %q or %q, got %q", FusionMean, FusionConcat, config.FusionMethod))
	}
	if err := validateNmsSizes(path, "rpn_train", config.TrainPreNmsSize, config.TrainPostNmsSize, config.TrainNmsIouThresh); err != nil {
		return err
	}
	if err := validateNmsSizes(path, "rpn_test", config.TestPreNmsSize, config.TestPostNmsSize, config.TestNmsIouThresh); err != nil {
		return err
	}
	if err := validateBinSearch(path, "rpn_xz", config.XzSearchRange, config.XzBinNum); err != nil {
		return err
	}
	if config.ThetaSearchRange <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rpn_theta_search_range must be positive, got %v", config.ThetaSearchRange))
	}
	if config.ThetaBinNum <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rpn_theta_bin_num must be positive, got %d", config.ThetaBinNum))
	}
	if config.NmsMode != NmsModeBev && config.NmsMode != NmsMode3d {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rpn_nms_mode must be %q or %q, got %q", NmsModeBev, NmsMode3d, config.NmsMode))
	}
	return nil
}

// RcnnConfig carries the refinement stage settings.
type RcnnConfig struct {
	ProposalRoiCropSize int `json:"rcnn_proposal_roi_crop_size"`
	ImgRoiCropSize      int `json:"rcnn_img_roi_crop_size"`

	NmsSize      int     `json:"rcnn_nms_size"`
	NmsIouThresh float64 `json:"rcnn_nms_iou_thresh"`

	XzSearchRange []float64 `json:"rcnn_xz_search_range"`
	XzBinNum      []int     `json:"rcnn_xz_bin_num"`

	ThetaSearchRange float64 `json:"rcnn_theta_search_range"`
	ThetaBinNum      int     `json:"rcnn_theta_bin_num"`

	PoolingContextLength float64 `json:"rcnn_pooling_context_length"`
	UseIntensityFeature  bool    `json:"rcnn_use_intensity_feature"`
}

// Validate ensures all parts of the config are valid.
func (config *RcnnConfig) Validate(path string) error {
	if config.ProposalRoiCropSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_proposal_roi_crop_size must be positive, got %d", config.ProposalRoiCropSize))
	}
	if config.ImgRoiCropSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_img_roi_crop_size must be positive, got %d", config.ImgRoiCropSize))
	}
	if config.NmsSize <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_nms_size must be positive, got %d", config.NmsSize))
	}
	if config.NmsIouThresh <= 0 || config.NmsIouThresh > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_nms_iou_thresh must be in (0, 1], got %v", config.NmsIouThresh))
	}
	if err := validateBinSearch(path, "rcnn_xz", config.XzSearchRange, config.XzBinNum); err != nil {
		return err
	}
	if config.ThetaSearchRange <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_theta_search_range must be positive, got %v", config.ThetaSearchRange))
	}
	if config.ThetaBinNum <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_theta_bin_num must be positive, got %d", config.ThetaBinNum))
	}
	if config.PoolingContextLength < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("rcnn_pooling_context_length cannot be negative, got %v", config.PoolingContextLength))
	}
	return nil
}

// LossConfig holds the scalar weights of the four loss terms.
type LossConfig struct {
	SegLossWeight float64 `json:"seg_loss_weight"`
	ClsLossWeight float64 `json:"cls_loss_weight"`
	RegLossWeight float64 `json:"reg_loss_weight"`
	AngLossWeight float64 `json:"ang_loss_weight"`
}

// Validate ensures all parts of the config are valid.
func (config *LossConfig) Validate(path string) error {
	for _, w := range []struct {
		name  string
		value float64
	}{
		{"seg_loss_weight", config.SegLossWeight},
		{"cls_loss_weight", config.ClsLossWeight},
		{"reg_loss_weight", config.RegLossWeight},
		{"ang_loss_weight", config.AngLossWeight},
	} {
		if w.value < 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("%s cannot be negative, got %v", w.name, w.value))
		}
	}
	return nil
}

func validateNmsSizes(path, prefix string, pre, post int, iouThresh float64) error {
	if pre <= 0 || post <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("%s NMS sizes must be positive, got pre %d post %d", prefix, pre, post))
	}
	if post > pre {
		return utils.NewConfigValidationError(path,
			errors.Errorf("%s_post_nms_size (%d) cannot exceed %s_pre_nms_size (%d)", prefix, post, prefix, pre))
	}
	if iouThresh <= 0 || iouThresh > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("%s_nms_iou_thresh must be in (0, 1], got %v", prefix, iouThresh))
	}
	return nil
}

func validateBinSearch(path, prefix string, searchRange []float64, binNum []int) error {
	if len(searchRange) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, prefix+"_search_range")
	}
	if len(searchRange) != len(binNum) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("%s_search_range has %d entries but %s_bin_num has %d, they are paired per axis",
				prefix, len(searchRange), prefix, len(binNum)))
	}
	for _, r := range searchRange {
		if r <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("%s_search_range entries must be positive, got %v", prefix, r))
		}
	}
	for _, n := range binNum {
		if n <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("%s_bin_num entries must be positive, got %d", prefix, n))
		}
	}
	return nil
}
