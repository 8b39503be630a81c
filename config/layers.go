package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// LayersConfig is the declarative network topology: one feature
// extractor per input modality plus the fully connected stacks of both
// stages.
type LayersConfig struct {
	PcFeatureExtractor  FeatureExtractor `json:"pc_feature_extractor"`
	ImgFeatureExtractor FeatureExtractor `json:"img_feature_extractor"`

	RpnFcLayers  FcLayers `json:"rpn_fc_layers"`
	RcnnFcLayers FcLayers `json:"rcnn_fc_layers"`
}

// Validate ensures all parts of the config are valid.
func (config *LayersConfig) Validate(path string) error {
	if err := config.PcFeatureExtractor.validate(fmt.Sprintf("%s.%s", path, "pc_feature_extractor"), false); err != nil {
		return err
	}
	if err := config.ImgFeatureExtractor.validate(fmt.Sprintf("%s.%s", path, "img_feature_extractor"), true); err != nil {
		return err
	}
	if err := config.RpnFcLayers.Validate(fmt.Sprintf("%s.%s", path, "rpn_fc_layers")); err != nil {
		return err
	}
	return config.RcnnFcLayers.Validate(fmt.Sprintf("%s.%s", path, "rcnn_fc_layers"))
}

// FeatureExtractor selects exactly one extractor architecture. The
// pc_* members are point cloud extractors, the img_* members image
// extractors.
type FeatureExtractor struct {
	PcPointNet *PointNetExtractor   `json:"pc_pointnet,omitempty"`
	PcPointCnn *PointCnnExtractor   `json:"pc_pointcnn,omitempty"`
	ImgVgg     *VggExtractor        `json:"img_vgg,omitempty"`
	ImgVggPyr  *VggPyramidExtractor `json:"img_vgg_pyr,omitempty"`
}

func (config *FeatureExtractor) setMembers() []string {
	var set []string
	if config.PcPointNet != nil {
		set = append(set, "pc_pointnet")
	}
	if config.PcPointCnn != nil {
		set = append(set, "pc_pointcnn")
	}
	if config.ImgVgg != nil {
		set = append(set, "img_vgg")
	}
	if config.ImgVggPyr != nil {
		set = append(set, "img_vgg_pyr")
	}
	return set
}

func (config *FeatureExtractor) validate(path string, wantImage bool) error {
	set := config.setMembers()
	if len(set) == 0 {
		return utils.NewConfigValidationError(path, errors.New("no feature extractor configured"))
	}
	if len(set) > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("only one feature extractor may be configured, got %s", strings.Join(set, ", ")))
	}
	isImage := config.ImgVgg != nil || config.ImgVggPyr != nil
	if wantImage != isImage {
		modality := "a point cloud"
		if wantImage {
			modality = "an image"
		}
		return utils.NewConfigValidationError(path,
			errors.Errorf("%s is not %s extractor", set[0], modality))
	}
	switch {
	case config.PcPointNet != nil:
		return config.PcPointNet.Validate(fmt.Sprintf("%s.%s", path, "pc_pointnet"))
	case config.PcPointCnn != nil:
		return config.PcPointCnn.Validate(fmt.Sprintf("%s.%s", path, "pc_pointcnn"))
	case config.ImgVgg != nil:
		return config.ImgVgg.Validate(fmt.Sprintf("%s.%s", path, "img_vgg"))
	default:
		return config.ImgVggPyr.Validate(fmt.Sprintf("%s.%s", path, "img_vgg_pyr"))
	}
}

// PointNetExtractor is a stack of set abstraction layers followed by
// feature propagation layers.
type PointNetExtractor struct {
	SaLayers []SetAbstractionLayer     `json:"sa_layers"`
	FpLayers []FeaturePropagationLayer `json:"fp_layers"`
}

// Validate ensures all parts of the config are valid.
func (config *PointNetExtractor) Validate(path string) error {
	if len(config.SaLayers) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "sa_layers")
	}
	for idx, layer := range config.SaLayers {
		if err := layer.Validate(fmt.Sprintf("%s.%s.%d", path, "sa_layers", idx)); err != nil {
			return err
		}
	}
	for idx, layer := range config.FpLayers {
		if err := validateMlp(fmt.Sprintf("%s.%s.%d", path, "fp_layers", idx), layer.Mlp); err != nil {
			return err
		}
	}
	return nil
}

// SetAbstractionLayer samples npoint centroids, groups nsample
// neighbors within radius and runs them through an MLP.
type SetAbstractionLayer struct {
	Npoint  int     `json:"npoint"`
	Radius  float64 `json:"radius"`
	Nsample int     `json:"nsample"`
	Mlp     []int   `json:"mlp"`
}

// Validate ensures all parts of the config are valid.
func (config *SetAbstractionLayer) Validate(path string) error {
	if config.Npoint <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("npoint must be positive, got %d", config.Npoint))
	}
	if config.Radius <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("radius must be positive, got %v", config.Radius))
	}
	if config.Nsample <= 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("nsample must be positive, got %d", config.Nsample))
	}
	return validateMlp(path, config.Mlp)
}

// FeaturePropagationLayer holds the MLP widths of one propagation step.
type FeaturePropagationLayer struct {
	Mlp []int `json:"mlp"`
}

// PointCnnExtractor is a stack of X-Conv layers.
type PointCnnExtractor struct {
	XconvLayers []XConvLayer `json:"xconv_layers"`
}

// Validate ensures all parts of the config are valid.
func (config *PointCnnExtractor) Validate(path string) error {
	if len(config.XconvLayers) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "xconv_layers")
	}
	for idx, layer := range config.XconvLayers {
		if err := layer.Validate(fmt.Sprintf("%s.%s.%d", path, "xconv_layers", idx)); err != nil {
			return err
		}
	}
	return nil
}

// XConvLayer describes one X-Conv layer: representative point count,
// neighborhood size, dilation and output channels.
type XConvLayer struct {
	P int `json:"p"`
	K int `json:"k"`
	D int `json:"d"`
	C int `json:"c"`
}

// Validate ensures all parts of the config are valid.
func (config *XConvLayer) Validate(path string) error {
	if config.P <= 0 || config.K <= 0 || config.C <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("p, k and c must be positive, got p=%d k=%d c=%d", config.P, config.K, config.C))
	}
	if config.D < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("d must be at least 1, got %d", config.D))
	}
	return nil
}

// VggExtractor describes the four convolutional stages of a VGG style
// image extractor. Each stage is [num_layers, width].
type VggExtractor struct {
	VggConv1 []int `json:"vgg_conv1"`
	VggConv2 []int `json:"vgg_conv2"`
	VggConv3 []int `json:"vgg_conv3"`
	VggConv4 []int `json:"vgg_conv4"`

	L2WeightDecay float64 `json:"l2_weight_decay"`
}

// Validate ensures all parts of the config are valid.
func (config *VggExtractor) Validate(path string) error {
	if err := validateVggStages(path, config.VggConv1, config.VggConv2, config.VggConv3, config.VggConv4); err != nil {
		return err
	}
	if config.L2WeightDecay < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("l2_weight_decay cannot be negative, got %v", config.L2WeightDecay))
	}
	return nil
}

// VggPyramidExtractor is a VggExtractor with a pyramid upsampling
// stage on top.
type VggPyramidExtractor struct {
	VggConv1 []int `json:"vgg_conv1"`
	VggConv2 []int `json:"vgg_conv2"`
	VggConv3 []int `json:"vgg_conv3"`
	VggConv4 []int `json:"vgg_conv4"`

	L2WeightDecay        float64 `json:"l2_weight_decay"`
	UpsamplingMultiplier int     `json:"upsampling_multiplier"`
}

// Validate ensures all parts of the config are valid.
func (config *VggPyramidExtractor) Validate(path string) error {
	if err := validateVggStages(path, config.VggConv1, config.VggConv2, config.VggConv3, config.VggConv4); err != nil {
		return err
	}
	if config.L2WeightDecay < 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("l2_weight_decay cannot be negative, got %v", config.L2WeightDecay))
	}
	if config.UpsamplingMultiplier <= 0 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("upsampling_multiplier must be positive, got %d", config.UpsamplingMultiplier))
	}
	return nil
}

// FcLayers holds the widths and dropout keep probability of one fully
// connected stack.
type FcLayers struct {
	Units    []int   `json:"units"`
	KeepProb float64 `json:"keep_prob"`
}

// Validate ensures all parts of the config are valid.
func (config *FcLayers) Validate(path string) error {
	if err := validateMlp(path, config.Units); err != nil {
		return err
	}
	if config.KeepProb <= 0 || config.KeepProb > 1 {
		return utils.NewConfigValidationError(path,
			errors.Errorf("keep_prob must be in (0, 1], got %v", config.KeepProb))
	}
	return nil
}

func validateMlp(path string, widths []int) error {
	if len(widths) == 0 {
		return utils.NewConfigValidationError(path, errors.New("layer widths cannot be empty"))
	}
	for _, w := range widths {
		if w <= 0 {
			return utils.NewConfigValidationError(path, errors.Errorf("layer widths must be positive, got %d", w))
		}
	}
	return nil
}

func validateVggStages(path string, stages ...[]int) error {
	names := []string{"vgg_conv1", "vgg_conv2", "vgg_conv3", "vgg_conv4"}
	for i, stage := range stages {
		if len(stage) == 0 {
			continue
		}
		if len(stage) != 2 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("%s must be [num_layers, width], got %d entries", names[i], len(stage)))
		}
		if stage[0] <= 0 || stage[1] <= 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("%s entries must be positive, got %v", names[i], stage))
		}
	}
	return nil
}
