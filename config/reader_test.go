package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/pointfusion/detconfig/config"
)

func TestReadMinimalConfig(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg, err := config.Read(filepath.Join("testdata", "pipeline.config"), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cfg.Model.ModelName, test.ShouldEqual, "rpn_model")
	test.That(t, cfg.Model.CheckpointName, test.ShouldEqual, "unit_test")
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, filepath.Join("testdata", "pipeline.config"))

	// Unset optional fields come back with their schema defaults.
	test.That(t, cfg.Model.Input.PcSamplePts, test.ShouldEqual, 16384)
	test.That(t, cfg.Model.Input.PcDataDim, test.ShouldEqual, 4)
	test.That(t, cfg.Model.Input.ImgDepth, test.ShouldEqual, 3)
	test.That(t, cfg.Model.Rpn.FusionMethod, test.ShouldEqual, config.FusionMean)
	test.That(t, cfg.Model.Rpn.TestPostNmsSize, test.ShouldEqual, 300)
	test.That(t, cfg.Model.Rpn.TrainNmsIouThresh, test.ShouldAlmostEqual, 0.85, 1e-6)
	test.That(t, cfg.Model.Rcnn.PoolingContextLength, test.ShouldEqual, 1.0)
	test.That(t, cfg.Model.LabelSmoothingEpsilon, test.ShouldAlmostEqual, 0.001, 1e-6)
	test.That(t, cfg.Train.MaxIterations, test.ShouldEqual, 120000)
	test.That(t, cfg.Train.AllowGpuMemGrowth, test.ShouldBeTrue)
	test.That(t, cfg.Eval.KittiScoreThreshold, test.ShouldAlmostEqual, 0.1, 1e-6)
	test.That(t, cfg.Dataset.DatasetDir, test.ShouldEqual, "~/Kitti/object")
	test.That(t, cfg.Dataset.DataSplit, test.ShouldEqual, "train")
	test.That(t, cfg.Dataset.PcSource, test.ShouldEqual, "lidar")
	test.That(t, cfg.Dataset.HasLabels, test.ShouldBeTrue)

	// Explicitly set values win over defaults.
	test.That(t, cfg.Model.Rpn.XzSearchRange, test.ShouldResemble, []float64{3, 3})
	test.That(t, cfg.Model.Rpn.XzBinNum, test.ShouldResemble, []int{12, 12})
	test.That(t, cfg.Model.Layers.PcFeatureExtractor.PcPointNet, test.ShouldNotBeNil)
	test.That(t, cfg.Model.Layers.PcFeatureExtractor.PcPointCnn, test.ShouldBeNil)
	test.That(t, cfg.Train.Optimizer.Adam, test.ShouldNotBeNil)
	test.That(t, cfg.Train.Optimizer.Adam.LearningRate.Constant, test.ShouldNotBeNil)
	test.That(t, cfg.Train.Optimizer.Adam.LearningRate.Constant.LearningRate, test.ShouldAlmostEqual, 0.002, 1e-6)
}

func TestReadGradientDescentOptimizer(t *testing.T) {
	logger := golog.NewTestLogger(t)
	data, err := os.ReadFile(filepath.Join("testdata", "pipeline.config"))
	test.That(t, err, test.ShouldBeNil)

	swapped := strings.Replace(string(data), "adam_optimizer", "gradient_descent_optimizer", 1)
	cfg, err := config.FromReader(strings.NewReader(swapped), "sgd.config", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Train.Optimizer.Adam, test.ShouldBeNil)
	test.That(t, cfg.Train.Optimizer.GradientDescent, test.ShouldNotBeNil)
	test.That(t, cfg.Train.Optimizer.GradientDescent.LearningRate.Constant, test.ShouldNotBeNil)
	test.That(t, cfg.Train.Optimizer.GradientDescent.LearningRate.Constant.LearningRate,
		test.ShouldAlmostEqual, 0.002, 1e-6)
}

func TestReadMissingRequired(t *testing.T) {
	logger := golog.NewTestLogger(t)
	data, err := os.ReadFile(filepath.Join("testdata", "pipeline.config"))
	test.That(t, err, test.ShouldBeNil)

	trimmed := strings.Replace(string(data), "loss_config {}", "", 1)
	_, err = config.FromReader(strings.NewReader(trimmed), "trimmed.config", logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"loss_config" is required`)

	trimmed = strings.Replace(string(data), "checkpoint_name: 'unit_test'", "", 1)
	_, err = config.FromReader(strings.NewReader(trimmed), "trimmed.config", logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"checkpoint_name" is required`)
}

func TestReadMalformed(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := config.FromReader(strings.NewReader("model_config { nonsense: 1 }"), "bad.config", logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse")
}

func TestReadUnknownFileFails(t *testing.T) {
	logger := golog.NewTestLogger(t)
	_, err := config.Read(filepath.Join(t.TempDir(), "nope.config"), logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadEnvSubstitution(t *testing.T) {
	logger := golog.NewTestLogger(t)
	t.Setenv("DETCONFIG_TEST_SUFFIX", "sweep_7")

	data, err := os.ReadFile(filepath.Join("testdata", "pipeline.config"))
	test.That(t, err, test.ShouldBeNil)
	substituted := strings.Replace(string(data), "'unit_test'", "'unit_test_${DETCONFIG_TEST_SUFFIX}'", 1)

	cfg, err := config.FromReader(strings.NewReader(substituted), "env.config", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Model.CheckpointName, test.ShouldEqual, "unit_test_sweep_7")
}
