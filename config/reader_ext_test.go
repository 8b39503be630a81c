package config_test

import (
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/pointfusion/detconfig/config"
)

// The instance files shipped in the repo must always read and validate.
func TestShippedConfigs(t *testing.T) {
	logger := golog.NewTestLogger(t)

	files, err := filepath.Glob(filepath.Join("..", "configs", "*.config"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(files), test.ShouldEqual, 3)
	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			cfg, err := config.Read(file, logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, cfg.Model.CheckpointName, test.ShouldNotEqual, "")
			test.That(t, cfg.Dataset.Name, test.ShouldEqual, "kitti")
		})
	}

	datasetFiles, err := filepath.Glob(filepath.Join("..", "configs", "label_seg_preprocessing", "*.config"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(datasetFiles), test.ShouldEqual, 2)
	for _, file := range datasetFiles {
		t.Run(filepath.Base(file), func(t *testing.T) {
			cfg, err := config.ReadDatasetConfig(file, logger)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, cfg.DataSplit, test.ShouldEqual, "trainval")
			test.That(t, cfg.KittiUtils, test.ShouldNotBeNil)
			test.That(t, cfg.KittiUtils.LabelSeg, test.ShouldNotBeNil)
			test.That(t, len(cfg.KittiUtils.AreaExtents), test.ShouldEqual, 6)
		})
	}
}

func TestShippedCarsConfigValues(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg, err := config.Read(filepath.Join("..", "configs", "cars.config"), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cfg.Model.CheckpointName, test.ShouldEqual, "cars_base")
	test.That(t, cfg.Model.Rpn.ThetaBinNum, test.ShouldEqual, 12)
	test.That(t, len(cfg.Model.Layers.PcFeatureExtractor.PcPointNet.SaLayers), test.ShouldEqual, 4)
	test.That(t, cfg.Model.Layers.ImgFeatureExtractor.ImgVggPyr.UpsamplingMultiplier, test.ShouldEqual, 4)
	test.That(t, cfg.Train.Optimizer.Adam.LearningRate.ExponentialDecay.DecaySteps, test.ShouldEqual, 30000)
	test.That(t, cfg.Dataset.Classes, test.ShouldResemble, []string{"Car"})
	test.That(t, cfg.Dataset.AugList, test.ShouldResemble, []string{"flipping", "pca_jitter"})
	test.That(t, cfg.Dataset.KittiUtils.MiniBatch.Rpn.MiniBatchSize, test.ShouldEqual, 512)
	test.That(t, cfg.Dataset.KittiUtils.MiniBatch.Rcnn.FgRatio, test.ShouldEqual, 0.25)
}
