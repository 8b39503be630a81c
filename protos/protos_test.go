package protos_test

import (
	"testing"

	"go.viam.com/test"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/pointfusion/detconfig/protos"
)

func TestFiles(t *testing.T) {
	srcs, err := protos.Files()
	test.That(t, err, test.ShouldBeNil)
	for _, name := range []string{
		"pipeline.proto", "model.proto", "layers.proto", "train.proto", "kitti_dataset.proto",
	} {
		test.That(t, srcs, test.ShouldContainKey, name)
		test.That(t, srcs[name], test.ShouldContainSubstring, "syntax = \"proto2\"")
	}
}

func TestPipelineDescriptor(t *testing.T) {
	md, err := protos.Pipeline()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(md.FullName()), test.ShouldEqual, "detconfig.protos.PipelineConfig")

	for _, section := range []struct {
		name   string
		number int
	}{
		{"model_config", 1},
		{"train_config", 2},
		{"eval_config", 3},
		{"dataset_config", 4},
	} {
		fd := md.Fields().ByName(protoreflect.Name(section.name))
		test.That(t, fd, test.ShouldNotBeNil)
		test.That(t, int(fd.Number()), test.ShouldEqual, section.number)
		test.That(t, fd.Cardinality(), test.ShouldEqual, protoreflect.Required)
		test.That(t, fd.Kind(), test.ShouldEqual, protoreflect.MessageKind)
	}
}

func TestScalarDefaults(t *testing.T) {
	md, err := protos.MessageByName("InputConfig")
	test.That(t, err, test.ShouldBeNil)

	fd := md.Fields().ByName("pc_sample_pts")
	test.That(t, fd, test.ShouldNotBeNil)
	test.That(t, fd.Default().Int(), test.ShouldEqual, 16384)

	fd = md.Fields().ByName("pc_sample_pts_variance")
	test.That(t, fd, test.ShouldNotBeNil)
	test.That(t, fd.Default().Float(), test.ShouldAlmostEqual, 0.4, 1e-6)

	md, err = protos.MessageByName("RpnConfig")
	test.That(t, err, test.ShouldBeNil)
	fd = md.Fields().ByName("rpn_fusion_method")
	test.That(t, fd, test.ShouldNotBeNil)
	test.That(t, fd.Default().String(), test.ShouldEqual, "mean")
	fd = md.Fields().ByName("rpn_use_intensity_feature")
	test.That(t, fd, test.ShouldNotBeNil)
	test.That(t, fd.Default().Bool(), test.ShouldBeTrue)
}

func TestOneofMembers(t *testing.T) {
	md, err := protos.MessageByName("FeatureExtractor")
	test.That(t, err, test.ShouldBeNil)
	oneof := md.Oneofs().Get(0)
	test.That(t, oneof, test.ShouldNotBeNil)

	var members []string
	for i := 0; i < oneof.Fields().Len(); i++ {
		members = append(members, string(oneof.Fields().Get(i).Name()))
	}
	test.That(t, members, test.ShouldResemble,
		[]string{"pc_pointnet", "pc_pointcnn", "img_vgg", "img_vgg_pyr"})
}

func TestMessageNames(t *testing.T) {
	names, err := protos.MessageNames()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names, test.ShouldContain, "PipelineConfig")
	test.That(t, names, test.ShouldContain, "KittiDatasetConfig")
	test.That(t, names, test.ShouldContain, "OptimizerConfig")
	test.That(t, names, test.ShouldContain, "MiniBatchSampler")
}

func TestMessageByNameUnknown(t *testing.T) {
	_, err := protos.MessageByName("NoSuchConfig")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no message named")
}

func TestDatasetDescriptor(t *testing.T) {
	md, err := protos.Dataset()
	test.That(t, err, test.ShouldBeNil)
	fd := md.Fields().ByName("name")
	test.That(t, fd, test.ShouldNotBeNil)
	test.That(t, fd.Cardinality(), test.ShouldEqual, protoreflect.Required)
	fd = md.Fields().ByName("dataset_dir")
	test.That(t, fd, test.ShouldNotBeNil)
	test.That(t, fd.Default().String(), test.ShouldEqual, "~/Kitti/object")
}
