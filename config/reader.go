package config

import (
	"io"
	"os"

	"github.com/a8m/envsubst"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/pointfusion/detconfig/protos"
)

// Read reads a pipeline config from the given file. Environment
// variable references are substituted before parsing and the result is
// fully validated.
func Read(filePath string, logger golog.Logger) (*Config, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return fromBytes(filePath, buf, logger)
}

// FromReader reads a pipeline config from r. name is used for error
// reporting and becomes the returned config's file path.
func FromReader(r io.Reader, name string, logger golog.Logger) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return fromBytes(name, buf, logger)
}

func fromBytes(name string, buf []byte, logger golog.Logger) (*Config, error) {
	buf, err := envsubst.Bytes(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot substitute environment variables in %s", name)
	}
	md, err := protos.Pipeline()
	if err != nil {
		return nil, err
	}
	msg, err := parseText(buf, md)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", name)
	}
	if err := checkRequired(msg, ""); err != nil {
		return nil, err
	}
	var cfg Config
	if err := decodeInto(messageToMap(msg), &cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", name)
	}
	cfg.ConfigFilePath = name
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	logger.Debugw("read pipeline config", "file", name, "checkpoint", cfg.Model.CheckpointName)
	return &cfg, nil
}

// ReadDatasetConfig reads a standalone dataset instance, e.g. the
// label segmentation preprocessing configs.
func ReadDatasetConfig(filePath string, logger golog.Logger) (*KittiDatasetConfig, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	buf, err = envsubst.Bytes(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot substitute environment variables in %s", filePath)
	}
	md, err := protos.Dataset()
	if err != nil {
		return nil, err
	}
	msg, err := parseText(buf, md)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", filePath)
	}
	if err := checkRequired(msg, "dataset_config"); err != nil {
		return nil, err
	}
	var cfg KittiDatasetConfig
	if err := decodeInto(messageToMap(msg), &cfg); err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", filePath)
	}
	if err := cfg.Validate("dataset_config"); err != nil {
		return nil, err
	}
	logger.Debugw("read dataset config", "file", filePath, "name", cfg.Name)
	return &cfg, nil
}

// ReadMessage parses the given file into a dynamic message without
// decoding it into the typed structs. Used by tooling that needs the
// wire level view.
func ReadMessage(filePath string) (*dynamicpb.Message, error) {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	buf, err = envsubst.Bytes(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot substitute environment variables in %s", filePath)
	}
	md, err := protos.Pipeline()
	if err != nil {
		return nil, err
	}
	msg, err := parseText(buf, md)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse %s", filePath)
	}
	return msg, nil
}

func parseText(buf []byte, md protoreflect.MessageDescriptor) (*dynamicpb.Message, error) {
	msg := dynamicpb.NewMessage(md)
	// Required fields are checked separately so their errors carry
	// config paths.
	if err := (prototext.UnmarshalOptions{AllowPartial: true}).Unmarshal(buf, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
