// Package protos embeds the schema definitions for the detection pipeline
// configuration and exposes their parsed descriptors.
//
// The schemas are plain proto2 files. They are parsed once, at first use,
// so the rest of the module can work against protoreflect descriptors
// without a code generation step.
package protos

import (
	"embed"
	"io/fs"
	"sort"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/reflect/protoreflect"
)

//go:embed *.proto
var schemaFS embed.FS

var (
	parseOnce   sync.Once
	parsedFiles []*desc.FileDescriptor
	parseErr    error
)

func load() ([]*desc.FileDescriptor, error) {
	parseOnce.Do(func() {
		srcs, err := Files()
		if err != nil {
			parseErr = err
			return
		}
		names := make([]string, 0, len(srcs))
		for name := range srcs {
			names = append(names, name)
		}
		sort.Strings(names)
		parser := protoparse.Parser{Accessor: protoparse.FileContentsFromMap(srcs)}
		parsedFiles, parseErr = parser.ParseFiles(names...)
		if parseErr != nil {
			parseErr = errors.Wrap(parseErr, "cannot parse embedded schema")
		}
	})
	return parsedFiles, parseErr
}

// Files returns the embedded schema sources keyed by file name.
func Files() (map[string]string, error) {
	entries, err := fs.ReadDir(schemaFS, ".")
	if err != nil {
		return nil, err
	}
	srcs := make(map[string]string, len(entries))
	for _, entry := range entries {
		data, err := fs.ReadFile(schemaFS, entry.Name())
		if err != nil {
			return nil, err
		}
		srcs[entry.Name()] = string(data)
	}
	return srcs, nil
}

// MessageByName returns the descriptor of the named schema message,
// e.g. "PipelineConfig".
func MessageByName(name string) (protoreflect.MessageDescriptor, error) {
	fds, err := load()
	if err != nil {
		return nil, err
	}
	for _, fd := range fds {
		if md := fd.FindMessage("detconfig.protos." + name); md != nil {
			return md.UnwrapMessage(), nil
		}
	}
	return nil, errors.Errorf("no message named %q in schema", name)
}

// MessageNames lists every message defined in the schema, sorted by name.
func MessageNames() ([]string, error) {
	fds, err := load()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, fd := range fds {
		for _, md := range fd.GetMessageTypes() {
			names = append(names, md.GetName())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Pipeline returns the descriptor of the top level PipelineConfig message.
func Pipeline() (protoreflect.MessageDescriptor, error) {
	return MessageByName("PipelineConfig")
}

// Dataset returns the descriptor of the KittiDatasetConfig message, the
// top level of the standalone preprocessing instances.
func Dataset() (protoreflect.MessageDescriptor, error) {
	return MessageByName("KittiDatasetConfig")
}
