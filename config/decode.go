package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// messageToMap flattens a parsed schema message into plain maps and
// slices keyed by field name. Unset optional scalars are materialized
// with their schema declared defaults; unset sub messages are left out
// entirely so oneof members stay distinguishable.
func messageToMap(msg protoreflect.Message) map[string]interface{} {
	out := map[string]interface{}{}
	fields := msg.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		name := string(fd.Name())
		switch {
		case fd.IsList():
			list := msg.Get(fd).List()
			if list.Len() == 0 {
				continue
			}
			vals := make([]interface{}, 0, list.Len())
			for j := 0; j < list.Len(); j++ {
				if fd.Kind() == protoreflect.MessageKind {
					vals = append(vals, messageToMap(list.Get(j).Message()))
				} else {
					vals = append(vals, scalarValue(fd, list.Get(j)))
				}
			}
			out[name] = vals
		case fd.Kind() == protoreflect.MessageKind:
			if !msg.Has(fd) {
				continue
			}
			out[name] = messageToMap(msg.Get(fd).Message())
		default:
			out[name] = scalarValue(fd, msg.Get(fd))
		}
	}
	return out
}

func scalarValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) interface{} {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.FloatKind, protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind,
		protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	default:
		return v.Interface()
	}
}

// checkRequired reports every required field missing from msg,
// recursing into whatever sub messages are present.
func checkRequired(msg protoreflect.Message, path string) error {
	var err error
	fields := msg.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		name := string(fd.Name())
		fieldPath := name
		if path != "" {
			fieldPath = fmt.Sprintf("%s.%s", path, name)
		}
		if fd.Cardinality() == protoreflect.Required && !msg.Has(fd) {
			err = multierr.Append(err, goutils.NewConfigValidationFieldRequiredError(path, name))
			continue
		}
		switch {
		case fd.IsList():
			if fd.Kind() != protoreflect.MessageKind {
				continue
			}
			list := msg.Get(fd).List()
			for j := 0; j < list.Len(); j++ {
				err = multierr.Append(err, checkRequired(list.Get(j).Message(), fmt.Sprintf("%s.%d", fieldPath, j)))
			}
		case fd.Kind() == protoreflect.MessageKind && msg.Has(fd):
			err = multierr.Append(err, checkRequired(msg.Get(fd).Message(), fieldPath))
		}
	}
	return err
}

// decodeInto maps a flattened message into the given config struct.
func decodeInto(raw map[string]interface{}, out interface{}) error {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Result:   out,
		Metadata: &md,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return err
	}
	if len(md.Unused) != 0 {
		return errors.Errorf("schema fields without a typed counterpart: %v", md.Unused)
	}
	return nil
}
