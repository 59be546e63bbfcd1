package keychain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Codec encodes typed values to item payloads and back.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec stores values as compact JSON.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal rejects trailing data after the first value.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// YAMLCodec stores values as YAML documents.
type YAMLCodec struct{}

func (YAMLCodec) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

func (YAMLCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// CodecByName returns the codec registered under name ("json" or "yaml").
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "yaml":
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
