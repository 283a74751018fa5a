package vcr

import (
	"encoding/json"
	"fmt"

	yaml "gopkg.in/yaml.v2"
)

// Interactions is the persisted shape of a cassette: two parallel
// ordered lists, where requests[i] produced responses[i].
type Interactions struct {
	Requests  []*Request  `yaml:"requests" json:"requests"`
	Responses []*Response `yaml:"responses" json:"responses"`
}

// A Serializer converts between the in-memory exchange list and the
// persisted cassette format.
//
// Serialize and Deserialize must round-trip: deserializing serialized
// interactions yields semantically equal interactions.
type Serializer interface {
	Serialize(*Interactions) ([]byte, error)
	Deserialize([]byte) (*Interactions, error)

	// Ext is the file extension, without dot, appended to cassette
	// paths that do not carry one.
	Ext() string
}

// YAML serializes cassettes as human-readable YAML. It is the default.
var YAML Serializer = yamlSerializer{}

// JSON serializes cassettes as indented JSON.
var JSON Serializer = jsonSerializer{}

type yamlSerializer struct{}

func (yamlSerializer) Serialize(in *Interactions) ([]byte, error) {
	return yaml.Marshal(in)
}

func (yamlSerializer) Deserialize(b []byte) (*Interactions, error) {
	var in Interactions
	if err := yaml.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (yamlSerializer) Ext() string { return "yml" }

type jsonSerializer struct{}

func (jsonSerializer) Serialize(in *Interactions) ([]byte, error) {
	return json.MarshalIndent(in, "", "  ")
}

func (jsonSerializer) Deserialize(b []byte) (*Interactions, error) {
	var in Interactions
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (jsonSerializer) Ext() string { return "json" }

func (in *Interactions) validate() error {
	if len(in.Requests) != len(in.Responses) {
		return fmt.Errorf("%d requests but %d responses", len(in.Requests), len(in.Responses))
	}
	return nil
}
