package provider

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// FlexString accepts either a JSON string or a JSON number and keeps its textual form.
// The gateway sends ids and reason codes both ways depending on the endpoint.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

var knownKeysCache sync.Map

// knownKeys returns the json names declared by the fields of t
func knownKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]struct{})
	}

	keys := make(map[string]struct{})
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" {
			name = field.Name
		}
		keys[name] = struct{}{}
	}

	knownKeysCache.Store(t, keys)
	return keys
}

// decodeWithExtra decodes data into target (a pointer to an alias struct without
// custom methods) and returns the keys target does not declare.
func decodeWithExtra(data []byte, target any) (map[string]any, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := knownKeys(reflect.TypeOf(target).Elem())
	var extra map[string]any
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return nil, err
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = v
	}

	return extra, nil
}

// encodeWithExtra marshals value and merges extra keys that value does not already set
func encodeWithExtra(value any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, v := range extra {
		if _, exists := merged[key]; !exists {
			merged[key] = v
		}
	}
	return json.Marshal(merged)
}
