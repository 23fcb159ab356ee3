package config

import (
	"fmt"
	"strings"

	"odbcperf/internal/core"

	"github.com/buger/jsonparser"
)

// ParseLibraryOptions decodes a flat JSON object of extra connection
// attributes. Numbers and booleans keep their JSON text. Malformed JSON
// errors are returned as the parser produced them.
func ParseLibraryOptions(raw string) (map[string]string, error) {
	opts := map[string]string{}
	if strings.TrimSpace(raw) == "" {
		return opts, nil
	}

	err := jsonparser.ObjectEach([]byte(raw), func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		switch dataType {
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return err
			}
			opts[string(key)] = s
		case jsonparser.Number, jsonparser.Boolean:
			opts[string(key)] = string(value)
		case jsonparser.Null:
			// a null value drops the attribute
		default:
			return &core.ConfigError{
				Key:   "library-options",
				Value: string(key),
				Msg:   fmt.Sprintf("library option %q must be a string, number or boolean", key),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return opts, nil
}

// ParseQueryParams decodes the JSON object holding values for {name}
// placeholders. Integers become int64, other numbers float64.
func ParseQueryParams(raw string) (map[string]interface{}, error) {
	params := map[string]interface{}{}
	if strings.TrimSpace(raw) == "" {
		return params, nil
	}

	err := jsonparser.ObjectEach([]byte(raw), func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		switch dataType {
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return err
			}
			params[name] = s
		case jsonparser.Number:
			if i, err := jsonparser.ParseInt(value); err == nil {
				params[name] = i
				return nil
			}
			f, err := jsonparser.ParseFloat(value)
			if err != nil {
				return err
			}
			params[name] = f
		case jsonparser.Boolean:
			b, err := jsonparser.ParseBoolean(value)
			if err != nil {
				return err
			}
			params[name] = b
		case jsonparser.Null:
			params[name] = nil
		default:
			return &core.ConfigError{
				Key:   "params",
				Value: name,
				Msg:   fmt.Sprintf("query parameter %q must be a scalar", name),
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}
