// Package jsonutil repairs and validates the JSON an LLM provider returns
// for a structured extraction call (spec.md §4.3's "structured-output
// contract"). Adapted from the teacher's pkg/core/utils/json_validator.go.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"reflect"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// Repair fixes the common shapes an LLM emits instead of clean JSON:
// markdown code fences, single quotes, trailing commas, unquoted keys.
func Repair(raw string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return "", fmt.Errorf("jsonutil: repair failed: %w", err)
	}
	return repaired, nil
}

// Unmarshal decodes jsonData into schema and fails closed (SchemaInvalid,
// per spec.md §4.3) on any zero-valued exported field, since every item
// schema's fields are meant to be populated by the model.
func Unmarshal(jsonData string, schema interface{}) error {
	if err := json.Unmarshal([]byte(jsonData), schema); err != nil {
		return fmt.Errorf("jsonutil: structural error: %w", err)
	}

	v := reflect.ValueOf(schema)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanInterface() {
			continue
		}
		// Pointer fields model optional values (e.g. Item6Fee.AmountCents);
		// only non-pointer zero values indicate a field the model skipped.
		if field.Kind() == reflect.Ptr {
			continue
		}
		if field.IsZero() {
			return fmt.Errorf("jsonutil: required field %q is missing or zero", v.Type().Field(i).Name)
		}
	}
	return nil
}

// RepairAndUnmarshal is the one-call "draft, repair, validate" path used by
// pkg/llm.Router before accepting a provider's response.
func RepairAndUnmarshal(raw string, schema interface{}) (string, error) {
	repaired, err := Repair(raw)
	if err != nil {
		repaired = raw
	}
	if err := Unmarshal(repaired, schema); err != nil {
		return repaired, err
	}
	return repaired, nil
}
