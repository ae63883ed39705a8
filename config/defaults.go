package config

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// overridable reports whether an override value may replace a default.
// Maps are merged rather than replaced, and empty lists never win.
func overridable(v interface{}) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map:
		return false
	case reflect.Array, reflect.Slice:
		return reflect.ValueOf(v).Len() > 0
	case reflect.Int, reflect.Bool, reflect.String:
		// "", 0 and false are explicit; config structs use omitempty so
		// unset fields never reach here
		return true
	}
	return !reflect.ValueOf(v).IsZero()
}

func isMap(v interface{}) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Map
}

func mergeOverrides(defaults map[string]interface{}, overrides map[string]interface{}) error {
	for key, val := range overrides {
		existing, ok := defaults[key]
		if !ok {
			defaults[key] = val
			continue
		}
		if isMap(existing) && isMap(val) {
			existingMap, ok1 := existing.(map[string]interface{})
			valMap, ok2 := val.(map[string]interface{})
			if !ok1 || !ok2 {
				return fmt.Errorf("cannot merge config key '%s': %T into %T", key, val, existing)
			}
			if err := mergeOverrides(existingMap, valMap); err != nil {
				return err
			}
			continue
		}
		if overridable(val) {
			defaults[key] = val
		}
	}
	return nil
}

func toMap(cfg interface{}) (map[string]interface{}, error) {
	bz, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := yaml.Unmarshal(bz, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyDefaults writes defaultCfg overlaid with overrideCfg into newCfg.
func ApplyDefaults(defaultCfg interface{}, overrideCfg interface{}, newCfg interface{}) error {
	defaults, err := toMap(defaultCfg)
	if err != nil {
		return err
	}
	overrides, err := toMap(overrideCfg)
	if err != nil {
		return err
	}
	if err := mergeOverrides(defaults, overrides); err != nil {
		return err
	}
	bz, err := yaml.Marshal(defaults)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(bz, newCfg)
}
