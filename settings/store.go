package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes s to path as YAML (.yaml/.yml) or indented JSON, creating the
// parent directory. The file is replaced atomically.
func Save(path string, s *Settings) error {
	var data []byte
	var err error

	// Clone so a nil rate table is written as an empty object.
	c := s.Clone()
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

// Load reads path over Default(). Every key is optional: missing keys keep
// their default and keys that cannot be read are skipped and reported in
// the returned warnings. A missing file returns Default() together with an
// error wrapping os.ErrNotExist.
func Load(path string) (*Settings, []string, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return s, nil, fmt.Errorf("read settings file: %w", err)
	}

	raw := map[string]any{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, &raw)
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}
	if err != nil {
		return s, nil, fmt.Errorf("parse settings: %w", err)
	}

	return s, s.apply(raw), nil
}

func (s *Settings) apply(raw map[string]any) []string {
	var warnings []string
	fields := s.textFields()

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := raw[key]
		switch k := strings.ToLower(key); {
		case k == "rates":
			rates, err := decodeRates(v)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("rates: %v", err))
				continue
			}
			s.Rates = rates
		case k == "base":
			text, ok := scalarText(v)
			if !ok {
				warnings = append(warnings, "base: not a string")
				continue
			}
			s.Base = strings.ToUpper(text)
		case fields[k] != nil:
			text, ok := scalarText(v)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("%s: not a scalar", k))
				continue
			}
			*fields[k] = text
		}
	}
	return warnings
}

// scalarText renders strings and numbers as form text; nil reads as "".
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// decodeRates accepts {"USD": 1.1} and the older [{"USD": 1.1}, ...] form.
func decodeRates(v any) (map[string]float64, error) {
	out := map[string]float64{}
	add := func(m map[string]any) error {
		for code, raw := range m {
			f, ok := number(raw)
			if !ok {
				return fmt.Errorf("rate for %s is not a number", code)
			}
			out[strings.ToUpper(code)] = f
		}
		return nil
	}

	switch t := v.(type) {
	case nil:
		return out, nil
	case map[string]any:
		if err := add(t); err != nil {
			return nil, err
		}
	case []any:
		for _, item := range t {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("unexpected rate entry %v", item)
			}
			if err := add(m); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("unexpected rates value %T", v)
	}
	return out, nil
}
