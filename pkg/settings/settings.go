// Package settings resolves the machine and belt settings of a print job from
// built-in defaults, profile files and command line overrides. Later sources
// win. Every lookup returns an already resolved value; formulas are not evaluated.
package settings

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"beltengine/pkg/logging"
)

// Setting is a key and its rendered value as passed to the slicing engine.
type Setting struct {
	Key   string
	Value string
}

func (s Setting) String() string {
	return s.Key + "=" + s.Value
}

// BeltPrefix marks settings that only this tool understands.
const BeltPrefix = "blackbelt_"

// Defaults returns the built-in default of every setting the pipeline reads.
func Defaults() map[string]Value {
	return map[string]Value{
		"blackbelt_gantry_angle":                IntValue(45),
		"blackbelt_raft":                        BoolValue(false),
		"blackbelt_raft_margin":                 IntValue(5),
		"blackbelt_raft_thickness":              FloatValue(2.5),
		"blackbelt_raft_gap":                    FloatValue(0.5),
		"blackbelt_raft_speed":                  IntValue(25),
		"blackbelt_raft_flow":                   IntValue(100),
		"blackbelt_belt_wall_enabled":           BoolValue(true),
		"blackbelt_belt_wall_speed":             IntValue(30),
		"blackbelt_belt_wall_flow":              IntValue(100),
		"blackbelt_support_gantry_angle_bias":   IntValue(45),
		"blackbelt_support_minimum_island_area": IntValue(3),
		"support_enable":                        BoolValue(false),
		"support_angle":                         IntValue(50),
		"adhesion_type":                         StringValue("brim"),
		"machine_depth":                         IntValue(99999),
		"wall_line_width_0":                     FloatValue(0.4),
		"layer_height":                          FloatValue(0.2),
		"layer_height_0":                        FloatValue(0.3),
		"material_flow":                         IntValue(100),
		"prime_tower_flow":                      IntValue(100),
	}
}

// Store holds the defaults and every value that was set on top of them.
type Store struct {
	defaults map[string]Value
	values   map[string]Value
	Log      logging.Sink
}

func New(log logging.Sink) *Store {
	return &Store{
		defaults: Defaults(),
		values:   make(map[string]Value),
		Log:      log,
	}
}

func (s *Store) log() logging.Sink {
	return logging.OrDiscard(s.Log)
}

// Set stores a value. Setting a key back to its default forgets it.
func (s *Store) Set(key string, v Value) {
	if d, ok := s.defaults[key]; ok && d.Equal(v) {
		delete(s.values, key)
		return
	}
	if _, ok := s.defaults[key]; !ok {
		s.log().Debugf("Setting %s is not used by the belt pipeline, passing it through", key)
	}
	s.values[key] = v
}

// SetString stores a textual value, inferring its type.
func (s *Store) SetString(key, raw string) {
	s.Set(key, ParseValue(raw))
}

// Override applies a "key=value" pair.
func (s *Store) Override(pair string) error {
	key, raw, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("setting %q is not of the form key=value", pair)
	}
	s.SetString(key, raw)
	return nil
}

// LoadProfile reads a profile file. YAML profiles are a mapping of settings,
// nested under a top-level "profile" mapping when present. Files that are not
// YAML are read as "key = value" lines, optionally under a [values] section.
func (s *Store) LoadProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}

	entries, yamlErr := decodeYAML(data)
	if yamlErr != nil {
		var iniErr error
		if entries, iniErr = decodeINI(data); iniErr != nil {
			return fmt.Errorf("failed to parse profile %s: %w", path, yamlErr)
		}
	}
	for _, e := range entries {
		if e.err != nil {
			return fmt.Errorf("profile %s: setting %s: %w", path, e.key, e.err)
		}
		s.Set(e.key, e.value)
	}
	s.log().Debugf("Read %d settings from %s", len(entries), path)
	return nil
}

type profileEntry struct {
	key   string
	value Value
	err   error
}

func decodeYAML(data []byte) ([]profileEntry, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if inner, ok := doc["profile"].(map[string]interface{}); ok {
		doc = inner
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]profileEntry, len(keys))
	for i, k := range keys {
		v, err := valueOf(doc[k])
		entries[i] = profileEntry{key: k, value: v, err: err}
	}
	return entries, nil
}

// decodeINI reads the [values] section; keys before any section header
// belong to it.
func decodeINI(data []byte) ([]profileEntry, error) {
	if !bytes.Contains(data, []byte("[values]")) {
		data = append([]byte("[values]\n"), data...)
	}
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return nil, err
	}
	keys := f.Section("values").Keys()
	entries := make([]profileEntry, len(keys))
	for i, k := range keys {
		entries[i] = profileEntry{key: k.Name(), value: ParseValue(k.String())}
	}
	return entries, nil
}

// Lookup returns the current value of key.
func (s *Store) Lookup(key string) (Value, bool) {
	if v, ok := s.values[key]; ok {
		return v, true
	}
	v, ok := s.defaults[key]
	return v, ok
}

// resolve returns the current value of key converted by as. A missing or
// mistyped value is reported and replaced by the default.
func resolve[T any](s *Store, key string, as func(Value) (T, bool)) T {
	var zero T
	if v, ok := s.values[key]; ok {
		if t, ok := as(v); ok {
			return t
		}
		s.log().Warnf("Setting %s has unusable value %q, using the default", key, v.String())
	}
	d, ok := s.defaults[key]
	if !ok {
		s.log().Warnf("Trying to get unknown setting %s", key)
		return zero
	}
	t, ok := as(d)
	if !ok {
		s.log().Warnf("Default of setting %s is a %s", key, d.Kind())
		return zero
	}
	return t
}

func (s *Store) Bool(key string) bool {
	return resolve(s, key, Value.AsBool)
}

func (s *Store) Int(key string) int64 {
	return resolve(s, key, Value.AsInt)
}

func (s *Store) Float(key string) float64 {
	return resolve(s, key, Value.AsFloat)
}

func (s *Store) String(key string) string {
	return resolve(s, key, Value.AsString)
}

// NonDefault lists the values that differ from the defaults, sorted by key.
func (s *Store) NonDefault() []Setting {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Setting, len(keys))
	for i, k := range keys {
		out[i] = Setting{Key: k, Value: s.values[k].String()}
	}
	return out
}

// EngineSettings is NonDefault without the belt-only settings.
func (s *Store) EngineSettings() []Setting {
	var out []Setting
	for _, st := range s.NonDefault() {
		if strings.HasPrefix(st.Key, BeltPrefix) {
			continue
		}
		out = append(out, st)
	}
	return out
}
