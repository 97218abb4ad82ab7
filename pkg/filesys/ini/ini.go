// Package ini reads and writes sectioned INI files through [filesys.File].
//
// Writing keeps the order of sections and keys as given. Scalar values are
// written as is; maps, slices and structs are written as JSON on one line.
package ini

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	goini "github.com/go-ini/ini"

	"github.com/calvinalkan/filesys/pkg/filesys"
)

// DefaultLineEnding terminates every written line unless overridden.
const DefaultLineEnding = "\r\n"

// Data is an ordered list of sections.
type Data []Section

// Section is one "[Name]" block.
type Section struct {
	Name   string
	Values []Value
}

// Value is one "Key = Value" line.
type Value struct {
	Key   string
	Value any
}

// Section returns the section named name.
func (d Data) Section(name string) (Section, bool) {
	for _, s := range d {
		if s.Name == name {
			return s, true
		}
	}

	return Section{}, false
}

// Get returns the value stored under key.
func (s Section) Get(key string) (any, bool) {
	for _, v := range s.Values {
		if v.Key == key {
			return v.Value, true
		}
	}

	return nil, false
}

// Set stores value under key in section and returns the updated data.
// Missing sections are appended; existing keys keep their position.
func (d Data) Set(section, key string, value any) Data {
	for i := range d {
		if d[i].Name != section {
			continue
		}

		for j := range d[i].Values {
			if d[i].Values[j].Key == key {
				d[i].Values[j].Value = value

				return d
			}
		}

		d[i].Values = append(d[i].Values, Value{Key: key, Value: value})

		return d
	}

	return append(d, Section{Name: section, Values: []Value{{Key: key, Value: value}}})
}

type options struct {
	lineEnding string
}

// Option configures [Write].
type Option func(*options)

// WithLineEnding sets the line terminator. Empty keeps [DefaultLineEnding].
func WithLineEnding(eol string) Option {
	return func(o *options) {
		if eol != "" {
			o.lineEnding = eol
		}
	}
}

// Write renders data and atomically replaces the content of f with it.
func Write(f filesys.File, data Data, opts ...Option) error {
	o := options{lineEnding: DefaultLineEnding}
	for _, opt := range opts {
		opt(&o)
	}

	text, err := Render(data, o.lineEnding)
	if err != nil {
		return &filesys.Error{Kind: filesys.KindOutput, Path: f.Path(), Msg: "rendering ini", Err: err}
	}

	_, err = f.PutWith(text, filesys.PutOptions{Atomic: true})

	return err
}

// Render formats data as INI text. Sections are separated by one empty line
// and every line, the last included, ends with lineEnding.
func Render(data Data, lineEnding string) (string, error) {
	var b strings.Builder

	for i, section := range data {
		if i > 0 {
			b.WriteString(lineEnding)
		}

		b.WriteString("[" + section.Name + "]" + lineEnding)

		for _, v := range section.Values {
			s, err := formatValue(v.Value)
			if err != nil {
				return "", fmt.Errorf("[%s] %s: %w", section.Name, v.Key, err)
			}

			b.WriteString(v.Key + " = " + s + lineEnding)
		}
	}

	return b.String(), nil
}

func formatValue(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		if v {
			return "1", nil
		}

		return "", nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Load parses the INI content of f. Values are returned as strings. Keys
// outside any section are returned under a section named "DEFAULT".
func Load(f filesys.File) (Data, error) {
	raw, err := f.Bytes()
	if err != nil {
		return nil, err
	}

	parsed, err := goini.LoadSources(goini.LoadOptions{IgnoreInlineComment: true}, raw)
	if err != nil {
		return nil, &filesys.Error{Kind: filesys.KindInput, Path: f.Path(), Msg: "parsing ini", Err: err}
	}

	var data Data

	for _, s := range parsed.Sections() {
		keys := s.Keys()
		if s.Name() == goini.DefaultSection && len(keys) == 0 {
			continue
		}

		section := Section{Name: s.Name(), Values: make([]Value, 0, len(keys))}
		for _, k := range keys {
			section.Values = append(section.Values, Value{Key: k.Name(), Value: k.String()})
		}

		data = append(data, section)
	}

	return data, nil
}
