package model

import (
	"encoding/json"
	"errors"
	"strings"
)

// Answer holds either a single value or an ordered list of values.
// The zero value is an empty single answer.
type Answer struct {
	values []string
	multi  bool
}

func Single(v string) Answer {
	return Answer{values: []string{v}}
}

func Multi(vs ...string) Answer {
	return Answer{values: append([]string(nil), vs...), multi: true}
}

func (a Answer) IsMulti() bool { return a.multi }

// Values returns the selected values, one element for single answers.
func (a Answer) Values() []string {
	return append([]string(nil), a.values...)
}

// Text is the flattened display form; list answers are joined with ", ".
func (a Answer) Text() string {
	return strings.Join(a.values, ", ")
}

// Empty reports whether the answer carries no non-blank value.
func (a Answer) Empty() bool {
	for _, v := range a.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.multi {
		return json.Marshal(a.values)
	}
	return json.Marshal(a.Text())
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Single(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Single(n.String())
		return nil
	}
	var vs []string
	if err := json.Unmarshal(data, &vs); err == nil {
		*a = Multi(vs...)
		return nil
	}
	return errors.New("answer must be a string, a number or a list of strings")
}
