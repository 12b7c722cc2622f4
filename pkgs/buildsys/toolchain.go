package buildsys

import (
	"fmt"
	"slices"
	"strconv"
)

// Kind is the type of a toolchain variable.
type Kind int

const (
	String Kind = iota
	Bool
)

func (k Kind) String() string {
	if k == Bool {
		return "BOOL"
	}
	return "STRING"
}

// Value is a typed toolchain variable value.
type Value struct {
	Kind Kind
	Str  string
	Bool bool
}

func (v Value) String() string {
	if v.Kind == Bool {
		return strconv.FormatBool(v.Bool)
	}
	return v.Str
}

// Toolchain is the toolchain description: named build-configuration
// switches handed to the configure step. Names keep insertion order.
type Toolchain struct {
	names []string
	vars  map[string]Value
}

// NewToolchain returns an empty toolchain description.
func NewToolchain() *Toolchain {
	return &Toolchain{vars: make(map[string]Value)}
}

func (t *Toolchain) put(name string, v Value) {
	if t.vars == nil {
		t.vars = make(map[string]Value)
	}
	if _, ok := t.vars[name]; !ok {
		t.names = append(t.names, name)
	}
	t.vars[name] = v
}

// Set sets a string variable.
func (t *Toolchain) Set(name, value string) *Toolchain {
	t.put(name, Value{Kind: String, Str: value})
	return t
}

// SetBool sets a boolean variable.
func (t *Toolchain) SetBool(name string, value bool) *Toolchain {
	t.put(name, Value{Kind: Bool, Bool: value})
	return t
}

// Get returns the variable named name.
func (t *Toolchain) Get(name string) (Value, bool) {
	v, ok := t.vars[name]
	return v, ok
}

// GetBool returns the boolean variable named name. It fails if the
// variable is missing or not a boolean.
func (t *Toolchain) GetBool(name string) (bool, error) {
	v, ok := t.vars[name]
	if !ok {
		return false, fmt.Errorf("toolchain: variable %s not set", name)
	}
	if v.Kind != Bool {
		return false, fmt.Errorf("toolchain: variable %s is %s, not BOOL", name, v.Kind)
	}
	return v.Bool, nil
}

// Names returns variable names in insertion order.
func (t *Toolchain) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of variables.
func (t *Toolchain) Len() int {
	return len(t.names)
}
