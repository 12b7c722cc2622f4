package recipe

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrUnknownOption   = errors.New("unknown option")
	ErrDuplicateOption = errors.New("duplicate option")
	ErrOutOfDomain     = errors.New("value outside option domain")
)

// BoolDomain is the domain of boolean-like options.
var BoolDomain = []string{"True", "False"}

// Option declares a package toggle: its legal values and its default.
type Option struct {
	Name    string
	Domain  []string
	Default string
}

// BoolOption declares a boolean-like option.
func BoolOption(name string, def bool) Option {
	return Option{Name: name, Domain: BoolDomain, Default: formatBool(def)}
}

// Options is an option schema together with the current values. Keys keep
// declaration order.
type Options struct {
	order  []string
	schema map[string]Option
	values map[string]string
}

// NewOptions declares opts with their default values.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{}
	for _, opt := range opts {
		if err := o.Declare(opt); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Declare adds opt to the schema and sets it to its default.
func (o *Options) Declare(opt Option) error {
	if o.schema == nil {
		o.schema = make(map[string]Option)
		o.values = make(map[string]string)
	}
	if _, ok := o.schema[opt.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOption, opt.Name)
	}
	def, ok := lookup(opt.Domain, opt.Default)
	if !ok {
		return fmt.Errorf("%w: %s default %q not in %v", ErrOutOfDomain, opt.Name, opt.Default, opt.Domain)
	}
	opt.Domain = slices.Clone(opt.Domain)
	opt.Default = def
	o.order = append(o.order, opt.Name)
	o.schema[opt.Name] = opt
	o.values[opt.Name] = def
	return nil
}

// Set assigns a value to a declared option. Values are matched against the
// domain case-insensitively and stored in the domain's spelling.
func (o *Options) Set(name, value string) error {
	opt, ok := o.schema[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	v, ok := lookup(opt.Domain, value)
	if !ok {
		return fmt.Errorf("%w: %s=%q not in %v", ErrOutOfDomain, name, value, opt.Domain)
	}
	o.values[name] = v
	return nil
}

// Get returns the current value of name.
func (o *Options) Get(name string) (string, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Bool reports the value of a boolean-like option. ok is false when the
// option is absent.
func (o *Options) Bool(name string) (value, ok bool) {
	v, ok := o.values[name]
	if !ok {
		return false, false
	}
	return v == "True", true
}

// Has reports whether name is in the schema.
func (o *Options) Has(name string) bool {
	_, ok := o.schema[name]
	return ok
}

// Schema returns the declaration of name.
func (o *Options) Schema(name string) (Option, bool) {
	opt, ok := o.schema[name]
	return opt, ok
}

// Remove drops name from the schema. Removing an absent option is a no-op.
func (o *Options) Remove(name string) {
	if !o.Has(name) {
		return
	}
	delete(o.schema, name)
	delete(o.values, name)
	o.order = slices.DeleteFunc(o.order, func(k string) bool { return k == name })
}

// Keys returns option names in declaration order.
func (o *Options) Keys() []string {
	return slices.Clone(o.order)
}

// Values returns a copy of the current values.
func (o *Options) Values() map[string]string {
	return maps.Clone(o.values)
}

// Clone returns a deep copy of o.
func (o *Options) Clone() *Options {
	c := &Options{
		order:  slices.Clone(o.order),
		schema: make(map[string]Option, len(o.schema)),
		values: maps.Clone(o.values),
	}
	for k, opt := range o.schema {
		opt.Domain = slices.Clone(opt.Domain)
		c.schema[k] = opt
	}
	if c.values == nil {
		c.values = make(map[string]string)
	}
	return c
}

// SubsetOf reports whether every key of o is also a key of other.
func (o *Options) SubsetOf(other *Options) bool {
	for _, k := range o.order {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// String renders the options as "k=v" pairs in declaration order.
func (o *Options) String() string {
	parts := make([]string, 0, len(o.order))
	for _, k := range o.order {
		parts = append(parts, k+"="+o.values[k])
	}
	return strings.Join(parts, " ")
}

func lookup(domain []string, value string) (string, bool) {
	for _, d := range domain {
		if strings.EqualFold(d, value) {
			return d, true
		}
	}
	return "", false
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
