// Package catalog holds the fixed set of parameterized SPARQL query
// templates: their names, natural-language descriptions, typed parameter
// schemas, and the embedded query skeletons they render into. Descriptors
// are built once at process start and never mutated, so they are shared
// freely across sessions.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsiudalski/DSW-2025L-GraphRAG/internal/params"
)

// ErrNotFound is returned by Get for an unknown template name.
var ErrNotFound = errors.New("template not found")

// FieldType tags a schema field with the validator that canonicalizes it.
type FieldType string

const (
	FieldDeviceID     FieldType = "device_id"
	FieldFloorID      FieldType = "floor_id"
	FieldTimestamp    FieldType = "timestamp"
	FieldPropertyType FieldType = "property_type"
	FieldDeviceType   FieldType = "device_type"
	FieldDeviceStatus FieldType = "device_status"
)

// validators maps each field type to its params validator.
var validators = map[FieldType]params.Validator{
	FieldDeviceID:     params.DeviceID,
	FieldFloorID:      params.FloorID,
	FieldTimestamp:    params.Timestamp,
	FieldPropertyType: params.PropertyType,
	FieldDeviceType:   params.DeviceType,
	FieldDeviceStatus: params.DeviceStatus,
}

// Field is one declared template parameter.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// Descriptor is a named query template: description for matching and
// prompting, plus the ordered parameter schema. Immutable after registration.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field
}

// FieldNames returns the declared parameter names in schema order.
func (d *Descriptor) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldDescription returns the description for a declared field, or "".
func (d *Descriptor) FieldDescription(name string) string {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Description
		}
	}
	return ""
}

// EmbeddingContext builds the text that represents this template in the
// similarity index: the description plus every field name and description.
func (d *Descriptor) EmbeddingContext() string {
	var sb strings.Builder
	sb.WriteString(d.Description)
	sb.WriteString("\nFields:\n")
	for _, f := range d.Fields {
		fmt.Fprintf(&sb, "- %s: %s\n", f.Name, f.Description)
	}
	return sb.String()
}

// Instance is a descriptor bound to a fully validated parameter set. Validate
// only returns an Instance when every field is present and canonical, so an
// Instance is always renderable.
type Instance struct {
	Descriptor *Descriptor
	Values     map[string]string
}

// Validate checks a raw parameter mapping against the schema. Every declared
// field is checked: absent fields are reported in missing (schema order),
// fields rejected by their validator in fieldErrors. The instance is non-nil
// only when both are empty.
func (d *Descriptor) Validate(raw map[string]string) (*Instance, map[string]string, []string) {
	fieldErrors := make(map[string]string)
	var missing []string
	values := make(map[string]string, len(d.Fields))

	for _, f := range d.Fields {
		rawValue, ok := raw[f.Name]
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		canonical, err := validators[f.Type](rawValue)
		if err != nil {
			fieldErrors[f.Name] = err.Error()
			continue
		}
		values[f.Name] = canonical
	}

	if len(fieldErrors) > 0 || len(missing) > 0 {
		return nil, fieldErrors, missing
	}
	return &Instance{Descriptor: d, Values: values}, fieldErrors, missing
}

// Catalog is the ordered, immutable template registry.
type Catalog struct {
	order  []*Descriptor
	byName map[string]*Descriptor
}

// New builds a catalog from descriptors, preserving declaration order.
func New(descriptors ...*Descriptor) *Catalog {
	c := &Catalog{byName: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		c.order = append(c.order, d)
		c.byName[d.Name] = d
	}
	return c
}

// List returns the descriptors in declaration order.
func (c *Catalog) List() []*Descriptor {
	return c.order
}

// Get looks up a descriptor by name.
func (c *Catalog) Get(name string) (*Descriptor, error) {
	d, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d, nil
}

// Len returns the number of registered templates.
func (c *Catalog) Len() int {
	return len(c.order)
}
