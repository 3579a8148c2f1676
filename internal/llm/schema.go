package llm

import "encoding/json"

// Type is a JSON schema primitive.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema is the provider-neutral subset of JSON schema the assistant uses
// for structured replies.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	// Order lists property names in the order the model should emit them.
	Order    []string
	Items    *Schema
	Required []string
}

// Object builds an object schema whose properties are all required, in order.
func Object(props ...Property) *Schema {
	s := &Schema{Type: TypeObject, Properties: make(map[string]*Schema, len(props))}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.Order = append(s.Order, p.Name)
		s.Required = append(s.Required, p.Name)
	}
	return s
}

// ArrayOf builds an array schema.
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Prim builds a primitive schema with a description.
func Prim(t Type, description string) *Schema {
	return &Schema{Type: t, Description: description}
}

// WithDescription sets the description and returns s.
func (s *Schema) WithDescription(description string) *Schema {
	s.Description = description
	return s
}

// Property pairs a name with its schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Prop is shorthand for Property{name, schema}.
func Prop(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}

type jsonSchema struct {
	Type                 Type               `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// MarshalJSON renders standard JSON schema.
func (s *Schema) MarshalJSON() ([]byte, error) {
	out := jsonSchema{
		Type:        s.Type,
		Description: s.Description,
		Properties:  s.Properties,
		Items:       s.Items,
		Required:    s.Required,
	}
	if s.Type == TypeObject {
		f := false
		out.AdditionalProperties = &f
	}
	return json.Marshal(out)
}
