// Package endpoint describes one generated CRUD resource: its schema fields,
// exposed operations and access policy.
package endpoint

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidConfig is returned by Validate for configurations that must not
// reach the synthesizers.
var ErrInvalidConfig = errors.New("invalid endpoint config")

// Config is the declarative description of one endpoint. It is built once by
// the caller and consumed by a single scaffold run.
type Config struct {
	Name        string
	Description string
	Fields      []Field
	Operations  []Operation
	Auth        bool
	Roles       []string
	Indexes     []Index
	// Timestamps controls the schema's timestamps option. Nil means true.
	Timestamps *bool
}

// HasTimestamps reports whether the schema gets createdAt/updatedAt.
func (c *Config) HasTimestamps() bool {
	if c.Timestamps == nil {
		return true
	}
	return *c.Timestamps
}

// FieldType is the Mongoose schema type of a field.
type FieldType string

const (
	TypeString   FieldType = "String"
	TypeNumber   FieldType = "Number"
	TypeBoolean  FieldType = "Boolean"
	TypeDate     FieldType = "Date"
	TypeObjectID FieldType = "ObjectId"
	TypeArray    FieldType = "Array"
)

// Valid reports whether t is one of the supported schema types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeObjectID, TypeArray:
		return true
	}
	return false
}

// Field describes one schema field and its constraints.
type Field struct {
	Name      string
	Type      FieldType
	Required  bool
	Unique    bool
	Trim      bool
	Lowercase bool
	Uppercase bool
	// Ref names the referenced model; only meaningful for ObjectId fields.
	Ref string
	// ItemType is the element type of Array fields; empty means String.
	ItemType  string
	Enum      []string
	Min       *float64
	Max       *float64
	MinLength *float64
	MaxLength *float64
	Default   *Literal
	// Match is a regular expression literal emitted verbatim, e.g. `/^\d+$/`.
	Match string
}

// ElementType returns the Array element type, defaulting to String.
func (f Field) ElementType() string {
	if f.ItemType == "" {
		return string(TypeString)
	}
	return f.ItemType
}

// OpKind enumerates the handler shapes a controller can expose.
type OpKind int

const (
	OpCustom OpKind = iota
	OpGetAll
	OpGetByID
	OpCreate
	OpUpdate
	OpDelete
)

// Operation is one controller handler. Name is only significant for
// OpCustom, where it is the exported handler identifier.
type Operation struct {
	Kind OpKind
	Name string
}

var (
	GetAll  = Operation{Kind: OpGetAll}
	GetByID = Operation{Kind: OpGetByID}
	Create  = Operation{Kind: OpCreate}
	Update  = Operation{Kind: OpUpdate}
	Delete  = Operation{Kind: OpDelete}
)

// Custom returns a placeholder operation exported under name.
func Custom(name string) Operation {
	return Operation{Kind: OpCustom, Name: name}
}

// CRUD is the operation list used when a config does not name any.
func CRUD() []Operation {
	return []Operation{GetAll, GetByID, Create, Update, Delete}
}

var opNames = map[string]OpKind{
	"getAll":  OpGetAll,
	"getById": OpGetByID,
	"create":  OpCreate,
	"update":  OpUpdate,
	"delete":  OpDelete,
}

// ParseOperation maps a config token to an Operation. Unknown tokens become
// custom operations.
func ParseOperation(s string) Operation {
	s = strings.TrimSpace(s)
	if k, ok := opNames[s]; ok {
		return Operation{Kind: k}
	}
	return Custom(s)
}

// String returns the config token for op.
func (op Operation) String() string {
	for name, k := range opNames {
		if k == op.Kind && op.Kind != OpCustom {
			return name
		}
	}
	return op.Name
}

// HasOperation reports whether c lists op.
func (c *Config) HasOperation(op Operation) bool {
	return slices.Contains(c.Operations, op)
}

// Mutating reports whether op changes stored data.
func (op Operation) Mutating() bool {
	switch op.Kind {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// IndexKey is one field of a compound index. Type names a special index,
// e.g. "text", "2dsphere" or "hashed", and replaces Order when set.
type IndexKey struct {
	Field string
	Order int
	Type  string
}

// Index is an ordered compound index declaration, e.g. {activo: 1, orden: 1}
// or {titulo: text}.
type Index []IndexKey

// Validate checks the invariants the synthesizers rely on but do not
// enforce. All problems are reported together.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is required")
	}
	seen := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		switch {
		case f.Name == "":
			problems = append(problems, fmt.Sprintf("field %d: name is required", i))
		case seen[f.Name]:
			problems = append(problems, fmt.Sprintf("field %q: duplicate name", f.Name))
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			problems = append(problems, fmt.Sprintf("field %q: unknown type %q", f.Name, f.Type))
		}
		if f.Type == TypeObjectID && f.Ref == "" {
			problems = append(problems, fmt.Sprintf("field %q: ObjectId requires ref", f.Name))
		}
	}
	ops := make(map[Operation]bool, len(c.Operations))
	for _, op := range c.Operations {
		if op.Kind == OpCustom && op.Name == "" {
			problems = append(problems, "custom operation without a name")
			continue
		}
		if ops[op] {
			problems = append(problems, fmt.Sprintf("operation %q listed twice", op))
		}
		ops[op] = true
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
