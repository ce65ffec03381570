package endpoint

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// file is the on-disk YAML shape of a Config.
type file struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Fields      []Field  `yaml:"fields"`
	Operations  []string `yaml:"operations,omitempty"`
	Auth        *bool    `yaml:"auth,omitempty"`
	Roles       []string `yaml:"roles,omitempty"`
	Indexes     []Index  `yaml:"indexes,omitempty"`
	Timestamps  *bool    `yaml:"timestamps,omitempty"`
}

// fieldYAML mirrors Field. Default stays a raw node so that `default: null`
// can be told apart from an absent default.
type fieldYAML struct {
	Name      string    `yaml:"name"`
	Type      FieldType `yaml:"type"`
	Required  bool      `yaml:"required,omitempty"`
	Unique    bool      `yaml:"unique,omitempty"`
	Trim      bool      `yaml:"trim,omitempty"`
	Lowercase bool      `yaml:"lowercase,omitempty"`
	Uppercase bool      `yaml:"uppercase,omitempty"`
	Ref       string    `yaml:"ref,omitempty"`
	ItemType  string    `yaml:"itemType,omitempty"`
	Enum      []string  `yaml:"enum,omitempty,flow"`
	Min       *float64  `yaml:"min,omitempty"`
	Max       *float64  `yaml:"max,omitempty"`
	MinLength *float64  `yaml:"minlength,omitempty"`
	MaxLength *float64  `yaml:"maxlength,omitempty"`
	Default   yaml.Node `yaml:"default,omitempty"`
	Match     string    `yaml:"match,omitempty"`
}

// Load reads an endpoint config from a YAML file.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoint config: %w", err)
	}
	return Parse(data)
}

// Parse decodes an endpoint config. Auth defaults to true and an empty
// operation list to the five CRUD operations.
func Parse(data []byte) (*Config, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing endpoint config: %w", err)
	}
	cfg := &Config{
		Name:        f.Name,
		Description: f.Description,
		Fields:      f.Fields,
		Auth:        true,
		Roles:       f.Roles,
		Indexes:     f.Indexes,
		Timestamps:  f.Timestamps,
	}
	if f.Auth != nil {
		cfg.Auth = *f.Auth
	}
	for _, op := range f.Operations {
		cfg.Operations = append(cfg.Operations, ParseOperation(op))
	}
	if len(cfg.Operations) == 0 {
		cfg.Operations = CRUD()
	}
	return cfg, nil
}

// Marshal encodes cfg in the format Parse reads.
func Marshal(cfg *Config) ([]byte, error) {
	auth := cfg.Auth
	f := file{
		Name:        cfg.Name,
		Description: cfg.Description,
		Fields:      cfg.Fields,
		Auth:        &auth,
		Roles:       cfg.Roles,
		Indexes:     cfg.Indexes,
		Timestamps:  cfg.Timestamps,
	}
	for _, op := range cfg.Operations {
		f.Operations = append(f.Operations, op.String())
	}
	return yaml.Marshal(&f)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (fd *Field) UnmarshalYAML(n *yaml.Node) error {
	var raw fieldYAML
	if err := n.Decode(&raw); err != nil {
		return err
	}
	def, err := literalFromNode(&raw.Default)
	if err != nil {
		return fmt.Errorf("field %q: %w", raw.Name, err)
	}
	*fd = Field{
		Name:      raw.Name,
		Type:      raw.Type,
		Required:  raw.Required,
		Unique:    raw.Unique,
		Trim:      raw.Trim,
		Lowercase: raw.Lowercase,
		Uppercase: raw.Uppercase,
		Ref:       raw.Ref,
		ItemType:  raw.ItemType,
		Enum:      raw.Enum,
		Min:       raw.Min,
		Max:       raw.Max,
		MinLength: raw.MinLength,
		MaxLength: raw.MaxLength,
		Default:   def,
		Match:     raw.Match,
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (fd Field) MarshalYAML() (any, error) {
	raw := fieldYAML{
		Name:      fd.Name,
		Type:      fd.Type,
		Required:  fd.Required,
		Unique:    fd.Unique,
		Trim:      fd.Trim,
		Lowercase: fd.Lowercase,
		Uppercase: fd.Uppercase,
		Ref:       fd.Ref,
		ItemType:  fd.ItemType,
		Enum:      fd.Enum,
		Min:       fd.Min,
		Max:       fd.Max,
		MinLength: fd.MinLength,
		MaxLength: fd.MaxLength,
		Match:     fd.Match,
	}
	if fd.Default != nil {
		raw.Default = fd.Default.node()
	}
	return raw, nil
}

func literalFromNode(n *yaml.Node) (*Literal, error) {
	if n.IsZero() {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("default must be a scalar (line %d)", n.Line)
	}
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!str":
		return String(n.Value), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("parsing default %q: %w", n.Value, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var v float64
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("parsing default %q: %w", n.Value, err)
		}
		return Number(v), nil
	default:
		return nil, fmt.Errorf("unsupported default %q (tag %s)", n.Value, n.ShortTag())
	}
}

func (l *Literal) node() yaml.Node {
	switch l.kind {
	case literalString:
		return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: l.str}
	case literalNumber:
		tag := "!!float"
		if l.num == float64(int64(l.num)) {
			tag = "!!int"
		}
		return yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: FormatNumber(l.num)}
	case literalBool:
		return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(l.b)}
	default:
		return yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// UnmarshalYAML reads an index written as a mapping, keeping key order.
func (ix *Index) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("index must be a mapping (line %d)", n.Line)
	}
	keys := make(Index, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		field, v := n.Content[i].Value, n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("index key %q: value must be a direction or an index type (line %d)", field, v.Line)
		}
		key := IndexKey{Field: field}
		switch v.ShortTag() {
		case "!!int":
			if err := v.Decode(&key.Order); err != nil {
				return fmt.Errorf("index key %q: %w", field, err)
			}
		case "!!str":
			key.Type = v.Value
		default:
			return fmt.Errorf("index key %q: unsupported value %q (line %d)", field, v.Value, v.Line)
		}
		keys = append(keys, key)
	}
	*ix = keys
	return nil
}

// MarshalYAML writes the index as a flow mapping.
func (ix Index) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for _, k := range ix {
		v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(k.Order)}
		if k.Type != "" {
			v = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Type}
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k.Field}, v)
	}
	return n, nil
}
