package endpoint

import (
	"fmt"
	"sort"
	"strings"
)

func num(n float64) *float64 { return &n }

// Presets returns the named example configurations.
func Presets() map[string]*Config {
	return map[string]*Config{
		"categoria":  categoria(),
		"comentario": comentario(),
		"promocion":  promocion(),
	}
}

// PresetNames lists the example configurations in sorted order.
func PresetNames() []string {
	names := make([]string, 0, 3)
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns the example configuration called name.
func Preset(name string) (*Config, error) {
	cfg, ok := Presets()[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown example %q (available: %s)", ErrInvalidConfig, name, strings.Join(PresetNames(), ", "))
	}
	return cfg, nil
}

// Basic is the configuration used when only an entity name is given on the
// command line.
func Basic(name string) *Config {
	return &Config{
		Name:        name,
		Description: "Sistema de gestión de " + name,
		Fields: []Field{
			{Name: "nombre", Type: TypeString, Required: true, Trim: true, MaxLength: num(200)},
			{Name: "descripcion", Type: TypeString, MaxLength: num(1000)},
			{Name: "activo", Type: TypeBoolean, Default: Bool(true)},
		},
		Operations: CRUD(),
		Auth:       true,
		Roles:      []string{"administrador"},
		Indexes: []Index{
			{{Field: "nombre", Order: 1}},
			{{Field: "activo", Order: 1}},
		},
	}
}

func categoria() *Config {
	return &Config{
		Name:        "categoria",
		Description: "Sistema de categorías de productos",
		Fields: []Field{
			{Name: "nombre", Type: TypeString, Required: true, Unique: true, Trim: true, MaxLength: num(100)},
			{Name: "descripcion", Type: TypeString, MaxLength: num(500)},
			{Name: "icono", Type: TypeString, Default: String("default-icon.png")},
			{Name: "activo", Type: TypeBoolean, Default: Bool(true)},
			{Name: "orden", Type: TypeNumber, Default: Number(0)},
		},
		Operations: CRUD(),
		Auth:       true,
		Roles:      []string{"administrador", "tienda"},
		Indexes: []Index{
			{{Field: "nombre", Order: 1}},
			{{Field: "activo", Order: 1}, {Field: "orden", Order: 1}},
		},
	}
}

func comentario() *Config {
	return &Config{
		Name:        "comentario",
		Description: "Sistema de comentarios y calificaciones",
		Fields: []Field{
			{Name: "usuarioId", Type: TypeObjectID, Ref: "Usuario", Required: true},
			{Name: "productoId", Type: TypeObjectID, Ref: "Producto", Required: true},
			{Name: "pedidoId", Type: TypeObjectID, Ref: "Pedido", Required: true},
			{Name: "puntuacion", Type: TypeNumber, Required: true, Min: num(1), Max: num(5)},
			{Name: "comentario", Type: TypeString, MaxLength: num(1000)},
			{Name: "activo", Type: TypeBoolean, Default: Bool(true)},
		},
		Operations: CRUD(),
		Auth:       true,
		Roles:      []string{"cliente", "administrador"},
		Indexes: []Index{
			{{Field: "productoId", Order: 1}, {Field: "activo", Order: 1}},
			{{Field: "usuarioId", Order: 1}},
			{{Field: "pedidoId", Order: 1}},
		},
	}
}

func promocion() *Config {
	return &Config{
		Name:        "promocion",
		Description: "Sistema de promociones y descuentos",
		Fields: []Field{
			{Name: "titulo", Type: TypeString, Required: true, Trim: true, MaxLength: num(200)},
			{Name: "descripcion", Type: TypeString, Required: true, MaxLength: num(1000)},
			{Name: "tiendaId", Type: TypeObjectID, Ref: "Usuario", Required: true},
			{Name: "tipo", Type: TypeString, Enum: []string{"descuento", "envio_gratis", "combo"}, Required: true},
			{Name: "valor", Type: TypeNumber, Required: true, Min: num(0)},
			{Name: "fecha_inicio", Type: TypeDate, Required: true},
			{Name: "fecha_fin", Type: TypeDate, Required: true},
			{Name: "productos", Type: TypeArray, ItemType: "mongoose.Schema.Types.ObjectId"},
			{Name: "activo", Type: TypeBoolean, Default: Bool(true)},
			{Name: "usos_maximos", Type: TypeNumber, Default: Null()},
			{Name: "usos_actuales", Type: TypeNumber, Default: Number(0)},
		},
		Operations: append(CRUD(), Custom("aplicarPromocion")),
		Auth:       true,
		Roles:      []string{"tienda", "administrador"},
		Indexes: []Index{
			{{Field: "tiendaId", Order: 1}, {Field: "activo", Order: 1}},
			{{Field: "fecha_inicio", Order: 1}, {Field: "fecha_fin", Order: 1}},
			{{Field: "tipo", Order: 1}},
		},
	}
}
