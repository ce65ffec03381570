package generate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/naming"
	"github.com/yega/scaffold/internal/synth"
)

// SystemPrompt is sent with every task unless the task file overrides it.
const SystemPrompt = `Eres un experto desarrollador backend especializado en Node.js, Express, MongoDB y arquitectura RESTful.
Genera código limpio, bien documentado y siguiendo las mejores prácticas.

Contexto del proyecto YEGA:
- Backend: Node.js + Express + MongoDB + Mongoose
- Arquitectura: MVC con modelos, controladores y rutas
- Autenticación: JWT con roles (cliente, tienda, repartidor, administrador)
- Validaciones: Mongoose validations + express-validator
- Respuestas: JSON consistentes con success, message, data
- Manejo de errores: try-catch con respuestas estructuradas`

// systemMessage appends the project brief to the system prompt.
func systemMessage(system, brief string) string {
	if system == "" {
		system = SystemPrompt
	}
	if strings.TrimSpace(brief) == "" {
		return system
	}
	return system + "\n\nContexto adicional:\n" + brief
}

// userMessage is the task prompt preceded by the current source files.
func userMessage(prompt, files string) string {
	if files == "" {
		return prompt
	}
	return "Estos son los archivos actuales del backend:\n" + files +
		"\nTarea: " + prompt +
		"\nPor favor, genera el código solicitado respetando la estructura y estilo del proyecto."
}

const modelPrompt = `Genera un modelo Mongoose para %s (%s) con:

Campos requeridos:
%s

Incluye:
- Validaciones apropiadas con mensajes de error en español
- Timestamps automáticos
- Índices para optimizar consultas
- Métodos de instancia útiles
- Métodos estáticos útiles
- Middleware pre-save si es necesario
- Virtuals si son útiles
- toJSON y toObject configurados

El archivo debe exportar el modelo como: module.exports = %s;`

const controllerPrompt = `Genera un controlador completo para %s (%s) con:

Operaciones requeridas: %s
Roles autorizados: %s

Para cada operación incluye:
- Comentarios JSDoc con @desc, @route, @access
- Validaciones de entrada robustas
- Manejo de errores con try-catch
- Respuestas JSON consistentes con { success, message, data }
- Paginación para listados
- Populate de relaciones cuando sea necesario

Exporta exactamente estas funciones: %s

Usa el modelo: const %s = require('../models/%s');`

const routesPrompt = `Genera las rutas Express para %s (%s) con:

Rutas:
%s

Incluye:
- Import del controlador: const { %s } = require('../controllers/%s');
%s- Comentarios explicativos
- Export del router: module.exports = router;`

// describeField renders one field for the model prompt.
func describeField(f endpoint.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s: %s", f.Name, f.Type)
	if f.Required {
		b.WriteString(" (requerido)")
	}
	if f.Unique {
		b.WriteString(" (único)")
	}
	if f.Ref != "" {
		fmt.Fprintf(&b, " (referencia a %s)", f.Ref)
	}
	if f.Type == endpoint.TypeArray {
		fmt.Fprintf(&b, " (elementos: %s)", f.ElementType())
	}
	if len(f.Enum) > 0 {
		fmt.Fprintf(&b, " (enum: %s)", strings.Join(f.Enum, ", "))
	}
	if f.Min != nil {
		fmt.Fprintf(&b, " (min: %s)", endpoint.FormatNumber(*f.Min))
	}
	if f.Max != nil {
		fmt.Fprintf(&b, " (max: %s)", endpoint.FormatNumber(*f.Max))
	}
	if f.MinLength != nil {
		fmt.Fprintf(&b, " (minlength: %s)", endpoint.FormatNumber(*f.MinLength))
	}
	if f.MaxLength != nil {
		fmt.Fprintf(&b, " (maxlength: %s)", endpoint.FormatNumber(*f.MaxLength))
	}
	if f.Default != nil {
		fmt.Fprintf(&b, " (default: %s)", f.Default)
	}
	if f.Match != "" {
		fmt.Fprintf(&b, " (formato: %s)", f.Match)
	}
	return b.String()
}

// EndpointTasks builds the model, controller and route generation tasks for
// cfg. Handler names and the route table come from the same synthesizers as
// the deterministic scaffold, so both paths register identical routes.
func EndpointTasks(cfg *endpoint.Config, names naming.Set) []Task {
	desc := cfg.Description
	if desc == "" {
		desc = "endpoint " + cfg.Name
	}

	fields := make([]string, len(cfg.Fields))
	for i, f := range cfg.Fields {
		fields[i] = describeField(f)
	}
	ops := make([]string, len(cfg.Operations))
	for i, op := range cfg.Operations {
		ops[i] = op.String()
	}
	roles := "ninguno (solo autenticación)"
	if !cfg.Auth {
		roles = "ninguno (rutas públicas)"
	} else if len(cfg.Roles) > 0 {
		roles = strings.Join(cfg.Roles, ", ")
	}

	table := synth.RouteTable(cfg, names)
	var handlers, routes []string
	for _, r := range table {
		handlers = append(handlers, r.Handler)
		routes = append(routes, "- "+r.String())
	}
	middleware := ""
	if cfg.Auth {
		middleware = "- Import de middleware: const { protect, authorize } = require('../middleware/authMiddleware');\n"
	}
	handlerList := strings.Join(handlers, ", ")

	return []Task{
		{
			Name:        "model " + names.Model(),
			Description: "Modelo Mongoose de " + cfg.Name,
			Prompt:      fmt.Sprintf(modelPrompt, cfg.Name, desc, strings.Join(fields, "\n"), names.Model()),
			Output:      filepath.Join("models", names.Model()+".js"),
		},
		{
			Name:        "controller " + names.Controller(),
			Description: "Controlador de " + cfg.Name,
			Prompt: fmt.Sprintf(controllerPrompt, cfg.Name, desc, strings.Join(ops, ", "), roles,
				handlerList, names.Model(), names.Model()),
			Output:  filepath.Join("controllers", names.Controller()+".js"),
			Context: []string{filepath.Join("models", names.Model()+".js")},
		},
		{
			Name:        "routes " + names.RouteFile(),
			Description: "Rutas Express de " + cfg.Name,
			Prompt: fmt.Sprintf(routesPrompt, cfg.Name, desc, strings.Join(routes, "\n"),
				handlerList, names.Controller(), middleware),
			Output:  filepath.Join("routes", names.RouteFile()+".js"),
			Context: []string{filepath.Join("controllers", names.Controller()+".js")},
		},
	}
}
