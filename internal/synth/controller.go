package synth

import (
	"strings"

	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/naming"
)

type handlerData struct {
	Name    string
	Model   string
	Camel   string
	Handler string
	Prefix  string
	Path    string
	Access  string
}

var handlerTemplates = map[endpoint.OpKind]string{
	endpoint.OpGetAll:  "getAll",
	endpoint.OpGetByID: "getById",
	endpoint.OpCreate:  "create",
	endpoint.OpUpdate:  "update",
	endpoint.OpDelete:  "delete",
	endpoint.OpCustom:  "custom",
}

// HandlerName returns the exported controller function bound to op.
func HandlerName(op endpoint.Operation, names naming.Set) string {
	switch op.Kind {
	case endpoint.OpGetAll:
		return "getAll" + names.Pascal + "s"
	case endpoint.OpGetByID:
		return "get" + names.Pascal + "ById"
	case endpoint.OpCreate:
		return "create" + names.Pascal
	case endpoint.OpUpdate:
		return "update" + names.Pascal
	case endpoint.OpDelete:
		return "delete" + names.Pascal
	default:
		return op.Name
	}
}

// Controller renders the controller module. Handlers follow the listed
// operation order; duplicates are rendered twice.
func Controller(cfg *endpoint.Config, names naming.Set) string {
	handlers := make([]string, len(cfg.Operations))
	for i, op := range cfg.Operations {
		handlers[i] = render(handlerTemplates[op.Kind], handlerData{
			Name:    cfg.Name,
			Model:   names.Model(),
			Camel:   names.Camel,
			Handler: HandlerName(op, names),
			Prefix:  names.APIPrefix(),
			Path:    routePath(op),
			Access:  access(cfg),
		})
	}
	return render("controller", struct {
		Model      string
		Controller string
		Handlers   string
	}{
		Model:      names.Model(),
		Controller: names.Controller(),
		Handlers:   strings.Join(handlers, "\n\n"),
	})
}

func access(cfg *endpoint.Config) string {
	switch {
	case !cfg.Auth:
		return "Public"
	case len(cfg.Roles) == 0:
		return "Private"
	default:
		return "Private (" + strings.Join(cfg.Roles, ", ") + ")"
	}
}
