package synth

import (
	"net/http"
	"strings"

	"github.com/yega/scaffold/internal/endpoint"
	"github.com/yega/scaffold/internal/naming"
)

// Route is one router registration.
type Route struct {
	Method  string
	Path    string
	Handler string
	// Gates are the middleware expressions placed before the handler,
	// authentication first.
	Gates []string
}

// Verb is the Express router method, e.g. "get".
func (r Route) Verb() string { return strings.ToLower(r.Method) }

// String renders the registration as it appears in the route module.
func (r Route) String() string {
	var b strings.Builder
	b.WriteString("router." + r.Verb() + "('" + r.Path + "', ")
	for _, g := range r.Gates {
		b.WriteString(g + ", ")
	}
	b.WriteString(r.Handler + ");")
	return b.String()
}

func routePath(op endpoint.Operation) string {
	switch op.Kind {
	case endpoint.OpGetAll, endpoint.OpCreate:
		return "/"
	case endpoint.OpGetByID, endpoint.OpUpdate, endpoint.OpDelete:
		return "/:id"
	default:
		return "/" + naming.ToKebabCase(op.Name)
	}
}

func routeMethod(op endpoint.Operation) string {
	switch op.Kind {
	case endpoint.OpGetAll, endpoint.OpGetByID:
		return http.MethodGet
	case endpoint.OpUpdate:
		return http.MethodPut
	case endpoint.OpDelete:
		return http.MethodDelete
	default:
		return http.MethodPost
	}
}

// Gates returns the middleware chain for cfg. Without auth there are no
// gates, whatever the roles say.
func Gates(cfg *endpoint.Config) []string {
	if !cfg.Auth {
		return nil
	}
	gates := []string{"protect"}
	if len(cfg.Roles) > 0 {
		quoted := make([]string, len(cfg.Roles))
		for i, r := range cfg.Roles {
			quoted[i] = endpoint.Quote(r)
		}
		gates = append(gates, "authorize(["+strings.Join(quoted, ", ")+"])")
	}
	return gates
}

// RouteTable lists one route per operation in the listed order.
func RouteTable(cfg *endpoint.Config, names naming.Set) []Route {
	gates := Gates(cfg)
	routes := make([]Route, len(cfg.Operations))
	for i, op := range cfg.Operations {
		routes[i] = Route{
			Method:  routeMethod(op),
			Path:    routePath(op),
			Handler: HandlerName(op, names),
			Gates:   gates,
		}
	}
	return routes
}

// Routes renders the route module for cfg.
func Routes(cfg *endpoint.Config, names naming.Set) string {
	table := RouteTable(cfg, names)
	var imports []string
	seen := map[string]bool{}
	for _, r := range table {
		if !seen[r.Handler] {
			seen[r.Handler] = true
			imports = append(imports, r.Handler)
		}
	}
	return render("routes", struct {
		RouteFile  string
		Controller string
		Imports    string
		Auth       bool
		Routes     []Route
	}{
		RouteFile:  names.RouteFile(),
		Controller: names.Controller(),
		Imports:    strings.Join(imports, ", "),
		Auth:       cfg.Auth,
		Routes:     table,
	})
}
