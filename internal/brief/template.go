package brief

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const defaultBrief = `# Análisis de Contexto: %s

1. Resumen Funcional

    Gestiona lógica de negocio, API y base de datos
    Punto de entrada para todas las peticiones del cliente
    Orquesta servicios y modelos

2. Componentes Clave

| Componente | Tipo | Responsabilidad |
| --- | --- | --- |
| models/ | Modelos | Esquemas Mongoose para entidades de negocio |
| controllers/ | Controladores | Lógica de cada endpoint |
| routes/ | Rutas | Endpoints API protegidos con authMiddleware |

3. Convenciones y Patrones

    Estilo de código: Node.js con Express, async/await para operaciones asíncronas
    Arquitectura: MVC (Model-View-Controller)
    Autenticación: JWT con roles (cliente, tienda, repartidor, administrador)
    Respuestas: JSON consistentes con { success, message, data }

4. Notas para Generación de Código

    Nuevos endpoints deben seguir convenciones RESTful
    Usar variables de entorno para claves sensibles
    Mantener nombres de modelos en PascalCase
    Añadir índices para consultas frecuentes
`

// Default returns the starter context document for a backend directory.
func Default(dir string) string {
	return fmt.Sprintf(defaultBrief, filepath.Base(filepath.Clean(dir)))
}

// Init writes the starter document to dir unless one already exists. It
// reports whether a file was created.
func Init(afs afero.Fs, dir string) (bool, error) {
	path := filepath.Join(dir, FileName)
	if err := afs.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", dir, err)
	}
	f, err := afs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating brief: %w", err)
	}
	if _, err := f.WriteString(Default(dir)); err != nil {
		f.Close()
		return false, fmt.Errorf("writing brief: %w", err)
	}
	return true, f.Close()
}
