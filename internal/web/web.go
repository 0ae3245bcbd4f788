// internal/web/web.go
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed index.html
var paginaFS embed.FS

var pagina = template.Must(template.ParseFS(paginaFS, "index.html"))

type dadosPagina struct {
	Titulo string
}

// Pagina serve o painel de página única embutido no binário.
func Pagina(titulo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := pagina.Execute(c.Writer, dadosPagina{Titulo: titulo}); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}
