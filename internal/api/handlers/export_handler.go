// internal/api/handlers/export_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secomdev/painelSecom/internal/api/responses"
	"github.com/secomdev/painelSecom/internal/core/export"
	"github.com/secomdev/painelSecom/internal/core/filter"
	"github.com/secomdev/painelSecom/internal/store"
)

// ExportHandler gera os downloads da tabela filtrada.
type ExportHandler struct {
	cache   *store.Cache
	exports export.Service
}

func NewExportHandler(cache *store.Cache, exports export.Service) *ExportHandler {
	return &ExportHandler{
		cache:   cache,
		exports: exports,
	}
}

// HandleXLSX devolve a visão filtrada como pasta de trabalho do Excel.
func (h *ExportHandler) HandleXLSX(c *gin.Context) {
	tabela, ok := tabelaDoCache(c, h.cache)
	if !ok {
		return
	}

	registros := filter.Aplicar(tabela.Registros, parseCriterios(c))
	conteudo, err := h.exports.GerarXLSX(registros, tabela.ColunasExtras)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o arquivo Excel", err.Error())
		return
	}

	fileName := fmt.Sprintf("controle_processos_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", conteudo)
}

// HandleCSV devolve a visão filtrada como CSV com ponto e vírgula, no
// encoding que o Excel brasileiro abre sem configuração.
func (h *ExportHandler) HandleCSV(c *gin.Context) {
	tabela, ok := tabelaDoCache(c, h.cache)
	if !ok {
		return
	}

	registros := filter.Aplicar(tabela.Registros, parseCriterios(c))
	conteudo, err := h.exports.GerarCSV(registros, tabela.ColunasExtras)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar o arquivo CSV", err.Error())
		return
	}

	fileName := fmt.Sprintf("controle_processos_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, "text/csv; charset=windows-1252", conteudo)
}
