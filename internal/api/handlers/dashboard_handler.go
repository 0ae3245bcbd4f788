// internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/secomdev/painelSecom/internal/api/middleware"
	"github.com/secomdev/painelSecom/internal/api/responses"
	"github.com/secomdev/painelSecom/internal/core/filter"
	"github.com/secomdev/painelSecom/internal/core/report"
	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/secomdev/painelSecom/internal/store"
	"go.uber.org/zap"
)

// DashboardHandler atende as consultas do painel: resumo, registros,
// opções de filtro, gráficos e a atualização manual dos dados.
type DashboardHandler struct {
	cache   *store.Cache
	reports report.Service
}

func NewDashboardHandler(cache *store.Cache, reports report.Service) *DashboardHandler {
	return &DashboardHandler{
		cache:   cache,
		reports: reports,
	}
}

// layoutsDataQuery aceita o formato ISO dos inputs de data do navegador
// e o formato brasileiro digitado à mão.
var layoutsDataQuery = []string{"2006-01-02", "02/01/2006"}

func parseDataQuery(valor string) *time.Time {
	for _, layout := range layoutsDataQuery {
		if t, err := time.Parse(layout, valor); err == nil {
			return &t
		}
	}
	return nil
}

// valoresQuery lê um parâmetro repetível da query string. Cada valor
// pode ainda trazer uma lista separada por vírgulas.
func valoresQuery(c *gin.Context, nome string) []string {
	var valores []string
	for _, bruto := range c.QueryArray(nome) {
		for _, parte := range strings.Split(bruto, ",") {
			if parte = strings.TrimSpace(parte); parte != "" {
				valores = append(valores, parte)
			}
		}
	}
	return valores
}

// parseCriterios monta os critérios de filtro a partir da query string.
// Datas ilegíveis viram nulo, ou seja, o lado correspondente do período
// fica aberto em vez de derrubar a requisição.
func parseCriterios(c *gin.Context) domain.Criterios {
	criterios := domain.Criterios{
		Secretarias:  valoresQuery(c, "secretaria"),
		Agencias:     valoresQuery(c, "agencia"),
		Campanhas:    valoresQuery(c, "campanha"),
		Competencias: valoresQuery(c, "competencia"),
		Busca:        strings.TrimSpace(c.Query("busca")),
	}
	if v := c.Query("de"); v != "" {
		criterios.EmpenhoDe = parseDataQuery(v)
	}
	if v := c.Query("ate"); v != "" {
		criterios.EmpenhoAte = parseDataQuery(v)
	}
	return criterios
}

// tabelaDoCache busca a tabela corrente. Só vira 503 quando nunca houve
// carga bem sucedida; problemas parciais seguem como avisos no corpo.
func tabelaDoCache(c *gin.Context, cache *store.Cache) (*domain.Tabela, bool) {
	tabela, err := cache.Dados(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusServiceUnavailable, "Não foi possível carregar a planilha de controle", err.Error())
		return nil, false
	}
	return tabela, true
}

// registroView é a linha do detalhe pronta para exibição, com os campos
// formatados no padrão brasileiro ao lado dos brutos.
type registroView struct {
	domain.Registro
	ValorEspelhoFmt string `json:"valor_espelho_fmt"`
	DataEmpenhoFmt  string `json:"data_empenho_fmt,omitempty"`
}

// HandleResumo devolve os indicadores dos cartões para a visão filtrada.
func (h *DashboardHandler) HandleResumo(c *gin.Context) {
	tabela, ok := tabelaDoCache(c, h.cache)
	if !ok {
		return
	}

	registros := filter.Aplicar(tabela.Registros, parseCriterios(c))
	c.JSON(http.StatusOK, gin.H{
		"resumo":       h.reports.Resumo(registros),
		"avisos":       tabela.Avisos,
		"fonte":        tabela.Fonte,
		"carregado_em": tabela.CarregadoEm,
	})
}

// HandleRegistros devolve as linhas filtradas da tabela de detalhe.
func (h *DashboardHandler) HandleRegistros(c *gin.Context) {
	tabela, ok := tabelaDoCache(c, h.cache)
	if !ok {
		return
	}

	registros := filter.Aplicar(tabela.Registros, parseCriterios(c))
	linhas := make([]registroView, 0, len(registros))
	for _, reg := range registros {
		linhas = append(linhas, registroView{
			Registro:        reg,
			ValorEspelhoFmt: domain.FormatarMoeda(reg.ValorEspelho),
			DataEmpenhoFmt:  domain.FormatarData(reg.DataEmpenho),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"registros":      linhas,
		"total":          len(linhas),
		"colunas_extras": tabela.ColunasExtras,
		"avisos":         tabela.Avisos,
	})
}

// HandleOpcoes devolve os valores distintos de cada dimensão de filtro,
// sempre sobre a tabela completa, junto com os metadados da carga.
func (h *DashboardHandler) HandleOpcoes(c *gin.Context) {
	tabela, ok := tabelaDoCache(c, h.cache)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opcoes":       h.reports.Opcoes(tabela.Registros),
		"avisos":       tabela.Avisos,
		"fonte":        tabela.Fonte,
		"aba":          tabela.Aba,
		"abas":         tabela.Abas,
		"carregado_em": tabela.CarregadoEm,
	})
}

// HandleGrafico renderiza o gráfico pedido em :tipo como PNG. O
// parâmetro asc inverte a ordenação dos rankings.
func (h *DashboardHandler) HandleGrafico(c *gin.Context) {
	tabela, ok := tabelaDoCache(c, h.cache)
	if !ok {
		return
	}

	registros := filter.Aplicar(tabela.Registros, parseCriterios(c))
	ascendente := c.Query("asc") == "1" || c.Query("asc") == "true"

	png, err := h.reports.Grafico(c.Param("tipo"), registros, ascendente)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Tipo de gráfico desconhecido", err.Error())
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// HandleAtualizar força a recarga da planilha, ignorando o prazo de
// validade do cache.
func (h *DashboardHandler) HandleAtualizar(c *gin.Context) {
	tabela, err := h.cache.Refresh(c.Request.Context())
	if err != nil {
		responses.Error(c, http.StatusServiceUnavailable, "Não foi possível recarregar a planilha", err.Error())
		return
	}

	if responses.Logger != nil {
		responses.Logger.Info("atualização manual dos dados",
			zap.String("usuario", middleware.UsuarioDoContexto(c)),
			zap.Int("registros", len(tabela.Registros)),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"mensagem":     "Dados atualizados",
		"registros":    len(tabela.Registros),
		"avisos":       tabela.Avisos,
		"carregado_em": tabela.CarregadoEm,
	})
}
