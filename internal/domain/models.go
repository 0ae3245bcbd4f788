// internal/domain/models.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Nomes canônicos das colunas da planilha de controle. Os cabeçalhos
// brutos são mapeados para estes nomes pelo normalizador de colunas.
const (
	ColCampanha     = "CAMPANHA"
	ColSecretaria   = "SECRETARIA"
	ColAgencia      = "AGÊNCIA"
	ColValorEspelho = "VALOR DO ESPELHO"
	ColProcesso     = "PROCESSO"
	ColEmpenho      = "EMPENHO"
	ColDataEmpenho  = "DATA DO EMPENHO"
	ColCompetencia  = "COMPETÊNCIA"
	ColEspelhoDiana = "ESPELHO DIANA"
	ColEspelho      = "ESPELHO"
	ColPDF          = "PDF"
	ColObservacao   = "OBSERVAÇÃO"
)

// ColunasTabela é a ordem de exibição da tabela de detalhe e dos
// arquivos exportados.
var ColunasTabela = []string{
	ColCampanha,
	ColSecretaria,
	ColAgencia,
	ColValorEspelho,
	ColCompetencia,
	ColDataEmpenho,
	ColEspelhoDiana,
	ColEspelho,
	ColPDF,
	ColProcesso,
	ColEmpenho,
	ColObservacao,
}

// Registro é uma linha da tabela canônica do painel.
type Registro struct {
	Campanha          string            `json:"campanha"`
	Secretaria        string            `json:"secretaria"`
	Agencia           string            `json:"agencia"`
	ValorEspelho      decimal.Decimal   `json:"valor_espelho"`
	Processo          string            `json:"processo"`
	LinkProcesso      string            `json:"link_processo,omitempty"`
	Empenho           string            `json:"empenho"`
	LinkEmpenho       string            `json:"link_empenho,omitempty"`
	DataEmpenho       *time.Time        `json:"data_empenho,omitempty"`
	CompetenciaMes    *time.Time        `json:"competencia_mes,omitempty"`
	CompetenciaRotulo string            `json:"competencia_rotulo,omitempty"`
	EspelhoDiana      string            `json:"espelho_diana,omitempty"`
	Espelho           string            `json:"espelho,omitempty"`
	PDF               string            `json:"pdf,omitempty"`
	Observacao        string            `json:"observacao,omitempty"`
	Extras            map[string]string `json:"extras,omitempty"`
}

// Vazio informa se o registro não identifica nenhum processo. Linhas
// assim são descartadas durante a normalização.
func (r Registro) Vazio() bool {
	return r.Campanha == "" && r.Secretaria == "" && r.Agencia == "" && r.Processo == ""
}

// Tabela é o resultado de uma carga completa da planilha.
type Tabela struct {
	Registros     []Registro `json:"registros"`
	Avisos        []Aviso    `json:"avisos,omitempty"`
	Fonte         string     `json:"fonte,omitempty"`
	Aba           string     `json:"aba,omitempty"`
	Abas          []string   `json:"abas,omitempty"`
	ColunasExtras []string   `json:"colunas_extras,omitempty"`
	CarregadoEm   time.Time  `json:"carregado_em"`
}

// ArquivoFonte são os bytes brutos da planilha e a sua procedência.
type ArquivoFonte struct {
	Nome     string
	Conteudo []byte
	Origem   string
}

// Criterios reúne os filtros selecionados pelo usuário. Valor zero
// significa "sem filtro" em cada dimensão.
type Criterios struct {
	Secretarias  []string
	Agencias     []string
	Campanhas    []string
	Competencias []string
	EmpenhoDe    *time.Time
	EmpenhoAte   *time.Time
	Busca        string
}

// AvisoCode define um tipo para os códigos numéricos de aviso.
type AvisoCode int

// Códigos de aviso devolvidos junto com a tabela. O frontend usa os
// números para decidir como exibir o banner.
const (
	AvisoFonteIndisponivel   AvisoCode = 1 // Fonte remota falhou; fallback aplicado.
	AvisoUnidadeIgnorada     AvisoCode = 2 // Aba ou bloco ilegível foi pulado.
	AvisoSemDados            AvisoCode = 3 // Nenhuma fonte ou registro disponível.
	AvisoDadosDesatualizados AvisoCode = 4 // Recarga falhou; exibindo dados antigos.
	AvisoAbaNaoEncontrada    AvisoCode = 5 // Aba configurada ausente; todas carregadas.
)

// Aviso é uma mensagem não fatal exibida no banner do painel.
type Aviso struct {
	Codigo   AvisoCode `json:"codigo"`
	Mensagem string    `json:"mensagem"`
}

// FetchError indica falha ao buscar a planilha remota. Nunca derruba o
// painel: o chamador aplica o fallback e transforma o erro em aviso.
type FetchError struct {
	URL    string
	Motivo string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("falha ao buscar planilha remota (%s): %s", e.URL, e.Motivo)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError indica que uma aba ou bloco não pôde ser interpretado. A
// unidade é pulada e a carga continua com as demais.
type ParseError struct {
	Unidade string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("não foi possível interpretar %s: %v", e.Unidade, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Resumo são os indicadores exibidos nos cartões do painel.
type Resumo struct {
	TotalRegistros   int             `json:"total_registros"`
	SomaValores      decimal.Decimal `json:"soma_valores"`
	SomaValoresFmt   string          `json:"soma_valores_fmt"`
	TotalSecretarias int             `json:"total_secretarias"`
	TotalAgencias    int             `json:"total_agencias"`
}

// LinhaAgregada é um par rótulo/valor consumido pelos gráficos.
type LinhaAgregada struct {
	Rotulo string          `json:"rotulo"`
	Valor  decimal.Decimal `json:"valor"`
}

// OpcoesFiltro lista os valores distintos disponíveis para cada
// dimensão de filtro, já ordenados.
type OpcoesFiltro struct {
	Secretarias  []string   `json:"secretarias"`
	Agencias     []string   `json:"agencias"`
	Campanhas    []string   `json:"campanhas"`
	Competencias []string   `json:"competencias"`
	EmpenhoMin   *time.Time `json:"empenho_min,omitempty"`
	EmpenhoMax   *time.Time `json:"empenho_max,omitempty"`
}
