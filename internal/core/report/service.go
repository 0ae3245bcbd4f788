// internal/core/report/service.go
package report

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/shopspring/decimal"
)

// Dimensões categóricas de agregação.
const (
	DimSecretaria = "secretaria"
	DimAgencia    = "agencia"
	DimCampanha   = "campanha"
)

// RotuloNaoInformado agrupa os registros com a dimensão em branco, em
// vez de escondê-los dos gráficos.
const RotuloNaoInformado = "(não informado)"

// Service calcula os indicadores, as agregações e os gráficos do
// painel a partir de um conjunto de registros já filtrado.
type Service interface {
	Resumo(registros []domain.Registro) domain.Resumo
	Opcoes(registros []domain.Registro) domain.OpcoesFiltro
	Agregar(dimensao string, registros []domain.Registro, topN int, ascendente bool) []domain.LinhaAgregada
	EvolucaoMensal(registros []domain.Registro) []domain.LinhaAgregada
	Grafico(tipo string, registros []domain.Registro, ascendente bool) ([]byte, error)
}

type service struct{}

// NewService cria o serviço de relatórios.
func NewService() Service {
	return &service{}
}

func (svc *service) Resumo(registros []domain.Registro) domain.Resumo {
	soma := decimal.Zero
	secretarias := map[string]bool{}
	agencias := map[string]bool{}
	for _, reg := range registros {
		soma = soma.Add(reg.ValorEspelho)
		if reg.Secretaria != "" {
			secretarias[reg.Secretaria] = true
		}
		if reg.Agencia != "" {
			agencias[reg.Agencia] = true
		}
	}
	return domain.Resumo{
		TotalRegistros:   len(registros),
		SomaValores:      soma,
		SomaValoresFmt:   domain.FormatarMoeda(soma),
		TotalSecretarias: len(secretarias),
		TotalAgencias:    len(agencias),
	}
}

func (svc *service) Opcoes(registros []domain.Registro) domain.OpcoesFiltro {
	op := domain.OpcoesFiltro{
		Secretarias:  distintos(registros, func(r domain.Registro) string { return r.Secretaria }),
		Agencias:     distintos(registros, func(r domain.Registro) string { return r.Agencia }),
		Campanhas:    distintos(registros, func(r domain.Registro) string { return r.Campanha }),
		Competencias: distintos(registros, func(r domain.Registro) string { return r.CompetenciaRotulo }),
	}
	for _, reg := range registros {
		if reg.DataEmpenho == nil {
			continue
		}
		if op.EmpenhoMin == nil || reg.DataEmpenho.Before(*op.EmpenhoMin) {
			op.EmpenhoMin = reg.DataEmpenho
		}
		if op.EmpenhoMax == nil || reg.DataEmpenho.After(*op.EmpenhoMax) {
			op.EmpenhoMax = reg.DataEmpenho
		}
	}
	return op
}

func distintos(registros []domain.Registro, campo func(domain.Registro) string) []string {
	vistos := map[string]bool{}
	var valores []string
	for _, reg := range registros {
		v := campo(reg)
		if v == "" || vistos[v] {
			continue
		}
		vistos[v] = true
		valores = append(valores, v)
	}
	sort.Strings(valores)
	return valores
}

// Agregar soma o valor do espelho por dimensão. O resultado sai
// ordenado por valor (maior primeiro, ou menor com ascendente) com
// desempate alfabético, e cortado em topN quando topN é positivo.
func (svc *service) Agregar(dimensao string, registros []domain.Registro, topN int, ascendente bool) []domain.LinhaAgregada {
	rotulos := make([]string, 0, len(registros))
	valores := make([]float64, 0, len(registros))
	for _, reg := range registros {
		rotulos = append(rotulos, rotuloDimensao(dimensao, reg))
		valores = append(valores, reg.ValorEspelho.InexactFloat64())
	}
	linhas := somarPorRotulo(rotulos, valores, ascendente)
	if topN > 0 && len(linhas) > topN {
		linhas = linhas[:topN]
	}
	return linhas
}

// EvolucaoMensal soma o valor por mês de competência, em ordem
// cronológica. Registros sem competência resolvida ficam de fora da
// série temporal.
func (svc *service) EvolucaoMensal(registros []domain.Registro) []domain.LinhaAgregada {
	rotulos := make([]string, 0, len(registros))
	valores := make([]float64, 0, len(registros))
	for _, reg := range registros {
		if reg.CompetenciaRotulo == "" {
			continue
		}
		rotulos = append(rotulos, reg.CompetenciaRotulo)
		valores = append(valores, reg.ValorEspelho.InexactFloat64())
	}
	if len(rotulos) == 0 {
		return nil
	}

	agregado := agregarDataFrame(rotulos, valores)
	if agregado.Err != nil {
		return nil
	}
	// O rótulo AAAA-MM ordena alfabeticamente na ordem cronológica.
	return extrairLinhas(agregado.Arrange(dataframe.Sort("rotulo")))
}

func somarPorRotulo(rotulos []string, valores []float64, ascendente bool) []domain.LinhaAgregada {
	if len(rotulos) == 0 {
		return nil
	}
	agregado := agregarDataFrame(rotulos, valores)
	if agregado.Err != nil {
		return nil
	}
	if ascendente {
		agregado = agregado.Arrange(dataframe.Sort("valor_SUM"), dataframe.Sort("rotulo"))
	} else {
		agregado = agregado.Arrange(dataframe.RevSort("valor_SUM"), dataframe.Sort("rotulo"))
	}
	return extrairLinhas(agregado)
}

func agregarDataFrame(rotulos []string, valores []float64) dataframe.DataFrame {
	df := dataframe.New(
		series.New(rotulos, series.String, "rotulo"),
		series.New(valores, series.Float, "valor"),
	)
	return df.GroupBy("rotulo").Aggregation(
		[]dataframe.AggregationType{dataframe.Aggregation_SUM},
		[]string{"valor"},
	)
}

func extrairLinhas(df dataframe.DataFrame) []domain.LinhaAgregada {
	if df.Err != nil {
		return nil
	}
	rotulos := df.Col("rotulo").Records()
	valores := df.Col("valor_SUM").Float()
	linhas := make([]domain.LinhaAgregada, 0, len(rotulos))
	for i := range rotulos {
		linhas = append(linhas, domain.LinhaAgregada{
			Rotulo: rotulos[i],
			Valor:  decimal.NewFromFloat(valores[i]).Round(2),
		})
	}
	return linhas
}

func rotuloDimensao(dimensao string, reg domain.Registro) string {
	var rotulo string
	switch dimensao {
	case DimSecretaria:
		rotulo = reg.Secretaria
	case DimAgencia:
		rotulo = reg.Agencia
	case DimCampanha:
		rotulo = reg.Campanha
	}
	if rotulo == "" {
		return RotuloNaoInformado
	}
	return rotulo
}
