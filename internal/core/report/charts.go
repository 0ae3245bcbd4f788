// internal/core/report/charts.go
package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
)

// Tipos de gráfico servidos pela API, na URL /graficos/:tipo.
const (
	GraficoSecretarias  = "secretarias"
	GraficoAgencias     = "agencias"
	GraficoCampanhas    = "campanhas"
	GraficoEvolucao     = "evolucao"
	GraficoParticipacao = "participacao"
)

const topBarras = 10

// Grafico renderiza o gráfico pedido como PNG. Conjuntos vazios geram
// uma imagem de "sem dados" em vez de erro, para o painel nunca quebrar
// com um filtro restritivo demais.
func (svc *service) Grafico(tipo string, registros []domain.Registro, ascendente bool) ([]byte, error) {
	switch tipo {
	case GraficoSecretarias:
		return graficoBarras("Valor por Secretaria", svc.Agregar(DimSecretaria, registros, topBarras, ascendente))
	case GraficoAgencias:
		return graficoBarras("Valor por Agência", svc.Agregar(DimAgencia, registros, topBarras, ascendente))
	case GraficoCampanhas:
		return graficoBarras("Valor por Campanha", svc.Agregar(DimCampanha, registros, topBarras, ascendente))
	case GraficoEvolucao:
		return graficoLinha("Evolução Mensal", svc.EvolucaoMensal(registros))
	case GraficoParticipacao:
		return graficoPizza("Participação por Secretaria", svc.Agregar(DimSecretaria, registros, 0, false))
	default:
		return nil, fmt.Errorf("tipo de gráfico desconhecido: %q", tipo)
	}
}

func graficoBarras(titulo string, linhas []domain.LinhaAgregada) ([]byte, error) {
	if len(linhas) == 0 {
		return graficoVazio(titulo)
	}

	maximo := 0.0
	barras := make([]chart.Value, 0, len(linhas))
	for _, linha := range linhas {
		v := linha.Valor.InexactFloat64()
		if v > maximo {
			maximo = v
		}
		barras = append(barras, chart.Value{Label: encurtar(linha.Rotulo, 18), Value: v})
	}
	if maximo <= 0 {
		maximo = 1
	}

	grafico := chart.BarChart{
		Title:    titulo,
		Width:    900,
		Height:   420,
		BarWidth: 48,
		YAxis: chart.YAxis{
			// Faixa explícita evita eixo degenerado com barra única.
			Range:          &chart.ContinuousRange{Min: 0, Max: maximo * 1.1},
			ValueFormatter: formatarEixoMoeda,
		},
		Bars: barras,
	}
	return renderizar(grafico.Render)
}

func graficoLinha(titulo string, linhas []domain.LinhaAgregada) ([]byte, error) {
	if len(linhas) == 0 {
		return graficoVazio(titulo)
	}
	if len(linhas) == 1 {
		// Uma série de um ponto só não desenha linha; a barra única
		// comunica o mesmo.
		return graficoBarras(titulo, linhas)
	}

	xs := make([]float64, len(linhas))
	ys := make([]float64, len(linhas))
	ticks := make([]chart.Tick, len(linhas))
	maximo := 0.0
	for i, linha := range linhas {
		v := linha.Valor.InexactFloat64()
		xs[i] = float64(i)
		ys[i] = v
		ticks[i] = chart.Tick{Value: float64(i), Label: linha.Rotulo}
		if v > maximo {
			maximo = v
		}
	}
	if maximo <= 0 {
		maximo = 1
	}

	grafico := chart.Chart{
		Title:  titulo,
		Width:  900,
		Height: 420,
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(linhas) - 1)},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: maximo * 1.1},
			ValueFormatter: formatarEixoMoeda,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeWidth: 2.6, DotWidth: 4},
			},
		},
	}
	return renderizar(grafico.Render)
}

// graficoPizza desenha as oito maiores fatias e agrupa o resto em
// "Outras" para a legenda continuar legível.
func graficoPizza(titulo string, linhas []domain.LinhaAgregada) ([]byte, error) {
	var fatias []chart.Value
	outras := decimal.Zero
	for i, linha := range linhas {
		if linha.Valor.IsZero() {
			continue
		}
		if i < 8 {
			fatias = append(fatias, chart.Value{Label: encurtar(linha.Rotulo, 18), Value: linha.Valor.InexactFloat64()})
			continue
		}
		outras = outras.Add(linha.Valor)
	}
	if outras.IsPositive() {
		fatias = append(fatias, chart.Value{Label: "Outras", Value: outras.InexactFloat64()})
	}
	if len(fatias) == 0 {
		return graficoVazio(titulo)
	}

	grafico := chart.PieChart{
		Title:  titulo,
		Width:  560,
		Height: 560,
		Values: fatias,
	}
	return renderizar(grafico.Render)
}

func graficoVazio(titulo string) ([]byte, error) {
	grafico := chart.BarChart{
		Title:    titulo + " (sem dados)",
		Width:    900,
		Height:   420,
		BarWidth: 48,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: []chart.Value{{Label: "sem dados", Value: 0}},
	}
	return renderizar(grafico.Render)
}

func renderizar(render func(chart.RendererProvider, io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatarEixoMoeda(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return domain.FormatarMoeda(decimal.NewFromFloat(f).Round(2))
}

func encurtar(s string, max int) string {
	runas := []rune(s)
	if len(runas) <= max {
		return s
	}
	return string(runas[:max-1]) + "…"
}
