// internal/core/dataset/service_test.go
package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// fonteFixa implementa source.Service devolvendo sempre o mesmo
// arquivo, para os testes não dependerem de rede nem de disco.
type fonteFixa struct {
	arquivo *domain.ArquivoFonte
	avisos  []domain.Aviso
	err     error
}

func (f fonteFixa) Obter(ctx context.Context) (*domain.ArquivoFonte, []domain.Aviso, error) {
	return f.arquivo, f.avisos, f.err
}

type abaFixture struct {
	nome   string
	linhas [][]interface{}
}

func criarXLSX(t *testing.T, abas []abaFixture) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, aba := range abas {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", aba.nome); err != nil {
				t.Fatal(err)
			}
		} else {
			if _, err := f.NewSheet(aba.nome); err != nil {
				t.Fatal(err)
			}
		}
		for j := range aba.linhas {
			celula, err := excelize.CoordinatesToCellName(1, j+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(aba.nome, celula, &aba.linhas[j]); err != nil {
				t.Fatal(err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func planilhaControle(t *testing.T) []byte {
	t.Helper()
	return criarXLSX(t, []abaFixture{
		{
			nome: "CONTROLE DE PROCESSOS - GERAL",
			linhas: [][]interface{}{
				{"CAMPANHA", "SECRETARIA", "AGÊNCIA", "VALOR DO ESPELHO", "COMPETÊNCIA", "DATA DO EMPENHO", "PROCESSO", "OBSERVAÇÃO", "FASE"},
				{"Vacinação Já", "SAÚDE", "Alfa", "1.234,56", "03/2024", "05/03/2024", "00123/2024 https://sei.df.gov.br/123", "Urgente", "Em andamento"},
				{"Natal Solidário", "SECOM", "Beta", "2.000,00", "", "10/04/2024", "00456/2024", "", ""},
				{"", "", "", "9,99", "", "", "", "", ""},
			},
		},
		{
			nome: "INSTRUÇÕES",
			linhas: [][]interface{}{
				{"Preencha uma linha por espelho."},
				{"Não apague as colunas."},
			},
		},
	})
}

func TestCarregarPlanilhaCompleta(t *testing.T) {
	fonte := fonteFixa{arquivo: &domain.ArquivoFonte{
		Nome:     "controle.xlsx",
		Conteudo: planilhaControle(t),
		Origem:   "local",
	}}

	svc := NewService(fonte, "CONTROLE DE PROCESSOS - GERAL")
	tabela, err := svc.Carregar(context.Background())
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if len(tabela.Registros) != 2 {
		t.Fatalf("esperava 2 registros (linha sem identificação descartada), obteve %d", len(tabela.Registros))
	}
	if len(tabela.Avisos) != 0 {
		t.Errorf("esperava carga limpa, obteve avisos %+v", tabela.Avisos)
	}
	if tabela.Aba != "CONTROLE DE PROCESSOS - GERAL" {
		t.Errorf("aba = %q", tabela.Aba)
	}
	if len(tabela.Abas) != 2 {
		t.Errorf("abas = %v, esperava as duas do arquivo", tabela.Abas)
	}
	if tabela.Fonte != "controle.xlsx (local)" {
		t.Errorf("fonte = %q", tabela.Fonte)
	}

	reg := tabela.Registros[0]
	if reg.Campanha != "Vacinação Já" || reg.Secretaria != "SAÚDE" || reg.Agencia != "Alfa" {
		t.Errorf("registro inesperado: %+v", reg)
	}
	if !reg.ValorEspelho.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("valor = %s, esperado 1234.56", reg.ValorEspelho)
	}
	if reg.CompetenciaRotulo != "2024-03" {
		t.Errorf("competência = %q, esperado 2024-03", reg.CompetenciaRotulo)
	}
	if reg.DataEmpenho == nil || !reg.DataEmpenho.Equal(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("data do empenho = %v", reg.DataEmpenho)
	}
	if reg.Processo != "00123/2024" {
		t.Errorf("processo = %q", reg.Processo)
	}
	if reg.LinkProcesso != "https://sei.df.gov.br/123" {
		t.Errorf("link do processo = %q", reg.LinkProcesso)
	}
	if reg.Extras["FASE"] != "Em andamento" {
		t.Errorf("extras = %+v", reg.Extras)
	}

	// A segunda linha não tem competência própria: vale o mês do
	// empenho.
	if tabela.Registros[1].CompetenciaRotulo != "2024-04" {
		t.Errorf("competência derivada = %q, esperado 2024-04", tabela.Registros[1].CompetenciaRotulo)
	}

	if len(tabela.ColunasExtras) != 1 || tabela.ColunasExtras[0] != "FASE" {
		t.Errorf("colunas extras = %v, esperado [FASE]", tabela.ColunasExtras)
	}
}

func TestCarregarAbaPorNomeNormalizado(t *testing.T) {
	fonte := fonteFixa{arquivo: &domain.ArquivoFonte{
		Nome:     "controle.xlsx",
		Conteudo: planilhaControle(t),
		Origem:   "local",
	}}

	svc := NewService(fonte, "controle de processos - geral")
	tabela, err := svc.Carregar(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tabela.Aba != "CONTROLE DE PROCESSOS - GERAL" {
		t.Errorf("aba = %q, esperava casar por nome normalizado", tabela.Aba)
	}
	if len(tabela.Avisos) != 0 {
		t.Errorf("avisos inesperados: %+v", tabela.Avisos)
	}
}

func TestCarregarAbaAusenteCarregaTodas(t *testing.T) {
	fonte := fonteFixa{arquivo: &domain.ArquivoFonte{
		Nome:     "controle.xlsx",
		Conteudo: planilhaControle(t),
		Origem:   "local",
	}}

	svc := NewService(fonte, "ABA QUE NÃO EXISTE")
	tabela, err := svc.Carregar(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(tabela.Registros) != 2 {
		t.Errorf("esperava os registros da aba geral, obteve %d", len(tabela.Registros))
	}

	var temAbaAusente, temIgnorada bool
	for _, aviso := range tabela.Avisos {
		switch aviso.Codigo {
		case domain.AvisoAbaNaoEncontrada:
			temAbaAusente = true
		case domain.AvisoUnidadeIgnorada:
			temIgnorada = true
		}
	}
	if !temAbaAusente {
		t.Errorf("esperava aviso de aba não encontrada: %+v", tabela.Avisos)
	}
	// A aba de instruções não tem cabeçalho reconhecível e é pulada.
	if !temIgnorada {
		t.Errorf("esperava aviso de aba ignorada: %+v", tabela.Avisos)
	}
}

func TestCarregarSemFonte(t *testing.T) {
	avisoSem := domain.Aviso{Codigo: domain.AvisoSemDados, Mensagem: "nenhuma fonte de dados disponível"}
	svc := NewService(fonteFixa{avisos: []domain.Aviso{avisoSem}}, "")

	tabela, err := svc.Carregar(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tabela.Registros) != 0 {
		t.Errorf("esperava tabela vazia, obteve %d registros", len(tabela.Registros))
	}
	if len(tabela.Avisos) != 1 || tabela.Avisos[0].Codigo != domain.AvisoSemDados {
		t.Errorf("avisos = %+v, esperava só o repassado pela fonte", tabela.Avisos)
	}
}

func TestCarregarArquivoIlegivel(t *testing.T) {
	fonte := fonteFixa{arquivo: &domain.ArquivoFonte{
		Nome:     "quebrado.xlsx",
		Conteudo: []byte("PK\x03\x04isto não é um xlsx de verdade"),
		Origem:   "local",
	}}

	svc := NewService(fonte, "")
	tabela, err := svc.Carregar(context.Background())
	if err != nil {
		t.Fatalf("arquivo ilegível não pode derrubar a carga: %v", err)
	}
	if len(tabela.Registros) != 0 {
		t.Errorf("esperava zero registros, obteve %d", len(tabela.Registros))
	}

	var temSemDados bool
	for _, aviso := range tabela.Avisos {
		if aviso.Codigo == domain.AvisoSemDados {
			temSemDados = true
		}
	}
	if !temSemDados {
		t.Errorf("esperava aviso de painel vazio, obteve %+v", tabela.Avisos)
	}
}

func TestCarregarCSV(t *testing.T) {
	fonte := fonteFixa{arquivo: &domain.ArquivoFonte{
		Nome:     "controle.csv",
		Conteudo: []byte("CAMPANHA;SECRETARIA;VALOR DO ESPELHO\nNatal;SECOM;1.500,00\n"),
		Origem:   "descoberta",
	}}

	svc := NewService(fonte, "")
	tabela, err := svc.Carregar(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(tabela.Registros) != 1 {
		t.Fatalf("esperava 1 registro, obteve %d", len(tabela.Registros))
	}
	if !tabela.Registros[0].ValorEspelho.Equal(decimal.RequireFromString("1500")) {
		t.Errorf("valor = %s", tabela.Registros[0].ValorEspelho)
	}
}
