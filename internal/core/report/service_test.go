// internal/core/report/service_test.go
package report

import (
	"testing"
	"time"

	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/shopspring/decimal"
)

func registro(campanha, secretaria, agencia, valor string) domain.Registro {
	return domain.Registro{
		Campanha:     campanha,
		Secretaria:   secretaria,
		Agencia:      agencia,
		ValorEspelho: decimal.RequireFromString(valor),
	}
}

func TestResumo(t *testing.T) {
	svc := NewService()
	registros := []domain.Registro{
		registro("A", "SAÚDE", "Alfa", "100.50"),
		registro("B", "SECOM", "Beta", "200"),
		registro("C", "SAÚDE", "", "49.50"),
	}

	resumo := svc.Resumo(registros)
	if resumo.TotalRegistros != 3 {
		t.Errorf("total de registros = %d, esperado 3", resumo.TotalRegistros)
	}
	if !resumo.SomaValores.Equal(decimal.RequireFromString("350")) {
		t.Errorf("soma = %s, esperado 350", resumo.SomaValores)
	}
	if resumo.SomaValoresFmt != "R$ 350,00" {
		t.Errorf("soma formatada = %q", resumo.SomaValoresFmt)
	}
	if resumo.TotalSecretarias != 2 {
		t.Errorf("secretarias = %d, esperado 2", resumo.TotalSecretarias)
	}
	// Agência em branco não conta como distinta.
	if resumo.TotalAgencias != 2 {
		t.Errorf("agências = %d, esperado 2", resumo.TotalAgencias)
	}
}

func TestResumoVazio(t *testing.T) {
	resumo := NewService().Resumo(nil)
	if resumo.TotalRegistros != 0 || !resumo.SomaValores.IsZero() {
		t.Errorf("resumo vazio inesperado: %+v", resumo)
	}
	if resumo.SomaValoresFmt != "R$ 0,00" {
		t.Errorf("soma formatada = %q, esperado R$ 0,00", resumo.SomaValoresFmt)
	}
}

func TestAgregar(t *testing.T) {
	svc := NewService()
	registros := []domain.Registro{
		registro("A", "SAÚDE", "Alfa", "100"),
		registro("B", "SECOM", "Beta", "300"),
		registro("C", "SAÚDE", "Alfa", "50"),
		registro("D", "", "Gama", "25"),
		registro("E", "EDUCAÇÃO", "Alfa", "150"),
	}

	t.Run("DecrescenteComDesempateAlfabetico", func(t *testing.T) {
		linhas := svc.Agregar(DimSecretaria, registros, 0, false)
		esperado := []struct {
			rotulo string
			valor  string
		}{
			{"SECOM", "300"},
			{"EDUCAÇÃO", "150"},
			{"SAÚDE", "150"},
			{RotuloNaoInformado, "25"},
		}
		if len(linhas) != len(esperado) {
			t.Fatalf("esperava %d linhas, obteve %d: %+v", len(esperado), len(linhas), linhas)
		}
		for i, e := range esperado {
			if linhas[i].Rotulo != e.rotulo {
				t.Errorf("posição %d = %q, esperado %q", i, linhas[i].Rotulo, e.rotulo)
			}
			if !linhas[i].Valor.Equal(decimal.RequireFromString(e.valor)) {
				t.Errorf("posição %d valor = %s, esperado %s", i, linhas[i].Valor, e.valor)
			}
		}
	})

	t.Run("TopN", func(t *testing.T) {
		linhas := svc.Agregar(DimSecretaria, registros, 2, false)
		if len(linhas) != 2 || linhas[0].Rotulo != "SECOM" {
			t.Fatalf("topN = %+v", linhas)
		}
	})

	t.Run("Ascendente", func(t *testing.T) {
		linhas := svc.Agregar(DimSecretaria, registros, 0, true)
		if linhas[0].Rotulo != RotuloNaoInformado {
			t.Errorf("primeiro = %q, esperado %q", linhas[0].Rotulo, RotuloNaoInformado)
		}
		if linhas[len(linhas)-1].Rotulo != "SECOM" {
			t.Errorf("último = %q, esperado SECOM", linhas[len(linhas)-1].Rotulo)
		}
	})

	t.Run("PorAgencia", func(t *testing.T) {
		linhas := svc.Agregar(DimAgencia, registros, 0, false)
		if linhas[0].Rotulo != "Alfa" || !linhas[0].Valor.Equal(decimal.RequireFromString("300")) {
			t.Errorf("agregação por agência = %+v", linhas)
		}
	})

	t.Run("SemRegistros", func(t *testing.T) {
		if linhas := svc.Agregar(DimSecretaria, nil, 0, false); len(linhas) != 0 {
			t.Errorf("esperava vazio, obteve %+v", linhas)
		}
	})
}

func TestEvolucaoMensal(t *testing.T) {
	svc := NewService()
	registros := []domain.Registro{
		{CompetenciaRotulo: "2024-03", ValorEspelho: decimal.RequireFromString("100")},
		{CompetenciaRotulo: "2024-01", ValorEspelho: decimal.RequireFromString("200")},
		{CompetenciaRotulo: "2024-03", ValorEspelho: decimal.RequireFromString("50")},
		{ValorEspelho: decimal.RequireFromString("999")},
		{CompetenciaRotulo: "2024-02", ValorEspelho: decimal.RequireFromString("25")},
	}

	linhas := svc.EvolucaoMensal(registros)
	if len(linhas) != 3 {
		t.Fatalf("esperava 3 meses, obteve %d: %+v", len(linhas), linhas)
	}

	// Ordem cronológica, registros sem competência fora da série.
	esperado := []struct {
		rotulo string
		valor  string
	}{
		{"2024-01", "200"},
		{"2024-02", "25"},
		{"2024-03", "150"},
	}
	for i, e := range esperado {
		if linhas[i].Rotulo != e.rotulo || !linhas[i].Valor.Equal(decimal.RequireFromString(e.valor)) {
			t.Errorf("posição %d = %s %s, esperado %s %s", i, linhas[i].Rotulo, linhas[i].Valor, e.rotulo, e.valor)
		}
	}
}

func TestOpcoes(t *testing.T) {
	svc := NewService()
	mar := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

	registros := []domain.Registro{
		{Secretaria: "SECOM", Agencia: "Beta", Campanha: "B", CompetenciaRotulo: "2024-03", DataEmpenho: &mar},
		{Secretaria: "SAÚDE", Agencia: "Alfa", Campanha: "A", CompetenciaRotulo: "2024-01", DataEmpenho: &jan},
		{Secretaria: "SECOM", Agencia: "Alfa", Campanha: "A"},
	}

	op := svc.Opcoes(registros)
	if len(op.Secretarias) != 2 || op.Secretarias[0] != "SAÚDE" {
		t.Errorf("secretarias = %v", op.Secretarias)
	}
	if len(op.Agencias) != 2 || op.Agencias[0] != "Alfa" {
		t.Errorf("agências = %v", op.Agencias)
	}
	if len(op.Campanhas) != 2 {
		t.Errorf("campanhas = %v", op.Campanhas)
	}
	if len(op.Competencias) != 2 || op.Competencias[0] != "2024-01" {
		t.Errorf("competências = %v", op.Competencias)
	}
	if op.EmpenhoMin == nil || !op.EmpenhoMin.Equal(jan) {
		t.Errorf("empenho mínimo = %v", op.EmpenhoMin)
	}
	if op.EmpenhoMax == nil || !op.EmpenhoMax.Equal(mar) {
		t.Errorf("empenho máximo = %v", op.EmpenhoMax)
	}
}
