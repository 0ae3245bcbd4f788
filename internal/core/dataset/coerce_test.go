// internal/core/dataset/coerce_test.go
package dataset

import (
	"testing"
	"time"

	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/shopspring/decimal"
)

func TestParseValorBRL(t *testing.T) {
	casos := []struct {
		nome     string
		entrada  string
		esperado string
	}{
		{"formato brasileiro completo", "1.234,56", "1234.56"},
		{"prefixo de moeda", "R$ 2.500,00", "2500.00"},
		{"texto cru de celula numerica", "1234.56", "1234.56"},
		{"ponto como milhar", "1.234", "1234"},
		{"milhares encadeados", "1.234.567", "1234567"},
		{"decimal simples com virgula", "10,5", "10.5"},
		{"centavo", "0,01", "0.01"},
		{"inteiro puro", "980", "980"},
		{"negativo vira zero", "-5,00", "0"},
		{"texto ilegivel vira zero", "abc", "0"},
		{"virgulas demais vira zero", "1,2,3", "0"},
		{"vazio vira zero", "   ", "0"},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			obtido := ParseValorBRL(caso.entrada)
			esperado := decimal.RequireFromString(caso.esperado)
			if !obtido.Equal(esperado) {
				t.Errorf("ParseValorBRL(%q) = %s, esperado %s", caso.entrada, obtido, esperado)
			}
		})
	}
}

// A moeda formatada pelo painel precisa recarregar com o mesmo valor,
// senão uma exportação reimportada mudaria os totais.
func TestParseValorBRLRoundTrip(t *testing.T) {
	valores := []string{"0", "0.01", "10.5", "999.99", "1234.56", "98765432.10"}
	for _, v := range valores {
		original := decimal.RequireFromString(v)
		formatado := domain.FormatarMoeda(original)
		if obtido := ParseValorBRL(formatado); !obtido.Equal(original) {
			t.Errorf("ParseValorBRL(%q) = %s, esperado %s", formatado, obtido, original)
		}
	}
}

func TestParseDataPTBR(t *testing.T) {
	dia := func(ano int, mes time.Month, d int) *time.Time {
		t := time.Date(ano, mes, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	casos := []struct {
		nome     string
		entrada  string
		esperado *time.Time
	}{
		{"barra com zero", "05/03/2024", dia(2024, time.March, 5)},
		{"barra sem zero", "5/3/2024", dia(2024, time.March, 5)},
		{"com hora", "05/03/2024 10:30:00", dia(2024, time.March, 5)},
		{"hifen", "05-03-2024", dia(2024, time.March, 5)},
		{"ponto", "05.03.2024", dia(2024, time.March, 5)},
		{"ano curto", "05/03/24", dia(2024, time.March, 5)},
		{"iso", "2024-03-05", dia(2024, time.March, 5)},
		{"serial do excel", "45292", dia(2024, time.January, 1)},
		{"numero fora da faixa de serial", "2024", nil},
		{"texto", "a combinar", nil},
		{"vazio", "", nil},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			obtido := ParseDataPTBR(caso.entrada)
			if (obtido == nil) != (caso.esperado == nil) {
				t.Fatalf("ParseDataPTBR(%q) = %v, esperado %v", caso.entrada, obtido, caso.esperado)
			}
			if obtido != nil && !obtido.Equal(*caso.esperado) {
				t.Errorf("ParseDataPTBR(%q) = %s, esperado %s", caso.entrada, obtido, caso.esperado)
			}
		})
	}
}

func TestParseCompetencia(t *testing.T) {
	mes := func(ano int, m time.Month) *time.Time {
		t := time.Date(ano, m, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	casos := []struct {
		nome     string
		entrada  string
		esperado *time.Time
	}{
		{"mes barra ano", "03/2024", mes(2024, time.March)},
		{"mes sem zero", "3/2024", mes(2024, time.March)},
		{"iso ano mes", "2024-03", mes(2024, time.March)},
		{"mes hifen ano", "03-2024", mes(2024, time.March)},
		{"data completa usa o mes", "15/03/2024", mes(2024, time.March)},
		{"nome do mes com barra", "MARÇO/2024", mes(2024, time.March)},
		{"nome do mes por extenso", "Março de 2024", mes(2024, time.March)},
		{"abreviatura", "MAR 2024", mes(2024, time.March)},
		{"serial do excel", "45292", mes(2024, time.January)},
		{"trimestre nao parseia", "1º TRI", nil},
		{"vazio", "", nil},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			obtido := ParseCompetencia(caso.entrada)
			if (obtido == nil) != (caso.esperado == nil) {
				t.Fatalf("ParseCompetencia(%q) = %v, esperado %v", caso.entrada, obtido, caso.esperado)
			}
			if obtido != nil && !obtido.Equal(*caso.esperado) {
				t.Errorf("ParseCompetencia(%q) = %s, esperado %s", caso.entrada, obtido, caso.esperado)
			}
			if obtido != nil && obtido.Day() != 1 {
				t.Errorf("competência deve cair no dia primeiro, obteve dia %d", obtido.Day())
			}
		})
	}
}

func TestDeriveCompetencia(t *testing.T) {
	empenho := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	bloco := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ColunaPropriaTemPrecedencia", func(t *testing.T) {
		mes, rotulo := DeriveCompetencia("02/2024", &empenho, &bloco)
		if mes == nil || mes.Month() != time.February {
			t.Fatalf("esperava fevereiro, obteve %v", mes)
		}
		if rotulo != "2024-02" {
			t.Errorf("rótulo = %q, esperado 2024-02", rotulo)
		}
	})

	t.Run("SemColunaUsaMesDoEmpenho", func(t *testing.T) {
		mes, rotulo := DeriveCompetencia("", &empenho, &bloco)
		if mes == nil || mes.Month() != time.March || mes.Day() != 1 {
			t.Fatalf("esperava 2024-03-01, obteve %v", mes)
		}
		if rotulo != "2024-03" {
			t.Errorf("rótulo = %q, esperado 2024-03", rotulo)
		}
	})

	t.Run("ColunaIlegivelComEmpenhoUsaEmpenho", func(t *testing.T) {
		mes, rotulo := DeriveCompetencia("a definir", &empenho, nil)
		if mes == nil || mes.Month() != time.March {
			t.Fatalf("esperava março, obteve %v", mes)
		}
		if rotulo != "2024-03" {
			t.Errorf("rótulo = %q, esperado 2024-03", rotulo)
		}
	})

	t.Run("SoMesDoBloco", func(t *testing.T) {
		mes, rotulo := DeriveCompetencia("", nil, &bloco)
		if mes == nil || mes.Month() != time.May {
			t.Fatalf("esperava maio, obteve %v", mes)
		}
		if rotulo != "2024-05" {
			t.Errorf("rótulo = %q, esperado 2024-05", rotulo)
		}
	})

	t.Run("SemNadaPreservaTextoComoRotulo", func(t *testing.T) {
		mes, rotulo := DeriveCompetencia("1º TRI", nil, nil)
		if mes != nil {
			t.Fatalf("esperava mês nulo, obteve %v", mes)
		}
		if rotulo != "1º TRI" {
			t.Errorf("rótulo = %q, esperado 1º TRI", rotulo)
		}
	})
}

func TestMesDoNomeAba(t *testing.T) {
	casos := []struct {
		nome     string
		aba      string
		esperado time.Month
	}{
		{"nome composto", "CONTROLE MARÇO 2024", time.March},
		{"abreviatura", "JAN 2025", time.January},
		{"com preposicao", "Processos de Agosto de 2024", time.August},
	}
	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			obtido := mesDoNomeAba(caso.aba)
			if obtido == nil || obtido.Month() != caso.esperado {
				t.Fatalf("mesDoNomeAba(%q) = %v, esperado mês %d", caso.aba, obtido, caso.esperado)
			}
			if obtido.Day() != 1 {
				t.Errorf("mês do bloco deve cair no dia primeiro, obteve %d", obtido.Day())
			}
		})
	}

	t.Run("AbaSemMes", func(t *testing.T) {
		if obtido := mesDoNomeAba("CONTROLE DE PROCESSOS - GERAL"); obtido != nil {
			t.Errorf("esperava nulo, obteve %v", obtido)
		}
	})
}

func TestSepararTextoLink(t *testing.T) {
	t.Run("TextoComURL", func(t *testing.T) {
		valor, link := separarTextoLink("00060-00123/2024 https://sei.df.gov.br/doc/123")
		if valor != "00060-00123/2024" {
			t.Errorf("valor = %q", valor)
		}
		if link != "https://sei.df.gov.br/doc/123" {
			t.Errorf("link = %q", link)
		}
	})

	t.Run("SoTexto", func(t *testing.T) {
		valor, link := separarTextoLink("00060-00123/2024")
		if valor != "00060-00123/2024" || link != "" {
			t.Errorf("obteve (%q, %q)", valor, link)
		}
	})

	t.Run("SoURL", func(t *testing.T) {
		valor, link := separarTextoLink("https://sei.df.gov.br/doc/123")
		if valor != "https://sei.df.gov.br/doc/123" || link != valor {
			t.Errorf("obteve (%q, %q)", valor, link)
		}
	})
}
