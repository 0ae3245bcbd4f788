// internal/core/dataset/columns.go
package dataset

import (
	"strings"

	"github.com/schollz/closestmatch"
	"github.com/secomdev/painelSecom/internal/core/texto"
	"github.com/secomdev/painelSecom/internal/domain"
)

// aliasColuna liga uma coluna canônica aos cabeçalhos que as planilhas
// usam para ela. Os padrões são comparados já normalizados.
type aliasColuna struct {
	campo   string
	padroes []string
}

// A ordem importa: entradas específicas vêm antes das genéricas para a
// busca por contenção não capturar errado (VALOR DO ESPELHO antes de
// ESPELHO, DATA DO EMPENHO antes de EMPENHO).
var aliasesColunas = []aliasColuna{
	{domain.ColValorEspelho, []string{"VALOR DO ESPELHO", "VALOR ESPELHO", "VALOR LIQUIDO", "VALOR TOTAL", "VALOR"}},
	{domain.ColEspelhoDiana, []string{"ESPELHO DIANA", "DIANA"}},
	{domain.ColDataEmpenho, []string{"DATA DO EMPENHO", "DATA EMPENHO", "DT EMPENHO", "DATA"}},
	{domain.ColEmpenho, []string{"EMPENHO", "NOTA DE EMPENHO", "NE"}},
	{domain.ColCampanha, []string{"CAMPANHA", "NOME DA CAMPANHA", "ACAO", "ACAO PUBLICITARIA"}},
	{domain.ColSecretaria, []string{"SECRETARIA", "ORGAO", "PASTA", "CLIENTE"}},
	{domain.ColAgencia, []string{"AGENCIA", "AGENCIA DE PUBLICIDADE", "FORNECEDOR"}},
	{domain.ColCompetencia, []string{"COMPETENCIA", "MES DE COMPETENCIA", "MES REFERENCIA", "REFERENCIA", "MES"}},
	{domain.ColEspelho, []string{"ESPELHO", "LINK ESPELHO"}},
	{domain.ColPDF, []string{"PDF", "ARQUIVO PDF"}},
	{domain.ColProcesso, []string{"PROCESSO", "NUMERO DO PROCESSO", "N PROCESSO", "SEI"}},
	{domain.ColObservacao, []string{"OBSERVACAO", "OBSERVACOES", "OBS"}},
}

var (
	campoPorPadrao  = map[string]string{}
	buscadorPadroes *closestmatch.ClosestMatch
)

func init() {
	var padroes []string
	for _, alias := range aliasesColunas {
		for _, padrao := range alias.padroes {
			padroes = append(padroes, padrao)
			campoPorPadrao[padrao] = alias.campo
		}
	}
	buscadorPadroes = closestmatch.New(padroes, []int{3, 4})
}

// ResolverCampo mapeia um cabeçalho bruto para a coluna canônica.
// Devolve vazio quando o cabeçalho não corresponde a nenhuma coluna
// conhecida. A resolução tenta três níveis, do mais estrito ao mais
// tolerante: igualdade, contenção por palavra inteira e aproximação
// para absorver erros de digitação.
func ResolverCampo(cabecalho string) string {
	norma := texto.Normalizar(cabecalho)
	if norma == "" {
		return ""
	}

	if campo := resolverExato(norma); campo != "" {
		return campo
	}

	alvo := " " + norma + " "
	for _, alias := range aliasesColunas {
		for _, padrao := range alias.padroes {
			if strings.Contains(alvo, " "+padrao+" ") {
				return alias.campo
			}
		}
	}

	return resolverAproximado(norma)
}

// resolverExato aceita apenas igualdade com um dos padrões. O leitor de
// blocos usa este nível para reconhecer linhas de cabeçalho sem falsos
// positivos. Recebe o texto já normalizado.
func resolverExato(norma string) string {
	for _, alias := range aliasesColunas {
		for _, padrao := range alias.padroes {
			if norma == padrao {
				return alias.campo
			}
		}
	}
	return ""
}

// resolverAproximado absorve erros de digitação como CAMPAHNA. O
// prefixo comum mínimo com algum padrão da coluna escolhida evita
// aceitar palavras apenas parecidas (COMPRAS não vira COMPETENCIA).
func resolverAproximado(norma string) string {
	if len(norma) < 5 {
		return ""
	}
	melhor := buscadorPadroes.Closest(norma)
	if melhor == "" {
		return ""
	}
	campo := campoPorPadrao[melhor]
	for _, alias := range aliasesColunas {
		if alias.campo != campo {
			continue
		}
		for _, padrao := range alias.padroes {
			if prefixoComum(norma, padrao) >= 5 {
				return campo
			}
		}
	}
	return ""
}

func prefixoComum(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// contarCamposExatos conta quantas colunas canônicas distintas a linha
// declara por igualdade exata. É o critério para reconhecer uma linha
// de cabeçalho no meio da aba.
func contarCamposExatos(celulas []string) int {
	vistos := map[string]bool{}
	for _, cel := range celulas {
		if campo := resolverExato(texto.Normalizar(cel)); campo != "" {
			vistos[campo] = true
		}
	}
	return len(vistos)
}

// mapaColunas é o resultado da resolução de uma linha de cabeçalho:
// índice da célula para coluna canônica, e índice para rótulo original
// das colunas preservadas como extras.
type mapaColunas struct {
	campos map[int]string
	extras map[int]string
}

// mapearColunas resolve a linha de cabeçalho de um bloco. Colunas não
// reconhecidas e canônicas repetidas são preservadas como extras, com
// o cabeçalho original.
func mapearColunas(cabecalhos []string) mapaColunas {
	m := mapaColunas{campos: map[int]string{}, extras: map[int]string{}}
	usados := map[string]bool{}
	for i, bruto := range cabecalhos {
		rotulo := strings.TrimSpace(bruto)
		if rotulo == "" {
			continue
		}
		campo := ResolverCampo(rotulo)
		if campo != "" && !usados[campo] {
			m.campos[i] = campo
			usados[campo] = true
			continue
		}
		m.extras[i] = rotulo
	}
	return m
}
