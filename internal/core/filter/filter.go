// internal/core/filter/filter.go
package filter

import (
	"strings"
	"time"

	"github.com/secomdev/painelSecom/internal/core/texto"
	"github.com/secomdev/painelSecom/internal/domain"
)

// Aplicar devolve os registros que atendem todos os critérios ao
// mesmo tempo. A entrada nunca é modificada e a ordem relativa dos
// registros é preservada.
func Aplicar(registros []domain.Registro, c domain.Criterios) []domain.Registro {
	secretarias := conjunto(c.Secretarias)
	agencias := conjunto(c.Agencias)
	campanhas := conjunto(c.Campanhas)
	competencias := conjunto(c.Competencias)
	busca := texto.Normalizar(c.Busca)

	filtrados := make([]domain.Registro, 0, len(registros))
	for _, reg := range registros {
		if !pertence(secretarias, reg.Secretaria) {
			continue
		}
		if !pertence(agencias, reg.Agencia) {
			continue
		}
		if !pertence(campanhas, reg.Campanha) {
			continue
		}
		if !pertence(competencias, reg.CompetenciaRotulo) {
			continue
		}
		if !dentroDoPeriodo(reg, c.EmpenhoDe, c.EmpenhoAte) {
			continue
		}
		if busca != "" && !contemTexto(reg, busca) {
			continue
		}
		filtrados = append(filtrados, reg)
	}
	return filtrados
}

// conjunto devolve nulo para a lista vazia: lista vazia significa
// "sem filtro" na dimensão.
func conjunto(valores []string) map[string]bool {
	if len(valores) == 0 {
		return nil
	}
	m := make(map[string]bool, len(valores))
	for _, v := range valores {
		m[v] = true
	}
	return m
}

func pertence(conjunto map[string]bool, valor string) bool {
	return conjunto == nil || conjunto[valor]
}

// dentroDoPeriodo usa a data do empenho e, na falta dela, o mês de
// competência. Registro sem data nenhuma fica de fora quando um
// período está ativo. Os limites são inclusivos.
func dentroDoPeriodo(reg domain.Registro, de, ate *time.Time) bool {
	if de == nil && ate == nil {
		return true
	}
	data := reg.DataEmpenho
	if data == nil {
		data = reg.CompetenciaMes
	}
	if data == nil {
		return false
	}
	if de != nil && data.Before(*de) {
		return false
	}
	if ate != nil && data.After(*ate) {
		return false
	}
	return true
}

// contemTexto procura a busca livre nos campos textuais do registro,
// ignorando acentos e caixa.
func contemTexto(reg domain.Registro, buscaNormalizada string) bool {
	campos := [...]string{reg.Processo, reg.Observacao, reg.Campanha, reg.Secretaria, reg.Agencia, reg.Empenho}
	for _, campo := range campos {
		if campo != "" && strings.Contains(texto.Normalizar(campo), buscaNormalizada) {
			return true
		}
	}
	return false
}
