// internal/domain/formato.go
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatarMoeda formata um valor no padrão monetário brasileiro
// (R$ 1.234.567,89).
func FormatarMoeda(v decimal.Decimal) string {
	fixo := v.StringFixed(2)
	negativo := strings.HasPrefix(fixo, "-")
	fixo = strings.TrimPrefix(fixo, "-")

	partes := strings.SplitN(fixo, ".", 2)
	inteiro, centavos := partes[0], partes[1]

	var b strings.Builder
	for i, d := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}

	if negativo {
		return "R$ -" + b.String() + "," + centavos
	}
	return "R$ " + b.String() + "," + centavos
}

// FormatarData devolve a data no formato de exibição DD/MM/YYYY, ou
// vazio quando a data é nula.
func FormatarData(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}
