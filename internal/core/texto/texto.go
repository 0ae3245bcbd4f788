// internal/core/texto/texto.go
package texto

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalizar remove acentos, converte para maiúsculas, troca pontuação
// por espaço e colapsa espaços consecutivos. É idempotente, então
// normalizar um texto já normalizado devolve o mesmo resultado.
func Normalizar(str string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// Contem informa se o texto contém o termo, ignorando acentos, caixa e
// pontuação de ambos os lados.
func Contem(texto, termo string) bool {
	return strings.Contains(Normalizar(texto), Normalizar(termo))
}
