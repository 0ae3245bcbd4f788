// internal/core/dataset/coerce.go
package dataset

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/secomdev/painelSecom/internal/core/texto"
	"github.com/shopspring/decimal"
)

var (
	naoNumericoValorRegex = regexp.MustCompile(`[^0-9,.\-]`)
	decimalPontoRegex     = regexp.MustCompile(`^-?\d+\.\d{1,2}$`)
	urlRegex              = regexp.MustCompile(`https?://\S+`)
	mesAnoRegex           = regexp.MustCompile(`^([A-Z]{3,9})(?: DE)? (\d{4})$`)
	mesAnoSoltoRegex      = regexp.MustCompile(`([A-Z]{3,9})(?: DE)? (\d{4})`)
)

// Formatos de data aceitos nas células, do mais comum ao mais raro. Os
// formatos com dígito único vêm depois dos de dois dígitos porque o
// time.Parse exige largura fixa para 02/01 e aceita ambas para 2/1.
var layoutsData = []string{
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

var layoutsCompetencia = []string{
	"01/2006",
	"1/2006",
	"2006-01",
	"01-2006",
}

var mesesPorNome = map[string]time.Month{
	"JANEIRO": time.January, "JAN": time.January,
	"FEVEREIRO": time.February, "FEV": time.February,
	"MARCO": time.March, "MAR": time.March,
	"ABRIL": time.April, "ABR": time.April,
	"MAIO": time.May, "MAI": time.May,
	"JUNHO": time.June, "JUN": time.June,
	"JULHO": time.July, "JUL": time.July,
	"AGOSTO": time.August, "AGO": time.August,
	"SETEMBRO": time.September, "SET": time.September,
	"OUTUBRO": time.October, "OUT": time.October,
	"NOVEMBRO": time.November, "NOV": time.November,
	"DEZEMBRO": time.December, "DEZ": time.December,
}

// ParseValorBRL converte o texto de uma célula monetária em decimal.
// Aceita o formato brasileiro (1.234,56), o texto cru que o Excel
// devolve para células numéricas (1234.56) e valores com prefixo R$.
// Valores ilegíveis ou negativos viram zero para nenhuma linha
// derrubar os totais.
func ParseValorBRL(bruto string) decimal.Decimal {
	s := naoNumericoValorRegex.ReplaceAllString(strings.TrimSpace(bruto), "")
	if s == "" || s == "-" {
		return decimal.Zero
	}

	switch {
	case strings.Contains(s, ","):
		if strings.Count(s, ",") > 1 {
			return decimal.Zero
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case decimalPontoRegex.MatchString(s):
		// Ponto único com até duas casas é separador decimal.
	default:
		// Pontos restantes são separadores de milhar.
		s = strings.ReplaceAll(s, ".", "")
	}

	valor, err := decimal.NewFromString(s)
	if err != nil || valor.IsNegative() {
		return decimal.Zero
	}
	return valor
}

// ParseDataPTBR interpreta uma célula de data. Tenta os formatos
// textuais conhecidos e por fim o número serial do Excel. Devolve nulo
// quando a célula não é uma data.
func ParseDataPTBR(bruto string) *time.Time {
	s := strings.TrimSpace(bruto)
	if s == "" {
		return nil
	}
	for _, layout := range layoutsData {
		if t, err := time.Parse(layout, s); err == nil {
			dia := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &dia
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return dataDeSerialExcel(serial)
	}
	return nil
}

// A época do Excel é 30/12/1899. A faixa aceita (1954 a 2064) descarta
// números que claramente não são datas seriais.
func dataDeSerialExcel(serial float64) *time.Time {
	if serial < 20000 || serial > 60000 {
		return nil
	}
	epoca := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	t := epoca.AddDate(0, 0, int(serial))
	return &t
}

// ParseCompetencia interpreta o texto de uma célula de competência
// como primeiro dia do mês. Aceita MM/AAAA, datas completas (usa o
// mês) e nomes de mês por extenso (MARÇO/2024).
func ParseCompetencia(bruto string) *time.Time {
	s := strings.TrimSpace(bruto)
	if s == "" {
		return nil
	}
	for _, layout := range layoutsCompetencia {
		if t, err := time.Parse(layout, s); err == nil {
			mes := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
			return &mes
		}
	}
	if data := ParseDataPTBR(s); data != nil {
		mes := primeiroDiaDoMes(*data)
		return &mes
	}
	return parseMesPorNome(s)
}

func parseMesPorNome(bruto string) *time.Time {
	m := mesAnoRegex.FindStringSubmatch(texto.Normalizar(bruto))
	if m == nil {
		return nil
	}
	mes, ok := mesesPorNome[m[1]]
	if !ok {
		return nil
	}
	ano, _ := strconv.Atoi(m[2])
	t := time.Date(ano, mes, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

// mesDoNomeAba procura um mês com ano no nome da aba (CONTROLE MARÇO
// 2024). Abas sem mês reconhecível devolvem nulo.
func mesDoNomeAba(nome string) *time.Time {
	for _, m := range mesAnoSoltoRegex.FindAllStringSubmatch(texto.Normalizar(nome), -1) {
		if mes, ok := mesesPorNome[m[1]]; ok {
			ano, _ := strconv.Atoi(m[2])
			t := time.Date(ano, mes, 1, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	return nil
}

// DeriveCompetencia resolve o mês de competência de um registro, na
// ordem: texto da própria coluna, mês da data de empenho, mês do
// bloco. Quando nada é interpretável o texto original vira apenas
// rótulo, sem mês.
func DeriveCompetencia(bruto string, dataEmpenho, mesDoBloco *time.Time) (*time.Time, string) {
	s := strings.TrimSpace(bruto)
	if s != "" {
		if mes := ParseCompetencia(s); mes != nil {
			return mes, RotuloMes(*mes)
		}
	}
	if dataEmpenho != nil {
		mes := primeiroDiaDoMes(*dataEmpenho)
		return &mes, RotuloMes(mes)
	}
	if mesDoBloco != nil {
		mes := *mesDoBloco
		return &mes, RotuloMes(mes)
	}
	return nil, s
}

// RotuloMes é a forma canônica AAAA-MM usada nos filtros e gráficos. A
// ordenação alfabética do rótulo coincide com a cronológica.
func RotuloMes(t time.Time) string {
	return t.Format("2006-01")
}

func primeiroDiaDoMes(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// separarTextoLink divide uma célula que mistura identificador e URL.
// Células só com a URL mantêm a URL como texto visível.
func separarTextoLink(bruto string) (valor, link string) {
	s := strings.TrimSpace(bruto)
	if s == "" {
		return "", ""
	}
	link = urlRegex.FindString(s)
	if link == "" {
		return s, ""
	}
	link = strings.TrimRight(link, ").,;")
	valor = strings.TrimSpace(strings.Replace(s, link, "", 1))
	valor = strings.Trim(valor, "()[]<>.,;- ")
	if valor == "" {
		valor = link
	}
	return valor, link
}

// normalizarLink extrai a URL de uma célula de coluna de link. Texto
// sem URL passa como veio, para não perder anotações manuais.
func normalizarLink(bruto string) string {
	s := strings.TrimSpace(bruto)
	if s == "" {
		return ""
	}
	if m := urlRegex.FindString(s); m != "" {
		return strings.TrimRight(m, ").,;")
	}
	return s
}
