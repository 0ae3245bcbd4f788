// internal/core/dataset/loader.go
package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	// Limite de varredura por aba atrás da primeira linha de cabeçalho.
	// Depois de achar um cabeçalho a leitura segue até o fim da aba.
	maxLinhasBusca = 1000
	// Colunas canônicas distintas que uma linha precisa declarar por
	// igualdade exata para ser reconhecida como cabeçalho.
	minCamposCabecalho = 2
)

var (
	magicXLSX = []byte{0x50, 0x4B, 0x03, 0x04}
	magicOLE  = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// abaPlanilha é uma aba crua: o nome e a grade de células como texto.
type abaPlanilha struct {
	nome   string
	linhas [][]string
}

// bloco é uma tabela contígua dentro de uma aba: o cabeçalho resolvido
// e as linhas de dados até o próximo cabeçalho ou o fim da aba.
type bloco struct {
	aba     string
	mes     *time.Time
	colunas mapaColunas
	linhas  [][]string
}

// lerContainer abre o arquivo pelo conteúdo, não pela extensão, porque
// anexos renomeados são comuns. Detecta xlsx e xls pelos bytes mágicos
// e trata o resto como CSV.
func lerContainer(arquivo *domain.ArquivoFonte) ([]abaPlanilha, error) {
	switch {
	case bytes.HasPrefix(arquivo.Conteudo, magicXLSX):
		return lerXLSX(arquivo.Conteudo)
	case bytes.HasPrefix(arquivo.Conteudo, magicOLE):
		return lerXLS(arquivo.Conteudo)
	default:
		return lerCSV(arquivo.Nome, arquivo.Conteudo)
	}
}

func lerXLSX(conteudo []byte) ([]abaPlanilha, error) {
	f, err := excelize.OpenReader(bytes.NewReader(conteudo))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var abas []abaPlanilha
	for _, nome := range f.GetSheetList() {
		linhas, err := f.GetRows(nome)
		if err != nil {
			continue
		}
		abas = append(abas, abaPlanilha{nome: nome, linhas: linhas})
	}
	return abas, nil
}

// lerXLS usa o leitor do formato binário antigo. Arquivos .xls que na
// verdade são xlsx renomeados caem para o leitor de xlsx.
func lerXLS(conteudo []byte) ([]abaPlanilha, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(conteudo))
	if err != nil {
		if _, errX := excelize.OpenReader(bytes.NewReader(conteudo)); errX == nil {
			return lerXLSX(conteudo)
		}
		return nil, err
	}

	var abas []abaPlanilha
	for _, sheet := range workbook.GetSheets() {
		var linhas [][]string
		for _, row := range sheet.GetRows() {
			var celulas []string
			for _, cell := range row.GetCols() {
				celulas = append(celulas, cell.GetString())
			}
			linhas = append(linhas, celulas)
		}
		abas = append(abas, abaPlanilha{nome: sheet.GetName(), linhas: linhas})
	}
	return abas, nil
}

// lerCSV aceita UTF-8 e ISO-8859-1 (o Excel brasileiro exporta no
// segundo) e detecta o delimitador entre ponto e vírgula e vírgula.
func lerCSV(nome string, conteudo []byte) ([]abaPlanilha, error) {
	conteudo = bytes.TrimPrefix(conteudo, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(conteudo) {
		decodificado, err := io.ReadAll(transform.NewReader(bytes.NewReader(conteudo), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, err
		}
		conteudo = decodificado
	}

	leitor := csv.NewReader(bytes.NewReader(conteudo))
	leitor.Comma = detectarDelimitador(conteudo)
	leitor.LazyQuotes = true
	leitor.FieldsPerRecord = -1

	linhas, err := leitor.ReadAll()
	if err != nil {
		return nil, err
	}
	return []abaPlanilha{{nome: nome, linhas: linhas}}, nil
}

func detectarDelimitador(conteudo []byte) rune {
	fim := bytes.IndexByte(conteudo, '\n')
	if fim < 0 {
		fim = len(conteudo)
	}
	primeira := conteudo[:fim]
	if bytes.Count(primeira, []byte(";")) >= bytes.Count(primeira, []byte(",")) {
		return ';'
	}
	return ','
}

// scanBlocos percorre uma aba separando as tabelas empilhadas. Cada
// linha que declara colunas canônicas suficientes abre um bloco novo;
// as linhas seguintes são dados dele até o próximo cabeçalho.
func scanBlocos(aba abaPlanilha) []bloco {
	mes := mesDoNomeAba(aba.nome)

	var blocos []bloco
	var atual *bloco
	fechar := func() {
		if atual != nil {
			blocos = append(blocos, *atual)
		}
	}

	for i, linha := range aba.linhas {
		if atual == nil && i >= maxLinhasBusca {
			break
		}
		if contarCamposExatos(linha) >= minCamposCabecalho {
			fechar()
			atual = &bloco{aba: aba.nome, mes: mes, colunas: mapearColunas(linha)}
			continue
		}
		if atual != nil && !linhaVazia(linha) {
			atual.linhas = append(atual.linhas, linha)
		}
	}
	fechar()
	return blocos
}

func linhaVazia(linha []string) bool {
	for _, cel := range linha {
		if strings.TrimSpace(cel) != "" {
			return false
		}
	}
	return true
}

// montarRegistros converte as linhas de um bloco em registros
// canônicos, descartando as que não identificam processo algum.
func montarRegistros(b bloco) []domain.Registro {
	var registros []domain.Registro
	for _, linha := range b.linhas {
		var reg domain.Registro
		var competenciaBruta string

		for i, cel := range linha {
			valor := strings.TrimSpace(cel)
			if valor == "" {
				continue
			}
			campo, ok := b.colunas.campos[i]
			if !ok {
				if rotulo, extra := b.colunas.extras[i]; extra {
					if reg.Extras == nil {
						reg.Extras = map[string]string{}
					}
					reg.Extras[rotulo] = valor
				}
				continue
			}
			switch campo {
			case domain.ColCampanha:
				reg.Campanha = valor
			case domain.ColSecretaria:
				reg.Secretaria = valor
			case domain.ColAgencia:
				reg.Agencia = valor
			case domain.ColValorEspelho:
				reg.ValorEspelho = ParseValorBRL(valor)
			case domain.ColProcesso:
				reg.Processo, reg.LinkProcesso = separarTextoLink(valor)
			case domain.ColEmpenho:
				reg.Empenho, reg.LinkEmpenho = separarTextoLink(valor)
			case domain.ColDataEmpenho:
				reg.DataEmpenho = ParseDataPTBR(valor)
			case domain.ColCompetencia:
				competenciaBruta = valor
			case domain.ColEspelhoDiana:
				reg.EspelhoDiana = normalizarLink(valor)
			case domain.ColEspelho:
				reg.Espelho = normalizarLink(valor)
			case domain.ColPDF:
				reg.PDF = normalizarLink(valor)
			case domain.ColObservacao:
				reg.Observacao = valor
			}
		}

		if reg.Vazio() {
			continue
		}
		reg.CompetenciaMes, reg.CompetenciaRotulo = DeriveCompetencia(competenciaBruta, reg.DataEmpenho, b.mes)
		registros = append(registros, reg)
	}
	return registros
}
