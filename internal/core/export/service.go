// internal/core/export/service.go
package export

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

const abaDados = "Dados"

// Service gera os arquivos de download do painel com os registros já
// filtrados, nas mesmas colunas e ordem da tabela exibida.
type Service interface {
	GerarXLSX(registros []domain.Registro, extras []string) ([]byte, error)
	GerarCSV(registros []domain.Registro, extras []string) ([]byte, error)
}

type service struct{}

// NewService cria o serviço de exportação.
func NewService() Service {
	return &service{}
}

func (svc *service) GerarXLSX(registros []domain.Registro, extras []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", abaDados); err != nil {
		return nil, err
	}

	estiloCabecalho, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	colunas := cabecalhos(extras)
	for i, coluna := range colunas {
		celula, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(abaDados, celula, coluna); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(abaDados, celula, celula, estiloCabecalho); err != nil {
			return nil, err
		}
	}

	for linha, reg := range registros {
		for i, coluna := range domain.ColunasTabela {
			celula, err := excelize.CoordinatesToCellName(i+1, linha+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(abaDados, celula, valorColuna(reg, coluna)); err != nil {
				return nil, err
			}
		}
		for i, extra := range extras {
			celula, err := excelize.CoordinatesToCellName(len(domain.ColunasTabela)+i+1, linha+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(abaDados, celula, reg.Extras[extra]); err != nil {
				return nil, err
			}
		}
	}

	if ultima, err := excelize.ColumnNumberToName(len(colunas)); err == nil {
		f.SetColWidth(abaDados, "A", ultima, 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GerarCSV escreve em Windows-1252 com ponto e vírgula, o par de
// convenções que o Excel brasileiro abre sem assistente de importação.
func (svc *service) GerarCSV(registros []domain.Registro, extras []string) ([]byte, error) {
	var buffer bytes.Buffer
	escritor := csv.NewWriter(charmap.Windows1252.NewEncoder().Writer(&buffer))
	escritor.Comma = ';'

	if err := escritor.Write(cabecalhos(extras)); err != nil {
		return nil, err
	}

	for _, reg := range registros {
		linha := make([]string, 0, len(domain.ColunasTabela)+len(extras))
		for _, coluna := range domain.ColunasTabela {
			linha = append(linha, textoColuna(reg, coluna))
		}
		for _, extra := range extras {
			linha = append(linha, reg.Extras[extra])
		}
		if err := escritor.Write(linha); err != nil {
			return nil, err
		}
	}

	escritor.Flush()
	if err := escritor.Error(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func cabecalhos(extras []string) []string {
	colunas := make([]string, 0, len(domain.ColunasTabela)+len(extras))
	colunas = append(colunas, domain.ColunasTabela...)
	return append(colunas, extras...)
}

// valorColuna devolve a célula tipada do xlsx: o valor do espelho sai
// como número para o Excel somar, o resto como texto.
func valorColuna(reg domain.Registro, coluna string) interface{} {
	switch coluna {
	case domain.ColCampanha:
		return reg.Campanha
	case domain.ColSecretaria:
		return reg.Secretaria
	case domain.ColAgencia:
		return reg.Agencia
	case domain.ColValorEspelho:
		return reg.ValorEspelho.InexactFloat64()
	case domain.ColCompetencia:
		return reg.CompetenciaRotulo
	case domain.ColDataEmpenho:
		return domain.FormatarData(reg.DataEmpenho)
	case domain.ColEspelhoDiana:
		return reg.EspelhoDiana
	case domain.ColEspelho:
		return reg.Espelho
	case domain.ColPDF:
		return reg.PDF
	case domain.ColProcesso:
		return reg.Processo
	case domain.ColEmpenho:
		return reg.Empenho
	case domain.ColObservacao:
		return reg.Observacao
	}
	return ""
}

func textoColuna(reg domain.Registro, coluna string) string {
	if coluna == domain.ColValorEspelho {
		return strings.Replace(reg.ValorEspelho.StringFixed(2), ".", ",", 1)
	}
	s, _ := valorColuna(reg, coluna).(string)
	return s
}
