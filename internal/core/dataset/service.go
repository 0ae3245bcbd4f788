// internal/core/dataset/service.go
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/secomdev/painelSecom/internal/core/source"
	"github.com/secomdev/painelSecom/internal/core/texto"
	"github.com/secomdev/painelSecom/internal/domain"
)

// errSemCabecalho marca abas sem nenhuma linha de cabeçalho
// reconhecível.
var errSemCabecalho = errors.New("nenhum cabeçalho reconhecido")

// Service carrega a planilha de controle e entrega a tabela canônica
// do painel. A carga nunca falha por dado malformado: célula ilegível
// degrada para o valor zero do campo e unidade ilegível vira aviso.
type Service interface {
	Carregar(ctx context.Context) (*domain.Tabela, error)
}

type service struct {
	fonte source.Service
	aba   string
}

// NewService cria o carregador. A aba preferida pode ficar vazia para
// carregar todas as abas do arquivo.
func NewService(fonte source.Service, aba string) Service {
	return &service{fonte: fonte, aba: aba}
}

func (svc *service) Carregar(ctx context.Context) (*domain.Tabela, error) {
	arquivo, avisos, err := svc.fonte.Obter(ctx)
	if err != nil {
		return nil, err
	}

	tabela := &domain.Tabela{Avisos: avisos, CarregadoEm: time.Now()}
	if arquivo == nil {
		return tabela, nil
	}
	tabela.Fonte = fmt.Sprintf("%s (%s)", arquivo.Nome, arquivo.Origem)

	abas, err := lerContainer(arquivo)
	if err != nil {
		// Arquivo ilegível é aviso, não erro: o painel sobe vazio.
		parseErr := &domain.ParseError{Unidade: arquivo.Nome, Err: err}
		log.Print(parseErr)
		tabela.Avisos = append(tabela.Avisos, domain.Aviso{
			Codigo:   domain.AvisoSemDados,
			Mensagem: parseErr.Error(),
		})
		return tabela, nil
	}

	for _, aba := range abas {
		tabela.Abas = append(tabela.Abas, aba.nome)
	}

	selecionadas, rotuloAba, aviso := selecionarAbas(abas, svc.aba)
	tabela.Aba = rotuloAba
	if aviso != nil {
		tabela.Avisos = append(tabela.Avisos, *aviso)
	}

	extras := map[string]bool{}
	for _, aba := range selecionadas {
		blocos := scanBlocos(aba)
		if len(blocos) == 0 {
			parseErr := &domain.ParseError{
				Unidade: fmt.Sprintf("a aba %q", aba.nome),
				Err:     errSemCabecalho,
			}
			log.Print(parseErr)
			tabela.Avisos = append(tabela.Avisos, domain.Aviso{
				Codigo:   domain.AvisoUnidadeIgnorada,
				Mensagem: parseErr.Error(),
			})
			continue
		}
		for _, b := range blocos {
			registros := montarRegistros(b)
			tabela.Registros = append(tabela.Registros, registros...)
			for _, reg := range registros {
				for rotulo := range reg.Extras {
					extras[rotulo] = true
				}
			}
		}
	}

	for rotulo := range extras {
		tabela.ColunasExtras = append(tabela.ColunasExtras, rotulo)
	}
	sort.Strings(tabela.ColunasExtras)

	if len(tabela.Registros) == 0 {
		tabela.Avisos = append(tabela.Avisos, domain.Aviso{
			Codigo:   domain.AvisoSemDados,
			Mensagem: "a planilha não contém registros reconhecíveis",
		})
	}
	return tabela, nil
}

// selecionarAbas escolhe a aba preferida por nome exato e depois por
// nome normalizado. Quando a preferida não existe todas as abas são
// carregadas, com aviso, para o painel não subir vazio por causa de
// uma renomeação.
func selecionarAbas(abas []abaPlanilha, preferida string) ([]abaPlanilha, string, *domain.Aviso) {
	if preferida == "" || len(abas) == 0 {
		return abas, "", nil
	}
	for _, aba := range abas {
		if aba.nome == preferida {
			return []abaPlanilha{aba}, aba.nome, nil
		}
	}
	alvo := texto.Normalizar(preferida)
	for _, aba := range abas {
		if texto.Normalizar(aba.nome) == alvo {
			return []abaPlanilha{aba}, aba.nome, nil
		}
	}
	return abas, "", &domain.Aviso{
		Codigo:   domain.AvisoAbaNaoEncontrada,
		Mensagem: fmt.Sprintf("aba %q não encontrada; todas as abas foram carregadas", preferida),
	}
}
