// internal/core/source/service.go
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/secomdev/painelSecom/internal/domain"
)

// Limite de download para não segurar a memória com uma resposta
// absurda de um link errado.
const maxDownload = 100 << 20

// Config aponta para a planilha. A URL remota tem precedência; o
// caminho local e o diretório são usados como fallback, nessa ordem.
type Config struct {
	URL       string
	Caminho   string
	Diretorio string
	Timeout   time.Duration
}

// Service resolve a fonte configurada e devolve os bytes da planilha.
// Quando nenhuma fonte está disponível devolve arquivo nulo com um
// aviso, nunca um erro: o painel continua de pé, vazio.
type Service interface {
	Obter(ctx context.Context) (*domain.ArquivoFonte, []domain.Aviso, error)
}

type service struct {
	cfg    Config
	client *http.Client
}

// NewService cria o serviço de fonte com um cliente HTTP de timeout
// limitado.
func NewService(cfg Config) Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &service{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

var (
	sheetsIDRegex   = regexp.MustCompile(`docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	gidRegex        = regexp.MustCompile(`[#?&]gid=(\d+)`)
	driveFileRegex  = regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`)
	driveAbrirRegex = regexp.MustCompile(`drive\.google\.com/open\?(?:.*&)?id=([a-zA-Z0-9_-]+)`)
)

// ReescreverURL converte links compartilháveis dos provedores
// conhecidos na forma de download direto. URLs desconhecidas passam
// inalteradas.
func ReescreverURL(bruta string) string {
	u := strings.TrimSpace(bruta)

	switch {
	case strings.Contains(u, "docs.google.com/spreadsheets"):
		m := sheetsIDRegex.FindStringSubmatch(u)
		if m == nil {
			return u
		}
		id := m[1]
		destino := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=xlsx&id=%s", id, id)
		if g := gidRegex.FindStringSubmatch(u); g != nil {
			destino += "&gid=" + g[1]
		}
		return destino

	case strings.Contains(u, "drive.google.com"):
		if m := driveFileRegex.FindStringSubmatch(u); m != nil {
			return "https://drive.google.com/uc?export=download&id=" + m[1]
		}
		if m := driveAbrirRegex.FindStringSubmatch(u); m != nil {
			return "https://drive.google.com/uc?export=download&id=" + m[1]
		}
		return u

	case strings.Contains(u, "dropbox.com"):
		// dl=0 é a página de preview; dl=1 baixa o arquivo.
		if strings.Contains(u, "dl=0") {
			return strings.Replace(u, "dl=0", "dl=1", 1)
		}
		if !strings.Contains(u, "dl=1") {
			if strings.Contains(u, "?") {
				return u + "&dl=1"
			}
			return u + "?dl=1"
		}
		return u

	case strings.Contains(u, "1drv.ms") || strings.Contains(u, "onedrive.live.com"):
		if strings.Contains(u, "download=1") {
			return u
		}
		if strings.Contains(u, "?") {
			return u + "&download=1"
		}
		return u + "?download=1"
	}

	return u
}

func (s *service) Obter(ctx context.Context) (*domain.ArquivoFonte, []domain.Aviso, error) {
	var avisos []domain.Aviso

	if s.cfg.URL != "" {
		arquivo, err := s.buscarRemoto(ctx)
		if err == nil {
			return arquivo, avisos, nil
		}
		if ctx.Err() != nil {
			return nil, avisos, ctx.Err()
		}
		avisos = append(avisos, domain.Aviso{
			Codigo:   domain.AvisoFonteIndisponivel,
			Mensagem: err.Error() + "; tentando fonte local",
		})
	}

	if s.cfg.Caminho != "" {
		conteudo, err := os.ReadFile(s.cfg.Caminho)
		if err == nil {
			return &domain.ArquivoFonte{
				Nome:     filepath.Base(s.cfg.Caminho),
				Conteudo: conteudo,
				Origem:   "local",
			}, avisos, nil
		}
		avisos = append(avisos, domain.Aviso{
			Codigo:   domain.AvisoFonteIndisponivel,
			Mensagem: fmt.Sprintf("arquivo local %s indisponível: %v", s.cfg.Caminho, err),
		})
	}

	if arquivo := s.primeiraPlanilha(); arquivo != nil {
		avisos = append(avisos, domain.Aviso{
			Codigo:   domain.AvisoFonteIndisponivel,
			Mensagem: fmt.Sprintf("usando a primeira planilha encontrada em %s: %s", s.cfg.Diretorio, arquivo.Nome),
		})
		return arquivo, avisos, nil
	}

	avisos = append(avisos, domain.Aviso{
		Codigo:   domain.AvisoSemDados,
		Mensagem: "nenhuma fonte de dados disponível; painel carregado vazio",
	})
	return nil, avisos, nil
}

// buscarRemoto faz o GET da planilha já com a URL reescrita e valida
// que a resposta é de fato um binário, não uma página de login.
func (s *service) buscarRemoto(ctx context.Context) (*domain.ArquivoFonte, error) {
	alvo := ReescreverURL(s.cfg.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, alvo, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: alvo, Motivo: "URL inválida", Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: alvo, Motivo: "falha de rede", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{URL: alvo, Motivo: fmt.Sprintf("status HTTP %d", resp.StatusCode)}
	}

	conteudo, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload))
	if err != nil {
		return nil, &domain.FetchError{URL: alvo, Motivo: "falha ao ler a resposta", Err: err}
	}

	if pareceHTML(resp.Header.Get("Content-Type"), conteudo) {
		motivo := "a URL devolveu uma página HTML em vez da planilha; verifique as permissões de compartilhamento"
		if titulo := tituloHTML(conteudo); titulo != "" {
			motivo += fmt.Sprintf(" (página: %q)", titulo)
		}
		return nil, &domain.FetchError{URL: alvo, Motivo: motivo}
	}

	return &domain.ArquivoFonte{
		Nome:     nomeDoURL(alvo),
		Conteudo: conteudo,
		Origem:   "remota",
	}, nil
}

// pareceHTML detecta a página de erro/permissão que os provedores
// devolvem no lugar do binário.
func pareceHTML(contentType string, corpo []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	inicio := bytes.ToLower(bytes.TrimLeft(corpo, " \t\r\n"))
	return bytes.HasPrefix(inicio, []byte("<!doctype")) || bytes.HasPrefix(inicio, []byte("<html"))
}

// tituloHTML extrai o título da página devolvida, que costuma dizer
// exatamente qual é o problema ("Precisa de permissão", quota etc).
func tituloHTML(corpo []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(corpo))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func nomeDoURL(alvo string) string {
	u, err := url.Parse(alvo)
	if err != nil {
		return "planilha-remota.xlsx"
	}
	if strings.Contains(u.RawQuery, "format=xlsx") {
		return "planilha-remota.xlsx"
	}
	base := filepath.Base(u.Path)
	if base == "" || base == "." || base == "/" || !temExtensaoDePlanilha(base) {
		return "planilha-remota.xlsx"
	}
	return base
}

// primeiraPlanilha procura no diretório de dados a primeira planilha
// em ordem alfabética, ignorando temporários do Excel.
func (s *service) primeiraPlanilha() *domain.ArquivoFonte {
	if s.cfg.Diretorio == "" {
		return nil
	}
	entradas, err := os.ReadDir(s.cfg.Diretorio)
	if err != nil {
		return nil
	}

	var nomes []string
	for _, entrada := range entradas {
		nome := entrada.Name()
		if entrada.IsDir() || strings.HasPrefix(nome, "~$") {
			continue
		}
		if temExtensaoDePlanilha(nome) {
			nomes = append(nomes, nome)
		}
	}
	if len(nomes) == 0 {
		return nil
	}
	sort.Strings(nomes)

	caminho := filepath.Join(s.cfg.Diretorio, nomes[0])
	conteudo, err := os.ReadFile(caminho)
	if err != nil {
		return nil
	}
	return &domain.ArquivoFonte{Nome: nomes[0], Conteudo: conteudo, Origem: "descoberta"}
}

func temExtensaoDePlanilha(nome string) bool {
	switch strings.ToLower(filepath.Ext(nome)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}
