// internal/store/cache.go
package store

import (
	"context"
	"sync"
	"time"

	"github.com/secomdev/painelSecom/internal/domain"
)

// Cache guarda a última tabela carregada e a renova quando o TTL
// expira. O mutex é segurado durante a carga inteira: chamadas
// simultâneas esperam a carga em andamento em vez de baixar a
// planilha de novo, e saem todas com o resultado fresco.
type Cache struct {
	mu          sync.Mutex
	carregar    func(context.Context) (*domain.Tabela, error)
	ttl         time.Duration
	agora       func() time.Time
	tabela      *domain.Tabela
	carregadoEm time.Time
}

// NewCache cria o cache sobre a função de carga. TTL não positivo cai
// no padrão de cinco minutos.
func NewCache(carregar func(context.Context) (*domain.Tabela, error), ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{carregar: carregar, ttl: ttl, agora: time.Now}
}

// Dados devolve a tabela corrente, recarregando quando o TTL expirou.
func (c *Cache) Dados(ctx context.Context) (*domain.Tabela, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tabela != nil && c.agora().Sub(c.carregadoEm) < c.ttl {
		return c.tabela, nil
	}
	return c.recarregarLocked(ctx)
}

// Refresh força a recarga imediata, ignorando o TTL.
func (c *Cache) Refresh(ctx context.Context) (*domain.Tabela, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recarregarLocked(ctx)
}

// Invalidate descarta a tabela corrente; a próxima leitura recarrega.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tabela = nil
	c.carregadoEm = time.Time{}
}

func (c *Cache) recarregarLocked(ctx context.Context) (*domain.Tabela, error) {
	nova, err := c.carregar(ctx)
	if err != nil {
		if c.tabela == nil {
			return nil, err
		}
		// Falhou com dados antigos em mãos: serve o que tem, avisa que
		// está desatualizado e deixa o carimbo vencido para a próxima
		// chamada tentar de novo.
		velha := *c.tabela
		velha.Avisos = append(append([]domain.Aviso{}, c.tabela.Avisos...), domain.Aviso{
			Codigo:   domain.AvisoDadosDesatualizados,
			Mensagem: "não foi possível atualizar os dados; exibindo a última carga",
		})
		return &velha, nil
	}
	c.tabela = nova
	c.carregadoEm = c.agora()
	return nova, nil
}
