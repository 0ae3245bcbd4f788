// internal/api/middleware/metrics.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requisicoesHTTP = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "painel",
		Subsystem: "http",
		Name:      "requisicoes_total",
		Help:      "Total de requisições HTTP atendidas, por rota, método e status",
	}, []string{"rota", "metodo", "status"})

	duracaoHTTP = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "painel",
		Subsystem: "http",
		Name:      "duracao_segundos",
		Help:      "Duração das requisições HTTP em segundos",
		Buckets:   prometheus.DefBuckets,
	}, []string{"rota", "metodo"})

	cargasPlanilha = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "painel",
		Subsystem: "planilha",
		Name:      "cargas_total",
		Help:      "Total de cargas da planilha de processos, por resultado",
	}, []string{"resultado"})
)

func init() {
	prometheus.MustRegister(
		requisicoesHTTP, duracaoHTTP, cargasPlanilha,
	)
}

// Metrics contabiliza cada requisição atendida. Rotas fora do roteador
// (404 de caminho desconhecido) entram agrupadas para não explodir a
// cardinalidade dos rótulos.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		rota := c.FullPath()
		if rota == "" {
			rota = "(desconhecida)"
		}
		metodo := c.Request.Method
		requisicoesHTTP.WithLabelValues(rota, metodo, strconv.Itoa(c.Writer.Status())).Inc()
		duracaoHTTP.WithLabelValues(rota, metodo).Observe(time.Since(inicio).Seconds())
	}
}

// RegistrarCarga registra o resultado de uma carga da planilha, tanto
// das recargas automáticas quanto das disparadas pela API.
func RegistrarCarga(resultado string) {
	cargasPlanilha.WithLabelValues(resultado).Inc()
}
