// internal/api/responses/responses.go
package responses

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger é o logger estruturado compartilhado pela aplicação.
var Logger *zap.Logger

// InitLogger inicializa o logger global. Deve ser chamado uma única
// vez, no início do main.
func InitLogger() {
	cfg := zap.NewProductionConfig()
	logger, err := cfg.Build()
	if err != nil {
		logger, _ = zap.NewDevelopment()
	}
	Logger = logger
}

// ErrorResponse é o envelope JSON devolvido em caso de erro.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Error registra o problema e aborta a requisição com o envelope
// padronizado de erro.
func Error(c *gin.Context, status int, message string, details ...string) {
	if Logger != nil {
		Logger.Warn("erro na requisição",
			zap.Int("status", status),
			zap.String("metodo", c.Request.Method),
			zap.String("rota", c.FullPath()),
			zap.String("erro", message),
			zap.Strings("detalhes", details),
		)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Details: details})
}
