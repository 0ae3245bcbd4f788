// cmd/web/main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/secomdev/painelSecom/internal/api/handlers"
	"github.com/secomdev/painelSecom/internal/api/middleware"
	"github.com/secomdev/painelSecom/internal/api/responses"
	"github.com/secomdev/painelSecom/internal/config"
	"github.com/secomdev/painelSecom/internal/core/auth"
	"github.com/secomdev/painelSecom/internal/core/dataset"
	"github.com/secomdev/painelSecom/internal/core/export"
	"github.com/secomdev/painelSecom/internal/core/report"
	"github.com/secomdev/painelSecom/internal/core/source"
	"github.com/secomdev/painelSecom/internal/domain"
	"github.com/secomdev/painelSecom/internal/store"
	"github.com/secomdev/painelSecom/internal/web"
	"google.golang.org/api/option"
)

const tituloPainel = "Controle de Processos - SECOM"

// initFirestoreClient abre o cliente do Firestore quando o login por
// Firestore está configurado. Devolve nulo quando não está.
func initFirestoreClient(ctx context.Context, cfg config.AuthConfig) *firestore.Client {
	if cfg.ProjetoFirestore == "" {
		return nil
	}

	var opts []option.ClientOption
	if cfg.CredenciaisFirebase != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredenciaisFirebase))
	}

	if cfg.BancoFirestore != "" && cfg.BancoFirestore != firestore.DefaultDatabaseID {
		client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjetoFirestore, cfg.BancoFirestore, opts...)
		if err != nil {
			log.Fatalf("Erro ao inicializar cliente Firestore para o banco '%s': %v\n", cfg.BancoFirestore, err)
		}
		log.Printf("Conectado com sucesso ao Firestore, banco de dados: %s", cfg.BancoFirestore)
		return client
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjetoFirestore}, opts...)
	if err != nil {
		log.Fatalf("Erro ao inicializar o app Firebase: %v\n", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("Erro ao inicializar cliente Firestore: %v\n", err)
	}
	log.Printf("Conectado com sucesso ao Firestore, projeto: %s", cfg.ProjetoFirestore)
	return client
}

func main() {
	responses.InitLogger()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Erro ao carregar a configuração: %v", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	ctx := context.Background()

	fonteService := source.NewService(source.Config{
		URL:       cfg.Fonte.URLExcel,
		Caminho:   cfg.Fonte.CaminhoExcel,
		Diretorio: cfg.Fonte.DiretorioDados,
		Timeout:   time.Duration(cfg.Fonte.TimeoutSegundos) * time.Second,
	})
	datasetService := dataset.NewService(fonteService, cfg.Fonte.Aba)
	carregar := func(ctx context.Context) (*domain.Tabela, error) {
		tabela, err := datasetService.Carregar(ctx)
		if err != nil {
			middleware.RegistrarCarga("erro")
			return nil, err
		}
		middleware.RegistrarCarga("sucesso")
		return tabela, nil
	}
	cache := store.NewCache(carregar, time.Duration(cfg.Cache.TTLMinutos)*time.Minute)

	// Usuários do Firestore quando configurado, senão o admin local.
	var userStore auth.UserStore
	if firestoreClient := initFirestoreClient(ctx, cfg.Auth); firestoreClient != nil {
		defer firestoreClient.Close()
		userStore = auth.NewFirestoreStore(firestoreClient)
	} else {
		userStore = auth.NewConfigStore(cfg.Auth.AdminUsuario, cfg.Auth.AdminSenhaHash)
	}
	authService := auth.NewService(userStore, []byte(cfg.Auth.JWTSecret))

	dashboardHandler := handlers.NewDashboardHandler(cache, report.NewService())
	exportHandler := handlers.NewExportHandler(cache, export.NewService())
	authHandler := handlers.NewAuthHandler(authService)

	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())

	router.GET("/", web.Pagina(tituloPainel))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/login", authHandler.Login)
		apiV1.GET("/opcoes", dashboardHandler.HandleOpcoes)
		apiV1.GET("/resumo", dashboardHandler.HandleResumo)
		apiV1.GET("/registros", dashboardHandler.HandleRegistros)
		apiV1.GET("/graficos/:tipo", dashboardHandler.HandleGrafico)
		apiV1.GET("/exportar/xlsx", exportHandler.HandleXLSX)
		apiV1.GET("/exportar/csv", exportHandler.HandleCSV)

		protected := apiV1.Group("/")
		if cfg.Auth.JWTSecret != "" {
			protected.Use(middleware.AuthMiddleware([]byte(cfg.Auth.JWTSecret)))
			protected.Use(middleware.PermissionMiddleware("admin"))
		} else {
			log.Println("JWT_SECRET ausente: a atualização manual fica aberta (modo intranet)")
		}
		{
			protected.POST("/atualizar", dashboardHandler.HandleAtualizar)
		}
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Primeira carga antecipada, para o painel abrir já com dados.
	if _, err := cache.Dados(ctx); err != nil {
		log.Printf("Carga inicial falhou: %v", err)
	}

	port := cfg.Server.Port

	log.Printf("🚀 Servidor iniciado e escutando na porta %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Falha ao iniciar o servidor: ", err)
	}
}
