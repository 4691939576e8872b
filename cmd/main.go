package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	// Nossos pacotes de infraestrutura e utilitários
	"stockui/config"
	"stockui/internal/pkg/cache"
	"stockui/internal/pkg/logger"

	// Camadas para Injeção de Dependências
	"stockui/internal/api/product"            // Handlers de listagem e formulários de produto
	"stockui/internal/api/router"             // Roteador central
	"stockui/internal/api/stock"              // Handler de movimentação
	"stockui/internal/repository/productrepo" // Cliente da API de inventário
	"stockui/internal/repository/sessionrepo" // Estado das telas no Redis
	"stockui/internal/service/catalogservice"
	"stockui/internal/service/productservice"
	"stockui/internal/service/stockservice"
)

func main() {
	log.Println("⚡ Inicializando serviço StockUI...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	if err := godotenv.Load(); err != nil {
		// Sem .env seguimos com o ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Configuração inválida: %v", err)
	}

	var appLog logger.Logger
	if cfg.IsProduction() {
		appLog = logger.NewLogger(cfg.LogLevel)
	} else {
		appLog = logger.NewDevelopmentLogger(cfg.LogLevel)
	}
	if zl, ok := appLog.(*logger.ZapLogger); ok {
		defer func() { _ = zl.Sync() }()
	}
	appLog.Info("Configurações carregadas.", map[string]interface{}{
		"env":          cfg.Environment,
		"api_base_url": cfg.APIBaseURL,
		"api_timeout":  cfg.APITimeout.String(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Conexão com Recursos de Infraestrutura
	// A. Cache (Redis): estado das telas, travas de submissão e rate limit
	cacheClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao Redis.", err)
	}
	defer cacheClient.Close()
	appLog.Info("Conexão Redis estabelecida.", map[string]interface{}{"addr": cfg.RedisAddr})

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios
	productRepo := productrepo.NewProductRepository(cfg.APIBaseURL, cfg.APITimeout, appLog)
	sessionRepo := sessionrepo.NewRepository(cacheClient, cfg.SessionTTL, cfg.SubmitLockTTL(), appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	// B. Serviços
	catalogSvc := catalogservice.NewService(productRepo, appLog)
	productSvc := productservice.NewService(productRepo, appLog)
	stockSvc := stockservice.NewService(productRepo, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	// C. Handlers
	productHandler := product.NewHandler(catalogSvc, productSvc, sessionRepo, appLog)
	stockHandler := stock.NewHandler(stockSvc, sessionRepo, appLog)
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Roteador/Servidor
	r := router.NewRouter(router.Params{
		Config:         cfg,
		Logger:         appLog,
		Cache:          cacheClient,
		ProductHandler: productHandler,
		StockHandler:   stockHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.WriteTimeout(), // submissões esperam a API de inventário
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLog.Info("Servidor StockUI ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLog.Error("Servidor encerrado com erro.", err)
		os.Exit(1)
	}
	appLog.Info("Servidor encerrado com sucesso.", nil)
}
