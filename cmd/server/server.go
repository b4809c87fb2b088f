package main

import (
	"fmt"
	"log"
	"net/http"

	"erpchat/config"
	"erpchat/db"
	"erpchat/handlers"
	"erpchat/services"
	"erpchat/services/agent"
	"erpchat/services/kpi"
	"erpchat/services/llm"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	sessionRepo, err := db.NewPostgresSessionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize session database: %v", err)
	}
	defer sessionRepo.Close()

	productRepo, err := db.NewPostgresProductRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize product database: %v", err)
	}
	defer productRepo.Close()

	saleRepo, err := db.NewPostgresSaleRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize sales database: %v", err)
	}
	defer saleRepo.Close()

	invoiceRepo, err := db.NewPostgresInvoiceRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize invoice database: %v", err)
	}
	defer invoiceRepo.Close()

	client, err := newLLMClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	guardrail := kpi.Guardrail{Threshold: cfg.RecordThreshold}
	counterService := kpi.NewCounterService(productRepo, saleRepo, invoiceRepo)
	productService := kpi.NewProductService(productRepo, guardrail)
	salesService := kpi.NewSalesService(saleRepo, guardrail)
	invoiceService := kpi.NewInvoiceService(invoiceRepo, guardrail)

	registry := agent.NewRegistry(
		agent.NewCountRecordsTool(counterService),
		agent.NewGetProductsTool(productService),
		agent.NewGetSalesTool(salesService),
		agent.NewGetInvoicesTool(invoiceService),
	)

	sessionService := services.NewSessionService(sessionRepo)
	agentService := agent.NewService(client, registry, sessionService, cfg.MaxIterations, cfg.LLMTemperature)
	chatHandler := handlers.NewChatHandler(agentService, sessionService)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	chatHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.LLMModel), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
