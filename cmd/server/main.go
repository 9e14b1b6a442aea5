package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/isahbella007/whatsapp-first-erp/config"
	"github.com/isahbella007/whatsapp-first-erp/internal/assistant"
	"github.com/isahbella007/whatsapp-first-erp/internal/clarify"
	"github.com/isahbella007/whatsapp-first-erp/internal/command"
	"github.com/isahbella007/whatsapp-first-erp/internal/customer"
	"github.com/isahbella007/whatsapp-first-erp/internal/handler"
	"github.com/isahbella007/whatsapp-first-erp/internal/inventory"
	"github.com/isahbella007/whatsapp-first-erp/internal/match"
	"github.com/isahbella007/whatsapp-first-erp/internal/messaging"
	"github.com/isahbella007/whatsapp-first-erp/internal/metrics"
	"github.com/isahbella007/whatsapp-first-erp/internal/middleware"
	"github.com/isahbella007/whatsapp-first-erp/internal/parser"
	"github.com/isahbella007/whatsapp-first-erp/internal/sale"
	"github.com/isahbella007/whatsapp-first-erp/internal/store"
	"github.com/isahbella007/whatsapp-first-erp/pkg/database"
)

const demoMerchant = "demo"

func main() {
	// 1. Load Configuration
	cfg := config.LoadConfig()

	// 2. Connect to Database
	db, err := database.Connect(cfg.Database, !cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Auto-Migrate Models
	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully.")

	// 3a. Seed Data
	if cfg.Server.SeedDemo {
		if err := database.SeedDemoMerchant(db, demoMerchant); err != nil {
			log.Printf("Warning: demo seed failed: %v", err)
		}
	}

	// 4. Build the ledger
	s := store.New(db)
	reg := metrics.NewRegistry()
	matcher := match.NewLocal(s)
	thresholds := match.Thresholds{
		Product:  cfg.Matching.ProductThreshold,
		Customer: cfg.Matching.CustomerThreshold,
		Exact:    cfg.Matching.ExactThreshold,
	}

	commands := command.NewRegistry()
	assistant.Register(commands, assistant.Services{
		Inventory: inventory.NewService(s, matcher, thresholds, cfg.Limits.LowStockDefault),
		Customers: customer.NewService(s, matcher, thresholds),
		Sales:     sale.NewEngine(s, matcher, thresholds),
		InventoryFormat: inventory.Formatter{
			Currency:       cfg.Reply.Currency,
			LowStockMarker: cfg.Reply.LowStockMarker,
			LowStockLevel:  cfg.Limits.LowStockDefault,
		},
		CustomerFormat: customer.Formatter{Currency: cfg.Reply.Currency},
		SaleFormat:     sale.Formatter{Currency: cfg.Reply.Currency},
		Observer:       reg,
	})

	var p parser.Parser = parser.Static{}
	if cfg.Parser.URL != "" {
		p = parser.NewHTTP(cfg.Parser.URL, cfg.Parser.Timeout)
	} else {
		log.Println("Warning: PARSER_URL not set, messages must carry pre-parsed intents")
	}

	var gateway messaging.Gateway = messaging.Log{}
	if cfg.Messaging.AMQPURL != "" {
		amqp, err := messaging.DialAMQP(cfg.Messaging.AMQPURL, cfg.Messaging.Queue)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer amqp.Close()
		gateway = amqp
	}

	a := assistant.New(assistant.Options{
		Parser:         parser.Limited{Next: p, Max: cfg.Parser.MaxInput},
		Router:         command.NewRouter(commands, reg),
		Clarifications: clarify.NewManager(s),
		Gateway:        gateway,
		Aggregator: command.Aggregator{
			Header:              cfg.Reply.Header,
			ClarificationHeader: cfg.Reply.ClarificationHeader,
		},
		Observer: reg,
	})

	// 5. Initialize Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", middleware.SignatureHeader},
		ExposeHeaders:   []string{"Content-Length", "Retry-After"},
		MaxAge:          12 * time.Hour,
	}))

	// 6. Setup Routes
	messageHandler := &handler.MessageHandler{Assistant: a}
	managerHandler := &handler.ManagerHandler{Assistant: a, Clarifications: s, Customers: s}
	inventoryHandler := &handler.InventoryHandler{Products: s, LowStockLevel: cfg.Limits.LowStockDefault}
	billingHandler := &handler.BillingHandler{Sales: s}
	limiter := middleware.NewRateLimiter(cfg.Limits.MessagesPerMinute)

	merchantRoutes := r.Group("/api/v1/merchants/:merchant")
	{
		merchantRoutes.POST("/messages", limiter.Middleware(), middleware.WebhookSignature(cfg.Server.WebhookSecret), messageHandler.ReceiveMessage)
		merchantRoutes.POST("/commands", limiter.Middleware(), middleware.WebhookSignature(cfg.Server.WebhookSecret), messageHandler.RunCommands)

		merchantRoutes.GET("/clarifications", managerHandler.ListClarifications)
		merchantRoutes.POST("/clarifications/:id/resolve", managerHandler.ResolveClarification)
		merchantRoutes.POST("/clarifications/:id/cancel", managerHandler.CancelClarification)
		merchantRoutes.GET("/customers", managerHandler.GetCustomers)

		merchantRoutes.GET("/products", inventoryHandler.ListProducts)
		merchantRoutes.GET("/alerts", inventoryHandler.GetLowStockAlerts)

		merchantRoutes.GET("/sales", billingHandler.ListSales)
		merchantRoutes.GET("/sales/:reference", billingHandler.GetSale)
	}

	r.GET("/metrics", gin.WrapH(reg.Handler()))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// 7. Start Server
	port := cfg.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
