package main

import (
	"log"
	"path/filepath"
	"strings"

	"heladeria-backend/internal/admin"
	"heladeria-backend/internal/auth"
	"heladeria-backend/internal/config"
	"heladeria-backend/internal/database"
	"heladeria-backend/internal/models"
	"heladeria-backend/internal/reports"
	"heladeria-backend/internal/tickets"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Sin archivo .env, se usan las variables del entorno")
	}

	cfg := config.Load()
	database.Init(cfg)

	limiter := auth.NewPinLimiter(database.DB)
	ticketService := tickets.NewService(database.DB)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Error inesperado:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// Público
	api.Post("/auth/login", auth.LoginHandler(cfg, limiter))
	api.Post("/auth/logout", auth.LogoutHandler())
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))

	// Con sesión
	protected := api.Group("")
	protected.Use(auth.RequireSession(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Catálogo visible para el mostrador
	protected.Get("/vendors", admin.ListVendorsHandler())
	protected.Get("/vendors/search", admin.SearchVendorsHandler())
	protected.Get("/products", admin.ListProductsHandler())
	protected.Get("/settings", admin.GetSettingsHandler())

	// Ciclo de la boleta
	protected.Post("/tickets/open", tickets.OpenTicketHandler(ticketService))
	protected.Get("/tickets/:id", tickets.TicketSummaryHandler(ticketService))
	protected.Put("/tickets/:id/order", tickets.SaveOrderHandler(ticketService))
	protected.Put("/tickets/:id/leftovers", tickets.SetLeftoversHandler(ticketService))
	protected.Post("/tickets/:id/close", tickets.CloseTicketHandler(ticketService))
	protected.Post("/tickets/:id/printed", tickets.MarkPrintedHandler(ticketService))
	protected.Get("/vendors/:id/history", tickets.VendorHistoryHandler(ticketService))

	// Solo admin
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/users", auth.CreateUserHandler())

	adminRoutes.Post("/vendors", admin.CreateVendorHandler())
	adminRoutes.Put("/vendors/:id", admin.UpdateVendorHandler())
	adminRoutes.Put("/vendors/:id/favorite", admin.ToggleVendorFavoriteHandler())

	adminRoutes.Get("/products", admin.ListProductsWithPricesHandler())
	adminRoutes.Post("/products", admin.CreateProductHandler())
	adminRoutes.Put("/products/:id", admin.UpdateProductHandler())

	adminRoutes.Post("/prices", admin.SetPriceHandler())
	adminRoutes.Put("/settings", admin.UpdateSettingsHandler())

	adminRoutes.Get("/reports/daily", reports.DailyReportHandler())
	adminRoutes.Get("/reports/export.csv", reports.ExportCsvHandler())
	adminRoutes.Get("/reports/export.xlsx", reports.ExportXlsxHandler())

	// Páginas protegidas del frontend: sin sesión se redirige a /login
	// con la ruta original en "next"
	app.Use("/admin", auth.PageGuard(cfg, true))
	for _, path := range []string{"/pedido", "/cierre", "/boleta"} {
		app.Use(path, auth.PageGuard(cfg, false))
	}

	app.Static("/", cfg.StaticDir)
	app.Get("/*", func(c *fiber.Ctx) error {
		// SPA: cualquier ruta de página sirve el index y el frontend enruta
		return c.SendFile(filepath.Join(cfg.StaticDir, "index.html"))
	})

	log.Println("Servidor escuchando en el puerto", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
