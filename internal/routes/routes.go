package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/okoagari/internal/auth"
	"github.com/example/okoagari/internal/config"
	"github.com/example/okoagari/internal/handlers"
	"github.com/example/okoagari/internal/middleware"
	"github.com/example/okoagari/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	codes := auth.NewCodeStore(cfg.OTPTTL)
	mailer := services.NewMailer(services.MailerConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	mpesa := services.NewMpesaService(cfg)

	authHandler := handlers.NewAuthHandler(db, cfg, codes, mailer)
	vehicleHandler := handlers.NewVehicleHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	bookingHandler := handlers.NewBookingHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db, mpesa)

	protected := middleware.AuthMiddleware(cfg)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": "welcome to the okoa gari api"})
	})

	authGroup := app.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/otp", authHandler.VerifyOTP)
	authGroup.Get("/me", protected, authHandler.Me)
	authGroup.Patch("/user", protected, authHandler.UpdateUser)
	authGroup.Get("/mechanics", protected, authHandler.ListMechanics)
	authGroup.Delete("/users/:id", protected, authHandler.DeleteUser)

	cars := app.Group("/cars")
	cars.Post("/mine", protected, vehicleHandler.CreateVehicle)
	cars.Get("/mine", protected, vehicleHandler.ListVehicles)
	cars.Put("/mine/:id", protected, vehicleHandler.UpdateVehicle)
	cars.Delete("/mine/:id", protected, vehicleHandler.DeleteVehicle)

	svcs := app.Group("/services")
	svcs.Get("/all", serviceHandler.ListAllServices)
	svcs.Post("/pay", paymentHandler.Pay)
	svcs.Post("/", protected, serviceHandler.CreateService)
	svcs.Get("/", protected, serviceHandler.ListServices)
	svcs.Put("/:id", protected, serviceHandler.UpdateService)
	svcs.Delete("/:id", protected, serviceHandler.DeleteService)

	bookings := app.Group("/service_user", protected)
	bookings.Post("/add", bookingHandler.CreateBooking)
	bookings.Get("/all", bookingHandler.ListMyBookings)
	bookings.Get("/my_requests", bookingHandler.ListIncomingRequests)
	bookings.Post("/add_review", reviewHandler.CreateReview)
	bookings.Get("/reviews", reviewHandler.ListReviews)
}
