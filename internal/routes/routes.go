package routes

import (
	"healthsync-server/internal/chat"
	"healthsync-server/internal/config"
	"healthsync-server/internal/handlers"
	"healthsync-server/internal/middleware"
	"healthsync-server/internal/models"
	"healthsync-server/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	// Core services
	connections := services.NewConnectionService(db)
	prescriptions := services.NewPrescriptionService(db)
	appointments := services.NewAppointmentService(db)
	chats := services.NewChatService(db)

	// Realtime chat relay
	hub := chat.NewHub()
	chatRelay := chat.NewHandler(hub, chats, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	doctorHandler := handlers.NewDoctorHandler(db, connections, prescriptions, appointments)
	patientHandler := handlers.NewPatientHandler(db, connections)
	appointmentHandler := handlers.NewAppointmentHandler(appointments)
	medicationHandler := handlers.NewMedicationHandler(prescriptions)
	healthLogHandler := handlers.NewHealthLogHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)
	chatHandler := handlers.NewChatHandler(chats)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
			authRoutes.POST("/logout", authHandler.Logout)
		}
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		private.GET("/auth/me", authHandler.GetMe)

		// Patient-side routes (caregivers act on behalf of patients)
		patientRoutes := private.Group("/patient")
		patientRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient, models.RoleCaregiver))
		{
			patientRoutes.GET("/doctors", patientHandler.GetDoctors)
			patientRoutes.GET("/my-doctors", patientHandler.GetMyDoctors)
			patientRoutes.POST("/connect", patientHandler.Connect)
			patientRoutes.POST("/request-connection", patientHandler.RequestConnection)
			patientRoutes.GET("/requests", patientHandler.GetMyRequests)
			patientRoutes.DELETE("/requests/:id", patientHandler.CancelRequest)
			patientRoutes.DELETE("/doctors/:doctorId", patientHandler.UnlinkDoctor)
		}

		// Code-based connect lives under /doctor for client compatibility,
		// but the caller is the patient side, so it sits outside the
		// doctor-gated group. /patient/connect is the same handler.
		private.POST("/doctor/connect",
			middleware.RoleAuthMiddleware(models.RolePatient, models.RoleCaregiver),
			patientHandler.Connect)

		// Doctor-side routes: role-gated and restricted to approved doctors
		doctorRoutes := private.Group("/doctor")
		doctorRoutes.Use(
			middleware.RoleAuthMiddleware(models.RoleDoctor),
			middleware.ApprovedDoctorMiddleware(db),
		)
		{
			doctorRoutes.GET("/patients", doctorHandler.GetPatients)
			doctorRoutes.DELETE("/patients/:patientId", doctorHandler.UnlinkPatient)
			doctorRoutes.POST("/generate-code", doctorHandler.GenerateCode)
			doctorRoutes.GET("/patient/:id/logs", doctorHandler.GetPatientLogs)
			doctorRoutes.GET("/appointments", doctorHandler.GetAppointments)
			doctorRoutes.PATCH("/appointments/:id/status", doctorHandler.UpdateAppointmentStatus)
			doctorRoutes.POST("/prescribe", doctorHandler.Prescribe)
			doctorRoutes.GET("/prescriptions", doctorHandler.GetPrescriptions)
			doctorRoutes.PUT("/prescriptions/:id", doctorHandler.UpdatePrescription)
			doctorRoutes.DELETE("/prescriptions/:id", doctorHandler.DeletePrescription)
			doctorRoutes.GET("/requests", doctorHandler.GetRequests)
			doctorRoutes.PUT("/requests/:id", doctorHandler.RespondToRequest)
		}

		// Appointment routes (patient side)
		appointmentRoutes := private.Group("/appointments")
		appointmentRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient, models.RoleCaregiver))
		{
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.PUT("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.DELETE("/:id", appointmentHandler.DeleteAppointment)
		}

		// Medication routes (patient side; prescriptions arrive via /doctor)
		medicationRoutes := private.Group("/medications")
		medicationRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient, models.RoleCaregiver))
		{
			medicationRoutes.GET("", medicationHandler.GetMedications)
			medicationRoutes.POST("", medicationHandler.CreateMedication)
			medicationRoutes.PUT("/:id", medicationHandler.UpdateMedication)
			medicationRoutes.DELETE("/:id", medicationHandler.DeleteMedication)
		}

		// Health log routes
		logRoutes := private.Group("/logs")
		logRoutes.Use(middleware.RoleAuthMiddleware(models.RolePatient, models.RoleCaregiver))
		{
			logRoutes.GET("", healthLogHandler.GetLogs)
			logRoutes.POST("", healthLogHandler.CreateLog)
		}

		// Notification routes
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllAsRead)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkAsRead)
		}

		// Chat: websocket relay plus REST history, both behind the same gate
		chatRoutes := private.Group("/chat")
		{
			chatRoutes.GET("/ws", chatRelay.Serve)
			chatRoutes.GET("/:appointmentId", chatHandler.GetHistory)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
