package routes

import (
	"net/http"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/config"
	"hospital-app-server/internal/handlers"
	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/otp"
	"hospital-app-server/internal/repository"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies is everything the routes need to build their handlers.
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
	OTP    *otp.Issuer
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	utils.RegisterValidators()

	db, logger := deps.DB, deps.Logger
	directory := repository.NewDirectoryRepository(db)

	appointmentService := services.NewAppointmentService(repository.NewAppointmentRepository(db), directory, logger)
	dischargeService := services.NewDischargeService(repository.NewDischargeRepository(db), directory, logger, nil)

	authHandler := handlers.NewAuthHandler(db, deps.Config, deps.OTP, logger)
	userHandler := handlers.NewUserHandler(db, logger)
	doctorHandler := handlers.NewDoctorHandler(db, logger)
	patientHandler := handlers.NewPatientHandler(db, logger)
	receptionistHandler := handlers.NewReceptionistHandler(db, logger)
	medicineHandler := handlers.NewMedicineHandler(db, logger)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, logger)
	dischargeHandler := handlers.NewDischargeHandler(dischargeService, logger)

	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/activate", authHandler.Activate)
			authRoutes.POST("/resend-otp", authHandler.ResendOTP)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(deps.Config), middleware.ActorMiddleware(directory, logger))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		approvalRoutes := private.Group("/users/approval")
		{
			approvalRoutes.GET("", middleware.Authorize(authz.ActionUserApprovalList), userHandler.GetPendingUsers)
			approvalRoutes.POST("/approve", middleware.Authorize(authz.ActionUserApprove), userHandler.ApproveUsers)
			approvalRoutes.DELETE("/:id", middleware.Authorize(authz.ActionUserReject), userHandler.RejectUser)
		}

		read := middleware.Authorize(authz.ActionDirectoryRead)
		write := middleware.Authorize(authz.ActionDirectoryWrite)

		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", read, doctorHandler.GetDoctors)
			doctorRoutes.GET("/departments", read, doctorHandler.GetDepartments)
			doctorRoutes.GET("/:id", read, doctorHandler.GetDoctorByID)
			doctorRoutes.POST("", write, doctorHandler.CreateDoctor)
			doctorRoutes.PATCH("/:id", write, doctorHandler.UpdateDoctor)
			doctorRoutes.DELETE("/:id", write, doctorHandler.DeleteDoctor)
		}

		// Patient records are staff-only; patients reach their own data through /auth/profile.
		patientRoutes := private.Group("/patients")
		patientRoutes.Use(write)
		{
			patientRoutes.GET("", patientHandler.GetPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.PATCH("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", patientHandler.DeletePatient)
		}

		receptionistRoutes := private.Group("/receptionists")
		receptionistRoutes.Use(write)
		{
			receptionistRoutes.GET("", receptionistHandler.GetReceptionists)
			receptionistRoutes.GET("/:id", receptionistHandler.GetReceptionistByID)
			receptionistRoutes.POST("", receptionistHandler.CreateReceptionist)
			receptionistRoutes.PATCH("/:id", receptionistHandler.UpdateReceptionist)
			receptionistRoutes.DELETE("/:id", receptionistHandler.DeleteReceptionist)
		}

		medicineRoutes := private.Group("/medicines")
		{
			medicineRoutes.GET("", read, medicineHandler.GetMedicines)
			medicineRoutes.GET("/:id", read, medicineHandler.GetMedicineByID)
			medicineRoutes.POST("", write, medicineHandler.CreateMedicine)
			medicineRoutes.PATCH("/:id", write, medicineHandler.UpdateMedicine)
			medicineRoutes.DELETE("/:id", write, medicineHandler.DeleteMedicine)
		}

		// Appointment and discharge permissions are enforced by the services.
		RegisterAppointmentRoutes(private, appointmentHandler)
		RegisterDischargeRoutes(private, dischargeHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}

// RegisterAppointmentRoutes mounts the appointment endpoints under group.
func RegisterAppointmentRoutes(group *gin.RouterGroup, h *handlers.AppointmentHandler) {
	appointmentRoutes := group.Group("/appointments")
	{
		appointmentRoutes.GET("", h.GetAppointments)
		appointmentRoutes.POST("", h.CreateAppointment)
		appointmentRoutes.GET("/pending", h.GetPendingAppointments)
		appointmentRoutes.GET("/:id", h.GetAppointmentByID)
		appointmentRoutes.PATCH("/:id", h.UpdateAppointment)
		appointmentRoutes.DELETE("/:id", h.DeleteAppointment)
		appointmentRoutes.POST("/:id/approve", h.ApproveAppointment)
		appointmentRoutes.POST("/:id/reject", h.RejectAppointment)
		appointmentRoutes.POST("/:id/update-status", h.UpdateAppointmentStatus)
	}
}

// RegisterDischargeRoutes mounts the discharge and bill endpoints under group.
func RegisterDischargeRoutes(group *gin.RouterGroup, h *handlers.DischargeHandler) {
	dischargeRoutes := group.Group("/discharge-details")
	{
		dischargeRoutes.GET("", h.GetDischarges)
		dischargeRoutes.POST("", h.CreateDischarge)
		dischargeRoutes.GET("/patient/:patientId/bill", h.GetBill)
		dischargeRoutes.GET("/:id", h.GetDischargeByID)
		dischargeRoutes.PATCH("/:id", h.UpdateDischarge)
		dischargeRoutes.DELETE("/:id", h.DeleteDischarge)
	}
}
