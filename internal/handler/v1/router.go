package v1

import (
	"net/http"

	"github.com/clinicdesk/clinicdesk/pkg/auth"
	"github.com/clinicdesk/clinicdesk/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RouterDeps struct {
	AppointmentHandler *AppointmentHandler
	DoctorHandler      *DoctorHandler
	PatientHandler     *PatientHandler
	AuthHandler        *AuthHandler

	JWTManager *auth.JWTManager
	Collector  *metrics.Collector
	Logger     *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		Recovery(deps.Logger),
		RequestID(),
		RequestLogger(deps.Logger),
		Metrics(deps.Collector),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/refresh", deps.AuthHandler.Refresh)
		authGroup.POST("/change-password", Authenticate(deps.JWTManager), deps.AuthHandler.ChangePassword)
	}

	protected := api.Group("", Authenticate(deps.JWTManager))

	appointments := protected.Group("/appointments")
	{
		appointments.POST("", deps.AppointmentHandler.Schedule)
		appointments.GET("", deps.AppointmentHandler.List)
		appointments.GET("/today", deps.AppointmentHandler.ListToday)
		appointments.GET("/upcoming", deps.AppointmentHandler.ListUpcoming)
		appointments.GET("/statistics", deps.AppointmentHandler.Statistics)
		appointments.GET("/status/:status", deps.AppointmentHandler.ListByStatus)
		appointments.GET("/doctor/:doctorId", deps.AppointmentHandler.ListByDoctor)
		appointments.GET("/doctor/:doctorId/availability", deps.AppointmentHandler.AvailableSlots)
		appointments.GET("/patient/:patientId", deps.AppointmentHandler.ListByPatient)

		appointments.GET("/:id", deps.AppointmentHandler.Get)
		appointments.PUT("/:id", deps.AppointmentHandler.Reschedule)
		appointments.DELETE("/:id", deps.AppointmentHandler.Delete)
		appointments.POST("/:id/confirm", deps.AppointmentHandler.Confirm)
		appointments.POST("/:id/attend", deps.AppointmentHandler.MarkAttended)
		appointments.POST("/:id/no-show", deps.AppointmentHandler.MarkNoShow)
		appointments.POST("/:id/cancel", deps.AppointmentHandler.Cancel)
		appointments.POST("/:id/reminder", deps.AppointmentHandler.SendReminder)
		appointments.POST("/:id/resend-confirmation", deps.AppointmentHandler.ResendConfirmation)
	}

	doctors := protected.Group("/doctors")
	{
		doctors.POST("", deps.DoctorHandler.Create)
		doctors.GET("", deps.DoctorHandler.List)
		doctors.GET("/specialities", deps.DoctorHandler.Specialities)
		doctors.GET("/document/:document", deps.DoctorHandler.GetByDocument)
		doctors.GET("/:id", deps.DoctorHandler.Get)
		doctors.PUT("/:id", deps.DoctorHandler.Update)
		doctors.DELETE("/:id", deps.DoctorHandler.Delete)
	}

	patients := protected.Group("/patients")
	{
		patients.POST("", deps.PatientHandler.Create)
		patients.GET("", deps.PatientHandler.List)
		patients.GET("/document/:document", deps.PatientHandler.GetByDocument)
		patients.GET("/:id", deps.PatientHandler.Get)
		patients.PUT("/:id", deps.PatientHandler.Update)
		patients.DELETE("/:id", deps.PatientHandler.Delete)
	}

	return r
}
