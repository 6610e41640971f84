package handlers

import (
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes the appointment lifecycle over HTTP.
type AppointmentHandler struct {
	Service *services.AppointmentService
	Logger  *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *services.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: service, Logger: logger}
}

// CreateAppointmentRequest is the booking body. Patients omit patientId.
type CreateAppointmentRequest struct {
	PatientID   string `json:"patientId"`
	Description string `json:"description" binding:"required,max=500"`
	Emergency   bool   `json:"emergency"`
}

// UpdateAppointmentRequest is a partial edit; omitted fields are kept.
type UpdateAppointmentRequest struct {
	Description *string `json:"description" binding:"omitempty,max=500"`
	Emergency   *bool   `json:"emergency"`
}

// ApproveRequest is the approval body. An empty body previews the appointment.
type ApproveRequest struct {
	Confirm         bool   `json:"confirm"`
	AppointmentDate string `json:"appointmentDate"`
	DoctorID        string `json:"doctorId"`
}

// RejectRequest is the rejection body. An empty body previews the appointment.
type RejectRequest struct {
	Confirm bool `json:"confirm"`
}

// UpdateStatusRequest sets the status directly.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Service.Create(c.Request.Context(), actor, services.CreateAppointmentInput{
		PatientID:   req.PatientID,
		Description: req.Description,
		Emergency:   req.Emergency,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments lists what the caller may see: everything for staff, assigned
// appointments for doctors and their own for patients.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	appointments, err := h.Service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Appointments fetched successfully", appointments)
}

func (h *AppointmentHandler) GetPendingAppointments(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	appointments, err := h.Service.Pending(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Pending appointments fetched successfully", appointments)
}

func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	appointment, err := h.Service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Service.Update(c.Request.Context(), actor, c.Param("id"), services.UpdateAppointmentInput{
		Description: req.Description,
		Emergency:   req.Emergency,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Appointment deleted successfully", nil)
}

func (h *AppointmentHandler) ApproveAppointment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ApproveRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	date, err := parseDate(req.AppointmentDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	decision, err := h.Service.Approve(c.Request.Context(), actor, c.Param("id"), services.ApproveInput{
		Confirm:         req.Confirm,
		AppointmentDate: date,
		DoctorID:        req.DoctorID,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, decision.Message, decision)
}

func (h *AppointmentHandler) RejectAppointment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req RejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	decision, err := h.Service.Reject(c.Request.Context(), actor, c.Param("id"), req.Confirm)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, decision.Message, decision)
}

func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appointment)
}
