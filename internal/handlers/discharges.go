package handlers

import (
	"fmt"
	"net/http"

	"hospital-app-server/internal/export"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DischargeHandler exposes discharge billing over HTTP.
type DischargeHandler struct {
	Service *services.DischargeService
	Logger  *zap.Logger
}

// NewDischargeHandler creates a new DischargeHandler.
func NewDischargeHandler(service *services.DischargeService, logger *zap.Logger) *DischargeHandler {
	return &DischargeHandler{Service: service, Logger: logger}
}

// CreateDischargeRequest is the discharge body. releaseDate, daySpent and total
// are computed and ignored if sent.
type CreateDischargeRequest struct {
	PatientID      string `json:"patientId" binding:"required"`
	AssignedDoctor string `json:"assignedDoctor" binding:"max=40"`
	Address        string `json:"address" binding:"max=40"`
	Mobile         string `json:"mobile" binding:"omitempty,mobile"`
	Symptoms       string `json:"symptoms" binding:"max=100"`
	AdmitDate      string `json:"admitDate"`
	RoomCharge     int64  `json:"roomCharge" binding:"min=0,max=2147483647"`
	MedicineCost   int64  `json:"medicineCost" binding:"min=0,max=2147483647"`
	DoctorFee      int64  `json:"doctorFee" binding:"min=0,max=2147483647"`
	OtherCharge    int64  `json:"otherCharge" binding:"min=0,max=2147483647"`
}

// UpdateDischargeRequest is a partial edit; omitted fields are kept.
type UpdateDischargeRequest struct {
	AssignedDoctor *string `json:"assignedDoctor" binding:"omitempty,max=40"`
	Address        *string `json:"address" binding:"omitempty,max=40"`
	Mobile         *string `json:"mobile"`
	Symptoms       *string `json:"symptoms" binding:"omitempty,max=100"`
	RoomCharge     *int64  `json:"roomCharge" binding:"omitempty,min=0,max=2147483647"`
	MedicineCost   *int64  `json:"medicineCost" binding:"omitempty,min=0,max=2147483647"`
	DoctorFee      *int64  `json:"doctorFee" binding:"omitempty,min=0,max=2147483647"`
	OtherCharge    *int64  `json:"otherCharge" binding:"omitempty,min=0,max=2147483647"`
}

func (h *DischargeHandler) CreateDischarge(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req CreateDischargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	admitDate, err := parseDate(req.AdmitDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	discharge, err := h.Service.Create(c.Request.Context(), actor, services.CreateDischargeInput{
		PatientID:          req.PatientID,
		AssignedDoctorName: req.AssignedDoctor,
		Address:            req.Address,
		Mobile:             req.Mobile,
		Symptoms:           req.Symptoms,
		AdmitDate:          admitDate,
		Charges: models.Charges{
			RoomCharge:   req.RoomCharge,
			MedicineCost: req.MedicineCost,
			DoctorFee:    req.DoctorFee,
			OtherCharge:  req.OtherCharge,
		},
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Created(c, "Patient discharged successfully", discharge)
}

func (h *DischargeHandler) GetDischarges(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	discharges, err := h.Service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Discharge details fetched successfully", discharges)
}

func (h *DischargeHandler) GetDischargeByID(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	discharge, err := h.Service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Discharge details fetched successfully", discharge)
}

func (h *DischargeHandler) UpdateDischarge(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UpdateDischargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	discharge, err := h.Service.Update(c.Request.Context(), actor, c.Param("id"), services.UpdateDischargeInput{
		AssignedDoctorName: req.AssignedDoctor,
		Address:            req.Address,
		Mobile:             req.Mobile,
		Symptoms:           req.Symptoms,
		RoomCharge:         req.RoomCharge,
		MedicineCost:       req.MedicineCost,
		DoctorFee:          req.DoctorFee,
		OtherCharge:        req.OtherCharge,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Discharge details updated successfully", discharge)
}

func (h *DischargeHandler) DeleteDischarge(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	utils.Success(c, "Discharge details deleted successfully", nil)
}

// GetBill returns the patient's latest bill as JSON, or as an Excel workbook
// when called with ?format=xlsx.
func (h *DischargeHandler) GetBill(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	bill, err := h.Service.LatestBill(c.Request.Context(), actor, c.Param("patientId"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		utils.Success(c, "Bill fetched successfully", bill)
	case "xlsx":
		data, err := export.BillWorkbook(bill.Discharge, bill.PatientName)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.BillFilename(bill.Discharge)))
		c.Data(http.StatusOK, xlsxContentType, data)
	default:
		utils.BadRequest(c, "format must be json or xlsx")
	}
}
