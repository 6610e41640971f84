package handlers

import (
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MedicineHandler manages the pharmacy inventory.
type MedicineHandler struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewMedicineHandler creates a new MedicineHandler.
func NewMedicineHandler(db *gorm.DB, logger *zap.Logger) *MedicineHandler {
	return &MedicineHandler{DB: db, Logger: logger}
}

type MedicineRequest struct {
	Name          string  `json:"name" binding:"required,max=100"`
	Dosage        string  `json:"dosage" binding:"max=50"`
	Price         float64 `json:"price" binding:"min=0"`
	StockQuantity uint    `json:"stockQuantity"`
	Description   string  `json:"description"`
}

type UpdateMedicineRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Dosage        *string  `json:"dosage" binding:"omitempty,max=50"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	StockQuantity *uint    `json:"stockQuantity"`
	Description   *string  `json:"description"`
}

// GetMedicines lists medicines by name, optionally filtered by ?search=.
func (h *MedicineHandler) GetMedicines(c *gin.Context) {
	query := h.DB.Order("name asc")
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var medicines []models.Medicine
	if err := query.Find(&medicines).Error; err != nil {
		dbError(c, h.Logger, err, "Medicines")
		return
	}
	utils.Success(c, "Medicines fetched successfully", medicines)
}

func (h *MedicineHandler) GetMedicineByID(c *gin.Context) {
	var medicine models.Medicine
	if err := h.DB.First(&medicine, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Medicine")
		return
	}
	utils.Success(c, "Medicine fetched successfully", medicine)
}

func (h *MedicineHandler) CreateMedicine(c *gin.Context) {
	var req MedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if !h.nameAvailable(c, req.Name, "") {
		return
	}

	medicine := models.Medicine{
		Name:          req.Name,
		Dosage:        req.Dosage,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Description:   req.Description,
	}
	if err := h.DB.Create(&medicine).Error; err != nil {
		dbError(c, h.Logger, err, "Medicine")
		return
	}
	utils.Created(c, "Medicine created successfully", medicine)
}

func (h *MedicineHandler) UpdateMedicine(c *gin.Context) {
	var req UpdateMedicineRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var medicine models.Medicine
	if err := h.DB.First(&medicine, "id = ?", c.Param("id")).Error; err != nil {
		dbError(c, h.Logger, err, "Medicine")
		return
	}

	if req.Name != nil && *req.Name != medicine.Name {
		if !h.nameAvailable(c, *req.Name, medicine.ID) {
			return
		}
		medicine.Name = *req.Name
	}
	if req.Dosage != nil {
		medicine.Dosage = *req.Dosage
	}
	if req.Price != nil {
		medicine.Price = *req.Price
	}
	if req.StockQuantity != nil {
		medicine.StockQuantity = *req.StockQuantity
	}
	if req.Description != nil {
		medicine.Description = *req.Description
	}

	if err := h.DB.Save(&medicine).Error; err != nil {
		dbError(c, h.Logger, err, "Medicine")
		return
	}
	utils.Success(c, "Medicine updated successfully", medicine)
}

func (h *MedicineHandler) DeleteMedicine(c *gin.Context) {
	res := h.DB.Delete(&models.Medicine{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		dbError(c, h.Logger, res.Error, "Medicine")
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Medicine not found")
		return
	}
	utils.Success(c, "Medicine deleted successfully", nil)
}

// nameAvailable writes a 409 and returns false when another medicine has name.
func (h *MedicineHandler) nameAvailable(c *gin.Context, name, exceptID string) bool {
	query := h.DB.Model(&models.Medicine{}).Where("name = ?", name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		dbError(c, h.Logger, err, "Medicine")
		return false
	}
	if count > 0 {
		utils.Conflict(c, "A medicine with this name already exists")
		return false
	}
	return true
}
