package models

import (
	"regexp"
	"time"

	"gorm.io/gorm"
)

// Department is a doctor's specialty.
type Department string

const (
	DepartmentCardiologist       Department = "Cardiologist"
	DepartmentDermatologists     Department = "Dermatologists"
	DepartmentEmergency          Department = "Emergency Medicine Specialists"
	DepartmentAllergists         Department = "Allergists/Immunologists"
	DepartmentAnesthesiologists  Department = "Anesthesiologists"
	DepartmentColonRectalSurgery Department = "Colon and Rectal Surgeons"
)

// Departments lists every accepted department in display order.
var Departments = []Department{
	DepartmentCardiologist,
	DepartmentDermatologists,
	DepartmentEmergency,
	DepartmentAllergists,
	DepartmentAnesthesiologists,
	DepartmentColonRectalSurgery,
}

// Valid reports whether d is one of Departments.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

var mobilePattern = regexp.MustCompile(`^\+?1?\d{9,15}$`)

// ValidMobile reports whether s looks like a phone number: optional +, optional
// leading 1, then 9 to 15 digits.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// Doctor is the staff profile attached to a user with the doctor role.
type Doctor struct {
	BaseModel
	UserID     string     `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Address    string     `gorm:"size:40" json:"address"`
	Mobile     string     `gorm:"size:20" json:"mobile"`
	Department Department `gorm:"size:50;default:'Cardiologist'" json:"department"`
	Status     bool       `gorm:"default:false" json:"status"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}

// Name is the doctor's display name; User must be loaded.
func (d *Doctor) Name() string {
	return d.User.FullName()
}

// Patient is the profile attached to a user with the patient role.
type Patient struct {
	BaseModel
	UserID           string    `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Address          string    `gorm:"size:40" json:"address"`
	Mobile           string    `gorm:"size:20" json:"mobile"`
	Symptoms         string    `gorm:"size:100;not null" json:"symptoms"`
	AssignedDoctorID *string   `gorm:"size:36;index" json:"assignedDoctorId"`
	AdmitDate        time.Time `gorm:"type:date" json:"admitDate"`
	Status           bool      `gorm:"default:false" json:"status"`

	User           User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	AssignedDoctor *Doctor `gorm:"foreignKey:AssignedDoctorID;constraint:OnDelete:SET NULL" json:"-"`
}

// BeforeCreate stamps the admission date when the caller left it empty.
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.AdmitDate.IsZero() {
		p.AdmitDate = Today(time.Now())
	}
	return p.BaseModel.BeforeCreate(tx)
}

// Name is the patient's display name; User must be loaded.
func (p *Patient) Name() string {
	return p.User.FullName()
}

// Receptionist is the front-desk staff profile.
type Receptionist struct {
	BaseModel
	UserID  string `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Address string `gorm:"size:40" json:"address"`
	Mobile  string `gorm:"size:20" json:"mobile"`
	Status  bool   `gorm:"default:false" json:"status"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
}

// Medicine is an item of the pharmacy inventory.
type Medicine struct {
	BaseModel
	Name          string  `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Dosage        string  `gorm:"size:50" json:"dosage"`
	Price         float64 `gorm:"type:decimal(10,2)" json:"price"`
	StockQuantity uint    `json:"stockQuantity"`
	Description   string  `gorm:"type:text" json:"description,omitempty"`
}
