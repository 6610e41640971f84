package models

import (
	"errors"
	"math"
	"time"
)

// MaxCharge is the largest accepted value of a single bill component.
const MaxCharge = math.MaxInt32

var (
	// ErrNegativeCharge is returned when a bill component is below zero.
	ErrNegativeCharge = errors.New("charges must be non-negative")
	// ErrChargeTooLarge is returned when a bill component exceeds MaxCharge.
	ErrChargeTooLarge = errors.New("charges must not exceed 2147483647")
	// ErrBillOverflow is returned when a total does not fit in an int64.
	ErrBillOverflow = errors.New("bill total is too large")
)

// Charges are the four billed components of a discharge. RoomCharge is per day.
type Charges struct {
	RoomCharge   int64 `gorm:"not null;default:0" json:"roomCharge"`
	MedicineCost int64 `gorm:"not null;default:0" json:"medicineCost"`
	DoctorFee    int64 `gorm:"not null;default:0" json:"doctorFee"`
	OtherCharge  int64 `gorm:"not null;default:0" json:"otherCharge"`
}

// Validate rejects components outside [0, MaxCharge].
func (c Charges) Validate() error {
	for _, v := range []int64{c.RoomCharge, c.MedicineCost, c.DoctorFee, c.OtherCharge} {
		if v < 0 {
			return ErrNegativeCharge
		}
		if v > MaxCharge {
			return ErrChargeTooLarge
		}
	}
	return nil
}

// Total is room_charge * days + doctor_fee + medicine_cost + other_charge.
func (c Charges) Total(days int64) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if days < 0 {
		days = 0
	}
	fixed := c.DoctorFee + c.MedicineCost + c.OtherCharge
	if days > 0 && c.RoomCharge > (math.MaxInt64-fixed)/days {
		return 0, ErrBillOverflow
	}
	return c.RoomCharge*days + fixed, nil
}

// Bill is the computed part of a discharge.
type Bill struct {
	ReleaseDate time.Time
	DaySpent    int64
	Total       int64
}

// Today truncates t to midnight UTC of its calendar date.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from one date to another, clamped at zero.
func DaysBetween(from, to time.Time) int64 {
	days := (Today(to).Unix() - Today(from).Unix()) / 86400
	if days < 0 {
		return 0
	}
	return days
}

// CalculateBill releases the patient on today's date and prices the stay.
func CalculateBill(admitDate, today time.Time, charges Charges) (Bill, error) {
	days := DaysBetween(admitDate, today)
	total, err := charges.Total(days)
	if err != nil {
		return Bill{}, err
	}
	return Bill{
		ReleaseDate: Today(today),
		DaySpent:    days,
		Total:       total,
	}, nil
}

// DischargeDetails is the final bill of an admission.
type DischargeDetails struct {
	BaseModel
	PatientID          string    `gorm:"size:36;index;not null" json:"patientId"`
	AssignedDoctorName string    `gorm:"size:40" json:"assignedDoctor"`
	Address            string    `gorm:"size:40" json:"address"`
	Mobile             string    `gorm:"size:20" json:"mobile"`
	Symptoms           string    `gorm:"size:100" json:"symptoms"`
	AdmitDate          time.Time `gorm:"type:date;not null" json:"admitDate"`
	ReleaseDate        time.Time `gorm:"type:date;not null" json:"releaseDate"`
	DaySpent           int64     `gorm:"not null" json:"daySpent"`
	Charges            `gorm:"embedded"`
	Total              int64 `gorm:"not null" json:"total"`
}

// TableName keeps the table name stable regardless of pluralisation rules.
func (DischargeDetails) TableName() string {
	return "discharge_details"
}

// ApplyBill fills in the computed fields from AdmitDate and the charges. On
// error d is left unchanged.
func (d *DischargeDetails) ApplyBill(today time.Time) error {
	bill, err := CalculateBill(d.AdmitDate, today, d.Charges)
	if err != nil {
		return err
	}
	d.ReleaseDate = bill.ReleaseDate
	d.DaySpent = bill.DaySpent
	d.Total = bill.Total
	return nil
}

// Recalculate refreshes Total after a charge changed, keeping the stored stay length.
func (d *DischargeDetails) Recalculate() error {
	total, err := d.Charges.Total(d.DaySpent)
	if err != nil {
		return err
	}
	d.Total = total
	return nil
}
