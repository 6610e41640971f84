package repository

import (
	"context"
	"sync"
	"time"

	"hospital-app-server/internal/models"
)

// MemoryStore keeps appointments, discharges and profiles in process. A single
// mutex serialises every operation, which gives the conditional updates and the
// discharge purge the same atomicity the SQL repositories get from the database.
// It backs the service and handler tests; the server always runs on gorm.
type MemoryStore struct {
	mu sync.Mutex

	appointments     map[string]models.Appointment
	appointmentOrder []string
	discharges       map[string]models.DischargeDetails
	dischargeOrder   []string
	doctors          map[string]models.Doctor
	patients         map[string]models.Patient
	receptionists    map[string]models.Receptionist

	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appointments:  map[string]models.Appointment{},
		discharges:    map[string]models.DischargeDetails{},
		doctors:       map[string]models.Doctor{},
		patients:      map[string]models.Patient{},
		receptionists: map[string]models.Receptionist{},
		now:           time.Now,
	}
}

// Appointments returns the store's AppointmentRepository.
func (s *MemoryStore) Appointments() AppointmentRepository { return memoryAppointments{s} }

// Discharges returns the store's DischargeRepository.
func (s *MemoryStore) Discharges() DischargeRepository { return memoryDischarges{s} }

// Directory returns the store's DirectoryRepository.
func (s *MemoryStore) Directory() DirectoryRepository { return memoryDirectory{s} }

// AddDoctor registers a doctor profile, assigning ids when missing.
func (s *MemoryStore) AddDoctor(d models.Doctor) models.Doctor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&d.BaseModel)
	s.stamp(&d.User.BaseModel)
	d.UserID = d.User.ID
	s.doctors[d.ID] = d
	return d
}

// AddPatient registers a patient profile, assigning ids when missing.
func (s *MemoryStore) AddPatient(p models.Patient) models.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&p.BaseModel)
	s.stamp(&p.User.BaseModel)
	p.UserID = p.User.ID
	s.patients[p.ID] = p
	return p
}

// AddReceptionist registers a receptionist profile, assigning ids when missing.
func (s *MemoryStore) AddReceptionist(r models.Receptionist) models.Receptionist {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&r.BaseModel)
	s.stamp(&r.User.BaseModel)
	r.UserID = r.User.ID
	s.receptionists[r.ID] = r
	return r
}

func (s *MemoryStore) stamp(base *models.BaseModel) {
	if base.ID == "" {
		base.ID = models.NewID()
	}
	now := s.now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func removeID(order []string, id string) []string {
	for i, existing := range order {
		if existing == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

type memoryAppointments struct{ s *MemoryStore }

func (m memoryAppointments) Create(_ context.Context, a *models.Appointment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.stamp(&a.BaseModel)
	m.s.appointments[a.ID] = *a
	m.s.appointmentOrder = append(m.s.appointmentOrder, a.ID)
	return nil
}

func (m memoryAppointments) FindByID(_ context.Context, id string) (*models.Appointment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m memoryAppointments) List(_ context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []models.Appointment{}
	for _, id := range m.s.appointmentOrder {
		a := m.s.appointments[id]
		if filter.PatientID != "" && a.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorID != "" && (a.DoctorID == nil || *a.DoctorID != filter.DoctorID) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

func (m memoryAppointments) Update(_ context.Context, a *models.Appointment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.appointments[a.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Description = a.Description
	stored.Emergency = a.Emergency
	m.s.stamp(&stored.BaseModel)
	m.s.appointments[a.ID] = stored
	return nil
}

func (m memoryAppointments) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.appointments[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.appointments, id)
	m.s.appointmentOrder = removeID(m.s.appointmentOrder, id)
	return nil
}

func (m memoryAppointments) Approve(_ context.Context, id, doctorID string, date time.Time) (*models.Appointment, error) {
	return m.transition(id, func(a *models.Appointment) bool {
		if a.Status.Processed() {
			return false
		}
		a.Status = models.StatusScheduled
		a.DoctorID = &doctorID
		a.AppointmentDate = &date
		return true
	})
}

func (m memoryAppointments) Reject(_ context.Context, id string) (*models.Appointment, error) {
	return m.transition(id, func(a *models.Appointment) bool {
		if a.Status.Processed() {
			return false
		}
		a.Status = models.StatusRejected
		return true
	})
}

func (m memoryAppointments) SetStatus(_ context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error) {
	return m.transition(id, func(a *models.Appointment) bool {
		if a.Status != from {
			return false
		}
		a.Status = to
		return true
	})
}

func (m memoryAppointments) transition(id string, apply func(*models.Appointment) bool) (*models.Appointment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !apply(&a) {
		return &a, ErrStateConflict
	}
	m.s.stamp(&a.BaseModel)
	m.s.appointments[id] = a
	return &a, nil
}

type memoryDischarges struct{ s *MemoryStore }

func (m memoryDischarges) CreateWithPurge(_ context.Context, d *models.DischargeDetails) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var completed []string
	for _, id := range m.s.appointmentOrder {
		a := m.s.appointments[id]
		if a.PatientID == d.PatientID && a.Status == models.StatusCompleted {
			completed = append(completed, id)
		}
	}
	if len(completed) == 0 {
		return 0, ErrNoCompletedAppointments
	}

	m.s.stamp(&d.BaseModel)
	m.s.discharges[d.ID] = *d
	m.s.dischargeOrder = append(m.s.dischargeOrder, d.ID)

	for _, id := range completed {
		delete(m.s.appointments, id)
		m.s.appointmentOrder = removeID(m.s.appointmentOrder, id)
	}
	return int64(len(completed)), nil
}

func (m memoryDischarges) FindByID(_ context.Context, id string) (*models.DischargeDetails, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.discharges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// List returns newest first, matching the SQL repository.
func (m memoryDischarges) List(_ context.Context, filter DischargeFilter) ([]models.DischargeDetails, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	result := []models.DischargeDetails{}
	for i := len(m.s.dischargeOrder) - 1; i >= 0; i-- {
		d := m.s.discharges[m.s.dischargeOrder[i]]
		if filter.PatientID != "" && d.PatientID != filter.PatientID {
			continue
		}
		if filter.AssignedDoctorName != "" && d.AssignedDoctorName != filter.AssignedDoctorName {
			continue
		}
		result = append(result, d)
	}
	return result, nil
}

func (m memoryDischarges) LatestForPatient(ctx context.Context, patientID string) (*models.DischargeDetails, error) {
	list, err := m.List(ctx, DischargeFilter{PatientID: patientID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

func (m memoryDischarges) Update(_ context.Context, d *models.DischargeDetails) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.discharges[d.ID]; !ok {
		return ErrNotFound
	}
	m.s.stamp(&d.BaseModel)
	m.s.discharges[d.ID] = *d
	return nil
}

func (m memoryDischarges) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.discharges[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.discharges, id)
	m.s.dischargeOrder = removeID(m.s.dischargeOrder, id)
	return nil
}

type memoryDirectory struct{ s *MemoryStore }

func (m memoryDirectory) FindDoctor(_ context.Context, id string) (*models.Doctor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m memoryDirectory) FindPatient(_ context.Context, id string) (*models.Patient, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m memoryDirectory) ProfileID(_ context.Context, role models.Role, userID string) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	switch role {
	case models.RoleDoctor:
		for id, d := range m.s.doctors {
			if d.UserID == userID {
				return id, nil
			}
		}
	case models.RolePatient:
		for id, p := range m.s.patients {
			if p.UserID == userID {
				return id, nil
			}
		}
	case models.RoleReceptionist:
		for id, r := range m.s.receptionists {
			if r.UserID == userID {
				return id, nil
			}
		}
	}
	return "", ErrNotFound
}
