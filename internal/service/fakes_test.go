package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// memAppointmentRepo is an in-memory appointment.Repository mirroring the
// database semantics: cancelled rows do not count as slot occupants.
type memAppointmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*appointment.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{items: make(map[uuid.UUID]*appointment.Appointment)}
}

func (r *memAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAppointmentRepo) Update(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memAppointmentRepo) all() []*appointment.Appointment {
	out := make([]*appointment.Appointment, 0, len(r.items))
	for _, a := range r.items {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

func (r *memAppointmentRepo) List(_ context.Context) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.all()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *memAppointmentRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID })
}

func (r *memAppointmentRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool { return a.PatientID == patientID })
}

func (r *memAppointmentRepo) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	return r.filter(func(a *appointment.Appointment) bool { return a.Status == status })
}

func (r *memAppointmentRepo) ListToday(ctx context.Context) ([]*appointment.Appointment, error) {
	today := appointment.DateOnly(time.Now())
	return r.filter(func(a *appointment.Appointment) bool {
		return a.Date.Equal(today) && a.Status != appointment.StatusCancelled
	})
}

func (r *memAppointmentRepo) ListUpcoming(ctx context.Context, days int) ([]*appointment.Appointment, error) {
	start := appointment.DateOnly(time.Now())
	end := start.AddDate(0, 0, days)
	return r.filter(func(a *appointment.Appointment) bool {
		return !a.Date.Before(start) && !a.Date.After(end) && a.Status != appointment.StatusCancelled
	})
}

func (r *memAppointmentRepo) filter(keep func(*appointment.Appointment) bool) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.all() {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memAppointmentRepo) HasDoctorConflict(_ context.Context, doctorID uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error) {
	return r.hasConflict(func(a *appointment.Appointment) bool { return a.DoctorID == doctorID }, date, clock, excludeID), nil
}

func (r *memAppointmentRepo) HasPatientConflict(_ context.Context, patientID uuid.UUID, date time.Time, clock string, excludeID uuid.UUID) (bool, error) {
	return r.hasConflict(func(a *appointment.Appointment) bool { return a.PatientID == patientID }, date, clock, excludeID), nil
}

func (r *memAppointmentRepo) hasConflict(owns func(*appointment.Appointment) bool, date time.Time, clock string, excludeID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.ID == excludeID {
			continue
		}
		if owns(a) && a.Date.Equal(date) && a.Time == clock && a.Status != appointment.StatusCancelled {
			return true
		}
	}
	return false
}

func (r *memAppointmentRepo) CountByStatus(_ context.Context, status appointment.Status) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.items {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}

type memDoctorRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*doctor.Doctor
}

func newMemDoctorRepo() *memDoctorRepo {
	return &memDoctorRepo{items: make(map[uuid.UUID]*doctor.Doctor)}
}

func (r *memDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	r.items[d.ID] = &cp
	return nil
}

func (r *memDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.items[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *memDoctorRepo) GetByDocument(_ context.Context, document string) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.Document == document {
			cp := *d
			return &cp, nil
		}
	}
	return nil, doctor.ErrDoctorNotFound
}

func (r *memDoctorRepo) Update(_ context.Context, d *doctor.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[d.ID]; !ok {
		return doctor.ErrDoctorNotFound
	}
	cp := *d
	r.items[d.ID] = &cp
	return nil
}

func (r *memDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return doctor.ErrDoctorNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memDoctorRepo) List(_ context.Context) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*doctor.Doctor, 0, len(r.items))
	for _, d := range r.items {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memDoctorRepo) ListBySpeciality(_ context.Context, speciality string) ([]*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*doctor.Doctor
	for _, d := range r.items {
		if d.Speciality == speciality {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDoctorRepo) Specialities(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, d := range r.items {
		if !seen[d.Speciality] {
			seen[d.Speciality] = true
			out = append(out, d.Speciality)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memDoctorRepo) ExistsByDocument(_ context.Context, document string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.ID != excludeID && d.Document == document {
			return true, nil
		}
	}
	return false, nil
}

func (r *memDoctorRepo) ExistsByNameAndSpeciality(_ context.Context, name, speciality string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.ID != excludeID && d.Name == name && d.Speciality == speciality {
			return true, nil
		}
	}
	return false, nil
}

type memPatientRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*patient.Patient
}

func newMemPatientRepo() *memPatientRepo {
	return &memPatientRepo{items: make(map[uuid.UUID]*patient.Patient)}
}

func (r *memPatientRepo) Create(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPatientRepo) GetByDocument(_ context.Context, document string) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Document == document {
			cp := *p
			return &cp, nil
		}
	}
	return nil, patient.ErrPatientNotFound
}

func (r *memPatientRepo) Update(_ context.Context, p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[p.ID]; !ok {
		return patient.ErrPatientNotFound
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *memPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return patient.ErrPatientNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memPatientRepo) List(_ context.Context) ([]*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*patient.Patient, 0, len(r.items))
	for _, p := range r.items {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPatientRepo) ExistsByDocument(_ context.Context, document string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ID != excludeID && p.Document == document {
			return true, nil
		}
	}
	return false, nil
}

// fakeMailer records every send and returns a scripted outcome.
type fakeMailer struct {
	mu       sync.Mutex
	fail     bool
	failMsg  string
	sentTo   []string
	subjects []string
}

func (m *fakeMailer) SendConfirmation(recipientEmail, _, _, _ string, _ time.Time, _ string) (bool, string) {
	return m.record(recipientEmail, "confirmation")
}

func (m *fakeMailer) SendReminder(recipientEmail, _, _ string, _ time.Time, _ string) (bool, string) {
	return m.record(recipientEmail, "reminder")
}

func (m *fakeMailer) record(to, kind string) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, m.failMsg
	}
	m.sentTo = append(m.sentTo, to)
	m.subjects = append(m.subjects, kind)
	if kind == "reminder" {
		return true, "reminder sent successfully"
	}
	return true, "confirmation email sent successfully"
}

func (m *fakeMailer) sends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sentTo)
}

// fakeDispatcher records enqueued confirmations without delivering anything.
type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (d *fakeDispatcher) EnqueueConfirmation(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enqueued = append(d.enqueued, id)
}

func (d *fakeDispatcher) DispatchConfirmation(_ context.Context, id uuid.UUID) (bool, string) {
	d.EnqueueConfirmation(id)
	return true, "confirmation email sent successfully"
}

func (d *fakeDispatcher) DispatchReminder(_ context.Context, _ uuid.UUID) (bool, string) {
	return true, "reminder sent successfully"
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.enqueued)
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *memAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func newTestAuditService() *AuditService {
	return NewAuditService(&memAuditRepo{}, zap.NewNop())
}
