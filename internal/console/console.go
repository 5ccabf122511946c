// Package console assembles the clinic sections into one navigable unit: the
// dashboard plus seven entity sections sharing a client and a notifier, an
// active-section pointer, and table rendering of each section's collection.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/form"
	"github.com/clinicdesk/clinic-admin/internal/platform/notify"
	"github.com/clinicdesk/clinic-admin/internal/section"
)

// Section names, in navigation order.
const (
	Dashboard    = "dashboard"
	Patients     = "patients"
	Appointments = "appointments"
	Records      = "records"
	Doctors      = "doctors"
	Services     = "services"
	Diagnoses    = "diagnoses"
	Departments  = "departments"
)

// Names lists every section in navigation order.
func Names() []string {
	return []string{Dashboard, Patients, Appointments, Records, Doctors, Services, Diagnoses, Departments}
}

var ErrUnknownSection = errors.New("unknown section")

// Section is the type-erased view of an entity section.
type Section interface {
	Name() string
	Schema() form.Schema
	Load(ctx context.Context) error
	Loaded() bool
	SetFilter(ctx context.Context, f clinicapi.Filter) error
	Filter() clinicapi.Filter
	Options(field string) []form.Option
	OpenCreate() error
	OpenEdit(id int64) error
	CloseDialog()
	DialogOpen() bool
	SetField(name, value string) error
	FieldValue(name string) string
	Submit(ctx context.Context) error
	SelectForDeletion(id int64) error
	PendingDeletion() (int64, bool)
	CancelDeletion()
	ConfirmDeletion(ctx context.Context) error
	Close()
}

// Options configures a Console.
type Options struct {
	Notifier notify.Notifier
	Logger   zerolog.Logger
	// Limit is the page size of every list call. Zero means the client default.
	Limit int
	// Clock supplies "today" for derived values such as ages.
	Clock func() time.Time
}

// Console owns the dashboard and the entity sections.
type Console struct {
	now    func() time.Time
	logger zerolog.Logger

	dashboard    *section.Dashboard
	patients     *section.Controller[clinicapi.Patient]
	appointments *section.Controller[clinicapi.Appointment]
	records      *section.Controller[clinicapi.MedicalRecord]
	doctors      *section.Controller[clinicapi.Doctor]
	services     *section.Controller[clinicapi.Service]
	diagnoses    *section.Controller[clinicapi.Diagnosis]
	departments  *section.Controller[clinicapi.Department]

	sections map[string]Section

	mu     sync.Mutex
	active string
}

func doctorWithSpecialization(d clinicapi.Doctor) string {
	if d.Specialization == "" {
		return d.FullName
	}
	return d.FullName + " - " + d.Specialization
}

func New(client *clinicapi.Client, opts Options) *Console {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	filter := clinicapi.Filter{Limit: opts.Limit}

	patientLabel := section.LookupOf[clinicapi.Patient](client.Patients(), func(p clinicapi.Patient) string { return p.FullName })
	doctorLabel := section.LookupOf[clinicapi.Doctor](client.Doctors(), doctorWithSpecialization)
	doctorName := section.LookupOf[clinicapi.Doctor](client.Doctors(), func(d clinicapi.Doctor) string { return d.FullName })

	c := &Console{
		now:       opts.Clock,
		logger:    opts.Logger.With().Str("component", "console").Logger(),
		dashboard: section.NewDashboard(client, opts.Notifier, opts.Logger),
		active:    Dashboard,
	}

	c.patients = section.New(section.Config[clinicapi.Patient]{
		Name:     Patients,
		Resource: client.Patients(),
		Schema:   form.PatientSchema(),
		Filter:   filter,
		Summary:  c.dashboard,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	c.appointments = section.New(section.Config[clinicapi.Appointment]{
		Name:     Appointments,
		Resource: client.Appointments(),
		Schema:   form.AppointmentSchema(),
		Lookups: map[string]section.Lookup{
			"patient_id": patientLabel,
			"doctor_id":  doctorLabel,
		},
		Filter:   filter,
		Summary:  c.dashboard,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	c.records = section.New(section.Config[clinicapi.MedicalRecord]{
		Name:     Records,
		Resource: client.Records(),
		Schema:   form.RecordSchema(),
		Lookups: map[string]section.Lookup{
			"patient_id": patientLabel,
			"doctor_id":  doctorName,
			"appointment_id": section.LookupOf[clinicapi.Appointment](client.Appointments(), func(a clinicapi.Appointment) string {
				return a.PatientName + " - " + a.DoctorName
			}),
			"diagnoses_id": section.LookupOf[clinicapi.Diagnosis](client.Diagnoses(), func(d clinicapi.Diagnosis) string { return d.Name }),
		},
		Messages: section.DefaultMessages("Medical record"),
		Filter:   filter,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	c.doctors = section.New(section.Config[clinicapi.Doctor]{
		Name:     Doctors,
		Resource: client.Doctors(),
		Schema:   form.DoctorSchema(),
		Lookups: map[string]section.Lookup{
			"specialization_id": section.LookupOf[clinicapi.Specialization](client.Specializations(), func(s clinicapi.Specialization) string { return s.Name }),
		},
		Filter:   filter,
		Summary:  c.dashboard,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	c.services = section.New(section.Config[clinicapi.Service]{
		Name:     Services,
		Resource: client.Services(),
		Schema:   form.ServiceSchema(),
		Filter:   filter,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	c.diagnoses = section.New(section.Config[clinicapi.Diagnosis]{
		Name:     Diagnoses,
		Resource: client.Diagnoses(),
		Schema:   form.DiagnosisSchema(),
		Filter:   filter,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})
	c.departments = section.New(section.Config[clinicapi.Department]{
		Name:     Departments,
		Resource: client.Departments(),
		Schema:   form.DepartmentSchema(),
		Lookups: map[string]section.Lookup{
			"doctor_id": doctorLabel,
		},
		Filter:   filter,
		Summary:  c.dashboard,
		Notifier: opts.Notifier,
		Logger:   opts.Logger,
	})

	c.sections = map[string]Section{
		Patients:     c.patients,
		Appointments: c.appointments,
		Records:      c.records,
		Doctors:      c.doctors,
		Services:     c.services,
		Diagnoses:    c.diagnoses,
		Departments:  c.departments,
	}
	return c
}

// Activate switches to the named section and loads it. The section stays
// active when the load fails; the failure has already been notified.
func (c *Console) Activate(ctx context.Context, name string) error {
	if name != Dashboard {
		if _, ok := c.sections[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSection, name)
		}
	}

	c.mu.Lock()
	c.active = name
	c.mu.Unlock()
	c.logger.Debug().Str("section", name).Msg("activate")

	if name == Dashboard {
		return c.dashboard.Refresh(ctx)
	}
	return c.sections[name].Load(ctx)
}

// Active returns the name of the active section.
func (c *Console) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Section returns an entity section by name. The dashboard is not a Section.
func (c *Console) Section(name string) (Section, error) {
	s, ok := c.sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return s, nil
}

func (c *Console) Dashboard() *section.Dashboard { return c.dashboard }

func (c *Console) Patients() *section.Controller[clinicapi.Patient] { return c.patients }

func (c *Console) Appointments() *section.Controller[clinicapi.Appointment] {
	return c.appointments
}

func (c *Console) Records() *section.Controller[clinicapi.MedicalRecord] { return c.records }

func (c *Console) Doctors() *section.Controller[clinicapi.Doctor] { return c.doctors }

func (c *Console) Services() *section.Controller[clinicapi.Service] { return c.services }

func (c *Console) Diagnoses() *section.Controller[clinicapi.Diagnosis] { return c.diagnoses }

func (c *Console) Departments() *section.Controller[clinicapi.Department] { return c.departments }

// Close stops every section. Pending requests are cancelled.
func (c *Console) Close() {
	c.dashboard.Close()
	for _, s := range c.sections {
		s.Close()
	}
}
