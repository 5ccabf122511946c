package console

import (
	"fmt"
	"strconv"

	"github.com/clinicdesk/clinic-admin/internal/display"
)

// Table is a rendered section: display strings only.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

func idCell(id int64, ok bool) string {
	if !ok {
		return display.Placeholder
	}
	return strconv.FormatInt(id, 10)
}

// Table renders the loaded collection of a section. The dashboard renders
// its summary counts.
func (c *Console) Table(name string) (Table, error) {
	switch name {
	case Dashboard:
		return c.dashboardTable(), nil
	case Patients:
		return c.patientsTable(), nil
	case Appointments:
		return c.appointmentsTable(), nil
	case Records:
		return c.recordsTable(), nil
	case Doctors:
		return c.doctorsTable(), nil
	case Services:
		return c.servicesTable(), nil
	case Diagnoses:
		return c.diagnosesTable(), nil
	case Departments:
		return c.departmentsTable(), nil
	}
	return Table{}, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

func (c *Console) dashboardTable() Table {
	t := Table{Title: "Dashboard", Headers: []string{"Metric", "Value"}}
	stats, ok := c.dashboard.Summary()
	value := func(n int) string {
		if !ok {
			return display.Placeholder
		}
		return strconv.Itoa(n)
	}
	t.Rows = [][]string{
		{"Patients", value(stats.Patients)},
		{"Appointments today", value(stats.TodayAppointments)},
		{"Doctors", value(stats.Doctors)},
		{"Departments", value(stats.Departments)},
	}
	return t
}

func (c *Console) patientsTable() Table {
	today := c.now()
	t := Table{Title: "Patients", Headers: []string{"ID", "Full name", "Age", "Phone", "Birth date", "Registered"}}
	for _, p := range c.patients.Items() {
		id, ok := p.Identity()
		birth := display.Deref(p.BirthDate)
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			p.FullName,
			display.Age(birth, today),
			display.Text(p.Phone),
			display.FormatDate(birth),
			display.FormatDateTime(display.Deref(p.CreatedAt)),
		})
	}
	return t
}

func (c *Console) appointmentsTable() Table {
	t := Table{Title: "Appointments", Headers: []string{"ID", "Patient", "Doctor", "Date", "Time", "Status"}}
	for _, a := range c.appointments.Items() {
		id, ok := a.Identity()
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			display.Text(a.PatientName),
			display.Text(a.DoctorName),
			display.FormatDate(a.AppointmentDate),
			display.FormatClock(a.AppointmentDate),
			display.StatusBadge(a.Status).String(),
		})
	}
	return t
}

func (c *Console) recordsTable() Table {
	t := Table{Title: "Medical records", Headers: []string{"ID", "Patient", "Doctor", "Diagnosis", "Notes", "Created"}}
	for _, r := range c.records.Items() {
		id, ok := r.Identity()
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			display.Text(r.PatientName),
			display.Text(r.DoctorName),
			display.Text(r.DiagnosisName),
			display.Text(r.Notes),
			display.FormatDateTime(display.Deref(r.CreatedAt)),
		})
	}
	return t
}

func (c *Console) doctorsTable() Table {
	t := Table{Title: "Doctors", Headers: []string{"ID", "Full name", "Specialization", "Phone", "Office"}}
	for _, d := range c.doctors.Items() {
		id, ok := d.Identity()
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			d.FullName,
			display.Text(d.Specialization),
			display.Text(d.Phone),
			display.Text(d.OfficeNumber),
		})
	}
	return t
}

func (c *Console) servicesTable() Table {
	t := Table{Title: "Services", Headers: []string{"ID", "Name", "Price", "Description"}}
	for _, s := range c.services.Items() {
		id, ok := s.Identity()
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			s.Name,
			display.Price(float64(s.Price)),
			display.Text(s.Descriptions),
		})
	}
	return t
}

func (c *Console) diagnosesTable() Table {
	t := Table{Title: "Diagnoses", Headers: []string{"ID", "Name", "Description", "Notes"}}
	for _, d := range c.diagnoses.Items() {
		id, ok := d.Identity()
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			d.Name,
			display.Text(d.Description),
			display.Text(d.Notes),
		})
	}
	return t
}

func (c *Console) departmentsTable() Table {
	t := Table{Title: "Departments", Headers: []string{"ID", "Name", "Description", "Head doctor"}}
	for _, d := range c.departments.Items() {
		id, ok := d.Identity()
		t.Rows = append(t.Rows, []string{
			idCell(id, ok),
			d.Name,
			display.Text(d.Description),
			display.Text(d.HeadDoctor),
		})
	}
	return t
}
