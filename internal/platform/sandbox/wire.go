package sandbox

import (
	"fmt"
	"time"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
)

// serviceRow mirrors how the clinic endpoint serializes numeric columns:
// price travels as a decimal string.
type serviceRow struct {
	ServiceID    *int64 `json:"service_id"`
	Name         string `json:"name"`
	Price        string `json:"price"`
	Descriptions string `json:"descriptions"`
}

func (s *Store) wire() {
	s.patients = &collection[clinicapi.Patient]{
		key:      "patient_id",
		writable: true,
		setID:    func(p *clinicapi.Patient, id int64) { p.PatientID = &id },
		prepare: func(p *clinicapi.Patient, prev *clinicapi.Patient) error {
			birth, err := normalizeOptionalDate(p.BirthDate)
			if err != nil {
				return err
			}
			p.BirthDate = birth
			p.CreatedAt = createdAt(s.now, prev, func(p *clinicapi.Patient) *string { return p.CreatedAt })
			return nil
		},
		match: func(p clinicapi.Patient, q query) bool {
			return q.search == "" || containsFold(p.FullName, q.search) || containsFold(p.Phone, q.search)
		},
		less: func(a, b clinicapi.Patient) bool {
			if ca, cb := strOrEmpty(a.CreatedAt), strOrEmpty(b.CreatedAt); ca != cb {
				return ca > cb
			}
			return byIDDesc(a.PatientID, b.PatientID)
		},
		cascade: func(id int64) {
			s.removeAppointmentsWhere(func(a clinicapi.Appointment) bool { return a.PatientID == id })
			s.removeRecordsWhere(func(r clinicapi.MedicalRecord) bool { return r.PatientID == id })
		},
	}

	s.specializations = &collection[clinicapi.Specialization]{
		key:   "specialization_id",
		setID: func(sp *clinicapi.Specialization, id int64) { sp.SpecializationID = id },
		less: func(a, b clinicapi.Specialization) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.SpecializationID < b.SpecializationID
		},
	}

	s.doctors = &collection[clinicapi.Doctor]{
		key:      "doctor_id",
		writable: true,
		setID:    func(d *clinicapi.Doctor, id int64) { d.DoctorID = &id },
		prepare: func(d *clinicapi.Doctor, _ *clinicapi.Doctor) error {
			d.Specialization = ""
			return optionalRef(s.specializations, "specialization_id", d.SpecializationID)
		},
		view: func(d clinicapi.Doctor) interface{} {
			if d.SpecializationID != nil {
				d.Specialization = s.specializations.rows[*d.SpecializationID].Name
			}
			return d
		},
		less: func(a, b clinicapi.Doctor) bool {
			if a.FullName != b.FullName {
				return a.FullName < b.FullName
			}
			return deref(a.DoctorID) < deref(b.DoctorID)
		},
		cascade: func(id int64) {
			s.removeAppointmentsWhere(func(a clinicapi.Appointment) bool { return a.DoctorID == id })
			s.removeRecordsWhere(func(r clinicapi.MedicalRecord) bool { return r.DoctorID == id })
			for depID, dep := range s.departments.rows {
				if dep.DoctorID != nil && *dep.DoctorID == id {
					dep.DoctorID = nil
					s.departments.rows[depID] = dep
				}
			}
		},
	}

	s.appointments = &collection[clinicapi.Appointment]{
		key:      "appointment_id",
		writable: true,
		setID:    func(a *clinicapi.Appointment, id int64) { a.AppointmentID = &id },
		prepare: func(a *clinicapi.Appointment, _ *clinicapi.Appointment) error {
			a.PatientName, a.DoctorName, a.Specialization = "", "", ""
			if err := ref(s.patients, "patient_id", a.PatientID); err != nil {
				return err
			}
			if err := ref(s.doctors, "doctor_id", a.DoctorID); err != nil {
				return err
			}
			at, err := normalizeTime(a.AppointmentDate, dateTimeLayout)
			if err != nil {
				return err
			}
			a.AppointmentDate = at
			if a.Status == "" {
				a.Status = clinicapi.StatusScheduled
			}
			return nil
		},
		view: func(a clinicapi.Appointment) interface{} {
			a.PatientName = s.patients.rows[a.PatientID].FullName
			doc := s.doctors.rows[a.DoctorID]
			a.DoctorName = doc.FullName
			if doc.SpecializationID != nil {
				a.Specialization = s.specializations.rows[*doc.SpecializationID].Name
			}
			return a
		},
		match: func(a clinicapi.Appointment, q query) bool {
			return q.status == "" || string(a.Status) == q.status
		},
		less: func(a, b clinicapi.Appointment) bool {
			if a.AppointmentDate != b.AppointmentDate {
				return a.AppointmentDate > b.AppointmentDate
			}
			return byIDDesc(a.AppointmentID, b.AppointmentID)
		},
		cascade: func(id int64) {
			s.removeRecordsWhere(func(r clinicapi.MedicalRecord) bool {
				return r.AppointmentID != nil && *r.AppointmentID == id
			})
		},
	}

	s.departments = &collection[clinicapi.Department]{
		key:      "department_id",
		writable: true,
		setID:    func(d *clinicapi.Department, id int64) { d.DepartmentID = &id },
		prepare: func(d *clinicapi.Department, _ *clinicapi.Department) error {
			d.HeadDoctor = ""
			return optionalRef(s.doctors, "doctor_id", d.DoctorID)
		},
		view: func(d clinicapi.Department) interface{} {
			if d.DoctorID != nil {
				d.HeadDoctor = s.doctors.rows[*d.DoctorID].FullName
			}
			return d
		},
		less: func(a, b clinicapi.Department) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return deref(a.DepartmentID) < deref(b.DepartmentID)
		},
	}

	s.diagnoses = &collection[clinicapi.Diagnosis]{
		key:      "diagnoses_id",
		writable: true,
		setID:    func(d *clinicapi.Diagnosis, id int64) { d.DiagnosesID = &id },
		less: func(a, b clinicapi.Diagnosis) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return deref(a.DiagnosesID) < deref(b.DiagnosesID)
		},
		cascade: func(id int64) {
			for recID, r := range s.records.rows {
				if r.DiagnosesID != nil && *r.DiagnosesID == id {
					r.DiagnosesID = nil
					s.records.rows[recID] = r
				}
			}
		},
	}

	s.services = &collection[clinicapi.Service]{
		key:      "service_id",
		writable: true,
		setID:    func(sv *clinicapi.Service, id int64) { sv.ServiceID = &id },
		view: func(sv clinicapi.Service) interface{} {
			return serviceRow{
				ServiceID:    sv.ServiceID,
				Name:         sv.Name,
				Price:        fmt.Sprintf("%.2f", float64(sv.Price)),
				Descriptions: sv.Descriptions,
			}
		},
		less: func(a, b clinicapi.Service) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return deref(a.ServiceID) < deref(b.ServiceID)
		},
	}

	s.records = &collection[clinicapi.MedicalRecord]{
		key:      "record_id",
		writable: true,
		setID:    func(r *clinicapi.MedicalRecord, id int64) { r.RecordID = &id },
		prepare: func(r *clinicapi.MedicalRecord, prev *clinicapi.MedicalRecord) error {
			r.PatientName, r.DoctorName, r.DiagnosisName = "", "", ""
			if err := ref(s.patients, "patient_id", r.PatientID); err != nil {
				return err
			}
			if err := ref(s.doctors, "doctor_id", r.DoctorID); err != nil {
				return err
			}
			if err := optionalRef(s.appointments, "appointment_id", r.AppointmentID); err != nil {
				return err
			}
			if err := optionalRef(s.diagnoses, "diagnoses_id", r.DiagnosesID); err != nil {
				return err
			}
			r.CreatedAt = createdAt(s.now, prev, func(r *clinicapi.MedicalRecord) *string { return r.CreatedAt })
			return nil
		},
		view: func(r clinicapi.MedicalRecord) interface{} {
			r.PatientName = s.patients.rows[r.PatientID].FullName
			r.DoctorName = s.doctors.rows[r.DoctorID].FullName
			if r.DiagnosesID != nil {
				r.DiagnosisName = s.diagnoses.rows[*r.DiagnosesID].Name
			}
			return r
		},
		less: func(a, b clinicapi.MedicalRecord) bool {
			if ca, cb := strOrEmpty(a.CreatedAt), strOrEmpty(b.CreatedAt); ca != cb {
				return ca > cb
			}
			return byIDDesc(a.RecordID, b.RecordID)
		},
	}

	s.endpoints = map[clinicapi.Endpoint]endpoint{
		clinicapi.EndpointPatients:        s.patients,
		clinicapi.EndpointDoctors:         s.doctors,
		clinicapi.EndpointSpecializations: s.specializations,
		clinicapi.EndpointAppointments:    s.appointments,
		clinicapi.EndpointDepartments:     s.departments,
		clinicapi.EndpointDiagnoses:       s.diagnoses,
		clinicapi.EndpointServices:        s.services,
		clinicapi.EndpointRecords:         s.records,
	}
}

// createdAt keeps the original creation time on update and stamps new rows
// with the store clock.
func createdAt[T any](now func() time.Time, prev *T, get func(*T) *string) *string {
	if prev != nil {
		return get(prev)
	}
	stamp := now().Format(dateTimeLayout)
	return &stamp
}

func (s *Store) removeAppointmentsWhere(pred func(clinicapi.Appointment) bool) {
	for id, a := range s.appointments.rows {
		if pred(a) {
			delete(s.appointments.rows, id)
			s.appointments.cascade(id)
		}
	}
}

func (s *Store) removeRecordsWhere(pred func(clinicapi.MedicalRecord) bool) {
	for id, r := range s.records.rows {
		if pred(r) {
			delete(s.records.rows, id)
		}
	}
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
