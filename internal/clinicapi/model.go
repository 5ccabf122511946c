package clinicapi

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Endpoint selects the resource addressed by the `endpoint` query parameter.
type Endpoint string

const (
	EndpointStats           Endpoint = "stats"
	EndpointPatients        Endpoint = "patients"
	EndpointAppointments    Endpoint = "appointments"
	EndpointDoctors         Endpoint = "doctors"
	EndpointSpecializations Endpoint = "specializations"
	EndpointDepartments     Endpoint = "departments"
	EndpointServices        Endpoint = "services"
	EndpointDiagnoses       Endpoint = "diagnoses"
	EndpointRecords         Endpoint = "records"
)

// Record is implemented by every entity the endpoint serves. The second
// return value reports whether the record has been persisted.
type Record interface {
	Identity() (int64, bool)
}

func identity(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

// Patient maps to the patients resource.
type Patient struct {
	PatientID    *int64  `json:"patient_id,omitempty"`
	FullName     string  `json:"full_name"`
	BirthDate    *string `json:"birth_date"`
	Gender       string  `json:"gender"`
	Phone        string  `json:"phone"`
	PassportInfo string  `json:"passport_info"`
	CreatedAt    *string `json:"created_at,omitempty"`
}

func (p Patient) Identity() (int64, bool) { return identity(p.PatientID) }

// Doctor maps to the doctors resource. Specialization is the joined name and
// is only populated on reads.
type Doctor struct {
	DoctorID         *int64 `json:"doctor_id,omitempty"`
	FullName         string `json:"full_name"`
	Patronym         string `json:"patronym"`
	SpecializationID *int64 `json:"specialization_id"`
	Phone            string `json:"phone"`
	OfficeNumber     string `json:"office_number"`
	Specialization   string `json:"specialization,omitempty"`
}

func (d Doctor) Identity() (int64, bool) { return identity(d.DoctorID) }

// Specialization is a read-only lookup.
type Specialization struct {
	SpecializationID int64  `json:"specialization_id"`
	Name             string `json:"name"`
}

func (s Specialization) Identity() (int64, bool) { return s.SpecializationID, true }

// Appointment maps to the appointments resource.
type Appointment struct {
	AppointmentID   *int64 `json:"appointment_id,omitempty"`
	PatientID       int64  `json:"patient_id"`
	DoctorID        int64  `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	Status          Status `json:"status"`
	PatientName     string `json:"patient_name,omitempty"`
	DoctorName      string `json:"doctor_name,omitempty"`
	Specialization  string `json:"specialization,omitempty"`
}

func (a Appointment) Identity() (int64, bool) { return identity(a.AppointmentID) }

// Department maps to the departments resource. DoctorID is the head of the
// department.
type Department struct {
	DepartmentID *int64 `json:"department_id,omitempty"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DoctorID     *int64 `json:"doctor_id"`
	HeadDoctor   string `json:"head_doctor,omitempty"`
}

func (d Department) Identity() (int64, bool) { return identity(d.DepartmentID) }

// Diagnosis maps to the diagnoses resource.
type Diagnosis struct {
	DiagnosesID *int64 `json:"diagnoses_id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

func (d Diagnosis) Identity() (int64, bool) { return identity(d.DiagnosesID) }

// Service maps to the services resource.
type Service struct {
	ServiceID    *int64 `json:"service_id,omitempty"`
	Name         string `json:"name"`
	Price        Price  `json:"price"`
	Descriptions string `json:"descriptions"`
}

func (s Service) Identity() (int64, bool) { return identity(s.ServiceID) }

// MedicalRecord maps to the records resource.
type MedicalRecord struct {
	RecordID      *int64  `json:"record_id,omitempty"`
	PatientID     int64   `json:"patient_id"`
	DoctorID      int64   `json:"doctor_id"`
	AppointmentID *int64  `json:"appointment_id"`
	DiagnosesID   *int64  `json:"diagnoses_id"`
	Notes         string  `json:"notes"`
	CreatedAt     *string `json:"created_at,omitempty"`
	PatientName   string  `json:"patient_name,omitempty"`
	DoctorName    string  `json:"doctor_name,omitempty"`
	DiagnosisName string  `json:"diagnosis_name,omitempty"`
}

func (r MedicalRecord) Identity() (int64, bool) { return identity(r.RecordID) }

// Stats is the dashboard summary returned by the stats endpoint.
type Stats struct {
	Patients          int `json:"patients"`
	TodayAppointments int `json:"todayAppointments"`
	Doctors           int `json:"doctors"`
	Departments       int `json:"departments"`
}

// Ack is the acknowledgement returned by write operations. ID is set when
// a create response carries the new identity.
type Ack struct {
	Success bool
	ID      *int64
}

// Price is a decimal amount. The endpoint serializes numeric columns either
// as JSON numbers or as strings, so both are accepted on decode.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Price(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price: %w", err)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price %q: %w", s, err)
	}
	*p = Price(f)
	return nil
}
