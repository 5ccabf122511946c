package form

import (
	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
	"github.com/clinicdesk/clinic-admin/internal/display"
)

// Gender values are stored as the backend spells them.
var genderOptions = []Option{
	{Value: "Мужской", Label: "Male"},
	{Value: "Женский", Label: "Female"},
}

func appointmentStatusOptions() []Option {
	statuses := clinicapi.AppointmentStatuses()
	out := make([]Option, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, Option{Value: string(s), Label: display.StatusBadge(s).Label})
	}
	return out
}

func PatientSchema() Schema {
	return Schema{
		Entity:   "patient",
		Identity: "patient_id",
		Fields: []Field{
			{Name: "full_name", Label: "Full name", Kind: Text, Required: true},
			{Name: "birth_date", Label: "Birth date", Kind: Date},
			{Name: "gender", Label: "Gender", Kind: Choice, Options: genderOptions},
			{Name: "phone", Label: "Phone", Kind: Text},
			{Name: "passport_info", Label: "Passport", Kind: Text},
		},
	}
}

func DoctorSchema() Schema {
	return Schema{
		Entity:   "doctor",
		Identity: "doctor_id",
		Fields: []Field{
			{Name: "full_name", Label: "Full name", Kind: Text, Required: true},
			{Name: "patronym", Label: "Patronym", Kind: Text},
			{Name: "specialization_id", Label: "Specialization", Kind: Reference, Source: clinicapi.EndpointSpecializations},
			{Name: "phone", Label: "Phone", Kind: Text},
			{Name: "office_number", Label: "Office", Kind: Text},
		},
	}
}

func AppointmentSchema() Schema {
	return Schema{
		Entity:   "appointment",
		Identity: "appointment_id",
		Fields: []Field{
			{Name: "patient_id", Label: "Patient", Kind: Reference, Required: true, Source: clinicapi.EndpointPatients},
			{Name: "doctor_id", Label: "Doctor", Kind: Reference, Required: true, Source: clinicapi.EndpointDoctors},
			{Name: "appointment_date", Label: "Date and time", Kind: DateTime, Required: true},
			{
				Name:     "status",
				Label:    "Status",
				Kind:     Choice,
				Required: true,
				Default:  string(clinicapi.StatusScheduled),
				Options:  appointmentStatusOptions(),
			},
		},
	}
}

func DepartmentSchema() Schema {
	return Schema{
		Entity:   "department",
		Identity: "department_id",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: Text, Required: true},
			{Name: "description", Label: "Description", Kind: LongText},
			{Name: "doctor_id", Label: "Head doctor", Kind: Reference, Source: clinicapi.EndpointDoctors},
		},
	}
}

func DiagnosisSchema() Schema {
	return Schema{
		Entity:   "diagnosis",
		Identity: "diagnoses_id",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: Text, Required: true},
			{Name: "description", Label: "Description", Kind: LongText},
			{Name: "notes", Label: "Notes", Kind: LongText},
		},
	}
}

func ServiceSchema() Schema {
	return Schema{
		Entity:   "service",
		Identity: "service_id",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: Text, Required: true},
			{Name: "price", Label: "Price", Kind: Decimal, Required: true},
			{Name: "descriptions", Label: "Description", Kind: LongText},
		},
	}
}

func RecordSchema() Schema {
	return Schema{
		Entity:   "record",
		Identity: "record_id",
		Fields: []Field{
			{Name: "patient_id", Label: "Patient", Kind: Reference, Required: true, Source: clinicapi.EndpointPatients},
			{Name: "doctor_id", Label: "Doctor", Kind: Reference, Required: true, Source: clinicapi.EndpointDoctors},
			{Name: "appointment_id", Label: "Appointment", Kind: Reference, Source: clinicapi.EndpointAppointments},
			{Name: "diagnoses_id", Label: "Diagnosis", Kind: Reference, Source: clinicapi.EndpointDiagnoses},
			{Name: "notes", Label: "Notes", Kind: LongText},
		},
	}
}
