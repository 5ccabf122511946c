// Package sandbox is an in-memory stand-in for the clinic endpoint. It
// speaks the same `endpoint` query protocol, joins display names on read
// and starts from reproducible demo data. State lives only as long as the
// process.
package sandbox

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/clinicdesk/clinic-admin/internal/clinicapi"
)

// SeedConfig controls the volume of generated demo data.
type SeedConfig struct {
	Patients               int   `json:"patients"`
	Doctors                int   `json:"doctors"`
	AppointmentsPerPatient int   `json:"appointmentsPerPatient"`
	RecordsPerPatient      int   `json:"recordsPerPatient"`
	Seed                   int64 `json:"seed"`
}

func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Patients:               20,
		Doctors:                6,
		AppointmentsPerPatient: 2,
		RecordsPerPatient:      1,
		Seed:                   42,
	}
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	Patients        int `json:"patients"`
	Doctors         int `json:"doctors"`
	Specializations int `json:"specializations"`
	Departments     int `json:"departments"`
	Services        int `json:"services"`
	Diagnoses       int `json:"diagnoses"`
	Appointments    int `json:"appointments"`
	Records         int `json:"records"`
}

var (
	lastNames = []string{
		"Иванов", "Петров", "Сидоров", "Смирнов", "Кузнецов", "Попов",
		"Васильев", "Соколов", "Михайлов", "Новиков", "Фёдоров", "Морозов",
	}
	firstNamesMale   = []string{"Иван", "Пётр", "Алексей", "Дмитрий", "Сергей", "Андрей", "Михаил"}
	firstNamesFemale = []string{"Анна", "Мария", "Елена", "Ольга", "Наталья", "Татьяна", "Ирина"}
	patronymsMale    = []string{"Иванович", "Петрович", "Сергеевич", "Андреевич", "Михайлович"}
	patronymsFemale  = []string{"Ивановна", "Петровна", "Сергеевна", "Андреевна", "Михайловна"}

	specializationNames = []string{"Терапевт", "Кардиолог", "Невролог", "Хирург", "Педиатр", "Офтальмолог"}

	departmentDefs = []struct{ Name, Description string }{
		{"Терапевтическое отделение", "Общая терапия и первичный приём"},
		{"Кардиологическое отделение", "Диагностика и лечение сердечно-сосудистых заболеваний"},
		{"Хирургическое отделение", "Плановые и экстренные операции"},
	}

	diagnosisDefs = []struct{ Name, Description string }{
		{"ОРВИ", "Острая респираторная вирусная инфекция"},
		{"Гипертония", "Стойкое повышение артериального давления"},
		{"Мигрень", "Приступообразная головная боль"},
		{"Гастрит", "Воспаление слизистой оболочки желудка"},
		{"Бронхит", "Воспаление бронхов"},
	}

	serviceDefs = []struct {
		Name        string
		Price       float64
		Description string
	}{
		{"Первичный приём терапевта", 1500, "Осмотр и консультация"},
		{"ЭКГ", 900, "Электрокардиография с расшифровкой"},
		{"Общий анализ крови", 450.5, "Клинический анализ крови"},
		{"УЗИ брюшной полости", 2300, "Ультразвуковое исследование"},
		{"Консультация кардиолога", 2000, "Приём узкого специалиста"},
	}

	recordNotes = []string{
		"Назначено лечение, повторный приём через неделю",
		"Жалобы отсутствуют, рекомендовано наблюдение",
		"Направлен на дополнительные анализы",
		"",
	}
)

// DataGenerator produces reproducible demo records.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator returns a generator seeded for reproducibility. A zero
// seed picks a time-based one.
func NewDataGenerator(seed int64) *DataGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &DataGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *DataGenerator) randomDate(minYear, maxYear int) string {
	y := minYear + g.rng.Intn(maxYear-minYear+1)
	m := 1 + g.rng.Intn(12)
	d := 1 + g.rng.Intn(28)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func (g *DataGenerator) randomPhone() string {
	return fmt.Sprintf("+7 (9%02d) %03d-%02d-%02d",
		g.rng.Intn(100), g.rng.Intn(1000), g.rng.Intn(100), g.rng.Intn(100))
}

func (g *DataGenerator) person() (fullName, patronym, gender string) {
	last := g.pick(lastNames)
	if g.rng.Intn(2) == 0 {
		return fmt.Sprintf("%s %s", last, g.pick(firstNamesMale)), g.pick(patronymsMale), "Мужской"
	}
	return fmt.Sprintf("%sа %s", last, g.pick(firstNamesFemale)), g.pick(patronymsFemale), "Женский"
}

// Patient returns an unsaved patient.
func (g *DataGenerator) Patient() clinicapi.Patient {
	name, _, gender := g.person()
	birth := g.randomDate(1945, 2020)
	return clinicapi.Patient{
		FullName:     name,
		BirthDate:    &birth,
		Gender:       gender,
		Phone:        g.randomPhone(),
		PassportInfo: fmt.Sprintf("%04d %06d", 4500+g.rng.Intn(100), g.rng.Intn(1000000)),
	}
}

// Doctor returns an unsaved doctor with the given specialization.
func (g *DataGenerator) Doctor(specializationID int64) clinicapi.Doctor {
	name, patronym, _ := g.person()
	return clinicapi.Doctor{
		FullName:         name,
		Patronym:         patronym,
		SpecializationID: &specializationID,
		Phone:            g.randomPhone(),
		OfficeNumber:     fmt.Sprintf("%d%02d", 1+g.rng.Intn(4), 1+g.rng.Intn(30)),
	}
}

// Appointment returns an unsaved appointment within a month of now. Past
// appointments are completed or cancelled, later ones scheduled.
func (g *DataGenerator) Appointment(patientID, doctorID int64, now time.Time) clinicapi.Appointment {
	day := now.AddDate(0, 0, g.rng.Intn(45)-30)
	at := time.Date(day.Year(), day.Month(), day.Day(), 9+g.rng.Intn(9), 30*g.rng.Intn(2), 0, 0, time.UTC)

	status := clinicapi.StatusScheduled
	if day.Format(dateLayout) < now.Format(dateLayout) {
		status = clinicapi.StatusCompleted
		if g.rng.Intn(5) == 0 {
			status = clinicapi.StatusCancelled
		}
	}
	return clinicapi.Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: at.Format(dateTimeLayout),
		Status:          status,
	}
}

// Record returns an unsaved medical record.
func (g *DataGenerator) Record(patientID, doctorID int64, appointmentID, diagnosisID *int64) clinicapi.MedicalRecord {
	return clinicapi.MedicalRecord{
		PatientID:     patientID,
		DoctorID:      doctorID,
		AppointmentID: appointmentID,
		DiagnosesID:   diagnosisID,
		Notes:         g.pick(recordNotes),
	}
}

// Seed replaces the store contents with generated demo data.
func (s *Store) Seed(cfg SeedConfig) SeedResult {
	g := NewDataGenerator(cfg.Seed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	now := s.now()

	var res SeedResult
	var specIDs []int64
	for _, name := range specializationNames {
		specIDs = append(specIDs, s.specializations.insert(clinicapi.Specialization{Name: name}))
	}
	res.Specializations = len(specIDs)

	var doctorIDs []int64
	for i := 0; i < cfg.Doctors; i++ {
		doctorIDs = append(doctorIDs, s.doctors.insert(g.Doctor(specIDs[i%len(specIDs)])))
	}
	res.Doctors = len(doctorIDs)

	for i, d := range departmentDefs {
		dep := clinicapi.Department{Name: d.Name, Description: d.Description}
		if len(doctorIDs) > 0 {
			head := doctorIDs[i%len(doctorIDs)]
			dep.DoctorID = &head
		}
		s.departments.insert(dep)
		res.Departments++
	}

	var diagnosisIDs []int64
	for _, d := range diagnosisDefs {
		diagnosisIDs = append(diagnosisIDs, s.diagnoses.insert(clinicapi.Diagnosis{Name: d.Name, Description: d.Description}))
	}
	res.Diagnoses = len(diagnosisIDs)

	for _, d := range serviceDefs {
		s.services.insert(clinicapi.Service{Name: d.Name, Price: clinicapi.Price(d.Price), Descriptions: d.Description})
		res.Services++
	}

	for i := 0; i < cfg.Patients; i++ {
		p := g.Patient()
		created := now.Add(-time.Duration(cfg.Patients-i) * time.Hour).Format(dateTimeLayout)
		p.CreatedAt = &created
		patientID := s.patients.insert(p)
		res.Patients++

		if len(doctorIDs) == 0 {
			continue
		}
		var appointmentIDs []int64
		for j := 0; j < cfg.AppointmentsPerPatient; j++ {
			doctorID := doctorIDs[g.rng.Intn(len(doctorIDs))]
			appointmentIDs = append(appointmentIDs, s.appointments.insert(g.Appointment(patientID, doctorID, now)))
			res.Appointments++
		}
		for j := 0; j < cfg.RecordsPerPatient; j++ {
			var apptID, diagID *int64
			if len(appointmentIDs) > 0 {
				id := appointmentIDs[j%len(appointmentIDs)]
				apptID = &id
			}
			if g.rng.Intn(3) > 0 {
				id := diagnosisIDs[g.rng.Intn(len(diagnosisIDs))]
				diagID = &id
			}
			doctorID := doctorIDs[g.rng.Intn(len(doctorIDs))]
			if apptID != nil {
				doctorID = s.appointments.rows[*apptID].DoctorID
			}
			rec := g.Record(patientID, doctorID, apptID, diagID)
			rec.CreatedAt = &created
			s.records.insert(rec)
			res.Records++
		}
	}
	return res
}
