package clinicapi

// Status is a record status. Values outside the known set are kept verbatim
// so they can still be displayed.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var knownStatuses = map[Status]bool{
	StatusActive: true, StatusInactive: true,
	StatusScheduled: true, StatusCompleted: true, StatusCancelled: true,
}

// Known reports whether s belongs to the closed set of statuses.
func (s Status) Known() bool { return knownStatuses[s] }

func (s Status) String() string { return string(s) }

// AppointmentStatuses lists the statuses an appointment may be given.
func AppointmentStatuses() []Status {
	return []Status{StatusScheduled, StatusCompleted, StatusCancelled}
}
