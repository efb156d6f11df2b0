package model

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Appointment is the persisted record. Date and Time are kept as the raw
// strings the requester submitted (YYYY-MM-DD, HH:MM or HH:MM:SS).
type Appointment struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	RequesterName   string `json:"requester_name"`
	CompanyName     string `json:"company_name"`
	CompanyLocation string `json:"company_location"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Reason          string `json:"reason"`
	Status          Status `json:"status"`
}

// Column names, in the order required fields are checked on creation.
const (
	FieldDate            = "date"
	FieldTime            = "time"
	FieldRequesterName   = "requester_name"
	FieldCompanyName     = "company_name"
	FieldCompanyLocation = "company_location"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldReason          = "reason"
	FieldStatus          = "status"
	FieldID              = "id"
)

var RequiredFields = []string{
	FieldDate,
	FieldTime,
	FieldRequesterName,
	FieldCompanyName,
	FieldCompanyLocation,
	FieldPhone,
	FieldEmail,
	FieldReason,
}

// MutableFields are the columns an update may touch.
var MutableFields = append(append([]string{}, RequiredFields...), FieldStatus)

// Changes maps column name to its new value. Keys are always members of MutableFields.
type Changes map[string]string

// Get returns the value of a column by name.
func (a Appointment) Get(field string) string {
	switch field {
	case FieldDate:
		return a.Date
	case FieldTime:
		return a.Time
	case FieldRequesterName:
		return a.RequesterName
	case FieldCompanyName:
		return a.CompanyName
	case FieldCompanyLocation:
		return a.CompanyLocation
	case FieldPhone:
		return a.Phone
	case FieldEmail:
		return a.Email
	case FieldReason:
		return a.Reason
	case FieldStatus:
		return string(a.Status)
	}
	return ""
}

// Apply returns a copy with changes applied. Unknown keys are ignored; ID never changes.
func (a Appointment) Apply(changes Changes) Appointment {
	for field, v := range changes {
		switch field {
		case FieldDate:
			a.Date = v
		case FieldTime:
			a.Time = v
		case FieldRequesterName:
			a.RequesterName = v
		case FieldCompanyName:
			a.CompanyName = v
		case FieldCompanyLocation:
			a.CompanyLocation = v
		case FieldPhone:
			a.Phone = v
		case FieldEmail:
			a.Email = v
		case FieldReason:
			a.Reason = v
		case FieldStatus:
			a.Status = Status(v)
		}
	}
	return a
}

// Less orders by date, then time, then id.
func Less(a, b Appointment) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.ID < b.ID
}
