package clinic

import "github.com/shopspring/decimal"

type Clinic struct {
	ID      int    `json:"clinicId"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type ClinicService struct {
	ID              int             `json:"serviceId"`
	ClinicID        int             `json:"clinicId"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes"`
}

// Employee is a clinic staff member. UserID links the record to the staff
// account that may act for it; zero means no account is linked.
type Employee struct {
	ID       int    `json:"employeeId"`
	ClinicID int    `json:"clinicId"`
	UserID   int    `json:"userId,omitempty"`
	Name     string `json:"name"`
	Cargo    string `json:"cargo"`
}

// ScheduleWindow is a recurring weekly working window. Start and End are
// "HH:MM" and End is exclusive.
type ScheduleWindow struct {
	EmployeeID int    `json:"employeeId"`
	Day        string `json:"day"`
	Start      string `json:"startTime"`
	End        string `json:"endTime"`
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

type Appointment struct {
	ID         int    `json:"appointmentId"`
	EmployeeID int    `json:"employeeId"`
	CustomerID int    `json:"customerId"`
	ServiceID  int    `json:"serviceId,omitempty"`
	PetName    string `json:"petName"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     Status `json:"status"`
	CreatedAt  string `json:"createdAt,omitempty"`
}
