package api

import "io"

// User is the account record returned by the API.
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	UserType     string `json:"user_type"`
	BusinessName string `json:"business_name,omitempty"`
	Address      string `json:"address,omitempty"`
	DateJoined   string `json:"date_joined,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Tokens is the access/refresh token pair.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// UserUpdate is a partial user record; nil fields are left unchanged.
type UserUpdate struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// Service request statuses.
const (
	StatusDraft          = "draft"
	StatusPendingPayment = "pending_payment"
	StatusInProgress     = "in_progress"
	StatusCompleted      = "completed"
)

// RequestStatuses lists the service request statuses in workflow order.
var RequestStatuses = []string{StatusDraft, StatusPendingPayment, StatusInProgress, StatusCompleted}

// RequestOwner is the client a service request belongs to.
type RequestOwner struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ServiceRequest is a client's request for a service.
type ServiceRequest struct {
	ID              int           `json:"id"`
	User            *RequestOwner `json:"user,omitempty"`
	ServiceType     string        `json:"service_type"`
	Status          string        `json:"status"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	Price           *float64      `json:"price,omitempty"`
	CreatedAt       string        `json:"created_at"`
	UpdatedAt       string        `json:"updated_at,omitempty"`
	Documents       []Document    `json:"documents,omitempty"`
}

// NewServiceRequest is the body used to open a service request.
type NewServiceRequest struct {
	ServiceType             string `json:"service_type"`
	NationalInsuranceNumber string `json:"national_insurance_number"`
	UTRNumber               string `json:"utr_number"`
	ReferenceNumber         string `json:"reference_number"`
	Status                  string `json:"status"`
}

// Document is a file stored against a service request.
type Document struct {
	ID          int    `json:"id"`
	File        string `json:"file"`
	Description string `json:"description"`
	UploadedAt  string `json:"uploaded_at"`
	Service     int    `json:"service,omitempty"`
}

// Upload is a file to send in a multipart body.
type Upload struct {
	Filename    string
	Description string
	Content     io.Reader
}

// Appointment statuses.
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

// Appointment is a booked consultation.
type Appointment struct {
	ID       int    `json:"id"`
	Customer string `json:"customer,omitempty"`
	Type     string `json:"type,omitempty"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

// Payment is one payment made by a client.
type Payment struct {
	ID          int     `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
}

// Customer is a client account as listed for staff.
type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
}
