// Package store declares the persistence contract the API handlers depend on.
package store

import (
	"context"
	"errors"
	"time"

	"formatrack_backend/models"
)

var (
	// ErrNotFound is returned when the addressed row, or a row it references, does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned on a uniqueness violation.
	ErrConflict = errors.New("store: conflict")
	// ErrInsufficientBalance is returned when a payment exceeds the client's remaining balance
	// at the moment it is applied.
	ErrInsufficientBalance = errors.New("store: payment exceeds remaining balance")
	// ErrActorNotFound is returned when the user recording a write no longer exists.
	ErrActorNotFound = errors.New("store: acting user not found")
)

type Users interface {
	UserByUsername(ctx context.Context, username string) (models.UserCredentials, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	CountUsers(ctx context.Context) (int, error)
}

type Clients interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id int) (models.Client, error)
	CreateClient(ctx context.Context, c models.Client) (models.Client, error)
	// UpdateClient writes only the fields present in p. now stamps date_statut_modifie
	// when the status actually changes.
	UpdateClient(ctx context.Context, id int, p models.ClientPatch, now time.Time) (models.Client, error)
	DeleteClient(ctx context.Context, id int) error
	ListClientPayments(ctx context.Context, clientID int) ([]models.PaymentRow, error)
	ListClientIncidents(ctx context.Context, clientID int) ([]models.IncidentRow, error)
}

type Courses interface {
	ListCourses(ctx context.Context) ([]models.CourseSummary, error)
	GetCourse(ctx context.Context, id int) (models.Course, error)
	CreateCourse(ctx context.Context, req models.CourseRequest) (models.Course, error)
	// UpdateCourse replaces the course fields and its whole enrollment set.
	UpdateCourse(ctx context.Context, id int, req models.CourseRequest) (models.Course, error)
	DeleteCourse(ctx context.Context, id int) error
	ListCourseClients(ctx context.Context, courseID int) ([]models.Client, error)
}

type Attendance interface {
	ListAttendance(ctx context.Context) ([]models.AttendanceRow, error)
	// RecordAttendance stores the record and, when non-nil, its derived incident in one unit.
	RecordAttendance(ctx context.Context, a models.Attendance, inc *models.Incident) (models.Attendance, error)
}

type Payments interface {
	ListPayments(ctx context.Context) ([]models.PaymentRow, error)
	GetPayment(ctx context.Context, id int) (models.PaymentRow, error)
	// RecordPayment inserts the payment and increments the client's montant_verse in one unit.
	// An unknown client is ErrNotFound; an unknown userID is ErrActorNotFound.
	RecordPayment(ctx context.Context, clientID int, montant int64, userID int, at time.Time) (models.PaymentRow, error)
}

type Incidents interface {
	ListIncidents(ctx context.Context) ([]models.IncidentRow, error)
	DeleteIncident(ctx context.Context, id int) error
}

type Stats interface {
	// DashboardStats aggregates counts and sums; "today" is [dayStart, dayStart+24h).
	DashboardStats(ctx context.Context, dayStart time.Time) (models.DashboardStats, error)
}

// Store is the full persistence surface.
type Store interface {
	Users
	Clients
	Courses
	Attendance
	Payments
	Incidents
	Stats
	Ping(ctx context.Context) error
}
