package models

import (
	"fmt"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
//
//	scheduled → confirmed → checked-in → in-progress → completed
//	scheduled | confirmed → cancelled
//	confirmed → no-show
//	scheduled | confirmed → rescheduled → scheduled
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusCheckedIn   AppointmentStatus = "checked-in"
	StatusInProgress  AppointmentStatus = "in-progress"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no-show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is permitted from s.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// OccupiesSlot reports whether an appointment in status s blocks its time range.
func (s AppointmentStatus) OccupiesSlot() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that occupy a slot.
var ActiveStatuses = []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress}

const (
	MinAppointmentMinutes = 15
	MaxAppointmentMinutes = 180

	// AppointmentSchemaVersion is bumped whenever the stored document shape changes.
	AppointmentSchemaVersion = 1
)

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeFollowUp     AppointmentType = "follow-up"
	TypeCheckup      AppointmentType = "checkup"
	TypeProcedure    AppointmentType = "procedure"
	TypeEmergency    AppointmentType = "emergency"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeCheckup, TypeProcedure, TypeEmergency:
		return true
	}
	return false
}

// StatusHistoryEntry records one transition.
type StatusHistoryEntry struct {
	Status    AppointmentStatus `bson:"status" json:"status"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	ActorID   string            `bson:"actorId" json:"actorId"`
	Reason    string            `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes     string            `bson:"notes,omitempty" json:"notes,omitempty"`
}

type RefundDisposition string

const (
	RefundNotApplicable RefundDisposition = "not-applicable"
	RefundFull          RefundDisposition = "full"
	RefundNone          RefundDisposition = "none"
)

type CancellationRecord struct {
	Reason      string            `bson:"reason" json:"reason"`
	CancelledBy string            `bson:"cancelledBy" json:"cancelledBy"`
	CancelledAt time.Time         `bson:"cancelledAt" json:"cancelledAt"`
	Refund      RefundDisposition `bson:"refund" json:"refund"`
}

// RescheduleChange is one historical time change.
type RescheduleChange struct {
	OriginalStart time.Time `bson:"originalStart" json:"originalStart"`
	NewStart      time.Time `bson:"newStart" json:"newStart"`
	ActorID       string    `bson:"actorId" json:"actorId"`
	Reason        string    `bson:"reason,omitempty" json:"reason,omitempty"`
	At            time.Time `bson:"at" json:"at"`
}

// RescheduleRecord describes the latest time change plus the running count.
type RescheduleRecord struct {
	OriginalStart time.Time          `bson:"originalStart" json:"originalStart"`
	NewStart      time.Time          `bson:"newStart" json:"newStart"`
	RescheduledBy string             `bson:"rescheduledBy" json:"rescheduledBy"`
	Reason        string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Count         int                `bson:"count" json:"count"`
	Changes       []RescheduleChange `bson:"changes,omitempty" json:"changes,omitempty"`
}

// Appointment is the canonical appointment document.
type Appointment struct {
	ID              string          `bson:"id" json:"id"`
	Number          string          `bson:"number" json:"number"`
	ProviderID      string          `bson:"providerId" json:"providerId"`
	PatientID       string          `bson:"patientId" json:"patientId"`
	ScheduledStart  time.Time       `bson:"scheduledStart" json:"scheduledStart"`
	ScheduledEnd    time.Time       `bson:"scheduledEnd" json:"scheduledEnd"`
	DurationMinutes int             `bson:"durationMinutes" json:"durationMinutes"`
	Type            AppointmentType `bson:"type" json:"type"`
	Reason          string          `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes           string          `bson:"notes,omitempty" json:"notes,omitempty"`

	Status        AppointmentStatus    `bson:"status" json:"status"`
	StatusHistory []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	Cancellation  *CancellationRecord  `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Reschedule    *RescheduleRecord    `bson:"reschedule,omitempty" json:"reschedule,omitempty"`

	ConsultationFee float64 `bson:"consultationFee" json:"consultationFee"`
	Currency        string  `bson:"currency,omitempty" json:"currency,omitempty"`

	ConfirmedAt           *time.Time `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CheckedInAt           *time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	WaitTimeMinutes       *int       `bson:"waitTimeMinutes,omitempty" json:"waitTimeMinutes,omitempty"`
	StartedAt             *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt           *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	ActualDurationMinutes *int       `bson:"actualDurationMinutes,omitempty" json:"actualDurationMinutes,omitempty"`
	NoShowAt              *time.Time `bson:"noShowAt,omitempty" json:"noShowAt,omitempty"`

	// SlotKey is present only while the appointment occupies its slot; a unique
	// partial index on it is the storage-level guard against double booking.
	SlotKey       string    `bson:"slotKey,omitempty" json:"-"`
	Version       int       `bson:"version" json:"version"`
	SchemaVersion int       `bson:"schemaVersion" json:"-"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RescheduleCount is the number of completed time changes.
func (a *Appointment) RescheduleCount() int {
	if a.Reschedule == nil {
		return 0
	}
	return a.Reschedule.Count
}

// SlotKeyFor builds the uniqueness key for a provider and absolute start.
func SlotKeyFor(providerID string, start time.Time) string {
	return fmt.Sprintf("%s|%d", providerID, start.UTC().Unix())
}

// SyncSlotKey sets or clears SlotKey according to the current status.
func (a *Appointment) SyncSlotKey() {
	if a.Status.OccupiesSlot() {
		a.SlotKey = SlotKeyFor(a.ProviderID, a.ScheduledStart)
		return
	}
	a.SlotKey = ""
}

// BookingRequest carries the caller-supplied booking inputs.
type BookingRequest struct {
	ProviderID      string          `json:"providerId" binding:"required"`
	PatientID       string          `json:"patientId"`
	StartTime       time.Time       `json:"startTime" binding:"required"`
	DurationMinutes int             `json:"durationMinutes"`
	Type            AppointmentType `json:"type"`
	Reason          string          `json:"reason"`
	Notes           string          `json:"notes"`
}

type StatusChangeRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
	Reason string            `json:"reason"`
	Notes  string            `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RescheduleRequest struct {
	NewStartTime time.Time `json:"newStartTime" binding:"required"`
	Reason       string    `json:"reason"`
}
