package models

// Role is the closed set of caller roles carried in the access token.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RolePatient, RoleDoctor, RoleStaff, RoleAdmin:
		return r, true
	}
	return "", false
}

// Capability names one action a role may perform.
type Capability string

const (
	CapViewSlots          Capability = "view_slots"
	CapManageAvailability Capability = "manage_availability"
	CapBook               Capability = "book"
	CapBookForOthers      Capability = "book_for_others"
	CapViewAppointments   Capability = "view_appointments"
	CapConfirm            Capability = "confirm"
	CapCheckIn            Capability = "check_in"
	CapStartVisit         Capability = "start_visit"
	CapCompleteVisit      Capability = "complete_visit"
	CapMarkNoShow         Capability = "mark_no_show"
	CapCancel             Capability = "cancel"
	CapReschedule         Capability = "reschedule"
	CapActOnAny           Capability = "act_on_any"
)

// RoleCapabilities is the single authorization table.
var RoleCapabilities = map[Role][]Capability{
	RolePatient: {
		CapViewSlots, CapBook, CapViewAppointments, CapCancel, CapReschedule,
	},
	RoleDoctor: {
		CapViewSlots, CapManageAvailability, CapViewAppointments, CapConfirm,
		CapCheckIn, CapStartVisit, CapCompleteVisit, CapMarkNoShow, CapCancel, CapReschedule,
	},
	RoleStaff: {
		CapViewSlots, CapBook, CapBookForOthers, CapViewAppointments, CapConfirm,
		CapCheckIn, CapMarkNoShow, CapCancel, CapReschedule, CapActOnAny,
	},
	RoleAdmin: {
		CapViewSlots, CapManageAvailability, CapBook, CapBookForOthers, CapViewAppointments,
		CapConfirm, CapCheckIn, CapStartVisit, CapCompleteVisit, CapMarkNoShow,
		CapCancel, CapReschedule, CapActOnAny,
	},
}

// StatusCapability is the capability required to move an appointment into status.
var StatusCapability = map[AppointmentStatus]Capability{
	StatusConfirmed:  CapConfirm,
	StatusCheckedIn:  CapCheckIn,
	StatusInProgress: CapStartVisit,
	StatusCompleted:  CapCompleteVisit,
	StatusNoShow:     CapMarkNoShow,
	StatusCancelled:  CapCancel,
}

// Principal is the authenticated caller, resolved once per request.
type Principal struct {
	ID   string
	Role Role
	caps map[Capability]struct{}
}

func NewPrincipal(id string, role Role) Principal {
	caps := make(map[Capability]struct{}, len(RoleCapabilities[role]))
	for _, c := range RoleCapabilities[role] {
		caps[c] = struct{}{}
	}
	return Principal{ID: id, Role: role, caps: caps}
}

func (p Principal) Can(c Capability) bool {
	_, ok := p.caps[c]
	return ok
}

// SystemPrincipal is used by internal callers that bypass ownership checks.
func SystemPrincipal() Principal {
	return NewPrincipal("system", RoleAdmin)
}
