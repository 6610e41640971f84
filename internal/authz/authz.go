// Package authz decides which actor may perform which action.
//
// Every request resolves one Actor from its token; operations then ask the policy
// table whether the actor's role may perform the action, instead of inspecting the
// role themselves.
package authz

import "hospital-app-server/internal/models"

// Action names one protected operation.
type Action string

const (
	ActionAppointmentCreate       Action = "appointment:create"
	ActionAppointmentList         Action = "appointment:list"
	ActionAppointmentView         Action = "appointment:view"
	ActionAppointmentPending      Action = "appointment:pending"
	ActionAppointmentApprove      Action = "appointment:approve"
	ActionAppointmentReject       Action = "appointment:reject"
	ActionAppointmentUpdateStatus Action = "appointment:update-status"
	ActionAppointmentUpdate       Action = "appointment:update"
	ActionAppointmentDelete       Action = "appointment:delete"

	ActionDischargeCreate Action = "discharge:create"
	ActionDischargeList   Action = "discharge:list"
	ActionDischargeView   Action = "discharge:view"
	ActionDischargeUpdate Action = "discharge:update"
	ActionDischargeDelete Action = "discharge:delete"
	ActionBillDownload    Action = "discharge:bill"

	ActionDirectoryRead  Action = "directory:read"
	ActionDirectoryWrite Action = "directory:write"

	ActionUserApprovalList Action = "user:approval-list"
	ActionUserApprove      Action = "user:approve"
	ActionUserReject       Action = "user:reject"
)

var staffActions = []Action{
	ActionAppointmentCreate, ActionAppointmentList, ActionAppointmentView,
	ActionAppointmentPending, ActionAppointmentApprove, ActionAppointmentReject,
	ActionAppointmentUpdateStatus, ActionAppointmentUpdate, ActionAppointmentDelete,
	ActionDischargeCreate, ActionDischargeList, ActionDischargeView,
	ActionDischargeUpdate, ActionDischargeDelete, ActionBillDownload,
	ActionDirectoryRead, ActionDirectoryWrite,
	ActionUserApprovalList, ActionUserApprove, ActionUserReject,
}

var policy = map[models.Role]map[Action]bool{
	models.RoleAdmin:        allow(staffActions...),
	models.RoleReceptionist: allow(staffActions...),
	models.RoleDoctor: allow(
		ActionAppointmentList, ActionAppointmentView,
		ActionDischargeList, ActionDischargeView,
		ActionDirectoryRead,
	),
	models.RolePatient: allow(
		ActionAppointmentCreate, ActionAppointmentList, ActionAppointmentView,
		ActionDischargeList, ActionDischargeView, ActionBillDownload,
		ActionDirectoryRead,
	),
}

// approvableRoles limits which accounts each role may approve or reject.
var approvableRoles = map[models.Role][]models.Role{
	models.RoleAdmin:        {models.RoleAdmin, models.RoleDoctor, models.RoleReceptionist, models.RolePatient},
	models.RoleReceptionist: {models.RoleDoctor, models.RolePatient},
}

func allow(actions ...Action) map[Action]bool {
	m := make(map[Action]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

// Actor is the authenticated caller together with the profile it owns, if any.
type Actor struct {
	UserID         string
	Role           models.Role
	PatientID      string
	DoctorID       string
	ReceptionistID string
}

// Can reports whether the actor's role is allowed to perform action.
func (a Actor) Can(action Action) bool {
	return policy[a.Role][action]
}

// IsStaff reports whether the actor sees every record rather than only its own.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleAdmin || a.Role == models.RoleReceptionist
}

// ApprovableRoles returns the account roles this actor may approve or reject.
func (a Actor) ApprovableRoles() []models.Role {
	return approvableRoles[a.Role]
}

// CanManageAccount reports whether the actor may approve or reject an account with role r.
func (a Actor) CanManageAccount(r models.Role) bool {
	for _, allowed := range approvableRoles[a.Role] {
		if allowed == r {
			return true
		}
	}
	return false
}
