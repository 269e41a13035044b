package auth

import "context"

const (
	RoleEmployee = "Employee"
	RoleManager  = "Manager"
	RoleHR       = "HR"
)

const (
	PermReviewRead    = "review.read"
	PermReviewEdit    = "review.edit"
	PermReviewExport  = "review.export"
	PermReviewCreate  = "review.create"
	PermMeetingRead   = "meeting.read"
	PermMeetingWrite  = "meeting.write"
	PermMeetingCreate = "meeting.create"
	PermAuditRead     = "audit.read"
	PermMetricsRead   = "metrics.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermReviewRead,
		PermReviewEdit,
		PermMeetingRead,
		PermMeetingWrite,
	},
	RoleManager: {
		PermReviewRead,
		PermReviewEdit,
		PermReviewExport,
		PermMeetingRead,
		PermMeetingWrite,
		PermMeetingCreate,
	},
	RoleHR: {
		PermReviewRead,
		PermReviewExport,
		PermReviewCreate,
		PermMeetingRead,
		PermAuditRead,
		PermMetricsRead,
	},
}

// StaticPermissions satisfies the middleware's PermissionStore from the
// fixed role table; roles here are few and do not live in the database.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, roleName, permission string) (bool, error) {
	for _, candidate := range RolePermissions[roleName] {
		if candidate == permission {
			return true, nil
		}
	}
	return false, nil
}
