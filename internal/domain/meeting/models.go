package meeting

import (
	"errors"
	"time"
)

// Meeting is a 1:1 between an employee and their manager. The editable
// free-text fields live in a keyed field store, one row per field, so
// each updates independently.
type Meeting struct {
	ID          string            `json:"id"`
	EmployeeID  string            `json:"employeeId"`
	ManagerID   string            `json:"managerId"`
	ScheduledAt time.Time         `json:"scheduledAt"`
	Fields      map[string]string `json:"fields"`
}

const (
	FieldAgenda       = "agenda"
	FieldSharedNotes  = "sharedNotes"
	FieldManagerNotes = "managerNotes"
	FieldTranscript   = "transcript"
	FieldActionItems  = "actionItems"
	FieldDocumentURL  = "documentUrl"
)

var editableFields = map[string]bool{
	FieldAgenda:       true,
	FieldSharedNotes:  true,
	FieldManagerNotes: true,
	FieldTranscript:   true,
	FieldActionItems:  true,
	FieldDocumentURL:  true,
}

func ValidField(field string) bool {
	return editableFields[field]
}

// CanEdit gates field edits to meeting participants; manager notes are
// manager-only.
func CanEdit(m Meeting, field, userID string) bool {
	if field == FieldManagerNotes {
		return userID == m.ManagerID
	}
	return userID == m.EmployeeID || userID == m.ManagerID
}

var (
	ErrUnknownField = errors.New("unknown meeting field")
	ErrNotFound     = errors.New("meeting not found")
	ErrStaleWrite   = errors.New("stale write discarded")
)
