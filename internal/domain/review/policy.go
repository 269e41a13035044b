package review

// Mutation policy guard. A capability lookup per (field, role); the
// server rejects disallowed mutations with a policy error rather than
// relying on the client to hide controls.

type Role string

const (
	RoleReviewee Role = "reviewee"
	RoleReviewer Role = "reviewer"
)

type Field string

const (
	FieldSelfRating         Field = "selfRating"
	FieldManagerRating      Field = "managerRating"
	FieldCompetencyEdit     Field = "competencyEdit"
	FieldGoalEdit           Field = "goalEdit"
	FieldReflectionQuestion Field = "reflectionQuestion"
	FieldReflectionAnswer   Field = "reflectionAnswer"
	FieldEmployeeSummary    Field = "employeeSummary"
	FieldManagerSummary     Field = "managerSummary"
	FieldEmployeeComment    Field = "employeeComment"
	FieldManagerComment     Field = "managerComment"
)

var roleCapabilities = map[Role][]Field{
	RoleReviewee: {
		FieldSelfRating,
		FieldReflectionAnswer,
		FieldEmployeeSummary,
		FieldEmployeeComment,
	},
	RoleReviewer: {
		FieldManagerRating,
		FieldCompetencyEdit,
		FieldGoalEdit,
		FieldReflectionQuestion,
		FieldManagerSummary,
		FieldManagerComment,
	},
}

func Allowed(field Field, role Role) bool {
	for _, capability := range roleCapabilities[role] {
		if capability == field {
			return true
		}
	}
	return false
}

// SummaryField maps a role to the summary comment it owns.
func SummaryField(role Role) Field {
	if role == RoleReviewer {
		return FieldManagerSummary
	}
	return FieldEmployeeSummary
}

// CommentField maps a role to its comment-authoring capability.
func CommentField(role Role) Field {
	if role == RoleReviewer {
		return FieldManagerComment
	}
	return FieldEmployeeComment
}

// AuthorRole is the wire tag stored on comments authored by the role.
func AuthorRole(role Role) string {
	if role == RoleReviewer {
		return AuthorRoleManager
	}
	return AuthorRoleEmployee
}
