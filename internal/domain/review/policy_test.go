package review

import "testing"

func TestRevieweeCapabilities(t *testing.T) {
	allowed := []Field{FieldSelfRating, FieldReflectionAnswer, FieldEmployeeSummary, FieldEmployeeComment}
	for _, field := range allowed {
		if !Allowed(field, RoleReviewee) {
			t.Fatalf("reviewee should be allowed %s", field)
		}
	}
	denied := []Field{FieldManagerRating, FieldCompetencyEdit, FieldGoalEdit, FieldReflectionQuestion, FieldManagerSummary, FieldManagerComment}
	for _, field := range denied {
		if Allowed(field, RoleReviewee) {
			t.Fatalf("reviewee should be denied %s", field)
		}
	}
}

func TestReviewerCapabilities(t *testing.T) {
	allowed := []Field{FieldManagerRating, FieldCompetencyEdit, FieldGoalEdit, FieldReflectionQuestion, FieldManagerSummary, FieldManagerComment}
	for _, field := range allowed {
		if !Allowed(field, RoleReviewer) {
			t.Fatalf("reviewer should be allowed %s", field)
		}
	}
	denied := []Field{FieldSelfRating, FieldReflectionAnswer, FieldEmployeeSummary, FieldEmployeeComment}
	for _, field := range denied {
		if Allowed(field, RoleReviewer) {
			t.Fatalf("reviewer should be denied %s", field)
		}
	}
}

func TestSummaryFieldByRole(t *testing.T) {
	if SummaryField(RoleReviewee) != FieldEmployeeSummary {
		t.Fatal("reviewee should own the employee summary")
	}
	if SummaryField(RoleReviewer) != FieldManagerSummary {
		t.Fatal("reviewer should own the manager summary")
	}
}

func TestAuthorRoleTag(t *testing.T) {
	if AuthorRole(RoleReviewee) != AuthorRoleEmployee {
		t.Fatalf("unexpected author role for reviewee: %s", AuthorRole(RoleReviewee))
	}
	if AuthorRole(RoleReviewer) != AuthorRoleManager {
		t.Fatalf("unexpected author role for reviewer: %s", AuthorRole(RoleReviewer))
	}
}
