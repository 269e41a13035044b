package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"perfdesk/internal/domain/review"
)

// ReviewPDF renders the review summary sheet: competencies and goals
// with both ratings, the per-category and combined averages, and the
// qualitative label. Averages are shown to two decimals; only the label
// selection rounds.
func ReviewPDF(doc *review.Review) ([]byte, error) {
	summary := review.Summarize(doc)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Review")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Cycle: %s    Status: %s", doc.CycleID, doc.Status))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Competencies (weight %.1f%% each)", summary.CompetencyWeight))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, c := range doc.Competencies {
		pdf.Cell(0, 6, fmt.Sprintf("%s  -  self: %s  manager: %s", c.Name, ratingCell(c.SelfRating), ratingCell(c.ManagerRating)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Goals (weight %.1f%% each)", summary.GoalWeight))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	for _, g := range doc.AssignedGoals {
		pdf.Cell(0, 6, fmt.Sprintf("%s  [%s]  -  self: %s  manager: %s", g.Title, g.Status, ratingCell(g.SelfRating), ratingCell(g.ManagerRating)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Scores")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Self combined: "+averageCell(summary.SelfCombined, summary.SelfLabel))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Manager combined: "+averageCell(summary.ManagerCombined, summary.ManagerLabel))
	pdf.Ln(10)

	if doc.SummaryComments.EmployeeComment != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Employee summary")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, doc.SummaryComments.EmployeeComment, "", "", false)
		pdf.Ln(3)
	}
	if doc.SummaryComments.ManagerComment != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Manager summary")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, doc.SummaryComments.ManagerComment, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ratingCell(rating *int) string {
	if rating == nil {
		return "not yet rated"
	}
	return fmt.Sprintf("%d", *rating)
}

func averageCell(avg *float64, label string) string {
	if avg == nil {
		return "not yet rated"
	}
	return fmt.Sprintf("%.2f (%s)", *avg, label)
}
