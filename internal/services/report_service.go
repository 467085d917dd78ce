package services

import (
	"bytes"
	"fmt"
	"strconv"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
)

// ReportService renders job cards for print and spreadsheet export.
type ReportService struct {
	Header jobcard.Header
}

func NewReportService(header jobcard.Header) *ReportService {
	return &ReportService{Header: header}
}

var stageLabels = map[models.ProcessStage]string{
	models.StageChargePrep:   "Charge Preparation",
	models.StagePreWashing:   "Pre Washing",
	models.StagePreHeating:   "Pre Heating",
	models.StageCHT:          "CHT",
	models.StagePostWashing:  "Post Washing",
	models.StageHardness:     "As Quench Hardness",
	models.StageTempering:    "Tempering",
	models.StageShotBlasting: "Shot Blasting",
}

func (s *ReportService) header(pdf *gofpdf.Fpdf, title, formatNo, revNo, revDate string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 9, s.Header.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if s.Header.CompanyAddress != "" {
		pdf.CellFormat(190, 5, s.Header.CompanyAddress, "", 1, "C", false, 0, "")
	}
	contact := s.Header.Email
	if s.Header.Mobile != "" {
		if contact != "" {
			contact += " | "
		}
		contact += s.Header.Mobile
	}
	if contact != "" {
		pdf.CellFormat(190, 5, contact, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, title, "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(64, 6, "Format No: "+formatNo, "1", 0, "L", false, 0, "")
	pdf.CellFormat(63, 6, "Rev No: "+revNo, "1", 0, "L", false, 0, "")
	pdf.CellFormat(63, 6, "Rev Date: "+revDate, "1", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 7, title, "1", 1, "L", true, 0, "")
}

func headRow(pdf *gofpdf.Fpdf, widths []float64, labels ...string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, l := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 6, l, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
}

func row(pdf *gofpdf.Fpdf, widths []float64, values ...string) {
	for i, v := range values {
		ln := 0
		if i == len(values)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 6, truncate(v, int(widths[i]/1.9)), "1", ln, "L", false, 0, "")
	}
}

func truncate(s string, max int) string {
	if max > 3 && len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JobCardPDF renders one job card as the printed shop-floor form.
func (s *ReportService) JobCardPDF(card models.JobCard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	formatNo, revNo, revDate := card.FormatNo, card.RevNo, card.RevDate
	if formatNo == "" {
		formatNo, revNo, revDate = s.Header.FormatNo, s.Header.RevNo, s.Header.RevDate
	}
	s.header(pdf, "JOB CARD", formatNo, revNo, revDate)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, "Job Date: "+card.JobDate, "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Charge No: "+card.ChargeNo, "1", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Customer: "+card.CustomerName, "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "SQF No: "+card.SqfNo, "1", 1, "L", false, 0, "")

	sectionTitle(pdf, "Parts")
	widths := []float64{12, 70, 36, 36, 36}
	headRow(pdf, widths, "#", "Part Name", "Weight (KGS)", "Quantity", "Total (KGS)")
	for i, p := range card.Parts {
		row(pdf, widths, strconv.Itoa(i+1), p.PartName, jobcard.FormatKGS(p.Weight), p.Quantity, jobcard.FormatKGS(p.TotalWeight))
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(154, 7, "Total Weight", "1", 0, "R", false, 0, "")
	pdf.CellFormat(36, 7, jobcard.FormatKGS(jobcard.TotalWeight(card))+" KGS", "1", 1, "L", false, 0, "")

	sectionTitle(pdf, "Incoming Inspection - Operator: "+card.IncomingOperator)
	widths = []float64{50, 60, 20, 60}
	headRow(pdf, widths, "Check", "Value", "Done", "Remarks")
	ii := card.IncomingInspection
	for _, c := range []struct {
		label string
		check models.InspectionCheck
	}{
		{"Visual", ii.Visual},
		{"Punching", ii.Punching},
		{"Pasting", ii.Pasting},
		{"Fixture", ii.Fixture},
		{"Cut Piece", ii.CutPiece},
	} {
		row(pdf, widths, c.label, c.check.Value, yesNo(c.check.Done), c.check.Remarks)
	}

	sectionTitle(pdf, "Heat Treatment - Operator: "+card.HeatTreatmentOperator)
	widths = []float64{60, 35, 35, 60}
	headRow(pdf, widths, "Stage", "In", "Out", "Remarks")
	for _, st := range jobcard.NormalizeStageTimings(card.HeatTreatmentProcess) {
		row(pdf, widths, stageLabels[st.Stage], st.In, st.Out, st.Remarks)
	}

	sectionTitle(pdf, "Final Inspection - Operator: "+card.FinalInspectionOperator)
	widths = []float64{70, 60, 60}
	headRow(pdf, widths, "Measure", "Specified", "Actual")
	fi := card.FinalInspection
	row(pdf, widths, "Surface Hardness", fi.SurfaceHardness.Specified, fi.SurfaceHardness.Actual)
	row(pdf, widths, "Core Hardness", fi.CoreHardness.Specified, fi.CoreHardness.Actual)
	row(pdf, widths, "Case Depth", fi.CaseDepth.Specified, fi.CaseDepth.Actual)

	sectionTitle(pdf, "Quality")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(190, 6, "Remarks: "+card.Remarks, "1", "L", false)
	status := "Pending"
	if card.IsCompleted {
		status = "Completed"
	}
	pdf.CellFormat(95, 7, "QM Signature: "+card.QMSignature, "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Status: "+status, "1", 1, "L", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(190, 5, "Generated: "+timeutil.Now().Format(timeutil.DisplayLayout), "", 1, "R", false, 0, "")
	return output(pdf)
}

// ManagedJobCardPDF renders a managed job card with its process route and progress.
func (s *ReportService) ManagedJobCardPDF(card models.ManagedJobCard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	s.header(pdf, "JOB CARD "+card.JCNumber, card.FormatNumber, card.RevisionNumber, card.RevisionDate)

	pdf.SetFont("Arial", "", 10)
	pairs := [][2]string{
		{"Job Title: " + card.JobTitle, "Charge No: " + card.ChargeNumber},
		{"Customer: " + card.CustomerName, "PO No: " + card.PONumber},
		{"Part: " + card.PartName, "Part No: " + card.PartNumber},
		{"Weight: " + jobcard.FormatKGS(card.Weight) + " KGS x " + strconv.Itoa(card.Quantity), "Total: " + jobcard.FormatKGS(card.TotalWeight) + " KGS"},
		{"Status: " + string(card.Status), "Priority: " + string(card.Priority)},
		{"Start: " + card.StartDate, "End: " + card.EndDate},
		{"Assigned To: " + card.AssignedTo, "SQF No: " + card.SQFNumber},
	}
	for _, p := range pairs {
		pdf.CellFormat(95, 7, p[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(95, 7, p[1], "1", 1, "L", false, 0, "")
	}
	progress := "n/a"
	if pct, err := jobcard.Progress(card.ActualHours, card.EstimatedHours); err == nil {
		progress = fmt.Sprintf("%.0f%%", pct)
	}
	pdf.CellFormat(190, 7, fmt.Sprintf("Hours: %.1f of %.1f estimated (%s)", card.ActualHours, card.EstimatedHours, progress), "1", 1, "L", false, 0, "")

	sectionTitle(pdf, "Incoming Inspection")
	widths := []float64{50, 20, 50, 70}
	headRow(pdf, widths, "Check", "Done", "Operator", "Remarks")
	in := card.IncomingInspection
	vi := in.VisualInspection
	row(pdf, widths, "Visual (dent/rust)", yesNo(vi.DentDamage && vi.FreeFromRust), vi.OperatorSign, vi.Remarks)
	for _, c := range []struct {
		label string
		item  models.ChecklistItem
	}{
		{"Punching", in.Punching},
		{"Pasting", in.Pasting},
		{"Fixture Inspection", in.FixtureInspection},
		{"Cut Piece", in.CutPiece},
	} {
		row(pdf, widths, c.label, yesNo(c.item.Done), c.item.OperatorSign, c.item.Remarks)
	}

	sectionTitle(pdf, "Heat Treatment Process")
	widths = []float64{45, 22, 22, 30, 26, 45}
	headRow(pdf, widths, "Process", "In", "Out", "Operator", "Status", "Remarks")
	for _, st := range card.HeatTreatmentProcess {
		row(pdf, widths, st.ProcessName, st.InTime, st.OutTime, st.OperatorSign, string(st.Status), st.Remarks)
	}

	sectionTitle(pdf, "Final Inspection")
	widths = []float64{50, 45, 45, 50}
	headRow(pdf, widths, "Measure", "Specified", "Actual", "Remarks")
	fi := card.FinalInspection
	row(pdf, widths, "Surface Hardness", fi.SurfaceHardness.Specified, fi.SurfaceHardness.Actual, fi.SurfaceHardness.Remarks)
	row(pdf, widths, "Core Hardness", fi.CoreHardness.Specified, fi.CoreHardness.Actual, fi.CoreHardness.Remarks)
	row(pdf, widths, "Case Depth", fi.CaseDepth.Specified, fi.CaseDepth.Actual, fi.CaseDepth.Remarks)
	pdf.CellFormat(190, 7, "QM Signature: "+fi.QMSignature, "1", 1, "L", false, 0, "")

	if card.Notes != "" {
		sectionTitle(pdf, "Notes")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, card.Notes, "1", "L", false)
	}
	return output(pdf)
}

var excelHeaders = []string{
	"Job Date", "Customer", "Charge No", "SQF No", "Parts", "Total Weight (KGS)",
	"Incoming Operator", "Heat Treatment Operator", "Final Inspection Operator", "QM Signature",
	"Status", "Created At",
}

const excelSheet = "Job Cards"

// JobCardsExcel writes one row per job card.
func (s *ReportService) JobCardsExcel(cards []models.JobCard) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(excelSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(excelSheet, cell, h)
		f.SetCellStyle(excelSheet, cell, cell, headerStyle)
	}

	for r, c := range cards {
		status := "Pending"
		if c.IsCompleted {
			status = "Completed"
		}
		values := []interface{}{
			c.JobDate, c.CustomerName, c.ChargeNo, c.SqfNo, len(c.Parts), jobcard.TotalWeight(c),
			c.IncomingOperator, c.HeatTreatmentOperator, c.FinalInspectionOperator, c.QMSignature,
			status, timeutil.Display(c.CreatedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			f.SetCellValue(excelSheet, cell, v)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(excelHeaders))
	f.SetColWidth(excelSheet, "A", last, 18)
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
