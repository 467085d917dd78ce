package jobcard

import (
	"html/template"
	"io"
	"strings"

	"jobcard-backend/internal/models"
)

const previewPlaceholder = "Fill in the form to see the job card preview"

type PreviewPart struct {
	PartName    string `json:"partName"`
	Weight      string `json:"weight"`
	Quantity    string `json:"quantity"`
	TotalWeight string `json:"totalWeight"`
}

// Preview is the rendered summary of a draft. Empty is set while the
// customer name is still blank; the other fields are then unset.
type Preview struct {
	Empty       bool   `json:"empty"`
	Placeholder string `json:"placeholder,omitempty"`

	Header       Header        `json:"header"`
	JobDate      string        `json:"jobDate,omitempty"`
	CustomerName string        `json:"customerName,omitempty"`
	ChargeNo     string        `json:"chargeNo,omitempty"`
	SqfNo        string        `json:"sqfNo,omitempty"`
	Parts        []PreviewPart `json:"parts,omitempty"`
	TotalWeight  string        `json:"totalWeight,omitempty"`

	IncomingOperator        string `json:"incomingOperator,omitempty"`
	HeatTreatmentOperator   string `json:"heatTreatmentOperator,omitempty"`
	FinalInspectionOperator string `json:"finalInspectionOperator,omitempty"`
	QMSignature             string `json:"qmSignature,omitempty"`
	Remarks                 string `json:"remarks,omitempty"`
}

// BuildPreview renders a card into preview lines. Blank optional fields
// show as N/A.
func BuildPreview(header Header, card models.JobCard) Preview {
	if strings.TrimSpace(card.CustomerName) == "" {
		return Preview{Empty: true, Placeholder: previewPlaceholder, Header: header}
	}
	p := Preview{
		Header:                  header,
		JobDate:                 orNA(card.JobDate),
		CustomerName:            card.CustomerName,
		ChargeNo:                orNA(card.ChargeNo),
		SqfNo:                   orNA(card.SqfNo),
		TotalWeight:             FormatKGS(TotalWeight(card)),
		IncomingOperator:        orNA(card.IncomingOperator),
		HeatTreatmentOperator:   orNA(card.HeatTreatmentOperator),
		FinalInspectionOperator: orNA(card.FinalInspectionOperator),
		QMSignature:             orNA(card.QMSignature),
		Remarks:                 orNA(card.Remarks),
	}
	for _, part := range card.Parts {
		p.Parts = append(p.Parts, PreviewPart{
			PartName:    part.PartName,
			Weight:      FormatKGS(part.Weight),
			Quantity:    orNA(part.Quantity),
			TotalWeight: FormatKGS(part.TotalWeight),
		})
	}
	return p
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

var previewTemplate = template.Must(template.New("preview").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<div class="job-card-preview">
{{- if .Empty}}
<p class="placeholder">{{.Placeholder}}</p>
{{- else}}
<header>
<h2>{{.Header.CompanyName}}</h2>
<p>{{.Header.CompanyAddress}}</p>
<p>Format No: {{.Header.FormatNo}} | Rev No: {{.Header.RevNo}} | Rev Date: {{.Header.RevDate}}</p>
</header>
<table class="details">
<tr><th>Job Date</th><td>{{.JobDate}}</td><th>Charge No</th><td>{{.ChargeNo}}</td></tr>
<tr><th>Customer</th><td>{{.CustomerName}}</td><th>SQF No</th><td>{{.SqfNo}}</td></tr>
</table>
<table class="parts">
<tr><th>#</th><th>Part Name</th><th>Weight (KGS)</th><th>Quantity</th><th>Total (KGS)</th></tr>
{{- range $i, $p := .Parts}}
<tr><td>{{inc $i}}</td><td>{{$p.PartName}}</td><td>{{$p.Weight}}</td><td>{{$p.Quantity}}</td><td>{{$p.TotalWeight}}</td></tr>
{{- end}}
<tr class="total"><td colspan="4">Total Weight</td><td>{{.TotalWeight}} KGS</td></tr>
</table>
<table class="signatures">
<tr><th>Incoming Inspection</th><td>{{.IncomingOperator}}</td></tr>
<tr><th>Heat Treatment</th><td>{{.HeatTreatmentOperator}}</td></tr>
<tr><th>Final Inspection</th><td>{{.FinalInspectionOperator}}</td></tr>
<tr><th>QM Signature</th><td>{{.QMSignature}}</td></tr>
<tr><th>Remarks</th><td>{{.Remarks}}</td></tr>
</table>
{{- end}}
</div>
`))

// RenderPreviewHTML writes the preview as an HTML fragment.
func RenderPreviewHTML(w io.Writer, p Preview) error {
	return previewTemplate.Execute(w, p)
}
