package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
)

var testHeader = jobcard.Header{
	CompanyName:    "Test Heat Treaters",
	CompanyAddress: "Plot 1, MIDC",
	FormatNo:       "F/01",
	RevNo:          "00",
	RevDate:        "01/01/2024",
}

func newJobCardService(t *testing.T) *JobCardService {
	t.Helper()
	st := store.New[models.JobCard](store.NewMemorySlot(), "manufacturingJobCards")
	svc := NewJobCardService(st, testHeader)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("card-%d", n)
	}
	svc.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return svc
}

func sampleCard(customer string) models.JobCard {
	return models.JobCard{
		JobDate:      "2024-03-05",
		CustomerName: customer,
		ChargeNo:     "CH-1",
		Parts: []models.PartEntry{
			{PartName: "Gear", Weight: 1.25, Quantity: "4 NOS"},
			{PartName: "", Weight: 9, Quantity: "1"},
		},
	}
}

func TestJobCardCreate(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)

	card, err := svc.Create(ctx, sampleCard("Acme"))
	if err != nil {
		t.Fatal(err)
	}
	if card.ID != "card-1" || card.CreatedAt.IsZero() {
		t.Errorf("identity not assigned: %+v", card)
	}
	if len(card.Parts) != 1 || card.Parts[0].TotalWeight != 5 {
		t.Errorf("parts = %+v", card.Parts)
	}
	if card.CompanyName != testHeader.CompanyName || card.FormatNo != "F/01" {
		t.Errorf("header not stamped: %+v", card)
	}
	if len(card.HeatTreatmentProcess) != len(models.ProcessStages) {
		t.Errorf("stages = %d", len(card.HeatTreatmentProcess))
	}

	_, err = svc.Create(ctx, models.JobCard{CustomerName: "x"})
	var verr *jobcard.ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, jobcard.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestJobCardUpdatePreservesIdentity(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	orig, _ := svc.Create(ctx, sampleCard("Acme"))
	svc.SetCompletion(ctx, orig.ID, true)

	edit := sampleCard("Acme Ltd")
	edit.ID = "forged"
	edit.CreatedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	edit.IsCompleted = false
	got, err := svc.Update(ctx, orig.ID, edit)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != orig.ID || !got.CreatedAt.Equal(orig.CreatedAt) || !got.IsCompleted {
		t.Errorf("identity changed: %+v", got)
	}
	if got.CustomerName != "Acme Ltd" {
		t.Errorf("customer = %q", got.CustomerName)
	}

	if _, err := svc.Update(ctx, "missing", edit); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
}

func TestJobCardDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	a, _ := svc.Create(ctx, sampleCard("A"))
	b, _ := svc.Create(ctx, sampleCard("B"))
	c, _ := svc.Create(ctx, sampleCard("C"))

	if err := svc.Delete(ctx, b.ID, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v", err)
	}
	if err := svc.Delete(ctx, b.ID, true); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.List(ctx, "")
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != c.ID {
		t.Errorf("after delete = %+v", list)
	}

	if err := svc.Clear(ctx, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Errorf("clear err = %v", err)
	}
	if err := svc.Clear(ctx, true); err != nil {
		t.Fatal(err)
	}
	list, _ = svc.List(ctx, "")
	if len(list) != 0 {
		t.Errorf("after clear = %d", len(list))
	}
}

func TestJobCardListSearch(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	svc.Create(ctx, sampleCard("Acme"))
	svc.Create(ctx, sampleCard("Bolt Works"))

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"acme", 1},
		{"GEAR", 2},
		{"ch-1", 2},
		{"nothing", 0},
	}
	for _, tt := range tests {
		got, err := svc.List(ctx, tt.query)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("List(%q) = %d, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	svc.Create(ctx, sampleCard("Acme"))
	second, _ := svc.Create(ctx, sampleCard("Bolt"))
	svc.SetCompletion(ctx, second.ID, true)

	data, name, err := svc.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if name != "manufacturing-job-cards-2024-03-05.json" {
		t.Errorf("filename = %q", name)
	}
	if !bytes.Contains(data, []byte("\n  {")) {
		t.Errorf("export is not indented by two spaces")
	}

	other := newJobCardService(t)
	n, err := other.Import(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported %d", n)
	}
	again, _, _ := other.Export(ctx)
	if !bytes.Equal(data, again) {
		t.Errorf("round trip differs:\n%s\n---\n%s", data, again)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	svc.Create(ctx, sampleCard("Acme"))

	for _, in := range []string{`{"id":"x"}`, ``, `"text"`, `[{"id": 5}]`} {
		if _, err := svc.Import(ctx, []byte(in)); !errors.Is(err, ErrInvalidImport) {
			t.Errorf("Import(%q) err = %v", in, err)
		}
	}
	list, _ := svc.List(ctx, "")
	if len(list) != 1 {
		t.Errorf("list changed by rejected import: %d", len(list))
	}
}

func TestImportNormalizes(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	in := `[{"customerName":"Acme","parts":[{"partName":"Pin","weight":0.5,"quantity":"10 NOS","totalWeight":99}],"qmSignature":"QM"}]`
	if _, err := svc.Import(ctx, []byte(in)); err != nil {
		t.Fatal(err)
	}
	list, _ := svc.List(ctx, "")
	c := list[0]
	if c.ID == "" || c.CreatedAt.IsZero() {
		t.Errorf("identity not filled: %+v", c)
	}
	if c.Parts[0].TotalWeight != 5 || c.TotalWeight != 5 {
		t.Errorf("totals = %v / %v", c.Parts[0].TotalWeight, c.TotalWeight)
	}
	if !c.HasSection(models.SectionQuality) {
		t.Errorf("sections = %v", c.Sections)
	}
}

// legacyExport is a record as the first version of the app saved it: flat
// inspection form values and stages keyed by name.
const legacyExport = `[{
  "id": "1704067200000k3j5h2l9q",
  "isCompleted": false,
  "companyName": "JYOTI HEAT TREATMENT PVT LTD",
  "formatNo": "JHTPL/QA/F/04",
  "chargeNo": "CH-77",
  "jobDate": "2024-01-01",
  "customerName": "Acme",
  "sqfNo": "SQF-1",
  "parts": [{"partName": "Gear", "weight": 1.25, "quantity": "4 NOS", "totalWeight": 5}],
  "incomingOperator": "Sunil",
  "incomingInspection": {
    "visual1a": "No rust", "visual1aDone": "on", "visual1aRemarks": "",
    "punching": "JH-1", "punchingDone": null, "punchingRemarks": "faint",
    "pasting": null, "pastingDone": null, "pastingRemarks": null,
    "fixture": "OK", "fixtureDone": "on", "fixtureRemarks": null,
    "cutPiece": "", "cutPieceDone": null, "cutPieceRemarks": ""
  },
  "heatTreatmentOperator": "Ravi",
  "heatTreatmentProcess": {
    "chargePrep": {"in": "09:00", "out": "09:30", "remarks": ""},
    "cht": {"in": "10:00", "out": "14:00", "remarks": "860C"},
    "shotBlasting": {"in": null, "out": null, "remarks": null}
  },
  "finalInspectionOperator": "",
  "finalInspection": {
    "surfaceHardness": {"specified": "58-62 HRC", "actual": "60"},
    "coreHardness": {"specified": null, "actual": null},
    "caseDepth": {"specified": "0.8", "actual": "0.85"}
  },
  "remarks": null,
  "qmSignature": "",
  "createdAt": "2024-01-01T05:30:00.000Z"
}]`

func TestImportLegacyExport(t *testing.T) {
	ctx := context.Background()
	svc := newJobCardService(t)
	n, err := svc.Import(ctx, []byte(legacyExport))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d", n)
	}
	c, err := svc.Store.Get(ctx, "1704067200000k3j5h2l9q")
	if err != nil {
		t.Fatal(err)
	}

	in := c.IncomingInspection
	if in.Visual.Value != "No rust" || !in.Visual.Done {
		t.Errorf("visual = %+v", in.Visual)
	}
	if in.Punching.Value != "JH-1" || in.Punching.Done || in.Punching.Remarks != "faint" {
		t.Errorf("punching = %+v", in.Punching)
	}
	if !in.Fixture.Done || in.Pasting != (models.InspectionCheck{}) {
		t.Errorf("fixture = %+v, pasting = %+v", in.Fixture, in.Pasting)
	}

	if len(c.HeatTreatmentProcess) != len(models.ProcessStages) {
		t.Fatalf("stages = %d", len(c.HeatTreatmentProcess))
	}
	for i, st := range c.HeatTreatmentProcess {
		if st.Stage != models.ProcessStages[i] {
			t.Errorf("stage %d = %s, want %s", i, st.Stage, models.ProcessStages[i])
		}
	}
	cht := c.HeatTreatmentProcess[3]
	if cht.In != "10:00" || cht.Out != "14:00" || cht.Remarks != "860C" {
		t.Errorf("cht = %+v", cht)
	}
	if c.FinalInspection.CaseDepth.Actual != "0.85" {
		t.Errorf("final = %+v", c.FinalInspection)
	}
	if !c.HasSection(models.SectionHeatTreatment) || !c.HasSection(models.SectionInspection) {
		t.Errorf("sections = %v", c.Sections)
	}
	want := time.Date(2024, 1, 1, 5, 30, 0, 0, time.UTC)
	if !c.CreatedAt.Equal(want) {
		t.Errorf("createdAt = %v", c.CreatedAt)
	}

	// written back in the typed shape, which reads back unchanged
	data, _, _ := svc.Export(ctx)
	if !bytes.Contains(data, []byte(`"stage": "chargePrep"`)) || bytes.Contains(data, []byte("visual1a")) {
		t.Errorf("export not typed:\n%s", data)
	}
	other := newJobCardService(t)
	if _, err := other.Import(ctx, data); err != nil {
		t.Fatal(err)
	}
	again, _, _ := other.Export(ctx)
	if !bytes.Equal(data, again) {
		t.Error("typed export of a legacy import does not round trip")
	}
}
