package jobcard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jobcard-backend/internal/models"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnknownField   = errors.New("unknown field")
	ErrUnknownPartRow = errors.New("unknown part row")
	ErrInvalidValue   = errors.New("invalid field value")
)

// ValidationError lists the required fields a job card is missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validate enforces the required fields of a job card: the header fields and
// at least one named part.
func Validate(card models.JobCard) error {
	var missing []string
	if strings.TrimSpace(card.JobDate) == "" {
		missing = append(missing, "jobDate")
	}
	if strings.TrimSpace(card.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(card.ChargeNo) == "" {
		missing = append(missing, "chargeNo")
	}
	named := false
	for _, p := range card.Parts {
		if strings.TrimSpace(p.PartName) != "" {
			named = true
			break
		}
	}
	if !named {
		missing = append(missing, "parts.partName")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Header is the fixed document header stamped on every job card.
type Header struct {
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	FormatNo       string `json:"formatNo"`
	RevNo          string `json:"revNo"`
	RevDate        string `json:"revDate"`
}

// DraftPart is a part row on the form. Row is the display number and is
// never reused within one draft.
type DraftPart struct {
	Row int `json:"row"`
	models.PartEntry
}

// DraftState is the serialisable state of a form.
type DraftState struct {
	Editing   bool          `json:"editing"`
	EditingID string        `json:"editingId,omitempty"`
	Card      models.JobCard `json:"card"`
	Parts     []DraftPart   `json:"parts"`
	Preview   Preview       `json:"preview"`
}

// Form is the editing state of one job card draft. It is not safe for
// concurrent use; callers serialise access.
type Form struct {
	header  Header
	draft   models.JobCard
	parts   []DraftPart
	nextRow int
	origin  *models.JobCard
	preview Preview
}

func NewForm(header Header) *Form {
	return &Form{header: header}
}

// StartNew resets the draft to an empty card dated today with one part row.
func (f *Form) StartNew(today time.Time) {
	f.origin = nil
	f.draft = models.JobCard{
		JobDate:              today.Format("2006-01-02"),
		HeatTreatmentProcess: DefaultStageTimings(),
	}
	f.parts = nil
	f.nextRow = 0
	f.AddPartRow()
}

// StartEdit loads a snapshot of an existing card into the draft.
func (f *Form) StartEdit(existing models.JobCard) {
	snap := existing.Clone()
	f.origin = &snap
	f.draft = existing.Clone()
	f.draft.Parts = nil
	f.draft.HeatTreatmentProcess = NormalizeStageTimings(existing.HeatTreatmentProcess)
	f.parts = nil
	f.nextRow = 0
	for _, p := range existing.Parts {
		f.nextRow++
		f.parts = append(f.parts, DraftPart{Row: f.nextRow, PartEntry: p})
	}
	if len(f.parts) == 0 {
		f.AddPartRow()
		return
	}
	f.refresh()
}

// AddPartRow appends an empty part and returns its row number.
func (f *Form) AddPartRow() int {
	f.nextRow++
	f.parts = append(f.parts, DraftPart{Row: f.nextRow})
	f.refresh()
	return f.nextRow
}

func (f *Form) RemovePartRow(row int) error {
	for i, p := range f.parts {
		if p.Row == row {
			f.parts = append(f.parts[:i:i], f.parts[i+1:]...)
			f.refresh()
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownPartRow, row)
}

// UpdateField sets one field addressed by a dotted path and recomputes the
// preview. Unknown paths are rejected rather than ignored.
func (f *Form) UpdateField(path, value string) error {
	segs := strings.Split(path, ".")
	var err error
	switch {
	case len(segs) == 1:
		err = f.setHeader(segs[0], value)
	case len(segs) == 3 && segs[0] == "parts":
		err = f.setPart(segs[1], segs[2], value)
	case len(segs) == 3 && segs[0] == "incomingInspection":
		err = f.setCheck(segs[1], segs[2], value)
	case len(segs) == 3 && segs[0] == "heatTreatment":
		err = f.setStage(segs[1], segs[2], value)
	case len(segs) == 3 && segs[0] == "finalInspection":
		err = f.setMeasure(segs[1], segs[2], value)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if err != nil {
		return err
	}
	f.refresh()
	return nil
}

var headerFields = map[string]func(*models.JobCard) *string{
	"jobDate":                 func(c *models.JobCard) *string { return &c.JobDate },
	"customerName":            func(c *models.JobCard) *string { return &c.CustomerName },
	"chargeNo":                func(c *models.JobCard) *string { return &c.ChargeNo },
	"sqfNo":                   func(c *models.JobCard) *string { return &c.SqfNo },
	"incomingOperator":        func(c *models.JobCard) *string { return &c.IncomingOperator },
	"heatTreatmentOperator":   func(c *models.JobCard) *string { return &c.HeatTreatmentOperator },
	"finalInspectionOperator": func(c *models.JobCard) *string { return &c.FinalInspectionOperator },
	"qmSignature":             func(c *models.JobCard) *string { return &c.QMSignature },
	"remarks":                 func(c *models.JobCard) *string { return &c.Remarks },
}

var checkFields = map[string]func(*models.IncomingInspection) *models.InspectionCheck{
	"visual":   func(i *models.IncomingInspection) *models.InspectionCheck { return &i.Visual },
	"punching": func(i *models.IncomingInspection) *models.InspectionCheck { return &i.Punching },
	"pasting":  func(i *models.IncomingInspection) *models.InspectionCheck { return &i.Pasting },
	"fixture":  func(i *models.IncomingInspection) *models.InspectionCheck { return &i.Fixture },
	"cutPiece": func(i *models.IncomingInspection) *models.InspectionCheck { return &i.CutPiece },
}

var measureFields = map[string]func(*models.FinalInspection) *models.Measurement{
	"surfaceHardness": func(i *models.FinalInspection) *models.Measurement { return &i.SurfaceHardness },
	"coreHardness":    func(i *models.FinalInspection) *models.Measurement { return &i.CoreHardness },
	"caseDepth":       func(i *models.FinalInspection) *models.Measurement { return &i.CaseDepth },
}

func (f *Form) setHeader(name, value string) error {
	field, ok := headerFields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	*field(&f.draft) = value
	return nil
}

func (f *Form) setPart(rowText, name, value string) error {
	row, err := strconv.Atoi(rowText)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownPartRow, rowText)
	}
	idx := -1
	for i := range f.parts {
		if f.parts[i].Row == row {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownPartRow, row)
	}
	p := &f.parts[idx]
	switch name {
	case "partName":
		p.PartName = value
	case "weight":
		p.Weight = ParseWeight(value)
	case "quantity":
		p.Quantity = value
	default:
		return fmt.Errorf("%w: parts.%d.%s", ErrUnknownField, row, name)
	}
	p.TotalWeight = ComputeLineTotal(p.Weight, p.Quantity)
	return nil
}

func (f *Form) setCheck(check, name, value string) error {
	get, ok := checkFields[check]
	if !ok {
		return fmt.Errorf("%w: incomingInspection.%s", ErrUnknownField, check)
	}
	c := get(&f.draft.IncomingInspection)
	switch name {
	case "value":
		c.Value = value
	case "remarks":
		c.Remarks = value
	case "done":
		done, err := parseFlag(value)
		if err != nil {
			return err
		}
		c.Done = done
	default:
		return fmt.Errorf("%w: incomingInspection.%s.%s", ErrUnknownField, check, name)
	}
	return nil
}

func (f *Form) setStage(stage, name, value string) error {
	idx := -1
	for i, st := range f.draft.HeatTreatmentProcess {
		if string(st.Stage) == stage {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: heatTreatment.%s", ErrUnknownField, stage)
	}
	st := &f.draft.HeatTreatmentProcess[idx]
	switch name {
	case "in":
		st.In = value
	case "out":
		st.Out = value
	case "remarks":
		st.Remarks = value
	default:
		return fmt.Errorf("%w: heatTreatment.%s.%s", ErrUnknownField, stage, name)
	}
	return nil
}

func (f *Form) setMeasure(measure, name, value string) error {
	get, ok := measureFields[measure]
	if !ok {
		return fmt.Errorf("%w: finalInspection.%s", ErrUnknownField, measure)
	}
	m := get(&f.draft.FinalInspection)
	switch name {
	case "specified":
		m.Specified = value
	case "actual":
		m.Actual = value
	default:
		return fmt.Errorf("%w: finalInspection.%s.%s", ErrUnknownField, measure, name)
	}
	return nil
}

func parseFlag(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "on", "1", "done":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a yes/no value", ErrInvalidValue, v)
}

// Submit validates the draft and returns the finished card. An edit keeps
// the original id, createdAt and completion flag; a new card gets newID and now.
func (f *Form) Submit(now time.Time, newID string) (models.JobCard, error) {
	card := f.card()
	if err := Validate(card); err != nil {
		return models.JobCard{}, err
	}
	if f.origin != nil {
		card.ID = f.origin.ID
		card.CreatedAt = f.origin.CreatedAt
		card.IsCompleted = f.origin.IsCompleted
		card.Sections = f.origin.Sections
	} else {
		card.ID = newID
		card.CreatedAt = now
		card.IsCompleted = false
		card.Sections = nil
	}
	card.Sections = DeriveSections(card)
	return card, nil
}

// card assembles the draft into a job card: header stamped, unnamed part
// rows dropped and part totals recomputed.
func (f *Form) card() models.JobCard {
	card := f.draft.Clone()
	card.CompanyName = f.header.CompanyName
	card.CompanyAddress = f.header.CompanyAddress
	card.FormatNo = f.header.FormatNo
	card.RevNo = f.header.RevNo
	card.RevDate = f.header.RevDate
	card.Parts = []models.PartEntry{}
	for _, p := range f.parts {
		if strings.TrimSpace(p.PartName) == "" {
			continue
		}
		entry := p.PartEntry
		entry.TotalWeight = ComputeLineTotal(entry.Weight, entry.Quantity)
		card.Parts = append(card.Parts, entry)
	}
	return card
}

func (f *Form) refresh() {
	f.preview = BuildPreview(f.header, f.card())
}

func (f *Form) Preview() Preview {
	return f.preview
}

// EditingID returns the id of the card being edited, if any.
func (f *Form) EditingID() (string, bool) {
	if f.origin == nil {
		return "", false
	}
	return f.origin.ID, true
}

func (f *Form) State() DraftState {
	id, editing := f.EditingID()
	return DraftState{
		Editing:   editing,
		EditingID: id,
		Card:      f.draft.Clone(),
		Parts:     append([]DraftPart(nil), f.parts...),
		Preview:   f.preview,
	}
}
