package models

import "time"

// PartEntry is one manufactured item on a job card.
type PartEntry struct {
	PartName    string  `json:"partName"`
	Weight      float64 `json:"weight"`      // KGS per unit
	Quantity    string  `json:"quantity"`    // free text, e.g. "56 NOS"
	TotalWeight float64 `json:"totalWeight"` // KGS, weight x numeric quantity
}

// InspectionCheck is one line of the incoming inspection checklist.
type InspectionCheck struct {
	Value   string `json:"value"`
	Done    bool   `json:"done"`
	Remarks string `json:"remarks"`
}

type IncomingInspection struct {
	Visual   InspectionCheck `json:"visual"`
	Punching InspectionCheck `json:"punching"`
	Pasting  InspectionCheck `json:"pasting"`
	Fixture  InspectionCheck `json:"fixture"`
	CutPiece InspectionCheck `json:"cutPiece"`
}

// ProcessStage names one step of the heat treatment cycle.
type ProcessStage string

const (
	StageChargePrep   ProcessStage = "chargePrep"
	StagePreWashing   ProcessStage = "preWashing"
	StagePreHeating   ProcessStage = "preHeating"
	StageCHT          ProcessStage = "cht"
	StagePostWashing  ProcessStage = "postWashing"
	StageHardness     ProcessStage = "hardness"
	StageTempering    ProcessStage = "tempering"
	StageShotBlasting ProcessStage = "shotBlasting"
)

// ProcessStages is the fixed order of the heat treatment cycle.
var ProcessStages = []ProcessStage{
	StageChargePrep,
	StagePreWashing,
	StagePreHeating,
	StageCHT,
	StagePostWashing,
	StageHardness,
	StageTempering,
	StageShotBlasting,
}

type StageTiming struct {
	Stage   ProcessStage `json:"stage"`
	In      string       `json:"in"`
	Out     string       `json:"out"`
	Remarks string       `json:"remarks"`
}

// Measurement pairs a specified value with the measured one.
type Measurement struct {
	Specified string `json:"specified"`
	Actual    string `json:"actual"`
}

type FinalInspection struct {
	SurfaceHardness Measurement `json:"surfaceHardness"`
	CoreHardness    Measurement `json:"coreHardness"`
	CaseDepth       Measurement `json:"caseDepth"`
}

// WorkSection is a stage of the shop floor a job card has reached.
type WorkSection string

const (
	SectionHeatTreatment WorkSection = "heat-treatment"
	SectionInspection    WorkSection = "inspection"
	SectionQuality       WorkSection = "quality"
)

// JobCard tracks one heat-treatment batch from intake to quality sign-off.
// Field names follow the persisted document format.
type JobCard struct {
	ID          string    `json:"id"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`

	CompanyName    string `json:"companyName,omitempty"`
	CompanyAddress string `json:"companyAddress,omitempty"`
	FormatNo       string `json:"formatNo,omitempty"`
	RevNo          string `json:"revNo,omitempty"`
	RevDate        string `json:"revDate,omitempty"`

	JobDate      string      `json:"jobDate"`
	CustomerName string      `json:"customerName"`
	ChargeNo     string      `json:"chargeNo"`
	SqfNo        string      `json:"sqfNo"`
	Parts        []PartEntry `json:"parts"`

	IncomingOperator   string             `json:"incomingOperator"`
	IncomingInspection IncomingInspection `json:"incomingInspection"`

	HeatTreatmentOperator string        `json:"heatTreatmentOperator"`
	HeatTreatmentProcess  []StageTiming `json:"heatTreatmentProcess"`

	FinalInspectionOperator string          `json:"finalInspectionOperator"`
	FinalInspection         FinalInspection `json:"finalInspection"`

	Remarks     string `json:"remarks"`
	QMSignature string `json:"qmSignature"`

	Sections []WorkSection `json:"sections,omitempty"`
}

func (j JobCard) RecordID() string {
	return j.ID
}

// Clone returns a copy that shares no slices with j.
func (j JobCard) Clone() JobCard {
	c := j
	if j.Parts != nil {
		c.Parts = append([]PartEntry(nil), j.Parts...)
	}
	if j.HeatTreatmentProcess != nil {
		c.HeatTreatmentProcess = append([]StageTiming(nil), j.HeatTreatmentProcess...)
	}
	if j.Sections != nil {
		c.Sections = append([]WorkSection(nil), j.Sections...)
	}
	return c
}

// HasSection reports whether the card has reached the given work section.
func (j JobCard) HasSection(s WorkSection) bool {
	for _, have := range j.Sections {
		if have == s {
			return true
		}
	}
	return false
}

// Stage returns the timing row for a heat treatment stage.
func (j JobCard) Stage(stage ProcessStage) (StageTiming, bool) {
	for _, st := range j.HeatTreatmentProcess {
		if st.Stage == stage {
			return st, true
		}
	}
	return StageTiming{}, false
}

// JobCardView is the API shape of a job card with its derived totals.
type JobCardView struct {
	JobCard
	TotalWeight float64 `json:"totalWeight"`
	PartCount   int     `json:"partCount"`
}

// CompletionRequest toggles the completion flag of a job card.
type CompletionRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

// ShareRequest sends the job card summary to a phone number.
type ShareRequest struct {
	Phone string `json:"phone"`
}
