package models

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in-progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusOnHold     JobStatus = "on-hold"
	JobStatusCancelled  JobStatus = "cancelled"
)

type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityMedium JobPriority = "medium"
	PriorityHigh   JobPriority = "high"
	PriorityUrgent JobPriority = "urgent"
)

// StageStatus is the progress of one process step on a managed job card.
type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusInProgress StageStatus = "in-progress"
	StageStatusCompleted  StageStatus = "completed"
)

type ChecklistItem struct {
	Done         bool   `json:"done"`
	OperatorSign string `json:"operatorSign"`
	Remarks      string `json:"remarks"`
}

type VisualInspection struct {
	DentDamage   bool   `json:"dentDamage"`
	FreeFromRust bool   `json:"freeFromRust"`
	OperatorSign string `json:"operatorSign"`
	Remarks      string `json:"remarks"`
}

type InspectionStage struct {
	VisualInspection  VisualInspection `json:"visualInspection"`
	Punching          ChecklistItem    `json:"punching"`
	Pasting           ChecklistItem    `json:"pasting"`
	FixtureInspection ChecklistItem    `json:"fixtureInspection"`
	CutPiece          ChecklistItem    `json:"cutPiece"`
}

type ProcessStep struct {
	ID           string      `json:"id"`
	ProcessName  string      `json:"processName"`
	InTime       string      `json:"inTime"`
	OutTime      string      `json:"outTime"`
	OperatorSign string      `json:"operatorSign"`
	Remarks      string      `json:"remarks"`
	Status       StageStatus `json:"status"`
}

type MeasuredValue struct {
	Specified string `json:"specified"`
	Actual    string `json:"actual"`
	Remarks   string `json:"remarks"`
}

type ManagedFinalInspection struct {
	SurfaceHardness MeasuredValue `json:"surfaceHardness"`
	CoreHardness    MeasuredValue `json:"coreHardness"`
	CaseDepth       MeasuredValue `json:"caseDepth"`
	QMSignature     string        `json:"qmSignature"`
	Remarks         string        `json:"remarks"`
}

// StatusChange is one entry of a managed job card's status audit trail.
type StatusChange struct {
	From      JobStatus `json:"from"`
	To        JobStatus `json:"to"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// ManagedJobCard is the job card used by the job card master screen:
// numbered, prioritised and scheduled against estimated hours.
type ManagedJobCard struct {
	ID             string      `json:"id"`
	JCNumber       string      `json:"jcNumber"`
	ChargeNumber   string      `json:"chargeNumber"`
	JobTitle       string      `json:"jobTitle"`
	JobDescription string      `json:"jobDescription"`
	CustomerID     string      `json:"customerId"`
	CustomerName   string      `json:"customerName"`
	PartID         string      `json:"partId"`
	PartName       string      `json:"partName"`
	PartNumber     string      `json:"partNumber"`
	PONumber       string      `json:"poNumber"`
	SQFNumber      string      `json:"sqfNumber"`
	Weight         float64     `json:"weight"`
	Quantity       int         `json:"quantity"`
	TotalWeight    float64     `json:"totalWeight"`
	FixtureWeight  float64     `json:"fixtureWeight"`
	AssignedTo     string      `json:"assignedTo"`
	StartDate      string      `json:"startDate"`
	EndDate        string      `json:"endDate"`
	Status         JobStatus   `json:"status"`
	Priority       JobPriority `json:"priority"`
	EstimatedHours float64     `json:"estimatedHours"`
	ActualHours    float64     `json:"actualHours"`
	Notes          string      `json:"notes"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`

	IncomingInspection   InspectionStage        `json:"incomingInspection"`
	HeatTreatmentProcess []ProcessStep          `json:"heatTreatmentProcess"`
	FinalInspection      ManagedFinalInspection `json:"finalInspection"`

	FormatNumber   string `json:"formatNumber"`
	RevisionNumber string `json:"revisionNumber"`
	RevisionDate   string `json:"revisionDate"`

	StatusHistory []StatusChange `json:"statusHistory,omitempty"`
}

func (m ManagedJobCard) RecordID() string {
	return m.ID
}

func (m ManagedJobCard) Clone() ManagedJobCard {
	c := m
	if m.HeatTreatmentProcess != nil {
		c.HeatTreatmentProcess = append([]ProcessStep(nil), m.HeatTreatmentProcess...)
	}
	if m.StatusHistory != nil {
		c.StatusHistory = append([]StatusChange(nil), m.StatusHistory...)
	}
	return c
}

// ManagedJobCardRequest carries the editable fields of a managed job card.
// Identity, number and timestamps are never taken from a request.
type ManagedJobCardRequest struct {
	ChargeNumber   string      `json:"chargeNumber"`
	JobTitle       string      `json:"jobTitle"`
	JobDescription string      `json:"jobDescription"`
	CustomerID     string      `json:"customerId"`
	CustomerName   string      `json:"customerName"`
	PartID         string      `json:"partId"`
	PartName       string      `json:"partName"`
	PartNumber     string      `json:"partNumber"`
	PONumber       string      `json:"poNumber"`
	SQFNumber      string      `json:"sqfNumber"`
	Weight         float64     `json:"weight"`
	Quantity       int         `json:"quantity"`
	FixtureWeight  float64     `json:"fixtureWeight"`
	AssignedTo     string      `json:"assignedTo"`
	StartDate      string      `json:"startDate"`
	EndDate        string      `json:"endDate"`
	Status         JobStatus   `json:"status"`
	Priority       JobPriority `json:"priority"`
	EstimatedHours float64     `json:"estimatedHours"`
	ActualHours    float64     `json:"actualHours"`
	Notes          string      `json:"notes"`

	IncomingInspection   InspectionStage        `json:"incomingInspection"`
	HeatTreatmentProcess []ProcessStep          `json:"heatTreatmentProcess,omitempty"`
	FinalInspection      ManagedFinalInspection `json:"finalInspection"`

	FormatNumber   string `json:"formatNumber"`
	RevisionNumber string `json:"revisionNumber"`
	RevisionDate   string `json:"revisionDate"`
}

type StatusUpdateRequest struct {
	Status JobStatus `json:"status"`
}

// StageUpdateRequest patches one process step; nil fields are left unchanged.
type StageUpdateRequest struct {
	InTime       *string      `json:"inTime,omitempty"`
	OutTime      *string      `json:"outTime,omitempty"`
	OperatorSign *string      `json:"operatorSign,omitempty"`
	Remarks      *string      `json:"remarks,omitempty"`
	Status       *StageStatus `json:"status,omitempty"`
}

type ProgressResponse struct {
	ID             string  `json:"id"`
	JCNumber       string  `json:"jcNumber"`
	EstimatedHours float64 `json:"estimatedHours"`
	ActualHours    float64 `json:"actualHours"`
	Percent        float64 `json:"percent"`
}
