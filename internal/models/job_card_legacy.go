package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// The first version of the job card app stored the incoming inspection as
// flat form values (visual1a, punchingDone: "on", ...) and the heat
// treatment stages as an object keyed by stage. Records in that shape are
// read into the typed model; they are always written back typed.

// legacyCheckKeys maps each checklist line to its flat form prefix.
var legacyCheckKeys = []struct {
	prefix string
	field  func(*IncomingInspection) *InspectionCheck
}{
	{"visual1a", func(i *IncomingInspection) *InspectionCheck { return &i.Visual }},
	{"punching", func(i *IncomingInspection) *InspectionCheck { return &i.Punching }},
	{"pasting", func(i *IncomingInspection) *InspectionCheck { return &i.Pasting }},
	{"fixture", func(i *IncomingInspection) *InspectionCheck { return &i.Fixture }},
	{"cutPiece", func(i *IncomingInspection) *InspectionCheck { return &i.CutPiece }},
}

func (i *IncomingInspection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !isLegacyInspection(raw) {
		type typed IncomingInspection
		return json.Unmarshal(data, (*typed)(i))
	}
	*i = IncomingInspection{}
	for _, k := range legacyCheckKeys {
		check := k.field(i)
		check.Value = legacyString(raw[k.prefix])
		check.Done = legacyFlag(raw[k.prefix+"Done"])
		check.Remarks = legacyString(raw[k.prefix+"Remarks"])
	}
	return nil
}

// isLegacyInspection reports whether raw holds flat form values rather
// than one object per checklist line.
func isLegacyInspection(raw map[string]json.RawMessage) bool {
	if _, ok := raw["visual1a"]; ok {
		return true
	}
	for key, v := range raw {
		if strings.HasSuffix(key, "Done") || strings.HasSuffix(key, "Remarks") {
			return true
		}
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '"' {
			return true
		}
	}
	return false
}

// legacyString reads a form value that may be null.
func legacyString(v json.RawMessage) string {
	var s string
	if json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

// legacyFlag reads a checkbox: "on" when ticked, null when not. Booleans
// are accepted too.
func legacyFlag(v json.RawMessage) bool {
	var b bool
	if json.Unmarshal(v, &b) == nil {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(legacyString(v))) {
	case "on", "true", "yes", "1":
		return true
	}
	return false
}

// UnmarshalJSON reads heatTreatmentProcess as either the stage list or
// the older object keyed by stage name.
func (j *JobCard) UnmarshalJSON(data []byte) error {
	type plain JobCard
	aux := struct {
		*plain
		HeatTreatmentProcess json.RawMessage `json:"heatTreatmentProcess"`
	}{plain: (*plain)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	stages, err := decodeStageTimings(aux.HeatTreatmentProcess)
	if err != nil {
		return err
	}
	j.HeatTreatmentProcess = stages
	return nil
}

func decodeStageTimings(data json.RawMessage) ([]StageTiming, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var list []StageTiming
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var byStage map[string]*struct {
		In      *string `json:"in"`
		Out     *string `json:"out"`
		Remarks *string `json:"remarks"`
	}
	if err := json.Unmarshal(data, &byStage); err != nil {
		return nil, err
	}
	var out []StageTiming
	for _, stage := range ProcessStages {
		v := byStage[string(stage)]
		if v == nil {
			continue
		}
		t := StageTiming{Stage: stage}
		if v.In != nil {
			t.In = *v.In
		}
		if v.Out != nil {
			t.Out = *v.Out
		}
		if v.Remarks != nil {
			t.Remarks = *v.Remarks
		}
		out = append(out, t)
	}
	return out, nil
}

// UnmarshalJSON decodes the view; without it the embedded card's decoder
// would be promoted and drop the derived totals.
func (v *JobCardView) UnmarshalJSON(data []byte) error {
	if err := v.JobCard.UnmarshalJSON(data); err != nil {
		return err
	}
	var totals struct {
		TotalWeight float64 `json:"totalWeight"`
		PartCount   int     `json:"partCount"`
	}
	if err := json.Unmarshal(data, &totals); err != nil {
		return err
	}
	v.TotalWeight = totals.TotalWeight
	v.PartCount = totals.PartCount
	return nil
}
