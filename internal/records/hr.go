package records

// HRRecord is one day of workforce numbers for a department.
// Natural key: date_ref + department.
type HRRecord struct {
	Meta
	DateRef           Date    `json:"date_ref"`
	Department        string  `json:"department"`
	Headcount         int64   `json:"headcount"`
	Hires             int64   `json:"hires"`
	Terminations      int64   `json:"terminations"`
	Absences          int64   `json:"absences"`
	OvertimeHours     float64 `json:"overtime_hours"`
	Trainings         int64   `json:"trainings"`
	TrainingAttendees int64   `json:"training_attendees"`
	PayrollCost       float64 `json:"payroll_cost"`
}

func (*HRRecord) Table() string  { return "hr_data" }
func (*HRRecord) Sector() string { return SectorHR }

func (r *HRRecord) Date() Date { return r.DateRef }

func (r *HRRecord) NaturalKey() Key {
	return Key{
		{Column: "date_ref", Value: r.DateRef},
		{Column: "department", Value: r.Department},
	}
}

func (r *HRRecord) Validate() error {
	if err := requireDate("date_ref", r.DateRef); err != nil {
		return err
	}
	if err := requireField("department", r.Department); err != nil {
		return err
	}
	return firstErr(
		nonNegativeInt("headcount", r.Headcount),
		nonNegativeInt("hires", r.Hires),
		nonNegativeInt("terminations", r.Terminations),
		nonNegativeInt("absences", r.Absences),
		nonNegative("overtime_hours", r.OvertimeHours),
		nonNegativeInt("trainings", r.Trainings),
		nonNegativeInt("training_attendees", r.TrainingAttendees),
		nonNegative("payroll_cost", r.PayrollCost),
	)
}

func (r *HRRecord) Metrics() map[string]float64 {
	return map[string]float64{
		"headcount":          float64(r.Headcount),
		"hires":              float64(r.Hires),
		"terminations":       float64(r.Terminations),
		"absences":           float64(r.Absences),
		"overtime_hours":     r.OvertimeHours,
		"trainings":          float64(r.Trainings),
		"training_attendees": float64(r.TrainingAttendees),
		"payroll_cost":       r.PayrollCost,
	}
}

func (r *HRRecord) Ratios(totals map[string]float64) map[string]float64 {
	headcount := totals["headcount"]
	return map[string]float64{
		"turnover_rate":     Ratio(totals["terminations"], headcount) * 100,
		"absence_rate":      Ratio(totals["absences"], headcount) * 100,
		"cost_per_employee": Ratio(totals["payroll_cost"], headcount),
	}
}

// HRPatch updates metric fields only; natural-key fields are immutable.
type HRPatch struct {
	Headcount         *int64   `json:"headcount,omitempty"`
	Hires             *int64   `json:"hires,omitempty"`
	Terminations      *int64   `json:"terminations,omitempty"`
	Absences          *int64   `json:"absences,omitempty"`
	OvertimeHours     *float64 `json:"overtime_hours,omitempty"`
	Trainings         *int64   `json:"trainings,omitempty"`
	TrainingAttendees *int64   `json:"training_attendees,omitempty"`
	PayrollCost       *float64 `json:"payroll_cost,omitempty"`
}

func (p HRPatch) Validate() error {
	return firstErr(
		optNonNegativeInt("headcount", p.Headcount),
		optNonNegativeInt("hires", p.Hires),
		optNonNegativeInt("terminations", p.Terminations),
		optNonNegativeInt("absences", p.Absences),
		optNonNegative("overtime_hours", p.OvertimeHours),
		optNonNegativeInt("trainings", p.Trainings),
		optNonNegativeInt("training_attendees", p.TrainingAttendees),
		optNonNegative("payroll_cost", p.PayrollCost),
	)
}

func (p HRPatch) Apply(r *HRRecord) {
	if p.Headcount != nil {
		r.Headcount = *p.Headcount
	}
	if p.Hires != nil {
		r.Hires = *p.Hires
	}
	if p.Terminations != nil {
		r.Terminations = *p.Terminations
	}
	if p.Absences != nil {
		r.Absences = *p.Absences
	}
	if p.OvertimeHours != nil {
		r.OvertimeHours = *p.OvertimeHours
	}
	if p.Trainings != nil {
		r.Trainings = *p.Trainings
	}
	if p.TrainingAttendees != nil {
		r.TrainingAttendees = *p.TrainingAttendees
	}
	if p.PayrollCost != nil {
		r.PayrollCost = *p.PayrollCost
	}
}

func (p HRPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Headcount != nil {
		fields["headcount"] = *p.Headcount
	}
	if p.Hires != nil {
		fields["hires"] = *p.Hires
	}
	if p.Terminations != nil {
		fields["terminations"] = *p.Terminations
	}
	if p.Absences != nil {
		fields["absences"] = *p.Absences
	}
	if p.OvertimeHours != nil {
		fields["overtime_hours"] = *p.OvertimeHours
	}
	if p.Trainings != nil {
		fields["trainings"] = *p.Trainings
	}
	if p.TrainingAttendees != nil {
		fields["training_attendees"] = *p.TrainingAttendees
	}
	if p.PayrollCost != nil {
		fields["payroll_cost"] = *p.PayrollCost
	}
	return fields
}
