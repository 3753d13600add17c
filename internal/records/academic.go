package records

// AcademicRecord is one day of enrollment and completion numbers for a course
// cohort. Natural key: date_ref + course + cohort.
type AcademicRecord struct {
	Meta
	DateRef        Date    `json:"date_ref"`
	Course         string  `json:"course"`
	Cohort         string  `json:"cohort"`
	Format         string  `json:"format,omitempty"`
	Enrolled       int64   `json:"enrolled"`
	ActiveStudents int64   `json:"active_students"`
	Dropouts       int64   `json:"dropouts"`
	Completions    int64   `json:"completions"`
	AverageGrade   float64 `json:"average_grade"`
	Satisfaction   float64 `json:"satisfaction"`
}

func (*AcademicRecord) Table() string  { return "academic_data" }
func (*AcademicRecord) Sector() string { return SectorAcademic }

func (r *AcademicRecord) Date() Date { return r.DateRef }

func (r *AcademicRecord) NaturalKey() Key {
	return Key{
		{Column: "date_ref", Value: r.DateRef},
		{Column: "course", Value: r.Course},
		{Column: "cohort", Value: r.Cohort},
	}
}

func (r *AcademicRecord) Validate() error {
	if err := requireDate("date_ref", r.DateRef); err != nil {
		return err
	}
	if err := requireField("course", r.Course); err != nil {
		return err
	}
	if err := requireField("cohort", r.Cohort); err != nil {
		return err
	}
	return firstErr(
		nonNegativeInt("enrolled", r.Enrolled),
		nonNegativeInt("active_students", r.ActiveStudents),
		nonNegativeInt("dropouts", r.Dropouts),
		nonNegativeInt("completions", r.Completions),
		nonNegative("average_grade", r.AverageGrade),
		nonNegative("satisfaction", r.Satisfaction),
	)
}

func (r *AcademicRecord) Metrics() map[string]float64 {
	return map[string]float64{
		"enrolled":        float64(r.Enrolled),
		"active_students": float64(r.ActiveStudents),
		"dropouts":        float64(r.Dropouts),
		"completions":     float64(r.Completions),
	}
}

func (r *AcademicRecord) Ratios(totals map[string]float64) map[string]float64 {
	enrolled := totals["enrolled"]
	return map[string]float64{
		"dropout_rate":    Ratio(totals["dropouts"], enrolled) * 100,
		"completion_rate": Ratio(totals["completions"], enrolled) * 100,
		"retention_rate":  Ratio(totals["active_students"], enrolled) * 100,
	}
}

// AcademicPatch updates metric fields only; natural-key fields are immutable.
type AcademicPatch struct {
	Format         *string  `json:"format,omitempty"`
	Enrolled       *int64   `json:"enrolled,omitempty"`
	ActiveStudents *int64   `json:"active_students,omitempty"`
	Dropouts       *int64   `json:"dropouts,omitempty"`
	Completions    *int64   `json:"completions,omitempty"`
	AverageGrade   *float64 `json:"average_grade,omitempty"`
	Satisfaction   *float64 `json:"satisfaction,omitempty"`
}

func (p AcademicPatch) Validate() error {
	return firstErr(
		optNonNegativeInt("enrolled", p.Enrolled),
		optNonNegativeInt("active_students", p.ActiveStudents),
		optNonNegativeInt("dropouts", p.Dropouts),
		optNonNegativeInt("completions", p.Completions),
		optNonNegative("average_grade", p.AverageGrade),
		optNonNegative("satisfaction", p.Satisfaction),
	)
}

func (p AcademicPatch) Apply(r *AcademicRecord) {
	if p.Format != nil {
		r.Format = *p.Format
	}
	if p.Enrolled != nil {
		r.Enrolled = *p.Enrolled
	}
	if p.ActiveStudents != nil {
		r.ActiveStudents = *p.ActiveStudents
	}
	if p.Dropouts != nil {
		r.Dropouts = *p.Dropouts
	}
	if p.Completions != nil {
		r.Completions = *p.Completions
	}
	if p.AverageGrade != nil {
		r.AverageGrade = *p.AverageGrade
	}
	if p.Satisfaction != nil {
		r.Satisfaction = *p.Satisfaction
	}
}

func (p AcademicPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Format != nil {
		fields["format"] = *p.Format
	}
	if p.Enrolled != nil {
		fields["enrolled"] = *p.Enrolled
	}
	if p.ActiveStudents != nil {
		fields["active_students"] = *p.ActiveStudents
	}
	if p.Dropouts != nil {
		fields["dropouts"] = *p.Dropouts
	}
	if p.Completions != nil {
		fields["completions"] = *p.Completions
	}
	if p.AverageGrade != nil {
		fields["average_grade"] = *p.AverageGrade
	}
	if p.Satisfaction != nil {
		fields["satisfaction"] = *p.Satisfaction
	}
	return fields
}
