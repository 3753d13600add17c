package store

import "pulseboard/internal/records"

// Per-table column mappings. Column order here must match the Values and
// Dest slices exactly.

func MarketingMapper() Mapper[*records.MarketingRecord] {
	return Mapper[*records.MarketingRecord]{
		Table: "marketing_data",
		Columns: []string{
			"date_ref", "channel", "campaign", "product",
			"investment", "impressions", "clicks", "conversions",
			"leads", "sales", "revenue",
		},
		Values: func(r *records.MarketingRecord) []any {
			return []any{
				r.DateRef, r.Channel, r.Campaign, r.Product,
				r.Investment, r.Impressions, r.Clicks, r.Conversions,
				r.Leads, r.Sales, r.Revenue,
			}
		},
		Dest: func(r *records.MarketingRecord) []any {
			return []any{
				&r.DateRef, &r.Channel, &r.Campaign, &r.Product,
				&r.Investment, &r.Impressions, &r.Clicks, &r.Conversions,
				&r.Leads, &r.Sales, &r.Revenue,
			}
		},
		New: func() *records.MarketingRecord { return &records.MarketingRecord{} },
	}
}

func SalesMapper() Mapper[*records.SalesRecord] {
	return Mapper[*records.SalesRecord]{
		Table: "sales_data",
		Columns: []string{
			"date_ref", "salesperson", "product",
			"leads_received", "contacts", "proposals", "deals_closed",
			"sales_value", "average_ticket",
		},
		Values: func(r *records.SalesRecord) []any {
			return []any{
				r.DateRef, r.Salesperson, r.Product,
				r.LeadsReceived, r.Contacts, r.Proposals, r.DealsClosed,
				r.SalesValue, r.AverageTicket,
			}
		},
		Dest: func(r *records.SalesRecord) []any {
			return []any{
				&r.DateRef, &r.Salesperson, &r.Product,
				&r.LeadsReceived, &r.Contacts, &r.Proposals, &r.DealsClosed,
				&r.SalesValue, &r.AverageTicket,
			}
		},
		New: func() *records.SalesRecord { return &records.SalesRecord{} },
	}
}

func EventsMapper() Mapper[*records.EventsRecord] {
	return Mapper[*records.EventsRecord]{
		Table: "events_data",
		Columns: []string{
			"date_ref", "event_name", "event_type", "format",
			"registrations", "attendees", "no_shows", "leads_generated",
			"cost", "revenue",
		},
		Values: func(r *records.EventsRecord) []any {
			return []any{
				r.DateRef, r.EventName, r.EventType, r.Format,
				r.Registrations, r.Attendees, r.NoShows, r.LeadsGenerated,
				r.Cost, r.Revenue,
			}
		},
		Dest: func(r *records.EventsRecord) []any {
			return []any{
				&r.DateRef, &r.EventName, &r.EventType, &r.Format,
				&r.Registrations, &r.Attendees, &r.NoShows, &r.LeadsGenerated,
				&r.Cost, &r.Revenue,
			}
		},
		New: func() *records.EventsRecord { return &records.EventsRecord{} },
	}
}

func HRMapper() Mapper[*records.HRRecord] {
	return Mapper[*records.HRRecord]{
		Table: "hr_data",
		Columns: []string{
			"date_ref", "department",
			"headcount", "hires", "terminations", "absences",
			"overtime_hours", "trainings", "training_attendees", "payroll_cost",
		},
		Values: func(r *records.HRRecord) []any {
			return []any{
				r.DateRef, r.Department,
				r.Headcount, r.Hires, r.Terminations, r.Absences,
				r.OvertimeHours, r.Trainings, r.TrainingAttendees, r.PayrollCost,
			}
		},
		Dest: func(r *records.HRRecord) []any {
			return []any{
				&r.DateRef, &r.Department,
				&r.Headcount, &r.Hires, &r.Terminations, &r.Absences,
				&r.OvertimeHours, &r.Trainings, &r.TrainingAttendees, &r.PayrollCost,
			}
		},
		New: func() *records.HRRecord { return &records.HRRecord{} },
	}
}

func AcademicMapper() Mapper[*records.AcademicRecord] {
	return Mapper[*records.AcademicRecord]{
		Table: "academic_data",
		Columns: []string{
			"date_ref", "course", "cohort", "format",
			"enrolled", "active_students", "dropouts", "completions",
			"average_grade", "satisfaction",
		},
		Values: func(r *records.AcademicRecord) []any {
			return []any{
				r.DateRef, r.Course, r.Cohort, r.Format,
				r.Enrolled, r.ActiveStudents, r.Dropouts, r.Completions,
				r.AverageGrade, r.Satisfaction,
			}
		},
		Dest: func(r *records.AcademicRecord) []any {
			return []any{
				&r.DateRef, &r.Course, &r.Cohort, &r.Format,
				&r.Enrolled, &r.ActiveStudents, &r.Dropouts, &r.Completions,
				&r.AverageGrade, &r.Satisfaction,
			}
		},
		New: func() *records.AcademicRecord { return &records.AcademicRecord{} },
	}
}

func FinanceMapper() Mapper[*records.FinanceRecord] {
	return Mapper[*records.FinanceRecord]{
		Table: "finance_data",
		Columns: []string{
			"date_ref", "category", "subcategory", "cost_center",
			"revenues", "expenses", "receivables", "payables", "delinquency",
		},
		Values: func(r *records.FinanceRecord) []any {
			return []any{
				r.DateRef, r.Category, r.Subcategory, r.CostCenter,
				r.Revenues, r.Expenses, r.Receivables, r.Payables, r.Delinquency,
			}
		},
		Dest: func(r *records.FinanceRecord) []any {
			return []any{
				&r.DateRef, &r.Category, &r.Subcategory, &r.CostCenter,
				&r.Revenues, &r.Expenses, &r.Receivables, &r.Payables, &r.Delinquency,
			}
		},
		New: func() *records.FinanceRecord { return &records.FinanceRecord{} },
	}
}
