package records

// FinanceRecord is one day of financial movement for a category.
// Natural key: date_ref + category + subcategory.
type FinanceRecord struct {
	Meta
	DateRef     Date    `json:"date_ref"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	CostCenter  string  `json:"cost_center,omitempty"`
	Revenues    float64 `json:"revenues"`
	Expenses    float64 `json:"expenses"`
	Receivables float64 `json:"receivables"`
	Payables    float64 `json:"payables"`
	Delinquency float64 `json:"delinquency"`
}

func (*FinanceRecord) Table() string  { return "finance_data" }
func (*FinanceRecord) Sector() string { return SectorFinance }

func (r *FinanceRecord) Date() Date { return r.DateRef }

func (r *FinanceRecord) NaturalKey() Key {
	return Key{
		{Column: "date_ref", Value: r.DateRef},
		{Column: "category", Value: r.Category},
		{Column: "subcategory", Value: r.Subcategory},
	}
}

func (r *FinanceRecord) Validate() error {
	if err := requireDate("date_ref", r.DateRef); err != nil {
		return err
	}
	if err := requireField("category", r.Category); err != nil {
		return err
	}
	if err := requireField("subcategory", r.Subcategory); err != nil {
		return err
	}
	return firstErr(
		nonNegative("revenues", r.Revenues),
		nonNegative("expenses", r.Expenses),
		nonNegative("receivables", r.Receivables),
		nonNegative("payables", r.Payables),
		nonNegative("delinquency", r.Delinquency),
	)
}

func (r *FinanceRecord) Metrics() map[string]float64 {
	return map[string]float64{
		"revenues":    r.Revenues,
		"expenses":    r.Expenses,
		"receivables": r.Receivables,
		"payables":    r.Payables,
		"delinquency": r.Delinquency,
	}
}

func (r *FinanceRecord) Ratios(totals map[string]float64) map[string]float64 {
	revenues := totals["revenues"]
	net := revenues - totals["expenses"]
	return map[string]float64{
		"net_result":       net,
		"margin":           Ratio(net, revenues) * 100,
		"delinquency_rate": Ratio(totals["delinquency"], totals["receivables"]) * 100,
	}
}

func (r *FinanceRecord) GroupLabel() string { return "category" }
func (r *FinanceRecord) GroupValue() string { return r.Category }

// FinancePatch updates metric fields only; natural-key fields are immutable.
type FinancePatch struct {
	CostCenter  *string  `json:"cost_center,omitempty"`
	Revenues    *float64 `json:"revenues,omitempty"`
	Expenses    *float64 `json:"expenses,omitempty"`
	Receivables *float64 `json:"receivables,omitempty"`
	Payables    *float64 `json:"payables,omitempty"`
	Delinquency *float64 `json:"delinquency,omitempty"`
}

func (p FinancePatch) Validate() error {
	return firstErr(
		optNonNegative("revenues", p.Revenues),
		optNonNegative("expenses", p.Expenses),
		optNonNegative("receivables", p.Receivables),
		optNonNegative("payables", p.Payables),
		optNonNegative("delinquency", p.Delinquency),
	)
}

func (p FinancePatch) Apply(r *FinanceRecord) {
	if p.CostCenter != nil {
		r.CostCenter = *p.CostCenter
	}
	if p.Revenues != nil {
		r.Revenues = *p.Revenues
	}
	if p.Expenses != nil {
		r.Expenses = *p.Expenses
	}
	if p.Receivables != nil {
		r.Receivables = *p.Receivables
	}
	if p.Payables != nil {
		r.Payables = *p.Payables
	}
	if p.Delinquency != nil {
		r.Delinquency = *p.Delinquency
	}
}

func (p FinancePatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.CostCenter != nil {
		fields["cost_center"] = *p.CostCenter
	}
	if p.Revenues != nil {
		fields["revenues"] = *p.Revenues
	}
	if p.Expenses != nil {
		fields["expenses"] = *p.Expenses
	}
	if p.Receivables != nil {
		fields["receivables"] = *p.Receivables
	}
	if p.Payables != nil {
		fields["payables"] = *p.Payables
	}
	if p.Delinquency != nil {
		fields["delinquency"] = *p.Delinquency
	}
	return fields
}
