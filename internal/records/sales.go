package records

// SalesRecord is one day of a salesperson's funnel for a product.
// Natural key: date_ref + salesperson + product.
type SalesRecord struct {
	Meta
	DateRef       Date    `json:"date_ref"`
	Salesperson   string  `json:"salesperson"`
	Product       string  `json:"product"`
	Category      string  `json:"category,omitempty"`
	LeadsReceived int64   `json:"leads_received"`
	Contacts      int64   `json:"contacts"`
	Proposals     int64   `json:"proposals"`
	DealsClosed   int64   `json:"deals_closed"`
	SalesValue    float64 `json:"sales_value"`
	AverageTicket float64 `json:"average_ticket"`
}

func (*SalesRecord) Table() string  { return "sales_data" }
func (*SalesRecord) Sector() string { return SectorSales }

func (r *SalesRecord) Date() Date { return r.DateRef }

func (r *SalesRecord) NaturalKey() Key {
	return Key{
		{Column: "date_ref", Value: r.DateRef},
		{Column: "salesperson", Value: r.Salesperson},
		{Column: "product", Value: r.Product},
	}
}

func (r *SalesRecord) Validate() error {
	if err := requireDate("date_ref", r.DateRef); err != nil {
		return err
	}
	if err := requireField("salesperson", r.Salesperson); err != nil {
		return err
	}
	if err := requireField("product", r.Product); err != nil {
		return err
	}
	return firstErr(
		nonNegativeInt("leads_received", r.LeadsReceived),
		nonNegativeInt("contacts", r.Contacts),
		nonNegativeInt("proposals", r.Proposals),
		nonNegativeInt("deals_closed", r.DealsClosed),
		nonNegative("sales_value", r.SalesValue),
		nonNegative("average_ticket", r.AverageTicket),
	)
}

func (r *SalesRecord) Metrics() map[string]float64 {
	return map[string]float64{
		"leads_received": float64(r.LeadsReceived),
		"contacts":       float64(r.Contacts),
		"proposals":      float64(r.Proposals),
		"deals_closed":   float64(r.DealsClosed),
		"sales_value":    r.SalesValue,
	}
}

func (r *SalesRecord) Ratios(totals map[string]float64) map[string]float64 {
	leads := totals["leads_received"]
	deals := totals["deals_closed"]
	return map[string]float64{
		"contact_rate":    Ratio(totals["contacts"], leads) * 100,
		"proposal_rate":   Ratio(totals["proposals"], totals["contacts"]) * 100,
		"conversion_rate": Ratio(deals, leads) * 100,
		"average_ticket":  Ratio(totals["sales_value"], deals),
	}
}

// SalesPatch updates metric fields only; natural-key fields are immutable.
type SalesPatch struct {
	Category      *string  `json:"category,omitempty"`
	LeadsReceived *int64   `json:"leads_received,omitempty"`
	Contacts      *int64   `json:"contacts,omitempty"`
	Proposals     *int64   `json:"proposals,omitempty"`
	DealsClosed   *int64   `json:"deals_closed,omitempty"`
	SalesValue    *float64 `json:"sales_value,omitempty"`
	AverageTicket *float64 `json:"average_ticket,omitempty"`
}

func (p SalesPatch) Validate() error {
	return firstErr(
		optNonNegativeInt("leads_received", p.LeadsReceived),
		optNonNegativeInt("contacts", p.Contacts),
		optNonNegativeInt("proposals", p.Proposals),
		optNonNegativeInt("deals_closed", p.DealsClosed),
		optNonNegative("sales_value", p.SalesValue),
		optNonNegative("average_ticket", p.AverageTicket),
	)
}

func (p SalesPatch) Apply(r *SalesRecord) {
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.LeadsReceived != nil {
		r.LeadsReceived = *p.LeadsReceived
	}
	if p.Contacts != nil {
		r.Contacts = *p.Contacts
	}
	if p.Proposals != nil {
		r.Proposals = *p.Proposals
	}
	if p.DealsClosed != nil {
		r.DealsClosed = *p.DealsClosed
	}
	if p.SalesValue != nil {
		r.SalesValue = *p.SalesValue
	}
	if p.AverageTicket != nil {
		r.AverageTicket = *p.AverageTicket
	}
}

func (p SalesPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.LeadsReceived != nil {
		fields["leads_received"] = *p.LeadsReceived
	}
	if p.Contacts != nil {
		fields["contacts"] = *p.Contacts
	}
	if p.Proposals != nil {
		fields["proposals"] = *p.Proposals
	}
	if p.DealsClosed != nil {
		fields["deals_closed"] = *p.DealsClosed
	}
	if p.SalesValue != nil {
		fields["sales_value"] = *p.SalesValue
	}
	if p.AverageTicket != nil {
		fields["average_ticket"] = *p.AverageTicket
	}
	return fields
}
