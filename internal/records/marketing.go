package records

// MarketingRecord is one day of raw marketing performance for a campaign on a
// channel. Natural key: date_ref + channel + campaign + product.
type MarketingRecord struct {
	Meta
	DateRef     Date    `json:"date_ref"`
	Channel     string  `json:"channel"`
	Campaign    string  `json:"campaign"`
	Product     string  `json:"product,omitempty"`
	Investment  float64 `json:"investment"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	Conversions int64   `json:"conversions"`
	Leads       int64   `json:"leads"`
	Sales       int64   `json:"sales"`
	Revenue     float64 `json:"revenue"`
}

func (*MarketingRecord) Table() string  { return "marketing_data" }
func (*MarketingRecord) Sector() string { return SectorMarketing }

func (r *MarketingRecord) Date() Date { return r.DateRef }

func (r *MarketingRecord) NaturalKey() Key {
	return Key{
		{Column: "date_ref", Value: r.DateRef},
		{Column: "channel", Value: r.Channel},
		{Column: "campaign", Value: r.Campaign},
		{Column: "product", Value: r.Product},
	}
}

func (r *MarketingRecord) Validate() error {
	if err := requireDate("date_ref", r.DateRef); err != nil {
		return err
	}
	if err := requireField("channel", r.Channel); err != nil {
		return err
	}
	if err := requireField("campaign", r.Campaign); err != nil {
		return err
	}
	return firstErr(
		nonNegative("investment", r.Investment),
		nonNegativeInt("impressions", r.Impressions),
		nonNegativeInt("clicks", r.Clicks),
		nonNegativeInt("conversions", r.Conversions),
		nonNegativeInt("leads", r.Leads),
		nonNegativeInt("sales", r.Sales),
		nonNegative("revenue", r.Revenue),
	)
}

func (r *MarketingRecord) Metrics() map[string]float64 {
	return map[string]float64{
		"investment":  r.Investment,
		"impressions": float64(r.Impressions),
		"clicks":      float64(r.Clicks),
		"conversions": float64(r.Conversions),
		"leads":       float64(r.Leads),
		"sales":       float64(r.Sales),
		"revenue":     float64(r.Revenue),
	}
}

func (r *MarketingRecord) Ratios(totals map[string]float64) map[string]float64 {
	investment := totals["investment"]
	leads := totals["leads"]
	sales := totals["sales"]
	revenue := totals["revenue"]
	return map[string]float64{
		"cost_per_lead":   Ratio(investment, leads),
		"conversion_rate": Ratio(sales, leads) * 100,
		"roi":             Ratio(revenue-investment, investment) * 100,
		"ctr":             Ratio(totals["clicks"], totals["impressions"]) * 100,
		"average_ticket":  Ratio(revenue, sales),
	}
}

// Marketing statistics break down by channel.
func (r *MarketingRecord) GroupLabel() string { return "channel" }
func (r *MarketingRecord) GroupValue() string { return r.Channel }

// MarketingPatch updates metric fields only; the natural-key fields are
// immutable once a record exists. Unset fields are left untouched.
type MarketingPatch struct {
	Investment  *float64 `json:"investment,omitempty"`
	Impressions *int64   `json:"impressions,omitempty"`
	Clicks      *int64   `json:"clicks,omitempty"`
	Conversions *int64   `json:"conversions,omitempty"`
	Leads       *int64   `json:"leads,omitempty"`
	Sales       *int64   `json:"sales,omitempty"`
	Revenue     *float64 `json:"revenue,omitempty"`
}

func (p MarketingPatch) Validate() error {
	return firstErr(
		optNonNegative("investment", p.Investment),
		optNonNegativeInt("impressions", p.Impressions),
		optNonNegativeInt("clicks", p.Clicks),
		optNonNegativeInt("conversions", p.Conversions),
		optNonNegativeInt("leads", p.Leads),
		optNonNegativeInt("sales", p.Sales),
		optNonNegative("revenue", p.Revenue),
	)
}

func (p MarketingPatch) Apply(r *MarketingRecord) {
	if p.Investment != nil {
		r.Investment = *p.Investment
	}
	if p.Impressions != nil {
		r.Impressions = *p.Impressions
	}
	if p.Clicks != nil {
		r.Clicks = *p.Clicks
	}
	if p.Conversions != nil {
		r.Conversions = *p.Conversions
	}
	if p.Leads != nil {
		r.Leads = *p.Leads
	}
	if p.Sales != nil {
		r.Sales = *p.Sales
	}
	if p.Revenue != nil {
		r.Revenue = *p.Revenue
	}
}

// Fields returns only the set fields, used as the audit "after" snapshot.
func (p MarketingPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.Investment != nil {
		fields["investment"] = *p.Investment
	}
	if p.Impressions != nil {
		fields["impressions"] = *p.Impressions
	}
	if p.Clicks != nil {
		fields["clicks"] = *p.Clicks
	}
	if p.Conversions != nil {
		fields["conversions"] = *p.Conversions
	}
	if p.Leads != nil {
		fields["leads"] = *p.Leads
	}
	if p.Sales != nil {
		fields["sales"] = *p.Sales
	}
	if p.Revenue != nil {
		fields["revenue"] = *p.Revenue
	}
	return fields
}
