package records

// EventsRecord captures one event's outcome. Natural key: date_ref + event_name.
type EventsRecord struct {
	Meta
	DateRef        Date    `json:"date_ref"`
	EventName      string  `json:"event_name"`
	EventType      string  `json:"event_type,omitempty"`
	Format         string  `json:"format,omitempty"`
	Registrations  int64   `json:"registrations"`
	Attendees      int64   `json:"attendees"`
	NoShows        int64   `json:"no_shows"`
	LeadsGenerated int64   `json:"leads_generated"`
	Cost           float64 `json:"cost"`
	Revenue        float64 `json:"revenue"`
}

func (*EventsRecord) Table() string  { return "events_data" }
func (*EventsRecord) Sector() string { return SectorEvents }

func (r *EventsRecord) Date() Date { return r.DateRef }

func (r *EventsRecord) NaturalKey() Key {
	return Key{
		{Column: "date_ref", Value: r.DateRef},
		{Column: "event_name", Value: r.EventName},
	}
}

func (r *EventsRecord) Validate() error {
	if err := requireDate("date_ref", r.DateRef); err != nil {
		return err
	}
	if err := requireField("event_name", r.EventName); err != nil {
		return err
	}
	return firstErr(
		nonNegativeInt("registrations", r.Registrations),
		nonNegativeInt("attendees", r.Attendees),
		nonNegativeInt("no_shows", r.NoShows),
		nonNegativeInt("leads_generated", r.LeadsGenerated),
		nonNegative("cost", r.Cost),
		nonNegative("revenue", r.Revenue),
	)
}

func (r *EventsRecord) Metrics() map[string]float64 {
	return map[string]float64{
		"registrations":   float64(r.Registrations),
		"attendees":       float64(r.Attendees),
		"no_shows":        float64(r.NoShows),
		"leads_generated": float64(r.LeadsGenerated),
		"cost":            r.Cost,
		"revenue":         r.Revenue,
	}
}

func (r *EventsRecord) Ratios(totals map[string]float64) map[string]float64 {
	registrations := totals["registrations"]
	leads := totals["leads_generated"]
	cost := totals["cost"]
	return map[string]float64{
		"attendance_rate": Ratio(totals["attendees"], registrations) * 100,
		"no_show_rate":    Ratio(totals["no_shows"], registrations) * 100,
		"cost_per_lead":   Ratio(cost, leads),
		"roi":             Ratio(totals["revenue"]-cost, cost) * 100,
	}
}

// EventsPatch updates metric fields only; natural-key fields are immutable.
type EventsPatch struct {
	EventType      *string  `json:"event_type,omitempty"`
	Format         *string  `json:"format,omitempty"`
	Registrations  *int64   `json:"registrations,omitempty"`
	Attendees      *int64   `json:"attendees,omitempty"`
	NoShows        *int64   `json:"no_shows,omitempty"`
	LeadsGenerated *int64   `json:"leads_generated,omitempty"`
	Cost           *float64 `json:"cost,omitempty"`
	Revenue        *float64 `json:"revenue,omitempty"`
}

func (p EventsPatch) Validate() error {
	return firstErr(
		optNonNegativeInt("registrations", p.Registrations),
		optNonNegativeInt("attendees", p.Attendees),
		optNonNegativeInt("no_shows", p.NoShows),
		optNonNegativeInt("leads_generated", p.LeadsGenerated),
		optNonNegative("cost", p.Cost),
		optNonNegative("revenue", p.Revenue),
	)
}

func (p EventsPatch) Apply(r *EventsRecord) {
	if p.EventType != nil {
		r.EventType = *p.EventType
	}
	if p.Format != nil {
		r.Format = *p.Format
	}
	if p.Registrations != nil {
		r.Registrations = *p.Registrations
	}
	if p.Attendees != nil {
		r.Attendees = *p.Attendees
	}
	if p.NoShows != nil {
		r.NoShows = *p.NoShows
	}
	if p.LeadsGenerated != nil {
		r.LeadsGenerated = *p.LeadsGenerated
	}
	if p.Cost != nil {
		r.Cost = *p.Cost
	}
	if p.Revenue != nil {
		r.Revenue = *p.Revenue
	}
}

func (p EventsPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.EventType != nil {
		fields["event_type"] = *p.EventType
	}
	if p.Format != nil {
		fields["format"] = *p.Format
	}
	if p.Registrations != nil {
		fields["registrations"] = *p.Registrations
	}
	if p.Attendees != nil {
		fields["attendees"] = *p.Attendees
	}
	if p.NoShows != nil {
		fields["no_shows"] = *p.NoShows
	}
	if p.LeadsGenerated != nil {
		fields["leads_generated"] = *p.LeadsGenerated
	}
	if p.Cost != nil {
		fields["cost"] = *p.Cost
	}
	if p.Revenue != nil {
		fields["revenue"] = *p.Revenue
	}
	return fields
}
