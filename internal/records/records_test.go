package records

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "pulseboard/pkg/domain-errors"
)

func TestNormalizeSector(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "marketing", want: SectorMarketing},
		{in: "Marketing", want: SectorMarketing},
		{in: "  SALES ", want: SectorSales},
		{in: "hr", want: SectorHR},
		{in: "unknown", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeSector(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domainerrors.HasCode(err, domainerrors.CodeNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-15"`, string(raw))

	var back Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Equal(d.Time))
}

func TestParseDateRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "15/03/2026", "2026-3-5", "not a date"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestRatioZeroDenominator(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(42, 0))
	assert.Equal(t, 0.5, Ratio(1, 2))
}

func validMarketing(t *testing.T) *MarketingRecord {
	t.Helper()
	d, err := ParseDate("2026-01-10")
	require.NoError(t, err)
	return &MarketingRecord{
		DateRef:     d,
		Channel:     "paid_search",
		Campaign:    "brand",
		Product:     "pro",
		Investment:  1000,
		Impressions: 50000,
		Clicks:      2000,
		Conversions: 100,
		Leads:       400,
		Sales:       40,
		Revenue:     8000,
	}
}

func TestMarketingValidate(t *testing.T) {
	rec := validMarketing(t)
	require.NoError(t, rec.Validate())

	missing := *rec
	missing.Channel = ""
	err := missing.Validate()
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeBadRequest))

	negative := *rec
	negative.Investment = -1
	assert.Error(t, negative.Validate())

	noDate := *rec
	noDate.DateRef = Date{}
	assert.Error(t, noDate.Validate())
}

func TestMarketingNaturalKey(t *testing.T) {
	rec := validMarketing(t)
	key := rec.NaturalKey()
	require.Len(t, key, 4)
	assert.Equal(t, "date_ref", key[0].Column)
	assert.Equal(t, "2026-01-10 / paid_search / brand / pro", key.String())
}

func TestMarketingRatios(t *testing.T) {
	rec := validMarketing(t)
	totals := map[string]float64{}
	for name, v := range rec.Metrics() {
		totals[name] = v
	}
	ratios := rec.Ratios(totals)
	assert.InDelta(t, 2.5, ratios["cost_per_lead"], 1e-9)
	assert.InDelta(t, 10.0, ratios["conversion_rate"], 1e-9)
	assert.InDelta(t, 700.0, ratios["roi"], 1e-9)
	assert.InDelta(t, 4.0, ratios["ctr"], 1e-9)
	assert.InDelta(t, 200.0, ratios["average_ticket"], 1e-9)

	// roi guard: zero investment yields zero, never a division blowup
	empty := rec.Ratios(map[string]float64{})
	assert.Equal(t, 0.0, empty["roi"])
}

func TestMarketingPatchApplyAndFields(t *testing.T) {
	rec := validMarketing(t)
	leads := int64(500)
	revenue := 9000.0
	patch := MarketingPatch{Leads: &leads, Revenue: &revenue}
	require.NoError(t, patch.Validate())

	patch.Apply(rec)
	assert.Equal(t, int64(500), rec.Leads)
	assert.Equal(t, 9000.0, rec.Revenue)
	// untouched fields keep their values
	assert.Equal(t, int64(2000), rec.Clicks)
	// the natural key never moves under a patch
	assert.Equal(t, "paid_search", rec.Channel)

	fields := patch.Fields()
	assert.Equal(t, map[string]any{"leads": int64(500), "revenue": 9000.0}, fields)

	bad := int64(-1)
	err := MarketingPatch{Leads: &bad}.Validate()
	require.Error(t, err)
	assert.True(t, domainerrors.HasCode(err, domainerrors.CodeBadRequest))
}

func TestSalesValidateAndRatios(t *testing.T) {
	d, err := ParseDate("2026-02-01")
	require.NoError(t, err)
	rec := &SalesRecord{
		DateRef:       d,
		Salesperson:   "ana",
		Product:       "pro",
		LeadsReceived: 200,
		Contacts:      100,
		Proposals:     50,
		DealsClosed:   20,
		SalesValue:    40000,
	}
	require.NoError(t, rec.Validate())

	totals := map[string]float64{}
	for name, v := range rec.Metrics() {
		totals[name] = v
	}
	ratios := rec.Ratios(totals)
	assert.InDelta(t, 50.0, ratios["contact_rate"], 1e-9)
	assert.InDelta(t, 50.0, ratios["proposal_rate"], 1e-9)
	assert.InDelta(t, 40.0, ratios["conversion_rate"], 1e-9)
	assert.InDelta(t, 2000.0, ratios["average_ticket"], 1e-9)
}

func TestEventsRatios(t *testing.T) {
	d, err := ParseDate("2026-02-01")
	require.NoError(t, err)
	rec := &EventsRecord{
		DateRef:        d,
		EventName:      "open day",
		Registrations:  100,
		Attendees:      80,
		NoShows:        20,
		LeadsGenerated: 40,
		Cost:           2000,
		Revenue:        5000,
	}
	require.NoError(t, rec.Validate())

	totals := map[string]float64{}
	for name, v := range rec.Metrics() {
		totals[name] = v
	}
	ratios := rec.Ratios(totals)
	assert.InDelta(t, 80.0, ratios["attendance_rate"], 1e-9)
	assert.InDelta(t, 20.0, ratios["no_show_rate"], 1e-9)
	assert.InDelta(t, 50.0, ratios["cost_per_lead"], 1e-9)
	assert.InDelta(t, 150.0, ratios["roi"], 1e-9)
}

func TestAcademicRatios(t *testing.T) {
	d, err := ParseDate("2026-02-01")
	require.NoError(t, err)
	rec := &AcademicRecord{
		DateRef:        d,
		Course:         "engineering",
		Cohort:         "2026.1",
		Enrolled:       200,
		ActiveStudents: 170,
		Dropouts:       20,
		Completions:    10,
	}
	require.NoError(t, rec.Validate())

	totals := map[string]float64{}
	for name, v := range rec.Metrics() {
		totals[name] = v
	}
	ratios := rec.Ratios(totals)
	assert.InDelta(t, 10.0, ratios["dropout_rate"], 1e-9)
	assert.InDelta(t, 5.0, ratios["completion_rate"], 1e-9)
	assert.InDelta(t, 85.0, ratios["retention_rate"], 1e-9)
}

func TestFinanceRatios(t *testing.T) {
	d, err := ParseDate("2026-02-01")
	require.NoError(t, err)
	rec := &FinanceRecord{
		DateRef:     d,
		Category:    "tuition",
		Subcategory: "undergrad",
		Revenues:    100000,
		Expenses:    60000,
		Receivables: 20000,
		Delinquency: 2000,
	}
	require.NoError(t, rec.Validate())

	totals := map[string]float64{}
	for name, v := range rec.Metrics() {
		totals[name] = v
	}
	ratios := rec.Ratios(totals)
	assert.InDelta(t, 40000.0, ratios["net_result"], 1e-9)
	assert.InDelta(t, 40.0, ratios["margin"], 1e-9)
	assert.InDelta(t, 10.0, ratios["delinquency_rate"], 1e-9)
}

func TestGrouperImplementations(t *testing.T) {
	var marketing Record = validMarketing(t)
	g, ok := marketing.(Grouper)
	require.True(t, ok)
	assert.Equal(t, "channel", g.GroupLabel())
	assert.Equal(t, "paid_search", g.GroupValue())

	var hr Record = &HRRecord{}
	_, ok = hr.(Grouper)
	assert.False(t, ok)
}

func TestRecordMetaPromotion(t *testing.T) {
	rec := validMarketing(t)
	now := time.Now()
	rec.RecordMeta().CreatedAt = now
	assert.Equal(t, now, rec.CreatedAt)
}
