package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/uatas-cs/complaint-service/internal/labels"
	"github.com/uatas-cs/complaint-service/internal/model"
	"github.com/uatas-cs/complaint-service/internal/pagination"
	"gorm.io/gorm"
)

// QueryService serves the dashboards: grouped listings, counts and chart
// aggregates.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// GroupScope selects which slice of ticket-number groups a listing covers.
type GroupScope int

const (
	// ScopeActiveUnassigned: active/reopen groups with no QC (staff list).
	ScopeActiveUnassigned GroupScope = iota
	// ScopeActiveForQC: active groups assigned to one QC reviewer.
	ScopeActiveForQC
	// ScopeEscalated: active groups that have a QC assigned (staff view).
	ScopeEscalated
	// ScopeClosed, ScopeReopened: terminal / reopened groups.
	ScopeClosed
	ScopeReopened
	// ScopeBreached: active groups listed by their SLA-exhausted tickets.
	ScopeBreached
)

// ListFilter is the optional filter set shared by every grouped listing.
type ListFilter struct {
	Jenis   string
	Status  string
	Tanggal string // YYYY-MM-DD; malformed values are ignored
	Q       string // matches customer name or ticket-number string
	Tahapan string
	QCID    uint // required by ScopeActiveForQC
	Page    int
	PerPage int
}

// GroupedList returns one representative ticket per group: the earliest
// created ticket in the group matching the filters, ordered by that
// representative's creation time descending, then paginated.
func (s *QueryService) GroupedList(ctx context.Context, scope GroupScope, f ListFilter) (pagination.Page[model.Ticket], error) {
	var zero pagination.Page[model.Ticket]

	groups := s.db.WithContext(ctx).Model(&model.NomorTicket{})
	switch scope {
	case ScopeActiveUnassigned:
		groups = groups.Where("id_qc IS NULL").
			Where("status IN ?", []string{string(model.GroupStatusAktif), string(model.GroupStatusReopen)})
	case ScopeActiveForQC:
		groups = groups.Where("id_qc = ?", f.QCID).
			Where("status IS NULL OR (status <> ? AND status <> ?)",
				string(model.GroupStatusClose), string(model.GroupStatusReopen))
	case ScopeEscalated:
		groups = groups.Where("id_qc IS NOT NULL").
			Where("status IS NULL OR (status <> ? AND status <> ?)",
				string(model.GroupStatusClose), string(model.GroupStatusReopen))
	case ScopeClosed:
		groups = groups.Where("status = ?", string(model.GroupStatusClose))
	case ScopeReopened:
		groups = groups.Where("status = ?", string(model.GroupStatusReopen))
	case ScopeBreached:
		groups = groups.Where("status IS NULL OR (status <> ? AND status <> ?)",
			string(model.GroupStatusClose), string(model.GroupStatusReopen))
	}

	if q := strings.TrimSpace(f.Q); q != "" {
		like := "%" + q + "%"
		var fromNama []uint
		if err := s.db.WithContext(ctx).Model(&model.Ticket{}).
			Where("nama_nasabah LIKE ?", like).
			Distinct().Pluck("nomor_ticket_id", &fromNama).Error; err != nil {
			return zero, err
		}
		var fromNomor []uint
		if err := s.db.WithContext(ctx).Model(&model.NomorTicket{}).
			Where("nomor_ticket LIKE ?", like).
			Pluck("id", &fromNomor).Error; err != nil {
			return zero, err
		}
		ids := append(fromNama, fromNomor...)
		if len(ids) == 0 {
			ids = []uint{0}
		}
		groups = groups.Where("id IN ?", ids)
	}

	var groupIDs []uint
	if err := groups.Pluck("id", &groupIDs).Error; err != nil {
		return zero, err
	}

	var reps []model.Ticket
	for _, gid := range groupIDs {
		tq := s.db.WithContext(ctx).Preload("NomorTicket").Where("nomor_ticket_id = ?", gid)
		switch scope {
		case ScopeBreached:
			tq = tq.Where("sla = 0")
		case ScopeActiveUnassigned, ScopeActiveForQC, ScopeEscalated:
			tq = tq.Where("sla <> 0")
		}
		if f.Jenis != "" {
			tq = tq.Where("jenis_pengaduan = ?", f.Jenis)
		}
		if f.Status != "" {
			tq = tq.Where("status_ticket = ?", f.Status)
		}
		if f.Tahapan != "" {
			tq = tq.Where("tahapan = ?", f.Tahapan)
		}
		if f.Tanggal != "" {
			if day, err := time.Parse("2006-01-02", f.Tanggal); err == nil {
				tq = tq.Where("tanggal >= ? AND tanggal < ?", day, day.AddDate(0, 0, 1))
			}
		}
		var first model.Ticket
		err := tq.Order("created_time ASC").First(&first).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return zero, err
		}
		reps = append(reps, first)
	}

	sort.SliceStable(reps, func(i, j int) bool {
		return reps[i].CreatedTime.After(reps[j].CreatedTime)
	})

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	return pagination.Paginate(reps, f.Page, perPage), nil
}

// CountByGroup returns ticket counts keyed by group id. slaZeroOnly restricts
// the count to SLA-exhausted tickets (the breach page).
func (s *QueryService) CountByGroup(ctx context.Context, slaZeroOnly bool) (map[uint]int64, error) {
	type row struct {
		NomorTicketID uint
		N             int64
	}
	var rows []row
	q := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Select("nomor_ticket_id, COUNT(id) AS n").
		Where("nomor_ticket_id IS NOT NULL").
		Group("nomor_ticket_id")
	if slaZeroOnly {
		q = q.Where("sla = 0")
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.NomorTicketID] = r.N
	}
	return out, nil
}

// ActiveGroupCount counts distinct "aktif" groups. qcID scopes to a QC's
// assignments, qcUnassigned to groups with no QC; slaZero flips the SLA
// condition between "still has budget" and "exhausted".
func (s *QueryService) ActiveGroupCount(ctx context.Context, qcID *uint, qcUnassigned, slaZero bool) (int64, error) {
	q := s.db.WithContext(ctx).Model(&model.NomorTicket{}).
		Joins("JOIN tickets ON tickets.nomor_ticket_id = nomor_ticket.id").
		Where("nomor_ticket.status = ?", string(model.GroupStatusAktif))
	if slaZero {
		q = q.Where("tickets.sla = 0")
	} else {
		q = q.Where("tickets.sla <> 0")
	}
	if qcID != nil {
		q = q.Where("nomor_ticket.id_qc = ?", *qcID)
	} else if qcUnassigned {
		q = q.Where("nomor_ticket.id_qc IS NULL")
	}
	var n int64
	err := q.Distinct("nomor_ticket.id").Count(&n).Error
	return n, err
}

// SLAWarnings returns, for each active/reopen group whose minimum SLA sits in
// [1,3], the ticket holding that minimum, ascending by SLA. Feeds the warning
// banner on every page.
func (s *QueryService) SLAWarnings(ctx context.Context) ([]model.Ticket, error) {
	var groupIDs []uint
	if err := s.db.WithContext(ctx).Model(&model.NomorTicket{}).
		Where("status IN ?", []string{string(model.GroupStatusAktif), "Reopen", string(model.GroupStatusReopen)}).
		Pluck("id", &groupIDs).Error; err != nil {
		return nil, err
	}
	var out []model.Ticket
	for _, gid := range groupIDs {
		var t model.Ticket
		err := s.db.WithContext(ctx).
			Where("nomor_ticket_id = ? AND sla BETWEEN 1 AND 3", gid).
			Order("sla ASC").
			First(&t).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SLA < out[j].SLA })
	return out, nil
}

// ChartSeries is one named series of a dashboard chart.
type ChartSeries struct {
	Name       string     `json:"name"`
	Data       []int64    `json:"data"`
	BucketInfo [][]string `json:"bucket_info,omitempty"`
}

// Chart is the render-ready payload for one chart.
type Chart struct {
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
	Colors []string      `json:"colors"`
	Title  string        `json:"title,omitempty"`
}

// DateRange bounds a chart query; zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses "YYYY-MM-DD - YYYY-MM-DD". Malformed input yields an
// open range rather than an error.
func ParseDateRange(s string) DateRange {
	parts := strings.SplitN(s, " - ", 2)
	if len(parts) != 2 {
		return DateRange{}
	}
	start, err1 := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
	end, err2 := time.Parse("2006-01-02", strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return DateRange{}
	}
	return DateRange{Start: start, End: end.AddDate(0, 0, 1)}
}

func (r DateRange) bounded() bool { return !r.Start.IsZero() && !r.End.IsZero() }

// OSBucketChart cross-tabulates ticket counts by OS name, with per-bucket
// breakdown strings, over up to two date ranges.
func (s *QueryService) OSBucketChart(ctx context.Context, osFilter, bucketFilter []string, ranges []DateRange) (Chart, error) {
	type agg struct {
		totals  map[string]int64
		buckets map[string][]string
	}
	collect := func(r DateRange) (agg, error) {
		q := s.db.WithContext(ctx).Model(&model.Ticket{}).
			Where("nama_os IS NOT NULL AND nama_os <> ''")
		if len(osFilter) > 0 {
			q = q.Where("nama_os IN ?", osFilter)
		}
		if len(bucketFilter) > 0 {
			q = q.Where("nama_bucket IN ?", bucketFilter)
		}
		if r.bounded() {
			q = q.Where("tanggal >= ? AND tanggal < ?", r.Start, r.End)
		}
		type row struct {
			NamaOS     string
			NamaBucket *string
			N          int64
		}
		var rows []row
		if err := q.Select("nama_os, nama_bucket, COUNT(id) AS n").
			Group("nama_os").Group("nama_bucket").Scan(&rows).Error; err != nil {
			return agg{}, err
		}
		a := agg{totals: map[string]int64{}, buckets: map[string][]string{}}
		for _, r := range rows {
			a.totals[r.NamaOS] += r.N
			if r.NamaBucket != nil && *r.NamaBucket != "" {
				a.buckets[r.NamaOS] = append(a.buckets[r.NamaOS], *r.NamaBucket+": "+strconv.FormatInt(r.N, 10))
			}
		}
		return a, nil
	}

	if len(ranges) == 0 {
		ranges = []DateRange{{}}
	}
	aggs := make([]agg, 0, len(ranges))
	labelSet := map[string]bool{}
	for _, r := range ranges {
		a, err := collect(r)
		if err != nil {
			return Chart{}, err
		}
		aggs = append(aggs, a)
		for os := range a.totals {
			labelSet[os] = true
		}
	}
	chartLabels := sortedKeys(labelSet)

	chart := Chart{Labels: chartLabels, Colors: labels.Colors(labels.ChartPalette, len(chartLabels))}
	for i, a := range aggs {
		name := "Total"
		if ranges[i].bounded() {
			name = ranges[i].Start.Format("02 Jan") + " - " + ranges[i].End.AddDate(0, 0, -1).Format("02 Jan")
		}
		series := ChartSeries{Name: name}
		for _, l := range chartLabels {
			series.Data = append(series.Data, a.totals[l])
			series.BucketInfo = append(series.BucketInfo, a.buckets[l])
		}
		chart.Series = append(chart.Series, series)
	}
	return chart, nil
}

// KanalChart counts distinct groups per normalized channel label, over up to
// two date ranges.
func (s *QueryService) KanalChart(ctx context.Context, ranges []DateRange) (Chart, error) {
	var raw []string
	if err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("kanal_pengaduan IS NOT NULL AND kanal_pengaduan <> ''").
		Distinct().Pluck("kanal_pengaduan", &raw).Error; err != nil {
		return Chart{}, err
	}
	kanalSet := map[string]bool{}
	for _, k := range raw {
		if n := strings.ToLower(strings.TrimSpace(k)); n != "" {
			kanalSet[n] = true
		}
	}
	kanalList := sortedKeys(kanalSet)

	collect := func(r DateRange) ([]int64, error) {
		q := s.db.WithContext(ctx).Model(&model.Ticket{}).
			Joins("JOIN nomor_ticket ON nomor_ticket.id = tickets.nomor_ticket_id").
			Where("kanal_pengaduan IS NOT NULL AND kanal_pengaduan <> ''")
		if r.bounded() {
			q = q.Where("tanggal >= ? AND tanggal < ?", r.Start, r.End)
		}
		type row struct {
			Kanal string
			N     int64
		}
		var rows []row
		if err := q.Select("LOWER(TRIM(kanal_pengaduan)) AS kanal, COUNT(DISTINCT tickets.nomor_ticket_id) AS n").
			Group("LOWER(TRIM(kanal_pengaduan))").Scan(&rows).Error; err != nil {
			return nil, err
		}
		byKanal := map[string]int64{}
		for _, r := range rows {
			byKanal[r.Kanal] = r.N
		}
		out := make([]int64, len(kanalList))
		for i, k := range kanalList {
			out[i] = byKanal[k]
		}
		return out, nil
	}

	chart := Chart{Colors: labels.Colors(labels.KanalPalette, len(kanalList))}
	for _, k := range kanalList {
		chart.Labels = append(chart.Labels, titleCase(k))
	}
	if len(ranges) == 0 {
		data, err := collect(DateRange{})
		if err != nil {
			return Chart{}, err
		}
		chart.Series = []ChartSeries{{Name: "Total", Data: data}}
		return chart, nil
	}
	for _, r := range ranges {
		data, err := collect(r)
		if err != nil {
			return Chart{}, err
		}
		name := "Total"
		if r.bounded() {
			name = "Range " + r.Start.Format("2006-01-02") + " - " + r.End.AddDate(0, 0, -1).Format("2006-01-02")
		}
		chart.Series = append(chart.Series, ChartSeries{Name: name, Data: data})
	}
	return chart, nil
}

// JenisChart counts distinct groups per complaint-type code.
func (s *QueryService) JenisChart(ctx context.Context, r DateRange) (Chart, error) {
	q := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Joins("JOIN nomor_ticket ON nomor_ticket.id = tickets.nomor_ticket_id").
		Where("jenis_pengaduan IN ?", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"})
	if r.bounded() {
		q = q.Where("tanggal >= ? AND tanggal < ?", r.Start, r.End)
	}
	type row struct {
		Jenis string
		N     int64
	}
	var rows []row
	if err := q.Select("jenis_pengaduan AS jenis, COUNT(DISTINCT tickets.nomor_ticket_id) AS n").
		Group("jenis_pengaduan").Scan(&rows).Error; err != nil {
		return Chart{}, err
	}
	chart := Chart{Title: "Jumlah NomorTicket"}
	series := ChartSeries{Name: "Jumlah NomorTicket"}
	for _, r := range rows {
		label := "Jenis " + r.Jenis
		if code, err := strconv.Atoi(r.Jenis); err == nil {
			if l, ok := labels.JenisPengaduan[code]; ok {
				label = l
			}
		}
		chart.Labels = append(chart.Labels, label)
		series.Data = append(series.Data, r.N)
	}
	chart.Series = []ChartSeries{series}
	chart.Colors = labels.Colors(labels.ChartPalette, len(chart.Labels))
	return chart, nil
}

// DashboardTotals is the staff-dashboard headline block.
type DashboardTotals struct {
	TotalGroups int64 `json:"total_nomor_ticket"`
	TotalOpen   int64 `json:"total_open"`
	TotalClose  int64 `json:"total_close"`
}

// Totals counts distinct groups (all / open / closed) under the filters.
func (s *QueryService) Totals(ctx context.Context, r DateRange, osFilter, bucketFilter, jenisFilter []string) (DashboardTotals, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&model.NomorTicket{}).
			Joins("JOIN tickets ON tickets.nomor_ticket_id = nomor_ticket.id")
		if r.bounded() {
			q = q.Where("tickets.tanggal >= ? AND tickets.tanggal < ?", r.Start, r.End)
		}
		if len(osFilter) > 0 {
			q = q.Where("tickets.nama_os IN ?", osFilter)
		}
		if len(bucketFilter) > 0 {
			q = q.Where("tickets.nama_bucket IN ?", bucketFilter)
		}
		if len(jenisFilter) > 0 {
			q = q.Where("tickets.jenis_pengaduan IN ?", jenisFilter)
		}
		return q
	}
	var out DashboardTotals
	if err := base().Distinct("nomor_ticket.id").Count(&out.TotalGroups).Error; err != nil {
		return out, err
	}
	if err := base().Where("nomor_ticket.status IN ?", []string{string(model.GroupStatusAktif), "Reopen", string(model.GroupStatusReopen)}).
		Distinct("nomor_ticket.id").Count(&out.TotalOpen).Error; err != nil {
		return out, err
	}
	err := base().Where("nomor_ticket.status = ?", string(model.GroupStatusClose)).
		Distinct("nomor_ticket.id").Count(&out.TotalClose).Error
	return out, err
}

// DistinctOS lists every non-empty OS name in use.
func (s *QueryService) DistinctOS(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("nama_os IS NOT NULL AND nama_os <> ''").
		Distinct().Order("nama_os").Pluck("nama_os", &out).Error
	return out, err
}

// DistinctBucket lists every non-empty bucket name in use.
func (s *QueryService) DistinctBucket(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("nama_bucket IS NOT NULL AND nama_bucket <> ''").
		Distinct().Order("nama_bucket").Pluck("nama_bucket", &out).Error
	return out, err
}

// DistinctTahapan lists every stage label in use, for the filter dropdown.
func (s *QueryService) DistinctTahapan(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("tahapan IS NOT NULL AND tahapan <> ''").
		Distinct().Order("tahapan").Pluck("tahapan", &out).Error
	return out, err
}

// CaseValidList pages through validated cases, newest first.
func (s *QueryService) CaseValidList(ctx context.Context, f ListFilter) (pagination.Page[model.Ticket], error) {
	var zero pagination.Page[model.Ticket]
	q := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Preload("NomorTicket").
		Where("status_case = ?", "valid")
	if f.Jenis != "" {
		q = q.Where("jenis_pengaduan = ?", f.Jenis)
	}
	if f.Status != "" {
		q = q.Where("status_ticket = ?", f.Status)
	}
	if f.Tanggal != "" {
		if day, err := time.Parse("2006-01-02", f.Tanggal); err == nil {
			q = q.Where("tanggal >= ? AND tanggal < ?", day, day.AddDate(0, 0, 1))
		}
	}
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 10
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return zero, err
	}
	var items []model.Ticket
	if err := q.Order("created_time DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&items).Error; err != nil {
		return zero, err
	}
	return pagination.New(items, page, perPage, total), nil
}

// HistoryList pages through the audit log, newest first.
func (s *QueryService) HistoryList(ctx context.Context, page, perPage int) (pagination.Page[model.History], error) {
	var zero pagination.Page[model.History]
	if perPage <= 0 {
		perPage = 10
	}
	if page < 1 {
		page = 1
	}
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.History{}).Count(&total).Error; err != nil {
		return zero, err
	}
	var items []model.History
	if err := s.db.WithContext(ctx).
		Order("tanggal DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&items).Error; err != nil {
		return zero, err
	}
	return pagination.New(items, page, perPage, total), nil
}

// ExportTickets returns every ticket in the date range, newest first.
func (s *QueryService) ExportTickets(ctx context.Context, start, end time.Time) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := s.db.WithContext(ctx).
		Preload("NomorTicket").
		Where("tanggal >= ? AND tanggal <= ?", start, end).
		Order("tanggal DESC").
		Find(&tickets).Error
	return tickets, err
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
