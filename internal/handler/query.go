package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uatas-cs/complaint-service/internal/middleware"
	"github.com/uatas-cs/complaint-service/internal/service"
)

// QueryHandler serves the dashboards: grouped lists, counts and charts.
type QueryHandler struct {
	queries *service.QueryService
}

func NewQueryHandler(queries *service.QueryService) *QueryHandler {
	return &QueryHandler{queries: queries}
}

func listFilter(c *gin.Context) service.ListFilter {
	return service.ListFilter{
		Jenis:   c.Query("jenis"),
		Status:  c.Query("status"),
		Tanggal: c.Query("tanggal"),
		Q:       c.Query("q"),
		Tahapan: c.Query("tahapan"),
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "per_page", 10),
	}
}

// grouped renders one grouped listing plus its per-group counts and the
// active-group headline number.
func (h *QueryHandler) grouped(c *gin.Context, scope service.GroupScope) {
	f := listFilter(c)
	var qcID *uint
	qcUnassigned := false
	switch scope {
	case service.ScopeActiveForQC:
		id := middleware.UserID(c)
		f.QCID = id
		qcID = &id
	case service.ScopeActiveUnassigned:
		qcUnassigned = true
	}

	page, err := h.queries.GroupedList(c.Request.Context(), scope, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	counts, err := h.queries.CountByGroup(c.Request.Context(), scope == service.ScopeBreached)
	if err != nil {
		respondErr(c, err)
		return
	}
	active, err := h.queries.ActiveGroupCount(c.Request.Context(), qcID, qcUnassigned, scope == service.ScopeBreached)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets":               page,
		"count_by_nomor_ticket": counts,
		"jumlah_tiket_aktif":    active,
	})
}

func (h *QueryHandler) Pengaduan(c *gin.Context) {
	h.grouped(c, service.ScopeActiveUnassigned)
}

func (h *QueryHandler) QCDashboard(c *gin.Context) {
	h.grouped(c, service.ScopeActiveForQC)
}

func (h *QueryHandler) Escalated(c *gin.Context) {
	h.grouped(c, service.ScopeEscalated)
}

func (h *QueryHandler) Closed(c *gin.Context) {
	h.grouped(c, service.ScopeClosed)
}

func (h *QueryHandler) Reopened(c *gin.Context) {
	h.grouped(c, service.ScopeReopened)
}

func (h *QueryHandler) SLABreached(c *gin.Context) {
	h.grouped(c, service.ScopeBreached)
}

func (h *QueryHandler) SLAWarnings(c *gin.Context) {
	warnings, err := h.queries.SLAWarnings(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sla_warning_tickets": warnings})
}

func chartRanges(c *gin.Context) []service.DateRange {
	var ranges []service.DateRange
	for _, key := range []string{"range1", "range2"} {
		if v := c.Query(key); v != "" {
			ranges = append(ranges, service.ParseDateRange(v))
		}
	}
	return ranges
}

func (h *QueryHandler) OSBucketChart(c *gin.Context) {
	chart, err := h.queries.OSBucketChart(c.Request.Context(),
		c.QueryArray("os"), c.QueryArray("bucket"), chartRanges(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	listOS, err := h.queries.DistinctOS(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	listBucket, err := h.queries.DistinctBucket(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chart":       chart,
		"list_os":     listOS,
		"list_bucket": listBucket,
	})
}

func (h *QueryHandler) KanalChart(c *gin.Context) {
	chart, err := h.queries.KanalChart(c.Request.Context(), chartRanges(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart": chart})
}

func (h *QueryHandler) JenisChart(c *gin.Context) {
	chart, err := h.queries.JenisChart(c.Request.Context(), service.ParseDateRange(c.Query("date_range")))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chart": chart})
}

func (h *QueryHandler) DashboardTotals(c *gin.Context) {
	totals, err := h.queries.Totals(c.Request.Context(),
		service.ParseDateRange(c.Query("date_range")),
		c.QueryArray("os"), c.QueryArray("bucket"), c.QueryArray("jenis_pengaduan"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *QueryHandler) CaseValid(c *gin.Context) {
	page, err := h.queries.CaseValidList(c.Request.Context(), listFilter(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": page})
}

func (h *QueryHandler) History(c *gin.Context) {
	page, err := h.queries.HistoryList(c.Request.Context(), intQuery(c, "page", 1), intQuery(c, "per_page", 10))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": page})
}

func (h *QueryHandler) TahapanOptions(c *gin.Context) {
	opts, err := h.queries.DistinctTahapan(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tahapan_options": opts})
}
