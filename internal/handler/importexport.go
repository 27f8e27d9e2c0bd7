package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uatas-cs/complaint-service/internal/excel"
	"github.com/uatas-cs/complaint-service/internal/middleware"
	"github.com/uatas-cs/complaint-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportExportHandler moves complaints in and out as xlsx files.
type ImportExportHandler struct {
	tickets *service.TicketService
	queries *service.QueryService
}

func NewImportExportHandler(tickets *service.TicketService, queries *service.QueryService) *ImportExportHandler {
	return &ImportExportHandler{tickets: tickets, queries: queries}
}

// Import parses the uploaded template and persists it in one transaction; an
// invalid complaint-type label aborts the whole file.
func (h *ImportExportHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()

	rows, err := excel.ParseImport(f)
	if err != nil {
		respondErr(c, err)
		return
	}
	res, err := h.tickets.ImportRows(c.Request.Context(), middleware.UserID(c), rows)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Export streams a date-range xlsx. The range comes as
// "YYYY-MM-DD - YYYY-MM-DD".
func (h *ImportExportHandler) Export(c *gin.Context) {
	parts := strings.SplitN(c.Query("date"), " - ", 2)
	if len(parts) != 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format tanggal tidak valid, gunakan YYYY-MM-DD - YYYY-MM-DD"})
		return
	}
	start, err1 := time.Parse("2006-01-02", strings.TrimSpace(parts[0]))
	end, err2 := time.Parse("2006-01-02", strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format tanggal tidak valid, gunakan YYYY-MM-DD - YYYY-MM-DD"})
		return
	}

	tickets, err := h.queries.ExportTickets(c.Request.Context(), start, end.AddDate(0, 0, 1).Add(-time.Second))
	if err != nil {
		respondErr(c, err)
		return
	}
	if len(tickets) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "tidak ada data ticket pada rentang tanggal tersebut"})
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	buf, err := excel.Export(tickets, scheme+"://"+c.Request.Host)
	if err != nil {
		respondErr(c, err)
		return
	}

	name := fmt.Sprintf("export_tickets_%s_to_%s.xlsx", parts[0], parts[1])
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
