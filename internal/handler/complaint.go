package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uatas-cs/complaint-service/internal/middleware"
	"github.com/uatas-cs/complaint-service/internal/model"
	"github.com/uatas-cs/complaint-service/internal/service"
	"github.com/uatas-cs/complaint-service/internal/storage"
)

// ComplaintHandler serves the staff lifecycle actions.
type ComplaintHandler struct {
	tickets *service.TicketService
	files   *storage.FileStore
}

func NewComplaintHandler(tickets *service.TicketService, files *storage.FileStore) *ComplaintHandler {
	return &ComplaintHandler{tickets: tickets, files: files}
}

func (h *ComplaintHandler) Submit(c *gin.Context) {
	var in service.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ticket, err := h.tickets.Submit(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *ComplaintHandler) AddOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in service.AddOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	reopen := c.Query("reopen") == "true"
	ticket, err := h.tickets.AddOrder(c.Request.Context(), middleware.UserID(c), id, in, reopen)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *ComplaintHandler) AddKontak(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var k model.Kontak
	if err := c.ShouldBindJSON(&k); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	kontak, err := h.tickets.AddKontak(c.Request.Context(), id, k)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, kontak)
}

func (h *ComplaintHandler) UpdateStage(c *gin.Context) {
	ticketID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in service.UpdateStageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	in.TahapanRequired = c.Query("reopen") == "true"
	if err := h.tickets.UpdateStage(c.Request.Context(), middleware.UserID(c), ticketID, in); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": ticketID})
}

func (h *ComplaintHandler) CloseGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.tickets.CloseGroup(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(model.GroupStatusClose)})
}

func (h *ComplaintHandler) ReopenGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.tickets.ReopenGroup(c.Request.Context(), middleware.UserID(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(model.GroupStatusReopen)})
}

// GroupFollowUp is a multipart form: jenis/detail/kronologis fields plus
// bukti_chat uploads, with existing_images/deleted_images editing the current
// attachment list.
func (h *ComplaintHandler) GroupFollowUp(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	added, err := h.files.SaveAll(form.File["bukti_chat"])
	if err != nil {
		respondErr(c, err)
		return
	}
	final := storage.MergeLists(form.Value["existing_images"], form.Value["deleted_images"], added)
	in := service.GroupFollowUpInput{
		JenisPengaduan:  c.PostForm("jenis_pengaduan"),
		DetailPengaduan: c.PostForm("detail_pengaduan"),
		Kronologis:      c.PostForm("kronologis"),
		BuktiChat:       final,
	}
	if err := h.tickets.GroupFollowUp(c.Request.Context(), id, in); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *ComplaintHandler) GetGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	group, err := h.tickets.GetGroup(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	tickets, err := h.tickets.GroupTickets(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	// Feedback badge for the escalation view: any QC note counts.
	hasFeedback := false
	for _, t := range tickets {
		if t.DeskripsiQC != "" {
			hasFeedback = true
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"nomor_ticket": group,
		"tickets":      tickets,
		"has_feedback": hasFeedback,
	})
}

type catatanRequest struct {
	Catatan string `json:"catatan"`
}

func (h *ComplaintHandler) UpdateCatatan(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req catatanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.tickets.UpdateCatatan(c.Request.Context(), id, req.Catatan); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

func (h *ComplaintHandler) MarkCaseValid(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.tickets.MarkCaseValid(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status_case": "valid"})
}

func (h *ComplaintHandler) UploadDocuments(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	names, err := h.files.SaveAll(form.File["documents"])
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := h.tickets.AttachDocuments(c.Request.Context(), id, names); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploaded": len(names)})
}

type deleteDocumentRequest struct {
	Filename string `json:"filename" binding:"required"`
}

func (h *ComplaintHandler) DeleteDocument(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req deleteDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.tickets.RemoveDocument(c.Request.Context(), id, req.Filename); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.files.Remove(req.Filename); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": req.Filename})
}

// QCFeedbackGroup attaches a QC note + files to every ticket of an assigned
// group. Only the assigned QC may post.
func (h *ComplaintHandler) QCFeedbackGroup(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	added, err := h.files.SaveAll(form.File["file_qc"])
	if err != nil {
		respondErr(c, err)
		return
	}
	final := storage.MergeLists(form.Value["existing_images"], form.Value["deleted_images"], added)
	err = h.tickets.QCFeedbackGroup(c.Request.Context(), middleware.UserID(c), id, c.PostForm("deskripsi_qc"), final)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}

// QCFeedbackTicket attaches a QC note + files to one ticket.
func (h *ComplaintHandler) QCFeedbackTicket(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	added, err := h.files.SaveAll(form.File["file_qc"])
	if err != nil {
		respondErr(c, err)
		return
	}
	final := append(form.Value["existing_images"], added...)
	if err := h.tickets.QCFeedbackTicket(c.Request.Context(), id, c.PostForm("deskripsi_qc"), final); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": id})
}
