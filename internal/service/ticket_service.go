package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/uatas-cs/complaint-service/internal/errs"
	"github.com/uatas-cs/complaint-service/internal/kafka"
	"github.com/uatas-cs/complaint-service/internal/model"
	"github.com/uatas-cs/complaint-service/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TicketService owns the complaint store and the lifecycle state machine.
type TicketService struct {
	db     *gorm.DB
	events kafka.ComplaintEventProducer
}

func NewTicketService(db *gorm.DB, events kafka.ComplaintEventProducer) *TicketService {
	return &TicketService{db: db, events: events}
}

var nonAlpha = regexp.MustCompile(`[^a-zA-Z]`)

// cleanOSName strips spaces and non-alpha noise the way imports always have.
func cleanOSName(v string) *string {
	v = nonAlpha.ReplaceAllString(strings.ReplaceAll(v, " ", ""), "")
	if v == "" {
		return nil
	}
	return &v
}

func cleanBucketName(v string) *string {
	v = strings.ReplaceAll(v, " ", "")
	if v == "" {
		return nil
	}
	return &v
}

// GetOrCreateGroup resolves a ticket-number string to its group row, creating
// it if absent. The insert is an upsert on the unique nomor_ticket column so
// two concurrent submissions of the same new number converge on one row.
func (s *TicketService) GetOrCreateGroup(ctx context.Context, tx *gorm.DB, nomor string) (*model.NomorTicket, error) {
	nomor = strings.TrimSpace(nomor)
	if nomor == "" {
		return nil, errs.Validation("nomor ticket wajib diisi")
	}
	if tx == nil {
		tx = s.db
	}
	aktif := string(model.GroupStatusAktif)
	nt := model.NomorTicket{NomorTicket: nomor, Status: &aktif}
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "nomor_ticket"}},
			DoNothing: true,
		}).
		Create(&nt).Error
	if err != nil {
		return nil, err
	}
	// DoNothing leaves nt.ID zero when the row already existed; re-select
	// either way so callers always see the persisted state.
	var out model.NomorTicket
	if err := tx.WithContext(ctx).Where("nomor_ticket = ?", nomor).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitInput carries the new-complaint form fields.
type SubmitInput struct {
	NomorTicket        string `json:"nomor_ticket" binding:"required"`
	KanalPengaduan     string `json:"kanal_pengaduan"`
	KategoriPengaduan  string `json:"kategori_pengaduan"`
	JenisPengaduan     string `json:"jenis_pengaduan"`
	DetailPengaduan    string `json:"detail_pengaduan"`
	Tanggal            string `json:"tanggal"` // YYYY-MM-DD, empty means now
	NamaNasabah        string `json:"nama_nasabah"`
	Email              string `json:"email"`
	NomorUtama         string `json:"nomor_utama"`
	NomorKontak        string `json:"nomor_kontak"`
	NIK                string `json:"nik"`
	NamaOS             string `json:"nama_os"`
	NamaDC             string `json:"nama_dc"`
	NamaBucket         string `json:"nama_bucket"`
	OrderNo            string `json:"order_no"`
	DeskripsiPengaduan string `json:"deskripsi_pengaduan"`
}

// Submit logs a new complaint: creates the Ticket with status "1" and a full
// SLA budget, attached to the (possibly new) group.
func (s *TicketService) Submit(ctx context.Context, actorID uint, in SubmitInput) (*model.Ticket, error) {
	tanggal := time.Now().UTC()
	if in.Tanggal != "" {
		t, err := time.Parse("2006-01-02", in.Tanggal)
		if err != nil {
			return nil, errs.Validation("format tanggal tidak valid")
		}
		tanggal = t
	}

	var ticket *model.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := s.GetOrCreateGroup(ctx, tx, in.NomorTicket)
		if err != nil {
			return err
		}
		ticket = &model.Ticket{
			KanalPengaduan:     in.KanalPengaduan,
			KategoriPengaduan:  in.KategoriPengaduan,
			JenisPengaduan:     in.JenisPengaduan,
			DetailPengaduan:    in.DetailPengaduan,
			Tanggal:            tanggal,
			NamaNasabah:        in.NamaNasabah,
			Email:              in.Email,
			NomorUtama:         in.NomorUtama,
			NomorKontak:        in.NomorKontak,
			NIK:                in.NIK,
			NamaOS:             cleanOSName(in.NamaOS),
			NamaDC:             in.NamaDC,
			NamaBucket:         cleanBucketName(in.NamaBucket),
			OrderNo:            in.OrderNo,
			DeskripsiPengaduan: in.DeskripsiPengaduan,
			InputBy:            &actorID,
			SLA:                model.DefaultSLA,
			StatusTicket:       model.TicketStatusAktif,
			CreatedTime:        time.Now().UTC(),
			NomorTicketID:      &group.ID,
		}
		return tx.Create(ticket).Error
	})
	if err != nil {
		return nil, err
	}
	s.events.ProduceComplaintEvent(ctx, kafka.EventComplaintSubmitted, map[string]interface{}{
		"ticket_id":    ticket.ID,
		"nomor_ticket": in.NomorTicket,
		"order_no":     ticket.OrderNo,
		"user_id":      actorID,
	})
	return ticket, nil
}

// AddOrderInput carries the add-order form for an existing group.
type AddOrderInput struct {
	OrderNo            string `json:"order_no"`
	NamaOS             string `json:"nama_os"`
	NamaDC             string `json:"nama_dc"`
	NamaBucket         string `json:"nama_bucket"`
	DeskripsiPengaduan string `json:"deskripsi_pengaduan"`
	Tanggal            string `json:"tanggal"`
}

// AddOrder files a follow-up complaint in the same group, inheriting the
// original ticket's identity fields. Reopen variants start at status "5".
func (s *TicketService) AddOrder(ctx context.Context, actorID, ticketID uint, in AddOrderInput, reopen bool) (*model.Ticket, error) {
	if in.DeskripsiPengaduan == "" || in.Tanggal == "" {
		return nil, errs.Validation("deskripsi pengaduan dan tanggal wajib diisi")
	}
	tanggal, err := time.Parse("2006-01-02", in.Tanggal)
	if err != nil {
		return nil, errs.Validation("tanggal tidak valid")
	}
	orig, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	status := model.TicketStatusAktif
	if reopen {
		status = model.TicketStatusReopen
	}
	ticket := &model.Ticket{
		OrderNo:            in.OrderNo,
		NamaOS:             cleanOSName(in.NamaOS),
		NamaDC:             in.NamaDC,
		NamaBucket:         cleanBucketName(in.NamaBucket),
		DeskripsiPengaduan: in.DeskripsiPengaduan,
		Tanggal:            tanggal,

		KanalPengaduan:    orig.KanalPengaduan,
		KategoriPengaduan: orig.KategoriPengaduan,
		JenisPengaduan:    orig.JenisPengaduan,
		DetailPengaduan:   orig.DetailPengaduan,
		NamaNasabah:       orig.NamaNasabah,
		Email:             orig.Email,
		NomorUtama:        orig.NomorUtama,
		NomorKontak:       orig.NomorKontak,
		NIK:               orig.NIK,

		InputBy:       &actorID,
		SLA:           model.DefaultSLA,
		StatusTicket:  status,
		CreatedTime:   time.Now().UTC(),
		NomorTicketID: orig.NomorTicketID,
	}
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

// AddKontak attaches a contact to a ticket. Name, NIK and phone are required.
func (s *TicketService) AddKontak(ctx context.Context, ticketID uint, k model.Kontak) (*model.Kontak, error) {
	if k.NamaLengkap == "" || k.NIK == "" || k.Phone == "" {
		return nil, errs.Validation("field wajib diisi: nama, NIK, dan no HP")
	}
	if _, err := s.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	k.IDTicket = ticketID
	if err := s.db.WithContext(ctx).Create(&k).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

// UpdateStageInput carries the update-tahapan form.
type UpdateStageInput struct {
	Tahapan      string `json:"tahapan"`
	StatusTicket string `json:"status_ticket"`
	IDQC         *uint  `json:"id_qc"`

	// Auxiliary note parts. Status "3" composes date+desc, "4" takes the
	// follow-up text.
	Tahapan2Date     string `json:"tahapan_2_date"`
	Tahapan2Desc     string `json:"tahapan_2_desc"`
	Tahapan2Followup string `json:"tahapan_2_followup"`

	NamaOS             string `json:"nama_os"`
	NamaBucket         string `json:"nama_bucket"`
	NamaDC             string `json:"nama_dc"`
	NamaNasabah        string `json:"nama_nasabah"`
	NIK                string `json:"nik"`
	NomorUtama         string `json:"nomor_utama"`
	NomorKontak        string `json:"nomor_kontak"`
	Email              string `json:"email"`
	DeskripsiPengaduan string `json:"deskripsi_pengaduan"`
	OrderNo            string `json:"order_no"`

	// TahapanRequired marks the reopen-list variant, where picking a stage
	// is mandatory. Set from the route, not the body.
	TahapanRequired bool `json:"-"`
}

// composeTahapan2 builds the auxiliary note required by statuses "3" and "4".
func composeTahapan2(in UpdateStageInput) (string, error) {
	switch in.StatusTicket {
	case model.TicketStatusKeberatan:
		if in.Tahapan2Date == "" || in.Tahapan2Desc == "" {
			return "", errs.Validation("status keberatan membutuhkan tanggal dan deskripsi")
		}
		return in.Tahapan2Date + " - " + in.Tahapan2Desc, nil
	case model.TicketStatusTutup:
		if in.Tahapan2Followup == "" {
			return "", errs.Validation("status tutup membutuhkan catatan tindak lanjut")
		}
		return in.Tahapan2Followup, nil
	}
	return "", nil
}

// UpdateStage applies a staff stage/status transition to one ticket and
// refreshes its editable fields. Every stage-or-status change appends one
// History row; escalation with a QC id assigns that QC to the group. The
// whole update is one transaction.
func (s *TicketService) UpdateStage(ctx context.Context, actorID, ticketID uint, in UpdateStageInput) error {
	if in.TahapanRequired && in.Tahapan == "" {
		return errs.Validation("tahapan wajib dipilih")
	}
	tahapan2, err := composeTahapan2(in)
	if err != nil {
		return err
	}

	var escalated bool
	var nomor string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ticket model.Ticket
		if err := tx.Preload("NomorTicket").First(&ticket, ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrTicketNotFound
			}
			return err
		}
		if ticket.NomorTicket != nil {
			nomor = ticket.NomorTicket.NomorTicket
		}

		updatingStage := in.StatusTicket != "" || in.Tahapan != "" || tahapan2 != ""
		if updatingStage {
			ticket.Tahapan = in.Tahapan
			ticket.StatusTicket = in.StatusTicket
			ticket.Tahapan2 = tahapan2

			if in.Tahapan == model.TahapanEskalasiQC && in.IDQC != nil && ticket.NomorTicketID != nil {
				if err := tx.Model(&model.NomorTicket{}).
					Where("id = ?", *ticket.NomorTicketID).
					Update("id_qc", *in.IDQC).Error; err != nil {
					return err
				}
				escalated = true
			}

			hist := model.History{
				NomorTicket:  nomor,
				Tanggal:      time.Now().UTC(),
				OrderNumber:  ticket.OrderNo,
				StatusTicket: in.StatusTicket,
				Tahapan:      in.Tahapan,
				NamaOS:       strings.TrimSpace(in.NamaOS),
				CreateBy:     actorID,
			}
			if err := tx.Create(&hist).Error; err != nil {
				return err
			}
		}

		ticket.NamaOS = trimmedOrNil(in.NamaOS)
		ticket.NamaBucket = trimmedOrNil(in.NamaBucket)
		ticket.NamaDC = in.NamaDC
		ticket.NamaNasabah = in.NamaNasabah
		ticket.NIK = in.NIK
		ticket.NomorUtama = in.NomorUtama
		ticket.NomorKontak = in.NomorKontak
		ticket.Email = in.Email
		ticket.DeskripsiPengaduan = in.DeskripsiPengaduan
		ticket.OrderNo = in.OrderNo

		return tx.Save(&ticket).Error
	})
	if err != nil {
		return err
	}
	if escalated {
		s.events.ProduceComplaintEvent(ctx, kafka.EventGroupEscalated, map[string]interface{}{
			"nomor_ticket": nomor,
			"qc_id":        in.IDQC,
			"user_id":      actorID,
		})
	}
	return nil
}

func trimmedOrNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// CloseGroup moves the group to "close" and every child ticket to "4",
// all-or-nothing.
func (s *TicketService) CloseGroup(ctx context.Context, actorID, groupID uint) error {
	nomor, err := s.setGroupStatus(ctx, groupID, model.GroupStatusClose, model.TicketStatusTutup)
	if err != nil {
		return err
	}
	s.events.ProduceComplaintEvent(ctx, kafka.EventGroupClosed, map[string]interface{}{
		"nomor_ticket": nomor, "user_id": actorID,
	})
	return nil
}

// ReopenGroup moves the group to "reopen" and every child ticket to "5",
// all-or-nothing. Reopen is re-enterable; follow-up orders start at "5".
func (s *TicketService) ReopenGroup(ctx context.Context, actorID, groupID uint) error {
	nomor, err := s.setGroupStatus(ctx, groupID, model.GroupStatusReopen, model.TicketStatusReopen)
	if err != nil {
		return err
	}
	s.events.ProduceComplaintEvent(ctx, kafka.EventGroupReopened, map[string]interface{}{
		"nomor_ticket": nomor, "user_id": actorID,
	})
	return nil
}

func (s *TicketService) setGroupStatus(ctx context.Context, groupID uint, groupStatus model.GroupStatus, ticketStatus string) (string, error) {
	var nomor string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.NomorTicket
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrGroupNotFound
			}
			return err
		}
		nomor = group.NomorTicket
		st := string(groupStatus)
		if err := tx.Model(&group).Update("status", st).Error; err != nil {
			return err
		}
		return tx.Model(&model.Ticket{}).
			Where("nomor_ticket_id = ?", group.ID).
			Update("status_ticket", ticketStatus).Error
	})
	return nomor, err
}

// GroupFollowUpInput updates the complaint classification across a group.
type GroupFollowUpInput struct {
	JenisPengaduan  string
	DetailPengaduan string
	Kronologis      string
	BuktiChat       []string // final attachment list, already stored
}

// GroupFollowUp rewrites jenis/detail/kronologis/bukti_chat on every ticket
// of the group as one unit.
func (s *TicketService) GroupFollowUp(ctx context.Context, groupID uint, in GroupFollowUpInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.NomorTicket
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrGroupNotFound
			}
			return err
		}
		return tx.Model(&model.Ticket{}).
			Where("nomor_ticket_id = ?", group.ID).
			Updates(map[string]interface{}{
				"jenis_pengaduan":  in.JenisPengaduan,
				"detail_pengaduan": in.DetailPengaduan,
				"kronologis":       in.Kronologis,
				"bukti_chat":       storage.JoinList(in.BuktiChat),
			}).Error
	})
}

// QCFeedbackGroup attaches a QC note and files to every ticket under the
// group without touching lifecycle status. The group must be assigned to the
// calling QC.
func (s *TicketService) QCFeedbackGroup(ctx context.Context, qcID, groupID uint, deskripsi string, files []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group model.NomorTicket
		if err := tx.Where("id = ? AND id_qc = ?", groupID, qcID).First(&group).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrGroupNotFound
			}
			return err
		}
		return tx.Model(&model.Ticket{}).
			Where("nomor_ticket_id = ?", group.ID).
			Updates(map[string]interface{}{
				"deskripsi_qc": deskripsi,
				"file_qc":      storage.JoinList(files),
			}).Error
	})
}

// QCFeedbackTicket attaches a QC note and files to a single ticket.
func (s *TicketService) QCFeedbackTicket(ctx context.Context, ticketID uint, deskripsi string, files []string) error {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(ticket).Updates(map[string]interface{}{
		"deskripsi_qc": deskripsi,
		"file_qc":      storage.JoinList(files),
	}).Error
}

// UpdateCatatan stores a staff note with today's date stamp.
func (s *TicketService) UpdateCatatan(ctx context.Context, ticketID uint, catatan string) error {
	if catatan == "" {
		return errs.Validation("catatan tidak boleh kosong")
	}
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(ticket).Updates(map[string]interface{}{
		"catatan":         catatan,
		"tanggal_catatan": time.Now().Format("2006-01-02"),
	}).Error
}

// MarkCaseValid flags a complaint as a validated case.
func (s *TicketService) MarkCaseValid(ctx context.Context, ticketID uint) error {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(ticket).Update("status_case", "valid").Error
}

// AttachDocuments appends stored evidence filenames to the ticket.
func (s *TicketService) AttachDocuments(ctx context.Context, ticketID uint, names []string) error {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	all := append(storage.SplitList(ticket.Document), names...)
	return s.db.WithContext(ctx).Model(ticket).Update("document", storage.JoinList(all)).Error
}

// RemoveDocument drops one evidence filename from the ticket's list and
// returns it so the caller can delete the stored file.
func (s *TicketService) RemoveDocument(ctx context.Context, ticketID uint, name string) error {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	docs := storage.SplitList(ticket.Document)
	kept := docs[:0]
	found := false
	for _, d := range docs {
		if d == name {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if name == "" || !found {
		return errs.ErrFileNotFound
	}
	return s.db.WithContext(ctx).Model(ticket).Update("document", storage.JoinList(kept)).Error
}

// GetTicket fetches one ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id uint) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetGroup fetches one group by id.
func (s *TicketService) GetGroup(ctx context.Context, id uint) (*model.NomorTicket, error) {
	var nt model.NomorTicket
	if err := s.db.WithContext(ctx).First(&nt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrGroupNotFound
		}
		return nil, err
	}
	return &nt, nil
}

// GroupTickets lists every ticket of a group, oldest first.
func (s *TicketService) GroupTickets(ctx context.Context, groupID uint) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := s.db.WithContext(ctx).
		Where("nomor_ticket_id = ?", groupID).
		Order("created_time ASC").
		Find(&tickets).Error
	return tickets, err
}
