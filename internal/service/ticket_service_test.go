package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uatas-cs/complaint-service/internal/errs"
	"github.com/uatas-cs/complaint-service/internal/kafka"
	"github.com/uatas-cs/complaint-service/internal/model"
	"gorm.io/gorm"
)

func TestSubmit_CreatesGroupAndTicket(t *testing.T) {
	svc, rec, db := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 7, SubmitInput{
		NomorTicket:        "TCK-100",
		KanalPengaduan:     "Email",
		JenisPengaduan:     "5",
		DetailPengaduan:    "Denda Keterlambatan",
		NamaNasabah:        "Budi Santoso",
		OrderNo:            "ORD-1",
		DeskripsiPengaduan: "komplain denda",
	})
	require.NoError(t, err)

	assert.Equal(t, model.TicketStatusAktif, ticket.StatusTicket)
	assert.Equal(t, model.DefaultSLA, ticket.SLA)
	require.NotNil(t, ticket.InputBy)
	assert.Equal(t, uint(7), *ticket.InputBy)
	require.NotNil(t, ticket.NomorTicketID)

	var group model.NomorTicket
	require.NoError(t, db.First(&group, *ticket.NomorTicketID).Error)
	assert.Equal(t, "TCK-100", group.NomorTicket)
	require.NotNil(t, group.Status)
	assert.Equal(t, string(model.GroupStatusAktif), *group.Status)

	assert.Equal(t, []string{kafka.EventComplaintSubmitted}, rec.names())
}

func TestSubmit_SameNomorSharesGroup(t *testing.T) {
	svc, _, db := newTicketService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-1", OrderNo: "A"})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-1", OrderNo: "B"})
	require.NoError(t, err)

	assert.Equal(t, *first.NomorTicketID, *second.NomorTicketID)
	var n int64
	require.NoError(t, db.Model(&model.NomorTicket{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSubmit_CleansOSAndBucket(t *testing.T) {
	svc, _, _ := newTicketService(t)

	ticket, err := svc.Submit(context.Background(), 1, SubmitInput{
		NomorTicket: "TCK-2",
		NamaOS:      "PT Alpha 99",
		NamaBucket:  "Bucket 3",
	})
	require.NoError(t, err)
	require.NotNil(t, ticket.NamaOS)
	assert.Equal(t, "PTAlpha", *ticket.NamaOS)
	require.NotNil(t, ticket.NamaBucket)
	assert.Equal(t, "Bucket3", *ticket.NamaBucket)
}

func TestSubmit_EmptyNomorRejected(t *testing.T) {
	svc, _, _ := newTicketService(t)
	_, err := svc.Submit(context.Background(), 1, SubmitInput{NomorTicket: "  "})
	assert.True(t, errs.IsValidation(err))
}

func TestGetOrCreateGroup_Idempotent(t *testing.T) {
	svc, _, db := newTicketService(t)
	ctx := context.Background()

	a, err := svc.GetOrCreateGroup(ctx, nil, "TCK-9")
	require.NoError(t, err)
	b, err := svc.GetOrCreateGroup(ctx, nil, "TCK-9")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	var n int64
	require.NoError(t, db.Model(&model.NomorTicket{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSubmit_ConcurrentSameNomorCreatesOneGroup(t *testing.T) {
	svc, _, db := newTicketService(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const workers = 8
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), 1, SubmitInput{
				NomorTicket: "TCK-RACE",
				OrderNo:     fmt.Sprintf("ORD-%d", i),
			})
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	// All submissions converge on a single group row.
	var groups int64
	require.NoError(t, db.Model(&model.NomorTicket{}).
		Where("nomor_ticket = ?", "TCK-RACE").Count(&groups).Error)
	assert.EqualValues(t, 1, groups)

	var group model.NomorTicket
	require.NoError(t, db.Where("nomor_ticket = ?", "TCK-RACE").First(&group).Error)
	var n int64
	require.NoError(t, db.Model(&model.Ticket{}).
		Where("nomor_ticket_id = ?", group.ID).Count(&n).Error)
	assert.EqualValues(t, workers, n)
}

func TestAddOrder_InheritsIdentityFields(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	orig, err := svc.Submit(ctx, 1, SubmitInput{
		NomorTicket:    "TCK-3",
		NamaNasabah:    "Siti",
		Email:          "siti@example.com",
		NIK:            "123",
		JenisPengaduan: "4",
	})
	require.NoError(t, err)

	added, err := svc.AddOrder(ctx, 2, orig.ID, AddOrderInput{
		OrderNo:            "ORD-2",
		DeskripsiPengaduan: "susulan",
		Tanggal:            "2026-08-01",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Siti", added.NamaNasabah)
	assert.Equal(t, "siti@example.com", added.Email)
	assert.Equal(t, "4", added.JenisPengaduan)
	assert.Equal(t, model.TicketStatusAktif, added.StatusTicket)
	assert.Equal(t, *orig.NomorTicketID, *added.NomorTicketID)
}

func TestAddOrder_ReopenStartsAtFive(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	orig, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-4"})
	require.NoError(t, err)

	added, err := svc.AddOrder(ctx, 1, orig.ID, AddOrderInput{
		OrderNo:            "ORD-R",
		DeskripsiPengaduan: "reopen susulan",
		Tanggal:            "2026-08-02",
	}, true)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusReopen, added.StatusTicket)
}

func TestAddOrder_RequiresDescriptionAndDate(t *testing.T) {
	svc, _, _ := newTicketService(t)
	_, err := svc.AddOrder(context.Background(), 1, 1, AddOrderInput{OrderNo: "X"}, false)
	assert.True(t, errs.IsValidation(err))
}

func TestUpdateStage_KeberatanNeedsDateAndDesc(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()
	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-5"})
	require.NoError(t, err)

	err = svc.UpdateStage(ctx, 1, ticket.ID, UpdateStageInput{
		StatusTicket: model.TicketStatusKeberatan,
		Tahapan:      "Investigasi",
	})
	assert.True(t, errs.IsValidation(err))

	err = svc.UpdateStage(ctx, 1, ticket.ID, UpdateStageInput{
		StatusTicket: model.TicketStatusKeberatan,
		Tahapan:      "Investigasi",
		Tahapan2Date: "2026-08-10",
		Tahapan2Desc: "nasabah keberatan",
	})
	require.NoError(t, err)

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-10 - nasabah keberatan", got.Tahapan2)
}

func TestUpdateStage_TutupNeedsFollowup(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()
	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-6"})
	require.NoError(t, err)

	err = svc.UpdateStage(ctx, 1, ticket.ID, UpdateStageInput{
		StatusTicket: model.TicketStatusTutup,
		Tahapan:      "Selesai",
	})
	assert.True(t, errs.IsValidation(err))

	err = svc.UpdateStage(ctx, 1, ticket.ID, UpdateStageInput{
		StatusTicket:     model.TicketStatusTutup,
		Tahapan:          "Selesai",
		Tahapan2Followup: "sudah dihubungi",
	})
	require.NoError(t, err)
}

func TestUpdateStage_AppendsHistory(t *testing.T) {
	svc, _, db := newTicketService(t)
	ctx := context.Background()
	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-7", OrderNo: "ORD-7"})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStage(ctx, 3, ticket.ID, UpdateStageInput{
		StatusTicket: model.TicketStatusPerpanjangan,
		Tahapan:      "Follow Up",
		OrderNo:      "ORD-7",
	}))

	var hist []model.History
	require.NoError(t, db.Find(&hist).Error)
	require.Len(t, hist, 1)
	assert.Equal(t, "TCK-7", hist[0].NomorTicket)
	assert.Equal(t, model.TicketStatusPerpanjangan, hist[0].StatusTicket)
	assert.Equal(t, uint(3), hist[0].CreateBy)
}

func TestUpdateStage_EscalationAssignsQC(t *testing.T) {
	svc, rec, db := newTicketService(t)
	ctx := context.Background()
	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-8"})
	require.NoError(t, err)

	qcID := uint(42)
	require.NoError(t, svc.UpdateStage(ctx, 1, ticket.ID, UpdateStageInput{
		StatusTicket: model.TicketStatusAktif,
		Tahapan:      model.TahapanEskalasiQC,
		IDQC:         &qcID,
	}))

	var group model.NomorTicket
	require.NoError(t, db.First(&group, *ticket.NomorTicketID).Error)
	require.NotNil(t, group.IDQC)
	assert.Equal(t, qcID, *group.IDQC)
	assert.Contains(t, rec.names(), kafka.EventGroupEscalated)
}

func TestUpdateStage_ReopenVariantRequiresTahapan(t *testing.T) {
	svc, _, _ := newTicketService(t)
	err := svc.UpdateStage(context.Background(), 1, 1, UpdateStageInput{
		StatusTicket:    model.TicketStatusAktif,
		TahapanRequired: true,
	})
	assert.True(t, errs.IsValidation(err))
}

func TestCloseGroup_CascadesToChildren(t *testing.T) {
	svc, rec, db := newTicketService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-10", OrderNo: "A"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-10", OrderNo: "B"})
	require.NoError(t, err)

	require.NoError(t, svc.CloseGroup(ctx, 1, *first.NomorTicketID))

	var group model.NomorTicket
	require.NoError(t, db.First(&group, *first.NomorTicketID).Error)
	require.NotNil(t, group.Status)
	assert.Equal(t, string(model.GroupStatusClose), *group.Status)

	var tickets []model.Ticket
	require.NoError(t, db.Where("nomor_ticket_id = ?", group.ID).Find(&tickets).Error)
	require.Len(t, tickets, 2)
	for _, tk := range tickets {
		assert.Equal(t, model.TicketStatusTutup, tk.StatusTicket)
	}
	assert.Contains(t, rec.names(), kafka.EventGroupClosed)
}

func TestReopenGroup_CascadesToChildren(t *testing.T) {
	svc, rec, db := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-11"})
	require.NoError(t, err)
	require.NoError(t, svc.CloseGroup(ctx, 1, *ticket.NomorTicketID))
	require.NoError(t, svc.ReopenGroup(ctx, 1, *ticket.NomorTicketID))

	var group model.NomorTicket
	require.NoError(t, db.First(&group, *ticket.NomorTicketID).Error)
	require.NotNil(t, group.Status)
	assert.Equal(t, string(model.GroupStatusReopen), *group.Status)

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusReopen, got.StatusTicket)
	assert.Contains(t, rec.names(), kafka.EventGroupReopened)
}

func TestCloseGroup_ChildFailureRollsBackGroupStatus(t *testing.T) {
	svc, _, db := newTicketService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-RB", OrderNo: "A"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-RB", OrderNo: "B"})
	require.NoError(t, err)

	// Force the child-ticket update inside the close transaction to fail.
	failErr := errors.New("forced ticket update failure")
	require.NoError(t, db.Callback().Update().Before("gorm:update").
		Register("fail_ticket_update", func(tx *gorm.DB) {
			if tx.Statement.Table == "tickets" {
				_ = tx.AddError(failErr)
			}
		}))
	err = svc.CloseGroup(ctx, 1, *first.NomorTicketID)
	require.ErrorIs(t, err, failErr)
	require.NoError(t, db.Callback().Update().Remove("fail_ticket_update"))

	// The group-status write that preceded the failure must not survive.
	var group model.NomorTicket
	require.NoError(t, db.First(&group, *first.NomorTicketID).Error)
	require.NotNil(t, group.Status)
	assert.Equal(t, string(model.GroupStatusAktif), *group.Status)

	var tickets []model.Ticket
	require.NoError(t, db.Where("nomor_ticket_id = ?", group.ID).Find(&tickets).Error)
	require.Len(t, tickets, 2)
	for _, tk := range tickets {
		assert.Equal(t, model.TicketStatusAktif, tk.StatusTicket)
	}
}

func TestCloseGroup_MissingGroup(t *testing.T) {
	svc, _, _ := newTicketService(t)
	err := svc.CloseGroup(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, errs.ErrGroupNotFound)
}

func TestQCFeedbackGroup_OnlyAssignedQC(t *testing.T) {
	svc, _, db := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-12"})
	require.NoError(t, err)
	qcID := uint(5)
	require.NoError(t, db.Model(&model.NomorTicket{}).
		Where("id = ?", *ticket.NomorTicketID).
		Update("id_qc", qcID).Error)

	err = svc.QCFeedbackGroup(ctx, 6, *ticket.NomorTicketID, "bukan QC saya", nil)
	assert.ErrorIs(t, err, errs.ErrGroupNotFound)

	require.NoError(t, svc.QCFeedbackGroup(ctx, qcID, *ticket.NomorTicketID, "sudah dicek", []string{"bukti.png"}))
	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "sudah dicek", got.DeskripsiQC)
	assert.Equal(t, "bukti.png", got.FileQC)
}

func TestGroupFollowUp_RewritesAllTickets(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	first, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-13", OrderNo: "A", JenisPengaduan: "1"})
	require.NoError(t, err)
	second, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-13", OrderNo: "B", JenisPengaduan: "1"})
	require.NoError(t, err)

	require.NoError(t, svc.GroupFollowUp(ctx, *first.NomorTicketID, GroupFollowUpInput{
		JenisPengaduan:  "9",
		DetailPengaduan: "Konfirmasi Pembayaran",
		Kronologis:      "transfer ganda",
		BuktiChat:       []string{"chat1.png", "chat2.png"},
	}))

	for _, id := range []uint{first.ID, second.ID} {
		got, err := svc.GetTicket(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "9", got.JenisPengaduan)
		assert.Equal(t, "chat1.png,chat2.png", got.BuktiChat)
	}
}

func TestDocuments_AttachAndRemove(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-14"})
	require.NoError(t, err)

	require.NoError(t, svc.AttachDocuments(ctx, ticket.ID, []string{"a.pdf", "b.pdf"}))
	require.NoError(t, svc.RemoveDocument(ctx, ticket.ID, "a.pdf"))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", got.Document)

	err = svc.RemoveDocument(ctx, ticket.ID, "missing.pdf")
	assert.ErrorIs(t, err, errs.ErrFileNotFound)
}

func TestAddKontak_Validation(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-15"})
	require.NoError(t, err)

	_, err = svc.AddKontak(ctx, ticket.ID, model.Kontak{NamaLengkap: "Andi"})
	assert.True(t, errs.IsValidation(err))

	k, err := svc.AddKontak(ctx, ticket.ID, model.Kontak{
		NamaLengkap: "Andi", NIK: "999", Phone: "0812",
	})
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, k.IDTicket)
}

func TestUpdateCatatan_StampsDate(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-16"})
	require.NoError(t, err)

	require.Error(t, svc.UpdateCatatan(ctx, ticket.ID, ""))
	require.NoError(t, svc.UpdateCatatan(ctx, ticket.ID, "catatan penting"))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "catatan penting", got.Catatan)
	assert.NotEmpty(t, got.TanggalCatatan)
}

func TestMarkCaseValid(t *testing.T) {
	svc, _, _ := newTicketService(t)
	ctx := context.Background()

	ticket, err := svc.Submit(ctx, 1, SubmitInput{NomorTicket: "TCK-17"})
	require.NoError(t, err)
	require.NoError(t, svc.MarkCaseValid(ctx, ticket.ID))

	got, err := svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "valid", got.StatusCase)
}
