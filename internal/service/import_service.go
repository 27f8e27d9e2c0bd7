package service

import (
	"context"
	"strconv"
	"time"

	"github.com/uatas-cs/complaint-service/internal/excel"
	"github.com/uatas-cs/complaint-service/internal/model"
	"gorm.io/gorm"
)

// ImportResult summarizes one bulk import run.
type ImportResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ImportRows persists parsed template rows in a single transaction. Rows
// whose order_no duplicates an existing ticket or an earlier row are skipped;
// any error rolls back the whole run.
func (s *TicketService) ImportRows(ctx context.Context, actorID uint, rows []excel.ImportRow) (ImportResult, error) {
	var res ImportResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&model.Ticket{}).
			Where("order_no IS NOT NULL AND order_no <> ''").
			Pluck("order_no", &existing).Error; err != nil {
			return err
		}
		seen := make(map[string]bool, len(existing))
		for _, o := range existing {
			seen[o] = true
		}

		for _, row := range rows {
			if row.OrderNo == "" || seen[row.OrderNo] {
				res.Skipped++
				continue
			}
			seen[row.OrderNo] = true

			group, err := s.GetOrCreateGroup(ctx, tx, row.NomorTicket)
			if err != nil {
				return err
			}

			tanggal := row.Tanggal
			if tanggal.IsZero() {
				tanggal = time.Now().UTC()
			}
			ticket := model.Ticket{
				KanalPengaduan:  row.KanalPengaduan,
				Tanggal:         tanggal,
				NamaNasabah:     row.NamaNasabah,
				JenisPengaduan:  strconv.Itoa(row.JenisPengaduan),
				DetailPengaduan: row.DetailPengaduan,
				OrderNo:         row.OrderNo,
				NamaOS:          cleanOSName(row.OS),
				NamaDC:          row.DC,
				NamaBucket:      cleanBucketName(row.Bucket),
				InputBy:         &actorID,
				SLA:             model.DefaultSLA,
				StatusTicket:    model.TicketStatusAktif,
				CreatedTime:     time.Now().UTC(),
				NomorTicketID:   &group.ID,
			}
			if err := tx.Create(&ticket).Error; err != nil {
				return err
			}
			res.Inserted++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}
