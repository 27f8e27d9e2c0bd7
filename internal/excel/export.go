package excel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/uatas-cs/complaint-service/internal/labels"
	"github.com/uatas-cs/complaint-service/internal/model"
	"github.com/uatas-cs/complaint-service/internal/storage"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Channel", "Tanggal", "No Ticket", "Name", "Customer Phone Number", "Email",
	"NIK", "Tipe Pengaduan", "Detail Pengaduan", "Deskripsi Pengaduan",
	"Status Ticket", "DC", "OS", "Bucket", "Screenshoot Chat",
}

// Export renders tickets to an xlsx workbook. baseURL prefixes attachment
// filenames into downloadable links.
func Export(tickets []model.Ticket, baseURL string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Tickets"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, t := range tickets {
		statusLabel := t.StatusTicket
		if l, ok := labels.StatusTicket[t.StatusTicket]; ok {
			statusLabel = l
		}
		jenisLabel := t.JenisPengaduan
		if code, err := strconv.Atoi(t.JenisPengaduan); err == nil {
			if l, ok := labels.JenisPengaduan[code]; ok {
				jenisLabel = l
			}
		}
		var nomor string
		if t.NomorTicket != nil {
			nomor = t.NomorTicket.NomorTicket
		}
		var links []string
		for _, name := range storage.SplitList(t.BuktiChat) {
			links = append(links, baseURL+"/static/uploads/"+name)
		}
		row := []interface{}{
			t.KanalPengaduan,
			t.Tanggal.Format("2006-01-02"),
			nomor,
			t.NamaNasabah,
			t.NomorUtama,
			t.Email,
			t.NIK,
			jenisLabel,
			t.DetailPengaduan,
			t.DeskripsiPengaduan,
			statusLabel,
			t.NamaDC,
			deref(t.NamaOS),
			deref(t.NamaBucket),
			strings.Join(links, ", "),
		}
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return &buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
