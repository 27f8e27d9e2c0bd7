package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uatas-cs/complaint-service/internal/errs"
	"github.com/uatas-cs/complaint-service/internal/model"
	"github.com/xuri/excelize/v2"
)

func buildImportFile(t *testing.T, header []string, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, f.SetCellValue("Sheet1", cell, h))
	}
	for r, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, r+2)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestParseImport_HappyPath(t *testing.T) {
	buf := buildImportFile(t, ImportColumns, [][]string{
		{"Email", "TCK-1", "2026-08-01", "Budi", "Informasi Denda", "Denda Keterlambatan", "ORD-1", "Alpha", "DC1", "B1"},
		{"", "", "", "", "", "", "", "", "", ""},
		{"WhatsApp", "TCK-2", "", "Siti", "Informasi Pengajuan", "Cara pengajuan", "ORD-2", "", "", ""},
	})

	rows, err := ParseImport(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].RowNum)
	assert.Equal(t, "TCK-1", rows[0].NomorTicket)
	assert.Equal(t, 5, rows[0].JenisPengaduan)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), rows[0].Tanggal)
	assert.Equal(t, "ORD-1", rows[0].OrderNo)

	assert.Equal(t, 1, rows[1].JenisPengaduan)
	assert.False(t, rows[1].Tanggal.IsZero())
}

func TestParseImport_BadHeader(t *testing.T) {
	buf := buildImportFile(t, []string{"kolom_salah"}, nil)
	_, err := ParseImport(buf)
	assert.ErrorIs(t, err, errs.ErrImportBadColumns)
}

func TestParseImport_UnknownJenisFailsWholeFile(t *testing.T) {
	buf := buildImportFile(t, ImportColumns, [][]string{
		{"Email", "TCK-1", "2026-08-01", "Budi", "Informasi Denda", "", "ORD-1", "", "", ""},
		{"Email", "TCK-2", "2026-08-01", "Siti", "Jenis Palsu", "", "ORD-2", "", "", ""},
	})
	_, err := ParseImport(buf)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "baris 3")
}

func TestParseImport_BadDate(t *testing.T) {
	buf := buildImportFile(t, ImportColumns, [][]string{
		{"Email", "TCK-1", "bukan tanggal", "Budi", "Informasi Denda", "", "ORD-1", "", "", ""},
	})
	_, err := ParseImport(buf)
	assert.True(t, errs.IsValidation(err))
}

func TestExport_RendersLabelsAndLinks(t *testing.T) {
	nomor := model.NomorTicket{NomorTicket: "TCK-99"}
	os := "Alpha"
	tickets := []model.Ticket{{
		KanalPengaduan: "Email",
		Tanggal:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		NamaNasabah:    "Budi",
		JenisPengaduan: "5",
		StatusTicket:   "4",
		NamaOS:         &os,
		BuktiChat:      "chat1.png,chat2.png",
		NomorTicket:    &nomor,
	}}

	buf, err := Export(tickets, "http://localhost:8080")
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Channel", rows[0][0])

	row := rows[1]
	assert.Equal(t, "Email", row[0])
	assert.Equal(t, "2026-08-01", row[1])
	assert.Equal(t, "TCK-99", row[2])
	assert.Equal(t, "Informasi Denda", row[7])
	assert.Equal(t, "Tutup", row[10])
	assert.Equal(t, "Alpha", row[12])
	assert.Contains(t, row[14], "http://localhost:8080/static/uploads/chat1.png")
}
