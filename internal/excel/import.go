// Package excel reads and writes the xlsx files the dashboard exchanges with
// staff: bulk complaint imports and date-range exports.
package excel

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/uatas-cs/complaint-service/internal/errs"
	"github.com/uatas-cs/complaint-service/internal/labels"
	"github.com/xuri/excelize/v2"
)

// ImportColumns is the fixed header contract of the import template.
var ImportColumns = []string{
	"kanal_pengaduan", "nomor_ticket", "tanggal", "nama_nasabah", "tipe_pengaduan",
	"detail_pengaduan", "order_no", "os", "dc", "bucket",
}

// ImportRow is one parsed template row.
type ImportRow struct {
	// RowNum is the 1-based spreadsheet row, for error messages.
	RowNum          int
	KanalPengaduan  string
	NomorTicket     string
	Tanggal         time.Time
	NamaNasabah     string
	JenisPengaduan  int
	DetailPengaduan string
	OrderNo         string
	OS              string
	DC              string
	Bucket          string
}

// ParseImport reads the first sheet, validates the header contract and maps
// complaint-type labels to their codes. An unrecognized label fails the whole
// parse with the offending row number.
func ParseImport(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errs.ErrImportBadColumns
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errs.ErrImportBadColumns
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}
	for _, want := range ImportColumns {
		if _, ok := colIdx[want]; !ok {
			return nil, errs.ErrImportBadColumns
		}
	}

	cell := func(row []string, col string) string {
		i := colIdx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []ImportRow
	for i, row := range rows[1:] {
		rowNum := i + 2
		orderNo := cell(row, "order_no")
		if orderNo == "" && rowIsEmpty(row) {
			continue
		}

		tipe := cell(row, "tipe_pengaduan")
		code, ok := labels.JenisCode(tipe)
		if !ok {
			return nil, errs.Validation(fmt.Sprintf("jenis pengaduan tidak valid di baris %d: %q", rowNum, tipe))
		}

		tanggal := time.Now().UTC()
		if raw := cell(row, "tanggal"); raw != "" {
			t, err := parseCellDate(raw)
			if err != nil {
				return nil, errs.Validation(fmt.Sprintf("tanggal tidak valid di baris %d: %q", rowNum, raw))
			}
			tanggal = t
		}

		out = append(out, ImportRow{
			RowNum:          rowNum,
			KanalPengaduan:  cell(row, "kanal_pengaduan"),
			NomorTicket:     cell(row, "nomor_ticket"),
			Tanggal:         tanggal,
			NamaNasabah:     cell(row, "nama_nasabah"),
			JenisPengaduan:  code,
			DetailPengaduan: cell(row, "detail_pengaduan"),
			OrderNo:         orderNo,
			OS:              cell(row, "os"),
			DC:              cell(row, "dc"),
			Bucket:          cell(row, "bucket"),
		})
	}
	return out, nil
}

func rowIsEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseCellDate accepts ISO dates plus the formats excelize renders date
// cells as.
func parseCellDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "01-02-06", "1/2/06 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
