// Package labels is the single lookup table for the fixed categorical codes
// used across handlers, import/export and charts.
package labels

// JenisPengaduan maps complaint-type codes to their display labels.
var JenisPengaduan = map[int]string{
	1:  "Informasi Pengajuan",
	2:  "Permintaan Kode OTP",
	3:  "Informasi Tenor",
	4:  "Informasi Tagihan",
	5:  "Informasi Denda",
	6:  "Pembatalan Pinjaman",
	7:  "Informasi Pencairan Dana",
	8:  "Perilaku Petugas Penagihan",
	9:  "Informasi Pembayaran",
	10: "Discount / Pemutihan",
}

// DetailPengaduan lists the detail options per complaint-type code.
var DetailPengaduan = map[int][]string{
	1: {
		"Hasil Pengajuan",
		"Pengajuan Ditolak",
		"Status Pengajuan sedang ditransfer",
		"Tidak bisa pengajuan ulang karena keterlambatan",
		"Verifikasi Bank gagal",
		"Verifikasi KTP gagal",
		"Cara pengajuan",
		"Perubahan Nomor Handphone",
		"Perubahan Nomor Rekening",
	},
	2: {
		"OTP Limit",
		"Tidak terima SMS OTP",
	},
	3: {
		"Informasi Pinjaman",
	},
	4: {
		"Konsultasi detail pinjaman saat ini",
		"Konsultasi Perpanjangan",
		"Bukti Transfer",
	},
	5: {
		"Denda Keterlambatan",
	},
	6: {
		"Hapus Data (Penutupan Akun)",
		"Pembatalan Pinjaman",
	},
	7: {
		"Pencairan dana berhasil",
		"Status pencairan dana gagal",
		"Status pengajuan pencairan dana ulang",
		"Tidak terima dana",
		"Operasi Gagal (tidak bisa verifikasi wajah dan KTP)",
	},
	8: {
		"Keluhan Penagihan",
		"Keluhan Reminder",
		"Penipuan",
	},
	9: {
		"Konfirmasi Pembayaran",
		"Pembayaran belum masuk",
		"Pembayaran bukan ke VA UATAS",
		"Refund (pembayaran double)",
		"Meminta VA (cicilan)",
		"Meminta VA (pelunasan)",
		"Meminta VA (perpanjangan)",
		"Tidak bisa ambil VA",
	},
	10: {
		"Meminta keringanan pembayaran (cicilan)",
		"Meminta keringanan pembayaran (potongan denda)",
		"Tidak ada dana",
	},
}

// StatusTicket maps the legacy ticket status codes to display labels.
var StatusTicket = map[string]string{
	"1": "Aktif",
	"2": "Perpanjangan",
	"3": "Keberatan",
	"4": "Tutup",
	"5": "Reopen",
}

// jenisByLabel is the reverse of JenisPengaduan, used by the Excel import.
var jenisByLabel = func() map[string]int {
	m := make(map[string]int, len(JenisPengaduan))
	for code, label := range JenisPengaduan {
		m[label] = code
	}
	return m
}()

// JenisCode resolves a complaint-type label to its numeric code.
func JenisCode(label string) (int, bool) {
	code, ok := jenisByLabel[label]
	return code, ok
}

// ChartPalette is the fixed color cycle used by dashboard charts.
var ChartPalette = []string{
	"#1E90FF", "#28a745", "#ffc107", "#dc3545", "#6f42c1",
	"#20c997", "#fd7e14", "#6610f2", "#17a2b8", "#343a40",
}

// KanalPalette is the color cycle used by the channel chart.
var KanalPalette = []string{
	"#3081D0", "#FF6768", "#00C49F", "#FFBB28", "#AF7AC5",
	"#2ECC71", "#F39C12", "#E74C3C", "#17A589", "#5D6D7E",
}

// Colors returns one palette color per label, cycling by index.
func Colors(palette []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = palette[i%len(palette)]
	}
	return out
}
