package model

import "time"

// GroupStatus is the lifecycle state of a NomorTicket group. A NULL or empty
// status in the database means the group is still active.
type GroupStatus string

const (
	GroupStatusAktif  GroupStatus = "aktif"
	GroupStatusReopen GroupStatus = "reopen"
	GroupStatusClose  GroupStatus = "close"
)

// Ticket statuses are stored as the legacy string codes "1".."5".
const (
	TicketStatusAktif        = "1"
	TicketStatusPerpanjangan = "2"
	TicketStatusKeberatan    = "3"
	TicketStatusTutup        = "4"
	TicketStatusReopen       = "5"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleQC    = "qc"
)

// DefaultSLA is the "days remaining" budget a new ticket starts with.
const DefaultSLA = 10

// TahapanEskalasiQC is the stage label that hands a group to a QC reviewer.
const TahapanEskalasiQC = "Eskalasi ke QC"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email    string `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	Phone    string `gorm:"type:varchar(20);not null" json:"phone"`
	Password string `gorm:"type:varchar(200);not null" json:"-"`
	Role     string `gorm:"type:varchar(10);default:staff" json:"role"`
}

// NomorTicket groups the complaint records filed under one customer-facing
// ticket number. Groups are never deleted.
type NomorTicket struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	NomorTicket string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"nomor_ticket"`
	Status      *string `gorm:"type:varchar(20)" json:"status"`
	IDQC        *uint   `gorm:"column:id_qc" json:"id_qc"`

	Tickets []Ticket `gorm:"foreignKey:NomorTicketID" json:"tickets,omitempty"`
}

func (NomorTicket) TableName() string { return "nomor_ticket" }

// IsActive reports whether the group is still in the active flow.
func (n *NomorTicket) IsActive() bool {
	return n.Status == nil || (*n.Status != string(GroupStatusClose) && *n.Status != string(GroupStatusReopen))
}

// Ticket is one logged complaint (one order) inside a NomorTicket group.
// NomorTicketID is immutable once set.
type Ticket struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	KanalPengaduan     string    `gorm:"type:varchar(100)" json:"kanal_pengaduan"`
	KategoriPengaduan  string    `gorm:"type:varchar(100)" json:"kategori_pengaduan"`
	JenisPengaduan     string    `gorm:"type:varchar(100);index" json:"jenis_pengaduan"`
	DetailPengaduan    string    `gorm:"type:text" json:"detail_pengaduan"`
	Tanggal            time.Time `json:"tanggal"`
	NamaNasabah        string    `gorm:"type:varchar(150);index" json:"nama_nasabah"`
	Email              string    `gorm:"type:varchar(150)" json:"email"`
	NomorUtama         string    `gorm:"type:varchar(50)" json:"nomor_utama"`
	NomorKontak        string    `gorm:"type:varchar(50)" json:"nomor_kontak"`
	NIK                string    `gorm:"type:varchar(50)" json:"nik"`
	OrderNo            string    `gorm:"type:varchar(100);index" json:"order_no"`
	DeskripsiPengaduan string    `gorm:"type:varchar(1000)" json:"deskripsi_pengaduan"`

	InputBy *uint `gorm:"column:input_by" json:"input_by"`
	User    *User `gorm:"foreignKey:InputBy" json:"-"`

	StatusTicket      string  `gorm:"type:varchar(50);default:1;index" json:"status_ticket"`
	SLA               int     `gorm:"column:sla;default:10" json:"sla"`
	HasilTindak       string  `gorm:"type:text" json:"hasil_tindak"`
	HasilFeedback     string  `gorm:"type:text" json:"hasil_feedback"`
	KonfirmasiNasabah string  `gorm:"type:text" json:"konfirmasi_nasabah"`
	Notes             string  `gorm:"type:text" json:"notes"`
	NamaDC            string  `gorm:"column:nama_dc;type:varchar(100)" json:"nama_dc"`
	NamaOS            *string `gorm:"column:nama_os;type:varchar(100)" json:"nama_os"`
	NamaBucket        *string `gorm:"type:varchar(100)" json:"nama_bucket"`
	Punishment        string  `gorm:"type:text" json:"punishment"`
	HasilPunishment   string  `gorm:"type:text" json:"hasil_punishment"`
	BuktiChat         string  `gorm:"type:varchar(300)" json:"bukti_chat"`
	Tahapan           string  `gorm:"type:varchar(100);index" json:"tahapan"`
	Tahapan2          string  `gorm:"column:tahapan_2;type:varchar(100)" json:"tahapan_2"`

	CreatedTime    time.Time `gorm:"index" json:"created_time"`
	Kronologis     string    `gorm:"type:text" json:"kronologis"`
	StatusCase     string    `gorm:"type:varchar(50);index" json:"status_case"`
	Document       string    `gorm:"type:text" json:"document"`
	Catatan        string    `gorm:"type:text" json:"catatan"`
	TanggalCatatan string    `gorm:"type:varchar(10)" json:"tanggal_catatan"`
	DeskripsiQC    string    `gorm:"column:deskripsi_qc;type:text" json:"deskripsi_qc"`
	FileQC         string    `gorm:"column:file_qc;type:varchar(300)" json:"file_qc"`

	NomorTicketID *uint        `gorm:"index" json:"nomor_ticket_id"`
	NomorTicket   *NomorTicket `gorm:"foreignKey:NomorTicketID" json:"nomor_ticket,omitempty"`
}

// Kontak is an extra contact attached to a ticket by staff.
type Kontak struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	NamaLengkap string `gorm:"type:varchar(150);not null" json:"nama_lengkap"`
	NIK         string `gorm:"type:varchar(50);not null" json:"nik"`
	Phone       string `gorm:"type:varchar(50);not null" json:"phone"`
	Phone2      string `gorm:"column:phone_2;type:varchar(50)" json:"phone_2"`
	Email       string `gorm:"type:varchar(150)" json:"email"`
	IDTicket    uint   `gorm:"column:id_ticket;not null;index" json:"id_ticket"`

	Ticket *Ticket `gorm:"foreignKey:IDTicket" json:"-"`
}

func (Kontak) TableName() string { return "kontak" }

// History is the append-only audit trail of lifecycle transitions.
// Rows are never updated or deleted.
type History struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	NomorTicket  string    `gorm:"type:varchar(100);not null" json:"nomor_ticket"`
	Tanggal      time.Time `gorm:"not null;index" json:"tanggal"`
	OrderNumber  string    `gorm:"type:varchar(100)" json:"order_number"`
	StatusTicket string    `gorm:"type:varchar(50)" json:"status_ticket"`
	Tahapan      string    `gorm:"type:varchar(100)" json:"tahapan"`
	NamaOS       string    `gorm:"column:nama_os;type:varchar(100)" json:"nama_os"`
	Catatan      string    `gorm:"type:varchar(100)" json:"catatan"`
	CreateBy     uint      `gorm:"column:create_by;not null" json:"create_by"`

	User *User `gorm:"foreignKey:CreateBy" json:"-"`
}

func (History) TableName() string { return "history" }
