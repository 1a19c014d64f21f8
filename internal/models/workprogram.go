package models

import "time"

type Category string

const (
	CatPengurusInti  Category = "PENGURUS_INTI"
	CatKurikulum     Category = "KURIKULUM"
	CatKeagamaan     Category = "KEAGAMAAN"
	CatSeniOR        Category = "SENI_OR"
	CatHumas         Category = "HUMAS"
	CatKewirausahaan Category = "KEWIRAUSAHAAN"
	CatLingkungan    Category = "LINGKUNGAN"
	CatKesehatan     Category = "KESEHATAN"
	CatTeknologi     Category = "TEKNOLOGI"
	CatKedisiplinan  Category = "KEDISIPLINAN"
	CatSosial        Category = "SOSIAL"
)

// Categories keeps the department order used in reports.
var Categories = []Category{
	CatPengurusInti, CatKurikulum, CatKeagamaan, CatSeniOR, CatHumas, CatKewirausahaan,
	CatLingkungan, CatKesehatan, CatTeknologi, CatKedisiplinan, CatSosial,
}

var categoryLabels = map[Category]string{
	CatPengurusInti:  "Pengurus Inti",
	CatKurikulum:     "Kurikulum",
	CatKeagamaan:     "Keagamaan",
	CatSeniOR:        "Seni & Olahraga",
	CatHumas:         "Hubungan Masyarakat",
	CatKewirausahaan: "Kewirausahaan",
	CatLingkungan:    "Lingkungan Hidup",
	CatKesehatan:     "Kesehatan",
	CatTeknologi:     "Teknologi & Informasi",
	CatKedisiplinan:  "Kedisiplinan",
	CatSosial:        "Sosial Kemasyarakatan",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label falls back to the raw code for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

type WorkProgramYear struct {
	ID        int64     `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CategoryActivity is a planned action of a department in a given month.
// Allocation is always the sum of its live line items' subtotals.
type CategoryActivity struct {
	ID         int64     `db:"id" json:"id"`
	YearID     int64     `db:"year_id" json:"year_id"`
	Category   Category  `db:"category" json:"category"`
	Month      int       `db:"month" json:"month"`
	Name       string    `db:"name" json:"name"`
	Purpose    string    `db:"purpose" json:"purpose"`
	Progress   int       `db:"progress" json:"progress"`
	Allocation int64     `db:"allocation" json:"allocation"`
	Deleted    Lifecycle `db:"deleted_at" json:"deleted_at"`
}

type LineItem struct {
	ID         int64     `db:"id" json:"id"`
	ActivityID int64     `db:"activity_id" json:"activity_id"`
	Name       string    `db:"name" json:"name"`
	Unit       string    `db:"unit" json:"unit"`
	Quantity   int64     `db:"quantity" json:"quantity"`
	UnitPrice  int64     `db:"unit_price" json:"unit_price"`
	Days       int64     `db:"days" json:"days"`
	Frequency  int64     `db:"frequency" json:"frequency"`
	Subtotal   int64     `db:"subtotal" json:"subtotal"`
	Deleted    Lifecycle `db:"deleted_at" json:"deleted_at"`
}
