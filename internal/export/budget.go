package export

import (
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/sekretariat/internal/budget"
	"github.com/Spok95/sekretariat/internal/models"
)

const (
	SheetBudgetSummary    = "Ringkasan"
	SheetBudgetActivities = "Kegiatan"
)

// BudgetWorkbook renders a year summary per category and the live activities behind it.
func BudgetWorkbook(s budget.Summary, activities []models.CategoryActivity) (*excelize.File, error) {
	cats := make([][]any, 0, len(s.Categories)+1)
	for _, c := range s.Categories {
		cats = append(cats, []any{c.Label, string(c.Category), c.Activities, c.Total})
	}
	cats = append(cats, []any{"Total", "", s.ActivityCount, s.GrandTotal})

	acts := make([][]any, 0, len(activities))
	for _, a := range activities {
		if a.Deleted.IsDeleted() {
			continue
		}
		acts = append(acts, []any{
			a.Category.Label(), monthName(a.Month), a.Name, a.Purpose, a.Progress, a.Allocation,
		})
	}

	f, err := NewWorkbook([]SheetSpec{
		{
			Title:  SheetBudgetSummary,
			Header: []string{"Bidang", "Kode", "Jumlah Kegiatan", "Total Anggaran"},
			Rows:   cats,
		},
		{
			Title:  SheetBudgetActivities,
			Header: []string{"Bidang", "Bulan", "Kegiatan", "Tujuan", "Progres (%)", "Anggaran"},
			Rows:   acts,
		},
	})
	if err != nil {
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{NumFmt: 3}); err == nil {
		_ = f.SetColStyle(SheetBudgetSummary, "D", style)
		_ = f.SetColStyle(SheetBudgetActivities, "F", style)
	}
	return f, nil
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return strconv.Itoa(m)
	}
	return monthNames[m-1]
}
