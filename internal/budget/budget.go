// Package budget keeps line item, activity and year totals of the work programme consistent.
package budget

import (
	"math"
	"math/bits"
	"sort"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/models"
)

// Subtotal does not clamp or detect overflow; stores use CheckedSubtotal.
func Subtotal(quantity, unitPrice, days, frequency int64) int64 {
	return quantity * unitPrice * days * frequency
}

// CheckedSubtotal is Subtotal for positive inputs; ok is false when the
// product does not fit in int64.
func CheckedSubtotal(quantity, unitPrice, days, frequency int64) (int64, bool) {
	acc := uint64(1)
	for _, v := range [...]int64{quantity, unitPrice, days, frequency} {
		if v <= 0 {
			return 0, false
		}
		hi, lo := bits.Mul64(acc, uint64(v))
		if hi != 0 || lo > math.MaxInt64 {
			return 0, false
		}
		acc = lo
	}
	return int64(acc), true
}

func ValidateLineItem(it models.LineItem) error {
	if it.Name == "" {
		return apperr.Validation("nama rincian wajib diisi")
	}
	if it.Quantity <= 0 || it.UnitPrice <= 0 || it.Days <= 0 || it.Frequency <= 0 {
		return apperr.Validation("jumlah, harga satuan, hari dan frekuensi harus lebih dari nol")
	}
	if _, ok := CheckedSubtotal(it.Quantity, it.UnitPrice, it.Days, it.Frequency); !ok {
		return apperr.Validation("subtotal rincian melebihi batas yang dapat disimpan")
	}
	return nil
}

func ValidateActivity(a models.CategoryActivity) error {
	if a.Name == "" {
		return apperr.Validation("nama kegiatan wajib diisi")
	}
	if !a.Category.Valid() {
		return apperr.Validation("kategori %q tidak dikenal", a.Category)
	}
	if a.Month < 1 || a.Month > 12 {
		return apperr.Validation("bulan harus 1-12")
	}
	if a.Progress < 0 || a.Progress > 100 {
		return apperr.Validation("progres harus 0-100%%")
	}
	return nil
}

// Allocation sums the subtotals of live line items. A sum past int64 is a
// validation error: the item that pushed it over is not stored.
func Allocation(items []models.LineItem) (int64, error) {
	var sum int64
	for _, it := range items {
		if it.Deleted.IsDeleted() {
			continue
		}
		if it.Subtotal < 0 || sum > math.MaxInt64-it.Subtotal {
			return 0, apperr.Validation("total anggaran kegiatan melebihi batas yang dapat disimpan")
		}
		sum += it.Subtotal
	}
	return sum, nil
}

type CategoryTotal struct {
	Category   models.Category `json:"category"`
	Label      string          `json:"label"`
	Activities int             `json:"activities"`
	Total      int64           `json:"total"`
}

type Summary struct {
	Year          int             `json:"year"`
	Categories    []CategoryTotal `json:"categories"`
	GrandTotal    int64           `json:"grand_total"`
	CategoryCount int             `json:"category_count"`
	ActivityCount int             `json:"activity_count"`
}

// Summarize groups live activities by category. Known categories keep the
// department order; unknown codes follow alphabetically. A grand total past
// int64 is reported instead of wrapped.
func Summarize(year int, activities []models.CategoryActivity) (Summary, error) {
	byCat := map[models.Category]*CategoryTotal{}
	s := Summary{Year: year, Categories: []CategoryTotal{}}
	for _, a := range activities {
		if a.Deleted.IsDeleted() {
			continue
		}
		ct, ok := byCat[a.Category]
		if !ok {
			ct = &CategoryTotal{Category: a.Category, Label: a.Category.Label()}
			byCat[a.Category] = ct
		}
		if a.Allocation < 0 || s.GrandTotal > math.MaxInt64-a.Allocation {
			return Summary{}, apperr.Conflict("total anggaran tahun %d melebihi batas yang dapat dihitung", year)
		}
		ct.Activities++
		ct.Total += a.Allocation
		s.ActivityCount++
		s.GrandTotal += a.Allocation
	}

	for _, c := range models.Categories {
		if ct, ok := byCat[c]; ok {
			s.Categories = append(s.Categories, *ct)
			delete(byCat, c)
		}
	}
	var unknown []CategoryTotal
	for _, ct := range byCat {
		unknown = append(unknown, *ct)
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i].Category < unknown[j].Category })
	s.Categories = append(s.Categories, unknown...)
	s.CategoryCount = len(s.Categories)
	return s, nil
}
