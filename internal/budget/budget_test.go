package budget

import (
	"math"
	"testing"
	"time"

	"github.com/Spok95/sekretariat/internal/apperr"
	"github.com/Spok95/sekretariat/internal/models"
)

func TestSubtotal(t *testing.T) {
	if got := Subtotal(3, 50000, 2, 1); got != 300000 {
		t.Fatalf("want 300000, got %d", got)
	}
	for q := int64(1); q <= 4; q++ {
		for p := int64(1000); p <= 3000; p += 1000 {
			if got := Subtotal(q, p, 2, 3); got != q*p*6 {
				t.Fatalf("Subtotal(%d,%d,2,3)=%d", q, p, got)
			}
		}
	}
}

func TestAllocation_SkipsDeleted(t *testing.T) {
	items := []models.LineItem{
		{Subtotal: 100},
		{Subtotal: 50, Deleted: models.DeletedAt(time.Now())},
		{Subtotal: 25},
	}
	got, err := Allocation(items)
	if err != nil || got != 125 {
		t.Fatalf("want 125, got %d (%v)", got, err)
	}
}

func TestAllocation_AfterDelete(t *testing.T) {
	items := []models.LineItem{{ID: 1, Subtotal: 40000}, {ID: 2, Subtotal: 60000}, {ID: 3, Subtotal: 5000}}
	before, _ := Allocation(items)
	items[1].Deleted = models.DeletedAt(time.Now())
	after, _ := Allocation(items)
	if before != 105000 || after != 45000 {
		t.Fatalf("before %d after %d", before, after)
	}
}

func TestSummarize(t *testing.T) {
	acts := []models.CategoryActivity{
		{Category: models.CatKurikulum, Allocation: 100},
		{Category: models.CatKurikulum, Allocation: 200},
		{Category: models.CatSeniOR, Allocation: 50},
		{Category: models.CatSeniOR, Allocation: 999, Deleted: models.DeletedAt(time.Now())},
		{Category: "PRAMUKA", Allocation: 10},
	}
	s, err := Summarize(2025, acts)
	if err != nil {
		t.Fatal(err)
	}

	if s.ActivityCount != 4 || s.CategoryCount != 3 {
		t.Fatalf("counts: activities %d categories %d", s.ActivityCount, s.CategoryCount)
	}
	var sum int64
	for _, c := range s.Categories {
		sum += c.Total
	}
	if s.GrandTotal != sum || s.GrandTotal != 360 {
		t.Fatalf("grand total %d, sum of categories %d", s.GrandTotal, sum)
	}
	if s.Categories[0].Category != models.CatKurikulum || s.Categories[0].Total != 300 || s.Categories[0].Activities != 2 {
		t.Fatalf("kurikulum: %+v", s.Categories[0])
	}
	if s.Categories[1].Label != "Seni & Olahraga" || s.Categories[1].Total != 50 {
		t.Fatalf("seni: %+v", s.Categories[1])
	}
	if s.Categories[2].Label != "PRAMUKA" {
		t.Fatalf("unknown code must fall back to raw label, got %q", s.Categories[2].Label)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s, err := Summarize(2024, nil)
	if err != nil || s.GrandTotal != 0 || s.CategoryCount != 0 || s.ActivityCount != 0 || s.Categories == nil {
		t.Fatalf("unexpected %+v", s)
	}
}

func TestValidate(t *testing.T) {
	if err := ValidateLineItem(models.LineItem{Name: "Konsumsi", Quantity: 1, UnitPrice: 1, Days: 0, Frequency: 1}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("zero days must be rejected, got %v", err)
	}
	a := models.CategoryActivity{Name: "Class meeting", Category: models.CatSeniOR, Month: 6, Progress: 101}
	if err := ValidateActivity(a); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("progress 101 must be rejected, got %v", err)
	}
	a.Progress = 100
	if err := ValidateActivity(a); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestCheckedSubtotal(t *testing.T) {
	cases := []struct {
		name       string
		q, p, d, f int64
		want       int64
		ok         bool
	}{
		{"plain", 3, 50000, 2, 1, 300000, true},
		{"exactly max", math.MaxInt64, 1, 1, 1, math.MaxInt64, true},
		{"wraps to zero", 1 << 20, 1 << 20, 1 << 20, 1 << 4, 0, false},
		{"just past max", 1 << 31, 1 << 31, 2, 1, 0, false},
		{"past uint64", math.MaxInt64, math.MaxInt64, 1, 1, 0, false},
		{"zero", 0, 10, 1, 1, 0, false},
		{"negative", -2, 10, 1, 1, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := CheckedSubtotal(tc.q, tc.p, tc.d, tc.f)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("CheckedSubtotal(%d,%d,%d,%d) = %d, %v; want %d, %v", tc.q, tc.p, tc.d, tc.f, got, ok, tc.want, tc.ok)
			}
			if ok && got != Subtotal(tc.q, tc.p, tc.d, tc.f) {
				t.Fatalf("checked and plain subtotal differ: %d vs %d", got, Subtotal(tc.q, tc.p, tc.d, tc.f))
			}
		})
	}
}

func TestValidateLineItem_RejectsOverflow(t *testing.T) {
	it := models.LineItem{Name: "Sewa gedung", Quantity: 1 << 20, UnitPrice: 1 << 20, Days: 1 << 20, Frequency: 1 << 4}
	if err := ValidateLineItem(it); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("overflowing subtotal must be rejected, got %v", err)
	}
	it.Frequency = 1
	if err := ValidateLineItem(it); err != nil {
		t.Fatalf("2^60 fits in int64, got %v", err)
	}
}

func TestAllocation_Overflow(t *testing.T) {
	items := []models.LineItem{
		{Subtotal: math.MaxInt64 - 10},
		{Subtotal: 5, Deleted: models.DeletedAt(time.Now())},
		{Subtotal: 10},
	}
	got, err := Allocation(items)
	if err != nil || got != math.MaxInt64 {
		t.Fatalf("want MaxInt64, got %d (%v)", got, err)
	}
	items = append(items, models.LineItem{Subtotal: 1})
	if _, err := Allocation(items); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("sum past int64 must be rejected, got %v", err)
	}
}

func TestSummarize_Overflow(t *testing.T) {
	acts := []models.CategoryActivity{
		{Category: models.CatKurikulum, Allocation: math.MaxInt64},
		{Category: models.CatSosial, Allocation: 1},
	}
	if _, err := Summarize(2025, acts); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("grand total past int64 must be reported, got %v", err)
	}
	acts[1].Deleted = models.DeletedAt(time.Now())
	s, err := Summarize(2025, acts)
	if err != nil || s.GrandTotal != math.MaxInt64 {
		t.Fatalf("deleted activity must not count: %d (%v)", s.GrandTotal, err)
	}
}
