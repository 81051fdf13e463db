package charts

import (
	"bytes"
	"testing"

	"teto/internal/core"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestMonthlyFlowPNG(t *testing.T) {
	buckets := []core.MonthBucket{
		{Key: "2024-04", Label: "Apr/24", Income: core.Money{Cents: 300000}, Expense: core.Money{Cents: 150000}},
		{Key: "2024-05", Label: "May/24", Income: core.Money{Cents: 310000}, Expense: core.Money{Cents: 220000}},
	}

	png, err := MonthlyFlowPNG(buckets)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatal("output is not a PNG")
	}
}

func TestMonthlyFlowPNGEmpty(t *testing.T) {
	png, err := MonthlyFlowPNG(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if png != nil {
		t.Fatal("empty history should render nothing")
	}
}

func TestCategoryBreakdownPNG(t *testing.T) {
	spend := []core.CategorySpend{
		{Category: "Food", Spent: core.Money{Cents: 30000}, Percent: 60},
		{Category: "Transport", Spent: core.Money{Cents: 20000}, Percent: 40},
	}

	png, err := CategoryBreakdownPNG(spend)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Fatal("output is not a PNG")
	}

	if png, _ := CategoryBreakdownPNG(nil); png != nil {
		t.Fatal("no spend should render nothing")
	}
}
