// Package charts renders report images for the monthly flow and category
// breakdown endpoints.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"teto/internal/core"
)

var (
	incomeColor  = drawing.Color{R: 46, G: 160, B: 67, A: 255}
	expenseColor = drawing.Color{R: 218, G: 54, B: 51, A: 255}
)

// MonthlyFlowPNG renders the income-vs-expense history as paired bars, one
// green/red pair per month. Returns nil bytes when there is nothing to draw.
func MonthlyFlowPNG(buckets []core.MonthBucket) ([]byte, error) {
	if len(buckets) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(buckets)*2)
	for _, b := range buckets {
		values = append(values,
			chart.Value{
				Label: b.Label,
				Value: b.Income.Units(),
				Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor},
			},
			chart.Value{
				Label: "",
				Value: b.Expense.Units(),
				Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor},
			},
		)
	}

	graph := chart.BarChart{
		Title:  "Monthly flow",
		Width:  1000,
		Height: 500,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 30, Right: 30, Bottom: 30},
			FillColor: chart.ColorWhite,
		},
		BarWidth: 28,
		Bars:     values,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render monthly flow chart: %w", err)
	}
	return buf.Bytes(), nil
}

// CategoryBreakdownPNG renders the month's spend by category as a pie.
// Returns nil bytes when there was no spend.
func CategoryBreakdownPNG(spend []core.CategorySpend) ([]byte, error) {
	if len(spend) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(spend))
	for _, s := range spend {
		if s.Spent.Cents == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.0f%%)", s.Category, s.Percent),
			Value: s.Spent.Units(),
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	graph := chart.PieChart{
		Title:  "Spend by category",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render category chart: %w", err)
	}
	return buf.Bytes(), nil
}
