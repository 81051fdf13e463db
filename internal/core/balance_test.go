package core

import (
	"math"
	"testing"
)

func tx(desc string, cents int64, cat string, typ TransactionType, method PaymentMethod, d Date) Transaction {
	return Transaction{
		ID:            desc,
		Description:   desc,
		Amount:        Money{Cents: cents},
		Category:      cat,
		Type:          typ,
		PaymentMethod: method,
		Date:          d,
	}
}

func TestSummarizeDashboardScenario(t *testing.T) {
	// Seeded calibration: balance 1000, carried bill 200, limit 5000.
	settings := Settings{
		InitialBalance:    Money{Cents: 100000},
		InitialCreditBill: Money{Cents: 20000},
		TotalCreditLimit:  Money{Cents: 500000},
	}
	txs := []Transaction{
		tx("salary", 300000, "Income", Income, Debit, NewDate(2024, 5, 5)),
		tx("groceries", 50000, "Food", Expense, CreditCard, NewDate(2024, 5, 10)),
		tx("bill settle", 10000, BillPaymentCategory, Expense, Debit, NewDate(2024, 5, 12)),
	}

	sum := Summarize(txs, settings)

	if got, want := sum.AvailableBalance.Cents, int64(390000); got != want {
		t.Fatalf("available balance = %d, want %d", got, want)
	}
	if got, want := sum.OutstandingBill.Cents, int64(60000); got != want {
		t.Fatalf("outstanding bill = %d, want %d", got, want)
	}
	if !sum.UtilizationOK {
		t.Fatal("utilization should be usable with a nonzero limit")
	}
	if got, want := sum.UtilizationPercent, 12.0; got != want {
		t.Fatalf("utilization = %v, want %v", got, want)
	}
	if got, want := sum.TotalLifestyleSpend.Cents, int64(50000); got != want {
		t.Fatalf("lifestyle spend = %d, want %d", got, want)
	}
}

func TestSummarizeBalanceIgnoresCardCharges(t *testing.T) {
	settings := Settings{InitialBalance: Money{Cents: 10000}}
	txs := []Transaction{
		tx("income", 5000, "Income", Income, Cash, NewDate(2024, 1, 1)),
		tx("debit", 2000, "Food", Expense, Debit, NewDate(2024, 1, 2)),
		tx("cash", 1000, "Leisure", Expense, Cash, NewDate(2024, 1, 3)),
		tx("card", 999999, "Food", Expense, CreditCard, NewDate(2024, 1, 4)),
	}
	sum := Summarize(txs, settings)
	if got, want := sum.AvailableBalance.Cents, int64(10000+5000-3000); got != want {
		t.Fatalf("available balance = %d, want %d (card charges must not touch it)", got, want)
	}
}

func TestSummarizeOutstandingBillNeverNegative(t *testing.T) {
	settings := Settings{InitialCreditBill: Money{Cents: 1000}}
	txs := []Transaction{
		tx("card", 500, "Food", Expense, CreditCard, NewDate(2024, 1, 2)),
		tx("overpay", 99999, BillPaymentCategory, Expense, Debit, NewDate(2024, 1, 3)),
	}
	sum := Summarize(txs, settings)
	if sum.OutstandingBill.Cents != 0 {
		t.Fatalf("outstanding bill = %d, want 0 on overpayment", sum.OutstandingBill.Cents)
	}
}

func TestSummarizeZeroCreditLimit(t *testing.T) {
	settings := Settings{InitialCreditBill: Money{Cents: 5000}}
	sum := Summarize([]Transaction{
		tx("card", 2500, "Food", Expense, CreditCard, NewDate(2024, 1, 2)),
	}, settings)

	if sum.UtilizationOK {
		t.Fatal("utilization must be flagged unusable when the limit is zero")
	}
	if sum.UtilizationPercent != 0 {
		t.Fatalf("utilization = %v, want 0", sum.UtilizationPercent)
	}
	if math.IsNaN(sum.UtilizationPercent) || math.IsInf(sum.UtilizationPercent, 0) {
		t.Fatal("utilization must never be NaN or Inf")
	}
}

func TestSummarizeEmptySnapshot(t *testing.T) {
	sum := Summarize(nil, Settings{InitialBalance: Money{Cents: 1234}})
	if sum.AvailableBalance.Cents != 1234 {
		t.Fatalf("available balance = %d, want the initial balance", sum.AvailableBalance.Cents)
	}
	if sum.OutstandingBill.Cents != 0 || sum.Income.Cents != 0 {
		t.Fatal("empty snapshot should derive only from settings")
	}
}

func TestPatrimony(t *testing.T) {
	entries := []InvestmentEntry{
		{Description: "deposit", Amount: Money{Cents: 50000}, Kind: Deposit, Date: NewDate(2024, 1, 1)},
		{Description: "withdrawal", Amount: Money{Cents: 12000}, Kind: Withdrawal, Date: NewDate(2024, 2, 1)},
	}
	if got, want := Patrimony(entries).Cents, int64(38000); got != want {
		t.Fatalf("patrimony = %d, want %d", got, want)
	}
	if Patrimony(nil).Cents != 0 {
		t.Fatal("empty ledger should have zero patrimony")
	}
}
