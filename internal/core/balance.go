package core

// Summary holds the reconciled dashboard figures derived from a snapshot of
// transactions plus the owner's settings. All figures are in cents; only the
// credit utilization is a percentage.
type Summary struct {
	Income           Money
	ImmediateExpense Money // expenses settled immediately (debit or cash), bill payments included
	NewCardCharges   Money // expenses charged to the credit card this snapshot
	BillPayments     Money // immediate expenses whose category is the bill-payment sentinel

	AvailableBalance Money // initial balance + income - immediate expenses
	OutstandingBill  Money // carried bill + new card charges - bill payments, floored at zero

	OperationalDebitSpend Money // immediate expenses that are not bill settlements
	TotalLifestyleSpend   Money // operational debit spend + card charges; the real cost of living

	// UtilizationPercent is OutstandingBill over TotalCreditLimit. When the
	// configured limit is zero the ratio is unusable: the value is 0 and
	// UtilizationOK is false, never NaN or Inf.
	UtilizationPercent float64
	UtilizationOK      bool
}

// Summarize reconciles a transaction snapshot against the owner's settings.
// The snapshot may be the full history or a month-filtered view; the math is
// the same. Bill payments are ordinary debit expenses tagged with the
// sentinel category, so they both reduce the available balance and settle
// the outstanding bill without being double-counted as lifestyle spend.
func Summarize(txs []Transaction, s Settings) Summary {
	var sum Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			sum.Income.Cents += t.Amount.Cents
		case Expense:
			if t.PaymentMethod == CreditCard {
				sum.NewCardCharges.Cents += t.Amount.Cents
			} else {
				sum.ImmediateExpense.Cents += t.Amount.Cents
				if t.Category == BillPaymentCategory {
					sum.BillPayments.Cents += t.Amount.Cents
				}
			}
		}
	}

	sum.AvailableBalance.Cents = s.InitialBalance.Cents + sum.Income.Cents - sum.ImmediateExpense.Cents

	// The reconciliation itself is signed so that consecutive payments do
	// not push the carried bill negative forever; only the reported figure
	// is floored.
	bill := s.InitialCreditBill.Cents + sum.NewCardCharges.Cents - sum.BillPayments.Cents
	if bill < 0 {
		bill = 0
	}
	sum.OutstandingBill.Cents = bill

	sum.OperationalDebitSpend.Cents = sum.ImmediateExpense.Cents - sum.BillPayments.Cents
	sum.TotalLifestyleSpend.Cents = sum.OperationalDebitSpend.Cents + sum.NewCardCharges.Cents

	if s.TotalCreditLimit.Cents > 0 {
		sum.UtilizationPercent = float64(sum.OutstandingBill.Cents) / float64(s.TotalCreditLimit.Cents) * 100
		sum.UtilizationOK = true
	}

	return sum
}

// AvailableLimit is the credit limit remaining after the outstanding bill.
func (s Summary) AvailableLimit(settings Settings) Money {
	return Money{Cents: settings.TotalCreditLimit.Cents - s.OutstandingBill.Cents}
}

// Patrimony returns the running total of the investment ledger:
// deposits minus withdrawals.
func Patrimony(entries []InvestmentEntry) Money {
	var total int64
	for _, e := range entries {
		switch e.Kind {
		case Deposit:
			total += e.Amount.Cents
		case Withdrawal:
			total -= e.Amount.Cents
		}
	}
	return Money{Cents: total}
}
