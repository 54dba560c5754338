package finance

// Ledger is the park's cash account with per-category spending totals.
type Ledger struct {
	Cash    Money
	Loan    Money
	MaxLoan Money

	// Spent holds net spending per category since the ledger was created.
	Spent [ExpenditureCount]Money
}

func NewLedger(cash Money) *Ledger {
	return &Ledger{Cash: cash}
}

// Payment applies cost under category: cash goes down by cost and the
// category total goes up by it. Refunds are negative costs.
func (l *Ledger) Payment(cost Money, category Expenditure) {
	if cost == 0 || cost == MoneyUndefined {
		return
	}
	l.Cash -= cost
	if category < ExpenditureCount {
		l.Spent[category] += cost
	}
}

func (l *Ledger) CanAfford(cost Money) bool {
	return cost <= 0 || cost <= l.Cash
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := *l
	return &c
}
