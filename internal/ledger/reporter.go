package ledger

import "github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"

// Valuation reporting: pure functions over ledger state plus a price map.
// Nothing here is cached or stored, so derived numbers can never drift from
// the transaction log.

// UnrealizedPL returns the paper profit or loss on the current position in
// assetID: quantity times (current price minus average buy price). The second
// return value is false when there is no position or no current price, in
// which case the figure is undefined.
func UnrealizedPL(l *Ledger, prices map[string]money.Money, assetID string) (money.Money, bool) {
	qty := l.Holding(assetID)
	if !qty.IsPositive() {
		return money.Money{}, false
	}

	price, ok := prices[assetID]
	if !ok {
		return money.Money{}, false
	}

	avg := AverageBuyPrice(l.transactions, assetID)
	return price.Sub(avg).Mul(qty), true
}

// TotalRealizedPL folds realized profit and loss over all sell transactions
// in the log. Always defined; zero when nothing has been sold.
func TotalRealizedPL(l *Ledger) money.Money {
	var total money.Money
	for _, tx := range l.transactions {
		if tx.IsSell() && tx.RealizedPL != nil {
			total = total.Add(*tx.RealizedPL)
		}
	}
	return total
}

// TotalPortfolioValue returns cash plus the mark-to-market value of all
// priced holdings, along with the list of held assets missing a price.
func TotalPortfolioValue(l *Ledger, prices map[string]money.Money) (money.Money, []string) {
	holdingsValue, unpriced := l.ValueOf(prices)
	return l.cash.Add(holdingsValue), unpriced
}
