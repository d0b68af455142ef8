package ledger

import (
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// AverageBuyPrice computes the quantity-weighted average price paid across
// all buy transactions for assetID: sum of gross values over sum of
// quantities. Sells never adjust the basis (weighted-average cost, not
// FIFO/LIFO).
//
// It is a pure function of the full log and is recomputed on every call, so
// the result can never drift from the transaction history. Returns zero when
// the asset has no buy history; callers treat that as "cost basis undefined"
// and must not divide by it.
func AverageBuyPrice(transactions []model.Transaction, assetID string) money.Money {
	var totalCost money.Money
	var totalQty money.Quantity

	for _, tx := range transactions {
		if tx.Kind != model.KindBuy || tx.AssetID != assetID {
			continue
		}
		totalCost = totalCost.Add(tx.GrossValue)
		totalQty = totalQty.Add(tx.Quantity)
	}

	if !totalQty.IsPositive() {
		return money.Money{}
	}
	return totalCost.Div(totalQty)
}
