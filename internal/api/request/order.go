package request

import "github.com/shopspring/decimal"

// OrderRequest is the body for buy and sell operations. Quantity and
// unitPrice decode as decimals (JSON numbers or strings) so order amounts
// reach the ledger without passing through a float64.
type OrderRequest struct {
	AssetID   string          `json:"assetId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
