package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/request"
)

// assetIDPattern matches ticker-style asset identifiers as used by the quote
// widgets: uppercase letters and digits with optional dot or dash separators.
var assetIDPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-]{0,11}$`)

// ValidateAssetID checks an asset identifier's shape.
func ValidateAssetID(assetID string) error {
	if strings.TrimSpace(assetID) == "" {
		return fmt.Errorf("asset id is required")
	}
	if !assetIDPattern.MatchString(assetID) {
		return fmt.Errorf("invalid asset id: %s", assetID)
	}
	return nil
}

// ValidateOrder validates a buy/sell order request.
//
// Required fields:
//   - assetId: ticker-style identifier
//   - quantity: must be positive
//   - unitPrice: must be positive
//
// Returns a validation Error with field-specific messages if validation fails.
func ValidateOrder(req request.OrderRequest) error {
	errors := make(map[string]string)

	if err := ValidateAssetID(req.AssetID); err != nil {
		errors["assetId"] = err.Error()
	}

	if !req.Quantity.IsPositive() {
		errors["quantity"] = "quantity must be positive"
	}

	if !req.UnitPrice.IsPositive() {
		errors["unitPrice"] = "unitPrice must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
