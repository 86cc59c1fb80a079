package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Typed operation inputs. Handlers decode the loose JSON body into these,
// call Validate, and only then touch the store. Validate normalizes in
// place (trimming, rounding to two fractional digits) and collects every
// offending field rather than stopping at the first.

// StockCountInput is the input to recording an observation in flat mode.
type StockCountInput struct {
	ItemName string
	Quantity *decimal.Decimal
	Location string
	// CountedAt is optional and passed through to the store uninterpreted,
	// e.g. "2025-11-05" or "2025-11-05 14:30:00".
	CountedAt string
}

// Validate checks presence and shape. Returns nil when the input is usable.
func (in *StockCountInput) Validate() error {
	var fields []string

	in.ItemName = strings.TrimSpace(in.ItemName)
	if in.ItemName == "" {
		fields = append(fields, "item_name required")
	}

	if in.Quantity == nil {
		fields = append(fields, "quantity required")
	} else if in.Quantity.IsNegative() {
		fields = append(fields, "quantity must not be negative")
	} else {
		q := in.Quantity.Round(2)
		in.Quantity = &q
	}

	in.Location = strings.TrimSpace(in.Location)
	if in.Location == "" {
		fields = append(fields, "location required")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CountInput is the input to recording a count in normalized mode.
type CountInput struct {
	ItemID   int64
	Location string
	Qty      *decimal.Decimal
}

// Validate checks presence and the location enum. Whether ItemID actually
// references an existing item is left to the store's foreign key.
func (in *CountInput) Validate() error {
	var fields []string

	if in.ItemID <= 0 {
		fields = append(fields, "itemId required")
	}

	if _, err := ParseLocation(strings.TrimSpace(in.Location)); err != nil {
		fields = append(fields, err.Error())
	} else {
		in.Location = strings.TrimSpace(in.Location)
	}

	if in.Qty == nil {
		fields = append(fields, "qty required")
	} else if in.Qty.IsNegative() {
		fields = append(fields, "qty must not be negative")
	} else {
		q := in.Qty.Round(2)
		in.Qty = &q
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ItemSeed is one element of a seedItems batch.
type ItemSeed struct {
	PLU  *string
	Name string
}

// Validate checks the seed element. An empty PLU is normalized to nil,
// which means "always insert a fresh row, never match".
func (in *ItemSeed) Validate() error {
	var fields []string

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		fields = append(fields, "name required")
	}

	if in.PLU != nil {
		plu := strings.TrimSpace(*in.PLU)
		if plu == "" {
			in.PLU = nil
		} else {
			in.PLU = &plu
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
