package fx

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Converter turns an amount in one currency into another using the
// resolver's rate for the transaction date.
type Converter struct {
	resolver *Resolver
}

// NewConverter wraps a resolver.
func NewConverter(resolver *Resolver) *Converter {
	return &Converter{resolver: resolver}
}

// Convert returns amount multiplied by the resolved rate, unrounded.
// Rounding to the reporting precision belongs to the aggregation caller so
// summed conversions do not accumulate intermediate rounding error. Zero and
// negative amounts pass through arithmetically; sign rules live upstream in
// the transaction model.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, date civil.Date) decimal.Decimal {
	if from == to {
		return amount
	}
	rate := c.resolver.Resolve(ctx, from, to, date)
	return amount.Mul(decimal.NewFromFloat(rate))
}
