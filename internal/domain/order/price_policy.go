package order

import "bookstore-choreography/internal/pkg/errs"

var ErrUnknownPricePolicy = errs.New("unknown price policy")

// PricePolicy decides which orders follow a catalog price change.
type PricePolicy string

const (
	// Every order referencing the book takes the new price, Paid ones included.
	PricePolicyLatest PricePolicy = "latest"
	// Paid orders keep the price they were paid at.
	PricePolicyPreservePaid PricePolicy = "preserve-paid"
)

func ParsePricePolicy(s string) (PricePolicy, error) {
	switch p := PricePolicy(s); p {
	case PricePolicyLatest, PricePolicyPreservePaid:
		return p, nil
	case "":
		return PricePolicyLatest, nil
	default:
		return "", errs.Mark(errs.Wrapf(ErrUnknownPricePolicy, "%q", s), errs.ErrInvalidInput)
	}
}

func (p PricePolicy) Applies(o *Order) bool {
	if p == PricePolicyPreservePaid {
		return o.Status() == StatusPending
	}
	return true
}
