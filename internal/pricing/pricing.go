// Package pricing composes deterministic price quotes for a session booking.
//
// All money is fixed-point decimal with 2-digit precision; every stage rounds
// half-up before the next one reads it, so total == base + equipment + tax to
// the cent by construction.
package pricing

import "github.com/shopspring/decimal"

// Breakdown itemizes the components of a session price.
type Breakdown struct {
	Base      decimal.Decimal
	Equipment decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
}

// Composer turns a tier base price into a full breakdown using the park's
// configured equipment fee and tax rate.
type Composer struct {
	equipmentFee decimal.Decimal
	taxRate      decimal.Decimal
}

// NewComposer creates a Composer. The fee is normalized to cents up front.
func NewComposer(equipmentFee, taxRate decimal.Decimal) *Composer {
	return &Composer{
		equipmentFee: equipmentFee.Round(2),
		taxRate:      taxRate,
	}
}

// Compose builds the breakdown for one session.
//
// tax = round_half_up((base + equipment) * taxRate, 2). decimal.Round rounds
// half away from zero, which is half-up for the non-negative amounts here.
func (c *Composer) Compose(base decimal.Decimal, equipmentRequested bool) Breakdown {
	base = base.Round(2)

	equipment := decimal.Zero.Round(2)
	if equipmentRequested {
		equipment = c.equipmentFee
	}

	taxable := base.Add(equipment)
	tax := taxable.Mul(c.taxRate).Round(2)

	return Breakdown{
		Base:      base,
		Equipment: equipment,
		Tax:       tax,
		Total:     base.Add(equipment).Add(tax),
	}
}
