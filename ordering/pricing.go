package ordering

import (
	"table-order-api/models"
	"table-order-api/money"

	"github.com/shopspring/decimal"
)

type PricedTopping struct {
	ToppingID string
	Quantity  int
	UnitPrice money.Money
}

// PricedItem amounts are unrounded; rounding happens when the order is built.
type PricedItem struct {
	ProductID  string
	Quantity   int
	UnitPrice  money.Money
	TotalPrice money.Money
	Toppings   []PricedTopping
}

type PricedLine struct {
	Parent     PricedItem
	Components []PricedItem
}

// Total is the parent's total plus every component total.
func (l PricedLine) Total() money.Money {
	total := l.Parent.TotalPrice
	for _, c := range l.Components {
		total = total.Add(c.TotalPrice)
	}
	return total
}

type Totals struct {
	Subtotal money.Money
	Tax      money.Money
	Total    money.Money
	TaxRate  decimal.Decimal
}

// priceItem charges base plus one of each topping per unit.
func priceItem(productID string, base money.Money, qty int, toppings []models.Topping) PricedItem {
	unit := base
	priced := make([]PricedTopping, 0, len(toppings))
	for _, t := range toppings {
		unit = unit.Add(t.Price)
		priced = append(priced, PricedTopping{ToppingID: t.ID, Quantity: qty, UnitPrice: t.Price})
	}
	return PricedItem{
		ProductID:  productID,
		Quantity:   qty,
		UnitPrice:  unit,
		TotalPrice: unit.Times(qty),
		Toppings:   priced,
	}
}

// PriceLine prices a resolved item. A set's parent carries the set price and
// its own toppings; each component is charged its definition's extra price
// per unit, for selection quantity times the number of sets.
func PriceLine(line ResolvedLine) PricedLine {
	priced := PricedLine{
		Parent: priceItem(line.Product.ID, line.Product.Price, line.Quantity, line.Toppings),
	}
	for _, c := range line.Components {
		qty := c.Quantity * line.Quantity
		priced.Components = append(priced.Components,
			priceItem(c.Definition.ComponentProductID, c.Definition.ExtraPrice, qty, c.Toppings))
	}
	return priced
}

// Aggregate sums every line at full precision and applies rate (a fraction).
func Aggregate(lines []PricedLine, rate decimal.Decimal) Totals {
	subtotal := money.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	tax := subtotal.MulRate(rate).Round()
	return Totals{
		Subtotal: subtotal.Round(),
		Tax:      tax,
		Total:    subtotal.Add(tax).Round(),
		TaxRate:  rate,
	}
}
