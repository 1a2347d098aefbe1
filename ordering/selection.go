package ordering

import "table-order-api/models"

type ComponentRequest struct {
	ProductID string
	Quantity  int
	Toppings  []string
}

type ItemRequest struct {
	ProductID  string
	Quantity   int
	Toppings   []string
	Components []ComponentRequest // only read for set products
}

// Selection is how many units of one set component go into a single set, and
// which toppings were asked for on it.
type Selection struct {
	Quantity int
	Toppings []string
}

type ResolvedComponent struct {
	Definition models.SetComponent
	Quantity   int // per set, before scaling by the set quantity
	Toppings   []models.Topping
}

// ResolvedLine is a requested item checked against the catalog.
type ResolvedLine struct {
	Product    *models.Product
	Quantity   int
	Toppings   []models.Topping
	Components []ResolvedComponent
}

// EffectiveSelection decides what a set definition contributes: the caller's
// choice when given, otherwise an implicit default for required definitions
// with a positive minimum, otherwise nothing (ok is false). Any included
// quantity must lie within MinQty..MaxQty.
func EffectiveSelection(def models.SetComponent, req *ComponentRequest) (sel Selection, ok bool, err error) {
	switch {
	case req != nil:
		sel = Selection{Quantity: req.Quantity, Toppings: req.Toppings}
	case def.Required && def.MinQty > 0:
		qty := def.DefaultQty
		if qty == 0 {
			qty = def.MinQty
		}
		sel = Selection{Quantity: qty}
	default:
		return Selection{}, false, nil
	}

	if sel.Quantity < def.MinQty || sel.Quantity > def.MaxQty {
		return Selection{}, false, newErrorf(CodeInvalidComponent, ErrMsgComponentQuantity,
			"%s: %d not in %d..%d", def.ComponentProductID, sel.Quantity, def.MinQty, def.MaxQty)
	}
	return sel, true, nil
}

// ResolveToppings dedupes the requested ids and maps them onto the allowed
// toppings, keeping request order. Ids outside the allowed set, or toppings
// that are switched off, fail with INVALID_TOPPING.
func ResolveToppings(requested []string, allowed []models.ProductTopping) ([]models.Topping, error) {
	if len(requested) == 0 {
		return nil, nil
	}
	byID := make(map[string]models.Topping, len(allowed))
	for _, pt := range allowed {
		byID[pt.ToppingID] = pt.Topping
	}

	seen := make(map[string]bool, len(requested))
	toppings := make([]models.Topping, 0, len(requested))
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		topping, ok := byID[id]
		if !ok || !topping.IsAvailable {
			return nil, newErrorf(CodeInvalidTopping, ErrMsgToppingNotAllowed, "%s", id)
		}
		toppings = append(toppings, topping)
	}
	return toppings, nil
}

// ResolveLine validates one requested item against its product. product is
// nil when the catalog has no such id.
func ResolveLine(product *models.Product, item ItemRequest) (ResolvedLine, error) {
	if product == nil || !product.IsAvailable {
		return ResolvedLine{}, newErrorf(CodeInvalidProduct, ErrMsgProductUnavailable, "%s", item.ProductID)
	}
	toppings, err := ResolveToppings(item.Toppings, product.Toppings)
	if err != nil {
		return ResolvedLine{}, err
	}

	line := ResolvedLine{Product: product, Quantity: item.Quantity, Toppings: toppings}
	if !product.IsSet() {
		return line, nil
	}
	line.Components, err = resolveComponents(product, item.Components)
	if err != nil {
		return ResolvedLine{}, err
	}
	return line, nil
}

func resolveComponents(set *models.Product, requested []ComponentRequest) ([]ResolvedComponent, error) {
	if len(set.SetComponents) == 0 {
		return nil, newErrorf(CodeInvalidComponent, ErrMsgSetNotConfigured, "%s", set.ID)
	}

	defined := make(map[string]bool, len(set.SetComponents))
	for _, def := range set.SetComponents {
		defined[def.ComponentProductID] = true
	}
	chosen := make(map[string]*ComponentRequest, len(requested))
	for i := range requested {
		req := &requested[i]
		if !defined[req.ProductID] {
			return nil, newErrorf(CodeInvalidComponent, ErrMsgComponentNotInSet, "%s", req.ProductID)
		}
		if _, dup := chosen[req.ProductID]; dup {
			return nil, newErrorf(CodeInvalidComponent, ErrMsgComponentDuplicated, "%s", req.ProductID)
		}
		chosen[req.ProductID] = req
	}

	var components []ResolvedComponent
	for _, def := range set.SetComponents {
		sel, ok, err := EffectiveSelection(def, chosen[def.ComponentProductID])
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !def.ComponentProduct.IsAvailable {
			return nil, newErrorf(CodeInvalidComponent, ErrMsgComponentInactive, "%s", def.ComponentProductID)
		}
		// component toppings follow the component product, not the set
		toppings, err := ResolveToppings(sel.Toppings, def.ComponentProduct.Toppings)
		if err != nil {
			return nil, err
		}
		components = append(components, ResolvedComponent{Definition: def, Quantity: sel.Quantity, Toppings: toppings})
	}
	return components, nil
}
