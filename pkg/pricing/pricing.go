// Package pricing computes final per-mall prices from a quote and the
// user-selected discount rules, then ranks malls against each other. The
// engine is synchronous and side-effect free: same inputs, same output.
package pricing

import (
	"math"
	"sort"
	"strings"

	"mallscout/pkg/models"
	"mallscout/pkg/rules"
)

// ComputeFinalPrice applies the selected rules, in selection order, to
// basePrice + shippingFee. Percent rules discount the current running total,
// so reordering selections changes the result; the order given here is
// preserved exactly. Unknown or cross-mall rule ids are skipped. The result
// is clamped to zero once, after all rules.
func ComputeFinalPrice(quote models.PriceQuote, selectedRuleIDs []string, ruleSet []models.DiscountRule) (int, []models.AppliedDiscount) {
	running := quote.BasePrice + quote.ShippingFee
	applied := make([]models.AppliedDiscount, 0, len(selectedRuleIDs))

	for _, id := range selectedRuleIDs {
		rule, ok := findRule(ruleSet, id)
		if !ok {
			continue // stale or cross-mall id: never aborts the computation
		}

		var amount int
		switch {
		case strings.Contains(rule.RuleName, rules.WaiverMarker) && quote.ShippingFee > 0:
			// Membership free shipping waives the actual fee, whatever
			// the rule's configured value says.
			amount = quote.ShippingFee
		case rule.DiscountType == models.DiscountFixed:
			amount = int(rule.DiscountValue)
		default:
			raw := float64(running) * rule.DiscountValue / 100
			if rule.MaxDiscount > 0 {
				raw = math.Min(raw, float64(rule.MaxDiscount))
			}
			amount = int(math.Round(raw))
		}

		// Zero amounts stay on the record: a fixed rule with value 0 is
		// a legitimate conditions marker.
		applied = append(applied, models.AppliedDiscount{
			RuleID:   rule.ID,
			RuleName: rule.RuleName,
			Amount:   amount,
		})
		running -= amount
	}

	if running < 0 {
		running = 0
	}
	return running, applied
}

func findRule(ruleSet []models.DiscountRule, id string) (models.DiscountRule, bool) {
	for _, r := range ruleSet {
		if r.ID == id {
			return r, true
		}
	}
	return models.DiscountRule{}, false
}

// Rank stable-sorts by final price ascending, marks exactly one cheapest
// entry (the first in sorted order on ties) and derives each entry's
// difference to it.
func Rank(computed []models.CalculatedPrice) []models.CalculatedPrice {
	if len(computed) == 0 {
		return computed
	}

	ranked := make([]models.CalculatedPrice, len(computed))
	copy(ranked, computed)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalPrice < ranked[j].FinalPrice
	})

	cheapest := ranked[0].FinalPrice
	for i := range ranked {
		ranked[i].IsCheapest = i == 0
		ranked[i].PriceDifference = ranked[i].FinalPrice - cheapest
	}
	return ranked
}

// ComputeAll runs the full comparison: one CalculatedPrice per quoted mall
// (fixed mall order, so the ranking tiebreak is deterministic), ranked, with
// the cheapest mall id alongside.
func ComputeAll(quotes map[models.MallID]models.PriceQuote, selected map[models.MallID][]string, catalog *rules.Catalog) ([]models.CalculatedPrice, models.MallID) {
	computed := make([]models.CalculatedPrice, 0, len(quotes))
	for _, mall := range models.Malls {
		quote, ok := quotes[mall]
		if !ok {
			continue
		}
		quote.Mall = mall

		final, applied := ComputeFinalPrice(quote, selected[mall], catalog.RulesFor(mall))
		computed = append(computed, models.CalculatedPrice{
			Mall:             mall,
			BasePrice:        quote.BasePrice,
			ShippingFee:      quote.ShippingFee,
			FinalPrice:       final,
			AppliedDiscounts: applied,
		})
	}

	ranked := Rank(computed)
	if len(ranked) == 0 {
		return ranked, ""
	}
	return ranked, ranked[0].Mall
}
