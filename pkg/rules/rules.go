// Package rules holds the discount rule catalog. The catalog is populated
// once and read-only afterwards; computations only ever look rules up.
package rules

import "mallscout/pkg/models"

// WaiverMarker flags membership-class free-shipping rules. When a selected
// rule's display name contains it, the engine waives the quote's shipping
// fee instead of applying the rule's configured discount.
const WaiverMarker = "와우"

type Catalog struct {
	rules []models.DiscountRule
}

func NewCatalog(rules []models.DiscountRule) *Catalog {
	return &Catalog{rules: rules}
}

// Default returns the seeded catalog used when no external rule source is
// configured.
func Default() *Catalog {
	return NewCatalog([]models.DiscountRule{
		{
			ID:            "cp-wow",
			Mall:          models.MallCoupang,
			RuleType:      models.RuleMembership,
			RuleName:      "와우 멤버십",
			DiscountType:  models.DiscountFixed,
			DiscountValue: 0,
			Conditions:    "무료배송",
		},
		{
			ID:            "cp-first",
			Mall:          models.MallCoupang,
			RuleType:      models.RuleCoupon,
			RuleName:      "첫 구매 쿠폰",
			DiscountType:  models.DiscountPercent,
			DiscountValue: 10,
			MaxDiscount:   5000,
		},
		{
			ID:            "nv-plus",
			Mall:          models.MallNaver,
			RuleType:      models.RuleMembership,
			RuleName:      "네이버플러스 적립",
			DiscountType:  models.DiscountPercent,
			DiscountValue: 4,
		},
		{
			ID:            "nv-coupon",
			Mall:          models.MallNaver,
			RuleType:      models.RuleCoupon,
			RuleName:      "스토어 즉시할인 쿠폰",
			DiscountType:  models.DiscountFixed,
			DiscountValue: 2000,
		},
		{
			ID:            "st-point",
			Mall:          models.MallElevenst,
			RuleType:      models.RulePoint,
			RuleName:      "11pay 포인트 사용",
			DiscountType:  models.DiscountFixed,
			DiscountValue: 1000,
		},
		{
			ID:            "st-coupon",
			Mall:          models.MallElevenst,
			RuleType:      models.RuleCoupon,
			RuleName:      "장바구니 쿠폰",
			DiscountType:  models.DiscountPercent,
			DiscountValue: 20,
			MaxDiscount:   3000,
		},
	})
}

// RulesFor returns the rules registered for one mall, in catalog order.
// The returned slice is a copy; the catalog itself never changes.
func (c *Catalog) RulesFor(mall models.MallID) []models.DiscountRule {
	var out []models.DiscountRule
	for _, r := range c.rules {
		if r.Mall == mall {
			out = append(out, r)
		}
	}
	return out
}

func (c *Catalog) All() []models.DiscountRule {
	out := make([]models.DiscountRule, len(c.rules))
	copy(out, c.rules)
	return out
}
