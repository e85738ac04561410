package models

import (
	"errors"
	"time"
)

type MallID string

const (
	MallCoupang  MallID = "coupang"
	MallNaver    MallID = "naver"
	MallElevenst MallID = "elevenst"
)

// Malls is the fixed dispatch order. The aggregator's merge tiebreak and the
// calculate endpoint both iterate in this order, so it must stay stable.
var Malls = []MallID{MallCoupang, MallNaver, MallElevenst}

func IsValidMall(id MallID) bool {
	for _, m := range Malls {
		if m == id {
			return true
		}
	}
	return false
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidKeyword  = errors.New("keyword must be at least 2 characters")
)

// Listing is one normalized search result. Prices are in won (integer minor
// units). A listing is only valid when ProductName is non-empty and Price > 0;
// adapters discard anything partial instead of emitting placeholders.
type Listing struct {
	ProductName      string  `json:"productName"`
	Price            int     `json:"price"`
	OriginalPrice    int     `json:"originalPrice,omitempty"`
	ImageURL         string  `json:"imageUrl"`
	ProductURL       string  `json:"productUrl"`
	Mall             MallID  `json:"mallName"`
	IsRocketDelivery bool    `json:"isRocketDelivery,omitempty"`
	IsFreeShipping   bool    `json:"isFreeShipping,omitempty"`
	Rating           float64 `json:"rating,omitempty"`
	ReviewCount      int     `json:"reviewCount,omitempty"`
}

func (l Listing) Valid() bool {
	return l.ProductName != "" && l.Price > 0
}

// ProductDetail is the result of a single-URL lookup on one mall.
type ProductDetail struct {
	Mall        MallID    `json:"mallName"`
	Name        string    `json:"name"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	BasePrice   int       `json:"basePrice"`
	ShippingFee int       `json:"shippingFee"`
	ProductURL  string    `json:"productUrl"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// PriceQuote is one mall's offer for a product being compared.
type PriceQuote struct {
	Mall        MallID    `json:"mallName"`
	BasePrice   int       `json:"basePrice"`
	ShippingFee int       `json:"shippingFee"`
	ProductURL  string    `json:"productUrl,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt,omitempty"`
}

type RuleType string

const (
	RuleCoupon     RuleType = "coupon"
	RulePoint      RuleType = "point"
	RuleMembership RuleType = "membership"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

// DiscountRule is immutable once loaded. RuleType and Conditions are
// informational only; the engine dispatches on DiscountType and on the
// shipping-waiver marker in RuleName.
type DiscountRule struct {
	ID            string       `json:"id"`
	Mall          MallID       `json:"mallName"`
	RuleType      RuleType     `json:"ruleType"`
	RuleName      string       `json:"ruleName"`
	DiscountType  DiscountType `json:"discountType"`
	DiscountValue float64      `json:"discountValue"`
	MaxDiscount   int          `json:"maxDiscount,omitempty"`
	Conditions    string       `json:"conditions,omitempty"`
}

type AppliedDiscount struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Amount   int    `json:"amount"`
}

// CalculatedPrice is built fresh per computation and never mutated after
// return. AppliedDiscounts preserves rule application order.
type CalculatedPrice struct {
	Mall             MallID            `json:"mallName"`
	BasePrice        int               `json:"basePrice"`
	ShippingFee      int               `json:"shippingFee"`
	FinalPrice       int               `json:"finalPrice"`
	AppliedDiscounts []AppliedDiscount `json:"appliedDiscounts"`
	IsCheapest       bool              `json:"isCheapest"`
	PriceDifference  int               `json:"priceDifference"`
}
