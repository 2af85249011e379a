package services

import (
	"fmt"
	"sync"

	"storefront/internal/domain"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

var (
	deliveryFee       = decimal.NewFromInt(40)
	freeDeliveryAbove = decimal.NewFromInt(500)
	hundred           = decimal.NewFromInt(100)
	compiledRules     sync.Map // rule text -> *exprvm.Program
)

// ruleEnv is what a coupon rule can see.
func ruleEnv(subtotal float64, items int, fulfillment, storeID string) map[string]any {
	return map[string]any{
		"subtotal":    subtotal,
		"items":       items,
		"fulfillment": fulfillment,
		"store_id":    storeID,
	}
}

func compileRule(rule string) (*exprvm.Program, error) {
	if p, ok := compiledRules.Load(rule); ok {
		return p.(*exprvm.Program), nil
	}
	p, err := exprlang.Compile(rule, exprlang.Env(ruleEnv(0, 0, "", "")), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("coupon rule %q: %w", rule, err)
	}
	compiledRules.Store(rule, p)
	return p, nil
}

// Eligible reports whether c can be applied to lines under the given fulfillment.
func Eligible(c domain.Coupon, storeID, fulfillment string, lines []domain.CartLine) (bool, error) {
	if !c.Active {
		return false, nil
	}
	if c.StoreID != "" && c.StoreID != storeID {
		return false, nil
	}
	sub := subtotal(lines)
	if sub.IsZero() {
		return false, nil
	}
	if sub.LessThan(decimal.NewFromFloat(c.MinSubtotal)) {
		return false, nil
	}
	if c.Kind == domain.CouponFreeDelivery && fulfillment != domain.FulfillmentDelivery {
		return false, nil
	}
	if c.Rule == "" {
		return true, nil
	}
	prog, err := compileRule(c.Rule)
	if err != nil {
		return false, err
	}
	items := 0
	for _, l := range lines {
		items += l.Quantity
	}
	out, err := exprlang.Run(prog, ruleEnv(sub.InexactFloat64(), items, fulfillment, storeID))
	if err != nil {
		return false, fmt.Errorf("coupon rule %q: %w", c.Rule, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func subtotal(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// Summarize prices lines. coupon may be nil; eligibility is the caller's job.
func Summarize(lines []domain.CartLine, fulfillment string, coupon *domain.Coupon) domain.CartSummary {
	sub := subtotal(lines)
	itemDiscount := decimal.Zero

	fee := decimal.Zero
	if fulfillment == domain.FulfillmentDelivery && len(lines) > 0 && sub.LessThan(freeDeliveryAbove) {
		fee = deliveryFee
	}

	couponDiscount, deliveryDiscount := decimal.Zero, decimal.Zero
	code := ""
	if coupon != nil {
		code = coupon.Code
		base := sub.Sub(itemDiscount)
		switch coupon.Kind {
		case domain.CouponPercent:
			couponDiscount = base.Mul(decimal.NewFromFloat(coupon.Value)).Div(hundred)
			if coupon.MaxDiscount > 0 {
				couponDiscount = decimal.Min(couponDiscount, decimal.NewFromFloat(coupon.MaxDiscount))
			}
		case domain.CouponFlat:
			couponDiscount = decimal.Min(decimal.NewFromFloat(coupon.Value), base)
		case domain.CouponFreeDelivery:
			deliveryDiscount = fee
		}
	}

	total := sub.Sub(itemDiscount).Sub(couponDiscount).Add(fee).Sub(deliveryDiscount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return domain.CartSummary{
		Subtotal:         sub.Round(2).InexactFloat64(),
		ItemDiscount:     itemDiscount.Round(2).InexactFloat64(),
		CouponDiscount:   couponDiscount.Round(2).InexactFloat64(),
		DeliveryFee:      fee.Round(2).InexactFloat64(),
		DeliveryDiscount: deliveryDiscount.Round(2).InexactFloat64(),
		Total:            total.Round(2).InexactFloat64(),
		CouponCode:       code,
	}
}

func linePrice(unit float64, qty int) float64 {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}
