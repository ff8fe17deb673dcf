package promo

import (
	"testing"
	"time"

	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

var evalNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func percentCode(percentOff int64) *models.PromoCode {
	return &models.PromoCode{
		ID:             "pc_1",
		Code:           "SAVE10",
		Active:         true,
		DiscountType:   enum.DiscountTypePercentage,
		PercentOff:     percentOff,
		AppliesToGames: true,
		AppliesToMerch: true,
	}
}

func fixedCode(amountOffCents int64) *models.PromoCode {
	return &models.PromoCode{
		ID:             "pc_2",
		Code:           "FLAT500",
		Active:         true,
		DiscountType:   enum.DiscountTypeFixed,
		AmountOffCents: amountOffCents,
		AppliesToGames: true,
		AppliesToMerch: true,
	}
}

func gameItem(id string, priceCents int64, qty int64) models.CartItem {
	return models.CartItem{ID: id, Type: enum.ProductTypeGame, PriceCents: priceCents, Quantity: qty}
}

func merchItem(id string, priceCents int64, qty int64) models.CartItem {
	return models.CartItem{ID: id, Type: enum.ProductTypeMerch, PriceCents: priceCents, Quantity: qty}
}

func TestEvaluate_PercentageFloorsDiscount(t *testing.T) {
	ec := &EvalContext{
		Code:  percentCode(10),
		Items: []models.CartItem{gameItem("p1", 2999, 1)},
		Now:   evalNow,
	}

	discount, rej := Evaluate(ec)
	if rej != nil {
		t.Fatalf("Expected code to apply, got rejection: %s", rej.Message())
	}
	if discount.Cents != 299 {
		t.Errorf("Expected 299 cents off 2999 at 10%%, got %d", discount.Cents)
	}
	if discount.Formatted != "$2.99" {
		t.Errorf("Expected formatted discount $2.99, got %s", discount.Formatted)
	}
	if discount.EligibleItemCount != 1 {
		t.Errorf("Expected 1 eligible item, got %d", discount.EligibleItemCount)
	}
}

func TestEvaluate_PercentageOnlyCoversEligibleItems(t *testing.T) {
	code := percentCode(10)
	code.AppliesToMerch = false

	ec := &EvalContext{
		Code: code,
		Items: []models.CartItem{
			gameItem("p1", 5000, 1),
			merchItem("p2", 9000, 1),
		},
		Now: evalNow,
	}

	discount, rej := Evaluate(ec)
	if rej != nil {
		t.Fatalf("Expected code to apply, got rejection: %s", rej.Message())
	}
	if discount.Cents != 500 {
		t.Errorf("Expected discount over eligible 5000 only, got %d", discount.Cents)
	}
	if discount.EligibleItemCount != 1 {
		t.Errorf("Expected 1 eligible item, got %d", discount.EligibleItemCount)
	}
}

func TestEvaluate_MaxDiscountCapClamps(t *testing.T) {
	code := percentCode(50)
	code.MaxDiscountCents = 1000

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 10000, 1)},
		Now:   evalNow,
	}

	discount, rej := Evaluate(ec)
	if rej != nil {
		t.Fatalf("Expected code to apply, got rejection: %s", rej.Message())
	}
	if discount.Cents != 1000 {
		t.Errorf("Expected cap of 1000 to clamp 5000, got %d", discount.Cents)
	}
}

func TestEvaluate_FixedDiscountAcrossTwoEligibleItems(t *testing.T) {
	ec := &EvalContext{
		Code: fixedCode(500),
		Items: []models.CartItem{
			gameItem("p1", 3000, 1),
			merchItem("p2", 2000, 1),
		},
		Now: evalNow,
	}

	discount, rej := Evaluate(ec)
	if rej != nil {
		t.Fatalf("Expected code to apply, got rejection: %s", rej.Message())
	}
	if discount.Cents != 500 {
		t.Errorf("Expected flat 500 off, got %d", discount.Cents)
	}
	if discount.EligibleItemCount != 2 {
		t.Errorf("Expected both items eligible, got %d", discount.EligibleItemCount)
	}
	if discount.Formatted != "$5.00" {
		t.Errorf("Expected formatted discount $5.00, got %s", discount.Formatted)
	}
}

func TestEvaluate_FixedDiscountNeverExceedsEligibleSubtotal(t *testing.T) {
	ec := &EvalContext{
		Code:  fixedCode(5000),
		Items: []models.CartItem{gameItem("p1", 1999, 1)},
		Now:   evalNow,
	}

	discount, rej := Evaluate(ec)
	if rej != nil {
		t.Fatalf("Expected code to apply, got rejection: %s", rej.Message())
	}
	if discount.Cents != 1999 {
		t.Errorf("Expected discount clamped to subtotal 1999, got %d", discount.Cents)
	}
}

func TestEvaluate_NoEligibleItems(t *testing.T) {
	code := percentCode(10)
	code.AppliesToGames = false

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 2999, 1)},
		Now:   evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil {
		t.Fatal("Expected rejection for cart with no eligible items")
	}
	if rej.Reason != ReasonNoEligibleItems {
		t.Errorf("Expected ReasonNoEligibleItems, got %d", rej.Reason)
	}
	if rej.Message() != "This promo code does not apply to any items in your cart" {
		t.Errorf("Unexpected message: %s", rej.Message())
	}
}

func TestEvaluate_MinimumOrderUsesFullCartTotal(t *testing.T) {
	code := fixedCode(500)
	code.AppliesToMerch = false
	code.MinOrderCents = 5000

	// Eligible game subtotal is 3000, but merch brings the full cart to 6000.
	ec := &EvalContext{
		Code: code,
		Items: []models.CartItem{
			gameItem("p1", 3000, 1),
			merchItem("p2", 3000, 1),
		},
		Now: evalNow,
	}

	discount, rej := Evaluate(ec)
	if rej != nil {
		t.Fatalf("Expected minimum to be met by full cart total, got rejection: %s", rej.Message())
	}
	if discount.Cents != 500 {
		t.Errorf("Expected discount 500, got %d", discount.Cents)
	}
}

func TestEvaluate_MinimumOrderRejectionNamesThreshold(t *testing.T) {
	code := fixedCode(500)
	code.MinOrderCents = 5000

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 3000, 1)},
		Now:   evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil {
		t.Fatal("Expected rejection below minimum order")
	}
	if rej.Reason != ReasonMinOrder {
		t.Errorf("Expected ReasonMinOrder, got %d", rej.Reason)
	}
	want := "A minimum order of $50.00 is required to use this promo code"
	if rej.Message() != want {
		t.Errorf("Expected %q, got %q", want, rej.Message())
	}
}

func TestEvaluate_Expired(t *testing.T) {
	code := percentCode(10)
	expired := evalNow.Add(-time.Hour)
	code.ExpiresAt = &expired

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 2999, 1)},
		Now:   evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonExpired {
		t.Fatalf("Expected ReasonExpired, got %+v", rej)
	}
}

func TestEvaluate_NotYetActive(t *testing.T) {
	code := percentCode(10)
	starts := evalNow.Add(time.Hour)
	code.StartsAt = &starts

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 2999, 1)},
		Now:   evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonNotStarted {
		t.Fatalf("Expected ReasonNotStarted, got %+v", rej)
	}
}

func TestEvaluate_GlobalUsageLimit(t *testing.T) {
	code := percentCode(10)
	code.MaxUses = 100
	code.CurrentUses = 100

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 2999, 1)},
		Now:   evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonUsageLimit {
		t.Fatalf("Expected ReasonUsageLimit, got %+v", rej)
	}
}

func TestEvaluate_PerUserLimitRejectsNextAttempt(t *testing.T) {
	code := percentCode(10)
	code.MaxUsesPerUser = 2

	ec := &EvalContext{
		Code:      code,
		Items:     []models.CartItem{gameItem("p1", 2999, 1)},
		Identity:  Identity{UserID: "u1"},
		Now:       evalNow,
		TimesUsed: 2,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonAlreadyUsed {
		t.Fatalf("Expected ReasonAlreadyUsed after limit reached, got %+v", rej)
	}

	ec.TimesUsed = 1
	if _, rej = Evaluate(ec); rej != nil {
		t.Errorf("Expected code to still apply under the limit, got %s", rej.Message())
	}
}

func TestEvaluate_NewCustomersOnly(t *testing.T) {
	code := percentCode(10)
	code.NewCustomersOnly = true

	ec := &EvalContext{
		Code:       code,
		Items:      []models.CartItem{gameItem("p1", 2999, 1)},
		Identity:   Identity{UserID: "u1"},
		Now:        evalNow,
		HasOrdered: true,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonNewCustomersOnly {
		t.Fatalf("Expected ReasonNewCustomersOnly, got %+v", rej)
	}

	ec.HasOrdered = false
	if _, rej = Evaluate(ec); rej != nil {
		t.Errorf("Expected first-time customer to pass, got %s", rej.Message())
	}
}

func TestEvaluate_SpecificUserIDs(t *testing.T) {
	code := percentCode(10)
	code.SpecificUserIDs = []string{"u1", "u2"}

	ec := &EvalContext{
		Code:     code,
		Items:    []models.CartItem{gameItem("p1", 2999, 1)},
		Identity: Identity{UserID: "u3"},
		Now:      evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonUserNotAllowed {
		t.Fatalf("Expected ReasonUserNotAllowed, got %+v", rej)
	}

	ec.Identity.UserID = "u2"
	if _, rej = Evaluate(ec); rej != nil {
		t.Errorf("Expected listed user to pass, got %s", rej.Message())
	}
}

// Inactive must win over expiry when both hold, since the chain checks
// active status first.
func TestEvaluate_PredicateOrdering(t *testing.T) {
	code := percentCode(10)
	code.Active = false
	expired := evalNow.Add(-time.Hour)
	code.ExpiresAt = &expired

	ec := &EvalContext{
		Code:  code,
		Items: []models.CartItem{gameItem("p1", 2999, 1)},
		Now:   evalNow,
	}

	_, rej := Evaluate(ec)
	if rej == nil || rej.Reason != ReasonInactive {
		t.Fatalf("Expected ReasonInactive to short-circuit expiry, got %+v", rej)
	}
}

func TestItemEligible_ExclusionBeatsInclusion(t *testing.T) {
	code := percentCode(10)
	code.IncludedProducts = []string{"p1"}
	code.ExcludedProducts = []string{"p1"}

	if ItemEligible(code, gameItem("p1", 1000, 1)) {
		t.Error("Expected excluded product to stay excluded even when also included")
	}
}

func TestItemEligible_InclusionListLimitsScope(t *testing.T) {
	code := percentCode(10)
	code.IncludedProducts = []string{"p1"}

	if !ItemEligible(code, gameItem("p1", 1000, 1)) {
		t.Error("Expected listed product to be eligible")
	}
	if ItemEligible(code, gameItem("p2", 1000, 1)) {
		t.Error("Expected unlisted product to be ineligible when an inclusion list exists")
	}
}

func TestIdentity_IsGuest(t *testing.T) {
	if !(Identity{Email: "a@b.com", ClientIP: "1.2.3.4"}).IsGuest() {
		t.Error("Expected identity without user ID to be a guest")
	}
	if (Identity{UserID: "u1"}).IsGuest() {
		t.Error("Expected identity with user ID not to be a guest")
	}
}
