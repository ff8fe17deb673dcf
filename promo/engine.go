package promo

import (
	"fmt"
	"time"

	"github.com/boardhaven/commerce/models"
	"github.com/boardhaven/commerce/models/enum"
)

// Identity is who is trying to redeem a code. Per-user caps match on user ID
// or email; the client IP is consulted only for guests, so a guest cannot dodge
// the cap by rotating email addresses from the same origin.
type Identity struct {
	UserID   string
	Email    string
	ClientIP string
}

func (id Identity) IsGuest() bool {
	return id.UserID == ""
}

// EvalContext carries everything the predicate chain needs, prefetched by the
// service so evaluation itself stays a pure function.
type EvalContext struct {
	Code     *models.PromoCode
	Items    []models.CartItem
	Identity Identity
	Now      time.Time

	// TimesUsed is the number of prior redemptions by this identity.
	TimesUsed int
	// HasOrdered is true when the identity has any prior order that is
	// neither pending nor cancelled.
	HasOrdered bool
}

type RejectionReason int

const (
	ReasonNotFound RejectionReason = iota
	ReasonInactive
	ReasonNotStarted
	ReasonExpired
	ReasonUsageLimit
	ReasonAlreadyUsed
	ReasonNewCustomersOnly
	ReasonUserNotAllowed
	ReasonNoEligibleItems
	ReasonMinOrder
)

// Rejection is the tagged result of a failed predicate. The user-facing text
// lives here so every caller reports the same wording.
type Rejection struct {
	Reason        RejectionReason
	MinOrderCents int64
}

func reject(reason RejectionReason) *Rejection {
	return &Rejection{Reason: reason}
}

func (r *Rejection) Message() string {
	switch r.Reason {
	case ReasonNotFound:
		return "Invalid promo code"
	case ReasonInactive:
		return "This promo code is no longer active"
	case ReasonNotStarted:
		return "This promo code is not yet active"
	case ReasonExpired:
		return "This promo code has expired"
	case ReasonUsageLimit:
		return "This promo code has reached its usage limit"
	case ReasonAlreadyUsed:
		return "You have already used this promo code"
	case ReasonNewCustomersOnly:
		return "This promo code is only available to new customers"
	case ReasonUserNotAllowed:
		return "This promo code is not available on your account"
	case ReasonNoEligibleItems:
		return "This promo code does not apply to any items in your cart"
	case ReasonMinOrder:
		return fmt.Sprintf("A minimum order of %s is required to use this promo code", models.FormatCents(r.MinOrderCents))
	}
	return "Invalid promo code"
}

type predicate struct {
	name  string
	check func(ec *EvalContext) *Rejection
}

// chain is evaluated in order; the first failing predicate wins and
// short-circuits the rest.
var chain = []predicate{
	{"active", checkActive},
	{"window_start", checkWindowStart},
	{"window_end", checkWindowEnd},
	{"usage_limit", checkUsageLimit},
	{"per_user_limit", checkPerUserLimit},
	{"new_customers_only", checkNewCustomersOnly},
	{"allowed_users", checkAllowedUsers},
	{"item_scope", checkItemScope},
	{"minimum_order", checkMinimumOrder},
}

// Evaluate runs the predicate chain and, when every predicate passes, computes
// the discount over the eligible slice of the cart.
func Evaluate(ec *EvalContext) (*models.DiscountBreakdown, *Rejection) {
	for _, p := range chain {
		if rej := p.check(ec); rej != nil {
			return nil, rej
		}
	}
	return computeDiscount(ec.Code, ec.Items), nil
}

func checkActive(ec *EvalContext) *Rejection {
	if !ec.Code.Active {
		return reject(ReasonInactive)
	}
	return nil
}

func checkWindowStart(ec *EvalContext) *Rejection {
	if ec.Code.StartsAt != nil && ec.Now.Before(*ec.Code.StartsAt) {
		return reject(ReasonNotStarted)
	}
	return nil
}

func checkWindowEnd(ec *EvalContext) *Rejection {
	if ec.Code.ExpiresAt != nil && ec.Now.After(*ec.Code.ExpiresAt) {
		return reject(ReasonExpired)
	}
	return nil
}

func checkUsageLimit(ec *EvalContext) *Rejection {
	if ec.Code.MaxUses > 0 && ec.Code.CurrentUses >= ec.Code.MaxUses {
		return reject(ReasonUsageLimit)
	}
	return nil
}

func checkPerUserLimit(ec *EvalContext) *Rejection {
	if ec.Code.MaxUsesPerUser > 0 && ec.TimesUsed >= ec.Code.MaxUsesPerUser {
		return reject(ReasonAlreadyUsed)
	}
	return nil
}

func checkNewCustomersOnly(ec *EvalContext) *Rejection {
	if ec.Code.NewCustomersOnly && ec.HasOrdered {
		return reject(ReasonNewCustomersOnly)
	}
	return nil
}

func checkAllowedUsers(ec *EvalContext) *Rejection {
	if len(ec.Code.SpecificUserIDs) == 0 {
		return nil
	}
	for _, id := range ec.Code.SpecificUserIDs {
		if id != "" && id == ec.Identity.UserID {
			return nil
		}
	}
	return reject(ReasonUserNotAllowed)
}

func checkItemScope(ec *EvalContext) *Rejection {
	for _, item := range ec.Items {
		if ItemEligible(ec.Code, item) {
			return nil
		}
	}
	return reject(ReasonNoEligibleItems)
}

// checkMinimumOrder uses the full cart total, not just the eligible subtotal.
func checkMinimumOrder(ec *EvalContext) *Rejection {
	if ec.Code.MinOrderCents <= 0 {
		return nil
	}
	var total int64
	for _, item := range ec.Items {
		total += item.LineTotal()
	}
	if total < ec.Code.MinOrderCents {
		return &Rejection{Reason: ReasonMinOrder, MinOrderCents: ec.Code.MinOrderCents}
	}
	return nil
}

// ItemEligible reports whether a single cart line falls inside the code's
// scope: the line's type must be enabled, the product must not be excluded,
// and when an inclusion list exists the product must be on it.
func ItemEligible(code *models.PromoCode, item models.CartItem) bool {
	switch item.Type {
	case enum.ProductTypeGame:
		if !code.AppliesToGames {
			return false
		}
	case enum.ProductTypeMerch:
		if !code.AppliesToMerch {
			return false
		}
	default:
		return false
	}

	for _, id := range code.ExcludedProducts {
		if id == item.ID {
			return false
		}
	}

	if len(code.IncludedProducts) > 0 {
		for _, id := range code.IncludedProducts {
			if id == item.ID {
				return true
			}
		}
		return false
	}

	return true
}

// computeDiscount figures the discount over the eligible subtotal only: a
// percentage code floors, and either shape is clamped first to the configured
// cap and then to the eligible subtotal so no discount leaks onto ineligible
// items.
func computeDiscount(code *models.PromoCode, items []models.CartItem) *models.DiscountBreakdown {
	var eligibleSubtotal int64
	var eligibleCount int
	for _, item := range items {
		if ItemEligible(code, item) {
			eligibleSubtotal += item.LineTotal()
			eligibleCount++
		}
	}

	var discount int64
	switch code.DiscountType {
	case enum.DiscountTypePercentage:
		discount = eligibleSubtotal * code.PercentOff / 100
	case enum.DiscountTypeFixed:
		discount = code.AmountOffCents
	}

	if code.MaxDiscountCents > 0 && discount > code.MaxDiscountCents {
		discount = code.MaxDiscountCents
	}
	if discount > eligibleSubtotal {
		discount = eligibleSubtotal
	}
	if discount < 0 {
		discount = 0
	}

	return &models.DiscountBreakdown{
		Cents:             discount,
		Formatted:         models.FormatCents(discount),
		EligibleItemCount: eligibleCount,
	}
}
