package payment

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DefaultDisplayOrder sorts methods without an explicit position last.
const DefaultDisplayOrder = 999

// Method is a settlement option offered at the register.
type Method struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Code                 string    `json:"code"`
	IsActive             bool      `json:"isActive"`
	UsedInSales          bool      `json:"usedInSales"`
	UsedInDebtorPayments bool      `json:"usedInDebtorPayments"`
	OrderOfDisplay       int       `json:"orderOfDisplay"`
}

// Eligible filters to active methods usable for sales, sorted by display
// order ascending. The sort is stable so methods sharing an order keep
// their source ordering.
func Eligible(all []Method) []Method {
	out := make([]Method, 0, len(all))
	for _, m := range all {
		if !m.IsActive || !m.UsedInSales {
			continue
		}
		if m.OrderOfDisplay <= 0 {
			m.OrderOfDisplay = DefaultDisplayOrder
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderOfDisplay < out[j].OrderOfDisplay
	})
	return out
}

// SelectDefault picks the method the register pre-selects: the first
// eligible method whose name or code mentions cash, else the first eligible
// method. The second return is false when nothing is eligible.
func SelectDefault(all []Method) (Method, bool) {
	eligible := Eligible(all)
	if len(eligible) == 0 {
		return Method{}, false
	}
	for _, m := range eligible {
		if strings.Contains(strings.ToLower(m.Name), "cash") ||
			strings.Contains(strings.ToLower(m.Code), "cash") {
			return m, true
		}
	}
	return eligible[0], true
}
