package entity

import (
	"encoding/json"
	"fmt"
)

// Enums travel over the wire as their 1-based integer on input and as the
// variant name on output. Unknown integers never reach the domain.

type UserRole int

const (
	RoleCustomer UserRole = iota + 1
	RoleAgent
	RoleAdmin
)

var userRoleNames = map[UserRole]string{
	RoleCustomer: "Customer",
	RoleAgent:    "Agent",
	RoleAdmin:    "Admin",
}

func (r UserRole) String() string               { return enumName(userRoleNames, r) }
func (r UserRole) Valid() bool                  { _, ok := userRoleNames[r]; return ok }
func (r UserRole) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

// ParseUserRole validates a boundary integer.
func ParseUserRole(v int) (UserRole, error) { return parseEnum(userRoleNames, "role", v) }

// ParseUserRoleName resolves a role from its name, as carried in tokens.
func ParseUserRoleName(name string) (UserRole, error) {
	for r, n := range userRoleNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown role %q", ErrValidation, name)
}

type PolicyType int

const (
	PolicyTypeLife PolicyType = iota + 1
	PolicyTypeAuto
	PolicyTypeHealth
	PolicyTypeProperty
)

var policyTypeNames = map[PolicyType]string{
	PolicyTypeLife:     "Life",
	PolicyTypeAuto:     "Auto",
	PolicyTypeHealth:   "Health",
	PolicyTypeProperty: "Property",
}

func (t PolicyType) String() string               { return enumName(policyTypeNames, t) }
func (t PolicyType) Valid() bool                  { _, ok := policyTypeNames[t]; return ok }
func (t PolicyType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func ParsePolicyType(v int) (PolicyType, error) { return parseEnum(policyTypeNames, "policy type", v) }

type PolicyStatus int

const (
	PolicyActive PolicyStatus = iota + 1
	PolicyExpired
	PolicyCancelled
	PolicySuspended
)

var policyStatusNames = map[PolicyStatus]string{
	PolicyActive:    "Active",
	PolicyExpired:   "Expired",
	PolicyCancelled: "Cancelled",
	PolicySuspended: "Suspended",
}

func (s PolicyStatus) String() string               { return enumName(policyStatusNames, s) }
func (s PolicyStatus) Valid() bool                  { _, ok := policyStatusNames[s]; return ok }
func (s PolicyStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func ParsePolicyStatus(v int) (PolicyStatus, error) {
	return parseEnum(policyStatusNames, "policy status", v)
}

type ClaimStatus int

const (
	ClaimSubmitted ClaimStatus = iota + 1
	ClaimUnderReview
	ClaimApproved
	ClaimDenied
	ClaimPaid
)

var claimStatusNames = map[ClaimStatus]string{
	ClaimSubmitted:   "Submitted",
	ClaimUnderReview: "UnderReview",
	ClaimApproved:    "Approved",
	ClaimDenied:      "Denied",
	ClaimPaid:        "Paid",
}

// AllClaimStatuses lists the variants in declaration order.
var AllClaimStatuses = []ClaimStatus{ClaimSubmitted, ClaimUnderReview, ClaimApproved, ClaimDenied, ClaimPaid}

func (s ClaimStatus) String() string               { return enumName(claimStatusNames, s) }
func (s ClaimStatus) Valid() bool                  { _, ok := claimStatusNames[s]; return ok }
func (s ClaimStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func ParseClaimStatus(v int) (ClaimStatus, error) {
	return parseEnum(claimStatusNames, "claim status", v)
}

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimSubmitted:   {ClaimUnderReview, ClaimApproved, ClaimDenied},
	ClaimUnderReview: {ClaimApproved, ClaimDenied},
	ClaimApproved:    {ClaimPaid},
}

// CanTransitionTo reports whether the forward-only claim workflow allows
// moving from s to next. Re-asserting the current status is allowed.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod int

const (
	PaymentCreditCard PaymentMethod = iota + 1
	PaymentDebitCard
	PaymentBankTransfer
	PaymentCash
	PaymentMobilePayment
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentCreditCard:    "CreditCard",
	PaymentDebitCard:     "DebitCard",
	PaymentBankTransfer:  "BankTransfer",
	PaymentCash:          "Cash",
	PaymentMobilePayment: "MobilePayment",
}

var AllPaymentMethods = []PaymentMethod{PaymentCreditCard, PaymentDebitCard, PaymentBankTransfer, PaymentCash, PaymentMobilePayment}

func (m PaymentMethod) String() string               { return enumName(paymentMethodNames, m) }
func (m PaymentMethod) Valid() bool                  { _, ok := paymentMethodNames[m]; return ok }
func (m PaymentMethod) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func ParsePaymentMethod(v int) (PaymentMethod, error) {
	return parseEnum(paymentMethodNames, "payment method", v)
}

type PaymentStatus int

const (
	PaymentPending PaymentStatus = iota + 1
	PaymentCompleted
	PaymentFailed
	PaymentRefunded
)

var paymentStatusNames = map[PaymentStatus]string{
	PaymentPending:   "Pending",
	PaymentCompleted: "Completed",
	PaymentFailed:    "Failed",
	PaymentRefunded:  "Refunded",
}

var AllPaymentStatuses = []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded}

func (s PaymentStatus) String() string               { return enumName(paymentStatusNames, s) }
func (s PaymentStatus) Valid() bool                  { _, ok := paymentStatusNames[s]; return ok }
func (s PaymentStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func ParsePaymentStatus(v int) (PaymentStatus, error) {
	return parseEnum(paymentStatusNames, "payment status", v)
}

func enumName[T ~int](names map[T]string, v T) string {
	if n, ok := names[v]; ok {
		return n
	}
	return fmt.Sprintf("Unknown(%d)", int(v))
}

func parseEnum[T ~int](names map[T]string, kind string, v int) (T, error) {
	if _, ok := names[T(v)]; !ok {
		return 0, fmt.Errorf("%w: unknown %s %d", ErrValidation, kind, v)
	}
	return T(v), nil
}
