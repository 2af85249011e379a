package validate

import (
	"regexp"
	"strconv"
	"strings"
)

const MaxQty = 50

var (
	// Indian mobile numbers: 10 digits starting 6-9, optional +91 / 0 prefix
	rePhone   = regexp.MustCompile(`^(?:\+91|0)?([6-9][0-9]{9})$`)
	rePincode = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	reOTP     = regexp.MustCompile(`^[0-9]{6}$`)
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ       = regexp.MustCompile(`^[\p{L}0-9 _'&.\-]{1,50}$`)
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCoupon  = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)
)

// Phone normalizes to the bare 10-digit number.
func Phone(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	m := rePhone.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func Pincode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePincode.MatchString(s)
}

func OTP(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reOTP.MatchString(s)
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// Qty parses a positive quantity, clamping to [1, MaxQty].
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return ClampQty(n)
}

// ClampQty keeps n within [0, MaxQty]; 0 means "remove".
func ClampQty(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxQty {
		return MaxQty
	}
	return n
}

// ID validates a simple resource identifier (store/product/address ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// CouponCode upper-cases and validates a coupon code.
func CouponCode(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, reCoupon.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 40 {
		return "", false
	}
	return s, true
}

func AddressType(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "home", "work", "other":
		return s, true
	}
	return "", false
}

func Fulfillment(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == "delivery" || s == "pickup"
}

func Rating(n int) bool { return n >= 1 && n <= 5 }

// Text trims free text and enforces a max length.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= max
}
