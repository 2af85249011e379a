package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	cases := map[string]struct {
		want string
		ok   bool
	}{
		"9876543210":     {"9876543210", true},
		"+91 9876543210": {"9876543210", true},
		"09876543210":    {"9876543210", true},
		"12345":          {"", false},
		"5876543210":     {"", false},
		"98765abcde":     {"", false},
	}
	for in, tc := range cases {
		got, ok := Phone(in)
		assert.Equal(t, tc.ok, ok, in)
		assert.Equal(t, tc.want, got, in)
	}
}

func TestPincodeAndOTP(t *testing.T) {
	_, ok := Pincode("560001")
	assert.True(t, ok)
	_, ok = Pincode("060001")
	assert.False(t, ok)
	_, ok = OTP("123456")
	assert.True(t, ok)
	_, ok = OTP("12a456")
	assert.False(t, ok)
}

func TestQtyClamp(t *testing.T) {
	assert.Equal(t, 1, Qty("x"))
	assert.Equal(t, 1, Qty("-3"))
	assert.Equal(t, 7, Qty(" 7 "))
	assert.Equal(t, MaxQty, Qty("999"))
	assert.Equal(t, 0, ClampQty(-1))
}

func TestCouponCodeUppercases(t *testing.T) {
	code, ok := CouponCode(" freeship ")
	assert.True(t, ok)
	assert.Equal(t, "FREESHIP", code)
	_, ok = CouponCode("no spaces")
	assert.False(t, ok)
}

func TestQ(t *testing.T) {
	q, ok := Q("  pizza & pasta ")
	assert.True(t, ok)
	assert.Equal(t, "pizza & pasta", q)
	_, ok = Q("<script>")
	assert.False(t, ok)
	_, ok = Q("   ")
	assert.False(t, ok)
}
