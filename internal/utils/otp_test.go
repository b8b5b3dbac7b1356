package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp, err := GenerateSecureOTP()
		require.NoError(t, err)
		assert.Len(t, otp, 6)
		assert.True(t, IsSixDigitCode(otp), "generated OTP %q is not six digits", otp)
	}
}

func TestIsSixDigitCode(t *testing.T) {
	assert.True(t, IsSixDigitCode("000123"))
	assert.False(t, IsSixDigitCode("12345"))
	assert.False(t, IsSixDigitCode("1234567"))
	assert.False(t, IsSixDigitCode("12345a"))
	assert.False(t, IsSixDigitCode(""))
}
