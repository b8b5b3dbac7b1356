package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvSelection(t *testing.T) {
	tests := []struct {
		name     string
		demoFlag string
		secret   string
		wantDemo bool
	}{
		{"explicit demo flag", "true", "live_secret_key_abc123", true},
		{"no credential", "", "", true},
		{"placeholder credential", "", TestSecretKeyPlaceholder, true},
		{"live credential", "", "live_secret_key_abc123", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("USE_DEMO_PAYMENT", tc.demoFlag)
			t.Setenv("KHALTI_SECRET_KEY", tc.secret)
			t.Setenv("KHALTI_BASE_URL", "")

			gw := FromEnv()
			_, isDemo := gw.(*DemoGateway)
			assert.Equal(t, tc.wantDemo, isDemo)
		})
	}
}
