package gateway

import (
	"log"
	"os"
)

// FromEnv picks the gateway implementation. Demo mode is used when it is
// requested explicitly, or when no usable live credential is configured.
func FromEnv() Gateway {
	secretKey := os.Getenv("KHALTI_SECRET_KEY")

	useDemo := os.Getenv("USE_DEMO_PAYMENT") == "true" ||
		secretKey == "" ||
		secretKey == TestSecretKeyPlaceholder

	if useDemo {
		log.Println("🎭 Using demo payment gateway")
		return NewDemoGateway()
	}

	baseURL := os.Getenv("KHALTI_BASE_URL")
	log.Println("✅ Using live Khalti payment gateway")
	return NewKhaltiGateway(baseURL, secretKey)
}
