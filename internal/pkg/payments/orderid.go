package payments

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const orderIDPrefix = "ord_"

// GenerateOrderID creates an order reference for flows where the caller
// supplied none. The reference is threaded through hosted payment flows as
// the client reference and must never collide in practice.
func GenerateOrderID() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return orderIDPrefix + hex.EncodeToString(buf), nil
}

// IsGeneratedOrderID reports whether a reference has the generated shape.
func IsGeneratedOrderID(ref string) bool {
	return strings.HasPrefix(ref, orderIDPrefix) && len(ref) == len(orderIDPrefix)+20
}
