// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const orderIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a random alphanumeric string of length n.
func GenerateRandomString(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(orderIDCharset))))
		if err != nil {
			return "", err
		}
		b[i] = orderIDCharset[idx.Int64()]
	}
	return string(b), nil
}

// GenerateOrderID builds a gateway order reference of the form
// UMKM-<unix seconds>-<6 random chars>. Stays well under the 50
// character gateway limit.
func GenerateOrderID() (string, error) {
	suffix, err := GenerateRandomString(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("UMKM-%d-%s", time.Now().Unix(), suffix), nil
}
