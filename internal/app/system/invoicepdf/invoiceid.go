package invoicepdf

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// InvoicePrefix starts every generated invoice number.
const InvoicePrefix = "MES"

// NewInvoiceID returns MES<year><6 random digits>.
func NewInvoiceID(now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d%06d", InvoicePrefix, now.Year(), n.Int64()+100000), nil
}
