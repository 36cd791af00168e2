package gateway

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// Operation identifies a gateway API call. Each operation signs a different
// field concatenation with a different hash algorithm; the asymmetry is the
// gateway's protocol, not ours, and is kept in one table so it stays visible
// and testable.
type Operation string

const (
	OpPaymentMethods    Operation = "payment_methods"
	OpCreateTransaction Operation = "create_transaction"
	OpQueryStatus       Operation = "query_status"
	OpCallback          Operation = "callback"
)

type hashAlgo int

const (
	algoMD5 hashAlgo = iota
	algoSHA256
)

// sigField names a slot in the signature concatenation.
type sigField int

const (
	fieldMerchantCode sigField = iota
	fieldAmount
	fieldOrderID
	fieldDatetime
	fieldAPIKey
)

type sigSpec struct {
	algo  hashAlgo
	order []sigField
}

// signatureTable maps every operation to its algorithm and field order.
var signatureTable = map[Operation]sigSpec{
	OpPaymentMethods:    {algoSHA256, []sigField{fieldMerchantCode, fieldAmount, fieldDatetime, fieldAPIKey}},
	OpCreateTransaction: {algoMD5, []sigField{fieldMerchantCode, fieldOrderID, fieldAmount, fieldAPIKey}},
	OpQueryStatus:       {algoMD5, []sigField{fieldMerchantCode, fieldOrderID, fieldAPIKey}},
	OpCallback:          {algoMD5, []sigField{fieldMerchantCode, fieldAmount, fieldOrderID, fieldAPIKey}},
}

// SignatureFields carries the raw values an operation may concatenate.
// Amount is the string form the gateway expects (no decimals for IDR).
type SignatureFields struct {
	MerchantCode    string
	MerchantOrderID string
	Amount          string
	Datetime        string
}

// Sign computes the hex digest for the given operation.
func Sign(op Operation, fields SignatureFields, apiKey string) (string, error) {
	spec, ok := signatureTable[op]
	if !ok {
		return "", fmt.Errorf("gateway: unknown signature operation %q", op)
	}

	var b strings.Builder
	for _, f := range spec.order {
		switch f {
		case fieldMerchantCode:
			b.WriteString(fields.MerchantCode)
		case fieldAmount:
			b.WriteString(fields.Amount)
		case fieldOrderID:
			b.WriteString(fields.MerchantOrderID)
		case fieldDatetime:
			b.WriteString(fields.Datetime)
		case fieldAPIKey:
			b.WriteString(apiKey)
		}
	}

	switch spec.algo {
	case algoSHA256:
		sum := sha256.Sum256([]byte(b.String()))
		return hex.EncodeToString(sum[:]), nil
	default:
		sum := md5.Sum([]byte(b.String()))
		return hex.EncodeToString(sum[:]), nil
	}
}

// Verify recomputes the expected signature and compares it to the candidate
// in constant time. A mismatch is a hard reject, never a "maybe".
func Verify(op Operation, fields SignatureFields, apiKey, candidate string) bool {
	expected, err := Sign(op, fields, apiKey)
	if err != nil {
		return false
	}
	// Hex digests are case-insensitive on the wire.
	return subtle.ConstantTimeCompare(
		[]byte(expected),
		[]byte(strings.ToLower(candidate)),
	) == 1
}
