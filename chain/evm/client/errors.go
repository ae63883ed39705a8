package client

import (
	"strings"
)

type ErrorClass string

const (
	NoBalanceForGas   ErrorClass = "NoBalanceForGas"
	NoBalance         ErrorClass = "NoBalance"
	NetworkError      ErrorClass = "NetworkError"
	TransactionExists ErrorClass = "TransactionExists"
	NonceConflict     ErrorClass = "NonceConflict"
	Unknown           ErrorClass = "Unknown"
)

// CheckError classifies an RPC error from a send or simulation.
func CheckError(err error) ErrorClass {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "insufficient funds for gas * price + value") {
		return NoBalanceForGas
	}
	if strings.Contains(msg, "insufficient funds for transfer") ||
		strings.Contains(msg, "insufficient funds of the sender") {
		return NoBalance
	}
	if strings.Contains(msg, "nonce too low") ||
		strings.Contains(msg, "replacement transaction underpriced") {
		return NonceConflict
	}
	if strings.Contains(msg, "transaction underpriced") ||
		strings.Contains(msg, "response body closed") ||
		strings.Contains(msg, "eof") {
		return NetworkError
	}
	if strings.Contains(msg, "transaction already in block chain") ||
		strings.Contains(msg, "already known") ||
		strings.Contains(msg, "known transaction:") ||
		strings.Contains(msg, "transaction already imported") {
		return TransactionExists
	}
	return Unknown
}
