package domain

// Signature field orders are part of the wire contract with the merchant SDKs
// and the upstream processor. The order must never change, and amounts are
// passed as the exact decimal strings supplied by the caller.

// PayinSignParts returns the ordered field list for a payin signature.
func PayinSignParts(merchantID, amount, merchantOrderNo, apiKey, callbackURL string) []string {
	return []string{merchantID, amount, merchantOrderNo, apiKey, callbackURL}
}

// PayoutSignParts returns the ordered field list for a payout signature.
func PayoutSignParts(accountNumber, amount, bankName, callbackURL, ifsc, merchantID, name, transactionID, payoutKey string) []string {
	return []string{accountNumber, amount, bankName, callbackURL, ifsc, merchantID, name, transactionID, payoutKey}
}
