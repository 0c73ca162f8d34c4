package ledger

// TestAccount is a test helper that derives a stable AccountID from a short
// label. Real identifiers come from the accounts package.
func TestAccount(label string) AccountID {
	var id AccountID
	copy(id[:], label)
	return id
}

// SumBalances is a test helper that adds up every balance held by an
// in-memory ledger, for checking conservation of supply.
func SumBalances(l Ledger) (Amount, error) {
	mem, ok := l.(*inMemoryLedger)
	if !ok {
		return Amount{}, nil
	}
	mem.mu.RLock()
	defer mem.mu.RUnlock()
	var sum Amount
	for _, balance := range mem.balances {
		var err error
		if sum, err = sum.Add(balance); err != nil {
			return Amount{}, err
		}
	}
	return sum, nil
}
