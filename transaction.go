package gnucashxml

import "math/big"

// Before reports whether t was posted strictly before other. Transactions
// order by posting date only; equally dated transactions compare equal, so a
// stable sort preserves their document order.
func (t *Transaction) Before(other *Transaction) bool {
	return t.DatePosted.Before(other.DatePosted)
}

// Before orders splits by their owning transactions. Two splits of the same
// transaction compare equal even though they are distinct splits; this is a
// weak ordering meant for grouping, not a total order over splits.
func (s *Split) Before(other *Split) bool {
	return s.Transaction.Before(other.Transaction)
}

// Balance returns the exact sum of the split values, all of which are
// expressed in the transaction's currency.
func (t *Transaction) Balance() *big.Rat {
	sum := new(big.Rat)
	for _, split := range t.Splits {
		sum.Add(sum, split.Value)
	}
	return sum
}

// IsBalanced reports whether the split values sum to zero. GnuCash keeps
// transactions balanced, and the parser trusts the source; this is a
// convenience for callers that want to check anyway.
func (t *Transaction) IsBalanced() bool {
	return t.Balance().Sign() == 0
}
