package gnucashxml

import (
	"fmt"
	"math/big"
	"time"
)

// Book is the top-level container of one parsed GnuCash file. It holds the
// account tree, the commodities and the transactions, all fully cross-linked.
type Book struct {
	GUID         string
	RootAccount  *Account
	Commodities  []*Commodity
	Transactions []*Transaction
	Slots        Slots
}

func (b *Book) String() string {
	return fmt.Sprintf("<Book %s>", b.GUID)
}

// Commodity is something that can be held in an account: a currency, a stock,
// a fund. Identity is the (Space, ID) pair; within a book all references to
// the same pair share one *Commodity.
type Commodity struct {
	// Space is the commodity namespace, e.g. "ISO4217" for currencies.
	Space string
	// ID is the symbol within the namespace, e.g. "EUR".
	ID string
}

func (c *Commodity) String() string {
	return c.ID
}

// AccountType classifies accounts. GnuCash defines a fixed set; unknown tags
// are passed through untouched since the parser does not validate the schema.
type AccountType string

const (
	AccountRoot       AccountType = "ROOT"
	AccountAsset      AccountType = "ASSET"
	AccountBank       AccountType = "BANK"
	AccountCash       AccountType = "CASH"
	AccountCredit     AccountType = "CREDIT"
	AccountCurrency   AccountType = "CURRENCY"
	AccountEquity     AccountType = "EQUITY"
	AccountExpense    AccountType = "EXPENSE"
	AccountIncome     AccountType = "INCOME"
	AccountLiability  AccountType = "LIABILITY"
	AccountMutual     AccountType = "MUTUAL"
	AccountPayable    AccountType = "PAYABLE"
	AccountReceivable AccountType = "RECEIVABLE"
	AccountStock      AccountType = "STOCK"
	AccountTrading    AccountType = "TRADING"
)

// Account is one node of the account tree. Exactly one account per book has
// type ROOT; it has no parent, no commodity and no scale. Children keep
// document order, Splits keep insertion order across transactions.
type Account struct {
	Name        string
	GUID        string
	Type        AccountType
	Description string
	Parent      *Account
	Children    []*Account
	Commodity   *Commodity
	// CommoditySCU is the smallest-currency-unit scale: the denominator of
	// the smallest representable fraction of the account's commodity,
	// e.g. 100 for cent-denominated currencies. Zero on the root account.
	CommoditySCU int
	Splits       []*Split
	Slots        Slots
}

func (a *Account) String() string {
	return fmt.Sprintf("<Account %s>", a.GUID)
}

// FullName returns the colon-joined path from the root to this account,
// excluding the root itself, e.g. "Assets:Bank:Checking".
func (a *Account) FullName() string {
	if a.Parent == nil {
		return ""
	}
	if prefix := a.Parent.FullName(); prefix != "" {
		return prefix + ":" + a.Name
	}
	return a.Name
}

// Transaction is a dated group of splits, balanced in its currency.
type Transaction struct {
	GUID        string
	Currency    *Commodity
	DatePosted  time.Time
	DateEntered time.Time
	Description string
	Splits      []*Split
	Slots       Slots
}

func (t *Transaction) String() string {
	return fmt.Sprintf("<Transaction %s>", t.GUID)
}

// Split is one leg of a transaction, posted against one account. Value is
// expressed in the transaction's currency, Quantity in the account's
// commodity; the two differ when the commodities differ.
type Split struct {
	GUID string
	Memo string
	// ReconciledState is the raw flag from the file: "n" (new),
	// "c" (cleared) or "y" (reconciled).
	ReconciledState string
	// ReconcileDate is the zero time when the split was never reconciled.
	ReconcileDate time.Time
	Value         *big.Rat
	Quantity      *big.Rat
	Account       *Account
	Transaction   *Transaction
	Slots         Slots
}

func (s *Split) String() string {
	return fmt.Sprintf("<Split %s>", s.GUID)
}
