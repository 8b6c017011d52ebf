// Package gnucashxml parses GnuCash v2 XML files into a cross-referenced
// ledger graph: a Book holding the account tree, the commodities and the
// balanced transactions with their splits. Amounts are kept as exact
// rationals; no floating point is involved anywhere in the parse.
package gnucashxml

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/beevik/etree"
	"github.com/klauspost/compress/gzip"
)

// Namespace URIs of the GnuCash v2 format. The URIs, not the prefixes
// spelled in the document, are the contract.
const (
	nsGNC   = "http://www.gnucash.org/XML/gnc"
	nsAct   = "http://www.gnucash.org/XML/act"
	nsBook  = "http://www.gnucash.org/XML/book"
	nsCmdty = "http://www.gnucash.org/XML/cmdty"
	nsTrn   = "http://www.gnucash.org/XML/trn"
	nsTS    = "http://www.gnucash.org/XML/ts"
	nsSplit = "http://www.gnucash.org/XML/split"
	nsSlot  = "http://www.gnucash.org/XML/slot"
)

var (
	ErrNotGnuCash       = errors.New("not a GnuCash v2 file")
	ErrMissingElement   = errors.New("missing required element")
	ErrUnknownReference = errors.New("unresolved reference")
	ErrNoRootAccount    = errors.New("book has no ROOT account")
	ErrManyRootAccounts = errors.New("book has more than one ROOT account")
)

// ParseFile parses a GnuCash file from disk. GnuCash writes files
// gzip-compressed by default but can be configured not to, so the two gzip
// magic bytes are sniffed and plain XML is accepted as well.
func ParseFile(filename string) (*Book, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, gerr := gzip.NewReader(br)
		if gerr != nil {
			return nil, gerr
		}
		defer gz.Close()
		return Parse(gz)
	}
	return Parse(br)
}

// Parse parses GnuCash XML from an uncompressed stream and returns the fully
// linked Book. Parsing is all-or-nothing: any structural problem aborts the
// whole build and no partial graph is returned.
func Parse(r io.Reader) (*Book, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "gnc-v2" || root.NamespaceURI() != "" {
		return nil, ErrNotGnuCash
	}
	bookEl := findChild(root, nsGNC, "book")
	if bookEl == nil {
		return nil, fmt.Errorf("%w: gnc:book", ErrMissingElement)
	}
	return newParser().book(bookEl)
}

// commodityKey is the identity of a commodity within a book.
type commodityKey struct {
	space, id string
}

// parser holds the lookup tables built while assembling one book, plus the
// date layout cache. It is used for a single Parse call and discarded.
type parser struct {
	commodities map[commodityKey]*Commodity
	accounts    map[string]*Account

	dateLayout  string
	strPrevDate string
	prevDate    time.Time
	prevDateErr error
}

func newParser() *parser {
	return &parser{
		commodities: make(map[commodityKey]*Commodity),
		accounts:    make(map[string]*Account),
	}
}

// parseDate converts a date or timestamp string from the document. Books
// carry thousands of dates in at most two layouts, so the last learned
// layout is tried first and dateparse is only consulted on a layout change.
func (p *parser) parseDate(dateString string) (t time.Time, err error) {
	// seen before, skip parse
	if p.strPrevDate == dateString {
		return p.prevDate, p.prevDateErr
	}

	t, err = time.Parse(p.dateLayout, dateString)
	if err != nil {
		var layout string
		layout, err = dateparse.ParseFormat(dateString)
		if err == nil {
			p.dateLayout = layout
			t, err = time.Parse(layout, dateString)
		}
		if err != nil {
			err = fmt.Errorf("unable to parse date(%s): %w", dateString, err)
		}
	}

	// maybe next date is same
	p.strPrevDate = dateString
	p.prevDate = t
	p.prevDateErr = err

	return
}

// book assembles the Book in a fixed order: commodities first, then accounts
// with deferred parent linking, then transactions, then the book's own slots.
// The two account passes let a child appear before its parent in the file.
func (p *parser) book(el *etree.Element) (*Book, error) {
	guid, err := childText(el, nsBook, "id")
	if err != nil {
		return nil, err
	}
	book := &Book{GUID: guid}

	for _, ce := range findChildren(el, nsGNC, "commodity") {
		comm, err := p.commodity(ce)
		if err != nil {
			return nil, err
		}
		// Duplicate (space, id) pairs overwrite each other in the lookup
		// table but all stay on the book's list.
		book.Commodities = append(book.Commodities, comm)
		p.commodities[commodityKey{comm.Space, comm.ID}] = comm
	}

	var accounts []*Account
	parentGUIDs := make(map[string]string)
	for _, ae := range findChildren(el, nsGNC, "account") {
		parentGUID, acc, err := p.account(ae)
		if err != nil {
			return nil, err
		}
		if acc.Type == AccountRoot {
			if book.RootAccount != nil {
				return nil, fmt.Errorf("%w: %s and %s",
					ErrManyRootAccounts, book.RootAccount.GUID, acc.GUID)
			}
			book.RootAccount = acc
		}
		accounts = append(accounts, acc)
		p.accounts[acc.GUID] = acc
		parentGUIDs[acc.GUID] = parentGUID
	}
	if book.RootAccount == nil {
		return nil, ErrNoRootAccount
	}
	for _, acc := range accounts {
		if acc.Type == AccountRoot {
			continue
		}
		parentGUID := parentGUIDs[acc.GUID]
		parent, ok := p.accounts[parentGUID]
		if !ok {
			return nil, fmt.Errorf("account %s: %w: parent %s",
				acc.GUID, ErrUnknownReference, parentGUID)
		}
		acc.Parent = parent
		parent.Children = append(parent.Children, acc)
	}

	for _, te := range findChildren(el, nsGNC, "transaction") {
		trn, err := p.transaction(te)
		if err != nil {
			return nil, err
		}
		book.Transactions = append(book.Transactions, trn)
	}

	if book.Slots, err = p.slots(findChild(el, nsBook, "slots")); err != nil {
		return nil, fmt.Errorf("book %s: %w", guid, err)
	}
	return book, nil
}

func (p *parser) commodity(el *etree.Element) (*Commodity, error) {
	id, err := childText(el, nsCmdty, "id")
	if err != nil {
		return nil, err
	}
	space, err := childText(el, nsCmdty, "space")
	if err != nil {
		return nil, err
	}
	return &Commodity{Space: space, ID: id}, nil
}

// account builds one account and returns the raw parent guid alongside it.
// The guid is resolved later, once every account of the book exists.
func (p *parser) account(el *etree.Element) (string, *Account, error) {
	name, err := childText(el, nsAct, "name")
	if err != nil {
		return "", nil, err
	}
	guid, err := childText(el, nsAct, "id")
	if err != nil {
		return "", nil, err
	}
	actype, err := childText(el, nsAct, "type")
	if err != nil {
		return "", nil, fmt.Errorf("account %s: %w", guid, err)
	}

	acc := &Account{
		Name: name,
		GUID: guid,
		Type: AccountType(actype),
	}
	if d := findChild(el, nsAct, "description"); d != nil {
		acc.Description = d.Text()
	}
	if acc.Slots, err = p.slots(findChild(el, nsAct, "slots")); err != nil {
		return "", nil, fmt.Errorf("account %s: %w", guid, err)
	}
	if acc.Type == AccountRoot {
		return "", acc, nil
	}

	parentGUID, err := childText(el, nsAct, "parent")
	if err != nil {
		return "", nil, fmt.Errorf("account %s: %w", guid, err)
	}
	commEl := findChild(el, nsAct, "commodity")
	if commEl == nil {
		return "", nil, fmt.Errorf("account %s: %w: act:commodity", guid, ErrMissingElement)
	}
	comm, err := p.resolveCommodity(commEl)
	if err != nil {
		return "", nil, fmt.Errorf("account %s: %w", guid, err)
	}
	acc.Commodity = comm
	scu, err := childText(el, nsAct, "commodity-scu")
	if err != nil {
		return "", nil, fmt.Errorf("account %s: %w", guid, err)
	}
	if acc.CommoditySCU, err = strconv.Atoi(scu); err != nil {
		return "", nil, fmt.Errorf("account %s: %w: commodity-scu %q", guid, ErrAmountSyntax, scu)
	}
	return parentGUID, acc, nil
}

// resolveCommodity reads the (space, id) reference below el and resolves it
// against the commodities declared at the top of the book.
func (p *parser) resolveCommodity(el *etree.Element) (*Commodity, error) {
	space, err := childText(el, nsCmdty, "space")
	if err != nil {
		return nil, err
	}
	id, err := childText(el, nsCmdty, "id")
	if err != nil {
		return nil, err
	}
	comm, ok := p.commodities[commodityKey{space, id}]
	if !ok {
		return nil, fmt.Errorf("%w: commodity %s:%s", ErrUnknownReference, space, id)
	}
	return comm, nil
}

func (p *parser) transaction(el *etree.Element) (*Transaction, error) {
	guid, err := childText(el, nsTrn, "id")
	if err != nil {
		return nil, err
	}
	trn := &Transaction{GUID: guid}

	currEl := findChild(el, nsTrn, "currency")
	if currEl == nil {
		return nil, fmt.Errorf("transaction %s: %w: trn:currency", guid, ErrMissingElement)
	}
	if trn.Currency, err = p.resolveCommodity(currEl); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", guid, err)
	}
	if trn.DatePosted, err = p.timestamp(el, nsTrn, "date-posted"); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", guid, err)
	}
	if trn.DateEntered, err = p.timestamp(el, nsTrn, "date-entered"); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", guid, err)
	}
	if trn.Description, err = childText(el, nsTrn, "description"); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", guid, err)
	}
	if trn.Slots, err = p.slots(findChild(el, nsTrn, "slots")); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", guid, err)
	}

	if splitsEl := findChild(el, nsTrn, "splits"); splitsEl != nil {
		for _, se := range findChildren(splitsEl, nsTrn, "split") {
			split, err := p.split(se, trn)
			if err != nil {
				return nil, fmt.Errorf("transaction %s: %w", guid, err)
			}
			trn.Splits = append(trn.Splits, split)
		}
	}
	return trn, nil
}

// split builds one split and cross-registers it: the caller appends it to the
// transaction, and the split is appended to its account here.
func (p *parser) split(el *etree.Element, trn *Transaction) (*Split, error) {
	guid, err := childText(el, nsSplit, "id")
	if err != nil {
		return nil, err
	}
	split := &Split{GUID: guid, Transaction: trn}

	if m := findChild(el, nsSplit, "memo"); m != nil {
		split.Memo = m.Text()
	}
	if split.ReconciledState, err = childText(el, nsSplit, "reconciled-state"); err != nil {
		return nil, fmt.Errorf("split %s: %w", guid, err)
	}
	if rd := findChild(el, nsSplit, "reconcile-date"); rd != nil {
		text, err := childText(rd, nsTS, "date")
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", guid, err)
		}
		if split.ReconcileDate, err = p.parseDate(text); err != nil {
			return nil, fmt.Errorf("split %s: %w", guid, err)
		}
	}

	value, err := childText(el, nsSplit, "value")
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", guid, err)
	}
	if split.Value, err = ParseAmount(value); err != nil {
		return nil, fmt.Errorf("split %s: value: %w", guid, err)
	}
	quantity, err := childText(el, nsSplit, "quantity")
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", guid, err)
	}
	if split.Quantity, err = ParseAmount(quantity); err != nil {
		return nil, fmt.Errorf("split %s: quantity: %w", guid, err)
	}

	accountGUID, err := childText(el, nsSplit, "account")
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", guid, err)
	}
	account, ok := p.accounts[accountGUID]
	if !ok {
		return nil, fmt.Errorf("split %s: %w: account %s", guid, ErrUnknownReference, accountGUID)
	}
	split.Account = account
	if split.Slots, err = p.slots(findChild(el, nsSplit, "slots")); err != nil {
		return nil, fmt.Errorf("split %s: %w", guid, err)
	}
	account.Splits = append(account.Splits, split)
	return split, nil
}

// timestamp reads the ts:date text nested under the named child of el.
func (p *parser) timestamp(el *etree.Element, space, tag string) (time.Time, error) {
	parent := findChild(el, space, tag)
	if parent == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingElement, tag)
	}
	text, err := childText(parent, nsTS, "date")
	if err != nil {
		return time.Time{}, err
	}
	return p.parseDate(text)
}

// findChild returns the first child element of e matching the namespace URI
// and local tag, or nil. An empty space matches elements without a namespace.
func findChild(e *etree.Element, space, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Tag == tag && c.NamespaceURI() == space {
			return c
		}
	}
	return nil
}

// findChildren returns all child elements of e matching the namespace URI and
// local tag, in document order.
func findChildren(e *etree.Element, space, tag string) []*etree.Element {
	var matches []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == tag && c.NamespaceURI() == space {
			matches = append(matches, c)
		}
	}
	return matches
}

// childText returns the text of the first child matching (space, tag), or
// ErrMissingElement when there is none.
func childText(e *etree.Element, space, tag string) (string, error) {
	c := findChild(e, space, tag)
	if c == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingElement, tag)
	}
	return c.Text(), nil
}
