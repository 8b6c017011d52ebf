package gnucashxml

import (
	"iter"
	"slices"
	"sort"
)

// TreeEntry is one step of an account tree walk. Children is a snapshot of
// the direct children: reordering it before the walk resumes steers the
// remaining traversal, and setting an entry to nil skips that subtree.
// Splits is the account's own split list and must not be modified.
type TreeEntry struct {
	Account  *Account
	Children []*Account
	Splits   []*Split
}

// Walk traverses the subtree rooted at a breadth-first: an account is visited
// before its descendants, siblings in child-list order. The sequence is lazy
// and can be ranged over any number of times.
func (a *Account) Walk() iter.Seq[TreeEntry] {
	return func(yield func(TreeEntry) bool) {
		queue := []*Account{a}
		for len(queue) > 0 {
			acc := queue[0]
			queue = queue[1:]
			children := slices.Clone(acc.Children)
			if !yield(TreeEntry{Account: acc, Children: children, Splits: acc.Splits}) {
				return
			}
			for _, child := range children {
				if child != nil {
					queue = append(queue, child)
				}
			}
		}
	}
}

// AllSplits collects every split posted anywhere in the subtree rooted at a,
// sorted by the posting date of the owning transaction. The sort is stable,
// so splits of equally dated transactions keep their account-insertion order.
func (a *Account) AllSplits() []*Split {
	var all []*Split
	for entry := range a.Walk() {
		all = append(all, entry.Splits...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Before(all[j])
	})
	return all
}

// Walk traverses the book's whole account tree. See Account.Walk.
func (b *Book) Walk() iter.Seq[TreeEntry] {
	return b.RootAccount.Walk()
}

// FindAccount returns the first account with the given name in walk order,
// or nil when no account has that name.
func (b *Book) FindAccount(name string) *Account {
	for entry := range b.Walk() {
		if entry.Account.Name == name {
			return entry.Account
		}
	}
	return nil
}
