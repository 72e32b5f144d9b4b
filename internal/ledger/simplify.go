package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Simplify reduces a set of directed debts to a near-minimal payment
// set. Net balances are computed per user, users that net to zero drop
// out, and the largest debtor is greedily matched against the largest
// creditor until both sides are exhausted.
//
// Greedy-by-magnitude is not guaranteed to hit the theoretical minimum
// transaction count, but it is deterministic, O(n log n), and behaves
// well on real groups. Ties are broken by first appearance in the
// input, so a fixed input order gives a fixed output.
//
// All input entries are assumed to share one currency; the caller
// partitions beforehand.
func Simplify(entries []*BalanceEntry) []SimplifiedDebt {
	if len(entries) == 0 {
		return nil
	}

	type netBalance struct {
		userID uuid.UUID
		amount decimal.Decimal
		seen   int
	}

	// Net per user: subtract what they owe, add what they are owed
	order := 0
	nets := make(map[uuid.UUID]*netBalance)
	track := func(userID uuid.UUID) *netBalance {
		n, ok := nets[userID]
		if !ok {
			n = &netBalance{userID: userID, amount: decimal.Zero, seen: order}
			order++
			nets[userID] = n
		}
		return n
	}
	for _, entry := range entries {
		from := track(entry.FromUserID)
		from.amount = from.amount.Sub(entry.Amount)
		to := track(entry.ToUserID)
		to.amount = to.amount.Add(entry.Amount)
	}

	// Partition; debtors carry positive magnitudes
	var creditors, debtors []*netBalance
	for _, n := range nets {
		switch {
		case n.amount.IsPositive():
			creditors = append(creditors, n)
		case n.amount.IsNegative():
			debtors = append(debtors, &netBalance{userID: n.userID, amount: n.amount.Neg(), seen: n.seen})
		}
	}

	byMagnitude := func(list []*netBalance) {
		sort.Slice(list, func(i, j int) bool {
			cmp := list[i].amount.Cmp(list[j].amount)
			if cmp != 0 {
				return cmp > 0
			}
			return list[i].seen < list[j].seen
		})
	}
	byMagnitude(creditors)
	byMagnitude(debtors)

	// Two-pointer greedy match
	var simplified []SimplifiedDebt
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		transfer := decimal.Min(debtor.amount, creditor.amount)
		if transfer.IsPositive() {
			simplified = append(simplified, SimplifiedDebt{
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     transfer,
			})
		}

		debtor.amount = debtor.amount.Sub(transfer)
		creditor.amount = creditor.amount.Sub(transfer)

		if debtor.amount.IsZero() {
			i++
		}
		if creditor.amount.IsZero() {
			j++
		}
	}

	return simplified
}
