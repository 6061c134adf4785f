// Package calculator computes expense splits and derives balances.
// It is pure: no storage, no clocks, no side effects.
package calculator

import (
	"math"
	"sort"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
)

// PercentSumTolerance is the allowed deviation, in percentage points, of a
// percentage split's sum from 100. It absorbs decimal representation noise
// without accepting genuinely wrong inputs.
const PercentSumTolerance = 0.01

// Share is one participant's computed share of an expense.
type Share struct {
	UserID      int64
	AmountCents int64

	// Percentage is the source percentage for percentage splits, nil otherwise.
	Percentage *float64
}

// Spec describes how an expense is divided. It is a closed set: Equal or
// Percentage. Kind and payload are inseparable, so an equal split can never
// carry percentages and vice versa.
type Spec interface {
	participantIDs() []int64
}

// Equal splits the amount evenly among the listed participants.
type Equal struct {
	Participants []int64
}

func (e Equal) participantIDs() []int64 {
	ids := make([]int64, len(e.Participants))
	copy(ids, e.Participants)
	return ids
}

// Percentage splits the amount by a caller-supplied percentage per
// participant. The percentages must sum to 100 within PercentSumTolerance.
type Percentage struct {
	Shares map[int64]float64
}

func (p Percentage) participantIDs() []int64 {
	ids := make([]int64, 0, len(p.Shares))
	for id := range p.Shares {
		ids = append(ids, id)
	}
	return ids
}

// Split divides totalCents among the spec's participants so that the share
// amounts sum to totalCents exactly. members is the owning group's
// membership; the payer and every participant must belong to it.
//
// Leftover minor units are distributed one cent at a time in ascending
// user-id order, so identical inputs always produce identical shares.
//
// On any validation failure no shares are returned and nothing is mutated.
func Split(totalCents, payerID int64, members []int64, spec Spec) ([]Share, error) {
	if totalCents <= 0 {
		return nil, models.Invalid("expense amount must be positive, got %s", money.Format(totalCents))
	}

	memberSet := make(map[int64]bool, len(members))
	for _, id := range members {
		memberSet[id] = true
	}
	if !memberSet[payerID] {
		return nil, models.Invalid("payer %d is not a member of the group", payerID)
	}

	participants := spec.participantIDs()
	if len(participants) == 0 {
		return nil, models.Invalid("at least one participant is required")
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i] < participants[j] })
	for i, id := range participants {
		if i > 0 && participants[i-1] == id {
			return nil, models.Invalid("duplicate participant %d", id)
		}
		if !memberSet[id] {
			return nil, models.Invalid("participant %d is not a member of the group", id)
		}
	}

	switch s := spec.(type) {
	case Equal:
		return splitEqual(totalCents, participants), nil
	case Percentage:
		return splitPercentage(totalCents, participants, s.Shares)
	default:
		return nil, models.Invalid("unknown split kind")
	}
}

// splitEqual divides totalCents by integer division and hands the remainder
// out one cent at a time, lowest user id first.
func splitEqual(totalCents int64, participants []int64) []Share {
	n := int64(len(participants))
	base := totalCents / n
	rem := totalCents - base*n

	shares := make([]Share, len(participants))
	for i, id := range participants {
		amount := base
		if int64(i) < rem {
			amount++
		}
		shares[i] = Share{UserID: id, AmountCents: amount}
	}
	return shares
}

// splitPercentage computes floor(total * pct) per participant using integer
// basis-point arithmetic, then corrects the sum back to totalCents one cent
// at a time, ascending user id, among the shares the flooring shorted.
func splitPercentage(totalCents int64, participants []int64, pcts map[int64]float64) ([]Share, error) {
	var sum float64
	for _, id := range participants {
		p := pcts[id]
		if p < 0 || p > 100 {
			return nil, models.Invalid("percentage for user %d out of range [0, 100]: %g", id, p)
		}
		sum += p
	}
	if math.Abs(sum-100) > PercentSumTolerance {
		return nil, models.Invalid("percentages sum to %g, expected 100", sum)
	}

	shares := make([]Share, len(participants))
	floored := make([]bool, len(participants))
	var assigned int64
	for i, id := range participants {
		p := pcts[id]
		// Basis points keep the money math integral.
		bp := int64(math.Round(p * 100))
		raw, err := money.CheckedMul(totalCents, bp)
		if err != nil {
			return nil, err
		}
		amount := raw / 10000
		floored[i] = raw%10000 != 0
		src := p
		shares[i] = Share{UserID: id, AmountCents: amount, Percentage: &src}
		if assigned, err = money.CheckedAdd(assigned, amount); err != nil {
			return nil, err
		}
	}

	// Correct rounding drift so the shares sum exactly to the total.
	// Extra cents go only to shares that lost a fraction to flooring, so
	// a participant whose share was exact (a 0% participant in
	// particular) is never charged a corrective cent.
	rem := totalCents - assigned
	if rem > 0 {
		idx := correctable(shares, floored, true)
		for i := 0; rem > 0; i = (i + 1) % len(idx) {
			shares[idx[i]].AmountCents++
			rem--
		}
	}
	// Negative drift is taken back from exact shares first; flooring
	// already shorted the others.
	for rem < 0 {
		for _, j := range correctable(shares, floored, false) {
			if rem == 0 {
				break
			}
			shares[j].AmountCents--
			rem++
		}
	}
	return shares, nil
}

// correctable returns the share indexes eligible for drift correction, in
// ascending user-id order. adding selects floored shares; shrinking selects
// exact, still-positive shares. Either way it falls back to the remaining
// candidates rather than returning an empty set.
func correctable(shares []Share, floored []bool, adding bool) []int {
	var idx, rest []int
	for i := range shares {
		if adding {
			if floored[i] {
				idx = append(idx, i)
			} else {
				rest = append(rest, i)
			}
			continue
		}
		if shares[i].AmountCents == 0 {
			continue
		}
		if !floored[i] {
			idx = append(idx, i)
		} else {
			rest = append(rest, i)
		}
	}
	if len(idx) == 0 {
		return rest
	}
	return idx
}
