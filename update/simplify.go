// ABOUTME: Folds a transaction's raw update stream into at most one structural and one change record per item
// ABOUTME: Cancels no-ops, turns delete+insert into moves and unions attribute roles

package update

import "fmt"

// Simplify groups list by item and reduces each item's records to its net effect:
// at most one structural record (delete, insert or cross-track move) followed by at
// most one change record. Items keep the order of their first appearance.
func Simplify(list []Update) []Update {
	var order []int

	byItem := make(map[int][]Update)
	for _, u := range list {
		if _, seen := byItem[u.Item]; !seen {
			order = append(order, u.Item)
		}

		byItem[u.Item] = append(byItem[u.Item], u)
	}

	res := make([]Update, 0, len(order))

	for _, id := range order {
		var structural, changes []Update

		for _, u := range byItem[id] {
			if u.Structural() {
				structural = append(structural, u)
			} else {
				changes = append(changes, u)
			}
		}

		merged := mergeDeleteInsert(mergeMoves(structural))
		merged = mergeChanges(merged, changes)
		res = append(res, merged...)
	}

	checkSimplified(res)

	return res
}

// Reverse returns the notifications undoing list: walked back to front, each record inverted.
func Reverse(list []Update) []Update {
	res := make([]Update, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		res = append(res, list[i].Reverse())
	}

	return res
}

// mergeMoves collapses runs of moves of one item. Consecutive moves become one
// move from the first source to the last target, and an insert followed by moves
// becomes an insert at the final target.
func mergeMoves(list []Update) []Update {
	if len(list) == 0 {
		return nil
	}

	res := make([]Update, 0, len(list))

	for _, u := range list {
		n := len(res)

		switch u.Kind {
		case KindMove:
			if n > 0 && res[n-1].Kind == KindMove {
				res[n-1] = NewMove(u.Item, res[n-1].From, u.To, u.IsClip)
				continue
			}

			if n > 0 && res[n-1].Kind == KindInsert {
				res[n-1] = NewInsert(u.Item, u.To.Timeline, u.To.Track, u.To.Pos, res[n-1].IsClip)
				continue
			}

			res = append(res, u)
		case KindDelete:
			if n > 0 && res[n-1].Kind == KindMove {
				assertf(false, "update: delete of item %d after a move in the same transaction", u.Item)

				// Observers never saw the move, the item leaves from where it started
				prev := res[n-1]
				res[n-1] = NewDelete(u.Item, prev.From.Timeline, prev.From.Track, prev.From.Pos, u.IsClip)

				continue
			}

			res = append(res, u)
		default:
			res = append(res, u)
		}
	}

	return res
}

// mergeDeleteInsert reduces a move-merged list to the item's net structural effect.
// A delete later followed by an insert is a move; a list starting with an insert and
// ending with a delete cancels out; a trailing delete drops everything before it.
func mergeDeleteInsert(list []Update) []Update {
	if len(list) == 0 {
		return nil
	}

	first, last := list[0], list[len(list)-1]
	existedBefore := first.Kind != KindInsert
	existsAfter := last.Kind != KindDelete

	switch {
	case !existedBefore && !existsAfter:
		return nil
	case !existedBefore:
		at := last.destination()
		return []Update{NewInsert(last.Item, at.Timeline, at.Track, at.Pos, isClip(list))}
	case !existsAfter:
		at := first.origin()
		return []Update{NewDelete(last.Item, at.Timeline, at.Track, at.Pos, isClip(list))}
	}

	from, to := first.origin(), last.destination()
	if from == to {
		return nil
	}

	return []Update{NewMove(last.Item, from, to, isClip(list))}
}

// mergeChanges unions the change records of one item into a single change tagged
// with the timeline the item ends up in. Changes of a deleted item are dropped.
// A move that stays on the same track keeps every row where it is, so it is
// reported as a start change instead.
func mergeChanges(structural []Update, changes []Update) []Update {
	var roles Roles

	var tl Target

	for _, c := range changes {
		roles = roles.Union(c.Roles)
		tl = c.At.Timeline
	}

	var res []Update

	if len(structural) > 0 {
		s := structural[0]

		switch s.Kind {
		case KindDelete:
			return structural
		case KindInsert:
			tl = s.At.Timeline
			res = append(res, s)
		case KindMove:
			tl = s.To.Timeline
			if s.From.Timeline == s.To.Timeline && s.From.Track == s.To.Track {
				roles = roles.Union(RoleStart)
			} else {
				res = append(res, s)
			}
		}
	}

	if roles != 0 {
		item := itemOf(structural, changes)
		res = append(res, NewChange(item, tl, roles))
	}

	return res
}

func itemOf(structural, changes []Update) int {
	if len(structural) > 0 {
		return structural[0].Item
	}

	return changes[0].Item
}

func isClip(list []Update) bool {
	for _, u := range list {
		if u.IsClip {
			return true
		}
	}

	return false
}

// checkSimplified asserts that no item has more than one structural and one change record.
func checkSimplified(list []Update) {
	if !checksEnabled {
		return
	}

	structural := make(map[int]bool)
	changed := make(map[int]bool)

	for _, u := range list {
		seen := changed
		if u.Structural() {
			seen = structural
		}

		assertf(!seen[u.Item], "update: item %d appears twice after simplification", u.Item)
		seen[u.Item] = true
	}
}

func assertf(cond bool, format string, args ...any) {
	if checksEnabled && !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
