package game

// FeedbackRule decides how the letters of a submitted row are coloured.
type FeedbackRule int

const (
	// FeedbackSimple marks a letter MISSING if it does not occur in the
	// solution, SOLVED if it matches the position, and AVAILABLE otherwise.
	// Repeated letters are not rationed: every non-matching occurrence of a
	// letter present in the solution is AVAILABLE.
	FeedbackSimple FeedbackRule = iota

	// FeedbackStrict is the classic two-pass rule. Exact matches are SOLVED
	// first, then a non-matching letter is AVAILABLE only while unmatched
	// copies of it remain in the solution, and MISSING after that.
	FeedbackStrict
)

func (r FeedbackRule) String() string {
	if r == FeedbackStrict {
		return "strict"
	}
	return "simple"
}

func (r FeedbackRule) score(solution, guess []rune) []TileState {
	if r == FeedbackStrict {
		return scoreStrict(solution, guess)
	}
	return scoreSimple(solution, guess)
}

func scoreSimple(solution, guess []rune) []TileState {
	res := make([]TileState, len(guess))
	for i, c := range guess {
		switch {
		case !containsRune(solution, c):
			res[i] = TileMissing
		case solution[i] == c:
			res[i] = TileSolved
		default:
			res[i] = TileAvailable
		}
	}
	return res
}

// scoreStrict implements the two-pass rule.
//
// Pass 1:
//   - Mark exact matches SOLVED.
//   - Count the remaining (unmatched) solution letters.
//
// Pass 2:
//   - For each other guess letter: AVAILABLE while a remaining count exists
//     (and decrement it), MISSING otherwise.
func scoreStrict(solution, guess []rune) []TileState {
	res := make([]TileState, len(guess))
	counts := make(map[rune]int, len(solution))

	for i, c := range guess {
		if solution[i] == c {
			res[i] = TileSolved
		} else {
			counts[solution[i]]++
		}
	}

	for i, c := range guess {
		if res[i] == TileSolved {
			continue
		}
		if counts[c] > 0 {
			res[i] = TileAvailable
			counts[c]--
		} else {
			res[i] = TileMissing
		}
	}
	return res
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}
