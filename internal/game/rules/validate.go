package rules

import (
	"fmt"

	"github.com/uecda/uecda-server-go/internal/card"
)

// FieldState is the view of the field a legality check needs. Shape is
// ShapePass while the field is clear.
type FieldState struct {
	Shape       Shape
	Size        int
	Rank        card.Rank
	Suits       card.SuitMask
	Lock        card.SuitMask // 0 = unlocked
	JokerSingle bool          // last play was the lone Joker
	Inverted    bool          // effective direction (revolution XOR eleven-back)
}

// Empty reports whether the field is clear.
func (f FieldState) Empty() bool {
	return f.Shape == ShapePass
}

// ActiveRules is the switchable rule set for a session.
type ActiveRules struct {
	Revolution       bool
	EightCut         bool
	Lock             bool
	CardExchange     bool
	SpadeThreeReturn bool
	Sennichite       bool
	ElevenBack       bool
	FiveSkip         bool
	SixReverse       bool
}

// DefaultRules enables the required rules and leaves the optional ones
// off.
func DefaultRules() ActiveRules {
	return ActiveRules{
		Revolution:       true,
		EightCut:         true,
		Lock:             true,
		CardExchange:     true,
		SpadeThreeReturn: true,
		Sennichite:       true,
	}
}

// ValidationResult is the outcome of checking a play. Illegal plays are
// values, not errors: the caller converts them into forced passes.
type ValidationResult struct {
	Legal  bool
	Pass   bool
	Reason string
}

func legal() ValidationResult {
	return ValidationResult{Legal: true}
}

func illegal(format string, args ...any) ValidationResult {
	return ValidationResult{Reason: fmt.Sprintf(format, args...)}
}

// isSpadeThreeSingle reports whether the play is the natural Spade 3
// alone (a Joker standing in for it does not count).
func isSpadeThreeSingle(a Analysis) bool {
	return a.Shape == ShapeSingle && !a.Joker &&
		a.Rank == card.RankThree && a.Suits == card.MaskOf(card.SuitSpade)
}

// Validate checks a classified play against the field. Ownership is
// checked by the caller, which holds the hand.
func Validate(field FieldState, a Analysis, r ActiveRules) ValidationResult {
	if a.IsPass() {
		return ValidationResult{Legal: true, Pass: true}
	}
	if a.Shape == ShapeInvalid {
		return illegal("unrecognized combination of %d cards", a.Size)
	}
	if field.Empty() {
		return legal()
	}

	// Spade-3 return: beats a lone Joker regardless of strength, but a
	// suit lock still applies.
	if field.JokerSingle {
		if r.SpadeThreeReturn && isSpadeThreeSingle(a) {
			if field.Lock != 0 && !a.NonJokerSuits.SubsetOf(field.Lock) {
				return illegal("suit lock %s excludes the spade 3", field.Lock)
			}
			return legal()
		}
		return illegal("only the spade 3 beats a lone joker")
	}

	// The lone Joker beats any single.
	if a.Shape == ShapeJokerSingle {
		if field.Shape == ShapeSingle {
			return legal()
		}
		return illegal("joker alone only follows a single")
	}

	if a.Shape != field.Shape || a.Size != field.Size {
		return illegal("play %s(%d) does not follow field %s(%d)",
			a.Shape, a.Size, field.Shape, field.Size)
	}
	if field.Lock != 0 && !a.NonJokerSuits.SubsetOf(field.Lock) {
		return illegal("suit lock %s excludes suits %s", field.Lock, a.NonJokerSuits)
	}
	if rankStrength(a.Rank, field.Inverted) <= rankStrength(field.Rank, field.Inverted) {
		return illegal("%s does not beat %s", a.Rank, field.Rank)
	}
	return legal()
}
