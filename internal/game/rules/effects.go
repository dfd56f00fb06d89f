package rules

import "github.com/uecda/uecda-server-go/internal/card"

// Sizes that trigger a revolution.
const (
	revolutionGroupSize    = 4
	revolutionSequenceSize = 5
)

// SennichiteThreshold is the consecutive-pass count that forces the
// field clear.
const SennichiteThreshold = 20

// EffectSet is the collected consequences of one legal, non-pass play.
type EffectSet struct {
	Revolution       bool
	EightCut         bool
	ElevenBack       bool
	LockArmed        bool
	NewLock          card.SuitMask
	SpadeThreeReturn bool
	SkipSeats        int
	Reverse          bool
	ClearField       bool
}

// ComputeEffects derives the special-rule consequences of applying a
// legal play to the field. The field passed in is the state before the
// play takes effect.
func ComputeEffects(field FieldState, a Analysis, r ActiveRules) EffectSet {
	var e EffectSet

	if r.Revolution {
		if (a.Shape == ShapeGroup && a.Size >= revolutionGroupSize) ||
			(a.Shape == ShapeSequence && a.Size >= revolutionSequenceSize) {
			e.Revolution = true
		}
	}

	if r.EightCut && a.HasRank(card.RankEight) {
		e.EightCut = true
		e.ClearField = true
	}

	if r.ElevenBack && a.HasRank(card.RankJack) {
		e.ElevenBack = true
	}

	// A suit lock arms when the play's suits fit inside the previous
	// play's suits; neither side may be Joker-only.
	if r.Lock && !field.Empty() && field.Suits != 0 && a.Suits != 0 &&
		a.Suits.SubsetOf(field.Suits) {
		e.LockArmed = true
		e.NewLock = a.Suits & field.Suits
	}

	if r.SpadeThreeReturn && field.JokerSingle && isSpadeThreeSingle(a) {
		e.SpadeThreeReturn = true
		e.ClearField = true
	}

	if r.FiveSkip {
		e.SkipSeats = a.CountRank(card.RankFive)
	}
	if r.SixReverse && a.HasRank(card.RankSix) {
		e.Reverse = true
	}

	return e
}
