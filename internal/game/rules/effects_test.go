package rules

import (
	"testing"

	"github.com/uecda/uecda-server-go/internal/card"
)

func analyze(t *testing.T, symbols string) Analysis {
	t.Helper()
	a := Classify(card.SetOf(symbols), nil)
	if a.Shape == ShapeInvalid {
		t.Fatalf("play %s is invalid", symbols)
	}
	return a
}

func TestRevolutionTriggers(t *testing.T) {
	empty := FieldState{Shape: ShapePass}

	if e := ComputeEffects(empty, analyze(t, "S5,H5,D5,C5"), DefaultRules()); !e.Revolution {
		t.Error("four of a kind should trigger a revolution")
	}
	if e := ComputeEffects(empty, analyze(t, "S5,S6,S7,S8,S9"), DefaultRules()); !e.Revolution {
		t.Error("five-card run should trigger a revolution")
	}
	if e := ComputeEffects(empty, analyze(t, "S5,H5,D5"), DefaultRules()); e.Revolution {
		t.Error("triple should not trigger a revolution")
	}
	if e := ComputeEffects(empty, analyze(t, "S5,S6,S7,S8"), DefaultRules()); e.Revolution {
		t.Error("four-card run should not trigger a revolution")
	}

	off := DefaultRules()
	off.Revolution = false
	if e := ComputeEffects(empty, analyze(t, "S5,H5,D5,C5"), off); e.Revolution {
		t.Error("revolution should be inert when disabled")
	}
}

func TestEightCut(t *testing.T) {
	empty := FieldState{Shape: ShapePass}

	e := ComputeEffects(empty, analyze(t, "S8"), DefaultRules())
	if !e.EightCut || !e.ClearField {
		t.Fatalf("S8 should cut the field: %+v", e)
	}
	// The eight inside a run counts too.
	e = ComputeEffects(empty, analyze(t, "H7,H8,H9"), DefaultRules())
	if !e.EightCut {
		t.Error("run covering 8 should cut the field")
	}
	// A run where the joker covers the 8.
	e = ComputeEffects(empty, analyze(t, "H7,H9,Jo"), DefaultRules())
	if !e.EightCut {
		t.Error("joker filling the 8 slot should still cut the field")
	}
	if e = ComputeEffects(empty, analyze(t, "S9"), DefaultRules()); e.EightCut {
		t.Error("S9 should not cut the field")
	}
}

func TestElevenBackIsOptIn(t *testing.T) {
	empty := FieldState{Shape: ShapePass}

	if e := ComputeEffects(empty, analyze(t, "SJ"), DefaultRules()); e.ElevenBack {
		t.Error("eleven-back should default off")
	}
	on := DefaultRules()
	on.ElevenBack = true
	if e := ComputeEffects(empty, analyze(t, "SJ"), on); !e.ElevenBack {
		t.Error("eleven-back should trigger on a jack when enabled")
	}
}

func TestLockArming(t *testing.T) {
	field := FieldState{
		Shape: ShapeSingle,
		Size:  1,
		Rank:  card.RankSeven,
		Suits: card.MaskOf(card.SuitSpade),
	}

	e := ComputeEffects(field, analyze(t, "S9"), DefaultRules())
	if !e.LockArmed || e.NewLock != card.MaskOf(card.SuitSpade) {
		t.Fatalf("same-suit follow should arm the lock: %+v", e)
	}

	if e = ComputeEffects(field, analyze(t, "H9"), DefaultRules()); e.LockArmed {
		t.Error("different suit should not arm the lock")
	}

	// Pair over pair: the lock narrows to the shared suits.
	pairField := FieldState{
		Shape: ShapeGroup,
		Size:  2,
		Rank:  card.RankSeven,
		Suits: card.MaskOf(card.SuitSpade) | card.MaskOf(card.SuitHeart),
	}
	e = ComputeEffects(pairField, analyze(t, "S9,H9"), DefaultRules())
	if !e.LockArmed || e.NewLock != pairField.Suits {
		t.Fatalf("matching pair suits should arm the lock: %+v", e)
	}
}

func TestSpadeThreeReturnClears(t *testing.T) {
	field := FieldState{Shape: ShapeJokerSingle, Size: 1, JokerSingle: true}
	e := ComputeEffects(field, analyze(t, "S3"), DefaultRules())
	if !e.SpadeThreeReturn || !e.ClearField {
		t.Fatalf("spade 3 on a lone joker should clear the field: %+v", e)
	}
}

func TestOptionalVariants(t *testing.T) {
	empty := FieldState{Shape: ShapePass}

	r := DefaultRules()
	r.FiveSkip = true
	r.SixReverse = true

	if e := ComputeEffects(empty, analyze(t, "S5,H5"), r); e.SkipSeats != 2 {
		t.Errorf("pair of fives should skip two seats, got %d", e.SkipSeats)
	}
	if e := ComputeEffects(empty, analyze(t, "S6"), r); !e.Reverse {
		t.Error("a six should reverse the direction when enabled")
	}
	if e := ComputeEffects(empty, analyze(t, "S5"), DefaultRules()); e.SkipSeats != 0 || e.Reverse {
		t.Error("variants should be inert by default")
	}
}
