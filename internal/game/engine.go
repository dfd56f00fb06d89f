package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/uecda/uecda-server-go/internal/card"
	"github.com/uecda/uecda-server-go/internal/game/rules"
	"github.com/uecda/uecda-server-go/internal/journal"
	"github.com/uecda/uecda-server-go/internal/protocol"
)

// Transport carries frames between the engine and the five seats. The
// engine is single-threaded; a Transport may parallelize the fan-out of
// Broadcast but must not return before every seat's write has.
type Transport interface {
	// Query sends the prompt frame to one seat and waits for its
	// reply. A seat that exceeds its turn deadline is reported as a
	// zero (all-pass) table, not an error; errors are transport
	// failures and abort the session.
	Query(ctx context.Context, seat int, t protocol.Table) (protocol.Table, error)

	// Broadcast delivers one frame per seat and returns once all five
	// writes have completed.
	Broadcast(ctx context.Context, frames [NumSeats]protocol.Table) error
}

// Options configures one session of games.
type Options struct {
	SessionID string
	NumGames  int
	Seed      int64 // 0 seeds from the wall clock
	Rules     rules.ActiveRules
	ShowHands bool
}

// Engine drives the match state machine for one five-player session.
// All state mutation happens on the caller's goroutine; only the
// Transport touches the network.
type Engine struct {
	opts      Options
	names     [NumSeats]string
	transport Transport
	journal   *journal.Writer
	log       *zap.Logger
	rng       *rand.Rand

	session *SessionState
	match   *MatchState
}

// NewEngine builds an engine for the given seats.
func NewEngine(opts Options, names [NumSeats]string, transport Transport, jw *journal.Writer, logger *zap.Logger) *Engine {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		opts:      opts,
		names:     names,
		transport: transport,
		journal:   jw,
		log:       logger,
		rng:       rand.New(rand.NewSource(seed)),
		session:   NewSessionState(opts.NumGames),
	}
}

// Session exposes the running session state, for tests and reporting.
func (e *Engine) Session() *SessionState {
	return e.session
}

// RunSession plays the configured number of games and reports the
// final standings.
func (e *Engine) RunSession(ctx context.Context) error {
	players := make([]journal.Player, NumSeats)
	for seat := range players {
		players[seat] = journal.Player{ID: seat, Name: e.names[seat]}
	}
	e.journal.SessionStart(e.opts.SessionID, players)

	for g := 1; g <= e.session.TotalGames; g++ {
		if err := e.runGame(ctx, g); err != nil {
			return fmt.Errorf("game %d: %w", g, err)
		}
		e.session.GamesPlayed++
	}

	points := make(map[string]int, NumSeats)
	for seat, p := range e.session.Points {
		points[strconv.Itoa(seat)] = p
	}
	ranking := make([]int, NumSeats)
	for seat := range ranking {
		ranking[seat] = seat
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return e.session.Points[ranking[i]] > e.session.Points[ranking[j]]
	})
	e.journal.SessionEnd(e.session.GamesPlayed, points, ranking)
	e.log.Info("session complete",
		zap.Int("games", e.session.GamesPlayed),
		zap.Ints("ranking", ranking),
	)
	return nil
}

func (e *Engine) runGame(ctx context.Context, g int) error {
	m := NewMatchState()
	e.match = m
	e.deal(m)
	m.Active = e.firstSeat(m, g)

	e.log.Info("game started",
		zap.Int("game", g),
		zap.Int("first_seat", m.Active),
	)
	if e.opts.ShowHands {
		e.log.Info("hands dealt", zap.Any("hands", e.handsMap(m)))
	} else {
		e.log.Debug("hands dealt", zap.Any("hands", e.handsMap(m)))
	}
	e.journal.GameStart(g, e.handsMap(m), e.ranksMap(), m.Active)

	if err := e.sendHandSnapshots(ctx, g, m); err != nil {
		return err
	}
	if e.opts.Rules.CardExchange && g > 1 {
		e.exchange(m, g)
		if err := e.sendHandSnapshots(ctx, g, m); err != nil {
			return err
		}
	}

	for m.FinishedCount() < NumSeats-1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.playTurn(ctx, g, m); err != nil {
			return err
		}
	}

	// The last seat standing is the daihinmin.
	for seat := range m.Hands {
		if !m.Finished[seat] {
			if err := m.MarkFinished(seat); err != nil {
				return err
			}
		}
	}

	e.score(m)
	e.journal.GameEnd(g, append([]int(nil), m.FinishOrder...), e.ranksMap())
	e.log.Info("game finished",
		zap.Int("game", g),
		zap.Ints("finish_order", m.FinishOrder),
	)
	return e.sendResultFrame(ctx, g, m)
}

func (e *Engine) playTurn(ctx context.Context, g int, m *MatchState) error {
	m.Turn++
	seat := m.Active

	reply, err := e.transport.Query(ctx, seat, e.queryFrame(g, m, seat))
	if err != nil {
		return fmt.Errorf("query seat %d: %w", seat, err)
	}

	marked := reply.Marked()
	analysis, jokerFor, verdict := e.evaluate(m, seat, marked)

	if verdict.Legal && !verdict.Pass {
		if err := e.applyPlay(g, m, seat, marked, analysis, jokerFor); err != nil {
			return err
		}
	} else {
		if !verdict.Legal {
			e.log.Debug("illegal play forced to pass",
				zap.Int("seat", seat),
				zap.String("cards", marked.Format()),
				zap.String("reason", verdict.Reason),
			)
		}
		e.applyPass(g, m, seat)
	}

	if err := m.CheckConservation(); err != nil {
		return err
	}
	return e.broadcastTurn(ctx, g, m, seat)
}

// evaluate resolves the marked cells against the seat's hand. A marked
// position the seat does not hold is the Joker standing in for it; more
// than one such position, or one without a Joker in hand, fails
// ownership.
func (e *Engine) evaluate(m *MatchState, seat int, marked card.Set) (rules.Analysis, *card.Card, rules.ValidationResult) {
	hand := m.Hands[seat]
	var missing []card.Card
	for _, c := range marked.Cards() {
		if c.Joker {
			if !hand.HasJoker() {
				return rules.Analysis{Shape: rules.ShapeInvalid}, nil,
					rules.ValidationResult{Reason: "joker not in hand"}
			}
			continue
		}
		if !hand.Contains(c) {
			missing = append(missing, c)
		}
	}

	var jokerFor *card.Card
	switch {
	case len(missing) == 0:
	case len(missing) == 1 && hand.HasJoker() && !marked.HasJoker():
		jokerFor = &missing[0]
	default:
		return rules.Analysis{Shape: rules.ShapeInvalid}, nil,
			rules.ValidationResult{Reason: fmt.Sprintf("cards not in hand: %v", missing)}
	}

	a := rules.Classify(marked, jokerFor)
	return a, jokerFor, rules.Validate(m.Field.State(), a, e.opts.Rules)
}

func (e *Engine) applyPlay(g int, m *MatchState, seat int, marked card.Set, a rules.Analysis, jokerFor *card.Card) error {
	effects := rules.ComputeEffects(m.Field.State(), a, e.opts.Rules)

	// The physical cards leaving the hand: a substituted position is
	// really the Joker.
	physical := marked.Clone()
	if jokerFor != nil {
		physical.Remove(*jokerFor)
		physical.Add(card.JokerCard())
	}
	hand := m.Hands[seat]
	for c := range physical {
		hand.Remove(c)
	}

	for c := range m.Field.LastCards {
		m.Discarded.Add(c)
	}
	m.Field.LastCards = physical
	m.Field.LastPlay = a
	m.Field.LastPlayer = seat
	m.Field.PassMask = 0
	m.Field.EightCut = false
	m.PassStreak = 0

	if effects.Revolution {
		m.Field.Revolution = !m.Field.Revolution
		e.log.Info("revolution", zap.Int("seat", seat), zap.Bool("active", m.Field.Revolution))
		e.journal.Special(g, m.Turn, "revolution", seat,
			map[string]any{"revolution": m.Field.Revolution})
	}
	if effects.ElevenBack && !m.Field.ElevenBack {
		m.Field.ElevenBack = true
		e.journal.Special(g, m.Turn, "eleven_back", seat, nil)
	}
	if effects.LockArmed && m.Field.Lock != effects.NewLock {
		m.Field.Lock = effects.NewLock
		e.log.Info("suit lock armed", zap.Int("seat", seat), zap.Stringer("suits", m.Field.Lock))
		e.journal.Special(g, m.Turn, "lock", seat,
			map[string]any{"suits": m.Field.Lock.String()})
	}
	if effects.Reverse {
		m.Direction = -m.Direction
		e.journal.Special(g, m.Turn, "six_reverse", seat, nil)
	}

	finished := hand.Empty()
	if finished {
		if err := m.MarkFinished(seat); err != nil {
			return err
		}
		e.log.Info("player finished",
			zap.Int("seat", seat),
			zap.Int("position", len(m.FinishOrder)),
		)
		e.journal.Special(g, m.Turn, "player_finish", seat,
			map[string]any{"position": len(m.FinishOrder)})
	}

	cleared := false
	if effects.ClearField {
		e.retireField(m)
		m.Field.EightCut = effects.EightCut
		if effects.EightCut {
			e.journal.Special(g, m.Turn, "eight_stop", seat, nil)
		}
		if effects.SpadeThreeReturn {
			e.journal.Special(g, m.Turn, "field_clear", seat,
				map[string]any{"reason": "spade3_return"})
		}
		cleared = true
	}

	e.journal.Turn(journal.TurnEvent{
		Game:     g,
		Turn:     m.Turn,
		Player:   seat,
		Action:   "play",
		Cards:    marked.Format(),
		CardType: a.Shape.Label(),
		Field:    m.Field.LastCards.Format(),
		Hands:    e.handsMap(m),
		State:    e.turnState(m),
	})

	if cleared {
		if finished {
			m.Active = m.NextSeat(seat)
		} else {
			m.Active = seat
		}
		return nil
	}
	e.advance(g, m, effects.SkipSeats)
	return nil
}

func (e *Engine) applyPass(g int, m *MatchState, seat int) {
	m.Field.PassMask |= 1 << uint(seat)
	m.PassStreak++

	e.journal.Turn(journal.TurnEvent{
		Game:     g,
		Turn:     m.Turn,
		Player:   seat,
		Action:   "pass",
		Cards:    "",
		CardType: rules.ShapePass.Label(),
		Field:    m.Field.LastCards.Format(),
		Hands:    e.handsMap(m),
		State:    e.turnState(m),
	})

	// Thousand-day hand: a long pass stalemate flushes the field and
	// hands the lead to the seat after the last passer.
	if e.opts.Rules.Sennichite && m.PassStreak >= rules.SennichiteThreshold {
		e.log.Warn("thousand-day hand, clearing field", zap.Int("turn", m.Turn))
		e.retireField(m)
		e.journal.Special(g, m.Turn, "field_clear", seat,
			map[string]any{"reason": "sennichite"})
		m.PassStreak = 0
		m.Active = m.NextSeat(seat)
		return
	}
	e.advance(g, m, 0)
}

// advance moves the active seat in the current direction, skipping
// finished seats. Reaching the last player's position means everyone
// else passed: the field clears and the last player leads.
func (e *Engine) advance(g int, m *MatchState, skip int) {
	steps := 1 + skip
	seat := m.Active
	for steps > 0 {
		seat = (seat + m.Direction + NumSeats) % NumSeats
		if !m.Field.Empty() && seat == m.Field.LastPlayer {
			e.retireField(m)
			e.journal.Special(g, m.Turn, "field_clear", seat,
				map[string]any{"reason": "all_passed"})
			if m.Finished[seat] {
				seat = m.NextSeat(seat)
			}
			m.Active = seat
			return
		}
		if !m.Finished[seat] {
			steps--
		}
	}
	m.Active = seat
}

// retireField moves the live field cards to the discard pile and
// clears the trick state.
func (e *Engine) retireField(m *MatchState) {
	for c := range m.Field.LastCards {
		m.Discarded.Add(c)
	}
	m.Field.Clear()
}

func (e *Engine) score(m *MatchState) {
	for place, seat := range m.FinishOrder {
		e.session.Classes[seat] = ClassRank(place)
		e.session.Points[seat] += NumSeats - place
	}
}

func (e *Engine) turnState(m *MatchState) journal.TurnState {
	return journal.TurnState{
		Revolution: m.Field.Revolution,
		ElevenBack: m.Field.ElevenBack,
		Locked:     m.Field.Lock != 0,
	}
}

func (e *Engine) handsMap(m *MatchState) map[string]string {
	out := make(map[string]string, NumSeats)
	for seat, hand := range m.Hands {
		out[strconv.Itoa(seat)] = hand.Format()
	}
	return out
}

func (e *Engine) ranksMap() map[string]string {
	out := make(map[string]string, NumSeats)
	for seat, class := range e.session.Classes {
		out[strconv.Itoa(seat)] = class.String()
	}
	return out
}
