package reconstruct

import (
	"lgpsreport/pkg/contracts/domain"
)

// State is the assembler's position in the line sequence together with the
// currently bound entity and category. A State with a nil Entity is SEEKING;
// otherwise it is IN_ENTITY.
type State struct {
	Entity   *string
	Category *string
	Cursor   int
}

// Bound reports whether an entity is currently bound.
func (s State) Bound() bool {
	return s.Entity != nil
}

// Outcome describes what a single Step did.
type Outcome int

const (
	// OutcomeDone means the cursor reached the end of the input.
	OutcomeDone Outcome = iota
	// OutcomeBound means a header/category pair bound a new entity.
	OutcomeBound
	// OutcomeRepeatedHeader means a header/category pair repeating the bound
	// entity was skipped.
	OutcomeRepeatedHeader
	// OutcomeEmitted means a metric/value pair produced a record.
	OutcomeEmitted
	// OutcomeDroppedUnbound means a pair was consumed before any header.
	OutcomeDroppedUnbound
	// OutcomeOddTail means a single unpaired line was left and dropped.
	OutcomeOddTail
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeBound:
		return "bound"
	case OutcomeRepeatedHeader:
		return "repeated_header"
	case OutcomeEmitted:
		return "emitted"
	case OutcomeDroppedUnbound:
		return "dropped_unbound"
	case OutcomeOddTail:
		return "odd_tail"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further Step can make progress.
func (o Outcome) Terminal() bool {
	return o == OutcomeDone || o == OutcomeOddTail
}

// AssemblyStats counts the outcomes of a full assembly run.
type AssemblyStats struct {
	HeadersBound    int
	RepeatedHeaders int
	DroppedPairs    int
	OddTail         bool
	Records         int
}

// Assembler is the record-assembly state machine.
type Assembler struct {
	classifier Classifier
}

// NewAssembler creates an assembler. Nil predicates in c fall back to
// IsEntityHeader and IsCategoryTag.
func NewAssembler(c Classifier) *Assembler {
	return &Assembler{classifier: c.withDefaults()}
}

// Step applies one transition at s.Cursor and returns the next state, the
// emitted record (nil unless the outcome is OutcomeEmitted) and the outcome.
// Step never rewinds: every non-terminal outcome advances the cursor by two.
func (a *Assembler) Step(s State, lines []string) (State, *domain.FlatRecord, Outcome) {
	i := s.Cursor
	remaining := len(lines) - i
	if remaining <= 0 {
		return s, nil, OutcomeDone
	}

	line := lines[i]
	nextIsCategory := remaining > 1 && a.classifier.IsCategory(lines[i+1])

	// new or changed header followed by its category
	if a.classifier.IsHeader(line) && (!s.Bound() || line != *s.Entity) && nextIsCategory {
		entity, category := line, lines[i+1]
		return State{Entity: &entity, Category: &category, Cursor: i + 2}, nil, OutcomeBound
	}

	// the bound header repeated for another metric group
	if s.Bound() && line == *s.Entity && nextIsCategory {
		s.Cursor = i + 2
		return s, nil, OutcomeRepeatedHeader
	}

	if remaining < 2 {
		s.Cursor = len(lines)
		return s, nil, OutcomeOddTail
	}

	next := s
	next.Cursor = i + 2
	if !s.Bound() {
		return next, nil, OutcomeDroppedUnbound
	}
	rec := &domain.FlatRecord{
		Entity:   *s.Entity,
		Category: s.Category,
		Metric:   line,
		Value:    lines[i+1],
	}
	return next, rec, OutcomeEmitted
}

// Assemble runs the state machine over lines from a fresh SEEKING state.
func (a *Assembler) Assemble(lines []string) ([]domain.FlatRecord, AssemblyStats) {
	var (
		records []domain.FlatRecord
		stats   AssemblyStats
		state   State
	)
	for {
		var (
			rec     *domain.FlatRecord
			outcome Outcome
		)
		state, rec, outcome = a.Step(state, lines)
		switch outcome {
		case OutcomeBound:
			stats.HeadersBound++
		case OutcomeRepeatedHeader:
			stats.RepeatedHeaders++
		case OutcomeDroppedUnbound:
			stats.DroppedPairs++
		case OutcomeOddTail:
			stats.OddTail = true
		case OutcomeEmitted:
			records = append(records, *rec)
		}
		if outcome.Terminal() {
			break
		}
	}
	stats.Records = len(records)
	return records, stats
}

// Assemble runs the default state machine over lines.
func Assemble(lines []string) []domain.FlatRecord {
	records, _ := NewAssembler(DefaultClassifier()).Assemble(lines)
	return records
}
