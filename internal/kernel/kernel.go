// Package kernel mirrors each turn's working memory into a Google
// Mangle fact store so classification decisions can be audited and
// explained with Datalog queries. The kernel observes; it never feeds
// anything back into classification.
package kernel

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"go.uber.org/zap"

	"npcmind/internal/classify"
)

// schema declares the extensional predicates Record asserts plus the
// derived predicates that answer "why did this intent surface".
const schema = `
Decl turn(Id).
Decl utterance(Text).
Decl actor_role(Role).
Decl recent_intent(Name, Confidence).
Decl positive_hint(Intent, Score).
Decl negative_hint(Intent, Score).
Decl item_resolution(Outcome, Query, Item).
Decl intent_candidate(Key, Name, Confidence).
Decl suppressed(Name).
Decl rule_fired(Rule).
Decl fired_by(Key, Rule).

explained(Key, Rule) :- intent_candidate(Key, _, _), fired_by(Key, Rule).
overridden(Name) :- intent_candidate(_, Name, _), suppressed(Name).
`

// Fact is one asserted or derived Datalog fact, decoded back into Go
// values for display.
type Fact struct {
	Predicate string
	Args      []interface{}
}

func (f Fact) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		switch v := a.(type) {
		case string:
			parts[i] = fmt.Sprintf("%q", v)
		case float64:
			parts[i] = fmt.Sprintf("%g", v)
		default:
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(parts, ", "))
}

// Kernel holds the compiled schema and the fact store for the most
// recently recorded turn.
type Kernel struct {
	mu          sync.Mutex
	programInfo *analysis.ProgramInfo
	predicates  map[string]ast.PredicateSym
	store       factstore.ConcurrentFactStore
	logger      *zap.Logger
}

// New parses and analyzes the embedded schema.
func New(logger *zap.Logger) (*Kernel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return nil, fmt.Errorf("parse audit schema: %w", err)
	}
	info, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, fmt.Errorf("analyze audit schema: %w", err)
	}
	predicates := make(map[string]ast.PredicateSym, len(info.Decls))
	for sym := range info.Decls {
		predicates[sym.Symbol] = sym
	}
	return &Kernel{
		programInfo: info,
		predicates:  predicates,
		store:       factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore()),
		logger:      logger,
	}, nil
}

// Record replaces the store contents with the facts of one turn and
// evaluates the derived predicates. The previous turn is discarded;
// the audit trail covers the turn being asked about, not history.
func (k *Kernel) Record(turnID string, wm *classify.WorkingMemory) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	store := factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())
	add := func(predicate string, args ...interface{}) error {
		atom, err := k.atom(predicate, args)
		if err != nil {
			return err
		}
		store.Add(atom)
		return nil
	}

	if err := add("turn", turnID); err != nil {
		return err
	}
	for _, f := range wm.All() {
		var err error
		switch v := f.(type) {
		case classify.UserUtterance:
			err = add("utterance", v.Text)
		case classify.ActorRole:
			err = add("actor_role", v.Role)
		case classify.RecentIntentFact:
			err = add("recent_intent", v.Name, v.Confidence)
		case classify.FuzzyIntentHint:
			err = add("positive_hint", v.Intent, v.Score)
		case classify.NegativeIntentHint:
			err = add("negative_hint", v.Intent, v.Score)
		case classify.ItemResolution:
			err = add("item_resolution", v.Outcome.String(), v.Query, v.Item.Name)
		case classify.Intent:
			err = add("intent_candidate", v.SlotKey(), v.Name, v.Confidence)
		case classify.SuppressedIntent:
			err = add("suppressed", v.Name)
		case classify.RuleFired:
			err = add("rule_fired", v.Rule)
		}
		if err != nil {
			return err
		}
	}
	for _, in := range wm.Intents() {
		key := in.SlotKey()
		for _, rule := range wm.Provenance(key) {
			if err := add("fired_by", key, rule); err != nil {
				return err
			}
		}
	}

	stats, err := mengine.EvalProgramWithStats(k.programInfo, store)
	if err != nil {
		return fmt.Errorf("evaluate audit program: %w", err)
	}
	k.store = store
	k.logger.Debug("audit turn recorded",
		zap.String("turn_id", turnID),
		zap.Any("eval_stats", stats))
	return nil
}

// Facts returns the stored facts for one predicate, asserted or derived.
func (k *Kernel) Facts(predicate string) ([]Fact, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	sym, ok := k.predicates[predicate]
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}
	var out []Fact
	err := k.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = decodeTerm(arg)
		}
		out = append(out, Fact{Predicate: predicate, Args: args})
		return nil
	})
	return out, err
}

// Explanations maps each surfaced intent key to the rules that
// produced it, from the derived explained/2 predicate.
func (k *Kernel) Explanations() (map[string][]string, error) {
	facts, err := k.Facts("explained")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(facts))
	for _, f := range facts {
		key, _ := f.Args[0].(string)
		rule, _ := f.Args[1].(string)
		out[key] = append(out[key], rule)
	}
	return out, nil
}

// Overridden lists intent names that had candidates but were
// suppressed, from the derived overridden/1 predicate.
func (k *Kernel) Overridden() ([]string, error) {
	facts, err := k.Facts("overridden")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(facts))
	for _, f := range facts {
		if name, ok := f.Args[0].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (k *Kernel) atom(predicate string, args []interface{}) (ast.Atom, error) {
	sym, ok := k.predicates[predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared", predicate)
	}
	if len(args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", predicate, sym.Arity, len(args))
	}
	terms := make([]ast.BaseTerm, len(args))
	for i, raw := range args {
		switch v := raw.(type) {
		case string:
			terms[i] = ast.String(v)
		case float64:
			terms[i] = ast.Float64(v)
		case int:
			terms[i] = ast.Number(int64(v))
		default:
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: unsupported type %T", predicate, i, raw)
		}
	}
	return ast.Atom{Predicate: sym, Args: terms}, nil
}

func decodeTerm(term ast.BaseTerm) interface{} {
	constant, ok := term.(ast.Constant)
	if !ok {
		return term.String()
	}
	switch constant.Type {
	case ast.StringType, ast.NameType:
		return constant.Symbol
	case ast.NumberType:
		return constant.NumValue
	case ast.Float64Type:
		return math.Float64frombits(uint64(constant.NumValue))
	}
	return constant.String()
}
