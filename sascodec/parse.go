package sascodec

import (
	"strconv"
	"strings"
)

type scanner struct {
	lines []string
	pos   int
}

func newScanner(data []byte) *scanner {
	text := string(data)
	text = strings.TrimSuffix(text, "\n")
	var lines []string
	if text == "" {
		lines = nil
	} else {
		lines = strings.Split(text, "\n")
	}
	return &scanner{lines: lines}
}

func (s *scanner) next() (string, int, bool) {
	if s.pos >= len(s.lines) {
		return "", s.pos + 1, false
	}
	line := s.lines[s.pos]
	lineNo := s.pos + 1
	s.pos++
	return line, lineNo, true
}

func (s *scanner) nextLine(section string) (string, int, error) {
	line, lineNo, ok := s.next()
	if !ok {
		return "", lineNo, &ParseError{Section: section, Line: lineNo, Err: ErrMalformedSection}
	}
	return line, lineNo, nil
}

func (s *scanner) expect(section, marker string) error {
	line, lineNo, err := s.nextLine(section)
	if err != nil {
		return err
	}
	if line != marker {
		return &ParseError{Section: section, Line: lineNo, Err: ErrMalformedSection}
	}
	return nil
}

func (s *scanner) readInt(section string) (int, error) {
	line, lineNo, err := s.nextLine(section)
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		return 0, &ParseError{Section: section, Line: lineNo, Err: convErr}
	}
	return v, nil
}

func (s *scanner) readFact(section string) (Fact, error) {
	line, lineNo, err := s.nextLine(section)
	if err != nil {
		return Fact{}, err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Fact{}, &ParseError{Section: section, Line: lineNo, Err: ErrMalformedSection}
	}
	v, err1 := strconv.Atoi(fields[0])
	x, err2 := strconv.Atoi(fields[1])
	if err1 != nil {
		return Fact{}, &ParseError{Section: section, Line: lineNo, Err: err1}
	}
	if err2 != nil {
		return Fact{}, &ParseError{Section: section, Line: lineNo, Err: err2}
	}
	return Fact{Var: v, Val: x}, nil
}

func (s *scanner) readFacts(section string, count int) ([]Fact, error) {
	facts := make([]Fact, 0, count)
	for i := 0; i < count; i++ {
		f, err := s.readFact(section)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// Parse parses a complete SAS+ file into a Document.
func Parse(data []byte) (*Document, error) {
	s := newScanner(data)
	doc := &Document{}

	if err := s.expect("version", "begin_version"); err != nil {
		return nil, err
	}
	version, err := s.readInt("version")
	if err != nil {
		return nil, err
	}
	if err := s.expect("version", "end_version"); err != nil {
		return nil, err
	}
	doc.Version = version

	if err := s.expect("metric", "begin_metric"); err != nil {
		return nil, err
	}
	metric, err := s.readInt("metric")
	if err != nil {
		return nil, err
	}
	if err := s.expect("metric", "end_metric"); err != nil {
		return nil, err
	}
	doc.Metric = metric != 0

	varCount, err := s.readInt("variable count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < varCount; i++ {
		v, err := parseVariable(s)
		if err != nil {
			return nil, err
		}
		doc.Variables = append(doc.Variables, v)
	}

	mutexCount, err := s.readInt("mutex count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < mutexCount; i++ {
		m, err := parseMutex(s)
		if err != nil {
			return nil, err
		}
		doc.Mutexes = append(doc.Mutexes, m)
	}

	init, err := parseInitState(s, len(doc.Variables))
	if err != nil {
		return nil, err
	}
	doc.InitState = init

	goal, err := parseGoal(s)
	if err != nil {
		return nil, err
	}
	doc.Goal = goal

	opCount, err := s.readInt("operator count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < opCount; i++ {
		op, err := parseOperator(s)
		if err != nil {
			return nil, err
		}
		doc.Operators = append(doc.Operators, op)
	}

	axiomCount, err := s.readInt("axiom count")
	if err != nil {
		return nil, err
	}
	for i := 0; i < axiomCount; i++ {
		ax, err := parseAxiom(s)
		if err != nil {
			return nil, err
		}
		doc.Axioms = append(doc.Axioms, ax)
	}

	return doc, nil
}

func parseVariable(s *scanner) (Variable, error) {
	if err := s.expect("variable", "begin_variable"); err != nil {
		return Variable{}, err
	}
	name, _, err := s.nextLine("variable")
	if err != nil {
		return Variable{}, err
	}
	layer, err := s.readInt("variable")
	if err != nil {
		return Variable{}, err
	}
	rng, err := s.readInt("variable")
	if err != nil {
		return Variable{}, err
	}
	values := make([]string, 0, rng)
	for i := 0; i < rng; i++ {
		name, _, err := s.nextLine("variable")
		if err != nil {
			return Variable{}, err
		}
		values = append(values, name)
	}
	if err := s.expect("variable", "end_variable"); err != nil {
		return Variable{}, err
	}
	return Variable{Name: name, AxiomLayer: layer, Range: rng, ValueNames: values}, nil
}

func parseMutex(s *scanner) (Mutex, error) {
	if err := s.expect("mutex_group", "begin_mutex_group"); err != nil {
		return Mutex{}, err
	}
	count, err := s.readInt("mutex_group")
	if err != nil {
		return Mutex{}, err
	}
	facts, err := s.readFacts("mutex_group", count)
	if err != nil {
		return Mutex{}, err
	}
	if err := s.expect("mutex_group", "end_mutex_group"); err != nil {
		return Mutex{}, err
	}
	return Mutex{Facts: facts}, nil
}

func parseInitState(s *scanner, varCount int) ([]int, error) {
	if err := s.expect("state", "begin_state"); err != nil {
		return nil, err
	}
	values := make([]int, 0, varCount)
	for i := 0; i < varCount; i++ {
		v, err := s.readInt("state")
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if err := s.expect("state", "end_state"); err != nil {
		return nil, err
	}
	return values, nil
}

func parseGoal(s *scanner) ([]Fact, error) {
	if err := s.expect("goal", "begin_goal"); err != nil {
		return nil, err
	}
	count, err := s.readInt("goal")
	if err != nil {
		return nil, err
	}
	facts, err := s.readFacts("goal", count)
	if err != nil {
		return nil, err
	}
	if err := s.expect("goal", "end_goal"); err != nil {
		return nil, err
	}
	return facts, nil
}

func parseOperator(s *scanner) (Operator, error) {
	if err := s.expect("operator", "begin_operator"); err != nil {
		return Operator{}, err
	}
	name, _, err := s.nextLine("operator")
	if err != nil {
		return Operator{}, err
	}
	prevailCount, err := s.readInt("operator")
	if err != nil {
		return Operator{}, err
	}
	prevail, err := s.readFacts("operator", prevailCount)
	if err != nil {
		return Operator{}, err
	}
	effectCount, err := s.readInt("operator")
	if err != nil {
		return Operator{}, err
	}
	effects := make([]Effect, 0, effectCount)
	for i := 0; i < effectCount; i++ {
		e, err := parseEffect(s)
		if err != nil {
			return Operator{}, err
		}
		effects = append(effects, e)
	}
	cost, err := s.readInt("operator")
	if err != nil {
		return Operator{}, err
	}
	if err := s.expect("operator", "end_operator"); err != nil {
		return Operator{}, err
	}
	return Operator{Name: name, Prevail: prevail, Effects: effects, Cost: cost}, nil
}

func parseEffect(s *scanner) (Effect, error) {
	line, lineNo, err := s.nextLine("operator effect")
	if err != nil {
		return Effect{}, err
	}
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: ErrMalformedSection}
	}
	condCount, convErr := strconv.Atoi(fields[0])
	if convErr != nil {
		return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: convErr}
	}
	wantLen := 1 + 2*condCount + 3
	if len(fields) != wantLen {
		return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: ErrCountMismatch}
	}
	conds := make([]Fact, 0, condCount)
	idx := 1
	for i := 0; i < condCount; i++ {
		v, err1 := strconv.Atoi(fields[idx])
		x, err2 := strconv.Atoi(fields[idx+1])
		if err1 != nil {
			return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: err1}
		}
		if err2 != nil {
			return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: err2}
		}
		conds = append(conds, Fact{Var: v, Val: x})
		idx += 2
	}
	affVar, err1 := strconv.Atoi(fields[idx])
	preVal, err2 := strconv.Atoi(fields[idx+1])
	postVal, err3 := strconv.Atoi(fields[idx+2])
	if err1 != nil {
		return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: err1}
	}
	if err2 != nil {
		return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: err2}
	}
	if err3 != nil {
		return Effect{}, &ParseError{Section: "operator effect", Line: lineNo, Err: err3}
	}
	return Effect{Conditions: conds, Var: affVar, PreVal: preVal, PostVal: postVal}, nil
}

func parseAxiom(s *scanner) (Axiom, error) {
	if err := s.expect("rule", "begin_rule"); err != nil {
		return Axiom{}, err
	}
	condCount, err := s.readInt("rule")
	if err != nil {
		return Axiom{}, err
	}
	conds, err := s.readFacts("rule", condCount)
	if err != nil {
		return Axiom{}, err
	}
	line, lineNo, err := s.nextLine("rule")
	if err != nil {
		return Axiom{}, err
	}
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Axiom{}, &ParseError{Section: "rule", Line: lineNo, Err: ErrMalformedSection}
	}
	affVar, err1 := strconv.Atoi(fields[0])
	preVal, err2 := strconv.Atoi(fields[1])
	postVal, err3 := strconv.Atoi(fields[2])
	if err1 != nil {
		return Axiom{}, &ParseError{Section: "rule", Line: lineNo, Err: err1}
	}
	if err2 != nil {
		return Axiom{}, &ParseError{Section: "rule", Line: lineNo, Err: err2}
	}
	if err3 != nil {
		return Axiom{}, &ParseError{Section: "rule", Line: lineNo, Err: err3}
	}
	if err := s.expect("rule", "end_rule"); err != nil {
		return Axiom{}, err
	}
	return Axiom{Conditions: conds, Var: affVar, PreVal: preVal, PostVal: postVal}, nil
}
