package sascodec

import "strings"

type writer struct {
	lines []string
}

func (w *writer) line(s string) { w.lines = append(w.lines, s) }

func (w *writer) int(v int) { w.line(itoa(v)) }

func (w *writer) fact(f Fact) { w.line(itoa(f.Var) + " " + itoa(f.Val)) }

func (w *writer) facts(facts []Fact) {
	for _, f := range facts {
		w.fact(f)
	}
}

// Emit renders doc back to the textual SAS+ format. For a Document
// produced by Parse and not otherwise modified, Emit reproduces the
// input line for line (spec §4.7).
func Emit(doc *Document) []byte {
	w := &writer{}

	w.line("begin_version")
	w.int(doc.Version)
	w.line("end_version")

	w.line("begin_metric")
	if doc.Metric {
		w.int(1)
	} else {
		w.int(0)
	}
	w.line("end_metric")

	w.int(len(doc.Variables))
	for _, v := range doc.Variables {
		emitVariable(w, v)
	}

	w.int(len(doc.Mutexes))
	for _, m := range doc.Mutexes {
		emitMutex(w, m)
	}

	w.line("begin_state")
	for _, v := range doc.InitState {
		w.int(v)
	}
	w.line("end_state")

	w.line("begin_goal")
	w.int(len(doc.Goal))
	w.facts(doc.Goal)
	w.line("end_goal")

	w.int(len(doc.Operators))
	for _, op := range doc.Operators {
		emitOperator(w, op)
	}

	w.int(len(doc.Axioms))
	for _, ax := range doc.Axioms {
		emitAxiom(w, ax)
	}

	return []byte(strings.Join(w.lines, "\n") + "\n")
}

func emitVariable(w *writer, v Variable) {
	w.line("begin_variable")
	w.line(v.Name)
	w.int(v.AxiomLayer)
	w.int(v.Range)
	for _, name := range v.ValueNames {
		w.line(name)
	}
	w.line("end_variable")
}

func emitMutex(w *writer, m Mutex) {
	w.line("begin_mutex_group")
	w.int(len(m.Facts))
	w.facts(m.Facts)
	w.line("end_mutex_group")
}

func emitOperator(w *writer, op Operator) {
	w.line("begin_operator")
	w.line(op.Name)
	w.int(len(op.Prevail))
	w.facts(op.Prevail)
	w.int(len(op.Effects))
	for _, e := range op.Effects {
		emitEffect(w, e)
	}
	w.int(op.Cost)
	w.line("end_operator")
}

func emitEffect(w *writer, e Effect) {
	fields := make([]string, 0, 1+2*len(e.Conditions)+3)
	fields = append(fields, itoa(len(e.Conditions)))
	for _, c := range e.Conditions {
		fields = append(fields, itoa(c.Var), itoa(c.Val))
	}
	fields = append(fields, itoa(e.Var), itoa(e.PreVal), itoa(e.PostVal))
	w.line(strings.Join(fields, " "))
}

func emitAxiom(w *writer, ax Axiom) {
	w.line("begin_rule")
	w.int(len(ax.Conditions))
	w.facts(ax.Conditions)
	w.line(itoa(ax.Var) + " " + itoa(ax.PreVal) + " " + itoa(ax.PostVal))
	w.line("end_rule")
}
