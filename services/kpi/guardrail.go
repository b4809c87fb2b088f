package kpi

// Guardrail is the volume pre-check shared by every data-returning tool:
// count the matching records first, and if the count exceeds the
// threshold the tool must answer with a warning payload instead of data,
// so the model asks the user to narrow the query.
type Guardrail struct {
	Threshold int
}

func (g Guardrail) Exceeds(count int) bool {
	return count > g.Threshold
}
