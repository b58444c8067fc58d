package schema

// ComponentSummary is a flattened view of one component for reports.
type ComponentSummary struct {
	Name               string
	Selector           string
	Standalone         bool
	Inputs             int
	PrimitiveInputs    int
	NonPrimitiveInputs int
	Outputs            int
	SourceFilePath     string
}

// Summarize lists the components described by a definition: the component
// itself, or every declared component of a module.
func Summarize(def Definition) []ComponentSummary {
	var components []ComponentDefinition
	switch d := def.(type) {
	case ComponentDefinition:
		components = []ComponentDefinition{d}
	case *ComponentDefinition:
		components = []ComponentDefinition{*d}
	case ModuleDefinition:
		components = d.DeclaredComponents
	case *ModuleDefinition:
		components = d.DeclaredComponents
	}

	summaries := make([]ComponentSummary, 0, len(components))
	for _, c := range components {
		s := ComponentSummary{
			Name:           c.Name,
			Selector:       c.Selector,
			Standalone:     c.Standalone,
			Inputs:         len(c.Inputs),
			Outputs:        len(c.Outputs),
			SourceFilePath: c.SourceFilePath,
		}
		for _, in := range c.Inputs {
			if in.Type.IsPrimitive() {
				s.PrimitiveInputs++
			} else {
				s.NonPrimitiveInputs++
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}
