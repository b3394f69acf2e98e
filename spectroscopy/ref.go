package spectroscopy

import "fmt"

// PipelineRef selects a pipeline by position or by name. The zero value
// selects the first pipeline.
type PipelineRef struct {
	index int
	name  string
	named bool
}

// PipelineIndex selects a pipeline by its position in the pipeline list.
func PipelineIndex(i int) PipelineRef {
	return PipelineRef{index: i}
}

// PipelineName selects a pipeline by name. The lookup fails when no
// pipeline has the name, or when more than one does.
func PipelineName(name string) PipelineRef {
	return PipelineRef{name: name, named: true}
}

// String returns the key as it appears in errors and plot titles.
func (r PipelineRef) String() string {
	if r.named {
		return r.name
	}
	return fmt.Sprintf("pipeline %d", r.index)
}
