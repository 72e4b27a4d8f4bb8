package apiclient

import "context"

// Handler sends an envelope and returns the raw response.
type Handler func(ctx context.Context, env *Envelope) (*Response, error)

// Stage is a named middleware around a Handler.
type Stage struct {
	Name string
	Wrap func(Handler) Handler
}

// Pipeline is an ordered list of stages. The first stage is the outermost.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

func (p *Pipeline) Use(stage Stage) {
	p.stages = append(p.stages, stage)
}

// Then wraps terminal so that stages run in the order they were added.
func (p *Pipeline) Then(terminal Handler) Handler {
	wrapped := terminal
	for i := len(p.stages) - 1; i >= 0; i-- {
		wrapped = p.stages[i].Wrap(wrapped)
	}
	return wrapped
}

func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}
