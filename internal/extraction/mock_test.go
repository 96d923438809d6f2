package extraction

import (
	"context"

	"github.com/lorehaven/loregraph/internal/oracle"
)

type mockOracle struct {
	Response string
	Queue    []string
	Err      error
	Prompts  []string
}

func (m *mockOracle) Complete(ctx context.Context, prompt, system string, opts oracle.Options) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Queue) > 0 {
		resp := m.Queue[0]
		m.Queue = m.Queue[1:]
		return resp, nil
	}
	return m.Response, nil
}
