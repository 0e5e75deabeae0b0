package llm

import "context"

// Static is a canned-response Provider used in tests and local development.
// Responses are consumed in order; when exhausted, the last one repeats.
type Static struct {
	Responses []string
	Err       error

	calls int
}

func (s *Static) Name() string {
	return "static"
}

// Calls reports how many times Classify was invoked.
func (s *Static) Calls() int {
	return s.calls
}

func (s *Static) Classify(ctx context.Context, system, user string) (string, error) {
	s.calls++

	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", nil
	}

	i := s.calls - 1
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	return s.Responses[i], nil
}
