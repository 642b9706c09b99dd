package providers

import "context"

// Canned is a Completer returning a fixed response; tests drive the pipeline
// with it instead of a live provider.
type Canned struct {
	Response string
	Err      error

	// UserPrompts records the user message of every call.
	UserPrompts []string
}

func (c *Canned) Complete(_ context.Context, _ string, user string) (string, error) {
	c.UserPrompts = append(c.UserPrompts, user)
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}

func (c *Canned) Name() string  { return "mock" }
func (c *Canned) Model() string { return "mock-model" }
