package bulk

import "errors"

// Operation is one bulk request.
type Operation func(*Session) error

// Apply runs ops in order. A failing operation does not stop the rest; the
// failures are joined.
func (s *Session) Apply(ops ...Operation) error {
	if err := s.check(); err != nil {
		return err
	}
	var errs []error
	for _, op := range ops {
		if err := op(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Input returns an operation that sets the overwrite input of param.
func Input(param, text string) Operation {
	return func(s *Session) error { return s.SetInput(param, text) }
}

// Check returns an operation that sets the multiplier checkbox of param.
func Check(param string, on bool) Operation {
	return func(s *Session) error { return s.SetChecked(param, on) }
}

// Multiply returns an operation that applies m.
func Multiply(m Multiplier) Operation {
	return func(s *Session) error { return s.Multiply(m) }
}

// Scale returns an operation that scales param to percent of its baseline.
func Scale(param string, percent int) Operation {
	return func(s *Session) error { return s.Scale(param, percent) }
}

// AddEntry returns an operation that adds a repeatable entry.
func AddEntry(tag, value string) Operation {
	return func(s *Session) error { return s.AddEntry(tag, value) }
}

// RemoveEntry returns an operation that removes a repeatable entry.
func RemoveEntry(tag, value string) Operation {
	return func(s *Session) error { return s.RemoveEntry(tag, value) }
}

// SetCategory returns an operation that sets the category.
func SetCategory(name string) Operation {
	return func(s *Session) error { return s.SetCategory(name) }
}
