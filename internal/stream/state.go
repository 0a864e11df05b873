package stream

// State tracks the lifecycle every Transform shares: open, finished, or
// failed. A failed stream keeps returning its first error.
type State struct {
	err  error
	done bool
}

// Check returns nil while the stream is open.
func (s *State) Check() error {
	if s.err != nil {
		return s.err
	}
	if s.done {
		return ErrFinished
	}
	return nil
}

// Fail poisons the stream with err and returns it.
func (s *State) Fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return s.err
}

// Close marks the stream finished. It returns the same error Check would
// have returned had the stream not been open.
func (s *State) Close() error {
	if err := s.Check(); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Done reports whether the stream was finished successfully.
func (s *State) Done() bool {
	return s.done && s.err == nil
}
