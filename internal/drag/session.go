package drag

// Session is one pointer or touch gesture from press to release. It is the
// only surface through which movement reaches the controller, and it is
// dead once End has been called.
type Session struct {
	ctrl   *Controller
	closed bool
}

// Move feeds a pointer x position. Ignored after End.
func (s *Session) Move(x float64) {
	if s == nil || s.closed || s.ctrl.session != s {
		return
	}
	s.ctrl.move(x)
}

// End finalizes the gesture at its last applied position.
func (s *Session) End() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if s.ctrl.session == s {
		s.ctrl.end()
	}
}

// Closed reports whether End has run.
func (s *Session) Closed() bool {
	return s == nil || s.closed
}
