package httpapi

import "time"

// SetClock fixes the date used to build default filters.
func (s *Server) SetClock(now func() time.Time) { s.now = now }
