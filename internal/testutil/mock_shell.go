package testutil

import "sync"

// RecordingShell captures every presentation signal it receives.
type RecordingShell struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
	Closed    int
	Refreshed int
}

func (s *RecordingShell) Success(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Successes = append(s.Successes, message)
}

func (s *RecordingShell) Error(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, message)
}

func (s *RecordingShell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed++
}

func (s *RecordingShell) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Refreshed++
}

// Notifications returns the total number of toasts shown.
func (s *RecordingShell) Notifications() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Successes) + len(s.Errors)
}
