package api

import "testing"

type stubFloorJob struct{ running bool }

func (s *stubFloorJob) Running() bool { return s.running }

func TestFloorJobStatus(t *testing.T) {
	s := &Server{}
	if got := s.floorJobStatus(); got != "disabled" {
		t.Fatalf("no attached job must report disabled, got %q", got)
	}

	s.AttachFloorJob(&stubFloorJob{running: true})
	if got := s.floorJobStatus(); got != "running" {
		t.Fatalf("active job must report running, got %q", got)
	}

	s.AttachFloorJob(&stubFloorJob{running: false})
	if got := s.floorJobStatus(); got != "stopped" {
		t.Fatalf("stopped job must report stopped, got %q", got)
	}
}
