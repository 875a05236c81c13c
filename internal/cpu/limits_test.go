package cpu

import "testing"

func TestFileLimit_Allows(t *testing.T) {
	tests := []struct {
		name  string
		limit FileLimit
		n     int
		want  bool
	}{
		{name: "unknown limit", limit: FileLimit{}, n: 100000, want: true},
		{name: "under soft limit", limit: FileLimit{Soft: 1024, Hard: 4096}, n: 1000, want: true},
		{name: "exactly at soft limit", limit: FileLimit{Soft: 1024}, n: 1024, want: true},
		{name: "over soft limit", limit: FileLimit{Soft: 1024, Hard: 4096}, n: 4000, want: false},
		{name: "non-positive request", limit: FileLimit{Soft: 1}, n: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.limit.Allows(tt.n); got != tt.want {
				t.Errorf("Allows(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestGetNumCPU(t *testing.T) {
	if GetNumCPU() < 1 {
		t.Error("expected at least one CPU")
	}
}

func TestSetupWorkerAffinity(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		release := SetupWorkerAffinity(0)
		release()
	}()
	<-done
}
