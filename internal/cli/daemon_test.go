package cli

import (
	"testing"

	"github.com/greghernandez/docsync/internal/types"
)

func TestDaemonArgs(t *testing.T) {
	saved := globalFlags
	defer func() { globalFlags = saved }()

	tests := []struct {
		name  string
		flags types.GlobalFlags
		want  []string
	}{
		{
			name:  "defaults",
			flags: types.GlobalFlags{},
			want:  []string{"debug", "--quiet"},
		},
		{
			name:  "config propagated",
			flags: types.GlobalFlags{Config: "/etc/docsync.json"},
			want:  []string{"debug", "--quiet", "--config", "/etc/docsync.json"},
		},
		{
			name:  "credentials propagated",
			flags: types.GlobalFlags{Username: "alice", Password: "secret"},
			want:  []string{"debug", "--quiet", "--username", "alice", "--password", "secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globalFlags = tt.flags
			got := daemonArgs()
			if len(got) != len(tt.want) {
				t.Fatalf("daemonArgs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
