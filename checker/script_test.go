package checker

import (
	"testing"

	"probe-relay/logger"
	"probe-relay/models"
)

func TestScriptRunnerExitCodes(t *testing.T) {
	r := NewScriptRunner(logger.Discard())

	cases := []struct {
		script string
		want   models.Status
	}{
		{"exit 0", models.StatusHealthy},
		{"true", models.StatusHealthy},
		{"exit 1", models.StatusSick},
		{"exit 2", models.StatusDead},
		{"kill -9 $$", models.StatusDead},
		{"this-command-does-not-exist-probe-relay", models.StatusDead},
	}
	for i, c := range cases {
		if got := r.Run("svc", "node", "0", c.script); got != c.want {
			t.Fatalf("case %d (%q): got %s want %s", i, c.script, got, c.want)
		}
	}
}

func TestScriptRunnerHasNoStdin(t *testing.T) {
	r := NewScriptRunner(logger.Discard())

	if got := r.Run("svc", "node", "0", `read line; [ -z "$line" ] && exit 0; exit 2`); got != models.StatusHealthy {
		t.Fatalf("got %s want healthy with empty stdin", got)
	}
}

func TestScriptRunnerSpawnFailure(t *testing.T) {
	r := NewScriptRunner(logger.Discard())
	r.Shell = "/nonexistent/shell"

	if got := r.Run("svc", "node", "0", "exit 0"); got != models.StatusDead {
		t.Fatalf("got %s want dead on spawn failure", got)
	}
}
