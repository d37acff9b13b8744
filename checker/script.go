package checker

import (
	"errors"
	"os/exec"

	"probe-relay/logger"
	"probe-relay/models"
)

// ScriptRunner executes script replicas through a shell. Scripts run once per
// cycle and are never retried: a failing script is assumed to fail again.
type ScriptRunner struct {
	Shell string
	log   *logger.Logger
}

func NewScriptRunner(log *logger.Logger) *ScriptRunner {
	return &ScriptRunner{Shell: "sh", log: log}
}

// Run executes script with no stdin and maps its exit code to a Status.
func (r *ScriptRunner) Run(serviceID, nodeID, replicaID, script string) models.Status {
	r.log.Info("executing script replica on #%s:#%s:[#%s]", serviceID, nodeID, replicaID)

	err := exec.Command(r.Shell, "-c", script).Run()
	if err == nil {
		r.log.Debug("script replica execution succeeded with %s return code: 0", models.StatusHealthy)
		return models.StatusHealthy
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		r.log.Error("script replica execution failed with error: %v", err)
		return models.StatusDead
	}

	code := exitErr.ExitCode()
	status := StatusForExitCode(code)
	if status == models.StatusDead {
		r.log.Warn("script replica execution succeeded with %s return code: %d", status, code)
	} else {
		r.log.Debug("script replica execution succeeded with %s return code: %d", status, code)
	}
	return status
}

// StatusForExitCode maps 0 to healthy, 1 to sick and anything else to dead.
func StatusForExitCode(code int) models.Status {
	switch code {
	case 0:
		return models.StatusHealthy
	case 1:
		return models.StatusSick
	default:
		return models.StatusDead
	}
}
