package probe

import (
	"strconv"
	"time"

	"probe-relay/logger"
	"probe-relay/models"
)

// Prober checks one replica, retries included.
type Prober interface {
	Probe(serviceID, nodeID string, replica models.Replica) models.Status
}

// ScriptRunner executes one script replica.
type ScriptRunner interface {
	Run(serviceID, nodeID, replicaID, script string) models.Status
}

// Reporter delivers one status, retries included.
type Reporter interface {
	Report(serviceID, nodeID, replica string, status models.Status, interval time.Duration) error
}

type Dispatcher struct {
	prober   Prober
	scripts  ScriptRunner
	reporter Reporter
	log      *logger.Logger
}

func NewDispatcher(prober Prober, scripts ScriptRunner, reporter Reporter, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		prober:   prober,
		scripts:  scripts,
		reporter: reporter,
		log:      log,
	}
}

// Dispatch checks a node according to its mode. Its log lines carry the
// cycle identifier.
func (d *Dispatcher) Dispatch(cycleID string, service models.Service, node models.Node, interval time.Duration) {
	log := d.log.With("[cycle " + cycleID + "]")

	switch node.Mode {
	case models.ModePoll:
		d.poll(log, service, node, interval)
	case models.ModeScript:
		d.script(log, service, node, interval)
	default:
		log.Error("unknown mode %q in service node: #%s", node.Mode, node.ID)
	}
}

// DispatchPoll probes and reports every replica of a poll node.
func (d *Dispatcher) DispatchPoll(service models.Service, node models.Node, interval time.Duration) {
	d.poll(d.log, service, node, interval)
}

func (d *Dispatcher) poll(log *logger.Logger, service models.Service, node models.Node, interval time.Duration) {
	if len(node.Replicas) == 0 {
		log.Warn("poll node has no usable replica in service node: #%s", node.ID)
		return
	}
	log.Debug("poll node has replicas in service node: #%s", node.ID)

	for _, replica := range node.Replicas {
		status := d.prober.Probe(service.ID, node.ID, replica)
		log.Debug("got replica status upon poll: %s", status)

		if err := d.reporter.Report(service.ID, node.ID, replica.Raw, status, interval); err != nil {
			log.Warn("failed reporting poll replica status: %s (%v)", status, err)
			continue
		}
		log.Info("reported poll replica status: %s", status)
	}
}

// DispatchScript runs and reports every script of a script node. A script is
// identified in reports by its position in the node's list.
func (d *Dispatcher) DispatchScript(service models.Service, node models.Node, interval time.Duration) {
	d.script(d.log, service, node, interval)
}

func (d *Dispatcher) script(log *logger.Logger, service models.Service, node models.Node, interval time.Duration) {
	if len(node.Scripts) == 0 {
		log.Warn("script node has no usable script in service node: #%s", node.ID)
		return
	}
	log.Debug("script node has scripts in service node: #%s", node.ID)

	for index, script := range node.Scripts {
		replicaID := strconv.Itoa(index)
		status := d.scripts.Run(service.ID, node.ID, replicaID, script)
		log.Debug("got replica status upon script: %s", status)

		if err := d.reporter.Report(service.ID, node.ID, replicaID, status, interval); err != nil {
			log.Error("failed reporting script replica status: %s (%v)", status, err)
			continue
		}
		log.Info("reported script replica status: %s", status)
	}
}
