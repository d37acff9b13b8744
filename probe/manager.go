package probe

import (
	"time"

	"probe-relay/logger"
	"probe-relay/models"

	"github.com/google/uuid"
)

const (
	// RunHold delays the first cycle after start.
	RunHold = 2 * time.Second

	// RespawnDelay separates a crash of the probe loop from its restart.
	RespawnDelay = 5 * time.Second
)

// NodeDispatcher checks one node. *Dispatcher satisfies it.
type NodeDispatcher interface {
	Dispatch(cycleID string, service models.Service, node models.Node, interval time.Duration)
}

type Manager struct {
	Hold time.Duration

	config     *models.Config
	dispatcher NodeDispatcher
	log        *logger.Logger
}

func NewManager(config *models.Config, dispatcher NodeDispatcher, log *logger.Logger) *Manager {
	return &Manager{
		Hold:       RunHold,
		config:     config,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Run cycles until stop is closed. A cycle in progress always runs to its
// end; stop is only observed while waiting between cycles.
func (m *Manager) Run(stop <-chan struct{}) {
	if !wait(stop, m.Hold) {
		return
	}
	m.log.Debug("will run first probe cycle")

	interval := m.config.Metrics.IntervalDuration()
	for {
		m.Cycle()

		m.log.Info("done cycling probe, holding for next cycle: %s", interval)
		if !wait(stop, interval) {
			return
		}
		m.log.Debug("holding for next probe cycle, will run next cycle")
	}
}

// Cycle checks every node of every service once, sequentially and in
// configuration order.
func (m *Manager) Cycle() {
	cycleID := uuid.NewString()
	interval := m.config.Metrics.IntervalDuration()

	m.log.Debug("[cycle %s] cycling through all services", cycleID)

	for _, service := range m.config.Probe.Services {
		m.log.Debug("[cycle %s] scanning for nodes in service: #%s", cycleID, service.ID)

		for _, node := range service.Nodes {
			m.log.Debug("[cycle %s] scanning for targets in service node: #%s", cycleID, node.ID)
			m.dispatcher.Dispatch(cycleID, service, node, interval)
		}
	}

	m.log.Info("[cycle %s] done cycling through all services", cycleID)
}

// wait sleeps for d and reports false if stop was closed first.
func wait(stop <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}
