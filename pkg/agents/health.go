package agents

import (
	"context"
	"fmt"
	"time"
)

// Agent health status values.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
	HealthUnknown  = "unknown"
	HealthError    = "error"
)

// HealthReport is the aggregate health of the registered agents.
type HealthReport struct {
	SystemStatus string            `json:"systemStatus"`
	AgentStatus  map[string]string `json:"agentStatus"`
	Issues       []string          `json:"issues"`
	Timestamp    string            `json:"timestamp"`
}

// HealthCheck polls every registered agent. Agents without a health operation
// report "unknown"; an agent returning an error reports "error" and degrades
// the overall status.
func (r *Registry) HealthCheck(ctx context.Context) *HealthReport {
	report := &HealthReport{
		SystemStatus: HealthHealthy,
		AgentStatus:  make(map[string]string, len(r.agents)),
		Issues:       []string{},
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	for _, t := range r.Types() {
		agent := r.agents[t]
		checker, ok := agent.(HealthChecker)
		if !ok {
			report.AgentStatus[string(t)] = HealthUnknown
			continue
		}
		status, err := checker.HealthCheck(ctx)
		if err != nil {
			report.AgentStatus[string(t)] = HealthError
			report.Issues = append(report.Issues, fmt.Sprintf("%s: %v", t, err))
			continue
		}
		report.AgentStatus[string(t)] = status
	}

	if len(report.Issues) > 0 {
		report.SystemStatus = HealthDegraded
	}
	return report
}
