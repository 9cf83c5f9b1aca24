package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectOrchestrator  = "agent.sahayak.orchestrator.v1"
	SubjectDispatchEvent = "orchestrator.dispatched"
)

// BuildDispatchEventSubject builds a granular dispatch event subject for one agent type.
func BuildDispatchEventSubject(agentType string) string {
	safe := strings.ReplaceAll(agentType, "-", "_")
	return fmt.Sprintf("%s.%s", SubjectDispatchEvent, safe)
}
