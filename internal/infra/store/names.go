package store

import "fmt"

// Logical document names, per spec.md §4.A's file table.
const (
	FileProjects       = "projects.json"
	FileAgentProcesses = "agent_processes.json"
	FileAgentSettings  = "agent_settings.json"
)

// FileTasks returns the logical document name holding a project's tasks.
func FileTasks(projectID string) string {
	return fmt.Sprintf("tasks_%s.json", projectID)
}

// FileAgentMessages returns the logical document name holding every message
// for a task, across all of its agent processes.
func FileAgentMessages(taskID string) string {
	return fmt.Sprintf("agent_messages_%s.json", taskID)
}

// FileProcessAgentMessages returns the logical document name holding a single
// process's messages within a task.
func FileProcessAgentMessages(taskID, processID string) string {
	return fmt.Sprintf("agent_messages_%s_%s.json", taskID, processID)
}
