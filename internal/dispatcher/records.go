package dispatcher

import (
	"encoding/json"

	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/infra/store"
)

// roundTrip bridges Store's "any" values and typed structs via JSON, the
// same bridge agentrunner's persistence.go uses for its own documents.
func roundTrip(value, target any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func loadProjects(s domain.Store) []domain.Project {
	var projects []domain.Project
	if v, ok := s.Get(store.FileProjects, "projects"); ok {
		_ = roundTrip(v, &projects)
	}
	return projects
}

func saveProjects(s domain.Store, projects []domain.Project) error {
	s.Set(store.FileProjects, "projects", projects)
	return s.Save(store.FileProjects)
}

func loadTasks(s domain.Store, projectID string) []domain.Task {
	var tasks []domain.Task
	if v, ok := s.Get(store.FileTasks(projectID), "tasks"); ok {
		_ = roundTrip(v, &tasks)
	}
	return tasks
}

func saveTasks(s domain.Store, projectID string, tasks []domain.Task) error {
	file := store.FileTasks(projectID)
	s.Set(file, "tasks", tasks)
	return s.Save(file)
}

func loadSettings(s domain.Store) map[string]any {
	settings := map[string]any{}
	if v, ok := s.Get(store.FileAgentSettings, "settings"); ok {
		_ = roundTrip(v, &settings)
	}
	return settings
}

func saveSettings(s domain.Store, settings map[string]any) error {
	s.Set(store.FileAgentSettings, "settings", settings)
	return s.Save(store.FileAgentSettings)
}
