package agentrunner

import (
	"encoding/json"

	"github.com/Vg34100/agent-board/internal/domain"
	"github.com/Vg34100/agent-board/internal/infra/store"
)

// roundTrip decodes a store value (which may already be a native Go value
// set earlier this run, or a generic map/slice decoded from disk JSON) into
// target by marshaling then unmarshaling through encoding/json. This is the
// one place the mismatch between Store's "any" values and our typed structs
// is bridged.
func roundTrip(value any, target any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func loadProcesses(s domain.Store) []domain.AgentProcess {
	var result []domain.AgentProcess
	v, ok := s.Get(store.FileAgentProcesses, "processes")
	if !ok {
		return result
	}
	_ = roundTrip(v, &result)
	return result
}

// upsertProcess inserts p, or replaces the existing entry sharing its ID,
// preserving order, the same convention upsertMessage uses.
func upsertProcess(list []domain.AgentProcess, p domain.AgentProcess) []domain.AgentProcess {
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			return list
		}
	}
	return append(list, p)
}

func saveProcess(s domain.Store, p domain.AgentProcess) error {
	processes := upsertProcess(loadProcesses(s), p)
	s.Set(store.FileAgentProcesses, "processes", processes)
	return s.Save(store.FileAgentProcesses)
}

func loadProcess(s domain.Store, id string) (domain.AgentProcess, bool) {
	for _, p := range loadProcesses(s) {
		if p.ID == id {
			return p, true
		}
	}
	return domain.AgentProcess{}, false
}

func loadMessages(s domain.Store, file string) []domain.AgentMessage {
	var result []domain.AgentMessage
	v, ok := s.Get(file, "messages")
	if !ok {
		return result
	}
	_ = roundTrip(v, &result)
	return result
}

// upsertMessage inserts msg, or replaces the existing entry sharing its ID
// (a coalesced delta update), preserving order.
func upsertMessage(list []domain.AgentMessage, msg domain.AgentMessage) []domain.AgentMessage {
	for i := range list {
		if list[i].ID == msg.ID {
			list[i] = msg
			return list
		}
	}
	return append(list, msg)
}

// persistMessage stages msg into both the task-level and process-level
// message documents. save, when true, durably writes both files; otherwise
// the caller is expected to debounce and save later.
func persistMessage(s domain.Store, msg domain.AgentMessage, save bool) error {
	taskFile := store.FileAgentMessages(msg.TaskID)
	procFile := store.FileProcessAgentMessages(msg.TaskID, msg.ProcessID)

	taskMsgs := upsertMessage(loadMessages(s, taskFile), msg)
	s.Set(taskFile, "messages", taskMsgs)

	procMsgs := upsertMessage(loadMessages(s, procFile), msg)
	s.Set(procFile, "messages", procMsgs)

	if !save {
		return nil
	}
	if err := s.Save(taskFile); err != nil {
		return err
	}
	return s.Save(procFile)
}
