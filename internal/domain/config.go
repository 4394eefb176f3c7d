package domain

// TaskEntry is one raw record from the document's task table. Fields hold
// the record as loaded; interpretation belongs to the extractor.
type TaskEntry struct {
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

// MiseConfig is the loaded mise.toml document. Only the recognized
// top-level sections are represented; save rewrites exactly these.
// The task table keeps declaration order so downstream ordering is
// stable across runs.
type MiseConfig struct {
	Tools      map[string]string `json:"tools,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	Tasks      []TaskEntry       `json:"tasks,omitempty"`
	Vars       map[string]string `json:"vars,omitempty"`
	TaskConfig map[string]any    `json:"taskConfig,omitempty"`
}

// Task returns the entry with the given full name, if present.
func (c *MiseConfig) Task(name string) (TaskEntry, bool) {
	for _, e := range c.Tasks {
		if e.Name == name {
			return e, true
		}
	}
	return TaskEntry{}, false
}

// SetTask replaces an existing entry in place or appends a new one,
// keeping declaration order for everything else.
func (c *MiseConfig) SetTask(entry TaskEntry) {
	for i, e := range c.Tasks {
		if e.Name == entry.Name {
			c.Tasks[i] = entry
			return
		}
	}
	c.Tasks = append(c.Tasks, entry)
}

// RemoveTask deletes the named entry and reports whether it existed.
func (c *MiseConfig) RemoveTask(name string) bool {
	for i, e := range c.Tasks {
		if e.Name == name {
			c.Tasks = append(c.Tasks[:i], c.Tasks[i+1:]...)
			return true
		}
	}
	return false
}

// TaskNames returns the task table keys in declaration order.
func (c *MiseConfig) TaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for _, e := range c.Tasks {
		names = append(names, e.Name)
	}
	return names
}
