package config

// WorkspaceConfig is the root strata.yaml: it names an optional workspace
// root override and the glob patterns that locate projects.
type WorkspaceConfig struct {
	Root     string   `yaml:"root"`
	Projects []string `yaml:"projects"`
}

// ProjectConfig is a project-level strata.yaml: its language, the other
// projects it depends on, and the tasks it exposes.
type ProjectConfig struct {
	Project      string              `yaml:"project"`
	Language     string              `yaml:"language"`
	Toolchains   []string            `yaml:"toolchains"`
	Dependencies []DependencyDTO     `yaml:"dependencies"`
	Aliases      []string            `yaml:"aliases"`
	Tasks        map[string]*TaskDTO `yaml:"tasks"`
}

// DependencyDTO is one entry in a project's dependency list.
type DependencyDTO struct {
	Project string `yaml:"project"`
	Scope   string `yaml:"scope"`
}

// TaskDTO is a task definition within a ProjectConfig, pre-merge.
type TaskDTO struct {
	Command      string            `yaml:"command"`
	Args         []string          `yaml:"args"`
	DependsOn    []string          `yaml:"deps"`
	Env          map[string]string `yaml:"env"`
	Inputs       []string          `yaml:"inputs"`
	InputEnvVars []string          `yaml:"inputEnvVars"`
	Outputs      []string          `yaml:"outputs"`
	Toolchains   []string          `yaml:"toolchains"`

	Cache                *bool  `yaml:"cache"`
	Persistent           bool   `yaml:"persistent"`
	Interactive          bool   `yaml:"interactive"`
	RunInCI              bool   `yaml:"runInCI"`
	RunFromWorkspaceRoot bool   `yaml:"runFromWorkspaceRoot"`
	Shell                bool   `yaml:"shell"`
	RetryCount           int    `yaml:"retryCount"`
	OutputStyle          string `yaml:"outputStyle"`
	AllowFailure         bool   `yaml:"allowFailure"`
	ExpectOutputs        *bool  `yaml:"expectOutputs"`
	Mutex                string `yaml:"mutex"`
	// TimeoutSeconds bounds the task's execute step; 0 means no timeout.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}
