package installer

import "strings"

type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}

func (s *InstallState) Provider() string {
	return strings.ToLower(s.EnvVars["DOCCHAT_LLM_PROVIDER"])
}

func (s *InstallState) is(key, value string) bool {
	return strings.EqualFold(s.EnvVars[key], value)
}
