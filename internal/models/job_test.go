package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestJobUnmarshalDefaults verifies document defaults applied at decode time
func TestJobUnmarshalDefaults(t *testing.T) {
	tests := []struct {
		name        string
		yamlText    string
		wantEnabled bool
	}{
		{
			name:        "enabled omitted defaults to true",
			yamlText:    "id: a\nname: A\nplugin: echo\n",
			wantEnabled: true,
		},
		{
			name:        "enabled false is preserved",
			yamlText:    "id: a\nname: A\nplugin: echo\nenabled: false\n",
			wantEnabled: false,
		},
		{
			name:        "enabled true is preserved",
			yamlText:    "id: a\nname: A\nplugin: echo\nenabled: true\n",
			wantEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var job Job
			if err := yaml.Unmarshal([]byte(tt.yamlText), &job); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if job.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", job.Enabled, tt.wantEnabled)
			}
		})
	}
}

// TestJobUnmarshalRejectsUnknownFields verifies decode-time strictness
// inside the job, retries, and container objects.
func TestJobUnmarshalRejectsUnknownFields(t *testing.T) {
	tests := []struct {
		name     string
		yamlText string
		want     string
	}{
		{
			name:     "unknown job field",
			yamlText: "id: a\nplugin: echo\nbogus_field: 1\n",
			want:     `unknown job field "bogus_field"`,
		},
		{
			name:     "misspelled transition",
			yamlText: "id: a\nplugin: echo\non_sucess: [b]\n",
			want:     `unknown job field "on_sucess"`,
		},
		{
			name:     "unknown retries field",
			yamlText: "id: a\nplugin: echo\nretries:\n  count: 1\n  intervall: 2\n",
			want:     `unknown retries field "intervall"`,
		},
		{
			name:     "unknown container field",
			yamlText: "id: a\ncontainer:\n  image: alpine\n  imge: busybox\n",
			want:     `unknown container field "imge"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var job Job
			err := yaml.Unmarshal([]byte(tt.yamlText), &job)
			if err == nil {
				t.Fatalf("unknown field accepted; decoded %+v", job)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want mention of %s", err, tt.want)
			}
		})
	}
}

// TestContainerUnmarshalDefaultEngine verifies the engine defaults to docker
func TestContainerUnmarshalDefaultEngine(t *testing.T) {
	var job Job
	yamlText := "id: c\nname: C\ncontainer:\n  image: alpine:latest\n"
	if err := yaml.Unmarshal([]byte(yamlText), &job); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if job.Container == nil {
		t.Fatal("container not decoded")
	}
	if job.Container.Engine != ContainerEngineDocker {
		t.Errorf("Engine = %q, want %q", job.Container.Engine, ContainerEngineDocker)
	}
}

// TestJobDeepCopyIndependence verifies mutations of a copy never reach the original
func TestJobDeepCopyIndependence(t *testing.T) {
	original := &Job{
		ID:     "a",
		Name:   "A",
		Plugin: "echo",
		Params: map[string]interface{}{
			"message": "hi",
			"nested":  map[string]interface{}{"k": "v"},
			"list":    []interface{}{"one", "two"},
		},
		Input:     map[string]string{"data": "${result:b}"},
		OnSuccess: []string{"b"},
		DependsOn: []string{"c"},
		Enabled:   true,
		Container: &JobContainer{Image: "alpine", Env: map[string]string{"K": "V"}},
		Result:    JobResult{Status: JobStatusSuccess, ExecutionStack: []string{"a"}},
	}

	copied := original.DeepCopy()

	copied.Params["message"] = "changed"
	copied.Params["nested"].(map[string]interface{})["k"] = "changed"
	copied.Params["list"].([]interface{})[0] = "changed"
	copied.Input["data"] = "changed"
	copied.OnSuccess[0] = "changed"
	copied.Container.Env["K"] = "changed"
	copied.Result.ExecutionStack[0] = "changed"
	copied.Result.Status = JobStatusError

	if original.Params["message"] != "hi" {
		t.Error("params leaked into original")
	}
	if original.Params["nested"].(map[string]interface{})["k"] != "v" {
		t.Error("nested params leaked into original")
	}
	if original.Params["list"].([]interface{})[0] != "one" {
		t.Error("list params leaked into original")
	}
	if original.Input["data"] != "${result:b}" {
		t.Error("input leaked into original")
	}
	if original.OnSuccess[0] != "b" {
		t.Error("on_success leaked into original")
	}
	if original.Container.Env["K"] != "V" {
		t.Error("container env leaked into original")
	}
	if original.Result.ExecutionStack[0] != "a" {
		t.Error("execution stack leaked into original")
	}
	if original.Result.Status != JobStatusSuccess {
		t.Error("result status leaked into original")
	}
}

// TestJobResultLifecycle verifies Start/Stop ordering and duration
func TestJobResultLifecycle(t *testing.T) {
	var r JobResult
	if r.Status != "" && r.Status != JobStatusUnstarted {
		t.Fatalf("unexpected zero status %q", r.Status)
	}

	r.Start()
	if r.Status != JobStatusRunning {
		t.Errorf("Status after Start = %q, want RUNNING", r.Status)
	}
	if r.StartTime.IsZero() {
		t.Error("StartTime not set")
	}

	time.Sleep(time.Millisecond)
	r.Stop()
	if r.EndTime == nil {
		t.Fatal("EndTime not set")
	}
	if r.EndTime.Before(r.StartTime) {
		t.Error("EndTime before StartTime")
	}
	if r.Duration() <= 0 {
		t.Error("Duration not positive")
	}
}

// TestStatusTerminal verifies terminal-state detection
func TestStatusTerminal(t *testing.T) {
	terminal := []JobStatus{JobStatusSuccess, JobStatusError}
	open := []JobStatus{JobStatusUnstarted, JobStatusPending, JobStatusRunning}

	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}

// TestEngineURL verifies socket resolution per engine
func TestEngineURL(t *testing.T) {
	docker := &JobContainer{Image: "alpine", Engine: ContainerEngineDocker}
	url, err := docker.EngineURL()
	if err != nil {
		t.Fatalf("docker EngineURL: %v", err)
	}
	if url != "unix:///var/run/docker.sock" {
		t.Errorf("docker url = %q", url)
	}

	podman := &JobContainer{Image: "alpine", Engine: ContainerEnginePodman}
	url, err = podman.EngineURL()
	if err != nil {
		t.Fatalf("podman EngineURL: %v", err)
	}
	if !strings.HasPrefix(url, "unix:///run/user/") || !strings.HasSuffix(url, "/podman/podman.sock") {
		t.Errorf("podman url = %q", url)
	}

	bogus := &JobContainer{Image: "alpine", Engine: "lxc"}
	if _, err := bogus.EngineURL(); !errors.Is(err, ErrJobValidation) {
		t.Errorf("unrecognized engine error = %v, want ErrJobValidation", err)
	}
}

// TestParseHookType verifies hook-type name parsing
func TestParseHookType(t *testing.T) {
	for _, ht := range HookTypes() {
		parsed, ok := ParseHookType(string(ht))
		if !ok || parsed != ht {
			t.Errorf("ParseHookType(%q) = %q, %v", ht, parsed, ok)
		}
	}
	if _, ok := ParseHookType("after_everything"); ok {
		t.Error("unknown hook type accepted")
	}
	if parsed, ok := ParseHookType("  BEFORE_ALL  "); !ok || parsed != HookBeforeAll {
		t.Errorf("case-insensitive parse failed: %q, %v", parsed, ok)
	}
}

// TestHookIdentifiers verifies hook provenance id construction
func TestHookIdentifiers(t *testing.T) {
	seed := HookStackSeed(HookBeforeJob, "a")
	if seed != "Hook(before_job;parent=a)" {
		t.Errorf("seed = %q", seed)
	}
	if !IsHookID(seed) {
		t.Error("seed not detected as hook id")
	}

	schedID := HookSchedulerID(HookOnError, "a", "notify")
	if schedID != "Hook(on_error;parent=a)__notify" {
		t.Errorf("scheduler id = %q", schedID)
	}
	if !IsHookID(schedID) {
		t.Error("scheduler id not detected as hook id")
	}

	if IsHookID("plain-job") {
		t.Error("plain job id detected as hook id")
	}
}
