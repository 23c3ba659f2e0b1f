package types

import (
	"encoding/json"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PipelineKind
		wantErr bool
	}{
		{name: "github actions", input: "github_actions", want: KindGitHubActions},
		{name: "gitlab ci", input: "gitlab_ci", want: KindGitLabCI},
		{name: "jenkins", input: "jenkins", want: KindJenkins},
		{name: "azure devops", input: "azure_devops", want: KindAzureDevOps},
		{name: "unknown", input: "circleci", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestReportHelpers(t *testing.T) {
	r := NewReport()
	if !r.Ok() {
		t.Fatal("new report should have success status")
	}
	if r.Failures == nil || r.Warnings == nil {
		t.Fatal("new report should have non-nil finding slices")
	}
	if r.HasFailures() {
		t.Fatal("new report should have no failures")
	}

	r.AddFailure(Finding{Kind: FindingMissingJobs, Message: "no jobs"})
	r.AddWarning(Finding{Kind: FindingUndefinedSecret, Secret: "TOKEN"})

	if !r.HasFailures() {
		t.Error("expected failures after AddFailure")
	}
	if got := r.Failures[0].Severity; got != SeverityFailure {
		t.Errorf("AddFailure severity = %v, want %v", got, SeverityFailure)
	}
	if got := r.Warnings[0].Severity; got != SeverityWarning {
		t.Errorf("AddWarning severity = %v, want %v", got, SeverityWarning)
	}
}

func TestErrorReport(t *testing.T) {
	r := ErrorReport("could not parse pipeline")
	if r.Ok() {
		t.Error("error report should not be ok")
	}
	if r.Message != "could not parse pipeline" {
		t.Errorf("unexpected message: %q", r.Message)
	}
	if len(r.Failures) != 0 || len(r.Warnings) != 0 {
		t.Error("error report should carry no findings")
	}
}

func TestFindingIndexZeroSerialization(t *testing.T) {
	f := Finding{
		Kind:     FindingMissingSteps,
		Severity: SeverityFailure,
		JobIndex: Index(0),
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal finding: %v", err)
	}

	var decoded Finding
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal finding: %v", err)
	}
	if decoded.JobIndex == nil || *decoded.JobIndex != 0 {
		t.Errorf("job index 0 lost in round trip: %v", decoded.JobIndex)
	}
}
