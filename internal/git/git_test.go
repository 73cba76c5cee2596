package git

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/traincut/traincut/internal/errors"
)

// fakeExecutor records every invocation and replays canned responses.
type fakeExecutor struct {
	calls     [][]string
	responses []fakeResponse
}

type fakeResponse struct {
	output string
	err    error
}

func (f *fakeExecutor) Run(dir, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if len(f.responses) == 0 {
		return nil, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return []byte(resp.output), resp.err
}

func (f *fakeExecutor) call(i int) string {
	if i >= len(f.calls) {
		return ""
	}
	return strings.Join(f.calls[i], " ")
}

func TestFetchBranch(t *testing.T) {
	exec := &fakeExecutor{}
	client := NewWithExecutor("/work", exec)

	if err := client.FetchBranch("origin", "10.0.x"); err != nil {
		t.Fatalf("FetchBranch: %v", err)
	}
	if got, want := exec.call(0), "git fetch origin 10.0.x"; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestFetchBranchError(t *testing.T) {
	exec := &fakeExecutor{responses: []fakeResponse{
		{output: "fatal: couldn't find remote ref", err: stderrors.New("exit status 128")},
	}}
	client := NewWithExecutor("/work", exec)

	err := client.FetchBranch("origin", "10.0.x")
	if err == nil {
		t.Fatal("expected error")
	}
	var gerr *errors.GitError
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %T, want *errors.GitError", err)
	}
	if gerr.Branch != "10.0.x" {
		t.Errorf("Branch = %q, want 10.0.x", gerr.Branch)
	}
	if !strings.Contains(gerr.Output, "couldn't find remote ref") {
		t.Errorf("Output = %q", gerr.Output)
	}
}

func TestCheckoutNewBranch(t *testing.T) {
	exec := &fakeExecutor{}
	client := NewWithExecutor("/work", exec)

	if err := client.CheckoutNewBranch("release-stage-10.0.2", "FETCH_HEAD"); err != nil {
		t.Fatalf("CheckoutNewBranch: %v", err)
	}
	if got, want := exec.call(0), "git checkout -B release-stage-10.0.2 FETCH_HEAD"; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestCommitAll(t *testing.T) {
	t.Run("stages then commits", func(t *testing.T) {
		exec := &fakeExecutor{}
		client := NewWithExecutor("/work", exec)

		if err := client.CommitAll("release: cut the v10.0.2 release"); err != nil {
			t.Fatalf("CommitAll: %v", err)
		}
		if got, want := exec.call(0), "git add -A"; got != want {
			t.Errorf("first command = %q, want %q", got, want)
		}
		if got, want := exec.call(1), "git commit -m release: cut the v10.0.2 release"; got != want {
			t.Errorf("second command = %q, want %q", got, want)
		}
	})

	t.Run("nothing to commit is not an error", func(t *testing.T) {
		exec := &fakeExecutor{responses: []fakeResponse{
			{},
			{output: "nothing to commit, working tree clean", err: stderrors.New("exit status 1")},
		}}
		client := NewWithExecutor("/work", exec)

		if err := client.CommitAll("release: cut the v10.0.2 release"); err != nil {
			t.Errorf("CommitAll with clean tree: %v", err)
		}
	})
}

func TestPush(t *testing.T) {
	exec := &fakeExecutor{}
	client := NewWithExecutor("/work", exec)

	url := ForkRemoteURL("releasebot", "framework")
	if err := client.Push(url, "release-stage-10.0.2", "release-stage-10.0.2", true); err != nil {
		t.Fatalf("Push: %v", err)
	}
	want := "git push https://github.com/releasebot/framework.git release-stage-10.0.2:refs/heads/release-stage-10.0.2 --force-with-lease"
	if got := exec.call(0); got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestBranchExistsOnRemote(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{name: "exists", output: "abc123\trefs/heads/10.0.x\n", want: true},
		{name: "missing", output: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{responses: []fakeResponse{{output: tt.output}}}
			client := NewWithExecutor("/work", exec)

			got, err := client.BranchExistsOnRemote("origin", "10.0.x")
			if err != nil {
				t.Fatalf("BranchExistsOnRemote: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasUncommittedChanges(t *testing.T) {
	exec := &fakeExecutor{responses: []fakeResponse{{output: " M package.json\n"}}}
	client := NewWithExecutor("/work", exec)

	dirty, err := client.HasUncommittedChanges()
	if err != nil {
		t.Fatalf("HasUncommittedChanges: %v", err)
	}
	if !dirty {
		t.Error("expected dirty working tree")
	}
}
