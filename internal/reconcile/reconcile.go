package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/pfrederiksen/lolopal/internal/match"
)

// ErrNonFastForward is returned when the push is rejected because the remote
// branch moved. The run fails; the next scheduled run retries from scratch.
var ErrNonFastForward = errors.New("push rejected: non-fast-forward")

// MessageTimeFormat is the commit message timestamp layout (UTC, minute
// granularity).
const MessageTimeFormat = "2006-01-02 15:04"

// Author is the fixed automation identity used for every commit.
type Author struct {
	Name  string
	Email string
}

// Options configures a Reconciler.
type Options struct {
	// RepoDir is the repository working directory.
	RepoDir string
	// Paths are the repo-relative data artifacts under reconciliation.
	// Only these are ever staged.
	Paths []string
	// Author is the commit identity.
	Author Author
	// MessagePrefix is the fixed commit message prefix.
	MessagePrefix string
	// RemoteName is the push target. Defaults to "origin".
	RemoteName string
	// Token, if set, is used as a basic-auth credential for the push.
	Token string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Result describes the outcome of one reconciliation.
type Result struct {
	// Committed reports whether a commit was created and pushed.
	Committed bool `json:"committed"`
	// Pending reports that changes exist but were left alone (dry run).
	Pending bool `json:"pending,omitempty"`
	// Hash is the new commit hash, when committed.
	Hash string `json:"hash,omitempty"`
	// Message is the commit message, when committed.
	Message string `json:"message,omitempty"`
	// ChangedPaths lists the designated paths that differed from HEAD.
	ChangedPaths []string `json:"changed_paths,omitempty"`
}

// Reconciler compares designated working-tree artifacts against the last
// commit and publishes a new commit only when they differ.
type Reconciler struct {
	opts   Options
	pushFn func(ctx context.Context, repo *git.Repository) error
}

// New creates a Reconciler.
func New(opts Options) *Reconciler {
	if opts.RemoteName == "" {
		opts.RemoteName = "origin"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Reconciler{opts: opts}
	r.pushFn = r.push
	return r
}

// Reconcile runs one reconciliation pass. With dryRun set it reports pending
// changes without staging, committing, or pushing anything.
//
// At most one commit is produced per invocation. A clean tree is a
// successful no-op with Committed=false.
func (r *Reconciler) Reconcile(ctx context.Context, dryRun bool) (*Result, error) {
	repo, err := git.PlainOpen(r.opts.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("computing status: %w", err)
	}

	changed := changedPaths(status, r.opts.Paths)
	if len(changed) == 0 {
		return &Result{Committed: false}, nil
	}

	if dryRun {
		return &Result{Pending: true, ChangedPaths: changed}, nil
	}

	for _, p := range changed {
		if _, err := wt.Add(p); err != nil {
			return nil, fmt.Errorf("staging %s: %w", p, err)
		}
	}

	now := r.opts.Now().UTC()
	message := fmt.Sprintf("%s - %s UTC", r.opts.MessagePrefix, now.Format(MessageTimeFormat))

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.opts.Author.Name,
			Email: r.opts.Author.Email,
			When:  now,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating commit: %w", err)
	}

	if err := r.pushFn(ctx, repo); err != nil {
		return nil, err
	}

	return &Result{
		Committed:    true,
		Hash:         hash.String(),
		Message:      message,
		ChangedPaths: changed,
	}, nil
}

// changedPaths returns the designated paths whose staged or worktree state
// differs from HEAD. Paths absent from the status map are clean.
func changedPaths(status git.Status, paths []string) []string {
	var changed []string
	for _, p := range paths {
		fs, ok := status[p]
		if !ok {
			continue
		}
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		changed = append(changed, p)
	}
	return changed
}

func (r *Reconciler) push(ctx context.Context, repo *git.Repository) error {
	opts := &git.PushOptions{RemoteName: r.opts.RemoteName}
	if r.opts.Token != "" {
		opts.Auth = &githttp.BasicAuth{
			Username: "x-access-token",
			Password: r.opts.Token,
		}
	}

	err := repo.PushContext(ctx, opts)
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if strings.Contains(err.Error(), "non-fast-forward") {
		return fmt.Errorf("%w: %v", ErrNonFastForward, err)
	}
	return fmt.Errorf("pushing to %s: %w", r.opts.RemoteName, err)
}

// CurrentBranch returns the checked-out branch name of the repository at
// dir. A repository with no commits yet reports "main".
func CurrentBranch(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("opening repository: %w", err)
	}
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "main", nil
		}
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Name().Short(), nil
}

// HeadSnapshot reads the designated snapshot file as committed at HEAD.
// It returns (nil, nil) when the repository has no commits yet or the file
// is not tracked, so a first run diffs against nothing.
func (r *Reconciler) HeadSnapshot(path string) (*match.Snapshot, error) {
	repo, err := git.PlainOpen(r.opts.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("opening repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("reading HEAD commit: %w", err)
	}

	f, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s at HEAD: %w", path, err)
	}

	rdr, err := f.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening %s at HEAD: %w", path, err)
	}
	defer rdr.Close()

	return match.Decode(rdr)
}
