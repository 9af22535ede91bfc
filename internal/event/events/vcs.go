package events

import (
	"slices"

	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
	"github.com/dshills/keybridge/internal/types"
)

// VCS event topics.
const (
	TopicVCSBranchChanged topic.Topic = "vcs.branch_changed"
	TopicVCSStatusChanged topic.Topic = "vcs.status_changed"
	TopicVCSDiffUpdated   topic.Topic = "vcs.diff_updated"
)

// BranchChanged is published when the checked-out branch changes.
type BranchChanged struct {
	vcsEvent

	Root   string
	Branch string
}

func (BranchChanged) Topic() topic.Topic { return TopicVCSBranchChanged }
func (BranchChanged) Coalescible() bool  { return false }
func (e BranchChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicVCSBranchChanged, e.Root)
}

// VCSStatusChanged carries the full working-tree status of a repository.
type VCSStatusChanged struct {
	vcsEvent

	Root string

	files []types.FileStatus
}

// NewVCSStatusChanged copies files into a new event.
func NewVCSStatusChanged(root string, files []types.FileStatus) VCSStatusChanged {
	return VCSStatusChanged{Root: root, files: slices.Clone(files)}
}

// Files returns a copy of the file states.
func (e VCSStatusChanged) Files() []types.FileStatus {
	return slices.Clone(e.files)
}

func (VCSStatusChanged) Topic() topic.Topic { return TopicVCSStatusChanged }
func (VCSStatusChanged) Coalescible() bool  { return true }
func (e VCSStatusChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicVCSStatusChanged, e.Root)
}

// DiffUpdated carries the diff hunks of a document against its base revision.
type DiffUpdated struct {
	vcsEvent

	Doc types.DocumentID

	hunks []types.Hunk
}

// NewDiffUpdated copies hunks into a new event.
func NewDiffUpdated(doc types.DocumentID, hunks []types.Hunk) DiffUpdated {
	return DiffUpdated{Doc: doc, hunks: slices.Clone(hunks)}
}

// Hunks returns a copy of the hunks.
func (e DiffUpdated) Hunks() []types.Hunk {
	return slices.Clone(e.hunks)
}

func (DiffUpdated) Topic() topic.Topic { return TopicVCSDiffUpdated }
func (DiffUpdated) Coalescible() bool  { return true }
func (e DiffUpdated) CoalesceKey() coalesce.Key {
	return keyOf(TopicVCSDiffUpdated, e.Doc.String())
}
