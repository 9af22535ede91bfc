package events

import (
	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
)

// Workspace event topics.
const (
	TopicWorkspaceFileCreated  topic.Topic = "workspace.file.created"
	TopicWorkspaceFileDeleted  topic.Topic = "workspace.file.deleted"
	TopicWorkspaceFileRenamed  topic.Topic = "workspace.file.renamed"
	TopicWorkspaceFileModified topic.Topic = "workspace.file.modified"
	TopicWorkspaceCwdChanged   topic.Topic = "workspace.cwd_changed"
)

// FileCreated is published when a file appears in the workspace.
type FileCreated struct {
	workspaceEvent

	Path string
}

func (FileCreated) Topic() topic.Topic { return TopicWorkspaceFileCreated }
func (FileCreated) Coalescible() bool  { return false }
func (e FileCreated) CoalesceKey() coalesce.Key {
	return keyOf(TopicWorkspaceFileCreated, e.Path)
}

// FileDeleted is published when a file is removed from the workspace.
type FileDeleted struct {
	workspaceEvent

	Path string
}

func (FileDeleted) Topic() topic.Topic { return TopicWorkspaceFileDeleted }
func (FileDeleted) Coalescible() bool  { return false }
func (e FileDeleted) CoalesceKey() coalesce.Key {
	return keyOf(TopicWorkspaceFileDeleted, e.Path)
}

// FileRenamed is published when a file moves within the workspace.
type FileRenamed struct {
	workspaceEvent

	From string
	To   string
}

func (FileRenamed) Topic() topic.Topic { return TopicWorkspaceFileRenamed }
func (FileRenamed) Coalescible() bool  { return false }
func (e FileRenamed) CoalesceKey() coalesce.Key {
	return keyOf(TopicWorkspaceFileRenamed, e.From)
}

// FileModified is published when a file's contents change on disk.
type FileModified struct {
	workspaceEvent

	Path string
}

func (FileModified) Topic() topic.Topic { return TopicWorkspaceFileModified }
func (FileModified) Coalescible() bool  { return true }
func (e FileModified) CoalesceKey() coalesce.Key {
	return keyOf(TopicWorkspaceFileModified, e.Path)
}

// WorkingDirectoryChanged is published when the core changes its cwd.
type WorkingDirectoryChanged struct {
	workspaceEvent

	Path string
}

func (WorkingDirectoryChanged) Topic() topic.Topic { return TopicWorkspaceCwdChanged }
func (WorkingDirectoryChanged) Coalescible() bool  { return true }
func (WorkingDirectoryChanged) CoalesceKey() coalesce.Key {
	return keyOf(TopicWorkspaceCwdChanged, "")
}
