package events

import (
	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
	"github.com/dshills/keybridge/internal/types"
)

// Language server event topics.
const (
	TopicLSPServerInitialized      topic.Topic = "lsp.server.initialized"
	TopicLSPServerExited           topic.Topic = "lsp.server.exited"
	TopicLSPServerError            topic.Topic = "lsp.server.error"
	TopicLSPServerStartupRequested topic.Topic = "lsp.server.startup_requested"
	TopicLSPProgressStarted        topic.Topic = "lsp.progress.started"
	TopicLSPProgressUpdated        topic.Topic = "lsp.progress.updated"
	TopicLSPProgressCompleted      topic.Topic = "lsp.progress.completed"
)

// ServerInitialized is published once a language server finished its handshake.
type ServerInitialized struct {
	lspEvent

	Server types.ServerID
	Name   string
}

func (ServerInitialized) Topic() topic.Topic { return TopicLSPServerInitialized }
func (ServerInitialized) Coalescible() bool  { return false }
func (e ServerInitialized) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPServerInitialized, e.Server.String())
}

// ServerExited is published when a language server process ends.
type ServerExited struct {
	lspEvent

	Server types.ServerID
	Name   string
}

func (ServerExited) Topic() topic.Topic { return TopicLSPServerExited }
func (ServerExited) Coalescible() bool  { return false }
func (e ServerExited) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPServerExited, e.Server.String())
}

// ServerError reports a language server failure.
type ServerError struct {
	lspEvent

	Server  types.ServerID
	Message string
}

func (ServerError) Topic() topic.Topic { return TopicLSPServerError }
func (ServerError) Coalescible() bool  { return false }
func (e ServerError) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPServerError, e.Server.String())
}

// ServerStartupRequested asks for a server to be started for a project root.
type ServerStartupRequested struct {
	lspEvent

	Root     string
	Server   string
	Language string
}

func (ServerStartupRequested) Topic() topic.Topic { return TopicLSPServerStartupRequested }
func (ServerStartupRequested) Coalescible() bool  { return false }
func (e ServerStartupRequested) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPServerStartupRequested, e.Root+"|"+e.Server)
}

// ProgressStarted opens a work-done progress report.
type ProgressStarted struct {
	lspEvent

	Server types.ServerID
	Token  string
	Title  string
}

func (ProgressStarted) Topic() topic.Topic { return TopicLSPProgressStarted }
func (ProgressStarted) Coalescible() bool  { return false }
func (e ProgressStarted) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPProgressStarted, progressID(e.Server, e.Token))
}

// ProgressUpdated reports intermediate progress. Percent is -1 when unknown.
type ProgressUpdated struct {
	lspEvent

	Server  types.ServerID
	Token   string
	Message string
	Percent int
}

func (ProgressUpdated) Topic() topic.Topic { return TopicLSPProgressUpdated }
func (ProgressUpdated) Coalescible() bool  { return true }
func (e ProgressUpdated) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPProgressUpdated, progressID(e.Server, e.Token))
}

// ProgressCompleted closes a progress report.
type ProgressCompleted struct {
	lspEvent

	Server  types.ServerID
	Token   string
	Message string
}

func (ProgressCompleted) Topic() topic.Topic { return TopicLSPProgressCompleted }
func (ProgressCompleted) Coalescible() bool  { return false }
func (e ProgressCompleted) CoalesceKey() coalesce.Key {
	return keyOf(TopicLSPProgressCompleted, progressID(e.Server, e.Token))
}

func progressID(server types.ServerID, token string) string {
	return server.String() + "/" + token
}
