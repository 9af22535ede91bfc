package events

import (
	"github.com/dshills/keybridge/internal/coalesce"
	"github.com/dshills/keybridge/internal/event/topic"
)

// Domain groups related event variants.
type Domain int

const (
	DomainDocument Domain = iota + 1
	DomainView
	DomainEditor
	DomainLSP
	DomainUI
	DomainWorkspace
	DomainVCS
)

// Domains lists every domain in declaration order.
var Domains = []Domain{
	DomainDocument, DomainView, DomainEditor, DomainLSP, DomainUI, DomainWorkspace, DomainVCS,
}

// String returns the domain's topic segment.
func (d Domain) String() string {
	switch d {
	case DomainDocument:
		return "document"
	case DomainView:
		return "view"
	case DomainEditor:
		return "editor"
	case DomainLSP:
		return "lsp"
	case DomainUI:
		return "ui"
	case DomainWorkspace:
		return "workspace"
	case DomainVCS:
		return "vcs"
	default:
		return "unknown"
	}
}

// Topic returns the domain as a registration topic.
func (d Domain) Topic() topic.Topic {
	return topic.Topic(d.String())
}

// Event is a domain event. The interface is sealed: only types in this
// package implement it.
type Event interface {
	coalesce.Item

	// Topic returns the variant's topic.
	Topic() topic.Topic

	// Domain returns the variant's domain.
	Domain() Domain

	// Version returns the payload schema version.
	Version() int

	sealed()
}

// Batch is a dispatch batch of domain events.
type Batch = coalesce.Batch[Event]

func keyOf(t topic.Topic, id string) coalesce.Key {
	return coalesce.Key{Kind: string(t), ID: id}
}

type base struct{}

func (base) Version() int { return 1 }
func (base) sealed()      {}

type documentEvent struct{ base }

func (documentEvent) Domain() Domain { return DomainDocument }

type viewEvent struct{ base }

func (viewEvent) Domain() Domain { return DomainView }

type editorEvent struct{ base }

func (editorEvent) Domain() Domain { return DomainEditor }

type lspEvent struct{ base }

func (lspEvent) Domain() Domain { return DomainLSP }

type uiEvent struct{ base }

func (uiEvent) Domain() Domain { return DomainUI }

type workspaceEvent struct{ base }

func (workspaceEvent) Domain() Domain { return DomainWorkspace }

type vcsEvent struct{ base }

func (vcsEvent) Domain() Domain { return DomainVCS }
