package core

import (
	"fmt"
	"slices"

	"github.com/dshills/keybridge/internal/types"
)

// languageServers maps a language to the server started for it.
var languageServers = map[string]string{
	"go":         "gopls",
	"rust":       "rust-analyzer",
	"python":     "pylsp",
	"typescript": "typescript-language-server",
	"javascript": "typescript-language-server",
	"c":          "clangd",
}

func (e *Editor) serverFor(lang string) *Server {
	for _, s := range e.servers {
		if s.Language == lang {
			return s
		}
	}
	return nil
}

// requestServer asks the host to start a server for doc's language when
// one is known and none is running.
func (e *Editor) requestServer(doc *Document) {
	name, ok := languageServers[doc.Language]
	if !ok || e.serverFor(doc.Language) != nil {
		return
	}
	e.emit(ServerStartRequested{Root: e.root, Name: name, Language: doc.Language})
}

// startServer starts an in-process stand-in session: it initializes
// immediately and reports one indexing pass.
func (e *Editor) startServer(lang string) error {
	name, ok := languageServers[lang]
	if !ok {
		return fmt.Errorf("no language server for %q", lang)
	}
	if e.serverFor(lang) != nil {
		return nil
	}
	e.nextServer++
	s := &Server{ID: types.ServerID(e.nextServer), Name: name, Language: lang, Root: e.root}
	e.servers[s.ID] = s
	e.logger.Info("language server started", "server", s.ID, "name", name, "language", lang)

	e.emit(ServerDidInitialize{Server: s})
	token := "index-" + s.ID.String()
	e.emit(ProgressDidReport{Server: s, Token: token, Phase: ProgressBegin, Title: "indexing", Percent: 0})
	n := 0
	for _, d := range e.Documents() {
		if d.Language == lang {
			n++
		}
	}
	e.emit(ProgressDidReport{Server: s, Token: token, Phase: ProgressReport, Message: fmt.Sprintf("%d file(s)", n), Percent: 50})
	e.emit(ProgressDidReport{Server: s, Token: token, Phase: ProgressEnd, Message: "done", Percent: 100})
	return nil
}

func (e *Editor) stopServers(lang string) {
	ids := make([]types.ServerID, 0, len(e.servers))
	for id, s := range e.servers {
		if lang == "" || s.Language == lang {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	for _, id := range ids {
		s := e.servers[id]
		delete(e.servers, id)
		e.emit(ServerDidExit{Server: s})
	}
}
