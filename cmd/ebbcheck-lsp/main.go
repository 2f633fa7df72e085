// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"ebbir/internal/config"
	"ebbir/internal/lsp"
)

const lsName = "ebbcheck"

var (
	version = "0.1.0"
	handler protocol.Handler
)

var log = commonlog.GetLogger("ebbir.lsp.main")

func main() {
	cfg := config.Default()

	// The server is started from the workspace root; pick up its config.
	if wd, err := os.Getwd(); err == nil {
		if path, ok := config.Find(wd); ok {
			loaded, err := config.Load(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			} else {
				cfg = loaded
			}
		}
	}

	// Never quieter than warnings; stdout carries the protocol.
	commonlog.Configure(max(1, cfg.Verbosity), nil)

	ebbHandler := lsp.NewHandler(cfg)

	handler = protocol.Handler{
		Initialize:                     ebbHandler.Initialize,
		Initialized:                    ebbHandler.Initialized,
		Shutdown:                       ebbHandler.Shutdown,
		SetTrace:                       ebbHandler.SetTrace,
		TextDocumentDidOpen:            ebbHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           ebbHandler.TextDocumentDidClose,
		TextDocumentDidChange:          ebbHandler.TextDocumentDidChange,
		TextDocumentSemanticTokensFull: ebbHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Infof("starting %s %s", lsName, version)

	if err := s.RunStdio(); err != nil {
		log.Errorf("server stopped: %s", err)
		os.Exit(1)
	}
}
