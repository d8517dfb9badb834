package http

import (
	"net/http"

	"github.com/go-kit/log"

	"github.com/venturelink/fileserve/applications/server"
	"github.com/venturelink/fileserve/applications/server/config"
)

func NewHTTPServer(conf config.Api, upload config.Upload, fileService server.FileService, logger log.Logger) *http.Server {
	mux := NewRouter(fileService, upload, logger)
	return &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: mux,
	}
}
