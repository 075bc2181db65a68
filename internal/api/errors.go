package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mythos/internal/agent"
	"mythos/internal/gemini"
	"mythos/internal/imagegen"
	"mythos/internal/model"
	"mythos/internal/speech"
	"mythos/internal/store"
	"mythos/internal/tools"
)

var errTextOnly = fmt.Errorf("%w: text-only stories have no illustration", model.ErrInvalidRequest)

// statusFor maps an error to its HTTP status and the message shown to clients.
// Transport details stay in the logs.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, store.ErrNotFound.Error()
	case errors.Is(err, tools.ErrUnknownTool):
		return http.StatusNotFound, tools.ErrUnknownTool.Error()
	case errors.Is(err, store.ErrBusy):
		return http.StatusConflict, store.ErrBusy.Error()
	case errors.Is(err, agent.ErrBusy):
		return http.StatusConflict, "a reply is already being written"
	case errors.Is(err, gemini.ErrTextGeneration):
		return http.StatusBadGateway, gemini.ErrTextGeneration.Error()
	case errors.Is(err, imagegen.ErrImageGeneration):
		return http.StatusBadGateway, imagegen.ErrImageGeneration.Error()
	case errors.Is(err, speech.ErrSpeechGeneration):
		return http.StatusBadGateway, speech.ErrSpeechGeneration.Error()
	case errors.Is(err, agent.ErrChat):
		return http.StatusBadGateway, agent.ErrChat.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	entry := logrus.WithError(err).WithFields(logrus.Fields{"path": c.FullPath(), "status": status})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}
	c.JSON(status, gin.H{"error": msg})
}
