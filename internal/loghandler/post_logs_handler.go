// Package loghandler receives console output posted by the avatar page.
package loghandler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/baalimago/avatarweb/internal/model"
	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// Func will log the messages using ancli depending on the log level. It replies
// with an empty json object so that clients which always parse the body succeed.
func Func() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var logMessage model.LogMessage
		err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&logMessage)
		if err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		loggerName := logMessage.Logger
		if loggerName == "" {
			loggerName = "browser"
		}

		msg := fmt.Sprintf("[%v]: %v", loggerName, logMessage.Message)

		switch logMessage.Level {
		case model.DEBUG:
			ancli.Noticef("%v", msg)
		case model.INFO:
			ancli.Okf("%v", msg)
		case model.WARNING:
			ancli.Warnf("%v", msg)
		case model.ERROR:
			ancli.Errf("%v", msg)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}
}
