package livemap

import (
	"io"
	"log"
	"net/http"

	"sprintrace/pkg/caster"
)

type raceStarted struct {
	Session string `json:"session"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := caster.JSON[any]{}.To(v)
	if err != nil {
		log.Printf("encoding response: %s\n", err)
		http.Error(w, "encoding response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		log.Printf("writing response: %s\n", err)
	}
}

func (lm *LiveMap) startRaceHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		s := lm.runner.Restart()
		writeJSON(w, http.StatusCreated, raceStarted{Session: s.ID})
	}
}

func (lm *LiveMap) statusHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, lm.Frame())
	}
}

func (lm *LiveMap) highscoresHandler() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, lm.ledger.List())
	}
}
