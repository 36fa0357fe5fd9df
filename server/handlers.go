package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nexletter/generator"
	"nexletter/notify"
)

type sessionView struct {
	ID           string                 `json:"id"`
	CreatedAt    time.Time              `json:"createdAt"`
	State        generator.State        `json:"state"`
	Selected     generator.DocumentType `json:"selected"`
	Drafts       generator.DraftSet     `json:"drafts,omitempty"`
	DraftsFor    uint64                 `json:"draftsRequestId,omitempty"`
	Notification *notify.Event          `json:"notification,omitempty"`
	History      []generator.Turn       `json:"history"`
}

func (s *Server) view(e *sessionEntry) sessionView {
	v := sessionView{
		ID:        e.sess.ID,
		CreatedAt: e.sess.CreatedAt,
		State:     e.sess.State(),
		Selected:  e.sess.Drafts().Selected(),
		History:   e.sess.History(),
	}
	if drafts, _, id, ok := e.sess.Drafts().Drafts(); ok {
		v.Drafts = drafts
		v.DraftsFor = id
	}
	if ev, ok := e.notifier.Current(); ok {
		v.Notification = &ev
	}
	return v
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	e, err := s.newSession()
	if err != nil {
		s.log.Error().Err(err).Msg("create session")
		writeError(w, http.StatusInternalServerError, "could not create session")
		return
	}
	writeJSON(w, http.StatusCreated, s.view(e))
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.view(e))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	var raw generator.RawFields
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req, err := e.sess.Submit(r.Context(), raw)
	var verrs generator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
		return
	case err != nil:
		s.log.Error().Err(err).Str("session_id", e.sess.ID).Msg("submit")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"requestId": req.ID})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		DocumentType string `json:"documentType"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	t, err := generator.ParseDocumentType(body.DocumentType)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	changed := e.sess.Select(t)
	writeJSON(w, http.StatusOK, map[string]any{"selected": t, "changed": changed})
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		DocumentType string `json:"documentType"`
	}
	// an empty body copies the selected document
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
	}
	t := e.sess.Drafts().Selected()
	if body.DocumentType != "" {
		parsed, err := generator.ParseDocumentType(body.DocumentType)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		t = parsed
	}
	text, _ := e.sess.Drafts().Get(t)
	if err := e.sess.Copy(t); err != nil {
		s.connectorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documentType": t, "text": text})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	e, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := e.sess.Save(r.Context()); err != nil {
		s.connectorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) connectorError(w http.ResponseWriter, err error) {
	if errors.Is(err, generator.ErrNoDrafts) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.log.Warn().Err(err).Msg("connector failed")
	writeError(w, http.StatusBadGateway, err.Error())
}
