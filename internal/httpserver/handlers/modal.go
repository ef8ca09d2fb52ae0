package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/reel/internal/apperr"
	"github.com/MrSnakeDoc/reel/internal/authmodal"
	"github.com/MrSnakeDoc/reel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reel/internal/httpserver/mw"
)

type modeRequest struct {
	Mode string `json:"mode"`
}

// ModalState serves GET /api/ui/auth-modal.
func ModalState(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		writeJSON(w, r, http.StatusOK, s.Modal.Snapshot())
	}
}

// ModalOpen shows the modal. An optional {"mode": "..."} body selects the
// form; an unknown mode opens the login form.
func ModalOpen(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		s := mw.SessionFrom(r.Context())
		if req.Mode == "" {
			s.Modal.Open()
		} else {
			mode, _ := authmodal.ParseMode(req.Mode)
			s.Modal.Open(mode)
		}
		writeJSON(w, r, http.StatusOK, s.Modal.Snapshot())
	}
}

// ModalClose hides the modal.
func ModalClose(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		s.Modal.Close()
		writeJSON(w, r, http.StatusOK, s.Modal.Snapshot())
	}
}

// ModalToggle flips between login and register.
func ModalToggle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := mw.SessionFrom(r.Context())
		s.Modal.ToggleMode()
		writeJSON(w, r, http.StatusOK, s.Modal.Snapshot())
	}
}

// ModalSetMode sets the mode explicitly. Unlike open, an unknown mode is
// rejected and the state is left alone.
func ModalSetMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modeRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, d.Logger, err)
			return
		}

		s := mw.SessionFrom(r.Context())
		mode, ok := authmodal.ParseMode(req.Mode)
		if !ok || !s.Modal.SetMode(mode) {
			writeError(w, r, d.Logger, apperr.InvalidArgument("mode %q, must be %q or %q",
				req.Mode, authmodal.ModeLogin, authmodal.ModeRegister))
			return
		}
		writeJSON(w, r, http.StatusOK, s.Modal.Snapshot())
	}
}
