package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/schema"
	"github.com/JonMunkholm/gridcheck/internal/session"
)

// ruleSetInfo describes a registered rule set to API clients.
type ruleSetInfo struct {
	Name       string               `json:"name"`
	Label      string               `json:"label,omitempty"`
	Default    bool                 `json:"default"`
	Identity   core.IdentityColumns `json:"identity"`
	Sequence   core.SequencePolicy  `json:"sequence"`
	Separators string               `json:"separators"`
	Columns    []columnInfo         `json:"columns"`
}

type columnInfo struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Required      bool     `json:"required"`
	Type          string   `json:"type"`
	Multiplicity  string   `json:"multiplicity"`
	AllowedValues []string `json:"allowedValues,omitempty"`
	Pattern       string   `json:"pattern,omitempty"`
}

// handleListRuleSets returns every registered rule set with configured
// overrides applied.
func (s *Server) handleListRuleSets(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]ruleSetInfo, 0, len(defs))
	for _, def := range defs {
		info, err := s.describeRuleSet(def)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		out = append(out, info)
	}
	writeJSON(w, map[string]interface{}{
		"ruleSets": out,
		"count":    len(out),
	})
}

// handleGetRuleSet returns one rule set as JSON, or as a YAML schema file
// with ?format=yaml.
func (s *Server) handleGetRuleSet(w http.ResponseWriter, r *http.Request) {
	def, err := s.resolveRuleSet(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		data, err := schema.Marshal(def)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", def.Name+".yaml"))
		w.Write(data)
		return
	}

	info, err := s.describeRuleSet(def)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, info)
}

// resolveRuleSet looks up a registered definition, falling back to the
// configured default when name is empty.
func (s *Server) resolveRuleSet(name string) (core.RuleSetDefinition, error) {
	if name == "" {
		name = s.cfg.Validation.RuleSet
	}
	def, ok := core.Get(name)
	if !ok {
		return core.RuleSetDefinition{}, fmt.Errorf("%w %q", errUnknownRuleSet, name)
	}
	return s.cfg.Validation.Apply(def), nil
}

func (s *Server) describeRuleSet(def core.RuleSetDefinition) (ruleSetInfo, error) {
	rs, err := core.CompileRules(s.cfg.Validation.Apply(def))
	if err != nil {
		return ruleSetInfo{}, err
	}

	info := ruleSetInfo{
		Name:       rs.Name(),
		Label:      def.Label,
		Default:    def.Name == s.cfg.Validation.RuleSet,
		Identity:   rs.Identity(),
		Sequence:   rs.Sequence(),
		Separators: rs.Separators(),
	}
	for _, rule := range rs.Rules() {
		info.Columns = append(info.Columns, columnInfo{
			ID:            rule.ID,
			Label:         rule.Name(),
			Required:      rule.Required,
			Type:          string(rule.DataType),
			Multiplicity:  string(rule.Multiplicity),
			AllowedValues: rule.AllowedValues,
			Pattern:       rule.Pattern,
		})
	}
	return info, nil
}

// handleListSessions returns the open sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.store.List()
	writeJSON(w, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// handleCreateSession opens a session. The body is optional:
// {"ruleSet": "name", "enabled": true}.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RuleSet string `json:"ruleSet"`
		Enabled *bool  `json:"enabled"`
	}
	if err := decodeOptionalJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	def, err := s.resolveRuleSet(req.RuleSet)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	enabled := s.cfg.Validation.StartEnabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	sess, err := s.store.Create(def, enabled)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.ForSession(r.Context(), sess.ID, sess.RuleSet).Info("session created", "enabled", enabled)

	w.Header().Set("Location", "/api/sessions/"+sess.ID)
	writeJSONStatus(w, http.StatusCreated, sess.Info())
}

// handleGetSession returns a session's state.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sess.Info())
}

// handleDeleteSession closes a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.store.Delete(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	logging.WithFields(r.Context(), "session_id", id).Info("session closed")
	w.WriteHeader(http.StatusNoContent)
}

// session resolves the {sessionID} URL parameter.
func (s *Server) session(r *http.Request) (*session.Session, error) {
	return s.store.Get(chi.URLParam(r, "sessionID"))
}

// decodeOptionalJSON decodes a JSON body into v. An empty body leaves v
// untouched.
func decodeOptionalJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %w", errInvalidRequest, err)
}

// decodeJSON decodes a required JSON body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", errInvalidRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return nil
}
