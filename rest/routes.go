package rest

import (
	"net/http"

	"github.com/benchwatch/benchwatch"
	"github.com/benchwatch/benchwatch/model"
	"github.com/evergreen-ci/gimlet"
	"github.com/mongodb/amboy"
)

////////////////////////////////////////////////////////////////////////
//
// GET /status

type StatusResponse struct {
	Revision   string           `json:"revision"`
	QueueStats amboy.QueueStats `json:"queue_stats"`
}

func (s *Service) statusHandler(w http.ResponseWriter, r *http.Request) {
	resp := &StatusResponse{
		Revision: benchwatch.BuildRevision,
	}
	if s.queue != nil {
		resp.QueueStats = s.queue.Stats(r.Context())
	}

	gimlet.WriteJSON(w, resp)
}

////////////////////////////////////////////////////////////////////////
//
// POST /admin/flags/{flagName}/enabled

type serviceFlagResponse struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
	State bool   `json:"state"`
}

func (s *Service) setServiceFlagEnabled(w http.ResponseWriter, r *http.Request) {
	flag := gimlet.GetVars(r)["flagName"]

	resp := serviceFlagResponse{
		Name: flag,
	}

	conf := model.NewBenchwatchConfig(s.Environment)
	if err := conf.Find(r.Context()); err != nil {
		resp.Error = err.Error()
		gimlet.WriteJSONError(w, resp)
		return
	}

	if err := conf.Flags.SetTrue(r.Context(), flag); err != nil {
		resp.Error = err.Error()
		gimlet.WriteJSONError(w, resp)
		return
	}

	resp.State = true
	gimlet.WriteJSON(w, &resp)
}

func (s *Service) setServiceFlagDisabled(w http.ResponseWriter, r *http.Request) {
	flag := gimlet.GetVars(r)["flagName"]

	resp := serviceFlagResponse{
		Name: flag,
	}

	conf := model.NewBenchwatchConfig(s.Environment)
	if err := conf.Find(r.Context()); err != nil {
		resp.Error = err.Error()
		gimlet.WriteJSONError(w, resp)
		return
	}

	if err := conf.Flags.SetFalse(r.Context(), flag); err != nil {
		resp.Error = err.Error()
		gimlet.WriteJSONError(w, resp)
		return
	}

	resp.State = true
	gimlet.WriteJSON(w, &resp)
}
