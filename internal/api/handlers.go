package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bbernstein/lightcore-go/internal/database/models"
	"github.com/bbernstein/lightcore-go/internal/database/repositories"
	"github.com/bbernstein/lightcore-go/internal/services/playback"
	"github.com/bbernstein/lightcore-go/internal/services/programmer"
	"github.com/bbernstein/lightcore-go/internal/services/pubsub"
	"github.com/bbernstein/lightcore-go/internal/services/runtime"
	"github.com/bbernstein/lightcore-go/internal/show"
)

// Handler carries the session and stores the REST surface operates on.
type Handler struct {
	session  *Session
	ps       *pubsub.PubSub
	showRepo *repositories.ShowRepository
}

// NewHandler creates the API handler. showRepo may be nil when the show
// library database is not configured.
func NewHandler(session *Session, ps *pubsub.PubSub, showRepo *repositories.ShowRepository) *Handler {
	return &Handler{session: session, ps: ps, showRepo: showRepo}
}

// Routes mounts the REST surface on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/show", h.getShow)
	r.Post("/show/new", h.newShow)
	r.Post("/show/save", h.saveShow)
	r.Post("/show/load", h.loadShow)
	r.Get("/shows", h.listShows)

	r.Post("/fixture-types", h.addFixtureType)
	r.Post("/fixtures", h.addFixture)

	r.Post("/programmer/command", h.programmerCommand)
	r.Post("/programmer/select", h.programmerSelect)
	r.Post("/programmer/intensity", h.programmerIntensity)
	r.Post("/programmer/rgb", h.programmerRGB)
	r.Post("/programmer/clear", h.programmerClear)
	r.Get("/programmer", h.getProgrammer)

	r.Post("/palettes/{name}/record", h.recordPalette)
	r.Post("/palettes/{name}/apply", h.applyPalette)
	r.Post("/groups/{name}/record", h.recordGroup)
	r.Post("/groups/{name}/select", h.selectGroup)

	r.Post("/cues/record", h.recordCue)
	r.Post("/cues/{number}/update", h.updateCue)
	r.Delete("/cues/{number}", h.deleteCue)
	r.Post("/cues/{number}/block", h.blockCue)
	r.Post("/cues/{number}/timing", h.cueTiming)

	r.Post("/playback/select", h.selectPlayback)
	r.Post("/playback/mode", h.playbackMode)
	r.Post("/playback/goto", h.gotoCue)
	r.Post("/playback/go", h.goNext)
	r.Get("/playback", h.playbackStatus)

	r.Post("/tick", h.tick)
	r.Get("/output", h.getOutput)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func urlNumber(r *http.Request) (uint32, error) {
	n, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid cue number: %w", err)
	}
	return uint32(n), nil
}

func (h *Handler) getShow(w http.ResponseWriter, r *http.Request) {
	var doc []byte
	err := h.session.Do(func(rt *runtime.Runtime) error {
		var err error
		doc, err = show.MarshalDocument(rt.Show)
		return err
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (h *Handler) newShow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Name == "" {
		req.Name = "Untitled Show"
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		fresh := show.New(req.Name)
		*rt = *runtime.New(fresh)
		return nil
	})
	h.ps.Publish(pubsub.TopicShowUpdated, req.Name)
	respondJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

func (h *Handler) saveShow(w http.ResponseWriter, r *http.Request) {
	if h.showRepo == nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Errorf("show library not configured"))
		return
	}
	var name string
	var doc []byte
	err := h.session.Do(func(rt *runtime.Runtime) error {
		var err error
		name = rt.Show.Name
		doc, err = show.MarshalDocument(rt.Show)
		return err
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	rec, err := h.showRepo.Upsert(r.Context(), name, string(doc))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": rec.ID, "name": rec.Name})
}

func (h *Handler) loadShow(w http.ResponseWriter, r *http.Request) {
	if h.showRepo == nil {
		respondError(w, http.StatusServiceUnavailable, fmt.Errorf("show library not configured"))
		return
	}
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	rec, err := h.findShowRecord(r.Context(), req.ID, req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("show not found"))
		return
	}

	loaded, err := show.UnmarshalDocument([]byte(rec.Document))
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		*rt = *runtime.New(loaded)
		return nil
	})
	h.ps.Publish(pubsub.TopicShowUpdated, loaded.Name)
	respondJSON(w, http.StatusOK, map[string]string{"id": rec.ID, "name": rec.Name})
}

func (h *Handler) findShowRecord(ctx context.Context, id, name string) (*models.ShowRecord, error) {
	if id != "" {
		return h.showRepo.FindByID(ctx, id)
	}
	return h.showRepo.FindByName(ctx, name)
}

func (h *Handler) listShows(w http.ResponseWriter, r *http.Request) {
	if h.showRepo == nil {
		respondJSON(w, http.StatusOK, []interface{}{})
		return
	}
	recs, err := h.showRepo.FindAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]entry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, entry{ID: rec.ID, Name: rec.Name})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) addFixtureType(w http.ResponseWriter, r *http.Request) {
	var ft show.FixtureType
	if err := decodeBody(r, &ft); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if ft.TypeID == "" || len(ft.Channels) == 0 {
		respondError(w, http.StatusBadRequest, fmt.Errorf("fixture type needs a type_id and at least one channel"))
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		rt.AddFixtureType(ft)
		return nil
	})
	respondJSON(w, http.StatusOK, ft)
}

func (h *Handler) addFixture(w http.ResponseWriter, r *http.Request) {
	var f show.FixtureInstance
	if err := decodeBody(r, &f); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.AddFixture(f)
	})
	if err != nil {
		respondError(w, http.StatusConflict, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

func (h *Handler) programmerCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line string `json:"line"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var status programmer.Status
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		status = programmer.TryApplyLine(req.Line, rt.Programmer)
		return nil
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h *Handler) programmerSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   *uint32 `json:"id"`
		From *uint32 `json:"from"`
		To   *uint32 `json:"to"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err := h.session.Do(func(rt *runtime.Runtime) error {
		switch {
		case req.ID != nil:
			rt.Programmer.SelectOne(*req.ID)
		case req.From != nil && req.To != nil:
			rt.Programmer.SelectRange(*req.From, *req.To)
		default:
			return fmt.Errorf("select needs an id or a from/to range")
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	h.respondProgrammer(w)
}

func (h *Handler) programmerIntensity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Percent uint8 `json:"percent"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		rt.Programmer.SetIntensityPercent(req.Percent)
		return nil
	})
	h.respondProgrammer(w)
}

func (h *Handler) programmerRGB(w http.ResponseWriter, r *http.Request) {
	var req struct {
		R byte `json:"r"`
		G byte `json:"g"`
		B byte `json:"b"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		rt.Programmer.SetRGB(req.R, req.G, req.B)
		return nil
	})
	h.respondProgrammer(w)
}

func (h *Handler) programmerClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ValuesOnly bool `json:"values_only"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		if req.ValuesOnly {
			rt.Programmer.ClearValues()
		} else {
			rt.Programmer.ClearAll()
		}
		return nil
	})
	h.respondProgrammer(w)
}

func (h *Handler) getProgrammer(w http.ResponseWriter, r *http.Request) {
	h.respondProgrammer(w)
}

func (h *Handler) respondProgrammer(w http.ResponseWriter) {
	var payload struct {
		Selected []uint32           `json:"selected"`
		Values   show.FixtureValues `json:"values"`
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		payload.Selected = rt.Programmer.Selected()
		payload.Values = rt.Programmer.Values()
		return nil
	})
	respondJSON(w, http.StatusOK, payload)
}

func (h *Handler) recordPalette(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req struct {
		Kind show.PaletteKind `json:"kind"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.RecordPalette(name, req.Kind)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *Handler) applyPalette(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.ApplyPalette(name)
	})
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	h.respondProgrammer(w)
}

func (h *Handler) recordGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.RecordGroup(name)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *Handler) selectGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.SelectGroup(name)
	})
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	h.respondProgrammer(w)
}

func (h *Handler) recordCue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number uint32             `json:"number"`
		Label  string             `json:"label"`
		Mode   runtime.RecordMode `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Mode == "" {
		req.Mode = runtime.RecordTrack
	}
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.RecordCue(req.Number, req.Label, req.Mode)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]uint32{"number": req.Number})
}

func (h *Handler) updateCue(w http.ResponseWriter, r *http.Request) {
	number, err := urlNumber(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Mode runtime.RecordMode `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Mode == "" {
		req.Mode = runtime.RecordTrack
	}
	err = h.session.Do(func(rt *runtime.Runtime) error {
		return rt.UpdateCue(number, req.Mode)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]uint32{"number": number})
}

func (h *Handler) deleteCue(w http.ResponseWriter, r *http.Request) {
	number, err := urlNumber(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err = h.session.Do(func(rt *runtime.Runtime) error {
		return rt.DeleteCue(number)
	})
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]uint32{"number": number})
}

func (h *Handler) blockCue(w http.ResponseWriter, r *http.Request) {
	number, err := urlNumber(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		Block bool `json:"block"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err = h.session.Do(func(rt *runtime.Runtime) error {
		return rt.SetCueBlock(number, req.Block)
	})
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"number": number, "block": req.Block})
}

func (h *Handler) cueTiming(w http.ResponseWriter, r *http.Request) {
	number, err := urlNumber(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req struct {
		FadeMs  uint32 `json:"fade_ms"`
		DelayMs uint32 `json:"delay_ms"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err = h.session.Do(func(rt *runtime.Runtime) error {
		return rt.SetCueTiming(number, req.FadeMs, req.DelayMs)
	})
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]uint32{"number": number})
}

func (h *Handler) selectPlayback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Playback runtime.PlaybackID `json:"playback"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		rt.SelectPlayback(req.Playback)
		return nil
	})
	respondJSON(w, http.StatusOK, map[string]string{"playback": string(req.Playback)})
}

func (h *Handler) playbackMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Playback runtime.PlaybackID `json:"playback"`
		Mode     playback.Mode      `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Mode != playback.ModeTracking && req.Mode != playback.ModeCueOnly {
		respondError(w, http.StatusBadRequest, fmt.Errorf("unknown playback mode %q", req.Mode))
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		rt.SetPlaybackMode(req.Playback, req.Mode)
		return nil
	})
	h.publishPlayback()
	respondJSON(w, http.StatusOK, map[string]string{"mode": string(req.Mode)})
}

func (h *Handler) gotoCue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number uint32 `json:"number"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	err := h.session.Do(func(rt *runtime.Runtime) error {
		return rt.GotoCue(req.Number)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	h.publishPlayback()
	respondJSON(w, http.StatusOK, map[string]uint32{"number": req.Number})
}

func (h *Handler) goNext(w http.ResponseWriter, r *http.Request) {
	var current uint32
	var active bool
	err := h.session.Do(func(rt *runtime.Runtime) error {
		var err error
		current, active, err = rt.GoNext()
		return err
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	h.publishPlayback()
	if !active {
		respondJSON(w, http.StatusOK, map[string]interface{}{"idle": true})
		return
	}
	respondJSON(w, http.StatusOK, map[string]uint32{"number": current})
}

// PlaybackStatus is the transport state of one playback.
type PlaybackStatus struct {
	Playback      string  `json:"playback"`
	CueList       string  `json:"cue_list"`
	Mode          string  `json:"mode"`
	CurrentCue    *uint32 `json:"current_cue"`
	Transitioning bool    `json:"transitioning"`
	ElapsedMs     uint32  `json:"elapsed_ms,omitempty"`
	DelayMs       uint32  `json:"delay_ms,omitempty"`
	FadeMs        uint32  `json:"fade_ms,omitempty"`
}

func (h *Handler) playbackStatuses() []PlaybackStatus {
	var out []PlaybackStatus
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		for _, id := range []runtime.PlaybackID{runtime.PlaybackA, runtime.PlaybackB} {
			pb := rt.Playback(id)
			st := PlaybackStatus{
				Playback: string(id),
				CueList:  pb.CueListName(),
				Mode:     string(pb.Mode()),
			}
			if cur, ok := pb.Current(); ok {
				st.CurrentCue = &cur
			}
			if elapsed, delay, fade, ok := pb.TransitionInfo(); ok {
				st.Transitioning = true
				st.ElapsedMs = elapsed
				st.DelayMs = delay
				st.FadeMs = fade
			}
			out = append(out, st)
		}
		return nil
	})
	return out
}

func (h *Handler) publishPlayback() {
	h.ps.Publish(pubsub.TopicPlaybackUpdated, h.playbackStatuses())
}

func (h *Handler) playbackStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.playbackStatuses())
}

func (h *Handler) tick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ms uint32 `json:"ms"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	_ = h.session.Do(func(rt *runtime.Runtime) error {
		rt.Tick(req.Ms)
		return nil
	})
	frame, err := h.session.Render()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, frame)
}

func (h *Handler) getOutput(w http.ResponseWriter, r *http.Request) {
	frame, err := h.session.Render()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, frame)
}
