package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/talentflow/talentflow/internal/middleware"
	"github.com/talentflow/talentflow/internal/services"
	"github.com/talentflow/talentflow/internal/utils"
)

const maxBodyBytes = 1 << 20

// Options tune the services behind the router.
type Options struct {
	Signer        *middleware.InviteSigner
	InviteTTL     time.Duration
	RequireInvite bool
	PassThreshold float64
	Version       string
	Commit        string
	BuildTime     string
}

type Router struct {
	store       Store
	assessments *services.AssessmentService
	responses   *services.ResponseService
	results     *services.ResultsService
	exports     *services.ExportService
	invites     *services.InviteService
	signer      *middleware.InviteSigner
	opts        Options
}

func NewRouter(store Store, opts Options) *Router {
	if opts.Signer == nil {
		opts.Signer = middleware.NewInviteSigner("")
	}
	rt := &Router{
		store:       store,
		assessments: services.NewAssessmentService(newAssessmentStoreAdapter(store)),
		responses:   services.NewResponseService(newResponseStoreAdapter(store)),
		results:     services.NewResultsService(newResultsStoreAdapter(store)),
		exports:     services.NewExportService(newExportStoreAdapter(store)),
		invites:     services.NewInviteService(newInviteStoreAdapter(store), opts.Signer.Sign, opts.InviteTTL),
		signer:      opts.Signer,
		opts:        opts,
	}
	rt.responses.RequireInvite(opts.RequireInvite)
	if opts.PassThreshold > 0 {
		rt.results.SetPassThreshold(opts.PassThreshold)
	}
	return rt
}

// Register mounts every API route on r.
func (rt *Router) Register(r *mux.Router) {
	r.HandleFunc("/health", rt.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/version", rt.handleVersion).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/assessment", rt.handleListAssessments).Methods(http.MethodGet)
	a.HandleFunc("/assessment", rt.handleCreateAssessment).Methods(http.MethodPost)
	a.HandleFunc("/assessment/{id}", rt.handleGetAssessment).Methods(http.MethodGet)
	a.HandleFunc("/assessment/{id}", rt.handleUpdateAssessment).Methods(http.MethodPatch)
	a.HandleFunc("/assessment/{id}", rt.handleDeleteAssessment).Methods(http.MethodDelete)

	a.HandleFunc("/assessment/{id}/sections", rt.handleAddSection).Methods(http.MethodPost)
	a.HandleFunc("/assessment/{id}/sections/{sid}", rt.handleUpdateSection).Methods(http.MethodPatch)
	a.HandleFunc("/assessment/{id}/sections/{sid}", rt.handleRemoveSection).Methods(http.MethodDelete)
	a.HandleFunc("/assessment/{id}/sections/{sid}/questions", rt.handleAddQuestion).Methods(http.MethodPost)
	a.HandleFunc("/assessment/{id}/sections/{sid}/questions/{qid}", rt.handleUpdateQuestion).Methods(http.MethodPut)
	a.HandleFunc("/assessment/{id}/sections/{sid}/questions/{qid}", rt.handleRemoveQuestion).Methods(http.MethodDelete)
	a.HandleFunc("/assessment/{id}/sections/{sid}/questions/{qid}/options", rt.handleAddOption).Methods(http.MethodPost)
	a.HandleFunc("/assessment/{id}/sections/{sid}/questions/{qid}/options/{oid}", rt.handleUpdateOption).Methods(http.MethodPatch)
	a.HandleFunc("/assessment/{id}/sections/{sid}/questions/{qid}/options/{oid}", rt.handleRemoveOption).Methods(http.MethodDelete)

	a.HandleFunc("/assessment/{id}/preview", rt.handlePreview).Methods(http.MethodPost)
	a.Handle("/assessment/{id}/responses", middleware.WithInvite(rt.signer)(http.HandlerFunc(rt.handleSubmit))).Methods(http.MethodPost)
	a.HandleFunc("/assessment/{id}/responses", rt.handleListResponses).Methods(http.MethodGet)
	a.HandleFunc("/assessment/{id}/results", rt.handleResults).Methods(http.MethodGet)
	a.HandleFunc("/assessment/{id}/export", rt.handleExport).Methods(http.MethodGet)
	a.HandleFunc("/assessment/{id}/invites", rt.handleIssueInvite).Methods(http.MethodPost)

	a.HandleFunc("/responses/{rid}", rt.handleGetResponse).Methods(http.MethodGet)
	a.HandleFunc("/responses/{rid}/detail", rt.handleResponseDetail).Methods(http.MethodGet)
	a.HandleFunc("/audit", rt.handleAudit).Methods(http.MethodGet)

	a.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, services.NewNotFoundError("no such endpoint"))
	})
	a.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: r.Method + " not allowed"})
	})
}

// Handler returns the API wrapped in the standard middleware chain. A
// non-nil frontend serves every path the API does not claim.
func (rt *Router) Handler(frontend http.Handler) http.Handler {
	r := mux.NewRouter()
	rt.Register(r)
	if frontend != nil {
		r.PathPrefix("/").Handler(frontend)
	}
	r.Use(middleware.RequestLog, middleware.SecureHeaders, middleware.CacheControl, middleware.LocaleMiddleware)
	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"name":   "TalentFlow API",
		"locale": locale,
		"msg":    utils.T(locale, "health.ok"),
	})
}

func (rt *Router) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    rt.opts.Version,
		"commit":     rt.opts.Commit,
		"build_time": rt.opts.BuildTime,
	})
}

// GET /api/assessment?search&jobTitle&page&pageSize&sortBy&sortOrder&dateFrom&dateTo
func (rt *Router) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := services.ListParams{
		Search:    q.Get("search"),
		JobTitle:  q.Get("jobTitle"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	var err error
	if p.Page, err = intParam(q.Get("page"), "page"); err != nil {
		writeError(w, r, err)
		return
	}
	if p.PageSize, err = intParam(q.Get("pageSize"), "pageSize"); err != nil {
		writeError(w, r, err)
		return
	}
	if p.DateFrom, err = timeParam(q.Get("dateFrom"), "dateFrom", false); err != nil {
		writeError(w, r, err)
		return
	}
	if p.DateTo, err = timeParam(q.Get("dateTo"), "dateTo", true); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := rt.assessments.List(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/assessment
func (rt *Router) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := rt.assessments.Create(r.Context(), body, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/assessment/"+a.ID)
	rt.writeAssessment(w, r, http.StatusCreated, a)
}

// GET /api/assessment/{id}
func (rt *Router) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := rt.assessments.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.writeAssessment(w, r, http.StatusOK, a)
}

// writeAssessment tags the document with its fingerprint and answers a
// matching If-None-Match with 304.
func (rt *Router) writeAssessment(w http.ResponseWriter, r *http.Request, status int, a *services.Assessment) {
	w.Header().Set("X-Total-Points", strconv.FormatFloat(services.TotalPoints(a), 'f', -1, 64))
	fp, err := services.Fingerprint(a)
	if err != nil {
		log.Printf("fingerprint %s: %v", a.ID, err)
		writeJSON(w, status, a)
		return
	}
	etag := `"` + fp + `"`
	w.Header().Set("ETag", etag)
	if r.Method == http.MethodGet && etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, status, a)
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || strings.TrimPrefix(part, "W/") == etag {
			return true
		}
	}
	return false
}

// PATCH /api/assessment/{id}
func (rt *Router) handleUpdateAssessment(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := rt.assessments.Update(r.Context(), mux.Vars(r)["id"], body, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.writeAssessment(w, r, http.StatusOK, a)
}

// DELETE /api/assessment/{id}
func (rt *Router) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	if err := rt.assessments.Delete(r.Context(), mux.Vars(r)["id"], actor(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// edit runs one builder operation against the stored assessment.
func (rt *Router) edit(w http.ResponseWriter, r *http.Request, fn func(e *services.Editor, a *services.Assessment) (*services.Assessment, error)) {
	e := rt.assessments.Editor()
	a, err := rt.assessments.Edit(r.Context(), mux.Vars(r)["id"], actor(r), func(a *services.Assessment) (*services.Assessment, error) {
		return fn(e, a)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt.writeAssessment(w, r, http.StatusOK, a)
}

func requireSection(a *services.Assessment, sid string) error {
	if _, ok := a.FindSection(sid); !ok {
		return services.NewNotFoundError("section not found")
	}
	return nil
}

func requireQuestion(a *services.Assessment, sid, qid string) (services.Question, error) {
	if err := requireSection(a, sid); err != nil {
		return services.Question{}, err
	}
	sec, _ := a.FindSection(sid)
	for _, q := range sec.Questions {
		if q.ID == qid {
			return q, nil
		}
	}
	return services.Question{}, services.NewNotFoundError("question not found")
}

func requireOption(a *services.Assessment, sid, qid, oid string) error {
	q, err := requireQuestion(a, sid, qid)
	if err != nil {
		return err
	}
	for _, opt := range q.Options {
		if opt.ID == oid {
			return nil
		}
	}
	return services.NewNotFoundError("option not found")
}

// POST /api/assessment/{id}/sections
func (rt *Router) handleAddSection(w http.ResponseWriter, r *http.Request) {
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		return e.AddSection(a), nil
	})
}

// PATCH /api/assessment/{id}/sections/{sid}
func (rt *Router) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var p services.SectionPatch
	if err := decodeBody(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	sid := mux.Vars(r)["sid"]
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if err := requireSection(a, sid); err != nil {
			return nil, err
		}
		return e.UpdateSection(a, sid, p), nil
	})
}

// DELETE /api/assessment/{id}/sections/{sid}
func (rt *Router) handleRemoveSection(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if err := requireSection(a, sid); err != nil {
			return nil, err
		}
		return e.RemoveSection(a, sid), nil
	})
}

// POST /api/assessment/{id}/sections/{sid}/questions
func (rt *Router) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	sid := mux.Vars(r)["sid"]
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if err := requireSection(a, sid); err != nil {
			return nil, err
		}
		return e.AddQuestion(a, sid), nil
	})
}

// PUT /api/assessment/{id}/sections/{sid}/questions/{qid}
func (rt *Router) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var q services.Question
	if err := decodeBody(r, &q); err != nil {
		writeError(w, r, err)
		return
	}
	v := mux.Vars(r)
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if _, err := requireQuestion(a, v["sid"], v["qid"]); err != nil {
			return nil, err
		}
		return e.UpdateQuestion(a, v["sid"], v["qid"], q)
	})
}

// DELETE /api/assessment/{id}/sections/{sid}/questions/{qid}
func (rt *Router) handleRemoveQuestion(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if _, err := requireQuestion(a, v["sid"], v["qid"]); err != nil {
			return nil, err
		}
		return e.RemoveQuestion(a, v["sid"], v["qid"]), nil
	})
}

// POST /api/assessment/{id}/sections/{sid}/questions/{qid}/options
func (rt *Router) handleAddOption(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		q, err := requireQuestion(a, v["sid"], v["qid"])
		if err != nil {
			return nil, err
		}
		if !q.Type.HasOptions() {
			return nil, services.NewInvalidError("question " + q.ID + " does not take options")
		}
		return e.AddOption(a, v["sid"], v["qid"]), nil
	})
}

// PATCH /api/assessment/{id}/sections/{sid}/questions/{qid}/options/{oid}
func (rt *Router) handleUpdateOption(w http.ResponseWriter, r *http.Request) {
	var p services.OptionPatch
	if err := decodeBody(r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	v := mux.Vars(r)
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if err := requireOption(a, v["sid"], v["qid"], v["oid"]); err != nil {
			return nil, err
		}
		return e.UpdateOption(a, v["sid"], v["qid"], v["oid"], p), nil
	})
}

// DELETE /api/assessment/{id}/sections/{sid}/questions/{qid}/options/{oid}
func (rt *Router) handleRemoveOption(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	rt.edit(w, r, func(e *services.Editor, a *services.Assessment) (*services.Assessment, error) {
		if err := requireOption(a, v["sid"], v["qid"], v["oid"]); err != nil {
			return nil, err
		}
		return e.RemoveOption(a, v["sid"], v["qid"], v["oid"]), nil
	})
}

type answersBody struct {
	CandidateName  string                     `json:"candidateName"`
	CandidateEmail string                     `json:"candidateEmail"`
	Answers        map[string]json.RawMessage `json:"answers"`
}

// POST /api/assessment/{id}/preview
func (rt *Router) handlePreview(w http.ResponseWriter, r *http.Request) {
	var body answersBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := rt.responses.Preview(r.Context(), mux.Vars(r)["id"], body.Answers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// POST /api/assessment/{id}/responses
// { candidateName, candidateEmail, answers: {questionId: value} }
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	invite, err := middleware.InviteFromContext(r.Context())
	if err != nil {
		writeError(w, r, &services.ServiceError{Code: services.ErrorUnauthorized, Message: "submission refused", Err: err})
		return
	}
	var body answersBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := rt.responses.Submit(r.Context(), services.SubmitRequest{
		AssessmentID:   mux.Vars(r)["id"],
		CandidateName:  body.CandidateName,
		CandidateEmail: body.CandidateEmail,
		Answers:        body.Answers,
		Invite:         invite,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/responses/"+resp.ID)
	writeJSON(w, http.StatusCreated, resp)
}

// GET /api/assessment/{id}/responses?from&to
func (rt *Router) handleListResponses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := timeParam(q.Get("from"), "from", false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := timeParam(q.Get("to"), "to", true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := rt.responses.List(r.Context(), mux.Vars(r)["id"], from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list, "total": len(list)})
}

// GET /api/responses/{rid}
func (rt *Router) handleGetResponse(w http.ResponseWriter, r *http.Request) {
	resp, err := rt.responses.Get(r.Context(), mux.Vars(r)["rid"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/responses/{rid}/detail
func (rt *Router) handleResponseDetail(w http.ResponseWriter, r *http.Request) {
	d, err := rt.results.Detail(r.Context(), mux.Vars(r)["rid"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GET /api/assessment/{id}/results
func (rt *Router) handleResults(w http.ResponseWriter, r *http.Request) {
	s, err := rt.results.Summary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GET /api/assessment/{id}/export?format=long|wide|score|questions
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = services.ExportLong
	}
	res, err := rt.exports.ExportCSV(r.Context(), services.ExportParams{AssessmentID: mux.Vars(r)["id"], Format: format})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// POST /api/assessment/{id}/invites
func (rt *Router) handleIssueInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CandidateName  string `json:"candidateName"`
		CandidateEmail string `json:"candidateEmail"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	inv, err := rt.invites.Issue(r.Context(), mux.Vars(r)["id"], body.CandidateName, body.CandidateEmail, actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":        inv.Token,
		"assessmentId": inv.AssessmentID,
		"expiresAt":    inv.ExpiresAt,
		"link":         "/assessment/" + inv.AssessmentID + "/take?invite=" + inv.Token,
	})
}

// GET /api/audit?limit=
func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = 100
	}
	entries, err := rt.store.ListAudit(r.Context(), limit)
	if err != nil {
		writeError(w, r, services.NewPersistenceError("list audit", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries})
}

// actor names who made a change. There is no login, so the client says.
func actor(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-Actor")); v != "" {
		return v
	}
	return "anonymous"
}

func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, services.NewInvalidError("read body: " + err.Error())
	}
	if len(b) > maxBodyBytes {
		return nil, services.NewInvalidError("request body too large")
	}
	return b, nil
}

func decodeBody(r *http.Request, v any) error {
	b, err := readBody(r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return services.NewInvalidError("invalid JSON: " + err.Error())
	}
	return nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, services.NewInvalidError(name + " must be a non-negative integer")
	}
	return n, nil
}

// timeParam accepts RFC 3339 or a bare date. A bare date used as an upper
// bound covers the whole day.
func timeParam(v, name string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, services.NewInvalidError(name + " must be a date (YYYY-MM-DD) or RFC 3339 time")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func statusFor(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict:
		return http.StatusConflict
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError maps the service error taxonomy onto HTTP. Storage failures
// are logged and reported without their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	se, ok := services.AsServiceError(err)
	if !ok {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal error", Title: utils.T(locale, "error.internal")})
		return
	}
	msg := se.Error()
	if se.Code == services.ErrorPersistence {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		msg = se.Message
	}
	writeJSON(w, statusFor(se.Code), errorBody{Error: string(se.Code), Message: msg, Title: utils.T(locale, "error."+string(se.Code))})
}
