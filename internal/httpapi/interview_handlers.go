package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/audit"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/identity"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/interview"
)

type createInterviewRequest struct {
	UserEmail   string   `json:"user_email"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
}

type updateInterviewRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Questions   *[]string `json:"questions"`
}

type submitConversationRequest struct {
	InterviewID  string           `json:"interview_id"`
	Conversation []interview.Turn `json:"conversation"`
	Recording    *string          `json:"recording"`
}

type followupRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type introRequest struct {
	CandidateName string `json:"candidate_name"`
	Title         string `json:"title"`
	Description   string `json:"description"`
}

type outroRequest struct {
	CandidateName string `json:"candidate_name"`
}

type listInterviewsResponse struct {
	Items []*interview.Interview `json:"items"`
}

func (a *API) handleInterview(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/interview/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch path {
	case "create":
		a.requireMethod(w, r, http.MethodPost, a.createInterview)
		return
	case "user-interviews":
		a.requireMethod(w, r, http.MethodGet, a.listOwnInterviews)
		return
	case "all":
		a.requireMethod(w, r, http.MethodGet, a.listAllInterviews)
		return
	case "submit-conversation":
		a.requireMethod(w, r, http.MethodPost, a.submitConversation)
		return
	case "gpt-intro":
		a.requireMethod(w, r, http.MethodPost, a.generateIntro)
		return
	case "gpt-followup":
		a.requireMethod(w, r, http.MethodPost, a.generateFollowup)
		return
	case "gpt-outro":
		a.requireMethod(w, r, http.MethodPost, a.generateOutro)
		return
	}

	if id, ok := strings.CutPrefix(path, "update/"); ok {
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r, http.MethodPut)
			return
		}
		a.updateInterview(w, r, id)
		return
	}
	if id, ok := strings.CutPrefix(path, "delete/"); ok {
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		a.deleteInterview(w, r, id)
		return
	}
	if id, ok := strings.CutSuffix(path, "/recording"); ok && !strings.Contains(id, "/") {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getRecording(w, r, id)
		return
	}
	if !strings.Contains(path, "/") {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.getInterview(w, r, path)
		return
	}

	writeError(w, r, http.StatusNotFound, "resource not found")
}

func (a *API) requireMethod(w http.ResponseWriter, r *http.Request, method string, h http.HandlerFunc) {
	if r.Method != method {
		methodNotAllowed(w, r, method)
		return
	}
	h(w, r)
}

func (a *API) caller(w http.ResponseWriter, r *http.Request) (*identity.User, bool) {
	user, ok := identity.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return user, true
}

func (a *API) createInterview(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.caller(w, r); !ok {
		return
	}

	var req createInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	iv, err := a.interviews.CreateInterview(r.Context(), req.UserEmail, req.Title, req.Description, req.Questions)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "interview.created", map[string]any{
		"interview_id": iv.ID,
		"questions":    len(iv.Questions),
	})

	w.Header().Set("Location", "/interview/"+iv.ID)
	writeJSON(w, http.StatusCreated, iv)
}

func (a *API) listOwnInterviews(w http.ResponseWriter, r *http.Request) {
	user, ok := a.caller(w, r)
	if !ok {
		return
	}
	items, err := a.interviews.ListOwnInterviews(r.Context(), user)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listInterviewsResponse{Items: items})
}

func (a *API) listAllInterviews(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.caller(w, r); !ok {
		return
	}
	items, err := a.interviews.ListAllInterviews(r.Context())
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listInterviewsResponse{Items: items})
}

func (a *API) getInterview(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.caller(w, r)
	if !ok {
		return
	}
	iv, err := a.interviews.GetInterview(r.Context(), user, id)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

func (a *API) updateInterview(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.caller(w, r)
	if !ok {
		return
	}

	var req updateInterviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	iv, err := a.interviews.UpdateInterview(r.Context(), user, id, interview.UpdatePatch{
		Title:       req.Title,
		Description: req.Description,
		Questions:   req.Questions,
	})
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "interview.updated", map[string]any{
		"interview_id": iv.ID,
	})

	writeJSON(w, http.StatusOK, iv)
}

func (a *API) deleteInterview(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.caller(w, r)
	if !ok {
		return
	}
	if err := a.interviews.DeleteInterview(r.Context(), user, id); err != nil {
		handleInterviewError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "interview.deleted", map[string]any{
		"interview_id": id,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "interview deleted",
	})
}

func (a *API) submitConversation(w http.ResponseWriter, r *http.Request) {
	user, ok := a.caller(w, r)
	if !ok {
		return
	}

	var req submitConversationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.InterviewID) == "" {
		writeError(w, r, http.StatusBadRequest, "interview_id is required")
		return
	}

	score, err := a.interviews.SubmitConversation(r.Context(), user, req.InterviewID, req.Conversation, req.Recording)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "interview.submitted", map[string]any{
		"interview_id": req.InterviewID,
		"score":        strconv.Itoa(score),
		"turns":        len(req.Conversation),
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"score": score,
		"taken": true,
	})
}

func (a *API) getRecording(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := a.caller(w, r)
	if !ok {
		return
	}
	data, err := a.interviews.GetRecording(r.Context(), user, id)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (a *API) generateIntro(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.caller(w, r); !ok {
		return
	}

	var req introRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	text, err := a.interviews.GenerateIntroduction(r.Context(), req.CandidateName, req.Title, req.Description)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

func (a *API) generateFollowup(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.caller(w, r); !ok {
		return
	}

	var req followupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	text, err := a.interviews.GenerateFollowup(r.Context(), req.Question, req.Answer)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}

func (a *API) generateOutro(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.caller(w, r); !ok {
		return
	}

	var req outroRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	text, err := a.interviews.GenerateOutro(r.Context(), req.CandidateName)
	if err != nil {
		handleInterviewError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": text})
}
