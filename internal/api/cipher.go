package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/RowanDark/knitcipher/internal/bitcodec"
	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/grid"
	"github.com/RowanDark/knitcipher/internal/knit"
	"github.com/RowanDark/knitcipher/internal/logging"
)

// AlgorithmInfo describes one registered algorithm.
type AlgorithmInfo struct {
	Key         string `json:"key"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// EncryptRequest asks for a chart of message.
type EncryptRequest struct {
	Message   string `json:"message"`
	Algorithm string `json:"algorithm,omitempty"`
	Repeat    bool   `json:"repeat"`
	Explain   bool   `json:"explain,omitempty"`
}

// EncryptResponse is a chart with the values needed to decrypt it.
type EncryptResponse struct {
	Algorithm  string      `json:"algorithm"`
	Code       string      `json:"code"`
	Ciphertext string      `json:"ciphertext"`
	Binary     string      `json:"binary"`
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Policy     grid.Policy `json:"policy"`
	Iterations int         `json:"iterations"`
	Grid       []string    `json:"grid"`
	Steps      []string    `json:"steps,omitempty"`
}

// DecryptRequest carries bits read off a chart and its short code.
type DecryptRequest struct {
	Binary string `json:"binary"`
	Code   string `json:"code"`
}

// DecryptResponse carries the recovered text.
type DecryptResponse struct {
	Text      string `json:"text"`
	Code      string `json:"code"`
	Algorithm string `json:"algorithm,omitempty"`
}

// IdentifyRequest carries bits whose code is unknown.
type IdentifyRequest struct {
	Binary string `json:"binary"`
}

// IdentifyResponse lists plausible decryptions, best first.
type IdentifyResponse struct {
	Candidates []knit.Candidate `json:"candidates"`
}

// PipelineRequest chains algorithms over input. Reverse decodes instead of
// encoding.
type PipelineRequest struct {
	Input      string   `json:"input"`
	Algorithms []string `json:"algorithms"`
	Reverse    bool     `json:"reverse,omitempty"`
}

// PipelineResponse carries the pipeline output.
type PipelineResponse struct {
	Output string `json:"output"`
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	algs := s.engine.Registry().List()
	out := make([]AlgorithmInfo, 0, len(algs))
	for _, alg := range algs {
		out = append(out, AlgorithmInfo{
			Key:         alg.Key,
			Code:        alg.Code,
			Name:        alg.Name,
			Description: alg.Description,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"algorithms": out})
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, status, err := s.encrypt(req.Message, req.Algorithm, req.Repeat)
	if err != nil {
		s.writeError(w, status, err.Error())
		return
	}

	resp := EncryptResponse{
		Algorithm:  res.Algorithm,
		Code:       res.Code,
		Ciphertext: res.Ciphertext,
		Binary:     res.Binary,
		Rows:       res.Rows,
		Cols:       res.Cols,
		Policy:     res.Grid.Policy,
		Iterations: res.Grid.Iterations,
		Grid:       res.Grid.Cells,
	}
	if req.Explain {
		alg, _ := s.engine.Registry().Get(res.Algorithm)
		resp.Steps = alg.Steps(req.Message, res.Ciphertext)
	}
	s.audit(r, logging.AuditEvent{
		EventType: logging.EventChartEncrypt,
		Metadata: map[string]any{
			"message":   req.Message,
			"algorithm": res.Algorithm,
			"repeat":    res.Repeat,
			"bits":      len(res.Binary),
		},
	})
	s.writeJSON(w, http.StatusOK, resp)
}

// encrypt maps knit errors to the status the caller should answer with.
func (s *Server) encrypt(message, algorithm string, repeat bool) (*knit.Result, int, error) {
	algorithm = strings.ToLower(strings.TrimSpace(algorithm))
	if algorithm == "" {
		algorithm = s.cfg.DefaultAlgorithm
	}
	res, err := s.engine.Encrypt(message, algorithm, repeat)
	switch {
	case err == nil:
		return res, http.StatusOK, nil
	case errors.Is(err, knit.ErrEmptyMessage), errors.Is(err, knit.ErrUnknownAlgorithm):
		return nil, http.StatusBadRequest, err
	default:
		return nil, http.StatusUnprocessableEntity, err
	}
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	var req DecryptRequest
	if !s.decode(w, r, &req) {
		return
	}
	if bitcodec.Strip(req.Binary) == "" {
		s.writeError(w, http.StatusBadRequest, "binary is required")
		return
	}

	text := s.engine.Decrypt(req.Binary, req.Code)
	resp := DecryptResponse{Text: text, Code: strings.ToUpper(strings.TrimSpace(req.Code))}
	if alg, ok := s.engine.Registry().FindByCode(req.Code); ok {
		resp.Algorithm = alg.Key
	}

	status := http.StatusOK
	decision := logging.DecisionAllow
	if text == cipher.InvalidCode || text == cipher.DecryptionFailed {
		status = http.StatusUnprocessableEntity
		decision = logging.DecisionDeny
	}
	s.audit(r, logging.AuditEvent{
		EventType: logging.EventChartDecrypt,
		Decision:  decision,
		Metadata: map[string]any{
			"recovered": text,
			"code":      resp.Code,
		},
	})
	s.writeJSON(w, status, resp)
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	var req IdentifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.IdentifyTimeout)
	defer cancel()
	candidates, err := s.engine.Identify(ctx, req.Binary)
	switch {
	case errors.Is(err, knit.ErrEmptyBinary):
		s.writeError(w, http.StatusBadRequest, "binary is required")
		return
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.writeError(w, http.StatusServiceUnavailable, "identify timed out")
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if candidates == nil {
		candidates = []knit.Candidate{}
	}

	meta := map[string]any{"candidates": len(candidates)}
	if len(candidates) > 0 {
		meta["best_code"] = candidates[0].Code
		meta["best_confidence"] = candidates[0].Confidence
	}
	s.audit(r, logging.AuditEvent{EventType: logging.EventChartIdentify, Metadata: meta})
	s.writeJSON(w, http.StatusOK, IdentifyResponse{Candidates: candidates})
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	var req PipelineRequest
	if !s.decode(w, r, &req) {
		return
	}

	p := cipher.Pipeline{Keys: req.Algorithms}
	var (
		out string
		err error
	)
	if req.Reverse {
		out, err = p.Decode(s.engine.Registry(), req.Input)
	} else {
		out, err = p.Encode(s.engine.Registry(), req.Input)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.audit(r, logging.AuditEvent{
		EventType: logging.EventPipeline,
		Metadata: map[string]any{
			"input":      req.Input,
			"algorithms": req.Algorithms,
			"reverse":    req.Reverse,
		},
	})
	s.writeJSON(w, http.StatusOK, PipelineResponse{Output: out})
}
