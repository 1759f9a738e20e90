package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"searoute/internal/coordinator"
	"searoute/internal/portgraph"
	"searoute/internal/portrepo"
	"searoute/pkg/apperror"
)

// Handlers holds the dependencies the route handlers call into.
type Handlers struct {
	coordinator *coordinator.Coordinator
	repo        portrepo.Repository
	graphs      *portgraph.Manager
}

// NewHandlers builds a Handlers bound to the given coordinator, port
// repository, and graph manager.
func NewHandlers(coord *coordinator.Coordinator, repo portrepo.Repository, graphs *portgraph.Manager) *Handlers {
	return &Handlers{coordinator: coord, repo: repo, graphs: graphs}
}

// decodeRequest parses the JSON body into a calculateRequestDTO.
func decodeRequest(r *http.Request) (*calculateRequestDTO, error) {
	var dto calculateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeValidation, "malformed request body")
	}
	return &dto, nil
}

// CalculateRoutes handles POST /routes/calculate (spec §6, §4.8 full
// pipeline).
func (h *Handlers) CalculateRoutes(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeRequest(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	req := dto.toRequest()

	resp, err := h.coordinator.Calculate(r.Context(), req)
	if err != nil {
		writeError(w, req.RequestID, err)
		return
	}
	writeJSON(w, http.StatusOK, newRouteResponseDTO(resp))
}

// ValidateRoute handles POST /routes/validate — step 1 of spec §4.8 only.
func (h *Handlers) ValidateRoute(w http.ResponseWriter, r *http.Request) {
	dto, err := decodeRequest(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	req := dto.toRequest()

	if err := h.coordinator.Validate(r.Context(), req); err != nil {
		writeError(w, req.RequestID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// SearchPorts handles GET /ports/search?q=...&limit=...&country=....
func (h *Handlers) SearchPorts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if len(q) < 2 {
		writeError(w, "", apperror.NewWithField(apperror.CodeValidation, "query must be at least two characters", "q"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	results, err := h.repo.Search(r.Context(), q, portrepo.SearchOptions{
		Limit:   limit,
		Country: r.URL.Query().Get("country"),
	})
	if err != nil {
		writeError(w, "", err)
		return
	}

	out := make([]portDTO, len(results))
	for i, res := range results {
		out[i] = newPortDTO(&res.Port)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPort handles GET /ports/{code}.
func (h *Handlers) GetPort(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	p, err := h.repo.Get(r.Context(), code)
	if err != nil {
		if errors.Is(err, portrepo.ErrNotFound) {
			writeError(w, "", apperror.NewWithField(apperror.CodePortNotFound, "port not found", "code"))
			return
		}
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, newPortDTO(p))
}

// Health handles GET /health: liveness plus graph readiness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	graph := h.graphs.Graph()
	status := "healthy"
	httpStatus := http.StatusOK
	if graph == nil {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	body := map[string]any{"status": status}
	if graph != nil {
		body["graph_nodes"] = len(graph.Nodes)
		body["graph_edges"] = graph.EdgeCount()
	}
	writeJSON(w, httpStatus, body)
}
