package handlers

import (
	"net/http"

	"vrp-search-service/internal/api/dto"
	"vrp-search-service/internal/ports"
)

// InstanceHandler exposes read-only instance listing.
type InstanceHandler struct {
	Repo ports.ProblemRepository
}

func (h *InstanceHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	infos, err := h.Repo.ListInstances(r.Context())
	if err != nil {
		writeServiceError(w, r, "list instances", err)
		return
	}

	res := dto.ListInstancesResponse{
		Instances: make([]dto.InstanceResponse, 0, len(infos)),
	}
	for _, info := range infos {
		res.Instances = append(res.Instances, dto.InstanceResponse{
			ID:          info.ID,
			Name:        info.Name,
			NumClients:  info.NumClients,
			NumVehicles: info.NumVehicles,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
