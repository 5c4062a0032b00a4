package dto

type InstanceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	NumClients  int    `json:"num_clients"`
	NumVehicles int    `json:"num_vehicles"`
}

type ListInstancesResponse struct {
	Instances []InstanceResponse `json:"instances"`
}
