package assetservice

import (
	"time"
)

// Asset is an opaque asset payload as submitted for ingestion.
// The service reads "id", "space" and "manifests"; everything else is passed through.
type Asset map[string]any

// BatchHandle identifies an ingestion batch accepted by the service.
type BatchHandle struct {
	ID        int       `json:"id"`
	Submitted time.Time `json:"submitted"`
	Count     int       `json:"count"`
	// Assets lists the "customer/space/asset" ids included in the batch.
	Assets []string `json:"assets"`
}

// PatchOperation is the association patch operation.
type PatchOperation string

const (
	PatchAdd     PatchOperation = "add"
	PatchRemove  PatchOperation = "remove"
	PatchReplace PatchOperation = "replace"
)

type createSpaceRequest struct {
	Name string `json:"name"`
}

type createSpaceResponse struct {
	ID int `json:"id"`
}

type ingestRequest struct {
	Members []Asset `json:"members"`
}

type ingestResponse struct {
	Batches []BatchHandle `json:"batches"`
}

type member struct {
	ID string `json:"id"`
}

type lookupRequest struct {
	Members []member `json:"members"`
}

type lookupResponse struct {
	Members []member `json:"members"`
}

type patchRequest struct {
	Members   []member       `json:"members"`
	Field     string         `json:"field"`
	Operation PatchOperation `json:"operation"`
	Value     []string       `json:"value"`
}
