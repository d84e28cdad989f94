package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	"github.com/ruteri/sskr-service/api"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/metrics"
	"github.com/ruteri/sskr-service/sskr"
	"github.com/ruteri/sskr-service/storage"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// ShardStore persists shard sets. Implemented by storage.ShardStore.
type ShardStore interface {
	StoreShards(ctx context.Context, shards []sskr.Shard) (interfaces.ContentID, *storage.Manifest, error)
	LoadShards(ctx context.Context, manifestID interfaces.ContentID) ([]sskr.Shard, *storage.Manifest, error)
}

// Handler serves the stateless split, combine and inspect API.
// Secrets and shards are never logged.
type Handler struct {
	store ShardStore
	log   *slog.Logger
}

// NewHandler creates a handler. store may be nil, in which case requests
// asking to store or load shard sets are rejected.
func NewHandler(store ShardStore, log *slog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/split", h.HandleSplit)
	r.Post("/api/v1/combine", h.HandleCombine)
	r.Post("/api/v1/inspect", h.HandleInspect)
}

// HandleSplit splits a secret into grouped shards.
//
// URL format: POST /api/v1/split
// Request body: api.SplitRequest
// Response: api.SplitResponse
func (h *Handler) HandleSplit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp, err := h.split(r)
	metrics.RecordOperation(metrics.OpSplit, start, err)
	if err != nil {
		h.log.Debug("split failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) split(r *http.Request) (*api.SplitResponse, error) {
	var req api.SplitRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	secret := []byte(req.Secret)
	if req.Pad {
		padded, err := sskr.PadSecret(secret)
		if err != nil {
			return nil, err
		}
		secret = padded
	}

	shards, err := sskr.Split(secret, req.GroupThreshold, req.Groups)
	if err != nil {
		return nil, err
	}

	resp := &api.SplitResponse{
		Identifier: shards[0].Identifier,
		Groups:     make([][]hexutil.Bytes, 0, len(req.Groups)),
	}
	for _, group := range sskr.GroupShards(shards) {
		encoded, err := sskr.EncodeShards(group)
		if err != nil {
			return nil, err
		}
		members := make([]hexutil.Bytes, len(encoded))
		for i := range encoded {
			members[i] = encoded[i]
		}
		resp.Groups = append(resp.Groups, members)
	}

	if req.Store {
		if h.store == nil {
			return nil, badRequest(errors.New("shard storage is not configured"))
		}
		manifestID, manifest, err := h.store.StoreShards(r.Context(), shards)
		if err != nil {
			h.log.Error("failed to store shards", "err", err)
			return nil, err
		}
		h.log.Info("stored shard set", "manifest", manifestID.String(), "splitID", manifest.SplitID.String(), "shards", len(shards))
		resp.ManifestID = &manifestID
	}

	return resp, nil
}

// HandleCombine recovers a secret from shards given inline or by manifest id.
//
// URL format: POST /api/v1/combine
// Request body: api.CombineRequest
// Response: api.CombineResponse
func (h *Handler) HandleCombine(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp, err := h.combine(r)
	metrics.RecordOperation(metrics.OpCombine, start, err)
	if err != nil {
		h.log.Debug("combine failed", "err", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) combine(r *http.Request) (*api.CombineResponse, error) {
	var req api.CombineRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	var (
		secret []byte
		err    error
	)
	switch {
	case req.ManifestID != nil && len(req.Shards) > 0:
		return nil, badRequest(errors.New("shards and manifest_id are mutually exclusive"))
	case req.ManifestID != nil:
		if h.store == nil {
			return nil, badRequest(errors.New("shard storage is not configured"))
		}
		shards, _, loadErr := h.store.LoadShards(r.Context(), *req.ManifestID)
		if loadErr != nil {
			return nil, loadErr
		}
		secret, err = sskr.Combine(shards)
	default:
		encoded := make([][]byte, len(req.Shards))
		for i := range req.Shards {
			encoded[i] = req.Shards[i]
		}
		secret, err = sskr.CombineEncoded(encoded)
	}
	if err != nil {
		return nil, err
	}

	if req.Unpad {
		if secret, err = sskr.UnpadSecret(secret); err != nil {
			return nil, err
		}
	}
	return &api.CombineResponse{Secret: secret}, nil
}

// HandleInspect decodes a single shard and reports its metadata.
//
// URL format: POST /api/v1/inspect
// Request body: api.InspectRequest
// Response: api.InspectResponse
func (h *Handler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req api.InspectRequest
	err := decodeJSON(r, &req)

	var shard sskr.Shard
	if err == nil {
		shard, err = sskr.DecodeShard(req.Shard)
	}
	metrics.RecordOperation(metrics.OpInspect, start, err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.NewInspectResponse(shard))
}
