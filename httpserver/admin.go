package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/sskr-service/api"
	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/metrics"
)

// AdminHandler exposes a ShardKeeper to the administrators listed in the
// split plan. Every mutating request must be signed by a known admin.
type AdminHandler struct {
	log          *slog.Logger
	keeper       interfaces.ShardKeeper
	adminPubKeys map[string][]byte // admin id to public key PEM
}

// NewAdminHandler creates a handler for keeper recovery.
func NewAdminHandler(log *slog.Logger, keeper interfaces.ShardKeeper, adminPubKeys map[string][]byte) *AdminHandler {
	return &AdminHandler{
		log:          log,
		keeper:       keeper,
		adminPubKeys: adminPubKeys,
	}
}

// WaitForUnlock blocks until the keeper has recovered its secret or ctx is done.
func (h *AdminHandler) WaitForUnlock(ctx context.Context) error {
	select {
	case <-h.keeper.Unlocked():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AdminRouter returns the admin API router, meant to be mounted under /admin.
func (h *AdminHandler) AdminRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.handleStatus)
	r.Post("/shard", h.handleSubmitShard)
	return r
}

// handleStatus reports collection progress. It does not reveal shard material.
//
// Endpoint: GET /admin/status
func (h *AdminHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.keeper.Status())
}

// handleSubmitShard accepts one signed shard from an admin.
//
// Endpoint: POST /admin/shard
// Body: api.SubmitShardRequest
func (h *AdminHandler) handleSubmitShard(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.verifyAdmin(r)
	if !ok {
		metrics.RecordSubmission("unauthorized")
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req api.SubmitShardRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.RecordSubmission("rejected")
		writeError(w, err)
		return
	}

	if err := h.keeper.SubmitShard(req.Shard, req.Signature, h.adminPubKeys[adminID]); err != nil {
		metrics.RecordSubmission("rejected")
		h.log.Warn("Shard submission rejected", "err", err, "adminID", adminID)
		writeError(w, err)
		return
	}

	if h.keeper.IsUnlocked() {
		metrics.RecordSubmission("unlocked")
		metrics.KeeperUnlocked.Set(1)
		h.log.Info("Keeper unlocked, recovery complete", "adminID", adminID)
		writeJSON(w, http.StatusOK, api.SubmitShardResponse{
			Message:  "secret recovered",
			Unlocked: true,
		})
		return
	}

	metrics.RecordSubmission("accepted")
	h.log.Info("Shard accepted", "adminID", adminID)
	writeJSON(w, http.StatusOK, api.SubmitShardResponse{
		Message: "shard accepted, waiting for more shards",
	})
}

// verifyAdmin checks the admin id header against the configured admins and
// the signature header against path and body. The body is restored for the
// next reader.
func (h *AdminHandler) verifyAdmin(r *http.Request) (string, bool) {
	adminID := r.Header.Get(api.AdminIDHeader)
	signatureStr := r.Header.Get(api.AdminSignatureHeader)
	if adminID == "" || signatureStr == "" {
		return "", false
	}

	pubKeyPEM, exists := h.adminPubKeys[adminID]
	if !exists {
		h.log.Warn("Authentication failed: unknown admin ID", "adminID", adminID)
		return adminID, false
	}

	signature, err := base64.StdEncoding.DecodeString(signatureStr)
	if err != nil {
		h.log.Warn("Authentication failed: invalid signature encoding", "adminID", adminID, "err", err)
		return adminID, false
	}

	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodySize))
		if err != nil {
			h.log.Error("Failed to read request body", "err", err)
			return adminID, false
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	if err := cryptoutils.VerifyRequestSignature(pubKeyPEM, r.URL.Path, body, signature); err != nil {
		if !errors.Is(err, cryptoutils.ErrInvalidSignature) {
			h.log.Error("Failed to verify admin signature", "adminID", adminID, "err", err)
		} else {
			h.log.Warn("Authentication failed: invalid signature", "adminID", adminID)
		}
		return adminID, false
	}

	h.log.Debug("Admin authentication successful", "adminID", adminID)
	return adminID, true
}
