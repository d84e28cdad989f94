package api

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/sskr"
)

// Admin request authentication headers. The signature is base64 encoded and
// covers the URL path followed by the request body, see cryptoutils.SignRequest.
const (
	AdminIDHeader        = "X-Admin-ID"
	AdminSignatureHeader = "X-Admin-Signature"
)

// SplitRequest asks the server to split a secret.
type SplitRequest struct {
	// Secret is 16 to 32 bytes of even length, unless Pad is set.
	Secret         hexutil.Bytes          `json:"secret"`
	GroupThreshold int                    `json:"group_threshold"`
	Groups         []sskr.GroupDescriptor `json:"groups"`

	// Pad applies sskr.PadSecret before splitting.
	Pad bool `json:"pad,omitempty"`

	// Store persists the shards and a manifest to the configured backend.
	Store bool `json:"store,omitempty"`
}

// SplitResponse lists the serialized shards grouped by group, in member order.
type SplitResponse struct {
	Identifier uint16                `json:"identifier"`
	Groups     [][]hexutil.Bytes     `json:"groups"`
	ManifestID *interfaces.ContentID `json:"manifest_id,omitempty"`
}

// CombineRequest carries either serialized shards or the id of a stored manifest.
type CombineRequest struct {
	Shards     []hexutil.Bytes       `json:"shards,omitempty"`
	ManifestID *interfaces.ContentID `json:"manifest_id,omitempty"`

	// Unpad applies sskr.UnpadSecret to the recovered secret.
	Unpad bool `json:"unpad,omitempty"`
}

type CombineResponse struct {
	Secret hexutil.Bytes `json:"secret"`
}

type InspectRequest struct {
	Shard hexutil.Bytes `json:"shard"`
}

// InspectResponse describes a shard's metadata. Indices are 1-based.
type InspectResponse struct {
	Description     string `json:"description"`
	Identifier      uint16 `json:"identifier"`
	GroupThreshold  int    `json:"group_threshold"`
	GroupCount      int    `json:"group_count"`
	Group           int    `json:"group"`
	MemberThreshold int    `json:"member_threshold"`
	Member          int    `json:"member"`
	ValueLength     int    `json:"value_length"`
}

// NewInspectResponse fills an InspectResponse from a decoded shard.
func NewInspectResponse(shard sskr.Shard) InspectResponse {
	return InspectResponse{
		Description:     shard.String(),
		Identifier:      shard.Identifier,
		GroupThreshold:  shard.GroupThreshold,
		GroupCount:      shard.GroupCount,
		Group:           shard.GroupIndex + 1,
		MemberThreshold: shard.MemberThreshold,
		Member:          shard.MemberIndex + 1,
		ValueLength:     len(shard.Value),
	}
}

// SubmitShardRequest is the body of POST /admin/shard. Signature is made by
// the admin over the shard bytes, see cryptoutils.SignShard.
type SubmitShardRequest struct {
	Shard     hexutil.Bytes `json:"shard"`
	Signature hexutil.Bytes `json:"signature"`
}

type SubmitShardResponse struct {
	Message  string `json:"message"`
	Unlocked bool   `json:"unlocked"`
}

// KeeperStatus is returned by GET /admin/status.
type KeeperStatus = interfaces.KeeperStatus

// ErrorResponse is the body of every non-2xx API response. Code is the sskr
// error code when the failure came from the scheme itself.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// APIError is returned by clients for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Code       int
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("api error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps an sskr error code back to its sskr.Error value.
func (e *APIError) Unwrap() error {
	if e.Code < 0 {
		return sskr.Error(e.Code)
	}
	return nil
}
