package interfaces

import "errors"

var (
	// ErrKeeperLocked is returned when the recovered secret is requested before enough shards arrived.
	ErrKeeperLocked = errors.New("keeper is locked")

	// ErrKeeperUnlocked is returned when shards are submitted after recovery completed.
	ErrKeeperUnlocked = errors.New("keeper is already unlocked")

	// ErrUnauthorizedAdmin is returned when a shard is submitted by an unknown admin or for
	// a slot the admin was not assigned.
	ErrUnauthorizedAdmin = errors.New("unauthorized admin")
)

// GroupProgress reports how many member shards of a group have been collected.
type GroupProgress struct {
	Index     int `json:"index"`
	Threshold int `json:"threshold"`
	Members   int `json:"members"`
	Submitted int `json:"submitted"`
}

// KeeperStatus is a snapshot of a recovery in progress.
type KeeperStatus struct {
	Unlocked       bool            `json:"unlocked"`
	Identifier     *uint16         `json:"identifier,omitempty"`
	GroupThreshold int             `json:"group_threshold"`
	Groups         []GroupProgress `json:"groups"`
}

// ShardKeeper collects shards submitted one by one by authorized admins and
// recovers the protected secret once the group thresholds are met.
type ShardKeeper interface {
	// SubmitShard verifies the admin signature over the serialized shard and records it.
	SubmitShard(shard, signature, adminPubKeyPEM []byte) error

	// IsUnlocked reports whether the secret has been recovered.
	IsUnlocked() bool

	// Status returns collection progress.
	Status() KeeperStatus

	// Unlocked is closed once the secret has been recovered.
	Unlocked() <-chan struct{}
}
