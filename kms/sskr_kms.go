package kms

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/sskr"
	"golang.org/x/crypto/hkdf"
)

// GroupConfig assigns the members of one group to administrators.
type GroupConfig struct {
	Threshold int
	// AdminPubKeys holds one PEM public key per member, in member order.
	// The same admin may hold members in several groups.
	AdminPubKeys [][]byte
}

// SSKRConfig describes how the master seed is split and who holds each shard.
type SSKRConfig struct {
	GroupThreshold int
	Groups         []GroupConfig
}

// Descriptors returns the group layout for sskr.Split.
func (c SSKRConfig) Descriptors() []sskr.GroupDescriptor {
	groups := make([]sskr.GroupDescriptor, len(c.Groups))
	for i, g := range c.Groups {
		groups[i] = sskr.GroupDescriptor{Threshold: g.Threshold, Count: len(g.AdminPubKeys)}
	}
	return groups
}

// AssignedShard is a shard together with the admin it is meant for.
type AssignedShard struct {
	AdminPubKey []byte
	Shard       sskr.Shard
}

type memberSlot struct {
	group  int
	member int
}

// SSKRKMS protects a master seed with a two-level sharded split. In recovery
// mode it starts locked and collects signed shards from the admins until the
// group thresholds are met, then keeps the recovered seed in memory only.
type SSKRKMS struct {
	mu         sync.RWMutex
	seed       []byte
	isUnlocked bool
	unlocked   chan struct{}

	config     SSKRConfig
	adminSlots map[string][]memberSlot // admin key fingerprint to assigned slots
	received   map[memberSlot]sskr.Shard
	identifier *uint16
}

func newSSKRKMS(config SSKRConfig) (*SSKRKMS, error) {
	if err := sskr.ValidateGroups(config.GroupThreshold, config.Descriptors()); err != nil {
		return nil, fmt.Errorf("invalid split configuration: %w", err)
	}

	k := &SSKRKMS{
		unlocked:   make(chan struct{}),
		config:     config,
		adminSlots: make(map[string][]memberSlot),
		received:   make(map[memberSlot]sskr.Shard),
	}

	for gi, g := range config.Groups {
		for mi, pubKeyPEM := range g.AdminPubKeys {
			if _, err := cryptoutils.ParsePublicKey(pubKeyPEM); err != nil {
				return nil, fmt.Errorf("invalid admin pubkey for group %d member %d: %w", gi+1, mi+1, err)
			}
			fp := cryptoutils.ComputeFingerprint(pubKeyPEM)
			k.adminSlots[fp] = append(k.adminSlots[fp], memberSlot{group: gi, member: mi})
		}
	}

	return k, nil
}

// NewSSKRKMS splits seed according to config and returns the KMS in unlocked
// state together with the shards to hand out. The caller is responsible for
// delivering each shard to its admin and erasing its own copy.
func NewSSKRKMS(seed []byte, config SSKRConfig, opts ...sskr.Option) (*SSKRKMS, []AssignedShard, error) {
	k, err := newSSKRKMS(config)
	if err != nil {
		return nil, nil, err
	}

	shards, err := sskr.Split(seed, config.GroupThreshold, config.Descriptors(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to split seed: %w", err)
	}

	assigned := make([]AssignedShard, len(shards))
	for i, shard := range shards {
		assigned[i] = AssignedShard{
			AdminPubKey: config.Groups[shard.GroupIndex].AdminPubKeys[shard.MemberIndex],
			Shard:       shard,
		}
	}

	k.seed = bytes.Clone(seed)
	k.isUnlocked = true
	close(k.unlocked)
	return k, assigned, nil
}

// NewSSKRKMSRecovery creates a locked KMS that waits for shards.
func NewSSKRKMSRecovery(config SSKRConfig) (*SSKRKMS, error) {
	return newSSKRKMS(config)
}

// SubmitShard records a serialized shard signed by its admin. The shard must
// belong to a slot assigned to that admin and match the configured layout.
// Resubmitting an identical shard is a no-op, a different shard for a filled
// slot is rejected. Once enough shards are present the seed is recovered and
// all collected shards are wiped.
func (k *SSKRKMS) SubmitShard(shardBytes, signature, adminPubKeyPEM []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.isUnlocked {
		return interfaces.ErrKeeperUnlocked
	}

	slots, found := k.adminSlots[cryptoutils.ComputeFingerprint(adminPubKeyPEM)]
	if !found {
		return fmt.Errorf("%w: unregistered admin public key", interfaces.ErrUnauthorizedAdmin)
	}

	if err := cryptoutils.VerifyShardSignature(adminPubKeyPEM, shardBytes, signature); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrUnauthorizedAdmin, err)
	}

	shard, err := sskr.DecodeShard(shardBytes)
	if err != nil {
		return err
	}

	slot := memberSlot{group: shard.GroupIndex, member: shard.MemberIndex}
	if !slices.Contains(slots, slot) {
		return fmt.Errorf("%w: %s is not assigned to this admin", interfaces.ErrUnauthorizedAdmin, shard)
	}

	if shard.GroupThreshold != k.config.GroupThreshold ||
		shard.GroupCount != len(k.config.Groups) ||
		shard.MemberThreshold != k.config.Groups[shard.GroupIndex].Threshold {
		return fmt.Errorf("%w: %s does not match the configured split", sskr.ErrInvalidShardSet, shard)
	}
	if k.identifier != nil && *k.identifier != shard.Identifier {
		return fmt.Errorf("%w: %s belongs to a different split", sskr.ErrInvalidShardSet, shard)
	}

	if existing, ok := k.received[slot]; ok {
		if bytes.Equal(existing.Value, shard.Value) {
			return nil
		}
		return fmt.Errorf("%w: conflicting shard for %s", sskr.ErrDuplicateMemberIndex, shard)
	}

	k.received[slot] = shard
	if k.identifier == nil {
		id := shard.Identifier
		k.identifier = &id
	}

	if err := k.tryRecover(); err != nil {
		delete(k.received, slot)
		if len(k.received) == 0 {
			k.identifier = nil
		}
		return err
	}
	return nil
}

// tryRecover combines the collected shards. Not having enough shards yet is not an error.
func (k *SSKRKMS) tryRecover() error {
	shards := make([]sskr.Shard, 0, len(k.received))
	for _, shard := range k.received {
		shards = append(shards, shard)
	}
	slices.SortFunc(shards, func(a, b sskr.Shard) int {
		if a.GroupIndex != b.GroupIndex {
			return a.GroupIndex - b.GroupIndex
		}
		return a.MemberIndex - b.MemberIndex
	})

	seed, err := sskr.Combine(shards)
	if errors.Is(err, sskr.ErrNotEnoughGroups) || errors.Is(err, sskr.ErrNotEnoughMemberShards) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to recover seed: %w", err)
	}

	k.seed = seed
	k.isUnlocked = true

	for slot, shard := range k.received {
		wipeBytes(shard.Value)
		delete(k.received, slot)
	}
	close(k.unlocked)
	return nil
}

// IsUnlocked reports whether the seed is available.
func (k *SSKRKMS) IsUnlocked() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.isUnlocked
}

// Unlocked returns a channel closed when the seed becomes available.
func (k *SSKRKMS) Unlocked() <-chan struct{} {
	return k.unlocked
}

// Status reports collection progress per group.
func (k *SSKRKMS) Status() interfaces.KeeperStatus {
	k.mu.RLock()
	defer k.mu.RUnlock()

	status := interfaces.KeeperStatus{
		Unlocked:       k.isUnlocked,
		GroupThreshold: k.config.GroupThreshold,
		Groups:         make([]interfaces.GroupProgress, len(k.config.Groups)),
	}
	if k.identifier != nil {
		id := *k.identifier
		status.Identifier = &id
	}

	for gi, g := range k.config.Groups {
		status.Groups[gi] = interfaces.GroupProgress{
			Index:     gi,
			Threshold: g.Threshold,
			Members:   len(g.AdminPubKeys),
		}
	}
	for slot := range k.received {
		status.Groups[slot.group].Submitted++
	}
	return status
}

// DeriveKey derives a purpose-bound key from the seed with HKDF-SHA256.
func (k *SSKRKMS) DeriveKey(purpose string, length int) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if !k.isUnlocked {
		return nil, interfaces.ErrKeeperLocked
	}

	key := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, k.seed, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func wipeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
