package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/sskr"
)

// ManifestEntry locates one stored shard.
type ManifestEntry struct {
	Group     int                  `json:"group"`
	Member    int                  `json:"member"`
	ContentID interfaces.ContentID `json:"content_id"`
}

// Manifest describes a stored split. It carries no share material.
type Manifest struct {
	SplitID        uuid.UUID              `json:"split_id"`
	Identifier     uint16                 `json:"identifier"`
	GroupThreshold int                    `json:"group_threshold"`
	Groups         []sskr.GroupDescriptor `json:"groups"`
	Shards         []ManifestEntry        `json:"shards"`
	CreatedAt      time.Time              `json:"created_at"`
}

// ShardStore persists the shards of a split together with a manifest that
// lets them be found again.
type ShardStore struct {
	backend interfaces.StorageBackend
	log     *slog.Logger
}

func NewShardStore(backend interfaces.StorageBackend, log *slog.Logger) *ShardStore {
	return &ShardStore{backend: backend, log: log}
}

// StoreShards writes every shard and then the manifest, returning the manifest's content ID.
func (s *ShardStore) StoreShards(ctx context.Context, shards []sskr.Shard) (interfaces.ContentID, *Manifest, error) {
	if len(shards) == 0 {
		return interfaces.ContentID{}, nil, sskr.ErrEmptyShardSet
	}

	first := shards[0]
	manifest := &Manifest{
		SplitID:        uuid.New(),
		Identifier:     first.Identifier,
		GroupThreshold: first.GroupThreshold,
		Groups:         make([]sskr.GroupDescriptor, first.GroupCount),
		Shards:         make([]ManifestEntry, 0, len(shards)),
		CreatedAt:      time.Now().UTC(),
	}

	for _, shard := range shards {
		if shard.Identifier != first.Identifier || shard.GroupCount != first.GroupCount {
			return interfaces.ContentID{}, nil, sskr.ErrInvalidShardSet
		}

		data, err := shard.Encode()
		if err != nil {
			return interfaces.ContentID{}, nil, fmt.Errorf("failed to encode %s: %w", shard, err)
		}

		id, err := s.backend.Store(ctx, data, interfaces.ShardType)
		if err != nil {
			return interfaces.ContentID{}, nil, fmt.Errorf("failed to store %s: %w", shard, err)
		}

		group := &manifest.Groups[shard.GroupIndex]
		group.Threshold = shard.MemberThreshold
		group.Count++
		manifest.Shards = append(manifest.Shards, ManifestEntry{
			Group:     shard.GroupIndex,
			Member:    shard.MemberIndex,
			ContentID: id,
		})
	}

	raw, err := json.Marshal(manifest)
	if err != nil {
		return interfaces.ContentID{}, nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}

	manifestID, err := s.backend.Store(ctx, raw, interfaces.ManifestType)
	if err != nil {
		return interfaces.ContentID{}, nil, fmt.Errorf("failed to store manifest: %w", err)
	}

	s.log.Info("Stored split",
		slog.String("split_id", manifest.SplitID.String()),
		slog.String("manifest_id", manifestID.String()),
		slog.Int("shards", len(manifest.Shards)),
		slog.String("backend", s.backend.Name()))

	return manifestID, manifest, nil
}

// LoadManifest fetches and parses a manifest.
func (s *ShardStore) LoadManifest(ctx context.Context, manifestID interfaces.ContentID) (*Manifest, error) {
	raw, err := s.backend.Fetch(ctx, manifestID, interfaces.ManifestType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest %s: %w", manifestID.Short(), err)
	}

	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", manifestID.Short(), err)
	}
	return &manifest, nil
}

// LoadShards fetches the shards listed in a manifest. Shards that are missing
// from storage are logged and skipped so a partial set can still be combined.
// Shards that do not decode, or that belong to a different split, fail the load.
func (s *ShardStore) LoadShards(ctx context.Context, manifestID interfaces.ContentID) ([]sskr.Shard, *Manifest, error) {
	manifest, err := s.LoadManifest(ctx, manifestID)
	if err != nil {
		return nil, nil, err
	}

	shards := make([]sskr.Shard, 0, len(manifest.Shards))
	for _, entry := range manifest.Shards {
		data, err := s.backend.Fetch(ctx, entry.ContentID, interfaces.ShardType)
		if errors.Is(err, interfaces.ErrContentNotFound) {
			s.log.Warn("Shard missing from storage",
				slog.Int("group", entry.Group+1),
				slog.Int("member", entry.Member+1),
				slog.String("content_id", entry.ContentID.Short()))
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch shard %d-%d: %w", entry.Group+1, entry.Member+1, err)
		}

		if interfaces.ComputeID(data) != entry.ContentID {
			return nil, nil, fmt.Errorf("shard %d-%d: %w: content does not match its id", entry.Group+1, entry.Member+1, sskr.ErrInvalidShardBuffer)
		}

		shard, err := sskr.DecodeShard(data)
		if err != nil {
			return nil, nil, fmt.Errorf("shard %d-%d: %w", entry.Group+1, entry.Member+1, err)
		}
		if shard.Identifier != manifest.Identifier || shard.GroupIndex != entry.Group || shard.MemberIndex != entry.Member {
			return nil, nil, fmt.Errorf("shard %d-%d: %w", entry.Group+1, entry.Member+1, sskr.ErrInvalidShardSet)
		}
		shards = append(shards, shard)
	}

	s.log.Debug("Loaded split",
		slog.String("split_id", manifest.SplitID.String()),
		slog.Int("found", len(shards)),
		slog.Int("listed", len(manifest.Shards)))

	return shards, manifest, nil
}
