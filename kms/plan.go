package kms

import (
	"errors"
	"fmt"
	"io"

	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/sskr"
	"gopkg.in/yaml.v3"
)

// SplitPlan is the YAML description of who holds which shard:
//
//	group_threshold: 2
//	admins:
//	  - id: alice
//	    pubkey: |
//	      -----BEGIN PUBLIC KEY-----
//	      ...
//	groups:
//	  - threshold: 2
//	    members: [alice, bob, carol]
//	  - threshold: 1
//	    members: [dave]
type SplitPlan struct {
	GroupThreshold int         `yaml:"group_threshold"`
	Admins         []PlanAdmin `yaml:"admins"`
	Groups         []PlanGroup `yaml:"groups"`
}

type PlanAdmin struct {
	ID     string `yaml:"id"`
	PubKey string `yaml:"pubkey"`
}

type PlanGroup struct {
	Threshold int      `yaml:"threshold"`
	Members   []string `yaml:"members"`
}

// LoadSplitPlan parses and validates a plan. Unknown fields are rejected.
func LoadSplitPlan(r io.Reader) (*SplitPlan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var plan SplitPlan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode split plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks admin keys, member references and the group layout.
func (p *SplitPlan) Validate() error {
	keys := make(map[string]bool, len(p.Admins))
	for _, admin := range p.Admins {
		if admin.ID == "" {
			return errors.New("admin with empty id")
		}
		if keys[admin.ID] {
			return fmt.Errorf("duplicate admin id %q", admin.ID)
		}
		if _, err := cryptoutils.ParsePublicKey([]byte(admin.PubKey)); err != nil {
			return fmt.Errorf("invalid public key for admin %s: %w", admin.ID, err)
		}
		keys[admin.ID] = true
	}

	for gi, g := range p.Groups {
		for _, member := range g.Members {
			if !keys[member] {
				return fmt.Errorf("group %d references unknown admin %q", gi+1, member)
			}
		}
	}

	if err := sskr.ValidateGroups(p.GroupThreshold, p.Descriptors()); err != nil {
		return fmt.Errorf("invalid split plan: %w", err)
	}
	return nil
}

// Descriptors returns the group layout for sskr.Split.
func (p *SplitPlan) Descriptors() []sskr.GroupDescriptor {
	groups := make([]sskr.GroupDescriptor, len(p.Groups))
	for i, g := range p.Groups {
		groups[i] = sskr.GroupDescriptor{Threshold: g.Threshold, Count: len(g.Members)}
	}
	return groups
}

// AdminKeys maps admin ids to PEM public keys.
func (p *SplitPlan) AdminKeys() map[string][]byte {
	keys := make(map[string][]byte, len(p.Admins))
	for _, admin := range p.Admins {
		keys[admin.ID] = []byte(admin.PubKey)
	}
	return keys
}

// Holder returns the admin id assigned to a shard slot.
func (p *SplitPlan) Holder(groupIndex, memberIndex int) string {
	return p.Groups[groupIndex].Members[memberIndex]
}

// Config resolves member ids to keys.
func (p *SplitPlan) Config() SSKRConfig {
	keys := p.AdminKeys()
	config := SSKRConfig{
		GroupThreshold: p.GroupThreshold,
		Groups:         make([]GroupConfig, len(p.Groups)),
	}
	for gi, g := range p.Groups {
		pubKeys := make([][]byte, len(g.Members))
		for mi, member := range g.Members {
			pubKeys[mi] = keys[member]
		}
		config.Groups[gi] = GroupConfig{Threshold: g.Threshold, AdminPubKeys: pubKeys}
	}
	return config
}
